package model

import (
	"math"
	"time"
)

type AuditAction string

const (
	AuditSweetCreate   AuditAction = "sweet.create"
	AuditSweetUpdate   AuditAction = "sweet.update"
	AuditSweetDelete   AuditAction = "sweet.delete"
	AuditSweetPurchase AuditAction = "sweet.purchase"
	AuditSweetRestock  AuditAction = "sweet.restock"
)

type AuditActor struct {
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
	IP    string `json:"ip,omitempty"`
}

type AuditEntry struct {
	Action     AuditAction `json:"action"`
	OccurredAt time.Time   `json:"occurred_at"`
	Actor      AuditActor  `json:"actor"`
	Resource   string      `json:"resource,omitempty"`
	Before     any         `json:"before,omitempty"`
	After      any         `json:"after,omitempty"`
}

type AuditQuery struct {
	Action   string
	Actor    string
	Resource string
	Page     int
	Limit    int
}

// maxAuditOffset bounds how far paging can reach so the offset always fits
// a 32-bit OFFSET and never wraps.
const maxAuditOffset = math.MaxInt32

// Normalize clamps paging to page >= 1 and 1..200 entries, 50 by default.
// Pages past the reachable offset are pulled back to the last reachable one.
func (q AuditQuery) Normalize() AuditQuery {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if maxPage := maxAuditOffset/q.Limit + 1; q.Page > maxPage {
		q.Page = maxPage
	}
	return q
}

func (q AuditQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type AuditListData struct {
	Items []AuditEntry `json:"items"`
	Meta  Meta         `json:"meta"`
}
