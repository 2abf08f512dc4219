package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"sweet-shop/internal/model"
)

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

type AuditService struct {
	store AuditStore
	now   func() time.Time
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

func (s *AuditService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Record appends an entry. A failed write is logged and otherwise ignored so
// the mutation it describes still succeeds.
func (s *AuditService) Record(ctx context.Context, action model.AuditAction, actor model.AuditActor, resource string, before any, after any) {
	if s == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC(),
		Actor:      actor,
		Resource:   resource,
		Before:     before,
		After:      after,
	}

	if err := s.store.Log(ctx, entry); err != nil {
		slog.Warn("audit write failed", "action", action, "resource", resource, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	query = query.Normalize()
	query.Action = strings.ToLower(strings.TrimSpace(query.Action))
	query.Actor = strings.TrimSpace(query.Actor)
	query.Resource = strings.TrimSpace(query.Resource)

	return s.store.Query(ctx, query)
}
