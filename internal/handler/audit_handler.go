package handler

import (
	"context"
	"net/http"
	"strings"

	"sweet-shop/internal/model"
)

type auditReader interface {
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

type AuditHandler struct {
	service auditReader
}

func NewAuditHandler(service auditReader) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, meta, err := h.service.Query(r.Context(), model.AuditQuery{
		Action:   strings.TrimSpace(query.Get("action")),
		Actor:    strings.TrimSpace(query.Get("actor")),
		Resource: strings.TrimSpace(query.Get("resource")),
		Page:     parseIntOrDefault(query.Get("page"), 1),
		Limit:    parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if items == nil {
		items = []model.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, model.AuditListData{Items: items, Meta: meta})
}
