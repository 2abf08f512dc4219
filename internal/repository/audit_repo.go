package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sweet-shop/internal/model"
)

type AuditRepository struct {
	q Querier
}

func NewAuditRepository(q Querier) *AuditRepository {
	return &AuditRepository{q: q}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	var beforeJSON, afterJSON []byte
	var err error

	if entry.Before != nil {
		beforeJSON, err = json.Marshal(entry.Before)
		if err != nil {
			return fmt.Errorf("marshal before data: %w", err)
		}
	}
	if entry.After != nil {
		afterJSON, err = json.Marshal(entry.After)
		if err != nil {
			return fmt.Errorf("marshal after data: %w", err)
		}
	}

	_, err = r.q.Exec(ctx,
		`INSERT INTO audit_entries
		 (action, occurred_at, actor_email, actor_role, actor_ip, resource, before_data, after_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.Action, entry.OccurredAt, entry.Actor.Email, entry.Actor.Role, entry.Actor.IP,
		entry.Resource, beforeJSON, afterJSON)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

// Query returns matching entries newest first along with paging metadata.
func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	query = query.Normalize()

	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if action := strings.TrimSpace(query.Action); action != "" {
		where = append(where, fmt.Sprintf("lower(action) = lower($%d)", argIdx))
		args = append(args, action)
		argIdx++
	}
	if actor := strings.TrimSpace(query.Actor); actor != "" {
		where = append(where, fmt.Sprintf("lower(actor_email) = lower($%d)", argIdx))
		args = append(args, actor)
		argIdx++
	}
	if resource := strings.TrimSpace(query.Resource); resource != "" {
		where = append(where, fmt.Sprintf("strpos(lower(resource), lower($%d)) > 0", argIdx))
		args = append(args, resource)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM audit_entries %s", whereClause), args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count audit entries: %w", err)
	}
	meta := model.NewMeta(query.Page, query.Limit, total)

	dataQuery := fmt.Sprintf(
		`SELECT action, occurred_at, actor_email, actor_role, actor_ip, resource, before_data, after_data
		 FROM audit_entries %s
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`, whereClause, argIdx, argIdx+1)
	args = append(args, query.Limit, query.Offset())

	rows, err := r.q.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		var occurredAt time.Time
		var beforeJSON, afterJSON []byte

		if err := rows.Scan(
			&e.Action, &occurredAt, &e.Actor.Email, &e.Actor.Role, &e.Actor.IP,
			&e.Resource, &beforeJSON, &afterJSON,
		); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan audit entry: %w", err)
		}

		e.OccurredAt = occurredAt.UTC()

		if len(beforeJSON) > 0 {
			var before any
			if jsonErr := json.Unmarshal(beforeJSON, &before); jsonErr == nil {
				e.Before = before
			}
		}
		if len(afterJSON) > 0 {
			var after any
			if jsonErr := json.Unmarshal(afterJSON, &after); jsonErr == nil {
				e.After = after
			}
		}

		entries = append(entries, e)
	}

	return entries, meta, rows.Err()
}
