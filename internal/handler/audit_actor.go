package handler

import (
	"net/http"

	"sweet-shop/internal/middleware"
	"sweet-shop/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.Email = account.Email
	actor.Role = account.Role

	return actor
}
