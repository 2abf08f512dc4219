package handler

import (
	"context"
	"net/http"

	"sweet-shop/internal/middleware"
	"sweet-shop/internal/model"
	"sweet-shop/pkg/apierror"
)

type accountService interface {
	Register(ctx context.Context, email string, password string, name string) (model.Account, error)
	Authenticate(ctx context.Context, email string, password string) (model.AccessToken, error)
}

type AuthHandler struct {
	service accountService
}

func NewAuthHandler(service accountService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeAndValidate(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.service.Register(r.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account.View())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeAndValidate(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "Could not validate credentials", "", http.StatusUnauthorized))
		return
	}

	writeJSON(w, http.StatusOK, account.View())
}
