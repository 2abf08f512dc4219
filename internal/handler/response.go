package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sweet-shop/internal/model"
	"sweet-shop/pkg/apierror"
)

// writeJSON writes a bare success body. Errors go through writeError.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	var stockErr *model.StockError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrDuplicateEmail) {
		status = http.StatusBadRequest
		body.Code = "DUPLICATE_EMAIL"
		body.Message = "Email already registered"
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		status = http.StatusUnauthorized
		body.Code = "INVALID_CREDENTIALS"
		body.Message = "Incorrect email or password"
	} else if errors.Is(err, model.ErrUnauthenticated) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Could not validate credentials"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Not enough permissions"
	} else if errors.Is(err, model.ErrSweetNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Sweet not found"
	} else if errors.Is(err, model.ErrAccountNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Account not found"
	} else if errors.As(err, &stockErr) {
		status = http.StatusBadRequest
		body.Code = "INSUFFICIENT_STOCK"
		body.Message = "Insufficient stock"
		body.Details = stockErr.Error()
	} else if errors.Is(err, model.ErrInsufficientStock) {
		status = http.StatusBadRequest
		body.Code = "INSUFFICIENT_STOCK"
		body.Message = "Insufficient stock"
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
