package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sweet-shop/internal/model"
)

type inventory interface {
	Create(ctx context.Context, actor model.AuditActor, sweet model.Sweet) (model.Sweet, error)
	Get(ctx context.Context, id string) (model.Sweet, error)
	List(ctx context.Context) ([]model.Sweet, error)
	Search(ctx context.Context, filter model.SweetFilter) ([]model.Sweet, error)
	Update(ctx context.Context, actor model.AuditActor, id string, patch model.SweetPatch) (model.Sweet, error)
	Delete(ctx context.Context, actor model.AuditActor, id string) error
	Purchase(ctx context.Context, actor model.AuditActor, id string, quantity int64) (model.Sweet, error)
	Restock(ctx context.Context, actor model.AuditActor, id string, quantity int64) (model.Sweet, error)
}

type SweetHandler struct {
	service inventory
}

func NewSweetHandler(service inventory) *SweetHandler {
	return &SweetHandler{service: service}
}

func (h *SweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateSweetRequest
	if err := decodeAndValidate(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	sweet, err := h.service.Create(r.Context(), actorFromRequest(r), payload.Sweet())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sweet)
}

func (h *SweetHandler) List(w http.ResponseWriter, r *http.Request) {
	sweets, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(sweets))
}

func (h *SweetHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	minPrice, err := parseDecimalParam(query.Get("min_price"), "min_price")
	if err != nil {
		writeError(w, err)
		return
	}
	maxPrice, err := parseDecimalParam(query.Get("max_price"), "max_price")
	if err != nil {
		writeError(w, err)
		return
	}

	sweets, err := h.service.Search(r.Context(), model.SweetFilter{
		Name:     query.Get("name"),
		Category: query.Get("category"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(sweets))
}

func (h *SweetHandler) Get(w http.ResponseWriter, r *http.Request) {
	sweet, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sweet)
}

func (h *SweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateSweetRequest
	if err := decodeAndValidate(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	sweet, err := h.service.Update(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), payload.Patch())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sweet)
}

func (h *SweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actorFromRequest(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Sweet deleted successfully"})
}

func (h *SweetHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var payload model.QuantityRequest
	if err := decodeAndValidate(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	sweet, err := h.service.Purchase(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), payload.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sweet)
}

func (h *SweetHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var payload model.QuantityRequest
	if err := decodeAndValidate(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	sweet, err := h.service.Restock(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), payload.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sweet)
}

// nonNil keeps empty results serialized as [] rather than null.
func nonNil(sweets []model.Sweet) []model.Sweet {
	if sweets == nil {
		return []model.Sweet{}
	}
	return sweets
}
