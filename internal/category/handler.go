package category

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, ownerID string, kind *finance.TransactionType) ([]finance.Category, error)
	Create(ctx context.Context, ownerID string, dto CreateCategoryDTO) (*finance.Category, error)
	Update(ctx context.Context, ownerID, id string, dto UpdateCategoryDTO) (*finance.Category, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetCategories handles GET /categories?type=income|expense
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	var kind *finance.TransactionType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := finance.ParseTransactionType(raw)
		if err != nil {
			h.WriteAppError(w, internal.NewValidationFieldError("type", err.Error(), internal.ErrCodeInvalidType))
			return
		}
		kind = &t
	}

	categories, err := h.Service.List(r.Context(), ownerID, kind)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponses(categories))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	var dto CreateCategoryDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	c, err := h.Service.Create(r.Context(), ownerID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToResponse(*c))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	var dto UpdateCategoryDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	c, err := h.Service.Update(r.Context(), ownerID, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponse(*c))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
