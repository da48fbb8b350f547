package transaction

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, ownerID string, f Filter) ([]finance.Transaction, error)
	ListByDay(ctx context.Context, ownerID string, f Filter) ([]DayGroup, error)
	Get(ctx context.Context, ownerID, id string) (*finance.Transaction, error)
	Create(ctx context.Context, ownerID string, dto CreateTransactionDTO) (*finance.Transaction, error)
	Update(ctx context.Context, ownerID, id string, dto UpdateTransactionDTO) (*finance.Transaction, error)
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

// GetTransactions handles GET /transactions with the filter query parameters.
// group=day returns day buckets instead of a flat list.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	query, appErr := ParseListQuery(r.URL.Query())
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if query.GroupBy == "day" {
		groups, err := h.Service.ListByDay(r.Context(), ownerID, query.Filter)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, ToGroupedResponse(groups))
		return
	}

	txs, err := h.Service.List(r.Context(), ownerID, query.Filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponses(txs))
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	t, err := h.Service.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponse(*t))
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	var dto CreateTransactionDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	t, err := h.Service.Create(r.Context(), ownerID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, ToResponse(*t))
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	var dto UpdateTransactionDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	t, err := h.Service.Update(r.Context(), ownerID, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponse(*t))
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
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
