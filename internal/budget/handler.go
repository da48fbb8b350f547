package budget

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Today() calendar.Date
	List(ctx context.Context, ownerID string, month *calendar.Month) ([]finance.Budget, error)
	Create(ctx context.Context, ownerID string, dto CreateBudgetDTO) (*finance.Budget, error)
	Update(ctx context.Context, ownerID, id string, dto UpdateBudgetDTO) (*finance.Budget, error)
	Delete(ctx context.Context, ownerID, id string) error
	Progress(ctx context.Context, ownerID string, month calendar.Month) ([]BudgetProgress, error)
	Alerts(ctx context.Context, ownerID string, month calendar.Month) ([]Alert, error)
	Dismiss(ctx context.Context, ownerID, alertID string) error
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

// GetBudgets handles GET /budgets, optionally limited by ?month=YYYY-MM.
func (h *Handler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	var month *calendar.Month
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, appErr := ParseMonthParam(raw, h.Service.Today())
		if appErr != nil {
			h.WriteAppError(w, appErr)
			return
		}
		month = &m
	}

	budgets, err := h.Service.List(r.Context(), ownerID, month)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponses(budgets))
}

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	var dto CreateBudgetDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	b, err := h.Service.Create(r.Context(), ownerID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, ToResponse(*b))
}

func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	var dto UpdateBudgetDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	b, err := h.Service.Update(r.Context(), ownerID, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponse(*b))
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	month, appErr := ParseMonthParam(r.URL.Query().Get("month"), h.Service.Today())
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	progress, err := h.Service.Progress(r.Context(), ownerID, month)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToProgressResponse(month, progress))
}

func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	month, appErr := ParseMonthParam(r.URL.Query().Get("month"), h.Service.Today())
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	alerts, err := h.Service.Alerts(r.Context(), ownerID, month)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToAlertsResponse(month, alerts))
}

func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Dismiss(r.Context(), ownerID, chi.URLParam(r, "alertID")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
