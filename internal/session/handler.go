package session

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personal-finance/internal/store"
	"github.com/frahmantamala/personal-finance/internal/transport"
)

type ServiceAPI interface {
	Reload(ctx context.Context, ownerID string) error
	Store(ctx context.Context, ownerID string) (*store.Store, error)
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

type SyncResponse struct {
	Transactions int `json:"transactions"`
	Categories   int `json:"categories"`
	Budgets      int `json:"budgets"`
}

// Sync handles POST /sync by reloading every collection of the owner.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Reload(r.Context(), ownerID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	st, err := h.Service.Store(r.Context(), ownerID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	snap := st.Snapshot()
	h.WriteJSON(w, http.StatusOK, SyncResponse{
		Transactions: len(snap.Transactions),
		Categories:   len(snap.Categories),
		Budgets:      len(snap.Budgets),
	})
}
