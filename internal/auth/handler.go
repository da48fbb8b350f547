package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/frahmantamala/personal-finance/internal/user"
)

type ServiceAPI interface {
	Signup(ctx context.Context, dto SignupDTO) (*SignupResult, error)
	ConfirmEmail(ctx context.Context, dto ConfirmEmailDTO) error
	Login(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	Refresh(ctx context.Context, dto RefreshTokenDTO) (AuthTokens, error)
	Logout(ctx context.Context, ownerID string)
	Session(ctx context.Context, ownerID string) (*finance.User, error)
	RequestPasswordReset(ctx context.Context, dto PasswordResetRequestDTO) error
	ConfirmPasswordReset(ctx context.Context, dto PasswordResetConfirmDTO) error
	UpdatePassword(ctx context.Context, ownerID string, dto UpdatePasswordDTO) error
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

// Signup handles POST /auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SignupDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	result, err := h.Service.Signup(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Status == StatusPendingVerification {
		status = http.StatusAccepted
	}
	h.WriteJSON(w, status, result)
}

// ConfirmEmail handles POST /auth/confirm
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var dto ConfirmEmailDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if err := h.Service.ConfirmEmail(r.Context(), dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	tokens, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tokens)
}

// RefreshToken handles POST /auth/refresh
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	tokens, err := h.Service.Refresh(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}
	h.Service.Logout(r.Context(), ownerID)
	w.WriteHeader(http.StatusNoContent)
}

// GetSession handles GET /auth/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	u, err := h.Service.Session(r.Context(), ownerID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, SessionResponse{User: user.ToResponse(*u)})
}

// RequestPasswordReset handles POST /auth/password/reset
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var dto PasswordResetRequestDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if err := h.Service.RequestPasswordReset(r.Context(), dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm
func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var dto PasswordResetConfirmDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if err := h.Service.ConfirmPasswordReset(r.Context(), dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePassword handles PUT /auth/password
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	var dto UpdatePasswordDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if err := h.Service.UpdatePassword(r.Context(), ownerID, dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
