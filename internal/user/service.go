package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*finance.User, error)
	Create(ctx context.Context, u *finance.User) error
	Update(ctx context.Context, u *finance.User) error
	Delete(ctx context.Context, id string) error
}

type SessionStore interface {
	Store(ctx context.Context, ownerID string) (*store.Store, error)
}

type Service struct {
	repo     Repository
	sessions SessionStore
	logger   *slog.Logger
}

func NewService(repo Repository, sessions SessionStore, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

// Current returns the signed-in user's profile as held by the session.
func (s *Service) Current(ctx context.Context, ownerID string) (*finance.User, error) {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if u := st.User(); u != nil {
		return u, nil
	}
	return s.repo.GetByID(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID string, dto UpdateProfileDTO) (*finance.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.AvatarURL != nil {
		u.AvatarURL = *dto.AvatarURL
	}
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("failed to update profile", "error", err, "user_id", ownerID)
		return nil, err
	}
	st.SetUser(u)

	s.logger.Info("profile updated", "user_id", ownerID)
	return u, nil
}
