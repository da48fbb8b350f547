package category

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
)

type RepositoryAPI interface {
	ListVisible(ctx context.Context, ownerID string) ([]finance.Category, error)
	GetByID(ctx context.Context, id string) (*finance.Category, error)
	Create(ctx context.Context, category *finance.Category) error
	Update(ctx context.Context, category *finance.Category) error
	Delete(ctx context.Context, ownerID, id string) error
}

// SessionStore hands out the signed-in owner's store.
type SessionStore interface {
	Store(ctx context.Context, ownerID string) (*store.Store, error)
}

type Service struct {
	repo     RepositoryAPI
	sessions SessionStore
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, sessions SessionStore, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

// List returns the owner's and the shared categories, optionally limited to kind.
func (s *Service) List(ctx context.Context, ownerID string, kind *finance.TransactionType) ([]finance.Category, error) {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	all := st.Categories()
	out := make([]finance.Category, 0, len(all))
	for _, c := range all {
		if kind == nil || c.Type == *kind {
			out = append(out, c)
		}
	}
	SortByName(out)
	return out, nil
}

func (s *Service) Create(ctx context.Context, ownerID string, dto CreateCategoryDTO) (*finance.Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	c := NewCategory(ownerID, dto)
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create category", "error", err, "owner_id", ownerID)
		return nil, err
	}
	st.AddCategory(*c)

	s.logger.Info("category created", "category_id", c.ID, "owner_id", ownerID, "type", c.Type)
	return c, nil
}

// Update rewrites one of the owner's categories. Changing the type is refused
// while transactions or budgets still reference the category.
func (s *Service) Update(ctx context.Context, ownerID, id string, dto UpdateCategoryDTO) (*finance.Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	current, err := s.owned(st, ownerID, id)
	if err != nil {
		return nil, err
	}

	newType := finance.TransactionType(dto.Type)
	if newType != current.Type && s.inUse(st, id) {
		return nil, errors.NewValidationFieldError("type",
			"type cannot change while transactions or budgets use this category", errors.ErrCodeInvalidCategory)
	}

	updated := current
	updated.Name = dto.Name
	updated.Type = newType
	updated.Icon = dto.Icon
	updated.Color = dto.Color
	if err := s.repo.Update(ctx, &updated); err != nil {
		s.logger.Error("failed to update category", "error", err, "category_id", id)
		return nil, err
	}
	st.UpdateCategory(id, store.FullCategoryPatch(updated))

	s.logger.Info("category updated", "category_id", id, "owner_id", ownerID)
	return &updated, nil
}

// Delete removes one of the owner's categories. Its transactions become
// uncategorized and budgets on the category go with it.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return err
	}
	if _, err := s.owned(st, ownerID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", id)
		return err
	}
	st.DeleteCategory(id)

	s.logger.Info("category deleted", "category_id", id, "owner_id", ownerID)
	return nil
}

func (s *Service) owned(st *store.Store, ownerID, id string) (finance.Category, error) {
	c, ok := st.Category(id)
	if !ok || !c.VisibleTo(ownerID) {
		return finance.Category{}, errors.ErrCategoryNotFound
	}
	if c.IsShared() {
		return finance.Category{}, errors.ErrSharedCategory
	}
	return c, nil
}

func (s *Service) inUse(st *store.Store, id string) bool {
	for _, t := range st.Transactions() {
		if t.HasCategory(id) {
			return true
		}
	}
	for _, b := range st.Budgets() {
		if b.CategoryID == id {
			return true
		}
	}
	return false
}
