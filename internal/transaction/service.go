package transaction

import (
	"context"
	goerrors "errors"
	"log/slog"
	"sort"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/events"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
)

type RepositoryAPI interface {
	ListByOwner(ctx context.Context, ownerID string) ([]finance.Transaction, error)
	Create(ctx context.Context, t *finance.Transaction) error
	Update(ctx context.Context, t *finance.Transaction) error
	Delete(ctx context.Context, ownerID, id string) error
}

type SessionStore interface {
	Store(ctx context.Context, ownerID string) (*store.Store, error)
}

type Service struct {
	repo      RepositoryAPI
	sessions  SessionStore
	publisher events.Publisher
	logger    *slog.Logger
	today     func() calendar.Date
}

func NewService(repo RepositoryAPI, sessions SessionStore, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
		today:     func() calendar.Date { return calendar.Today(time.Local) },
	}
}

// WithClock replaces the source of the current day used to resolve relative date ranges.
func (s *Service) WithClock(today func() calendar.Date) *Service {
	s.today = today
	return s
}

// List returns the owner's transactions matching f, newest first.
func (s *Service) List(ctx context.Context, ownerID string, f Filter) ([]finance.Transaction, error) {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	snap := st.Snapshot()
	out := Apply(snap.Transactions, f, finance.IndexCategories(snap.Categories), s.today())
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// ListByDay is List grouped into calendar days.
func (s *Service) ListByDay(ctx context.Context, ownerID string, f Filter) ([]DayGroup, error) {
	txs, err := s.List(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	return GroupByDay(txs), nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*finance.Transaction, error) {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	t, ok := st.Transaction(id)
	if !ok {
		return nil, errors.ErrTransactionNotFound
	}
	return &t, nil
}

func (s *Service) Create(ctx context.Context, ownerID string, dto CreateTransactionDTO) (*finance.Transaction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	t := NewTransaction(ownerID, dto)
	if err := s.checkCategory(st, ownerID, t); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create transaction", "error", err, "owner_id", ownerID)
		return nil, err
	}
	st.AddTransaction(*t)

	s.logger.Info("transaction created",
		"transaction_id", t.ID,
		"owner_id", ownerID,
		"type", t.Type,
		"amount", t.Amount.String())
	s.announce(ctx, *t)

	return s.held(st, *t), nil
}

// Update replaces the mutable fields of one of the owner's transactions.
func (s *Service) Update(ctx context.Context, ownerID, id string, dto UpdateTransactionDTO) (*finance.Transaction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	current, ok := st.Transaction(id)
	if !ok {
		return nil, errors.ErrTransactionNotFound
	}

	updated := current
	updated.Amount = dto.Amount
	updated.Type = finance.TransactionType(dto.Type)
	updated.CategoryID = dto.CategoryID
	updated.Description = dto.Description
	updated.Date = dto.Date
	if err := s.checkCategory(st, ownerID, &updated); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		s.logger.Error("failed to update transaction", "error", err, "transaction_id", id)
		return nil, err
	}
	st.UpdateTransaction(id, store.FullTransactionPatch(updated))

	s.logger.Info("transaction updated", "transaction_id", id, "owner_id", ownerID)
	s.announce(ctx, updated)

	return s.held(st, updated), nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return err
	}
	if _, ok := st.Transaction(id); !ok {
		return errors.ErrTransactionNotFound
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		s.logger.Error("failed to delete transaction", "error", err, "transaction_id", id)
		return err
	}
	st.DeleteTransaction(id)

	s.logger.Info("transaction deleted", "transaction_id", id, "owner_id", ownerID)
	return nil
}

// checkCategory requires a referenced category to be visible to the owner
// and of the transaction's type.
func (s *Service) checkCategory(st *store.Store, ownerID string, t *finance.Transaction) error {
	if t.CategoryID == nil {
		return nil
	}
	c, ok := st.Category(*t.CategoryID)
	if !ok || !c.VisibleTo(ownerID) {
		return errors.NewValidationFieldError("category_id", "category does not exist", errors.ErrCodeInvalidCategory)
	}
	if err := t.CheckCategory(c); err != nil {
		if goerrors.Is(err, finance.ErrCategoryMismatch) {
			return errors.NewValidationFieldError("category_id", err.Error(), errors.ErrCodeInvalidCategory)
		}
		return err
	}
	return nil
}

func (s *Service) held(st *store.Store, fallback finance.Transaction) *finance.Transaction {
	if t, ok := st.Transaction(fallback.ID); ok {
		return &t
	}
	return &fallback
}

func (s *Service) announce(ctx context.Context, t finance.Transaction) {
	if s.publisher == nil {
		return
	}
	event := events.NewTransactionRecordedEvent(t.OwnerID, t.ID, string(t.Type), t.Amount.String(), t.Date.String())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish transaction event", "error", err, "transaction_id", t.ID)
	}
}
