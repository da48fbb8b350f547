package budget

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
)

type RepositoryAPI interface {
	ListByOwner(ctx context.Context, ownerID string) ([]finance.Budget, error)
	Create(ctx context.Context, b *finance.Budget) error
	Update(ctx context.Context, b *finance.Budget) error
	Delete(ctx context.Context, ownerID, id string) error
}

// SessionStore hands out the owner's store and the alerts hidden this session.
type SessionStore interface {
	Store(ctx context.Context, ownerID string) (*store.Store, error)
	Dismissals(ownerID string) *Dismissals
}

type Service struct {
	repo     RepositoryAPI
	sessions SessionStore
	logger   *slog.Logger
	today    func() calendar.Date
}

func NewService(repo RepositoryAPI, sessions SessionStore, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
		today:    func() calendar.Date { return calendar.Today(time.Local) },
	}
}

func (s *Service) WithClock(today func() calendar.Date) *Service {
	s.today = today
	return s
}

func (s *Service) Today() calendar.Date {
	return s.today()
}

// List returns the owner's budgets, limited to month when given, newest month first.
func (s *Service) List(ctx context.Context, ownerID string, month *calendar.Month) ([]finance.Budget, error) {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	all := st.Budgets()
	out := make([]finance.Budget, 0, len(all))
	for _, b := range all {
		if month == nil || b.Month == *month {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[j].Month.First().Before(out[i].Month.First())
		}
		return categoryName(out[i]) < categoryName(out[j])
	})
	return out, nil
}

func (s *Service) Create(ctx context.Context, ownerID string, dto CreateBudgetDTO) (*finance.Budget, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	b := NewBudget(ownerID, dto)
	if err := s.check(st, ownerID, *b, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.Error("failed to create budget", "error", err, "owner_id", ownerID)
		return nil, err
	}
	st.AddBudget(*b)

	s.logger.Info("budget created",
		"budget_id", b.ID,
		"owner_id", ownerID,
		"category_id", b.CategoryID,
		"month", b.Month.String())
	return s.held(st, *b), nil
}

func (s *Service) Update(ctx context.Context, ownerID, id string, dto UpdateBudgetDTO) (*finance.Budget, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	current, ok := st.Budget(id)
	if !ok {
		return nil, errors.ErrBudgetNotFound
	}

	updated := current
	updated.CategoryID = dto.CategoryID
	updated.Amount = dto.Amount
	updated.Month = dto.Month
	if err := s.check(st, ownerID, updated, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		s.logger.Error("failed to update budget", "error", err, "budget_id", id)
		return nil, err
	}
	st.UpdateBudget(id, store.FullBudgetPatch(updated))

	s.logger.Info("budget updated", "budget_id", id, "owner_id", ownerID)
	return s.held(st, updated), nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return err
	}
	if _, ok := st.Budget(id); !ok {
		return errors.ErrBudgetNotFound
	}

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		s.logger.Error("failed to delete budget", "error", err, "budget_id", id)
		return err
	}
	st.DeleteBudget(id)

	s.logger.Info("budget deleted", "budget_id", id, "owner_id", ownerID)
	return nil
}

// Progress measures every budget of month.
func (s *Service) Progress(ctx context.Context, ownerID string, month calendar.Month) ([]BudgetProgress, error) {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	snap := st.Snapshot()
	return ProgressFor(snap.Budgets, snap.Transactions, snap.Categories, month), nil
}

// Alerts evaluates the budgets of month and drops the ones dismissed this session.
func (s *Service) Alerts(ctx context.Context, ownerID string, month calendar.Month) ([]Alert, error) {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	snap := st.Snapshot()
	alerts := Evaluate(snap.Budgets, snap.Transactions, snap.Categories, month, s.today())
	return s.sessions.Dismissals(ownerID).Visible(alerts), nil
}

// Dismiss hides an alert for the rest of the session. The alert must name
// one of the owner's budgets.
func (s *Service) Dismiss(ctx context.Context, ownerID, alertID string) error {
	st, err := s.sessions.Store(ctx, ownerID)
	if err != nil {
		return err
	}
	budgetID, ok := ParseAlertID(alertID)
	if !ok {
		return errors.ErrAlertNotFound
	}
	if _, ok := st.Budget(budgetID); !ok {
		return errors.ErrAlertNotFound
	}
	s.sessions.Dismissals(ownerID).Dismiss(alertID)
	s.logger.Info("budget alert dismissed", "alert_id", alertID, "owner_id", ownerID)
	return nil
}

// ParseAlertID splits an alert ID into its budget ID.
func ParseAlertID(alertID string) (string, bool) {
	for _, kind := range []Kind{KindOverspent, KindNearLimit, KindPace} {
		if budgetID, found := strings.CutSuffix(alertID, "-"+string(kind)); found && budgetID != "" {
			return budgetID, true
		}
	}
	return "", false
}

// check requires an expense category visible to the owner and no other
// budget on the same category and month.
func (s *Service) check(st *store.Store, ownerID string, b finance.Budget, exceptID string) error {
	c, ok := st.Category(b.CategoryID)
	if !ok || !c.VisibleTo(ownerID) {
		return errors.NewValidationFieldError("category_id", "category does not exist", errors.ErrCodeInvalidCategory)
	}
	if err := b.CheckCategory(c); err != nil {
		return errors.NewValidationFieldError("category_id", err.Error(), errors.ErrCodeInvalidCategory)
	}
	if Duplicate(st.Budgets(), b, exceptID) {
		return errors.ErrDuplicateBudget
	}
	return nil
}

func (s *Service) held(st *store.Store, fallback finance.Budget) *finance.Budget {
	if b, ok := st.Budget(fallback.ID); ok {
		return &b
	}
	return &fallback
}

func categoryName(b finance.Budget) string {
	if b.Category != nil {
		return b.Category.Name
	}
	return finance.UncategorizedLabel
}
