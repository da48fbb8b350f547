package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/events"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"golang.org/x/sync/errgroup"
)

type MonthSource interface {
	OwnersForMonth(ctx context.Context, month calendar.Month) ([]string, error)
	ListByOwnerMonth(ctx context.Context, ownerID string, month calendar.Month) ([]finance.Budget, error)
}

type TransactionSource interface {
	ListBetween(ctx context.Context, ownerID string, start, end time.Time) ([]finance.Transaction, error)
}

type CategorySource interface {
	ListVisible(ctx context.Context, ownerID string) ([]finance.Category, error)
}

// Monitor evaluates budgets straight from the repositories and announces
// every alert that is new or more severe than the last one raised for it.
type Monitor struct {
	budgets      MonthSource
	transactions TransactionSource
	categories   CategorySource
	publisher    events.Publisher
	logger       *slog.Logger
	today        func() calendar.Date

	mu     sync.Mutex
	raised map[alertKey]Severity
}

type alertKey struct {
	ownerID string
	month   calendar.Month
	alertID string
}

func NewMonitor(budgets MonthSource, transactions TransactionSource, categories CategorySource, publisher events.Publisher, logger *slog.Logger) *Monitor {
	return &Monitor{
		budgets:      budgets,
		transactions: transactions,
		categories:   categories,
		publisher:    publisher,
		logger:       logger,
		today:        func() calendar.Date { return calendar.Today(time.Local) },
		raised:       make(map[alertKey]Severity),
	}
}

func (m *Monitor) WithClock(today func() calendar.Date) *Monitor {
	m.today = today
	return m
}

// Check evaluates one owner's budgets of month and returns the alerts it raised.
func (m *Monitor) Check(ctx context.Context, ownerID string, month calendar.Month) ([]Alert, error) {
	budgets, err := m.budgets.ListByOwnerMonth(ctx, ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}
	r := month.Range()
	txs, err := m.transactions.ListBetween(ctx, ownerID, r.Start.Time(), r.End.Time())
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	categories, err := m.categories.ListVisible(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	var raised []Alert
	for _, a := range Evaluate(budgets, txs, categories, month, m.today()) {
		if !m.escalates(ownerID, a) {
			continue
		}
		raised = append(raised, a)
		if m.publisher == nil {
			continue
		}
		event := events.NewBudgetAlertRaisedEvent(ownerID, a.ID, a.BudgetID, a.Month.String(), string(a.Severity), a.Message)
		if err := m.publisher.Publish(ctx, event); err != nil {
			m.logger.Warn("failed to publish budget alert", "error", err, "alert_id", a.ID)
		}
	}
	if len(raised) > 0 {
		m.logger.Info("budget alerts raised", "owner_id", ownerID, "month", month.String(), "count", len(raised))
	}
	return raised, nil
}

func (m *Monitor) escalates(ownerID string, a Alert) bool {
	key := alertKey{ownerID: ownerID, month: a.Month, alertID: a.ID}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, seen := m.raised[key]
	if seen && prev.rank() <= a.Severity.rank() {
		return false
	}
	m.raised[key] = a.Severity
	return true
}

// Scan checks every owner with a budget in the current month, at most
// concurrency at a time. Every owner is attempted; the first failure is returned.
func (m *Monitor) Scan(ctx context.Context, concurrency int) error {
	month := m.today().MonthKey()
	m.forgetBefore(month)
	owners, err := m.budgets.OwnersForMonth(ctx, month)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for _, ownerID := range owners {
		ownerID := ownerID
		g.Go(func() error {
			if _, err := m.Check(ctx, ownerID, month); err != nil {
				m.logger.Error("budget check failed", "owner_id", ownerID, "error", err)
				return fmt.Errorf("owner %s: %w", ownerID, err)
			}
			return nil
		})
	}
	err = g.Wait()
	m.logger.Info("budget scan finished", "month", month.String(), "owners", len(owners))
	return err
}

// forgetBefore drops the alerts remembered for months before month.
func (m *Monitor) forgetBefore(month calendar.Month) {
	first := month.First()
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.raised {
		if key.month.First().Before(first) {
			delete(m.raised, key)
		}
	}
}

// Tracked reports how many alerts are remembered for de-duplication.
func (m *Monitor) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.raised)
}

// HandleTransactionRecorded re-evaluates the month of a recorded expense.
func (m *Monitor) HandleTransactionRecorded(ctx context.Context, event events.Event) error {
	recorded, ok := event.(*events.TransactionRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	if recorded.TransactionType != string(finance.Expense) {
		return nil
	}
	date, err := calendar.ParseDate(recorded.Date)
	if err != nil {
		return err
	}
	_, err = m.Check(ctx, recorded.OwnerID(), date.MonthKey())
	return err
}
