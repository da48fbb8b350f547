package budget

import (
	"fmt"
	"sort"
	"sync"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/shopspring/decimal"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

func (s Severity) rank() int {
	switch s {
	case SeverityDanger:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

type Kind string

const (
	KindOverspent Kind = "overspent"
	KindNearLimit Kind = "near_limit"
	KindPace      Kind = "pace"
)

var (
	hundred = decimal.NewFromInt(100)

	DangerThreshold  = decimal.NewFromInt(100)
	WarningThreshold = decimal.NewFromInt(80)
	PaceThreshold    = decimal.NewFromInt(50)
	PaceSlack        = decimal.NewFromInt(20)
)

// Progress is how much of a budget has been used.
type Progress struct {
	Spent      decimal.Decimal `json:"spent"`
	Percentage decimal.Decimal `json:"percentage"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// Measure sums the expenses of the budget's category within its month.
func Measure(b finance.Budget, txs []finance.Transaction) Progress {
	spent := decimal.Zero
	for _, t := range txs {
		if t.Type != finance.Expense || !t.HasCategory(b.CategoryID) || !b.Month.Contains(t.Date) {
			continue
		}
		spent = spent.Add(t.Amount)
	}

	percentage := decimal.Zero
	if !b.Amount.IsZero() {
		percentage = spent.Div(b.Amount).Mul(hundred)
	}

	return Progress{
		Spent:      spent,
		Percentage: percentage,
		Remaining:  b.Amount.Sub(spent),
	}
}

type Alert struct {
	ID           string          `json:"id"`
	BudgetID     string          `json:"budget_id"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Month        calendar.Month  `json:"month"`
	Kind         Kind            `json:"kind"`
	Severity     Severity        `json:"severity"`
	Message      string          `json:"message"`
	Amount       decimal.Decimal `json:"amount"`
	Progress
}

// AlertID identifies one kind of alert on one budget.
func AlertID(budgetID string, kind Kind) string {
	return budgetID + "-" + string(kind)
}

// Classify applies the thresholds in precedence order, first match wins. The
// pace rule only applies when the budget's month is the month of today.
func Classify(b finance.Budget, p Progress, categoryName string, today calendar.Date) (Alert, bool) {
	alert := Alert{
		BudgetID:     b.ID,
		CategoryID:   b.CategoryID,
		CategoryName: categoryName,
		Month:        b.Month,
		Amount:       b.Amount,
		Progress:     p,
	}

	switch {
	case p.Percentage.GreaterThanOrEqual(DangerThreshold):
		alert.Kind, alert.Severity = KindOverspent, SeverityDanger
		alert.Message = fmt.Sprintf("%s budget exceeded by %s", categoryName, p.Remaining.Abs().StringFixed(2))
	case p.Percentage.GreaterThanOrEqual(WarningThreshold):
		alert.Kind, alert.Severity = KindNearLimit, SeverityWarning
		alert.Message = fmt.Sprintf("%s budget is %s%% used, %s remaining",
			categoryName, p.Percentage.StringFixed(1), p.Remaining.StringFixed(2))
	case p.Percentage.GreaterThanOrEqual(PaceThreshold) && b.Month == today.MonthKey():
		elapsed := elapsedPercent(b.Month, today)
		if !p.Percentage.GreaterThan(elapsed.Add(PaceSlack)) {
			return Alert{}, false
		}
		alert.Kind, alert.Severity = KindPace, SeverityInfo
		alert.Message = fmt.Sprintf("%s spending is ahead of schedule: %s%% used with %s%% of the month elapsed",
			categoryName, p.Percentage.StringFixed(1), elapsed.StringFixed(1))
	default:
		return Alert{}, false
	}

	alert.ID = AlertID(b.ID, alert.Kind)
	return alert, true
}

func elapsedPercent(m calendar.Month, today calendar.Date) decimal.Decimal {
	return decimal.NewFromInt(int64(today.Day)).
		Div(decimal.NewFromInt(int64(m.Days()))).
		Mul(hundred)
}

// Evaluate returns the alerts raised by the budgets of month, most severe first.
func Evaluate(budgets []finance.Budget, txs []finance.Transaction, categories []finance.Category, month calendar.Month, today calendar.Date) []Alert {
	idx := finance.IndexCategories(categories)
	alerts := make([]Alert, 0)
	for _, b := range budgets {
		if b.Month != month {
			continue
		}
		categoryID := b.CategoryID
		if alert, ok := Classify(b, Measure(b, txs), idx.NameOf(&categoryID), today); ok {
			alerts = append(alerts, alert)
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if ri, rj := alerts[i].Severity.rank(), alerts[j].Severity.rank(); ri != rj {
			return ri < rj
		}
		return alerts[i].ID < alerts[j].ID
	})
	return alerts
}

type BudgetProgress struct {
	Budget       finance.Budget `json:"budget"`
	CategoryName string         `json:"category_name"`
	Progress
}

// ProgressFor measures every budget of month, in input order.
func ProgressFor(budgets []finance.Budget, txs []finance.Transaction, categories []finance.Category, month calendar.Month) []BudgetProgress {
	idx := finance.IndexCategories(categories)
	out := make([]BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		if b.Month != month {
			continue
		}
		categoryID := b.CategoryID
		out = append(out, BudgetProgress{
			Budget:       b,
			CategoryName: idx.NameOf(&categoryID),
			Progress:     Measure(b, txs),
		})
	}
	return out
}

// Dismissals remembers which alerts the owner has hidden for the rest of the
// session. It is never persisted.
type Dismissals struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewDismissals() *Dismissals {
	return &Dismissals{ids: make(map[string]struct{})}
}

func (d *Dismissals) Dismiss(alertID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids[alertID] = struct{}{}
}

func (d *Dismissals) IsDismissed(alertID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.ids[alertID]
	return ok
}

// Visible drops the dismissed alerts.
func (d *Dismissals) Visible(alerts []Alert) []Alert {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if _, hidden := d.ids[a.ID]; !hidden {
			out = append(out, a)
		}
	}
	return out
}

func (d *Dismissals) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = make(map[string]struct{})
}
