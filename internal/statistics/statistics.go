// Package statistics derives totals, per-category breakdowns, monthly trends and
// spending pace from a transaction collection. Every function is pure and
// defined for empty input.
package statistics

import (
	"sort"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// Summarize sums income and expense of the transactions dated inside period.
func Summarize(txs []finance.Transaction, period calendar.Range) Totals {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txs {
		if !period.Contains(t.Date) {
			continue
		}
		switch t.Type {
		case finance.Income:
			income = income.Add(t.Amount)
		case finance.Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return Totals{Income: income, Expense: expense, Balance: income.Sub(expense)}
}

func TotalIncome(txs []finance.Transaction, period calendar.Range) decimal.Decimal {
	return Summarize(txs, period).Income
}

func TotalExpense(txs []finance.Transaction, period calendar.Range) decimal.Decimal {
	return Summarize(txs, period).Expense
}

func Balance(txs []finance.Transaction, period calendar.Range) decimal.Decimal {
	return Summarize(txs, period).Balance
}

type BreakdownEntry struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	// Percentage of the breakdown total; invalid when the total is zero.
	Percentage decimal.NullDecimal `json:"percentage"`
}

type Breakdown struct {
	Type    finance.TransactionType `json:"type"`
	Total   decimal.Decimal         `json:"total"`
	Entries []BreakdownEntry        `json:"entries"`
}

// CategoryBreakdown groups the transactions of kind inside period by category
// display name. Entries are ordered by amount, largest first, then by name.
func CategoryBreakdown(txs []finance.Transaction, categories finance.CategoryIndex, kind finance.TransactionType, period calendar.Range) Breakdown {
	sums := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, t := range txs {
		if t.Type != kind || !period.Contains(t.Date) {
			continue
		}
		name := categories.NameOf(t.CategoryID)
		sums[name] = sums[name].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	entries := make([]BreakdownEntry, 0, len(sums))
	for name, amount := range sums {
		entry := BreakdownEntry{Category: name, Amount: amount}
		if !total.IsZero() {
			entry.Percentage = decimal.NewNullDecimal(amount.Div(total).Mul(hundred))
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].Amount.Cmp(entries[j].Amount); c != 0 {
			return c > 0
		}
		return entries[i].Category < entries[j].Category
	})

	return Breakdown{Type: kind, Total: total, Entries: entries}
}

type TrendPoint struct {
	Month   calendar.Month  `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthlyTrend returns one point per month, in the order given.
func MonthlyTrend(txs []finance.Transaction, months []calendar.Month) []TrendPoint {
	points := make([]TrendPoint, len(months))
	for i, m := range months {
		totals := Summarize(txs, m.Range())
		points[i] = TrendPoint{
			Month:   m,
			Income:  totals.Income,
			Expense: totals.Expense,
			Balance: totals.Balance,
		}
	}
	return points
}

type Pace struct {
	ElapsedDays int             `json:"elapsed_days"`
	TotalDays   int             `json:"total_days"`
	Spent       decimal.Decimal `json:"spent"`
	Average     decimal.Decimal `json:"daily_average"`
	Projected   decimal.Decimal `json:"projected"`
}

// DailyAverage divides the expense of period by the days elapsed from its
// start through asOf (capped at the period end), and projects that rate over
// the whole period.
func DailyAverage(txs []finance.Transaction, period calendar.Range, asOf calendar.Date) Pace {
	pace := Pace{
		TotalDays: period.Days(),
		Spent:     TotalExpense(txs, period),
		Average:   decimal.Zero,
		Projected: decimal.Zero,
	}

	end := asOf
	if end.After(period.End) {
		end = period.End
	}
	pace.ElapsedDays = calendar.NewRange(period.Start, end).Days()
	if pace.ElapsedDays == 0 {
		return pace
	}

	pace.Average = pace.Spent.Div(decimal.NewFromInt(int64(pace.ElapsedDays)))
	pace.Projected = pace.Average.Mul(decimal.NewFromInt(int64(pace.TotalDays)))
	return pace
}
