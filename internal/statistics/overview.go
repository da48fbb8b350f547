package statistics

import (
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
)

// TrendWindow is how many months the overview trend covers.
const TrendWindow = 6

type Overview struct {
	Month            calendar.Month `json:"month"`
	Totals           Totals         `json:"totals"`
	IncomeBreakdown  Breakdown      `json:"income_breakdown"`
	ExpenseBreakdown Breakdown      `json:"expense_breakdown"`
	Trend            []TrendPoint   `json:"trend"`
	Pace             Pace           `json:"pace"`
}

// BuildOverview assembles the dashboard view for month as seen on asOf.
func BuildOverview(txs []finance.Transaction, categories []finance.Category, month calendar.Month, asOf calendar.Date) Overview {
	idx := finance.IndexCategories(categories)
	period := month.Range()

	return Overview{
		Month:            month,
		Totals:           Summarize(txs, period),
		IncomeBreakdown:  CategoryBreakdown(txs, idx, finance.Income, period),
		ExpenseBreakdown: CategoryBreakdown(txs, idx, finance.Expense, period),
		Trend:            MonthlyTrend(txs, calendar.TrailingMonths(month, TrendWindow)),
		Pace:             DailyAverage(txs, period, asOf),
	}
}
