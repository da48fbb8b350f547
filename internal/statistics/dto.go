package statistics

import (
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
)

type TotalsResponse struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

type SummaryResponse struct {
	Start calendar.Date `json:"start"`
	End   calendar.Date `json:"end"`
	TotalsResponse
}

type BreakdownEntryResponse struct {
	Category   string  `json:"category"`
	Amount     string  `json:"amount"`
	Percentage *string `json:"percentage"`
}

type BreakdownResponse struct {
	Type    string                   `json:"type"`
	Total   string                   `json:"total"`
	Entries []BreakdownEntryResponse `json:"entries"`
}

type TrendPointResponse struct {
	Month calendar.Month `json:"month"`
	TotalsResponse
}

type TrendResponse struct {
	Points []TrendPointResponse `json:"points"`
}

type PaceResponse struct {
	ElapsedDays  int    `json:"elapsed_days"`
	TotalDays    int    `json:"total_days"`
	Spent        string `json:"spent"`
	DailyAverage string `json:"daily_average"`
	Projected    string `json:"projected"`
}

type OverviewResponse struct {
	Month            calendar.Month       `json:"month"`
	Totals           TotalsResponse       `json:"totals"`
	IncomeBreakdown  BreakdownResponse    `json:"income_breakdown"`
	ExpenseBreakdown BreakdownResponse    `json:"expense_breakdown"`
	Trend            []TrendPointResponse `json:"trend"`
	Pace             PaceResponse         `json:"pace"`
}

func ToTotalsResponse(t Totals) TotalsResponse {
	return TotalsResponse{
		Income:  t.Income.StringFixed(2),
		Expense: t.Expense.StringFixed(2),
		Balance: t.Balance.StringFixed(2),
	}
}

func ToSummaryResponse(period calendar.Range, t Totals) SummaryResponse {
	return SummaryResponse{Start: period.Start, End: period.End, TotalsResponse: ToTotalsResponse(t)}
}

// ToBreakdownResponse rounds percentages to one decimal place; a zero total
// yields null percentages.
func ToBreakdownResponse(b Breakdown) BreakdownResponse {
	entries := make([]BreakdownEntryResponse, len(b.Entries))
	for i, e := range b.Entries {
		entries[i] = BreakdownEntryResponse{Category: e.Category, Amount: e.Amount.StringFixed(2)}
		if e.Percentage.Valid {
			pct := e.Percentage.Decimal.StringFixed(1)
			entries[i].Percentage = &pct
		}
	}
	return BreakdownResponse{Type: string(b.Type), Total: b.Total.StringFixed(2), Entries: entries}
}

func ToTrendResponse(points []TrendPoint) TrendResponse {
	out := make([]TrendPointResponse, len(points))
	for i, p := range points {
		out[i] = TrendPointResponse{
			Month:          p.Month,
			TotalsResponse: ToTotalsResponse(Totals{Income: p.Income, Expense: p.Expense, Balance: p.Balance}),
		}
	}
	return TrendResponse{Points: out}
}

func ToPaceResponse(p Pace) PaceResponse {
	return PaceResponse{
		ElapsedDays:  p.ElapsedDays,
		TotalDays:    p.TotalDays,
		Spent:        p.Spent.StringFixed(2),
		DailyAverage: p.Average.StringFixed(2),
		Projected:    p.Projected.StringFixed(2),
	}
}

func ToOverviewResponse(o Overview) OverviewResponse {
	return OverviewResponse{
		Month:            o.Month,
		Totals:           ToTotalsResponse(o.Totals),
		IncomeBreakdown:  ToBreakdownResponse(o.IncomeBreakdown),
		ExpenseBreakdown: ToBreakdownResponse(o.ExpenseBreakdown),
		Trend:            ToTrendResponse(o.Trend).Points,
		Pace:             ToPaceResponse(o.Pace),
	}
}
