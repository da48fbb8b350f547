package budget

import (
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/common/validation"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/shopspring/decimal"
)

type CreateBudgetDTO struct {
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Month      calendar.Month  `json:"month"`
}

func (dto CreateBudgetDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("category_id", dto.CategoryID).Required()
	v.Field("amount", dto.Amount).
		Positive(errors.ErrCodeInvalidAmount).
		MaxScale(2, errors.ErrCodeInvalidAmount)
	v.Field("month", dto.Month).Required()
	return v.Validate()
}

type UpdateBudgetDTO = CreateBudgetDTO

type BudgetResponse struct {
	ID           string         `json:"id"`
	CategoryID   string         `json:"category_id"`
	CategoryName string         `json:"category_name"`
	Amount       string         `json:"amount"`
	Month        calendar.Month `json:"month"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type BudgetsResponse struct {
	Budgets []BudgetResponse `json:"budgets"`
}

type ProgressResponse struct {
	BudgetResponse
	Spent      string `json:"spent"`
	Percentage string `json:"percentage"`
	Remaining  string `json:"remaining"`
}

type ProgressListResponse struct {
	Month    calendar.Month     `json:"month"`
	Progress []ProgressResponse `json:"progress"`
}

type AlertResponse struct {
	ID           string         `json:"id"`
	BudgetID     string         `json:"budget_id"`
	CategoryID   string         `json:"category_id"`
	CategoryName string         `json:"category_name"`
	Month        calendar.Month `json:"month"`
	Kind         Kind           `json:"kind"`
	Severity     Severity       `json:"severity"`
	Message      string         `json:"message"`
	Amount       string         `json:"amount"`
	Spent        string         `json:"spent"`
	Percentage   string         `json:"percentage"`
}

type AlertsResponse struct {
	Month  calendar.Month  `json:"month"`
	Alerts []AlertResponse `json:"alerts"`
}

func ToResponse(b finance.Budget) BudgetResponse {
	name := finance.UncategorizedLabel
	if b.Category != nil {
		name = b.Category.Name
	}
	return BudgetResponse{
		ID:           b.ID,
		CategoryID:   b.CategoryID,
		CategoryName: name,
		Amount:       b.Amount.StringFixed(2),
		Month:        b.Month,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func ToResponses(budgets []finance.Budget) BudgetsResponse {
	out := make([]BudgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = ToResponse(b)
	}
	return BudgetsResponse{Budgets: out}
}

func ToProgressResponse(month calendar.Month, list []BudgetProgress) ProgressListResponse {
	out := make([]ProgressResponse, len(list))
	for i, p := range list {
		r := ToResponse(p.Budget)
		r.CategoryName = p.CategoryName
		out[i] = ProgressResponse{
			BudgetResponse: r,
			Spent:          p.Spent.StringFixed(2),
			Percentage:     p.Percentage.StringFixed(1),
			Remaining:      p.Remaining.StringFixed(2),
		}
	}
	return ProgressListResponse{Month: month, Progress: out}
}

func ToAlertsResponse(month calendar.Month, alerts []Alert) AlertsResponse {
	out := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = AlertResponse{
			ID:           a.ID,
			BudgetID:     a.BudgetID,
			CategoryID:   a.CategoryID,
			CategoryName: a.CategoryName,
			Month:        a.Month,
			Kind:         a.Kind,
			Severity:     a.Severity,
			Message:      a.Message,
			Amount:       a.Amount.StringFixed(2),
			Spent:        a.Spent.StringFixed(2),
			Percentage:   a.Percentage.StringFixed(1),
		}
	}
	return AlertsResponse{Month: month, Alerts: out}
}

// ParseMonthParam reads a YYYY-MM query value, defaulting to the month of today.
func ParseMonthParam(raw string, today calendar.Date) (calendar.Month, *errors.AppError) {
	if raw == "" {
		return today.MonthKey(), nil
	}
	m, err := calendar.ParseMonth(raw)
	if err != nil {
		return calendar.Month{}, errors.NewValidationFieldError("month", "month must be in YYYY-MM format", errors.ErrCodeInvalidMonth)
	}
	return m, nil
}
