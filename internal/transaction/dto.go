package transaction

import (
	"net/url"
	"strings"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/common/validation"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/shopspring/decimal"
)

type CreateTransactionDTO struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	CategoryID  *string         `json:"category_id"`
	Description string          `json:"description"`
	Date        calendar.Date   `json:"date"`
}

func (dto CreateTransactionDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("amount", dto.Amount).
		Positive(errors.ErrCodeInvalidAmount).
		MaxScale(2, errors.ErrCodeInvalidAmount)
	v.Field("type", dto.Type).Required().TransactionType()
	v.Field("date", dto.Date).Required()
	v.Field("description", dto.Description).MaxLength(500)
	return v.Validate()
}

// UpdateTransactionDTO replaces every mutable field of a transaction.
type UpdateTransactionDTO = CreateTransactionDTO

type TransactionResponse struct {
	ID           string        `json:"id"`
	Amount       string        `json:"amount"`
	Type         string        `json:"type"`
	CategoryID   *string       `json:"category_id"`
	CategoryName string        `json:"category_name"`
	Description  string        `json:"description"`
	Date         calendar.Date `json:"date"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type TransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

type DayGroupResponse struct {
	Date         calendar.Date         `json:"date"`
	Income       string                `json:"income"`
	Expense      string                `json:"expense"`
	Transactions []TransactionResponse `json:"transactions"`
}

type GroupedTransactionsResponse struct {
	Days  []DayGroupResponse `json:"days"`
	Count int                `json:"count"`
}

// ToResponse renders t; the category name falls back to the uncategorized label.
func ToResponse(t finance.Transaction) TransactionResponse {
	name := finance.UncategorizedLabel
	if t.Category != nil {
		name = t.Category.Name
	}
	return TransactionResponse{
		ID:           t.ID,
		Amount:       t.Amount.StringFixed(2),
		Type:         string(t.Type),
		CategoryID:   t.CategoryID,
		CategoryName: name,
		Description:  t.Description,
		Date:         t.Date,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func ToResponses(txs []finance.Transaction) TransactionsResponse {
	out := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		out[i] = ToResponse(t)
	}
	return TransactionsResponse{Transactions: out, Count: len(out)}
}

func ToGroupedResponse(groups []DayGroup) GroupedTransactionsResponse {
	days := make([]DayGroupResponse, len(groups))
	count := 0
	for i, g := range groups {
		days[i] = DayGroupResponse{
			Date:         g.Date,
			Income:       g.Income.StringFixed(2),
			Expense:      g.Expense.StringFixed(2),
			Transactions: ToResponses(g.Transactions).Transactions,
		}
		count += len(g.Transactions)
	}
	return GroupedTransactionsResponse{Days: days, Count: count}
}

// ListQuery is the parsed form of GET /transactions parameters.
type ListQuery struct {
	Filter  Filter
	GroupBy string
}

// ParseListQuery reads q, range, start, end, type, category_id, min_amount,
// max_amount and group.
func ParseListQuery(values url.Values) (ListQuery, *errors.AppError) {
	var q ListQuery
	q.Filter.Search = strings.TrimSpace(values.Get("q"))

	mode, ok := ParseDateRangeMode(values.Get("range"))
	if !ok {
		return q, errors.NewValidationFieldError("range", "range must be all, this_month, last_month or custom", errors.ErrCodeInvalidDate)
	}
	switch mode {
	case ThisMonth:
		q.Filter.Dates = CurrentMonth()
	case LastMonth:
		q.Filter.Dates = PreviousMonth()
	case CustomRange:
		start, err := calendar.ParseDate(values.Get("start"))
		if err != nil {
			return q, errors.NewValidationFieldError("start", "start must be a date in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
		}
		end, err := calendar.ParseDate(values.Get("end"))
		if err != nil {
			return q, errors.NewValidationFieldError("end", "end must be a date in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
		}
		q.Filter.Dates = Between(start, end)
	}

	if raw := values.Get("type"); raw != "" {
		t, err := finance.ParseTransactionType(raw)
		if err != nil {
			return q, errors.NewValidationFieldError("type", err.Error(), errors.ErrCodeInvalidType)
		}
		q.Filter.Type = &t
	}
	if raw := values.Get("category_id"); raw != "" {
		q.Filter.CategoryID = &raw
	}

	var appErr *errors.AppError
	if q.Filter.MinAmount, appErr = parseAmount(values, "min_amount"); appErr != nil {
		return q, appErr
	}
	if q.Filter.MaxAmount, appErr = parseAmount(values, "max_amount"); appErr != nil {
		return q, appErr
	}

	switch group := values.Get("group"); group {
	case "", "day":
		q.GroupBy = group
	default:
		return q, errors.NewValidationFieldError("group", "group must be day", errors.ErrCodeValidationFailed)
	}
	return q, nil
}

func parseAmount(values url.Values, field string) (*decimal.Decimal, *errors.AppError) {
	raw := values.Get(field)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.NewValidationFieldError(field, field+" must be a number", errors.ErrCodeInvalidAmount)
	}
	return &d, nil
}
