package budget

import (
	"github.com/frahmantamala/personal-finance/internal/category"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	budgetDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/budget"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
)

func NewBudget(ownerID string, dto CreateBudgetDTO) *finance.Budget {
	return &finance.Budget{
		CategoryID: dto.CategoryID,
		Amount:     dto.Amount,
		Month:      dto.Month,
		OwnerID:    ownerID,
	}
}

func ToDataModel(b *finance.Budget) *budgetDatamodel.Budget {
	return &budgetDatamodel.Budget{
		ID:         b.ID,
		UserID:     b.OwnerID,
		CategoryID: b.CategoryID,
		Amount:     b.Amount,
		Month:      b.Month.String(),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func FromDataModel(row *budgetDatamodel.Budget) (*finance.Budget, error) {
	month, err := calendar.ParseMonth(row.Month)
	if err != nil {
		return nil, err
	}
	b := &finance.Budget{
		ID:         row.ID,
		CategoryID: row.CategoryID,
		Amount:     row.Amount,
		Month:      month,
		OwnerID:    row.UserID,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if row.Category != nil {
		b.Category = category.FromDataModel(row.Category)
	}
	return b, nil
}

func FromDataModelSlice(rows []*budgetDatamodel.Budget) ([]finance.Budget, error) {
	result := make([]finance.Budget, len(rows))
	for i, row := range rows {
		b, err := FromDataModel(row)
		if err != nil {
			return nil, err
		}
		result[i] = *b
	}
	return result, nil
}

// Duplicate reports whether budgets already holds one for the same category
// and month, ignoring the budget with exceptID.
func Duplicate(budgets []finance.Budget, candidate finance.Budget, exceptID string) bool {
	for _, b := range budgets {
		if b.ID != exceptID && b.CategoryID == candidate.CategoryID && b.Month == candidate.Month {
			return true
		}
	}
	return false
}
