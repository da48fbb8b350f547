package postgres

import (
	"context"
	goerrors "errors"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/budget"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	budgetDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/budget"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) ListByOwner(ctx context.Context, ownerID string) ([]finance.Budget, error) {
	var rows []*budgetDatamodel.Budget
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", ownerID).
		Order("month DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return budget.FromDataModelSlice(rows)
}

func (r *BudgetRepository) ListByOwnerMonth(ctx context.Context, ownerID string, month calendar.Month) ([]finance.Budget, error) {
	var rows []*budgetDatamodel.Budget
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND month = ?", ownerID, month.String()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return budget.FromDataModelSlice(rows)
}

// OwnersForMonth lists the owners holding at least one budget for month.
func (r *BudgetRepository) OwnersForMonth(ctx context.Context, month calendar.Month) ([]string, error) {
	var owners []string
	err := r.db.WithContext(ctx).
		Model(&budgetDatamodel.Budget{}).
		Where("month = ?", month.String()).
		Distinct().
		Order("user_id").
		Pluck("user_id", &owners).Error
	return owners, err
}

func (r *BudgetRepository) Create(ctx context.Context, b *finance.Budget) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	row := budget.ToDataModel(b)
	if err := r.db.WithContext(ctx).Omit("Category").Create(row).Error; err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrDuplicateBudget
		}
		return err
	}
	b.CreatedAt = row.CreatedAt
	b.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *BudgetRepository) Update(ctx context.Context, b *finance.Budget) error {
	b.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&budgetDatamodel.Budget{}).
		Where("id = ? AND user_id = ?", b.ID, b.OwnerID).
		Updates(map[string]interface{}{
			"category_id": b.CategoryID,
			"amount":      b.Amount,
			"month":       b.Month.String(),
			"updated_at":  b.UpdatedAt,
		})
	if result.Error != nil {
		if goerrors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return errors.ErrDuplicateBudget
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrBudgetNotFound
	}
	return nil
}

func (r *BudgetRepository) Delete(ctx context.Context, ownerID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&budgetDatamodel.Budget{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrBudgetNotFound
	}
	return nil
}
