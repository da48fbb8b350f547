package postgres

import (
	"context"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	transactionDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByOwner returns every transaction of the owner joined with its category, newest first.
func (r *TransactionRepository) ListByOwner(ctx context.Context, ownerID string) ([]finance.Transaction, error) {
	var rows []*transactionDatamodel.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", ownerID).
		Order("date DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return transaction.FromDataModelSlice(rows), nil
}

// ListBetween returns the owner's transactions dated within [start, end].
func (r *TransactionRepository) ListBetween(ctx context.Context, ownerID string, start, end time.Time) ([]finance.Transaction, error) {
	var rows []*transactionDatamodel.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND date >= ? AND date <= ?", ownerID, start, end).
		Order("date DESC, created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return transaction.FromDataModelSlice(rows), nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *finance.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	row := transaction.ToDataModel(t)
	if err := r.db.WithContext(ctx).Omit("Category").Create(row).Error; err != nil {
		return err
	}
	t.CreatedAt = row.CreatedAt
	t.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *finance.Transaction) error {
	t.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&transactionDatamodel.Transaction{}).
		Where("id = ? AND user_id = ?", t.ID, t.OwnerID).
		Updates(map[string]interface{}{
			"amount":      t.Amount,
			"type":        string(t.Type),
			"category_id": t.CategoryID,
			"description": t.Description,
			"date":        t.Date.Time(),
			"updated_at":  t.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, ownerID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&transactionDatamodel.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrTransactionNotFound
	}
	return nil
}
