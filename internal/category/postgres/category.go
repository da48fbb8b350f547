package postgres

import (
	"context"
	goerrors "errors"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/category"
	categoryDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/category"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListVisible returns the owner's categories together with the shared ones.
func (r *CategoryRepository) ListVisible(ctx context.Context, ownerID string) ([]finance.Category, error) {
	var rows []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR user_id IS NULL", ownerID).
		Order("type ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return category.FromDataModelSlice(rows), nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*finance.Category, error) {
	var row categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, err
	}
	return category.FromDataModel(&row), nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *finance.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := category.ToDataModel(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	c.CreatedAt = row.CreatedAt
	c.UpdatedAt = row.UpdatedAt
	return nil
}

// Update rewrites the mutable fields of a private category.
func (r *CategoryRepository) Update(ctx context.Context, c *finance.Category) error {
	if c.OwnerID == nil {
		return errors.ErrSharedCategory
	}
	c.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&categoryDatamodel.Category{}).
		Where("id = ? AND user_id = ?", c.ID, *c.OwnerID).
		Updates(map[string]interface{}{
			"name":       c.Name,
			"type":       string(c.Type),
			"icon":       c.Icon,
			"color":      c.Color,
			"updated_at": c.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, ownerID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&categoryDatamodel.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrCategoryNotFound
	}
	return nil
}
