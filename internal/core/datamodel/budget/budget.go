package budget

import (
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/datamodel/category"
	"github.com/shopspring/decimal"
)

type Budget struct {
	ID         string             `gorm:"primaryKey;type:varchar(36)"`
	UserID     string             `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:idx_budgets_owner_category_month"`
	CategoryID string             `gorm:"column:category_id;type:varchar(36);not null;uniqueIndex:idx_budgets_owner_category_month"`
	Category   *category.Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Amount     decimal.Decimal    `gorm:"column:amount;type:numeric(14,2);not null"`
	Month      string             `gorm:"column:month;type:varchar(7);not null;uniqueIndex:idx_budgets_owner_category_month"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Budget) TableName() string {
	return "budgets"
}
