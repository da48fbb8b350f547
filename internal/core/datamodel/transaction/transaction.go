package transaction

import (
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/datamodel/category"
	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID          string             `gorm:"primaryKey;type:varchar(36)"`
	UserID      string             `gorm:"column:user_id;type:varchar(36);not null;index"`
	CategoryID  *string            `gorm:"column:category_id;type:varchar(36)"`
	Category    *category.Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Amount      decimal.Decimal    `gorm:"column:amount;type:numeric(14,2);not null"`
	Type        string             `gorm:"column:type;type:varchar(10);not null"`
	Description string             `gorm:"column:description"`
	Date        time.Time          `gorm:"column:date;type:date;not null"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
