package category

import "time"

// Category rows with a NULL user_id are shared with every owner.
type Category struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    *string   `gorm:"column:user_id;type:varchar(36);index"`
	Name      string    `gorm:"column:name;not null"`
	Type      string    `gorm:"column:type;type:varchar(10);not null"`
	Icon      string    `gorm:"column:icon"`
	Color     string    `gorm:"column:color"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Category) TableName() string {
	return "categories"
}
