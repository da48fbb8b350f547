// Package finance defines the entities shared by every component: transactions,
// categories, budgets and the owner they are scoped to.
package finance

import (
	"fmt"
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// UncategorizedLabel is shown when a transaction has no category or its
// category no longer resolves.
const UncategorizedLabel = "uncategorized"

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid transaction type %q: expected income or expense", s)
	}
	return t, nil
}

type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	CategoryID  *string         `json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Date        calendar.Date   `json:"date"`
	OwnerID     string          `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (t Transaction) IsIncome() bool  { return t.Type == Income }
func (t Transaction) IsExpense() bool { return t.Type == Expense }

// HasCategory reports whether t references categoryID.
func (t Transaction) HasCategory(categoryID string) bool {
	return t.CategoryID != nil && *t.CategoryID == categoryID
}

type Category struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Icon      string          `json:"icon,omitempty"`
	Color     string          `json:"color,omitempty"`
	OwnerID   *string         `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsShared reports whether the category is public to every owner.
func (c Category) IsShared() bool {
	return c.OwnerID == nil
}

func (c Category) OwnedBy(ownerID string) bool {
	return c.OwnerID != nil && *c.OwnerID == ownerID
}

// VisibleTo reports whether ownerID may read the category.
func (c Category) VisibleTo(ownerID string) bool {
	return c.IsShared() || c.OwnedBy(ownerID)
}

type Budget struct {
	ID         string          `json:"id"`
	CategoryID string          `json:"category_id"`
	Category   *Category       `json:"category,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Month      calendar.Month  `json:"month"`
	OwnerID    string          `json:"user_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryIndex resolves category references by ID.
type CategoryIndex map[string]Category

func IndexCategories(categories []Category) CategoryIndex {
	idx := make(CategoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}

// Lookup returns the category behind id, false when absent or dangling.
func (idx CategoryIndex) Lookup(id *string) (Category, bool) {
	if id == nil || idx == nil {
		return Category{}, false
	}
	c, ok := idx[*id]
	return c, ok
}

// NameOf returns the display name for a category reference.
func (idx CategoryIndex) NameOf(id *string) string {
	if c, ok := idx.Lookup(id); ok {
		return c.Name
	}
	return UncategorizedLabel
}
