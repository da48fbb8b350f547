package finance

import (
	"errors"
	"fmt"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than 0")
	ErrInvalidType       = errors.New("type must be income or expense")
	ErrMissingDate       = errors.New("date is required")
	ErrMissingMonth      = errors.New("month is required")
	ErrMissingCategory   = errors.New("category is required")
	ErrCategoryMismatch  = errors.New("category type does not match transaction type")
	ErrBudgetCategory    = errors.New("budgets can only target expense categories")
)

// Validate checks the invariants a transaction must satisfy before it is
// written. The sign of a transaction lives in Type, never in Amount.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// CheckCategory verifies that c may be referenced by t.
func (t Transaction) CheckCategory(c Category) error {
	if c.Type != t.Type {
		return fmt.Errorf("%w: category %q is %s, transaction is %s", ErrCategoryMismatch, c.Name, c.Type, t.Type)
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if b.CategoryID == "" {
		return ErrMissingCategory
	}
	if b.Month.IsZero() {
		return ErrMissingMonth
	}
	return nil
}

// CheckCategory verifies that c can carry a budget.
func (b Budget) CheckCategory(c Category) error {
	if c.Type != Expense {
		return ErrBudgetCategory
	}
	return nil
}
