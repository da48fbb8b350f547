// Package store holds one owner's canonical in-memory collections. Mutations
// are local and synchronous; callers write to the backend first and then
// reconcile the store with the confirmed record.
package store

import (
	"slices"
	"sync"
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu sync.RWMutex

	transactions []finance.Transaction
	categories   []finance.Category
	budgets      []finance.Budget
	user         *finance.User
	loading      bool
	loaded       bool

	// generation advances on every reload, reset and local write. A reload
	// applies only if nothing happened since its Begin.
	generation uint64
	reloading  uint64
}

func New() *Store {
	return &Store{}
}

// Snapshot is a copy of the store contents, safe to hand to pure consumers.
type Snapshot struct {
	User         *finance.User
	Transactions []finance.Transaction
	Categories   []finance.Category
	Budgets      []finance.Budget
	Loading      bool
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Transactions: slices.Clone(s.transactions),
		Categories:   slices.Clone(s.categories),
		Budgets:      slices.Clone(s.budgets),
		Loading:      s.loading,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Loaded reports whether a reload has been applied since the last reset.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *Store) User() *finance.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) SetUser(u *finance.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	s.user = &cp
}

// Reset empties every collection and invalidates outstanding tickets.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = nil
	s.categories = nil
	s.budgets = nil
	s.user = nil
	s.loading = false
	s.loaded = false
	s.generation++
}

// Ticket marks the start of an asynchronous reload.
type Ticket struct {
	generation uint64
}

// Begin starts a reload. Any ticket issued earlier stops being current.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.reloading = s.generation
	s.loading = true
	return Ticket{generation: s.generation}
}

func (s *Store) Current(t Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation == t.generation
}

// ApplyIf replaces every collection with snap when t is still current and
// reports whether it did. A stale result is dropped.
func (s *Store) ApplyIf(t Ticket, snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != t.generation {
		return false
	}
	s.transactions = slices.Clone(snap.Transactions)
	s.categories = slices.Clone(snap.Categories)
	s.budgets = slices.Clone(snap.Budgets)
	s.attachAll()
	s.user = nil
	if snap.User != nil {
		u := *snap.User
		s.user = &u
	}
	s.loading = false
	s.loaded = true
	return true
}

// Abort clears the loading flag of t's reload unless a newer reload began.
func (s *Store) Abort(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reloading == t.generation {
		s.loading = false
	}
}

// touch invalidates in-flight reloads. Caller holds the lock.
func (s *Store) touch() {
	s.generation++
}

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	return slices.IndexFunc(items, func(item T) bool { return idOf(item) == id })
}

func transactionID(t finance.Transaction) string { return t.ID }
func categoryID(c finance.Category) string { return c.ID }
func budgetID(b finance.Budget) string { return b.ID }

// Transactions

func (s *Store) Transactions() []finance.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transactions)
}

func (s *Store) SetTransactions(txs []finance.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.transactions = slices.Clone(txs)
	s.attachAll()
}

func (s *Store) AddTransaction(t finance.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.attachCategory(&t)
	s.transactions = append(s.transactions, t)
}

func (s *Store) Transaction(id string) (finance.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.transactions, id, transactionID); i >= 0 {
		return s.transactions[i], true
	}
	return finance.Transaction{}, false
}

// TransactionPatch carries the fields to merge; nil fields are left alone.
type TransactionPatch struct {
	Amount        *decimal.Decimal
	Type          *finance.TransactionType
	CategoryID    *string
	ClearCategory bool
	Description   *string
	Date          *calendar.Date
	UpdatedAt     *time.Time
}

// FullTransactionPatch overwrites every mutable field with the values of t.
func FullTransactionPatch(t finance.Transaction) TransactionPatch {
	p := TransactionPatch{
		Amount:      &t.Amount,
		Type:        &t.Type,
		Description: &t.Description,
		Date:        &t.Date,
		UpdatedAt:   &t.UpdatedAt,
	}
	if t.CategoryID == nil {
		p.ClearCategory = true
	} else {
		p.CategoryID = t.CategoryID
	}
	return p
}

// UpdateTransaction merges p into the transaction with id. It reports false
// when no such transaction is held.
func (s *Store) UpdateTransaction(id string, p TransactionPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	i := indexOf(s.transactions, id, transactionID)
	if i < 0 {
		return false
	}
	t := &s.transactions[i]
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.ClearCategory {
		t.CategoryID = nil
	} else if p.CategoryID != nil {
		cid := *p.CategoryID
		t.CategoryID = &cid
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
	s.attachCategory(t)
	return true
}

func (s *Store) DeleteTransaction(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	i := indexOf(s.transactions, id, transactionID)
	if i < 0 {
		return false
	}
	s.transactions = slices.Delete(s.transactions, i, i+1)
	return true
}

// attachCategory refreshes the joined category view of t. Caller holds the lock.
func (s *Store) attachCategory(t *finance.Transaction) {
	t.Category = nil
	if t.CategoryID == nil {
		return
	}
	if i := indexOf(s.categories, *t.CategoryID, categoryID); i >= 0 {
		c := s.categories[i]
		t.Category = &c
	}
}

// attachAll refreshes every joined view. Caller holds the lock.
func (s *Store) attachAll() {
	for i := range s.transactions {
		s.attachCategory(&s.transactions[i])
	}
	for i := range s.budgets {
		s.attachBudgetCategory(&s.budgets[i])
	}
}

func (s *Store) attachBudgetCategory(b *finance.Budget) {
	b.Category = nil
	if i := indexOf(s.categories, b.CategoryID, categoryID); i >= 0 {
		c := s.categories[i]
		b.Category = &c
	}
}

// Categories

func (s *Store) Categories() []finance.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

func (s *Store) SetCategories(categories []finance.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.categories = slices.Clone(categories)
	s.attachAll()
}

func (s *Store) AddCategory(c finance.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.categories = append(s.categories, c)
}

func (s *Store) Category(id string) (finance.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.categories, id, categoryID); i >= 0 {
		return s.categories[i], true
	}
	return finance.Category{}, false
}

type CategoryPatch struct {
	Name      *string
	Type      *finance.TransactionType
	Icon      *string
	Color     *string
	UpdatedAt *time.Time
}

func FullCategoryPatch(c finance.Category) CategoryPatch {
	return CategoryPatch{
		Name:      &c.Name,
		Type:      &c.Type,
		Icon:      &c.Icon,
		Color:     &c.Color,
		UpdatedAt: &c.UpdatedAt,
	}
}

func (s *Store) UpdateCategory(id string, p CategoryPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	i := indexOf(s.categories, id, categoryID)
	if i < 0 {
		return false
	}
	c := &s.categories[i]
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.UpdatedAt != nil {
		c.UpdatedAt = *p.UpdatedAt
	}
	s.attachAll()
	return true
}

// DeleteCategory removes the category and the budgets set on it. Its
// transactions become uncategorized, as the database does on delete.
func (s *Store) DeleteCategory(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	i := indexOf(s.categories, id, categoryID)
	if i < 0 {
		return false
	}
	s.categories = slices.Delete(s.categories, i, i+1)
	s.budgets = slices.DeleteFunc(s.budgets, func(b finance.Budget) bool { return b.CategoryID == id })
	for j := range s.transactions {
		if s.transactions[j].HasCategory(id) {
			s.transactions[j].CategoryID = nil
			s.transactions[j].Category = nil
		}
	}
	return true
}

// Budgets

func (s *Store) Budgets() []finance.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.budgets)
}

func (s *Store) SetBudgets(budgets []finance.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.budgets = slices.Clone(budgets)
	s.attachAll()
}

func (s *Store) AddBudget(b finance.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.attachBudgetCategory(&b)
	s.budgets = append(s.budgets, b)
}

func (s *Store) Budget(id string) (finance.Budget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.budgets, id, budgetID); i >= 0 {
		return s.budgets[i], true
	}
	return finance.Budget{}, false
}

type BudgetPatch struct {
	CategoryID *string
	Amount     *decimal.Decimal
	Month      *calendar.Month
	UpdatedAt  *time.Time
}

func FullBudgetPatch(b finance.Budget) BudgetPatch {
	return BudgetPatch{
		CategoryID: &b.CategoryID,
		Amount:     &b.Amount,
		Month:      &b.Month,
		UpdatedAt:  &b.UpdatedAt,
	}
}

func (s *Store) UpdateBudget(id string, p BudgetPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	i := indexOf(s.budgets, id, budgetID)
	if i < 0 {
		return false
	}
	b := &s.budgets[i]
	if p.CategoryID != nil {
		b.CategoryID = *p.CategoryID
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Month != nil {
		b.Month = *p.Month
	}
	if p.UpdatedAt != nil {
		b.UpdatedAt = *p.UpdatedAt
	}
	s.attachBudgetCategory(b)
	return true
}

func (s *Store) DeleteBudget(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	i := indexOf(s.budgets, id, budgetID)
	if i < 0 {
		return false
	}
	s.budgets = slices.Delete(s.budgets, i, i+1)
	return true
}
