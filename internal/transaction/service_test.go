package transaction_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	apperrors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/events"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

// MockRepository implements transaction.RepositoryAPI for testing
type MockRepository struct {
	rows       map[string]finance.Transaction
	shouldFail bool
	nextID     int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{rows: make(map[string]finance.Transaction)}
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID string) ([]finance.Transaction, error) {
	var out []finance.Transaction
	for _, t := range m.rows {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockRepository) Create(ctx context.Context, t *finance.Transaction) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	m.nextID++
	t.ID = fmt.Sprintf("tx-%d", m.nextID)
	m.rows[t.ID] = *t
	return nil
}

func (m *MockRepository) Update(ctx context.Context, t *finance.Transaction) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	m.rows[t.ID] = *t
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, ownerID, id string) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	delete(m.rows, id)
	return nil
}

type fixedSessions struct {
	st *store.Store
}

func (f fixedSessions) Store(ctx context.Context, ownerID string) (*store.Store, error) {
	return f.st, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

var _ = Describe("Transaction Service", func() {
	var (
		repo      *MockRepository
		st        *store.Store
		publisher *recordingPublisher
		service   *transaction.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		publisher = &recordingPublisher{}
		st = store.New()
		st.SetCategories([]finance.Category{
			{ID: "food", Name: "Food", Type: finance.Expense},
			{ID: "salary", Name: "Salary", Type: finance.Income},
			{ID: "games", Name: "Games", Type: finance.Expense, OwnerID: strPtr("bob")},
		})
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = transaction.NewService(repo, fixedSessions{st: st}, publisher, logger).
			WithClock(func() calendar.Date { return calendar.MustParseDate("2024-06-20") })
	})

	create := func(amount, kind, date string, categoryID *string) (*finance.Transaction, error) {
		return service.Create(ctx, "alice", transaction.CreateTransactionDTO{
			Amount:     decimal.RequireFromString(amount),
			Type:       kind,
			CategoryID: categoryID,
			Date:       calendar.MustParseDate(date),
		})
	}

	Describe("Create", func() {
		It("should persist, join the category and announce the transaction", func() {
			t, err := create("40", "expense", "2024-06-02", strPtr("food"))
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Category).NotTo(BeNil())
			Expect(t.Category.Name).To(Equal("Food"))
			Expect(st.Transactions()).To(HaveLen(1))
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeTransactionRecorded))
		})

		It("should reject non-positive amounts", func() {
			_, err := create("0", "expense", "2024-06-02", nil)
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
			Expect(repo.rows).To(BeEmpty())
		})

		It("should reject a category of the other type", func() {
			_, err := create("40", "income", "2024-06-02", strPtr("food"))
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(apperrors.ValidationErrors)
			Expect(details.Errors[0].Code).To(Equal(string(apperrors.ErrCodeInvalidCategory)))
		})

		It("should reject another owner's category", func() {
			_, err := create("40", "expense", "2024-06-02", strPtr("games"))
			Expect(err).To(HaveOccurred())
			Expect(repo.rows).To(BeEmpty())
		})

		It("should leave the store untouched when the backend fails", func() {
			repo.shouldFail = true
			_, err := create("40", "expense", "2024-06-02", nil)
			Expect(err).To(HaveOccurred())
			Expect(st.Transactions()).To(BeEmpty())
			Expect(publisher.events).To(BeEmpty())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			_, err := create("100", "income", "2024-06-01", strPtr("salary"))
			Expect(err).NotTo(HaveOccurred())
			_, err = create("40", "expense", "2024-06-02", strPtr("food"))
			Expect(err).NotTo(HaveOccurred())
			_, err = create("15", "expense", "2024-05-28", nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return everything newest first for an empty filter", func() {
			list, err := service.List(ctx, "alice", transaction.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(3))
			Expect(list[0].Date).To(Equal(calendar.MustParseDate("2024-06-02")))
		})

		It("should resolve this month against the clock", func() {
			list, err := service.List(ctx, "alice", transaction.Filter{Dates: transaction.CurrentMonth()})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
		})

		It("should group by day with subtotals", func() {
			groups, err := service.ListByDay(ctx, "alice", transaction.Filter{Type: typePtr(finance.Expense)})
			Expect(err).NotTo(HaveOccurred())
			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Expense.Equal(decimal.NewFromInt(40))).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("should replace fields and reconcile the store", func() {
			t, err := create("40", "expense", "2024-06-02", strPtr("food"))
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.Update(ctx, "alice", t.ID, transaction.UpdateTransactionDTO{
				Amount:      decimal.RequireFromString("45.50"),
				Type:        "expense",
				Description: "dinner",
				Date:        calendar.MustParseDate("2024-06-03"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.CategoryID).To(BeNil())
			Expect(updated.Category).To(BeNil())

			held, _ := st.Transaction(t.ID)
			Expect(held.Description).To(Equal("dinner"))
			Expect(held.Amount.Equal(decimal.RequireFromString("45.5"))).To(BeTrue())
		})

		It("should report unknown transactions", func() {
			_, err := service.Update(ctx, "alice", "missing", transaction.UpdateTransactionDTO{
				Amount: decimal.NewFromInt(1), Type: "expense", Date: calendar.MustParseDate("2024-06-03"),
			})
			Expect(err).To(MatchError(apperrors.ErrTransactionNotFound))
		})
	})

	Describe("Delete", func() {
		It("should remove the transaction from backend and store", func() {
			t, err := create("40", "expense", "2024-06-02", nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, "alice", t.ID)).To(Succeed())
			Expect(repo.rows).To(BeEmpty())
			_, ok := st.Transaction(t.ID)
			Expect(ok).To(BeFalse())
		})

		It("should keep the store when the backend refuses", func() {
			t, _ := create("40", "expense", "2024-06-02", nil)
			repo.shouldFail = true
			Expect(service.Delete(ctx, "alice", t.ID)).NotTo(Succeed())
			Expect(st.Transactions()).To(HaveLen(1))
		})
	})
})
