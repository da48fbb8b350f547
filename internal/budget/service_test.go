package budget_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"time"

	apperrors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/budget"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/events"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository implements budget.RepositoryAPI and the monitor sources.
type MockRepository struct {
	rows         map[string]finance.Budget
	transactions []finance.Transaction
	shouldFail   bool
	nextID       int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{rows: make(map[string]finance.Budget)}
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID string) ([]finance.Budget, error) {
	var out []finance.Budget
	for _, b := range m.rows {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockRepository) ListByOwnerMonth(ctx context.Context, ownerID string, month calendar.Month) ([]finance.Budget, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	var out []finance.Budget
	for _, b := range m.rows {
		if b.OwnerID == ownerID && b.Month == month {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockRepository) OwnersForMonth(ctx context.Context, month calendar.Month) ([]string, error) {
	seen := map[string]bool{}
	var owners []string
	for _, b := range m.rows {
		if b.Month == month && !seen[b.OwnerID] {
			seen[b.OwnerID] = true
			owners = append(owners, b.OwnerID)
		}
	}
	return owners, nil
}

func (m *MockRepository) ListBetween(ctx context.Context, ownerID string, start, end time.Time) ([]finance.Transaction, error) {
	return m.transactions, nil
}

func (m *MockRepository) ListVisible(ctx context.Context, ownerID string) ([]finance.Category, error) {
	return categories, nil
}

func (m *MockRepository) Create(ctx context.Context, b *finance.Budget) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	m.nextID++
	b.ID = fmt.Sprintf("budget-%d", m.nextID)
	m.rows[b.ID] = *b
	return nil
}

func (m *MockRepository) Update(ctx context.Context, b *finance.Budget) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	m.rows[b.ID] = *b
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
	st         *store.Store
	dismissals *budget.Dismissals
}

func (f fixedSessions) Store(ctx context.Context, ownerID string) (*store.Store, error) {
	return f.st, nil
}

func (f fixedSessions) Dismissals(ownerID string) *budget.Dismissals {
	return f.dismissals
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

var _ = Describe("Budget Service", func() {
	var (
		repo    *MockRepository
		st      *store.Store
		service *budget.Service
		ctx     context.Context
		june    calendar.Month
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		st = store.New()
		st.SetCategories(append([]finance.Category{
			{ID: "salary", Name: "Salary", Type: finance.Income},
		}, categories...))
		june = calendar.MustParseMonth("2024-06")
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = budget.NewService(repo, fixedSessions{st: st, dismissals: budget.NewDismissals()}, logger).
			WithClock(func() calendar.Date { return calendar.MustParseDate("2024-06-15") })
	})

	create := func(categoryID, amount string) (*finance.Budget, error) {
		return service.Create(ctx, "alice", budget.CreateBudgetDTO{CategoryID: categoryID, Amount: dec(amount), Month: june})
	}

	Describe("Create", func() {
		It("should persist and join the category", func() {
			b, err := create("food", "200")
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Category.Name).To(Equal("Food"))
			Expect(st.Budgets()).To(HaveLen(1))
		})

		It("should answer conflict for a second budget on the same category and month", func() {
			_, err := create("food", "200")
			Expect(err).NotTo(HaveOccurred())
			_, err = create("food", "300")
			Expect(err).To(MatchError(apperrors.ErrDuplicateBudget))
			Expect(repo.rows).To(HaveLen(1))
		})

		It("should refuse income categories", func() {
			_, err := create("salary", "200")
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})

		It("should refuse non-positive amounts", func() {
			_, err := create("food", "-5")
			Expect(err).To(HaveOccurred())
			Expect(repo.rows).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("should allow rewriting a budget onto itself", func() {
			b, _ := create("food", "200")
			updated, err := service.Update(ctx, "alice", b.ID, budget.UpdateBudgetDTO{CategoryID: "food", Amount: dec("250"), Month: june})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Amount.Equal(dec("250"))).To(BeTrue())
		})

		It("should report unknown budgets", func() {
			_, err := service.Update(ctx, "alice", "missing", budget.UpdateBudgetDTO{CategoryID: "food", Amount: dec("1"), Month: june})
			Expect(err).To(MatchError(apperrors.ErrBudgetNotFound))
		})
	})

	Describe("Alerts", func() {
		var b *finance.Budget

		BeforeEach(func() {
			var err error
			b, err = create("food", "100")
			Expect(err).NotTo(HaveOccurred())
			st.AddTransaction(expense("120", "2024-06-02", "food"))
		})

		It("should report progress", func() {
			progress, err := service.Progress(ctx, "alice", june)
			Expect(err).NotTo(HaveOccurred())
			Expect(progress).To(HaveLen(1))
			Expect(progress[0].Percentage.Equal(dec("120"))).To(BeTrue())
		})

		It("should hide dismissed alerts for the session", func() {
			alerts, err := service.Alerts(ctx, "alice", june)
			Expect(err).NotTo(HaveOccurred())
			Expect(alerts).To(HaveLen(1))
			Expect(alerts[0].ID).To(Equal(b.ID + "-overspent"))

			Expect(service.Dismiss(ctx, "alice", alerts[0].ID)).To(Succeed())

			alerts, err = service.Alerts(ctx, "alice", june)
			Expect(err).NotTo(HaveOccurred())
			Expect(alerts).To(BeEmpty())
		})

		It("should refuse to dismiss alerts of unknown budgets", func() {
			Expect(service.Dismiss(ctx, "alice", "nope-overspent")).To(MatchError(apperrors.ErrAlertNotFound))
			Expect(service.Dismiss(ctx, "alice", b.ID)).To(MatchError(apperrors.ErrAlertNotFound))
		})
	})

	Describe("Delete", func() {
		It("should remove the budget from backend and store", func() {
			b, _ := create("food", "200")
			Expect(service.Delete(ctx, "alice", b.ID)).To(Succeed())
			Expect(st.Budgets()).To(BeEmpty())
		})
	})

	Describe("Handler", func() {
		var router chi.Router

		BeforeEach(func() {
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			handler := budget.NewHandler(transport.NewBaseHandler(logger), service)
			router = chi.NewRouter()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(apperrors.ContextWithOwnerID(r.Context(), "alice")))
				})
			})
			router.Post("/budgets", handler.CreateBudget)
			router.Get("/budgets/alerts", handler.GetAlerts)
			router.Get("/budgets/progress", handler.GetProgress)
		})

		serve := func(method, path, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		It("should answer 409 for duplicates", func() {
			body := `{"category_id":"food","amount":"100","month":"2024-06"}`
			Expect(serve(http.MethodPost, "/budgets", body).Code).To(Equal(http.StatusCreated))
			rec := serve(http.MethodPost, "/budgets", body)
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(rec.Body.String()).To(ContainSubstring("DUPLICATE_BUDGET"))
		})

		It("should default the month to the current one", func() {
			rec := serve(http.MethodGet, "/budgets/progress", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"month":"2024-06"`))
		})

		It("should reject malformed months", func() {
			rec := serve(http.MethodGet, "/budgets/alerts?month=June", "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})

var _ = Describe("Monitor", func() {
	var (
		repo      *MockRepository
		publisher *recordingPublisher
		monitor   *budget.Monitor
		ctx       context.Context
		june      calendar.Month
	)

	BeforeEach(func() {
		ctx = context.Background()
		june = calendar.MustParseMonth("2024-06")
		repo = NewMockRepository()
		repo.rows["b1"] = finance.Budget{ID: "b1", CategoryID: "food", Amount: dec("100"), Month: june, OwnerID: "alice"}
		publisher = &recordingPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		monitor = budget.NewMonitor(repo, repo, repo, publisher, logger).
			WithClock(func() calendar.Date { return calendar.MustParseDate("2024-06-28") })
	})

	It("should raise an alert once and again only when it escalates", func() {
		repo.transactions = []finance.Transaction{expense("85", "2024-06-02", "food")}
		raised, err := monitor.Check(ctx, "alice", june)
		Expect(err).NotTo(HaveOccurred())
		Expect(raised).To(HaveLen(1))
		Expect(raised[0].Severity).To(Equal(budget.SeverityWarning))

		raised, _ = monitor.Check(ctx, "alice", june)
		Expect(raised).To(BeEmpty())

		repo.transactions = append(repo.transactions, expense("20", "2024-06-03", "food"))
		raised, _ = monitor.Check(ctx, "alice", june)
		Expect(raised).To(HaveLen(1))
		Expect(raised[0].Severity).To(Equal(budget.SeverityDanger))
		Expect(publisher.events).To(HaveLen(2))
	})

	It("should scan every owner of the current month", func() {
		repo.transactions = []finance.Transaction{expense("150", "2024-06-02", "food")}
		Expect(monitor.Scan(ctx, 2)).To(Succeed())
		Expect(publisher.events).To(HaveLen(1))
		Expect(publisher.events[0].OwnerID()).To(Equal("alice"))
	})

	It("should forget alerts of past months when scanning", func() {
		may := calendar.MustParseMonth("2024-05")
		repo.rows["b0"] = finance.Budget{ID: "b0", CategoryID: "food", Amount: dec("100"), Month: may, OwnerID: "bob"}
		repo.transactions = []finance.Transaction{expense("150", "2024-05-10", "food")}
		raised, err := monitor.Check(ctx, "bob", may)
		Expect(err).NotTo(HaveOccurred())
		Expect(raised).To(HaveLen(1))
		Expect(monitor.Tracked()).To(Equal(1))

		repo.transactions = append(repo.transactions, expense("150", "2024-06-02", "food"))
		Expect(monitor.Scan(ctx, 1)).To(Succeed())
		Expect(publisher.events).To(HaveLen(2))
		Expect(monitor.Tracked()).To(Equal(1))
	})

	It("should surface repository failures from a scan", func() {
		repo.shouldFail = true
		Expect(monitor.Scan(ctx, 1)).NotTo(Succeed())
	})

	It("should re-evaluate on recorded expenses only", func() {
		repo.transactions = []finance.Transaction{expense("150", "2024-06-02", "food")}

		income := events.NewTransactionRecordedEvent("alice", "t9", "income", "10", "2024-06-02")
		Expect(monitor.HandleTransactionRecorded(ctx, income)).To(Succeed())
		Expect(publisher.events).To(BeEmpty())

		spent := events.NewTransactionRecordedEvent("alice", "t1", "expense", "150", "2024-06-02")
		Expect(monitor.HandleTransactionRecorded(ctx, spent)).To(Succeed())
		Expect(publisher.events).To(HaveLen(1))
	})
})
