package transaction_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"

	"github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Transaction Handler", func() {
	var (
		router chi.Router
		st     *store.Store
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		st = store.New()
		st.SetCategories([]finance.Category{{ID: "food", Name: "Food", Type: finance.Expense}})
		st.SetTransactions([]finance.Transaction{
			{ID: "t1", Amount: decimal.RequireFromString("100"), Type: finance.Income, Date: calendar.MustParseDate("2024-06-01"), OwnerID: "alice"},
			{ID: "t2", Amount: decimal.RequireFromString("40"), Type: finance.Expense, Date: calendar.MustParseDate("2024-06-02"), OwnerID: "alice", CategoryID: strPtr("food")},
		})

		service := transaction.NewService(NewMockRepository(), fixedSessions{st: st}, nil, logger).
			WithClock(func() calendar.Date { return calendar.MustParseDate("2024-06-20") })
		handler := transaction.NewHandler(transport.NewBaseHandler(logger), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithOwnerID(r.Context(), "alice")))
			})
		})
		router.Get("/transactions", handler.GetTransactions)
		router.Post("/transactions", handler.CreateTransaction)
		router.Get("/transactions/{id}", handler.GetTransaction)
		router.Put("/transactions/{id}", handler.UpdateTransaction)
		router.Delete("/transactions/{id}", handler.DeleteTransaction)
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("should list transactions matching the search", func() {
		rec := serve(http.MethodGet, "/transactions?q=food", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp transaction.TransactionsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Count).To(Equal(1))
		Expect(resp.Transactions[0].CategoryName).To(Equal("Food"))
		Expect(resp.Transactions[0].Amount).To(Equal("40.00"))
	})

	It("should group by day when asked", func() {
		rec := serve(http.MethodGet, "/transactions?group=day", "")
		var resp transaction.GroupedTransactionsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Days).To(HaveLen(2))
		Expect(resp.Days[0].Date.String()).To(Equal("2024-06-02"))
		Expect(resp.Count).To(Equal(2))
	})

	It("should reject a custom range without dates", func() {
		rec := serve(http.MethodGet, "/transactions?range=custom", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should create a transaction", func() {
		rec := serve(http.MethodPost, "/transactions", `{"amount":"12.5","type":"expense","category_id":"food","date":"2024-06-05"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(st.Transactions()).To(HaveLen(3))
	})

	It("should reject unknown fields", func() {
		rec := serve(http.MethodPost, "/transactions", `{"amount":"12.5","type":"expense","date":"2024-06-05","currency":"EUR"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for unknown ids", func() {
		rec := serve(http.MethodGet, "/transactions/nope", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should delete a transaction", func() {
		rec := serve(http.MethodDelete, "/transactions/t1", "")
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})
})

var _ = Describe("ParseListQuery", func() {
	It("should parse every dimension", func() {
		values := url.Values{}
		values.Set("q", " rent ")
		values.Set("range", "custom")
		values.Set("start", "2024-06-01")
		values.Set("end", "2024-06-30")
		values.Set("type", "expense")
		values.Set("category_id", "food")
		values.Set("min_amount", "10")
		values.Set("max_amount", "99.99")

		q, appErr := transaction.ParseListQuery(values)
		Expect(appErr).To(BeNil())
		Expect(q.Filter.Search).To(Equal("rent"))
		Expect(q.Filter.Dates.Mode()).To(Equal(transaction.CustomRange))
		Expect(*q.Filter.Type).To(Equal(finance.Expense))
		Expect(*q.Filter.CategoryID).To(Equal("food"))
		Expect(q.Filter.MaxAmount.String()).To(Equal("99.99"))
	})

	It("should reject malformed amounts", func() {
		values := url.Values{}
		values.Set("min_amount", "ten")
		_, appErr := transaction.ParseListQuery(values)
		Expect(appErr).NotTo(BeNil())
	})

	It("should treat no parameters as the empty filter", func() {
		q, appErr := transaction.ParseListQuery(url.Values{})
		Expect(appErr).To(BeNil())
		Expect(q.Filter.IsEmpty()).To(BeTrue())
	})
})
