package statistics_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/statistics"
	"github.com/frahmantamala/personal-finance/internal/store"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

type fixedSessions struct {
	st *store.Store
}

func (f fixedSessions) Store(ctx context.Context, ownerID string) (*store.Store, error) {
	return f.st, nil
}

var _ = Describe("Statistics Handler", func() {
	var router chi.Router

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		food := "food"
		st := store.New()
		st.SetCategories([]finance.Category{{ID: "food", Name: "Food", Type: finance.Expense}})
		st.SetTransactions([]finance.Transaction{
			{ID: "t1", Amount: decimal.RequireFromString("100"), Type: finance.Income, Date: calendar.MustParseDate("2024-06-01")},
			{ID: "t2", Amount: decimal.RequireFromString("40"), Type: finance.Expense, Date: calendar.MustParseDate("2024-06-02"), CategoryID: &food},
			{ID: "t3", Amount: decimal.RequireFromString("20"), Type: finance.Expense, Date: calendar.MustParseDate("2024-05-10")},
		})

		service := statistics.NewService(fixedSessions{st: st}, logger).
			WithClock(func() calendar.Date { return calendar.MustParseDate("2024-06-10") })
		handler := statistics.NewHandler(transport.NewBaseHandler(logger), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithOwnerID(r.Context(), "alice")))
			})
		})
		router.Get("/statistics/overview", handler.GetOverview)
		router.Get("/statistics/summary", handler.GetSummary)
		router.Get("/statistics/breakdown", handler.GetBreakdown)
		router.Get("/statistics/trend", handler.GetTrend)
		router.Get("/statistics/daily-average", handler.GetDailyAverage)
	})

	get := func(path string, into interface{}) int {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if into != nil && rec.Code == http.StatusOK {
			Expect(json.Unmarshal(rec.Body.Bytes(), into)).To(Succeed())
		}
		return rec.Code
	}

	It("should summarize the current month by default", func() {
		var resp statistics.SummaryResponse
		Expect(get("/statistics/summary", &resp)).To(Equal(http.StatusOK))
		Expect(resp.Balance).To(Equal("60.00"))
		Expect(resp.Start.String()).To(Equal("2024-06-01"))
	})

	It("should summarize an explicit range", func() {
		var resp statistics.SummaryResponse
		Expect(get("/statistics/summary?start=2024-05-01&end=2024-06-30", &resp)).To(Equal(http.StatusOK))
		Expect(resp.Expense).To(Equal("60.00"))
	})

	It("should reject an inverted range", func() {
		Expect(get("/statistics/summary?start=2024-06-30&end=2024-06-01", nil)).To(Equal(http.StatusBadRequest))
	})

	It("should break down expenses with the uncategorized fallback", func() {
		var resp statistics.BreakdownResponse
		Expect(get("/statistics/breakdown?type=expense&start=2024-05-01&end=2024-06-30", &resp)).To(Equal(http.StatusOK))
		Expect(resp.Entries).To(HaveLen(2))
		Expect(resp.Entries[0].Category).To(Equal("Food"))
		Expect(*resp.Entries[0].Percentage).To(Equal("66.7"))
		Expect(resp.Entries[1].Category).To(Equal(finance.UncategorizedLabel))
	})

	It("should return null percentages for an empty breakdown", func() {
		var resp statistics.BreakdownResponse
		Expect(get("/statistics/breakdown?type=income&month=2024-01", &resp)).To(Equal(http.StatusOK))
		Expect(resp.Total).To(Equal("0.00"))
		Expect(resp.Entries).To(BeEmpty())
	})

	It("should build trends oldest first", func() {
		var resp statistics.TrendResponse
		Expect(get("/statistics/trend?months=2", &resp)).To(Equal(http.StatusOK))
		Expect(resp.Points).To(HaveLen(2))
		Expect(resp.Points[0].Month.String()).To(Equal("2024-05"))
		Expect(resp.Points[0].Expense).To(Equal("20.00"))

		Expect(get("/statistics/trend?year=2024", &resp)).To(Equal(http.StatusOK))
		Expect(resp.Points).To(HaveLen(12))

		Expect(get("/statistics/trend?months=0", nil)).To(Equal(http.StatusBadRequest))
	})

	It("should compute the daily average up to today", func() {
		var resp statistics.PaceResponse
		Expect(get("/statistics/daily-average", &resp)).To(Equal(http.StatusOK))
		Expect(resp.ElapsedDays).To(Equal(10))
		Expect(resp.DailyAverage).To(Equal("4.00"))
		Expect(resp.Projected).To(Equal("120.00"))
	})

	It("should assemble the overview", func() {
		var resp statistics.OverviewResponse
		Expect(get("/statistics/overview?month=2024-06", &resp)).To(Equal(http.StatusOK))
		Expect(resp.Totals.Income).To(Equal("100.00"))
		Expect(resp.Trend).To(HaveLen(statistics.TrendWindow))
	})
})
