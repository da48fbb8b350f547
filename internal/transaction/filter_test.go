package transaction_test

import (
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func typePtr(t finance.TransactionType) *finance.TransactionType { return &t }

var _ = Describe("Filter engine", func() {
	var (
		txs        []finance.Transaction
		categories finance.CategoryIndex
		today      calendar.Date
	)

	BeforeEach(func() {
		today = calendar.MustParseDate("2024-06-20")
		categories = finance.IndexCategories([]finance.Category{
			{ID: "food", Name: "Food", Type: finance.Expense},
			{ID: "salary", Name: "Salary", Type: finance.Income},
		})
		txs = []finance.Transaction{
			{ID: "t1", Amount: decimal.RequireFromString("100"), Type: finance.Income, Date: calendar.MustParseDate("2024-06-01")},
			{ID: "t2", Amount: decimal.RequireFromString("40"), Type: finance.Expense, Date: calendar.MustParseDate("2024-06-02"), CategoryID: strPtr("food")},
		}
	})

	ids := func(list []finance.Transaction) []string {
		out := make([]string, len(list))
		for i, t := range list {
			out[i] = t.ID
		}
		return out
	}

	It("should return the input unchanged for an empty filter", func() {
		Expect(transaction.Apply(txs, transaction.Filter{}, categories, today)).To(Equal(txs))
	})

	It("should match search text against the category name", func() {
		got := transaction.Apply(txs, transaction.Filter{Search: "food"}, categories, today)
		Expect(ids(got)).To(Equal([]string{"t2"}))
	})

	It("should match search text case-insensitively against the description", func() {
		txs[0].Description = "June Paycheck"
		got := transaction.Apply(txs, transaction.Filter{Search: "PAYCHECK"}, categories, today)
		Expect(ids(got)).To(Equal([]string{"t1"}))
	})

	It("should match search text against the amount", func() {
		got := transaction.Apply(txs, transaction.Filter{Search: "10"}, categories, today)
		Expect(ids(got)).To(Equal([]string{"t1"}))
	})

	It("should not match a dangling category by name", func() {
		txs[1].CategoryID = strPtr("deleted")
		got := transaction.Apply(txs, transaction.Filter{Search: "food"}, categories, today)
		Expect(got).To(BeEmpty())
	})

	It("should restrict by type and category", func() {
		Expect(ids(transaction.Apply(txs, transaction.Filter{Type: typePtr(finance.Income)}, categories, today))).To(Equal([]string{"t1"}))
		Expect(ids(transaction.Apply(txs, transaction.Filter{CategoryID: strPtr("food")}, categories, today))).To(Equal([]string{"t2"}))
	})

	It("should treat amount bounds as inclusive", func() {
		f := transaction.Filter{MinAmount: decPtr("40"), MaxAmount: decPtr("40")}
		Expect(ids(transaction.Apply(txs, f, categories, today))).To(Equal([]string{"t2"}))
	})

	It("should yield an empty result for contradictory bounds", func() {
		f := transaction.Filter{MinAmount: decPtr("50"), MaxAmount: decPtr("10")}
		Expect(transaction.Apply(txs, f, categories, today)).To(BeEmpty())
	})

	Describe("date ranges", func() {
		BeforeEach(func() {
			txs = append(txs,
				finance.Transaction{ID: "t3", Amount: decimal.NewFromInt(5), Type: finance.Expense, Date: calendar.MustParseDate("2024-05-31")},
				finance.Transaction{ID: "t4", Amount: decimal.NewFromInt(5), Type: finance.Expense, Date: calendar.MustParseDate("2024-04-30")},
			)
		})

		It("should resolve the current month against today", func() {
			f := transaction.Filter{Dates: transaction.CurrentMonth()}
			Expect(ids(transaction.Apply(txs, f, categories, today))).To(Equal([]string{"t1", "t2"}))
		})

		It("should resolve the previous month across a year boundary", func() {
			r, ok := transaction.PreviousMonth().Resolve(calendar.MustParseDate("2024-01-10"))
			Expect(ok).To(BeTrue())
			Expect(r.Start.String()).To(Equal("2023-12-01"))
			Expect(r.End.String()).To(Equal("2023-12-31"))
		})

		It("should include both ends of a custom range", func() {
			f := transaction.Filter{Dates: transaction.Between(calendar.MustParseDate("2024-05-31"), calendar.MustParseDate("2024-06-01"))}
			Expect(ids(transaction.Apply(txs, f, categories, today))).To(Equal([]string{"t1", "t3"}))
		})

		It("should return nothing for an inverted custom range", func() {
			f := transaction.Filter{Dates: transaction.Between(calendar.MustParseDate("2024-06-30"), calendar.MustParseDate("2024-06-01"))}
			Expect(transaction.Apply(txs, f, categories, today)).To(BeEmpty())
		})

		It("should impose no constraint when unrestricted", func() {
			_, ok := transaction.Unrestricted().Resolve(today)
			Expect(ok).To(BeFalse())
		})
	})

	It("should never grow the result when a constraint is added", func() {
		filters := []transaction.Filter{
			{},
			{Dates: transaction.CurrentMonth()},
			{Dates: transaction.CurrentMonth(), Type: typePtr(finance.Expense)},
			{Dates: transaction.CurrentMonth(), Type: typePtr(finance.Expense), MinAmount: decPtr("1")},
			{Dates: transaction.CurrentMonth(), Type: typePtr(finance.Expense), MinAmount: decPtr("1"), Search: "foo"},
		}
		previous := len(txs)
		for _, f := range filters {
			n := len(transaction.Apply(txs, f, categories, today))
			Expect(n).To(BeNumerically("<=", previous))
			previous = n
		}
	})

	Describe("ParseDateRangeMode", func() {
		It("should accept known names and the empty string", func() {
			mode, ok := transaction.ParseDateRangeMode("last_month")
			Expect(ok).To(BeTrue())
			Expect(mode).To(Equal(transaction.LastMonth))

			mode, ok = transaction.ParseDateRangeMode("")
			Expect(ok).To(BeTrue())
			Expect(mode).To(Equal(transaction.AllDates))

			_, ok = transaction.ParseDateRangeMode("fortnight")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("GroupByDay", func() {
		It("should put the most recent day first with daily subtotals", func() {
			txs = append(txs, finance.Transaction{ID: "t5", Amount: decimal.NewFromInt(7), Type: finance.Expense, Date: calendar.MustParseDate("2024-06-02")})

			groups := transaction.GroupByDay(txs)

			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Date.String()).To(Equal("2024-06-02"))
			Expect(ids(groups[0].Transactions)).To(Equal([]string{"t2", "t5"}))
			Expect(groups[0].Expense.Equal(decimal.NewFromInt(47))).To(BeTrue())
			Expect(groups[1].Income.Equal(decimal.NewFromInt(100))).To(BeTrue())
		})

		It("should return no groups for no transactions", func() {
			Expect(transaction.GroupByDay(nil)).To(BeEmpty())
		})
	})
})
