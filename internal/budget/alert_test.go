package budget_test

import (
	"github.com/frahmantamala/personal-finance/internal/budget"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func expense(amount, date, category string) finance.Transaction {
	return finance.Transaction{
		Amount:     dec(amount),
		Type:       finance.Expense,
		Date:       calendar.MustParseDate(date),
		CategoryID: strPtr(category),
	}
}

func foodBudget(amount string) finance.Budget {
	return finance.Budget{
		ID:         "b1",
		CategoryID: "food",
		Amount:     dec(amount),
		Month:      calendar.MustParseMonth("2024-06"),
	}
}

var categories = []finance.Category{{ID: "food", Name: "Food", Type: finance.Expense}}

var _ = Describe("Budget evaluator", func() {
	var txs []finance.Transaction

	BeforeEach(func() {
		txs = []finance.Transaction{
			{Amount: dec("100"), Type: finance.Income, Date: calendar.MustParseDate("2024-06-01")},
			expense("40", "2024-06-02", "food"),
		}
	})

	Describe("Measure", func() {
		It("should report the reference budget as fully spent", func() {
			p := budget.Measure(foodBudget("40"), txs)
			Expect(p.Spent.Equal(dec("40"))).To(BeTrue())
			Expect(p.Percentage.Equal(dec("100"))).To(BeTrue())
			Expect(p.Remaining.IsZero()).To(BeTrue())
		})

		It("should only count expenses of the category inside the month", func() {
			txs = append(txs,
				expense("10", "2024-07-01", "food"),
				expense("10", "2024-06-30", "rent"),
				finance.Transaction{Amount: dec("10"), Type: finance.Income, Date: calendar.MustParseDate("2024-06-05"), CategoryID: strPtr("food")},
			)
			Expect(budget.Measure(foodBudget("40"), txs).Spent.Equal(dec("40"))).To(BeTrue())
		})

		It("should allow a negative remainder", func() {
			Expect(budget.Measure(foodBudget("30"), txs).Remaining.Equal(dec("-10"))).To(BeTrue())
		})

		It("should report zero percent for a zero amount", func() {
			p := budget.Measure(foodBudget("0"), txs)
			Expect(p.Percentage.IsZero()).To(BeTrue())
		})
	})

	Describe("Classify", func() {
		lateJune := calendar.MustParseDate("2024-06-28")

		classify := func(amount, spent string, today calendar.Date) (budget.Alert, bool) {
			b := foodBudget(amount)
			return budget.Classify(b, budget.Measure(b, []finance.Transaction{expense(spent, "2024-06-02", "food")}), "Food", today)
		}

		It("should classify the reference budget as danger", func() {
			alert, ok := classify("40", "40", lateJune)
			Expect(ok).To(BeTrue())
			Expect(alert.Severity).To(Equal(budget.SeverityDanger))
			Expect(alert.Kind).To(Equal(budget.KindOverspent))
			Expect(alert.ID).To(Equal("b1-overspent"))
		})

		It("should report the overspend magnitude", func() {
			alert, ok := classify("40", "52.5", lateJune)
			Expect(ok).To(BeTrue())
			Expect(alert.Message).To(ContainSubstring("12.50"))
		})

		It("should classify exactly 80 percent as warning", func() {
			alert, ok := classify("50", "40", lateJune)
			Expect(ok).To(BeTrue())
			Expect(alert.Severity).To(Equal(budget.SeverityWarning))
			Expect(alert.ID).To(Equal("b1-near_limit"))
		})

		It("should not classify 79.999 percent as warning", func() {
			_, ok := classify("100000", "79999", lateJune)
			Expect(ok).To(BeFalse())
		})

		It("should flag fast pacing early in the current month", func() {
			alert, ok := classify("100", "60", calendar.MustParseDate("2024-06-06"))
			Expect(ok).To(BeTrue())
			Expect(alert.Severity).To(Equal(budget.SeverityInfo))
			Expect(alert.Kind).To(Equal(budget.KindPace))
		})

		It("should stay silent when spending keeps up with the month", func() {
			_, ok := classify("100", "60", calendar.MustParseDate("2024-06-15"))
			Expect(ok).To(BeFalse())
		})

		It("should never apply the pace rule to another month", func() {
			_, ok := classify("100", "60", calendar.MustParseDate("2024-07-01"))
			Expect(ok).To(BeFalse())
		})

		It("should not raise anything below half the budget", func() {
			_, ok := classify("100", "49.99", calendar.MustParseDate("2024-06-01"))
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Evaluate", func() {
		It("should only evaluate budgets of the requested month", func() {
			other := foodBudget("40")
			other.ID = "b2"
			other.Month = calendar.MustParseMonth("2024-05")

			alerts := budget.Evaluate([]finance.Budget{foodBudget("40"), other}, txs, categories,
				calendar.MustParseMonth("2024-06"), calendar.MustParseDate("2024-06-20"))

			Expect(alerts).To(HaveLen(1))
			Expect(alerts[0].BudgetID).To(Equal("b1"))
			Expect(alerts[0].CategoryName).To(Equal("Food"))
		})

		It("should order alerts by severity", func() {
			rent := finance.Budget{ID: "a0", CategoryID: "rent", Amount: dec("100"), Month: calendar.MustParseMonth("2024-06")}
			txs = append(txs, expense("85", "2024-06-03", "rent"))

			alerts := budget.Evaluate([]finance.Budget{rent, foodBudget("40")}, txs, categories,
				calendar.MustParseMonth("2024-06"), calendar.MustParseDate("2024-06-20"))

			Expect(alerts).To(HaveLen(2))
			Expect(alerts[0].Severity).To(Equal(budget.SeverityDanger))
			Expect(alerts[1].Severity).To(Equal(budget.SeverityWarning))
			Expect(alerts[1].CategoryName).To(Equal(finance.UncategorizedLabel))
		})

		It("should return no alerts without budgets", func() {
			Expect(budget.Evaluate(nil, txs, nil, calendar.MustParseMonth("2024-06"), calendar.MustParseDate("2024-06-20"))).To(BeEmpty())
		})
	})

	Describe("ProgressFor", func() {
		It("should measure each budget of the month", func() {
			list := budget.ProgressFor([]finance.Budget{foodBudget("80")}, txs, categories, calendar.MustParseMonth("2024-06"))
			Expect(list).To(HaveLen(1))
			Expect(list[0].Percentage.Equal(dec("50"))).To(BeTrue())
			Expect(list[0].CategoryName).To(Equal("Food"))
		})
	})

	Describe("Dismissals", func() {
		It("should hide one alert kind without hiding the others", func() {
			d := budget.NewDismissals()
			alerts := []budget.Alert{
				{ID: budget.AlertID("b1", budget.KindOverspent)},
				{ID: budget.AlertID("b1", budget.KindPace)},
			}

			d.Dismiss("b1-overspent")

			visible := d.Visible(alerts)
			Expect(visible).To(HaveLen(1))
			Expect(visible[0].ID).To(Equal("b1-pace"))
			Expect(d.IsDismissed("b1-overspent")).To(BeTrue())

			d.Clear()
			Expect(d.Visible(alerts)).To(HaveLen(2))
		})
	})
})
