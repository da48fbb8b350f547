package postgres_test

import (
	"context"
	"testing"

	errors "github.com/frahmantamala/personal-finance/internal"
	budgetPostgres "github.com/frahmantamala/personal-finance/internal/budget/postgres"
	categoryPostgres "github.com/frahmantamala/personal-finance/internal/category/postgres"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	budgetDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/budget"
	categoryDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/category"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestBudgetPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Budget Postgres Suite")
}

var _ = Describe("Budget PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo *budgetPostgres.BudgetRepository
		ctx  context.Context
		food *finance.Category
		june calendar.Month
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&categoryDatamodel.Category{}, &budgetDatamodel.Budget{})).To(Succeed())

		food = &finance.Category{Name: "Food", Type: finance.Expense}
		Expect(categoryPostgres.NewCategoryRepository(db).Create(ctx, food)).To(Succeed())

		repo = budgetPostgres.NewBudgetRepository(db)
		june = calendar.MustParseMonth("2024-06")
	})

	newBudget := func(owner string, month calendar.Month) *finance.Budget {
		return &finance.Budget{CategoryID: food.ID, Amount: decimal.NewFromInt(200), Month: month, OwnerID: owner}
	}

	It("should round-trip a budget with its category", func() {
		Expect(repo.Create(ctx, newBudget("alice", june))).To(Succeed())

		list, err := repo.ListByOwner(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
		Expect(list[0].Month).To(Equal(june))
		Expect(list[0].Category.Name).To(Equal("Food"))
	})

	It("should refuse a second budget for the same category and month", func() {
		Expect(repo.Create(ctx, newBudget("alice", june))).To(Succeed())
		Expect(repo.Create(ctx, newBudget("alice", june))).To(MatchError(errors.ErrDuplicateBudget))
		Expect(repo.Create(ctx, newBudget("bob", june))).To(Succeed())
	})

	It("should list owners with budgets in a month", func() {
		Expect(repo.Create(ctx, newBudget("bob", june))).To(Succeed())
		Expect(repo.Create(ctx, newBudget("alice", june))).To(Succeed())
		Expect(repo.Create(ctx, newBudget("carol", june.Prev()))).To(Succeed())

		owners, err := repo.OwnersForMonth(ctx, june)
		Expect(err).NotTo(HaveOccurred())
		Expect(owners).To(Equal([]string{"alice", "bob"}))

		list, err := repo.ListByOwnerMonth(ctx, "carol", june)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(BeEmpty())
	})

	It("should update and delete only the owner's budget", func() {
		b := newBudget("alice", june)
		Expect(repo.Create(ctx, b)).To(Succeed())

		b.Amount = decimal.NewFromInt(250)
		Expect(repo.Update(ctx, b)).To(Succeed())

		Expect(repo.Delete(ctx, "bob", b.ID)).To(MatchError(errors.ErrBudgetNotFound))
		Expect(repo.Delete(ctx, "alice", b.ID)).To(Succeed())
	})
})
