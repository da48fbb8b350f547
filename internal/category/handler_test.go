package category_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/category"
	categoryPostgres "github.com/frahmantamala/personal-finance/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/category"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/store"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// withOwner stands in for the auth middleware.
func withOwner(ownerID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(internal.ContextWithOwnerID(r.Context(), ownerID)))
	})
}

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    *categoryPostgres.CategoryRepository
		router  chi.Router
		st      *store.Store
		slogger *slog.Logger
	)

	BeforeEach(func() {
		var err error
		ctx := context.Background()
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&categoryDatamodel.Category{})).To(Succeed())

		repo = categoryPostgres.NewCategoryRepository(db)
		Expect(repo.Create(ctx, &finance.Category{Name: "Salary", Type: finance.Income})).To(Succeed())
		Expect(repo.Create(ctx, &finance.Category{Name: "Food", Type: finance.Expense, OwnerID: strPtr("alice")})).To(Succeed())

		visible, err := repo.ListVisible(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		st = store.New()
		st.SetCategories(visible)

		service := category.NewService(repo, fixedSessions{st: st}, slogger)
		handler := category.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/categories", handler.GetCategories)
		router.Post("/categories", handler.CreateCategory)
		router.Put("/categories/{id}", handler.UpdateCategory)
		router.Delete("/categories/{id}", handler.DeleteCategory)
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		withOwner("alice", router).ServeHTTP(rec, req)
		return rec
	}

	It("should handle GET /categories request successfully", func() {
		rec := serve(http.MethodGet, "/categories", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp category.CategoriesResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Categories).To(HaveLen(2))
	})

	It("should filter GET /categories by type", func() {
		rec := serve(http.MethodGet, "/categories?type=income", "")
		var resp category.CategoriesResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Categories).To(HaveLen(1))
		Expect(resp.Categories[0].Shared).To(BeTrue())
	})

	It("should reject an unknown type filter", func() {
		rec := serve(http.MethodGet, "/categories?type=transfer", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should create a category", func() {
		rec := serve(http.MethodPost, "/categories", `{"name":"Rent","type":"expense","icon":"home"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var resp category.CategoryResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.ID).NotTo(BeEmpty())
		Expect(resp.Shared).To(BeFalse())
		Expect(st.Categories()).To(HaveLen(3))
	})

	It("should return field errors for invalid input", func() {
		rec := serve(http.MethodPost, "/categories", `{"name":"","type":"expense"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("name is required"))
	})

	It("should answer 403 when modifying a shared category", func() {
		var shared string
		for _, c := range st.Categories() {
			if c.IsShared() {
				shared = c.ID
			}
		}
		rec := serve(http.MethodDelete, "/categories/"+shared, "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring("SHARED_CATEGORY_READ_ONLY"))
	})

	It("should answer 401 without an owner", func() {
		req := httptest.NewRequest(http.MethodGet, "/categories", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
