package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/personal-finance/internal/auth"
	"github.com/frahmantamala/personal-finance/internal/budget"
	"github.com/frahmantamala/personal-finance/internal/category"
	"github.com/frahmantamala/personal-finance/internal/export"
	"github.com/frahmantamala/personal-finance/internal/session"
	"github.com/frahmantamala/personal-finance/internal/statistics"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/frahmantamala/personal-finance/internal/transport/middleware"
	"github.com/frahmantamala/personal-finance/internal/transport/swagger"
	"github.com/frahmantamala/personal-finance/internal/user"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	Users        *user.Handler
	Sync         *session.Handler
	Categories   *category.Handler
	Transactions *transaction.Handler
	Budgets      *budget.Handler
	Statistics   *statistics.Handler
	Export       *export.Handler
}

type Options struct {
	AllowedOrigins []string
	// OpenAPISpec is served at /openapi.yml. When OpenAPIDoc is set, requests
	// are validated against it.
	OpenAPISpec []byte
	OpenAPIDoc  *openapi3.T
	Tokens      middleware.TokenValidator
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) error {
	base := transport.NewBaseHandler(logger)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if len(opts.OpenAPISpec) > 0 {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(opts.OpenAPISpec)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	var validate func(http.Handler) http.Handler
	if opts.OpenAPIDoc != nil {
		v, err := middleware.ValidateRequests(opts.OpenAPIDoc, base)
		if err != nil {
			return err
		}
		validate = v
	}

	router.Route("/api/v1", func(r chi.Router) {
		if validate != nil {
			r.Use(validate)
		}

		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/signup", h.Auth.Signup)
			ar.Post("/confirm", h.Auth.ConfirmEmail)
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.Post("/password/reset", h.Auth.RequestPasswordReset)
			ar.Post("/password/reset/confirm", h.Auth.ConfirmPasswordReset)

			ar.Group(func(pr chi.Router) {
				pr.Use(middleware.Authenticate(opts.Tokens, base))
				pr.Post("/logout", h.Auth.Logout)
				pr.Get("/session", h.Auth.GetSession)
				pr.Put("/password", h.Auth.UpdatePassword)
			})
		})

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(opts.Tokens, base))

			pr.Get("/users/me", h.Users.GetCurrentUser)
			pr.Patch("/users/me", h.Users.UpdateCurrentUser)
			pr.Post("/sync", h.Sync.Sync)

			pr.Route("/categories", func(cr chi.Router) {
				cr.Get("/", h.Categories.GetCategories)
				cr.Post("/", h.Categories.CreateCategory)
				cr.Put("/{id}", h.Categories.UpdateCategory)
				cr.Delete("/{id}", h.Categories.DeleteCategory)
			})

			pr.Route("/transactions", func(tr chi.Router) {
				tr.Get("/", h.Transactions.GetTransactions)
				tr.Post("/", h.Transactions.CreateTransaction)
				tr.Get("/{id}", h.Transactions.GetTransaction)
				tr.Put("/{id}", h.Transactions.UpdateTransaction)
				tr.Delete("/{id}", h.Transactions.DeleteTransaction)
			})

			pr.Route("/budgets", func(br chi.Router) {
				br.Get("/", h.Budgets.GetBudgets)
				br.Post("/", h.Budgets.CreateBudget)
				br.Get("/progress", h.Budgets.GetProgress)
				br.Get("/alerts", h.Budgets.GetAlerts)
				br.Post("/alerts/{alertID}/dismiss", h.Budgets.DismissAlert)
				br.Put("/{id}", h.Budgets.UpdateBudget)
				br.Delete("/{id}", h.Budgets.DeleteBudget)
			})

			pr.Route("/statistics", func(sr chi.Router) {
				sr.Get("/overview", h.Statistics.GetOverview)
				sr.Get("/summary", h.Statistics.GetSummary)
				sr.Get("/breakdown", h.Statistics.GetBreakdown)
				sr.Get("/trend", h.Statistics.GetTrend)
				sr.Get("/daily-average", h.Statistics.GetDailyAverage)
			})

			pr.Get("/export", h.Export.Export)
		})
	})

	return nil
}
