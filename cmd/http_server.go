package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/personal-finance/api"
	"github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/auth"
	authPostgres "github.com/frahmantamala/personal-finance/internal/auth/postgres"
	"github.com/frahmantamala/personal-finance/internal/budget"
	budgetPostgres "github.com/frahmantamala/personal-finance/internal/budget/postgres"
	"github.com/frahmantamala/personal-finance/internal/category"
	categoryPostgres "github.com/frahmantamala/personal-finance/internal/category/postgres"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/events"
	"github.com/frahmantamala/personal-finance/internal/export"
	"github.com/frahmantamala/personal-finance/internal/session"
	"github.com/frahmantamala/personal-finance/internal/statistics"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	transactionPostgres "github.com/frahmantamala/personal-finance/internal/transaction/postgres"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/frahmantamala/personal-finance/internal/transport/middleware"
	"github.com/frahmantamala/personal-finance/internal/transport/rest"
	"github.com/frahmantamala/personal-finance/internal/user"
	userPostgres "github.com/frahmantamala/personal-finance/internal/user/postgres"
	"github.com/frahmantamala/personal-finance/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config    *internal.Config
	DB        *sqlx.DB
	Gorm      *gorm.DB
	Router    *chi.Mux
	Bus       *events.EventBus
	Forwarder *events.Forwarder
	Sessions  *session.Manager
	Monitor   *budget.Monitor
	Logger    *slog.Logger
}

// Close waits for in-flight event handlers and releases connections.
func (d *Dependencies) Close() {
	d.Bus.Wait()
	if d.Forwarder != nil {
		if err := d.Forwarder.Close(); err != nil {
			d.Logger.Error("amqp forwarder close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to register routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Close()
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	base := transport.NewBaseHandler(deps.Logger)

	categoryRepo := categoryPostgres.NewCategoryRepository(deps.Gorm)
	transactionRepo := transactionPostgres.NewTransactionRepository(deps.Gorm)
	budgetRepo := budgetPostgres.NewBudgetRepository(deps.Gorm)
	profileRepo := userPostgres.NewProfileRepository(deps.DB)
	authRepo := authPostgres.NewRepository(deps.Gorm)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	authService := auth.NewService(authRepo, profileRepo, deps.Sessions, tokens,
		auth.LogMailer{Logger: deps.Logger}, deps.Bus,
		auth.Options{
			RequireEmailConfirmation: cfg.Security.RequireEmailConfirmation,
			BCryptCost:               cfg.Security.BCryptCost,
			ActionTokenTTL:           cfg.Security.ActionTokenDuration,
		}, deps.Logger)

	handlers := rest.Handlers{
		Health:       rest.NewHealthHandler(deps.DB, deps.Sessions),
		Auth:         auth.NewHandler(base, authService),
		Users:        user.NewHandler(base, user.NewService(profileRepo, deps.Sessions, deps.Logger)),
		Sync:         session.NewHandler(base, deps.Sessions),
		Categories:   category.NewHandler(base, category.NewService(categoryRepo, deps.Sessions, deps.Logger)),
		Transactions: transaction.NewHandler(base, transaction.NewService(transactionRepo, deps.Sessions, deps.Bus, deps.Logger)),
		Budgets:      budget.NewHandler(base, budget.NewService(budgetRepo, deps.Sessions, deps.Logger)),
		Statistics:   statistics.NewHandler(base, statistics.NewService(deps.Sessions, deps.Logger)),
		Export:       export.NewHandler(base, export.NewService(deps.Sessions, deps.Logger)),
	}

	opts := rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		OpenAPISpec:    api.OpenAPI,
		Tokens:         tokens,
	}
	if cfg.Server.ValidateRequests {
		doc, err := middleware.LoadOpenAPI(api.OpenAPI)
		if err != nil {
			return fmt.Errorf("load openapi document: %w", err)
		}
		opts.OpenAPIDoc = doc
	}

	return rest.RegisterAllRoutes(deps.Router, handlers, opts, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)

	var forwarder *events.Forwarder
	if config.Events.AMQPURL != "" {
		forwarder, err = events.DialForwarder(config.Events.AMQPURL, config.Events.Exchange, lg)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect to broker: %w", err)
		}
		forwarder.Attach(bus)
	}

	categoryRepo := categoryPostgres.NewCategoryRepository(gdb)
	transactionRepo := transactionPostgres.NewTransactionRepository(gdb)
	budgetRepo := budgetPostgres.NewBudgetRepository(gdb)

	sessions := session.NewManager(session.Sources{
		Users:        userPostgres.NewProfileRepository(db),
		Categories:   categoryRepo,
		Transactions: transactionRepo,
		Budgets:      budgetRepo,
	}, lg)

	loc := config.Alerts.Location()
	monitor := budget.NewMonitor(budgetRepo, transactionRepo, categoryRepo, bus, lg).
		WithClock(func() calendar.Date { return calendar.Today(loc) })
	bus.Subscribe(events.EventTypeTransactionRecorded, monitor.HandleTransactionRecorded)

	return &Dependencies{
		Config:    config,
		Logger:    lg,
		DB:        db,
		Gorm:      gdb,
		Router:    chi.NewRouter(),
		Bus:       bus,
		Forwarder: forwarder,
		Sessions:  sessions,
		Monitor:   monitor,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx connection pool with gorm.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
