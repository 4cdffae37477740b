package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/avaldivia/document-routing/internal"
	"github.com/avaldivia/document-routing/internal/auth"
	authPostgres "github.com/avaldivia/document-routing/internal/auth/postgres"
	"github.com/avaldivia/document-routing/internal/chargebook"
	chargebookPostgres "github.com/avaldivia/document-routing/internal/chargebook/postgres"
	"github.com/avaldivia/document-routing/internal/core/events"
	"github.com/avaldivia/document-routing/internal/department"
	departmentPostgres "github.com/avaldivia/document-routing/internal/department/postgres"
	"github.com/avaldivia/document-routing/internal/derivation"
	derivationPostgres "github.com/avaldivia/document-routing/internal/derivation/postgres"
	"github.com/avaldivia/document-routing/internal/document"
	documentPostgres "github.com/avaldivia/document-routing/internal/document/postgres"
	"github.com/avaldivia/document-routing/internal/employee"
	employeePostgres "github.com/avaldivia/document-routing/internal/employee/postgres"
	"github.com/avaldivia/document-routing/internal/storage"
	"github.com/avaldivia/document-routing/internal/transport/rest"
	"github.com/avaldivia/document-routing/internal/user"
	userPostgres "github.com/avaldivia/document-routing/internal/user/postgres"
	"github.com/avaldivia/document-routing/pkg/logger"
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
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	fileStore, err := storage.NewLocalStorage(config.Storage.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	eventBus := events.NewEventBus(log)
	registerAuditSubscribers(eventBus, log)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewAuthRepository(gormDB), tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	departmentService := department.NewService(departmentPostgres.NewDepartmentRepository(gormDB), log)
	employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(gormDB), departmentService, log)
	userService := user.NewService(userPostgres.NewUserRepository(gormDB), authService, config.Security.EmailDomain, log)

	documentService := document.NewService(documentPostgres.NewDocumentRepository(gormDB), fileStore, eventBus, log)
	derivationService := derivation.NewService(
		derivationPostgres.NewDerivationRepository(gormDB),
		documentService,
		departmentService,
		eventBus,
		log,
	)
	chargebookService := chargebook.NewService(chargebookPostgres.NewChargeBookRepository(gormDB), log)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Router: chi.NewRouter(),
		Handlers: rest.Handlers{
			Auth:       authHandler,
			Authorizer: auth.NewAuthorization(),
			Department: department.NewHandler(departmentService),
			Employee:   employee.NewHandler(employeeService),
			User:       user.NewHandler(userService),
			Document:   document.NewHandler(documentService),
			Derivation: derivation.NewHandler(derivationService),
			ChargeBook: chargebook.NewHandler(chargebookService),
		},
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
