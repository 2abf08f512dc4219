package app

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

	"sweet-shop/internal/auth"
	"sweet-shop/internal/config"
	"sweet-shop/internal/database"
	"sweet-shop/internal/handler"
	"sweet-shop/internal/middleware"
	"sweet-shop/internal/repository"
	"sweet-shop/internal/repository/memory"
	"sweet-shop/internal/router"
	"sweet-shop/internal/service"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

// Stores groups the persistence the HTTP layer runs on. Health may be nil.
type Stores struct {
	Accounts service.AccountStore
	Sweets   service.SweetStore
	Audit    service.AuditStore
	Health   handler.HealthChecker
}

func MemoryStores() Stores {
	return Stores{
		Accounts: memory.NewAccountStore(),
		Sweets:   memory.NewSweetStore(),
		Audit:    memory.NewAuditStore(),
	}
}

func PostgresStores(db *database.DB) Stores {
	return Stores{
		Accounts: repository.NewAccountRepository(db.Pool),
		Sweets:   repository.NewSweetRepository(db.Pool),
		Audit:    repository.NewAuditRepository(db.Pool),
		Health:   db,
	}
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.UsesDefaultSecret() {
		slog.Warn("SECRET_KEY is the development default; set a real secret before deploying")
	}

	var (
		stores  Stores
		cleanup []func()
	)

	switch cfg.StorageDriver {
	case config.DriverMemory:
		slog.Info("using in-memory storage; data is lost on restart")
		stores = MemoryStores()
	default:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, database.Options{
			URL:      cfg.DatabaseURL,
			Name:     cfg.DatabaseName,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		stores = PostgresStores(db)
		cleanup = append(cleanup, db.Close)
		slog.Info("database ready")
	}

	appHandler, authService, err := NewHandler(cfg, stores)
	if err != nil {
		runAll(cleanup)
		return nil, err
	}

	if cfg.AdminEmail != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			runAll(cleanup)
			return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appHandler,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, cleanupFuncs: cleanup}, nil
}

// NewHandler wires services, handlers and middleware over the given stores.
func NewHandler(cfg *config.Config, stores Stores) (http.Handler, *service.AuthService, error) {
	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	tokens, err := auth.NewTokenCodec(cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	authService, err := service.NewAuthService(stores.Accounts, hasher, tokens)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	gate := service.NewAccessGate(tokens, stores.Accounts)
	auditService := service.NewAuditService(stores.Audit)
	sweetService := service.NewSweetService(stores.Sweets, auditService)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(gate), router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Sweet:  handler.NewSweetHandler(sweetService),
		Audit:  handler.NewAuditHandler(auditService),
		Docs:   handler.NewDocsHandler(),
		System: handler.NewSystemHandler(stores.Health),
	})

	return appRouter, authService, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	// The pool goes last so in-flight requests can finish.
	runAll(a.cleanupFuncs)

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func runAll(funcs []func()) {
	for _, fn := range funcs {
		fn()
	}
}
