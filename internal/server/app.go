// Package server wires configuration, storage, services and the HTTP API
// into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const dbConnectTimeout = 10 * time.Second

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	metrics     *metrics.Metrics
	userService *services.UserService
	itemService *services.ItemService
}

// NewApp validates the configuration, connects to storage, applies
// migrations and builds the services. It fails when no signing secret is
// configured.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(c.LogLevel)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger}

	if err := app.initStorage(ctx); err != nil {
		return nil, err
	}

	hasher, err := auth.NewPasswordHasher(c.BcryptCost, c.HashWorkers)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	issuer, err := auth.NewTokenIssuer([]byte(c.SecretKey), c.TokenValidityDuration)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	m, err := metrics.New()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	app.metrics = m
	app.userService = services.NewUserService(app.db, app.repomanager, hasher, issuer, logger)
	app.itemService = services.NewItemService(app.db, app.repomanager, logger)

	return app, nil
}

func newLogger(level string) (logging.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.NewJSONLogger(os.Stdout, lvl), nil
}

func (app *App) initStorage(ctx context.Context) error {
	if app.config.DatabaseDSN == config.MemoryDSN {
		app.logger.Warn(ctx, "Using in-memory storage, data will not survive a restart")
		app.repomanager = memory.NewRepositoryManager()
		return nil
	}

	db, err := openDB(app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	app.db = db
	app.repomanager = rm
	return nil
}

// Handler returns the fully wired HTTP handler.
func (app *App) Handler() http.Handler {
	a := httpapi.New(app.userService, app.itemService,
		httpapi.WithLogger(app.logger),
		httpapi.WithMetrics(app.metrics),
		httpapi.WithAllowedOrigins(app.config.AllowedOrigins),
	)
	return a.Router()
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "Received signal, shutting down", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.Handler(), app.logger)
	err := s.Run(ctx)

	app.Close()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

// Close releases the database connection, if any.
func (app *App) Close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err.Error())
		}
		app.db = nil
	}
}
