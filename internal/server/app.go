// Package server wires the TraceGuard server together: config, database and
// migrations, vault key derivation, the audit ledger, the services, and the
// HTTP endpoint, with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Vinithareddy09/TraceGuard/internal/ledger"
	"github.com/Vinithareddy09/TraceGuard/internal/logging"
	"github.com/Vinithareddy09/TraceGuard/internal/reuse"
	"github.com/Vinithareddy09/TraceGuard/internal/server/config"
	"github.com/Vinithareddy09/TraceGuard/internal/server/httpapi"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/repomanager"
	"github.com/Vinithareddy09/TraceGuard/internal/server/services"
	"github.com/Vinithareddy09/TraceGuard/internal/vault"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	v, err := vault.New(vault.DeriveKey([]byte(cfg.VaultPassphrase), []byte(cfg.VaultSalt)))
	if err != nil {
		return nil, fmt.Errorf("vault init error: %w", err)
	}

	detector := reuse.NewDetector(reuse.NewShingleJaccard(), cfg.ReuseThreshold)
	lg := ledger.New(manager.AuditEntries(db))

	// Corruption is reported, never repaired, so a broken chain is loud at
	// startup rather than fatal.
	if err := lg.VerifyChain(ctx); err != nil {
		logger.Warn(ctx, "audit chain verification failed", "error", err)
	}

	userService := services.NewUserService(db, manager, lg, cfg)
	documentService := services.NewDocumentService(db, manager, v, detector, lg, cfg)

	httpServer := httpapi.NewServer(cfg.EndpointAddr, logger, userService, documentService)

	return &App{config: cfg, logger: logger, db: db, httpServer: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing db", "error", err)
	}
}
