// Package server wires the Story API server together: database, migrations,
// photo storage, services and the HTTP router.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/storysync/internal/logging"
	"github.com/dmitrijs2005/storysync/internal/server/config"
	"github.com/dmitrijs2005/storysync/internal/server/httpapi"
	"github.com/dmitrijs2005/storysync/internal/server/photos"
	"github.com/dmitrijs2005/storysync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storysync/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

var (
	openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	newRepoManager = repomanager.NewPostgresRepositoryManager

	newPhotoStore = func(ctx context.Context, cfg *config.Config) (services.PhotoStore, error) {
		return photos.NewS3Store(ctx, cfg)
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
	addr    chan net.Addr
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	ps, err := newPhotoStore(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("photo storage init error: %w", err)
	}

	us := services.NewUserService(db, rm, cfg)
	ss := services.NewStoryService(db, rm, ps, logger.With("component", "stories"))
	subs := services.NewSubscriptionService(db, rm)

	h := httpapi.NewRouter(httpapi.NewHandler(us, ss, subs, logger.With("component", "http")))

	return &App{config: cfg, logger: logger, db: db, handler: h, addr: make(chan net.Addr, 1)}, nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully
// and closes the database.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	ln, err := net.Listen("tcp", app.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", app.config.ListenAddr, err)
	}
	app.addr <- ln.Addr()

	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting app...", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(context.Background(), "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
