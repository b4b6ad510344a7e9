package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/storysync/internal/client/cache"
	"github.com/dmitrijs2005/storysync/internal/client/client"
	"github.com/dmitrijs2005/storysync/internal/client/config"
	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/client/notify"
	"github.com/dmitrijs2005/storysync/internal/client/replay"
	"github.com/dmitrijs2005/storysync/internal/client/repositories/favorites"
	"github.com/dmitrijs2005/storysync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/storysync/internal/client/repositories/submissions"
	"github.com/dmitrijs2005/storysync/internal/client/services"
	"github.com/dmitrijs2005/storysync/internal/client/storage"
	"github.com/dmitrijs2005/storysync/internal/logging"
)

// notifier is the part of notify.Gateway the CLI drives.
type notifier interface {
	Subscribe(ctx context.Context, sub models.PushSubscription) error
	Unsubscribe(ctx context.Context, endpoint string) error
	Endpoint(ctx context.Context) (string, error)
	Deliver(ctx context.Context, data []byte, d notify.Displayer) error
}

type syncer interface {
	Replay(ctx context.Context) (replay.Result, error)
}

type connectivity interface {
	Online() bool
	Run(ctx context.Context)
}

type App struct {
	config *config.Config
	logger logging.Logger

	authService     services.AuthService
	storyService    services.StoryService
	favoriteService services.FavoriteService
	gateway         notifier
	replayer        syncer
	watcher         connectivity
	httpClient      *http.Client
	cacheVersion    string

	userName    string
	lastStories []models.Story

	reader *bufio.Reader
	out    io.Writer

	closers []func() error
}

// NewApp opens the local store, prepares the request cache and wires the
// services around an HTTP client whose transport is the cache.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	app := &App{config: c, logger: logger, reader: bufio.NewReader(os.Stdin), out: os.Stdout, cacheVersion: c.CacheVersion}
	app.closers = append(app.closers, db.Close)

	store, err := app.cacheStore(ctx, db)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	base := http.DefaultTransport
	rc := cache.New(store, c.CacheVersion, logger)
	app.prepareCache(ctx, rc, base)

	tr, err := cache.NewTransport(base, rc, c.APIBaseURL, c.ShellOrigin, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.httpClient = &http.Client{Transport: tr, Timeout: c.RequestTimeout}

	api := client.NewHTTPClient(c.APIBaseURL, app.httpClient)
	queue := submissions.NewSQLiteRepository(db)

	replayer := replay.New(queue, api, logger)
	scheduler := replay.NewScheduler(replayer, api, c.OnlineCheckInterval, logger)

	app.authService = services.NewAuthService(api, db)
	app.storyService = services.NewStoryService(api, app.authService, queue, scheduler, logger)
	app.favoriteService = services.NewFavoriteService(favorites.NewSQLiteRepository(db))
	app.gateway = notify.NewGateway(api, app.authService, metadata.NewSQLiteRepository(db), logger)
	app.replayer = replayer
	app.watcher = scheduler

	return app, nil
}

func (a *App) cacheStore(ctx context.Context, db *sql.DB) (cache.Store, error) {
	if a.config.CacheBackend != config.CacheBackendRedis {
		return cache.NewSQLiteStore(db), nil
	}
	rdb, err := cache.DialRedis(ctx, a.config.RedisAddr)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rdb.Close)
	return cache.NewRedisStore(rdb, ""), nil
}

// prepareCache precaches the shell and retires older cache generations.
// A failed install keeps the previous generations around.
func (a *App) prepareCache(ctx context.Context, rc *cache.Cache, base http.RoundTripper) {
	if a.config.ShellOrigin != "" && len(a.config.PrecacheURLs) > 0 {
		urls, err := cache.ResolveURLs(a.config.ShellOrigin, a.config.PrecacheURLs)
		if err == nil {
			err = rc.Install(ctx, base, urls)
		}
		if err != nil {
			a.logger.Warn(ctx, "cache install failed, keeping previous caches", "bucket", rc.Version(), "error", err)
			return
		}
	}
	if _, err := rc.Activate(ctx); err != nil {
		a.logger.Warn(ctx, "cache cleanup failed", "error", err)
	}
}

// Close releases the database and, when used, the redis connection.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.watcher != nil && a.watcher.Online() {
		s += "online"
	} else {
		s += "offline"
	}
	return fmt.Sprintf("(%s)", s)
}

// Run restores the stored session, starts the connectivity watcher and
// serves the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if name, err := a.authService.UserName(ctx); err == nil {
		a.userName = name
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.watcher.Run(ctx)

	fmt.Fprintln(a.out, "Welcome to storysync (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
