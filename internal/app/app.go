package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/database"
	"github.com/vancomm/minesweeper-engine/internal/middleware"
	"github.com/vancomm/minesweeper-engine/internal/repository"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	logger   *slog.Logger
	cfg      *config.App
	router   *http.ServeMux
	db       *pgxpool.Pool
	repo     *repository.Queries
	jwt      *config.JWT
	cookies  *config.Cookies
	ws       *config.WebSocket
	sessions *session.Manager
}

func New(logger *slog.Logger, cfg *config.App) *App {
	return &App{
		logger: logger,
		cfg:    cfg,
		router: http.NewServeMux(),
		ws:     config.NewWebSocket(cfg.Development),
	}
}

// setup connects the optional records database and auth keys, then builds
// the session registry and routes.
func (a *App) setup(ctx context.Context) error {
	if a.cfg.Database.Enabled() {
		db, err := database.ConnectAndMigrate(ctx, a.cfg.Database)
		if err != nil {
			return fmt.Errorf("unable to connect to db: %w", err)
		}
		a.db = db
		a.repo = repository.New(db)
	} else {
		a.logger.Warn("no database configured, records and players are disabled")
	}

	if a.cfg.JWT.Enabled() {
		j, err := config.NewJWT(a.cfg.JWT)
		if err != nil {
			return err
		}
		a.jwt = j
		a.cookies = config.NewCookies(a.cfg.Cookies, j)
	} else {
		a.logger.Warn("no JWT keys configured, players are disabled")
	}

	opts := session.Options{
		TickInterval: a.cfg.TickInterval,
		TTL:          a.cfg.SessionTTL,
		Defaults:     a.cfg.Defaults.Params(),
		MaxCells:     a.cfg.MaxCells,
		Logger:       a.logger,
	}
	if a.repo != nil {
		opts.Recorder = a.repo
	}
	a.sessions = session.NewManager(opts)

	a.loadRoutes()
	return nil
}

func (a *App) Handler() http.Handler {
	var auth middleware.Middleware
	if a.cookies != nil {
		auth = middleware.Auth(a.logger, a.cookies)
	}
	var h http.Handler = a.router
	if base := strings.TrimSuffix(a.cfg.BasePath, "/"); base != "" {
		h = http.StripPrefix(base, h)
	}
	return middleware.Wrap(
		h,
		auth,
		middleware.Cors(a.cfg.Development, a.cfg.CorsOrigins...),
		middleware.Logging(a.logger),
	)
}

// Start serves until ctx is done or the server fails, then shuts down the
// server and every live session.
func (a *App) Start(ctx context.Context) error {
	if err := a.setup(ctx); err != nil {
		return err
	}
	if a.db != nil {
		defer a.db.Close()
	}

	server := &http.Server{
		Addr:    a.cfg.Addr,
		Handler: a.Handler(),
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		a.logger.Info("server listening",
			slog.String("addr", a.cfg.Addr),
			slog.String("base path", a.cfg.BasePath),
			slog.String("default game", a.cfg.Defaults.Params().Seed()),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return a.sessions.Run(ctx)
	})
	group.Go(func() error {
		<-ctx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sCtx)
	})
	return group.Wait()
}
