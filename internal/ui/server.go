// Package ui serves the passenger-flow dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/robfig/cron"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/engine"
	"github.com/leapstack-labs/metroflow/internal/ui/features/common"
	"github.com/leapstack-labs/metroflow/internal/ui/notifier"
	"github.com/leapstack-labs/metroflow/internal/ui/resources"
	"github.com/leapstack-labs/metroflow/internal/ui/router"
)

// Server is the dashboard server.
type Server struct {
	engine          *engine.Engine
	sessionStore    *sessions.CookieStore
	port            int
	watch           bool
	refreshSchedule string
	tableLimit      int
	logger          *slog.Logger
	notifier        *notifier.Notifier
	clients         *common.Clients
}

// Config holds configuration for the UI server.
type Config struct {
	Engine *engine.Engine
	Port   int
	// Watch reloads the data files when they change on disk.
	Watch bool
	// RefreshSchedule is an optional cron spec that purges the table cache.
	RefreshSchedule string
	TableLimit      int
	SessionSecret   string
	Logger          *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		engine:          cfg.Engine,
		sessionStore:    sessionStore,
		port:            cfg.Port,
		watch:           cfg.Watch,
		refreshSchedule: cfg.RefreshSchedule,
		tableLimit:      cfg.TableLimit,
		logger:          logger,
		notifier:        notifier.New(),
		clients:         common.NewClients(common.DefaultClientLimit, common.DefaultClientTTL),
	}
}

// Handler builds the router with all middleware and routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, router.Deps{
		Engine:       s.engine,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Clients:      s.clients,
		TableLimit:   s.tableLimit,
		IsDev:        s.IsDev(),
		Logger:       s.logger,
	}); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting UI server", "addr", "http://"+ln.Addr().String())

	handler, err := s.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start file watcher if enabled
	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	if s.refreshSchedule != "" {
		eg.Go(func() error {
			return s.scheduleRefresh(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev returns true if assets are served from the source tree.
func (s *Server) IsDev() bool {
	return resources.IsDev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchFiles invalidates a data file's cache entry when it changes and tells
// every open dashboard to re-render.
func (s *Server) watchFiles(ctx context.Context) error {
	err := dataset.Watch(ctx, s.engine.WatchedPaths(), s.logger, func(path string) {
		s.engine.Invalidate(path)
		s.notifier.Broadcast(notifier.Event{Reason: notifier.ReasonFileChanged, Path: path})
	})
	if err != nil {
		// The dashboard still works without live reload.
		s.logger.Error("file watcher stopped", "error", err)
	}
	return nil
}

// scheduleRefresh purges the table cache on the refresh schedule, so files
// replaced behind the watcher's back are still picked up.
func (s *Server) scheduleRefresh(ctx context.Context) error {
	c := cron.New()
	if err := c.AddFunc(s.refreshSchedule, func() {
		s.engine.Purge()
		s.notifier.Broadcast(notifier.Event{Reason: notifier.ReasonScheduled})
	}); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.refreshSchedule, err)
	}

	s.logger.Debug("refresh scheduled", "schedule", s.refreshSchedule)
	c.Start()
	<-ctx.Done()
	c.Stop()
	return nil
}
