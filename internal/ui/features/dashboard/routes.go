// Package dashboard provides the passenger-flow dashboard page and its
// datastar endpoints.
package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metroflow/internal/engine"
	"github.com/leapstack-labs/metroflow/internal/ui/features/common"
	"github.com/leapstack-labs/metroflow/internal/ui/notifier"
)

// Options tune the dashboard handlers.
type Options struct {
	// TableLimit caps the raw table; 0 shows every row.
	TableLimit int
	IsDev      bool
	Logger     *slog.Logger
}

// SetupRoutes configures routes for the dashboard feature.
func SetupRoutes(
	router chi.Router,
	eng *engine.Engine,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	clients *common.Clients,
	opts Options,
) error {
	handlers := NewHandlers(eng, sessionStore, notify, clients, opts)

	// Page routes (full page render)
	router.Get("/", handlers.Page)

	// SSE routes
	router.Get("/api/dashboard", handlers.Update)
	router.Post("/api/dashboard/reset", handlers.Reset)
	router.Get("/updates", handlers.Updates)

	return nil
}
