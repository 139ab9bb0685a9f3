// Package api serves the dashboard's data as JSON and file downloads for
// clients that are not a browser page.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metroflow/internal/engine"
	"github.com/leapstack-labs/metroflow/internal/export"
)

// SetupRoutes configures routes for the api feature.
func SetupRoutes(
	router chi.Router,
	eng *engine.Engine,
	sessionStore sessions.Store,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(eng, sessionStore, logger)

	router.Get("/api/summary", handlers.Summary)
	router.Get("/api/stations", handlers.Stations)
	router.Get("/export.xlsx", handlers.Export(export.FormatXLSX))
	router.Get("/export.csv", handlers.Export(export.FormatCSV))
	router.Get("/healthz", handlers.Health)

	return nil
}
