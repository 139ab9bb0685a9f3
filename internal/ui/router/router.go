// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metroflow/internal/engine"
	apiFeature "github.com/leapstack-labs/metroflow/internal/ui/features/api"
	"github.com/leapstack-labs/metroflow/internal/ui/features/common"
	dashboardFeature "github.com/leapstack-labs/metroflow/internal/ui/features/dashboard"
	"github.com/leapstack-labs/metroflow/internal/ui/notifier"
	"github.com/leapstack-labs/metroflow/internal/ui/resources"
)

// Deps are the shared dependencies of every feature.
type Deps struct {
	Engine       *engine.Engine
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Clients      *common.Clients
	TableLimit   int
	IsDev        bool
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	// Hot reload endpoint for dev mode
	if deps.IsDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	if err := dashboardFeature.SetupRoutes(router, deps.Engine, deps.SessionStore, deps.Notifier, deps.Clients, dashboardFeature.Options{
		TableLimit: deps.TableLimit,
		IsDev:      deps.IsDev,
		Logger:     deps.Logger,
	}); err != nil {
		return err
	}

	if err := apiFeature.SetupRoutes(router, deps.Engine, deps.SessionStore, deps.Logger); err != nil {
		return err
	}

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
