package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metroflow/internal/engine"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
	"github.com/leapstack-labs/metroflow/internal/ui/features/common"
	"github.com/leapstack-labs/metroflow/internal/ui/notifier"
	"github.com/leapstack-labs/metroflow/internal/ui/resources"
)

// PageTitle is shown in the header and the browser tab.
const PageTitle = "Moscow Metro Passenger Flow"

// Handlers provides HTTP handlers for the dashboard feature.
type Handlers struct {
	engine       *engine.Engine
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	clients      *common.Clients
	tableLimit   int
	isDev        bool
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, sessionStore sessions.Store, notify *notifier.Notifier, clients *common.Clients, opts Options) *Handlers {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		engine:       eng,
		sessionStore: sessionStore,
		notifier:     notify,
		clients:      clients,
		tableLimit:   opts.TableLimit,
		isDev:        opts.IsDev,
		logger:       logger,
	}
}

// Page renders the full dashboard for the session's selection.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	session := common.LoadSession(h.sessionStore, r)
	clientID := session.ClientID()
	sel := session.Selection()

	snap, err := h.engine.Snapshot(sel)
	if err != nil {
		// A stored selection that no longer applies starts over.
		sel = pipeline.DefaultSelection()
		session.ClearSelection()
		if snap, err = h.engine.Snapshot(sel); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	h.clients.Set(clientID, sel)

	if err := session.Save(w, r); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}

	signals, err := json.Marshal(snap.Selection)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page := PageData{
		Title:   PageTitle,
		IsDev:   h.isDev,
		Signals: string(signals),
		Assets: Assets{
			Datastar:     resources.DatastarScript,
			Leaflet:      resources.LeafletScript,
			LeafletStyle: resources.LeafletStyle,
			Chart:        resources.ChartScript,
			Script:       resources.StaticPath("dashboard.js"),
			Style:        resources.StaticPath("dashboard.css"),
		},
		Controls:  buildControls(snap),
		Dashboard: buildDashboard(snap),
		Records:   buildRecords(snap, h.tableLimit),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := PageView(page).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Update applies the selector signals and patches the dashboard.
// A selection that cannot be applied is shown inline and not stored.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	var sel pipeline.Selection
	if err := datastar.ReadSignals(r, &sel); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}
	sel = sel.Normalize()

	session := common.LoadSession(h.sessionStore, r)
	clientID := session.ClientID()

	snap, err := h.engine.Snapshot(sel)
	if err != nil {
		sse := datastar.NewSSE(w, r)
		h.logger.Debug("selection rejected", "client", clientID, "selection", sel.String(), "error", err)
		_ = sse.PatchElementTempl(DashboardFragment(rejectedDashboard(sel, err)))
		return
	}

	session.SetSelection(sel)
	if err := session.Save(w, r); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}
	h.clients.Set(clientID, sel)
	h.logger.Debug("dashboard updated", "client", clientID, "selection", sel.String(), "summary", snap.Summary())

	sse := datastar.NewSSE(w, r)
	if err := h.patchView(sse, snap, false); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Reset restores all three sentinels in the browser and the session.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	session := common.LoadSession(h.sessionStore, r)
	clientID := session.ClientID()
	session.ClearSelection()
	if err := session.Save(w, r); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}

	sel := pipeline.DefaultSelection()
	h.clients.Set(clientID, sel)

	sse := datastar.NewSSE(w, r)
	snap, err := h.engine.Snapshot(sel)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.MarshalAndPatchSignals(sel); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := h.patchView(sse, snap, false); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Updates is the long-lived SSE endpoint of the page. It does not send an
// initial state, since Page already rendered it; on each data change it
// re-renders the client's latest selection, selectors included.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	session := common.LoadSession(h.sessionStore, r)
	clientID := session.ClientID()
	fallback := session.Selection()

	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-updates:
			sel, ok := h.clients.Get(clientID)
			if !ok {
				sel = fallback
			}
			h.logger.Debug("pushing data update", "client", clientID, "reason", string(ev.Reason), "path", ev.Path)
			if err := h.sendUpdate(sse, sel); err != nil {
				_ = sse.ConsoleError(err)
				// Keep the stream open for the next change.
			}
		}
	}
}

func (h *Handlers) sendUpdate(sse *datastar.ServerSentEventGenerator, sel pipeline.Selection) error {
	snap, err := h.engine.Snapshot(sel)
	if errors.Is(err, pipeline.ErrInvalidSelection) {
		snap, err = h.engine.Snapshot(pipeline.DefaultSelection())
	}
	if err != nil {
		return err
	}
	return h.patchView(sse, snap, true)
}

// patchView sends the dashboard and the table, and the selectors too when
// the data itself may have changed.
func (h *Handlers) patchView(sse *datastar.ServerSentEventGenerator, snap *engine.Snapshot, withControls bool) error {
	if withControls {
		if err := sse.PatchElementTempl(ControlsFragment(buildControls(snap))); err != nil {
			return err
		}
	}
	if err := sse.PatchElementTempl(DashboardFragment(buildDashboard(snap))); err != nil {
		return err
	}
	return sse.PatchElementTempl(RecordsFragment(buildRecords(snap, h.tableLimit)))
}
