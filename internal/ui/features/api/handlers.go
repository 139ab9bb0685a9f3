package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/engine"
	"github.com/leapstack-labs/metroflow/internal/export"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
	"github.com/leapstack-labs/metroflow/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the api feature.
type Handlers struct {
	engine       *engine.Engine
	sessionStore sessions.Store
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, sessionStore sessions.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		engine:       eng,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

// Summary runs the pipeline for the query's selection.
// An optional limit caps the returned rows; totals always cover every row.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	sel, _ := common.SelectionFromQuery(r.URL.Query())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("limit must be a non-negative integer, got %q", raw))
			return
		}
		limit = n
	}

	res, err := h.engine.Summary(sel)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	rows := res.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := SummaryResponse{
		Selection: res.Selection,
		Fallback:  res.Fallback,
		Message:   res.Message,
		Matched:   res.Matched,
		TotalRows: res.TotalRows,
		Displayed: res.Displayed(),
		Incoming:  res.Incoming,
		Outgoing:  res.Outgoing,
		Chart:     res.Chart,
		Rows:      make([]Row, len(rows)),
	}
	for i, r := range rows {
		out.Rows[i] = Row{
			Line:     r.Line,
			Station:  r.NameOfStation,
			Year:     r.Year,
			Quarter:  r.Quarter,
			Incoming: measure(r.IncomingPassengers),
			Outgoing: measure(r.OutgoingPassengers),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Stations returns the map layer for the query's line.
func (h *Handlers) Stations(w http.ResponseWriter, r *http.Request) {
	line := r.URL.Query().Get("line")
	layer, err := h.engine.Layer(line)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, layer)
}

// Export returns a handler downloading the displayed table in format.
// The selection comes from the query when given, else from the session.
func (h *Handlers) Export(format export.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, ok := common.SelectionFromQuery(r.URL.Query())
		if !ok {
			sel = common.LoadSession(h.sessionStore, r).Selection()
		}

		res, err := h.engine.Summary(sel)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		filename := "metro_traffic." + string(format)
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := export.Write(w, format, res.Rows); err != nil {
			// Headers are gone; all that is left is to log.
			h.logger.Error("export failed", "format", string(format), "error", err)
			return
		}
		h.logger.Info("export downloaded", "format", string(format), "selection", sel.String(), "rows", len(res.Rows))
	}
}

// Health reports whether both data files load.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	out := HealthResponse{Status: "ok", Passengers: "ok", Coordinates: "ok"}
	if _, err := h.engine.Passengers(); err != nil {
		out.Status, out.Passengers = "degraded", err.Error()
	}
	if _, err := h.engine.Coordinates(); err != nil {
		out.Status, out.Coordinates = "degraded", err.Error()
	}

	status := http.StatusOK
	if out.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, out)
}

// statusFor maps an engine error to a response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidSelection):
		return http.StatusBadRequest
	case errors.Is(err, dataset.ErrLoad):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func measure(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
