package api

import (
	"github.com/leapstack-labs/metroflow/internal/pipeline"
)

// SummaryResponse is the body of GET /api/summary.
type SummaryResponse struct {
	Selection pipeline.Selection `json:"selection"`
	Fallback  bool               `json:"fallback"`
	Message   string             `json:"message,omitempty"`
	Matched   int                `json:"matched"`
	TotalRows int                `json:"total_rows"`
	Displayed int                `json:"displayed"`
	Incoming  pipeline.Total     `json:"incoming"`
	Outgoing  pipeline.Total     `json:"outgoing"`
	Chart     pipeline.Chart     `json:"chart"`
	Rows      []Row              `json:"rows"`
}

// Row is one displayed passenger row. Missing measures are null.
type Row struct {
	Line     string   `json:"line"`
	Station  string   `json:"station"`
	Year     int      `json:"year"`
	Quarter  string   `json:"quarter"`
	Incoming *float64 `json:"incoming"`
	Outgoing *float64 `json:"outgoing"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      string `json:"status"` // "ok", "degraded"
	Passengers  string `json:"passengers"`
	Coordinates string `json:"coordinates"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
