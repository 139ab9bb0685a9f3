package dashboard

import (
	"github.com/leapstack-labs/metroflow/internal/engine"
	"github.com/leapstack-labs/metroflow/internal/geo"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
)

// PageData is the full page.
type PageData struct {
	Title     string
	IsDev     bool
	Signals   string
	Assets    Assets
	Controls  ControlsView
	Dashboard DashboardView
	Records   RecordsView
}

// Assets are the script and style URLs the page loads.
type Assets struct {
	Datastar     string
	Leaflet      string
	LeafletStyle string
	Chart        string
	Script       string
	Style        string
}

// ControlsView is the selector bar.
type ControlsView struct {
	Options   pipeline.Options
	Selection pipeline.Selection
}

// DashboardView holds the tiles, notices and the chart and map data.
type DashboardView struct {
	Title    string
	Incoming Tile
	Outgoing Tile
	Notices  []Notice
	// ExportQuery is appended to the download links.
	ExportQuery string
	// HasData is false when the selection was rejected; the page then keeps
	// drawing the previous chart and map.
	HasData bool
	Data    ClientData
}

// Tile is one metric.
type Tile struct {
	Label string
	Value string
	Note  string
}

// Notice is a message above the panels. Kind is "info", "warning" or "error".
type Notice struct {
	Kind string
	Text string
}

// ClientData is read by the page script to draw the chart and the map.
type ClientData struct {
	Chart pipeline.Chart `json:"chart"`
	Layer geo.Layer      `json:"layer"`
	Map   engine.MapView `json:"map"`
	Tiles TileSource     `json:"tiles"`
}

// TileSource is the map tile server.
type TileSource struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// RecordsView is the raw table.
type RecordsView struct {
	Rows      []RecordRow
	Shown     int
	Total     int
	Truncated bool
}

// RecordRow is one displayed passenger row, measures already formatted.
type RecordRow struct {
	Line            string
	Station         string
	Year            int
	Quarter         string
	Incoming        string
	Outgoing        string
	IncomingMissing bool
	OutgoingMissing bool
}
