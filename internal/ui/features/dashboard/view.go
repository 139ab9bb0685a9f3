package dashboard

import (
	"fmt"
	"math"

	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/engine"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
	"github.com/leapstack-labs/metroflow/internal/ui/features/common"
	"github.com/leapstack-labs/metroflow/internal/ui/resources"
)

const missingCell = "n/a"

func buildControls(snap *engine.Snapshot) ControlsView {
	return ControlsView{
		Options:   snap.Options,
		Selection: snap.Selection,
	}
}

func buildDashboard(snap *engine.Snapshot) DashboardView {
	view := DashboardView{
		Title:       pipeline.ChartTitle(snap.Selection),
		ExportQuery: common.SelectionQuery(snap.Selection),
		HasData:     true,
		Data: ClientData{
			Layer: snap.Layer,
			Map:   snap.Map,
			Tiles: TileSource{URL: resources.TileURL, Attribution: resources.TileAttribution},
		},
	}

	for _, msg := range snap.Errors() {
		view.Notices = append(view.Notices, Notice{Kind: "error", Text: msg})
	}

	if res := snap.Result; res != nil {
		view.Incoming = totalTile("Total incoming passengers", res.Incoming)
		view.Outgoing = totalTile("Total outgoing passengers", res.Outgoing)
		view.Data.Chart = res.Chart
		if res.Fallback {
			view.Notices = append(view.Notices, Notice{Kind: "warning", Text: res.Message})
		}
	} else {
		view.Incoming = Tile{Label: "Total incoming passengers", Value: missingCell, Note: "passenger data unavailable"}
		view.Outgoing = Tile{Label: "Total outgoing passengers", Value: missingCell, Note: "passenger data unavailable"}
		view.Data.Chart = pipeline.BuildChart(nil, snap.Selection)
	}

	for _, msg := range snap.Warnings() {
		view.Notices = append(view.Notices, Notice{Kind: "info", Text: msg})
	}
	return view
}

// rejectedDashboard shows err in place of the metrics.
func rejectedDashboard(sel pipeline.Selection, err error) DashboardView {
	return DashboardView{
		Title:    pipeline.ChartTitle(sel),
		Incoming: Tile{Label: "Total incoming passengers", Value: missingCell},
		Outgoing: Tile{Label: "Total outgoing passengers", Value: missingCell},
		Notices:  []Notice{{Kind: "error", Text: err.Error()}},
	}
}

func totalTile(label string, t pipeline.Total) Tile {
	note := fmt.Sprintf("%d values", t.Counted)
	if t.Missing > 0 {
		note = fmt.Sprintf("%d values, %d missing", t.Counted, t.Missing)
	}
	return Tile{Label: label, Value: t.String(), Note: note}
}

// buildRecords formats at most limit rows; limit <= 0 means all.
func buildRecords(snap *engine.Snapshot, limit int) RecordsView {
	if snap.Result == nil {
		return RecordsView{}
	}
	rows := snap.Result.Rows
	view := RecordsView{Total: len(rows)}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
		view.Truncated = true
	}
	view.Shown = len(rows)

	view.Rows = make([]RecordRow, len(rows))
	for i, r := range rows {
		view.Rows[i] = recordRow(r)
	}
	return view
}

func recordRow(r dataset.PassengerRecord) RecordRow {
	return RecordRow{
		Line:            r.Line,
		Station:         r.NameOfStation,
		Year:            r.Year,
		Quarter:         r.Quarter,
		Incoming:        formatMeasure(r.IncomingPassengers),
		Outgoing:        formatMeasure(r.OutgoingPassengers),
		IncomingMissing: !r.HasIncoming(),
		OutgoingMissing: !r.HasOutgoing(),
	}
}

func formatMeasure(v float64) string {
	if math.IsNaN(v) {
		return missingCell
	}
	return pipeline.FormatCount(v)
}
