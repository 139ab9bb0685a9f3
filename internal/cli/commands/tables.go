package commands

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metroflow/internal/cli/output"
	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
)

// missingCell is shown for a measure that is not a number.
const missingCell = "n/a"

// addSelectionFlags registers --line, --year and --quarter.
func addSelectionFlags(cmd *cobra.Command, sel *pipeline.Selection) {
	cmd.Flags().StringVar(&sel.Line, "line", pipeline.AllLines, "Line to show")
	cmd.Flags().StringVar(&sel.Year, "year", pipeline.AllYears, "Year to show")
	cmd.Flags().StringVar(&sel.Quarter, "quarter", pipeline.AllQuarters, "Quarter to show (e.g. \"I квартал\")")
}

// newTable creates a go-pretty table writing to the renderer.
func newTable(r *output.Renderer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	return t
}

// renderTable renders t in the renderer's effective mode.
func renderTable(r *output.Renderer, t table.Writer) {
	switch r.EffectiveMode() {
	case output.ModeMarkdown:
		t.RenderMarkdown()
	case output.ModeCSV:
		t.RenderCSV()
	default:
		t.Render()
	}
}

// recordTable lists passenger rows. limit <= 0 shows every row.
func recordTable(r *output.Renderer, rows []dataset.PassengerRecord, limit int) table.Writer {
	t := newTable(r)
	t.AppendHeader(table.Row{
		dataset.ColLine, dataset.ColStation, dataset.ColYear, dataset.ColQuarter,
		dataset.ColIncoming, dataset.ColOutgoing,
	})
	for i, row := range rows {
		if limit > 0 && i >= limit {
			break
		}
		t.AppendRow(table.Row{
			row.Line,
			row.NameOfStation,
			row.Year,
			row.Quarter,
			measureCell(row.IncomingPassengers),
			measureCell(row.OutgoingPassengers),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return t
}

// chartTable lists the per-station bars.
func chartTable(r *output.Renderer, c pipeline.Chart) table.Writer {
	t := newTable(r)
	t.AppendHeader(table.Row{"Station", "Incoming", "Outgoing"})
	for i, station := range c.Stations {
		t.AppendRow(table.Row{station, pipeline.FormatCount(c.Incoming[i]), pipeline.FormatCount(c.Outgoing[i])})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	return t
}

func measureCell(v float64) string {
	if math.IsNaN(v) {
		return missingCell
	}
	return pipeline.FormatCount(v)
}

// measurePtr returns nil for a missing measure so JSON shows null.
func measurePtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// shownNote describes a truncated listing.
func shownNote(shown, total int) string {
	if shown >= total {
		return fmt.Sprintf("(%d rows)", total)
	}
	return fmt.Sprintf("(showing %d of %d rows, use --limit 0 for all)", shown, total)
}

func formatKM(km float64) string {
	return strconv.FormatFloat(km, 'f', 2, 64) + " km"
}
