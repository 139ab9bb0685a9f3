package commands

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metroflow/internal/cli/output"
	"github.com/leapstack-labs/metroflow/internal/geo"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
)

// StationsOptions holds options for the stations command.
type StationsOptions struct {
	Line string
}

// NewStationsCommand creates the stations command.
func NewStationsCommand() *cobra.Command {
	opts := &StationsOptions{}
	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List the stations and paths drawn on the map",
		Long: `Print the map layer for a line: one marker per station and one path per
line, with its color, whether it is closed into a loop, and its length.

Circular lines are closed by repeating their first station at the end.`,
		Example: `  # Every line
  metroflow stations

  # One line as JSON
  metroflow stations --line "Кольцевая линия" -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStations(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Line, "line", pipeline.AllLines, "Line to show")

	return cmd
}

func runStations(cmd *cobra.Command, opts *StationsOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	layer, err := cmdCtx.Engine.Layer(opts.Line)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(layer)
	case output.ModeCSV:
		renderTable(r, markerTable(r, layer))
		return nil
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Stations: "+layer.Line))
		r.Println("")
		for _, w := range layer.Warnings {
			r.Printf("> %s\n\n", w)
		}
		renderTable(r, markerTable(r, layer))
		r.Println("")
		r.Println(output.FormatHeader(2, "Paths"))
		r.Println("")
		renderTable(r, pathTable(r, layer))
		return nil
	default:
		styles := r.Styles()
		r.Println("")
		r.Println(styles.Header1.Render("Stations: " + layer.Line))
		r.Println("")
		for _, w := range layer.Warnings {
			r.Warning(w)
		}
		renderTable(r, markerTable(r, layer))
		r.Muted(fmt.Sprintf("(%d stations)", len(layer.Markers)))
		r.Println("")
		r.Println(styles.Header2.Render("Paths"))
		renderTable(r, pathTable(r, layer))
		return nil
	}
}

func markerTable(r *output.Renderer, layer geo.Layer) table.Writer {
	t := newTable(r)
	t.AppendHeader(table.Row{"Line", "Station", "Lat", "Long", "Color"})
	for _, m := range layer.Markers {
		t.AppendRow(table.Row{
			m.Line,
			m.Station,
			strconv.FormatFloat(m.Lat, 'f', 6, 64),
			strconv.FormatFloat(m.Long, 'f', 6, 64),
			m.Color,
		})
	}
	return t
}

func pathTable(r *output.Renderer, layer geo.Layer) table.Writer {
	swatch := r.EffectiveMode() == output.ModeText
	t := newTable(r)
	t.AppendHeader(table.Row{"Line", "Color", "Points", "Closed", "Length"})
	for _, p := range layer.Paths {
		color := p.Color
		if swatch {
			color = r.Styles().ColorSwatch(p.Color) + " " + p.Color
		}
		t.AppendRow(table.Row{p.Line, color, len(p.Points), p.Closed, formatKM(p.LengthKM)})
	}
	return t
}
