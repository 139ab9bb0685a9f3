package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metroflow/internal/cli/output"
	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/export"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
)

// SummaryOptions holds options for the summary command.
type SummaryOptions struct {
	Selection pipeline.Selection
	Limit     int
	Chart     bool
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	opts := &SummaryOptions{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show passenger totals for a line, year and quarter",
		Long: `Filter the passenger table and print the incoming and outgoing totals
followed by the matching rows.

Values that are not numbers are left out of the totals and counted as
missing. When no row matches the filters the full table is shown instead.

Output adapts to environment:
  - Terminal: Styled tiles and a table
  - Piped/Scripted: Markdown format
  - JSON / CSV: Machine-readable format`,
		Example: `  # Totals for the whole dataset
  metroflow summary

  # One line in one quarter
  metroflow summary --line "Кольцевая линия" --year 2021 --quarter "I квартал"

  # Per-station chart data as JSON
  metroflow summary --line "Кольцевая линия" --chart -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, opts)
		},
	}

	addSelectionFlags(cmd, &opts.Selection)
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum rows to print (0 for all)")
	cmd.Flags().BoolVar(&opts.Chart, "chart", false, "Also print per-station totals")

	return cmd
}

// SummaryOutput is the JSON output for the summary command.
type SummaryOutput struct {
	Selection pipeline.Selection `json:"selection"`
	Matched   int                `json:"matched"`
	TotalRows int                `json:"total_rows"`
	Displayed int                `json:"displayed"`
	Fallback  bool               `json:"fallback"`
	Message   string             `json:"message,omitempty"`
	Incoming  pipeline.Total     `json:"incoming"`
	Outgoing  pipeline.Total     `json:"outgoing"`
	Chart     *pipeline.Chart    `json:"chart,omitempty"`
	Rows      []RowOutput        `json:"rows"`
}

// RowOutput is one passenger row. Missing measures are null.
type RowOutput struct {
	Line     string   `json:"line"`
	Station  string   `json:"station"`
	Year     int      `json:"year"`
	Quarter  string   `json:"quarter"`
	Incoming *float64 `json:"incoming"`
	Outgoing *float64 `json:"outgoing"`
}

func runSummary(cmd *cobra.Command, opts *SummaryOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	res, err := cmdCtx.Engine.Summary(opts.Selection.Normalize())
	if err != nil {
		return err
	}
	cmdCtx.Logger.Debug("summary computed",
		"selection", res.Selection.String(),
		"matched", res.Matched,
		"fallback", res.Fallback)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(buildSummaryOutput(res, opts))
	case output.ModeCSV:
		return export.WriteCSV(r.Writer(), limitRows(res, opts.Limit))
	case output.ModeMarkdown:
		renderSummaryMarkdown(r, res, opts)
	default:
		renderSummaryText(r, res, opts)
	}
	return nil
}

func buildSummaryOutput(res *pipeline.Result, opts *SummaryOptions) *SummaryOutput {
	rows := limitRows(res, opts.Limit)
	out := &SummaryOutput{
		Selection: res.Selection,
		Matched:   res.Matched,
		TotalRows: res.TotalRows,
		Displayed: res.Displayed(),
		Fallback:  res.Fallback,
		Message:   res.Message,
		Incoming:  res.Incoming,
		Outgoing:  res.Outgoing,
		Rows:      make([]RowOutput, 0, len(rows)),
	}
	if opts.Chart {
		chart := res.Chart
		out.Chart = &chart
	}
	for _, row := range rows {
		out.Rows = append(out.Rows, RowOutput{
			Line:     row.Line,
			Station:  row.NameOfStation,
			Year:     row.Year,
			Quarter:  row.Quarter,
			Incoming: measurePtr(row.IncomingPassengers),
			Outgoing: measurePtr(row.OutgoingPassengers),
		})
	}
	return out
}

func limitRows(res *pipeline.Result, limit int) []dataset.PassengerRecord {
	if limit > 0 && len(res.Rows) > limit {
		return res.Rows[:limit]
	}
	return res.Rows
}

func missingNote(t pipeline.Total) string {
	if t.Missing == 0 {
		return fmt.Sprintf("%d values", t.Counted)
	}
	return fmt.Sprintf("%d values, %d missing", t.Counted, t.Missing)
}

func renderSummaryText(r *output.Renderer, res *pipeline.Result, opts *SummaryOptions) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(res.Chart.Title))
	r.Println("")
	if res.Fallback {
		r.Warning(res.Message)
		r.Println("")
	}

	r.Println(styles.RenderTiles(
		output.Tile{Label: "Incoming passengers", Value: res.Incoming.String(), Note: missingNote(res.Incoming)},
		output.Tile{Label: "Outgoing passengers", Value: res.Outgoing.String(), Note: missingNote(res.Outgoing)},
	))
	r.Println("")

	if opts.Chart {
		r.Println(styles.Header2.Render("Per station"))
		renderTable(r, chartTable(r, res.Chart))
		r.Println("")
	}

	r.Println(styles.Header2.Render("Rows"))
	renderTable(r, recordTable(r, res.Rows, opts.Limit))
	r.Muted(shownNote(len(limitRows(res, opts.Limit)), res.Displayed()))
}

func renderSummaryMarkdown(r *output.Renderer, res *pipeline.Result, opts *SummaryOptions) {
	r.Println(output.FormatHeader(1, res.Chart.Title))
	r.Println("")
	if res.Fallback {
		r.Printf("> %s\n\n", res.Message)
	}

	r.Println(output.FormatKeyValue("Incoming passengers", res.Incoming.String()+" ("+missingNote(res.Incoming)+")"))
	r.Println(output.FormatKeyValue("Outgoing passengers", res.Outgoing.String()+" ("+missingNote(res.Outgoing)+")"))
	r.Println(output.FormatKeyValue("Rows", fmt.Sprintf("%d of %d", res.Displayed(), res.TotalRows)))
	r.Println("")

	if opts.Chart {
		r.Println(output.FormatHeader(2, "Per station"))
		r.Println("")
		renderTable(r, chartTable(r, res.Chart))
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Rows"))
	r.Println("")
	renderTable(r, recordTable(r, res.Rows, opts.Limit))
	r.Println("")
	r.Println(shownNote(len(limitRows(res, opts.Limit)), res.Displayed()))
}
