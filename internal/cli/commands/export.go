package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metroflow/internal/export"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Selection pipeline.Selection
	Out       string
	Format    string
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the displayed rows to an .xlsx or .csv file",
		Long: `Filter the passenger table and write the rows the dashboard would display.

Passenger counts are written as numbers; values that are not numbers are
left empty. When no row matches the filters the full table is written.
The format follows the file extension unless --format is given. Use
"--out -" with --format to write to stdout.`,
		Example: `  # Export one line to Excel
  metroflow export --line "Кольцевая линия" --out ring.xlsx

  # Stream CSV to another tool
  metroflow export --year 2021 --out - --format csv | head`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	addSelectionFlags(cmd, &opts.Selection)
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file (.xlsx or .csv), or - for stdout")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Output format: xlsx, csv (default: from --out extension)")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagFilename("out", "xlsx", "csv")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	format, err := exportFormat(opts)
	if err != nil {
		return err
	}

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	res, err := cmdCtx.Engine.Summary(opts.Selection.Normalize())
	if err != nil {
		return err
	}

	if opts.Out == "-" {
		return export.Write(cmd.OutOrStdout(), format, res.Rows)
	}

	if err := export.WriteFileAs(opts.Out, format, res.Rows); err != nil {
		return err
	}
	cmdCtx.Logger.Info("export written", "file", opts.Out, "format", string(format), "rows", len(res.Rows))

	if res.Fallback {
		r.Warning(res.Message)
	}
	r.Success(fmt.Sprintf("Wrote %d rows to %s", len(res.Rows), opts.Out))
	return nil
}

func exportFormat(opts *ExportOptions) (export.Format, error) {
	if opts.Format != "" {
		return export.ParseFormat(opts.Format)
	}
	if opts.Out == "-" {
		return "", fmt.Errorf("--format is required when writing to stdout")
	}
	return export.FormatFromPath(opts.Out)
}
