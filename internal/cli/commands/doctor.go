package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/metroflow/internal/cli/config"
	"github.com/leapstack-labs/metroflow/internal/cli/output"
	"github.com/leapstack-labs/metroflow/internal/geo"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that both data files load and their line names match",
		Long: `Load the passenger and coordinate files and report:
- whether each file loads, with its row count and dropped index columns
- passenger lines with no station coordinates
- coordinate lines with no passenger data
- lines with no configured color

Lines are matched by exact name, so a spelling difference between the two
files shows up here instead of as an empty map.

Exits with an error if either file fails to load.`,
		Example: `  # Check the configured files
  metroflow doctor

  # Check other files
  metroflow doctor --passengers traffic.xlsx --coordinates coords.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	ConfigFile string          `json:"config_file,omitempty"`
	Files      []FileCheck     `json:"files"`
	Join       *geo.JoinReport `json:"join,omitempty"`
	Healthy    bool            `json:"healthy"`
}

// FileCheck is the load result for one data file.
type FileCheck struct {
	Kind     string    `json:"kind"`
	Path     string    `json:"path"`
	Status   string    `json:"status"` // "ok", "error"
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns,omitempty"`
	Dropped  []string  `json:"dropped,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitzero"`
	Error    string    `json:"error,omitempty"`
}

func runDoctor(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	eng := cmdCtx.Engine
	r := cmdCtx.Renderer

	out := &DoctorOutput{ConfigFile: config.GetConfigFileUsed(), Healthy: true}

	passengers := FileCheck{Kind: "passengers", Path: cmdCtx.Cfg.Data.Passengers.Path, Status: "ok"}
	if t, err := eng.Passengers(); err != nil {
		passengers.Status, passengers.Error = "error", err.Error()
	} else {
		passengers.Rows = t.Len()
		passengers.Columns = t.Columns()
		passengers.Dropped = t.Dropped()
		passengers.LoadedAt = t.LoadedAt()
	}

	coordinates := FileCheck{Kind: "coordinates", Path: cmdCtx.Cfg.Data.Coordinates.Path, Status: "ok"}
	if t, err := eng.Coordinates(); err != nil {
		coordinates.Status, coordinates.Error = "error", err.Error()
	} else {
		coordinates.Rows = t.Len()
		coordinates.LoadedAt = t.LoadedAt()
	}
	out.Files = []FileCheck{passengers, coordinates}

	failed := 0
	for _, f := range out.Files {
		if f.Status != "ok" {
			failed++
		}
	}
	if failed == 0 {
		report, err := eng.Report()
		if err != nil {
			return err
		}
		out.Join = &report
		out.Healthy = report.OK()
	} else {
		out.Healthy = false
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d data files failed to load", failed, len(out.Files))
	}
	return nil
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()
	titleCaser := cases.Title(language.English)

	r.Println("")
	r.Println(styles.Header1.Render("metroflow data check"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	if out.ConfigFile != "" {
		r.Muted("Config: " + out.ConfigFile)
	}
	r.Println("")

	r.Println(styles.Header2.Render("Files"))
	for _, f := range out.Files {
		name := titleCaser.String(f.Kind)
		if f.Status != "ok" {
			r.StatusLine(name, "failed", f.Error)
			continue
		}
		r.StatusLine(name, "success", fmt.Sprintf("%s (%d rows)", f.Path, f.Rows))
		if len(f.Dropped) > 0 {
			r.Println(styles.Muted.Render("       dropped columns: " + strings.Join(quoteAll(f.Dropped), ", ")))
		}
	}
	r.Println("")

	if out.Join == nil {
		return
	}

	r.Println(styles.Header2.Render("Line names"))
	r.Printf("   Passenger lines: %d | Coordinate lines: %d\n", len(out.Join.PassengerLines), len(out.Join.CoordinateLines))
	checks := []struct {
		name  string
		lines []string
	}{
		{"Passenger lines with coordinates", out.Join.WithoutCoordinates},
		{"Coordinate lines with passenger data", out.Join.WithoutPassengers},
		{"Lines with a color", out.Join.WithoutColor},
	}
	for _, c := range checks {
		if len(c.lines) == 0 {
			r.StatusLine(c.name, "success", "")
			continue
		}
		r.StatusLine(c.name, "warn", fmt.Sprintf("(%d missing)", len(c.lines)))
		for _, line := range c.lines {
			r.Println(styles.Muted.Render("       - " + line))
		}
	}
	r.Println("")

	if out.Healthy {
		r.Success("Both files load and every line matches.")
	} else {
		r.Warning("Line names do not fully match; see above.")
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println(output.FormatHeader(1, "metroflow data check"))
	r.Println("")

	r.Println(output.FormatHeader(2, "Files"))
	r.Println("")
	for _, f := range out.Files {
		if f.Status != "ok" {
			r.Println(output.FormatKeyValue(f.Kind, "error: "+f.Error))
			continue
		}
		r.Println(output.FormatKeyValue(f.Kind, fmt.Sprintf("`%s` (%d rows)", f.Path, f.Rows)))
	}
	r.Println("")

	if out.Join == nil {
		return
	}

	r.Println(output.FormatHeader(2, "Line names"))
	r.Println("")
	warnings := out.Join.Warnings()
	if len(warnings) == 0 {
		r.Println("All line names match.")
		return
	}
	for _, w := range warnings {
		r.Println("- " + w)
	}
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
