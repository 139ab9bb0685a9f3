package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metroflow/internal/cli/config"
	"github.com/leapstack-labs/metroflow/internal/cli/testutil"
	"github.com/leapstack-labs/metroflow/internal/engine"
	"github.com/leapstack-labs/metroflow/internal/export"
	"github.com/leapstack-labs/metroflow/internal/geo"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
	logtest "github.com/leapstack-labs/metroflow/internal/testutil"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	dir := testutil.SetupTestProject(t)

	cfg := config.Defaults()
	cfg.Data.Passengers.Path = filepath.Join(dir, testutil.PassengersFile)
	cfg.Data.Coordinates.Path = filepath.Join(dir, testutil.CoordinatesFile)

	e, err := createEngine(&cfg, logtest.NewTestLogger(t))
	require.NoError(t, err)
	return e
}

func summaryFor(t *testing.T, sel pipeline.Selection) *pipeline.Result {
	t.Helper()
	res, err := newTestEngine(t).Summary(sel.Normalize())
	require.NoError(t, err)
	return res
}

func TestRenderSummaryMarkdown(t *testing.T) {
	res := summaryFor(t, pipeline.Selection{Line: "Кольцевая линия"})
	tr := testutil.NewTestRendererMarkdown()

	renderSummaryMarkdown(tr.Renderer, res, &SummaryOptions{Limit: 20, Chart: true})
	out := tr.Output()

	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "14,002,300")
	assert.Contains(t, out, "5 values, 1 missing")
	assert.Contains(t, out, "## Per station")
	assert.Contains(t, out, missingCell, "the blank incoming cell is shown as missing")
	assert.Contains(t, out, "(6 rows)")
	assert.NotContains(t, out, pipeline.FallbackMessage)
}

func TestRenderSummaryMarkdown_Fallback(t *testing.T) {
	res := summaryFor(t, pipeline.Selection{Line: "Кольцевая линия", Year: "2030"})
	require.True(t, res.Fallback)
	tr := testutil.NewTestRendererMarkdown()

	renderSummaryMarkdown(tr.Renderer, res, &SummaryOptions{Limit: 5})
	out := tr.Output()

	assert.Contains(t, out, "> "+pipeline.FallbackMessage)
	assert.Contains(t, out, "(showing 5 of 18 rows, use --limit 0 for all)")
}

func TestRenderSummaryText(t *testing.T) {
	res := summaryFor(t, pipeline.Selection{Line: "Сокольническая линия", Year: "2021", Quarter: "I квартал"})
	tr := testutil.NewTestRendererText()

	renderSummaryText(tr.Renderer, res, &SummaryOptions{Limit: 20})
	out := tr.Output()

	assert.Contains(t, out, "Incoming passengers")
	assert.Contains(t, out, "4,201,900")
	assert.Contains(t, out, "3 values, 1 missing")
	assert.Contains(t, out, "Красносельская")
}

func TestBuildSummaryOutput(t *testing.T) {
	res := summaryFor(t, pipeline.Selection{Line: "Кольцевая линия"})

	out := buildSummaryOutput(res, &SummaryOptions{Limit: 2})
	assert.Len(t, out.Rows, 2)
	assert.Equal(t, 6, out.Displayed)
	assert.Nil(t, out.Chart)

	out = buildSummaryOutput(res, &SummaryOptions{Chart: true})
	require.Len(t, out.Rows, 6)
	require.NotNil(t, out.Chart)
	assert.Nil(t, out.Rows[3].Incoming, "blank cell is null")
}

func TestPathTable(t *testing.T) {
	layer, err := newTestEngine(t).Layer("Кольцевая линия")
	require.NoError(t, err)
	tr := testutil.NewTestRendererMarkdown()

	renderTable(tr.Renderer, pathTable(tr.Renderer, layer))
	out := tr.Output()

	assert.Contains(t, out, "Кольцевая линия")
	assert.Contains(t, out, "true")
	assert.Contains(t, out, " km")
}

func TestRenderDoctorMarkdown(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()
	renderDoctorMarkdown(tr.Renderer, &DoctorOutput{
		Files: []FileCheck{
			{Kind: "passengers", Path: "metro_traffic.csv", Status: "ok", Rows: 18},
			{Kind: "coordinates", Path: "coords.csv", Status: "ok", Rows: 19},
		},
		Join: &geo.JoinReport{WithoutPassengers: []string{"Большая кольцевая линия"}},
	})
	out := tr.Output()

	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "`metro_traffic.csv` (18 rows)")
	assert.Contains(t, out, `- Line "Большая кольцевая линия" has station coordinates but no passenger data.`)
}

func TestExportFormat(t *testing.T) {
	tests := []struct {
		name    string
		opts    ExportOptions
		want    export.Format
		wantErr string
	}{
		{"from extension", ExportOptions{Out: "out.xlsx"}, export.FormatXLSX, ""},
		{"explicit wins", ExportOptions{Out: "out.txt", Format: "CSV"}, export.FormatCSV, ""},
		{"stdout needs format", ExportOptions{Out: "-"}, "", "--format"},
		{"unknown extension", ExportOptions{Out: "out.json"}, "", "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exportFormat(&tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
