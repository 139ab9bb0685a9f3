package engine

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
	"github.com/leapstack-labs/metroflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testdataDir returns the repository testdata directory.
func testdataDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get current file path")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata")
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := testdataDir(t)
	e, err := New(Config{
		Passengers:  dataset.Spec{Path: filepath.Join(dir, "metro_traffic.csv"), Delimiter: ';'},
		Coordinates: dataset.Spec{Path: filepath.Join(dir, "moscow_underground_coords.csv")},
		Logger:      testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return e
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantMsg string
	}{
		{name: "no passengers", cfg: Config{Coordinates: dataset.Spec{Path: "c.csv"}}, wantMsg: "passengers file is required"},
		{name: "no coordinates", cfg: Config{Passengers: dataset.Spec{Path: "p.csv"}}, wantMsg: "coordinates file is required"},
		{
			name:    "bad pattern",
			cfg:     Config{Passengers: dataset.Spec{Path: "p.csv"}, Coordinates: dataset.Spec{Path: "c.csv"}, DropPattern: "(["},
			wantMsg: "invalid drop pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(Config{
		Passengers:   dataset.Spec{Path: "p.csv"},
		Coordinates:  dataset.Spec{Path: "c.csv"},
		Colors:       map[string]string{"Новая линия": "#010203"},
		DefaultColor: "grey",
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultMapView(), e.MapView())
	assert.Equal(t, "#010203", e.Mapper().Colors().Lookup("Новая линия"))
	assert.Equal(t, "#8D5B2D", e.Mapper().Colors().Lookup("Кольцевая линия"))
	assert.Equal(t, "grey", e.Mapper().Colors().Lookup("Неизвестная"))
	assert.True(t, e.Mapper().IsCircular("Кольцевая линия"))
	assert.Equal(t, []string{"p.csv", "c.csv"}, e.WatchedPaths())
}

func TestSnapshot_Default(t *testing.T) {
	e := newTestEngine(t)

	snap, err := e.Snapshot(pipeline.Selection{})
	require.NoError(t, err)

	assert.False(t, snap.HasErrors())
	require.NotNil(t, snap.Result)
	assert.False(t, snap.Result.Fallback)
	assert.Equal(t, 18, snap.Result.Displayed())
	assert.Equal(t, []string{
		pipeline.AllLines,
		"Сокольническая линия",
		"Кольцевая линия",
		"Замоскворецкая линия",
		"Московское центральное кольцо",
	}, snap.Options.Lines)
	assert.Equal(t, []string{pipeline.AllYears, "2021", "2022"}, snap.Options.Years)

	assert.Len(t, snap.Layer.Markers, 19)
	assert.Len(t, snap.Layer.Paths, 5)

	require.NotNil(t, snap.Join)
	assert.Equal(t, []string{"Большая кольцевая линия"}, snap.Join.WithoutPassengers)
	assert.Empty(t, snap.Join.WithoutCoordinates)
	assert.Contains(t, snap.Warnings(), `Line "Большая кольцевая линия" has station coordinates but no passenger data.`)
	assert.Equal(t, DefaultMapView(), snap.Map)
}

func TestSnapshot_LineSelection(t *testing.T) {
	e := newTestEngine(t)

	snap, err := e.Snapshot(pipeline.Selection{Line: "Кольцевая линия", Year: "2021"})
	require.NoError(t, err)

	require.NotNil(t, snap.Result)
	assert.Equal(t, 4, snap.Result.Matched)
	assert.Equal(t, 2150400.0+3890200+1720800, snap.Result.Incoming.Sum)
	assert.Equal(t, 1, snap.Result.Incoming.Missing)

	require.Len(t, snap.Layer.Paths, 1)
	assert.True(t, snap.Layer.Paths[0].Closed)
	assert.Len(t, snap.Layer.Paths[0].Points, 6)
}

func TestSnapshot_Fallback(t *testing.T) {
	e := newTestEngine(t)

	snap, err := e.Snapshot(pipeline.Selection{Line: "Замоскворецкая линия", Year: "2021"})
	require.NoError(t, err)

	require.NotNil(t, snap.Result)
	assert.True(t, snap.Result.Fallback)
	assert.Equal(t, 18, snap.Result.Displayed())
	assert.Contains(t, snap.Summary(), "fallback")
}

func TestSnapshot_InvalidSelection(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Snapshot(pipeline.Selection{Year: "two thousand"})
	require.ErrorIs(t, err, pipeline.ErrInvalidSelection)
}

func TestSnapshot_LoadErrorsAreCarried(t *testing.T) {
	dir := t.TempDir()
	coords := filepath.Join(testdataDir(t), "moscow_underground_coords.csv")
	e, err := New(Config{
		Passengers:  dataset.Spec{Path: filepath.Join(dir, "missing.csv"), Delimiter: ';'},
		Coordinates: dataset.Spec{Path: coords},
		Logger:      testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	snap, err := e.Snapshot(pipeline.Selection{Line: "Кольцевая линия"})
	require.NoError(t, err)

	assert.True(t, snap.HasErrors())
	assert.ErrorIs(t, snap.PassengerErr, dataset.ErrLoad)
	assert.NoError(t, snap.CoordinateErr)
	assert.Nil(t, snap.Result)
	assert.Nil(t, snap.Join)
	assert.Len(t, snap.Layer.Markers, 5, "map still renders")
	assert.Len(t, snap.Errors(), 1)
	assert.Equal(t, []string{pipeline.AllLines}, snap.Options.Lines)
}

func TestEngine_InvalidateReloads(t *testing.T) {
	dir := t.TempDir()
	pPath := filepath.Join(dir, "traffic.csv")
	header := "Line;NameOfStation;Year;Quarter;IncomingPassengers;OutgoingPassengers\n"
	require.NoError(t, os.WriteFile(pPath, []byte(header+"A;S;2020;Q1;10;20\n"), 0o600))

	logger, logs := testutil.NewCaptureLogger()
	e, err := New(Config{
		Passengers:  dataset.Spec{Path: pPath, Delimiter: ';'},
		Coordinates: dataset.Spec{Path: filepath.Join(testdataDir(t), "moscow_underground_coords.csv")},
		Logger:      logger,
	})
	require.NoError(t, err)

	res, err := e.Summary(pipeline.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Incoming.Sum)

	require.NoError(t, os.WriteFile(pPath, []byte(header+"A;S;2020;Q1;10;20\nA;T;2020;Q1;5;5\n"), 0o600))

	res, err = e.Summary(pipeline.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Incoming.Sum, "cached until invalidated")

	assert.True(t, e.Invalidate(pPath))
	entry, ok := logs.Find("data file invalidated")
	require.True(t, ok)
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, true, entry.Attrs["was_cached"])

	res, err = e.Summary(pipeline.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 15.0, res.Incoming.Sum)

	e.Purge()
	_, err = e.Options()
	require.NoError(t, err)
}

func TestEngine_ReportAndLayer(t *testing.T) {
	e := newTestEngine(t)

	report, err := e.Report()
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Len(t, report.PassengerLines, 4)
	assert.Len(t, report.CoordinateLines, 5)

	layer, err := e.Layer("Московское центральное кольцо")
	require.NoError(t, err)
	require.Len(t, layer.Paths, 1)
	assert.True(t, layer.Paths[0].Closed)
	assert.Greater(t, layer.Paths[0].LengthKM, 0.0)
}
