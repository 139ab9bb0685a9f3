package config

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "metroflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("passengers", "", "")
	fs.String("coordinates", "", "")
	fs.String("log-level", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.Int("port", 0, "")
	fs.String("line", "", "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	// macOS TempDir is a symlink; compare against the resolved cwd.
	cwd, err := os.Getwd()
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Equal(t, cwd, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(cwd, DefaultPassengersFile), cfg.Data.Passengers.Path)
	assert.Equal(t, ";", cfg.Data.Passengers.Delimiter)
	assert.Equal(t, filepath.Join(cwd, DefaultCoordinatesFile), cfg.Data.Coordinates.Path)
	assert.Equal(t, ",", cfg.Data.Coordinates.Delimiter)
	assert.Equal(t, DefaultDropColumns, cfg.Data.DropColumns)
	assert.Equal(t, DefaultCacheSize, cfg.Data.CacheSize)
	assert.Zero(t, cfg.Data.CacheTTL)
	assert.Equal(t, DefaultPort, cfg.UI.Port)
	assert.Equal(t, DefaultTableLimit, cfg.UI.TableLimit)
	assert.True(t, cfg.UI.Watch)
	assert.Equal(t, DefaultColor, cfg.Map.DefaultColor)
	assert.Len(t, cfg.Map.CircularLines, 3)
	assert.Equal(t, 10, cfg.Map.Zoom)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, `
data:
  passengers:
    path: data/traffic.xlsx
    sheet: Sheet1
  cache_ttl: 10m
  refresh_schedule: "@every 1h"
map:
  zoom: 11
  colors:
    Новая линия: teal
ui:
  port: 9000
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	chdir(t, nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	resolvedRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	resolvedCfgRoot, err := filepath.EvalSymlinks(cfg.ProjectRoot)
	require.NoError(t, err)

	assert.Equal(t, resolvedRoot, resolvedCfgRoot)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "data", "traffic.xlsx"), cfg.Data.Passengers.Path)
	assert.Equal(t, "Sheet1", cfg.Data.Passengers.Sheet)
	assert.Equal(t, ";", cfg.Data.Passengers.Delimiter, "unset keys keep defaults")
	assert.Equal(t, 10*time.Minute, cfg.Data.CacheTTL)
	assert.Equal(t, "@every 1h", cfg.Data.RefreshSchedule)
	assert.Equal(t, 11, cfg.Map.Zoom)
	assert.Equal(t, map[string]string{"Новая линия": "teal"}, cfg.Map.Colors)
	assert.Equal(t, 9000, cfg.UI.Port)
	assert.NotEmpty(t, GetConfigFileUsed())
}

func TestLoadConfig_Precedence(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, `
ui:
  port: 9000
  table_limit: 50
log:
  level: warn
map:
  circular_lines: [A]
`)

	t.Setenv("METROFLOW_UI__PORT", "9100")
	t.Setenv("METROFLOW_UI__TABLE_LIMIT", "75")
	t.Setenv("METROFLOW_MAP__CIRCULAR_LINES", "X,Y")
	t.Setenv("METROFLOW_DATA__CACHE_TTL", "90s")
	t.Setenv(SessionSecretEnv, "s3cret")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--port", "9200", "--passengers", "other.csv", "--line", "A"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.UI.Port, "flag beats env")
	assert.Equal(t, 75, cfg.UI.TableLimit, "env beats file")
	assert.Equal(t, "warn", cfg.Log.Level, "file beats defaults")
	assert.Equal(t, []string{"X", "Y"}, cfg.Map.CircularLines)
	assert.Equal(t, 90*time.Second, cfg.Data.CacheTTL)
	assert.Equal(t, "s3cret", cfg.UI.SessionSecret)
	assert.Equal(t, filepath.Join(cwd, "other.csv"), cfg.Data.Passengers.Path)
}

func TestLoadConfig_UnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, "ui:\n  port: 9000\n")

	flags := testFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.UI.Port)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	ResetConfig()
	cfgDir := t.TempDir()
	path := filepath.Join(cfgDir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  coordinates:\n    path: coords.csv\n"), 0o600))
	chdir(t, t.TempDir())

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, filepath.Join(cfgDir, "coords.csv"), cfg.Data.Coordinates.Path)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	chdir(t, t.TempDir())

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		errSubstr string
	}{
		{
			name:      "port out of range",
			body:      "ui:\n  port: 70000\n",
			errSubstr: "ui.port",
		},
		{
			name:      "unknown log level",
			body:      "log:\n  level: loud\n",
			errSubstr: "log.level must be one of",
		},
		{
			name:      "bad output",
			body:      "output: yaml\n",
			errSubstr: "output must be one of",
		},
		{
			name:      "multi-character delimiter",
			body:      "data:\n  passengers:\n    delimiter: ';;'\n",
			errSubstr: "data.passengers.delimiter",
		},
		{
			name:      "bad drop pattern",
			body:      "data:\n  drop_columns: '('\n",
			errSubstr: "data.drop_columns",
		},
		{
			name:      "bad schedule",
			body:      "data:\n  refresh_schedule: every now and then\n",
			errSubstr: "data.refresh_schedule",
		},
		{
			name:      "empty path",
			body:      "data:\n  coordinates:\n    path: ''\n",
			errSubstr: "data.coordinates.path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			dir := t.TempDir()
			chdir(t, dir)
			writeConfig(t, dir, tt.body)

			_, err := LoadConfig("", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "ui.port", envKey("METROFLOW_UI__PORT"))
	assert.Equal(t, "data.passengers.path", envKey("METROFLOW_DATA__PASSENGERS__PATH"))
	assert.Equal(t, "verbose", envKey("METROFLOW_VERBOSE"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, false, &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger, err = NewLogger(LogConfig{Level: "error", Format: "text"}, true, &buf)
	require.NoError(t, err)
	logger.Debug("verbose wins")
	assert.Contains(t, buf.String(), "verbose wins")

	_, err = NewLogger(LogConfig{Level: "info", Format: "xml"}, false, &buf)
	assert.Error(t, err)
	_, err = NewLogger(LogConfig{Level: "loud"}, false, &buf)
	assert.Error(t, err)
}

func TestGetLogger(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()))
}
