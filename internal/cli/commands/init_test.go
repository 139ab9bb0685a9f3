package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/metroflow/internal/cli/config"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   bool
		wantFiles []string
		noFiles   []string
	}{
		{
			name:      "init empty directory",
			wantFiles: []string{"metroflow.yaml"},
			noFiles:   []string{"metro_traffic.csv"},
		},
		{
			name: "init existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "metroflow.yaml"), []byte("existing"), 0600))
			},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "metroflow.yaml"), []byte("existing"), 0600))
			},
			args:      []string{"--force"},
			wantFiles: []string{"metroflow.yaml"},
		},
		{
			name:      "init with sample data",
			args:      []string{"--sample"},
			wantFiles: []string{"metroflow.yaml", "metro_traffic.csv", "moscow_underground_coords.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(append([]string{tmpDir}, tt.args...))

			err := cmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--force")
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				assert.FileExists(t, filepath.Join(tmpDir, f))
			}
			for _, f := range tt.noFiles {
				assert.NoFileExists(t, filepath.Join(tmpDir, f))
			}
		})
	}
}

func TestInitWritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(filepath.Join(dir, "metroflow.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "METROFLOW_UI__PORT")

	var got config.Config
	require.NoError(t, yaml.Unmarshal(content, &got))
	want := config.Defaults()
	assert.Equal(t, want.Data.Passengers, got.Data.Passengers)
	assert.Equal(t, want.UI.Port, got.UI.Port)
	assert.Equal(t, want.Map.DefaultColor, got.Map.DefaultColor)
}
