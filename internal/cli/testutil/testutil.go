// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/metroflow/internal/cli/output"
)

// Names of the data files in the repository testdata directory.
const (
	PassengersFile  = "metro_traffic.csv"
	CoordinatesFile = "moscow_underground_coords.csv"
)

// projectConfig points at the copied data files with the delimiters they use.
const projectConfig = `data:
  passengers:
    path: metro_traffic.csv
    delimiter: ";"
  coordinates:
    path: moscow_underground_coords.csv
    delimiter: ","
`

// SetupTestProject creates a temporary project with a metroflow.yaml and
// copies of the testdata files, and returns its directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	src := GetTestdataDir(t)

	for _, name := range []string{PassengersFile, CoordinatesFile} {
		content, err := os.ReadFile(filepath.Join(src, name))
		if err != nil {
			t.Fatalf("failed to read %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(tmpDir, name), content, 0600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "metroflow.yaml"), []byte(projectConfig), 0600); err != nil {
		t.Fatalf("failed to create metroflow.yaml: %v", err)
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, mode, isTTY),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if fenceCount := strings.Count(md, "```"); fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}

// GetTestdataDir returns the path to the repository testdata directory.
func GetTestdataDir(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	// Try different relative paths based on where tests are run from
	candidates := []string{
		filepath.Join(wd, "testdata"),
		filepath.Join(wd, "..", "testdata"),
		filepath.Join(wd, "..", "..", "testdata"),
		filepath.Join(wd, "..", "..", "..", "testdata"),
	}
	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, PassengersFile)); err == nil {
			return dir
		}
	}

	t.Fatalf("testdata directory not found from %s", wd)
	return ""
}
