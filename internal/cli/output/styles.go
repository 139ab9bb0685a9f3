package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used by the CLI.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusSkipped lipgloss.Style
	StatusWarning lipgloss.Style

	TileLabel lipgloss.Style
	TileValue lipgloss.Style
	Tile      lipgloss.Style

	// Swatch renders a colored block next to a line name.
	Swatch lipgloss.Style
}

// newStyles builds styles bound to lr so the color profile of the
// destination writer is respected.
func newStyles(lr *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lr.NewStyle().Foreground(lipgloss.Color("9")),
		Info:    lr.NewStyle().Foreground(lipgloss.Color("12")),

		StatusSuccess: lr.NewStyle().Foreground(lipgloss.Color("10")).SetString("✓"),
		StatusFailed:  lr.NewStyle().Foreground(lipgloss.Color("9")).SetString("✗"),
		StatusSkipped: lr.NewStyle().Foreground(lipgloss.Color("8")).SetString("-"),
		StatusWarning: lr.NewStyle().Foreground(lipgloss.Color("11")).SetString("!"),

		TileLabel: lr.NewStyle().Foreground(lipgloss.Color("8")),
		TileValue: lr.NewStyle().Bold(true),
		Tile: lr.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 2).
			MarginRight(1),

		Swatch: lr.NewStyle().SetString("■"),
	}
}

// Tile is one labelled metric.
type Tile struct {
	Label string
	Value string
	Note  string
}

// RenderTiles lays the tiles out side by side.
func (s *Styles) RenderTiles(tiles ...Tile) string {
	boxes := make([]string, 0, len(tiles))
	for _, t := range tiles {
		lines := []string{s.TileLabel.Render(t.Label), s.TileValue.Render(t.Value)}
		if t.Note != "" {
			lines = append(lines, s.Muted.Render(t.Note))
		}
		boxes = append(boxes, s.Tile.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// ColorSwatch renders a block in a named CSS color when the terminal
// supports it. Unknown names fall back to plain text.
func (s *Styles) ColorSwatch(css string) string {
	if hex, ok := cssColors[strings.ToLower(css)]; ok {
		return s.Swatch.Foreground(lipgloss.Color(hex)).String()
	}
	if strings.HasPrefix(css, "#") {
		return s.Swatch.Foreground(lipgloss.Color(css)).String()
	}
	return s.Swatch.String()
}

// cssColors covers the named colors configs are likely to use.
var cssColors = map[string]string{
	"black":  "#000000",
	"blue":   "#0000ff",
	"gray":   "#808080",
	"green":  "#008000",
	"grey":   "#808080",
	"orange": "#ffa500",
	"purple": "#800080",
	"red":    "#ff0000",
	"teal":   "#008080",
	"yellow": "#ffff00",
}
