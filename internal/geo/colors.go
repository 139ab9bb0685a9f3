package geo

import (
	"maps"
	"slices"
)

// DefaultColor is used for lines missing from a ColorTable.
const DefaultColor = "black"

var builtinColors = map[string]string{
	"Сокольническая линия":             "#EF161E",
	"Замоскворецкая линия":             "#2DBE2C",
	"Арбатско-Покровская линия":        "#0078BE",
	"Филёвская линия":                  "#00BFFF",
	"Кольцевая линия":                  "#8D5B2D",
	"Калужско-Рижская линия":           "#ED9121",
	"Таганско-Краснопресненская линия": "#800080",
	"Калининская линия":                "#FFD702",
	"Солнцевская линия":                "#FFD702",
	"Калининско-Солнцевская линия":     "#FFD702",
	"Серпуховско-Тимирязевская линия":  "#999999",
	"Люблинско-Дмитровская линия":      "#99CC00",
	"Большая кольцевая линия":          "#82C0C0",
	"Каховская линия":                  "#231F20",
	"Бутовская линия":                  "#A1B3D4",
	"Московский монорельс":             "#B9C8E7",
	"Московское центральное кольцо":    "#FFC6C2",
	"Некрасовская линия":               "#DE64A1",
	"Троицкая линия":                   "#0f4343",
}

// ColorTable maps line names to colors. It is immutable: With returns a
// new table and lookups never see later changes.
type ColorTable struct {
	colors   map[string]string
	fallback string
}

// DefaultColors returns the built-in Moscow line colors.
func DefaultColors() ColorTable {
	return NewColorTable(builtinColors, DefaultColor)
}

// NewColorTable copies colors into a new table. An empty fallback means
// DefaultColor.
func NewColorTable(colors map[string]string, fallback string) ColorTable {
	if fallback == "" {
		fallback = DefaultColor
	}
	return ColorTable{colors: maps.Clone(colors), fallback: fallback}
}

// With returns a copy of the table with overrides applied on top.
func (c ColorTable) With(overrides map[string]string) ColorTable {
	merged := make(map[string]string, len(c.colors)+len(overrides))
	maps.Copy(merged, c.colors)
	maps.Copy(merged, overrides)
	return ColorTable{colors: merged, fallback: c.fallback}
}

// WithFallback returns a copy of the table using color for unknown lines.
// An empty color keeps the current fallback.
func (c ColorTable) WithFallback(color string) ColorTable {
	if color == "" {
		color = c.Fallback()
	}
	return ColorTable{colors: c.colors, fallback: color}
}

// Lookup returns the color for line, or the fallback color.
func (c ColorTable) Lookup(line string) string {
	if color, ok := c.colors[line]; ok {
		return color
	}
	return c.Fallback()
}

// Has reports whether line has its own entry.
func (c ColorTable) Has(line string) bool {
	_, ok := c.colors[line]
	return ok
}

// Fallback returns the color used for unknown lines.
func (c ColorTable) Fallback() string {
	if c.fallback == "" {
		return DefaultColor
	}
	return c.fallback
}

// Lines returns the known line names, sorted.
func (c ColorTable) Lines() []string {
	return slices.Sorted(maps.Keys(c.colors))
}

// Len returns the number of entries.
func (c ColorTable) Len() int { return len(c.colors) }
