package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorTable_Lookup(t *testing.T) {
	colors := DefaultColors()

	assert.Equal(t, 19, colors.Len())
	assert.Equal(t, "#8D5B2D", colors.Lookup("Кольцевая линия"))
	assert.Equal(t, "#0f4343", colors.Lookup("Троицкая линия"))
	assert.Equal(t, DefaultColor, colors.Lookup("Неизвестная линия"))
	assert.Equal(t, DefaultColor, colors.Lookup(""))
	assert.False(t, colors.Has("Неизвестная линия"))
}

func TestColorTable_WithDoesNotModifyOriginal(t *testing.T) {
	base := DefaultColors()
	custom := base.With(map[string]string{
		"Кольцевая линия": "#000000",
		"Новая линия":     "#123456",
	})

	assert.Equal(t, "#8D5B2D", base.Lookup("Кольцевая линия"))
	assert.Equal(t, DefaultColor, base.Lookup("Новая линия"))
	assert.Equal(t, "#000000", custom.Lookup("Кольцевая линия"))
	assert.Equal(t, "#123456", custom.Lookup("Новая линия"))
	assert.Equal(t, 20, custom.Len())
}

func TestNewColorTable_CopiesInput(t *testing.T) {
	src := map[string]string{"A": "red"}
	table := NewColorTable(src, "grey")
	src["A"] = "blue"
	src["B"] = "green"

	assert.Equal(t, "red", table.Lookup("A"))
	assert.Equal(t, "grey", table.Lookup("B"))
	assert.Equal(t, []string{"A"}, table.Lines())
}

func TestColorTable_ZeroValue(t *testing.T) {
	var table ColorTable
	assert.Equal(t, DefaultColor, table.Lookup("A"))
	assert.Empty(t, table.Lines())
}

func TestColorTable_WithFallback(t *testing.T) {
	table := DefaultColors().WithFallback("#cccccc")
	assert.Equal(t, "#cccccc", table.Lookup("Неизвестная линия"))
	assert.Equal(t, "#EF161E", table.Lookup("Сокольническая линия"))

	assert.Equal(t, DefaultColor, DefaultColors().WithFallback("").Lookup("x"))
}
