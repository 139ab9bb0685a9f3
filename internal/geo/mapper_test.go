package geo

import (
	"testing"

	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coords = []dataset.StationCoordinate{
	{Line: "Кольцевая линия", Name: "Курская", Lat: 55.758, Long: 37.659},
	{Line: "Кольцевая линия", Name: "Комсомольская", Lat: 55.775, Long: 37.654},
	{Line: "Сокольническая линия", Name: "Сокольники", Lat: 55.789, Long: 37.680},
	{Line: "Кольцевая линия", Name: "Проспект Мира", Lat: 55.779, Long: 37.633},
	{Line: "Сокольническая линия", Name: "Красносельская", Lat: 55.780, Long: 37.666},
	{Line: "Призрачная линия", Name: "Нигде", Lat: 55.7, Long: 37.6},
}

func TestFilterCoordinates(t *testing.T) {
	assert.Len(t, FilterCoordinates(coords, pipeline.AllLines), len(coords))
	assert.Len(t, FilterCoordinates(coords, ""), len(coords))

	got := FilterCoordinates(coords, "Сокольническая линия")
	require.Len(t, got, 2)
	assert.Equal(t, "Сокольники", got[0].Name)
	assert.Equal(t, "Красносельская", got[1].Name)

	assert.Empty(t, FilterCoordinates(coords, "Нет такой"))
}

func TestBuild_CircularLineIsClosed(t *testing.T) {
	m := NewMapper(DefaultColors(), nil)

	for _, line := range DefaultCircularLines {
		t.Run(line, func(t *testing.T) {
			rows := []dataset.StationCoordinate{
				{Line: line, Name: "a", Lat: 55.70, Long: 37.50},
				{Line: line, Name: "b", Lat: 55.80, Long: 37.60},
				{Line: line, Name: "c", Lat: 55.75, Long: 37.70},
			}
			layer := m.Build(rows, line)
			require.Len(t, layer.Paths, 1)

			p := layer.Paths[0]
			assert.True(t, p.Closed)
			require.Len(t, p.Points, 4)
			assert.Equal(t, p.Points[0], p.Points[len(p.Points)-1])
			assert.Len(t, layer.Markers, 3, "closing point is not a marker")
		})
	}
}

func TestBuild_OtherLineIsOpen(t *testing.T) {
	m := NewMapper(DefaultColors(), nil)

	layer := m.Build(coords, "Сокольническая линия")
	require.Len(t, layer.Paths, 1)

	p := layer.Paths[0]
	assert.False(t, p.Closed)
	require.Len(t, p.Points, 2)
	assert.NotEqual(t, p.Points[0], p.Points[1])
	assert.Equal(t, "#EF161E", p.Color)
	assert.Empty(t, layer.Warnings)
}

func TestBuild_AllLines(t *testing.T) {
	m := NewMapper(DefaultColors(), nil)

	layer := m.Build(coords, pipeline.AllLines)

	assert.Equal(t, pipeline.AllLines, layer.Line)
	require.Len(t, layer.Markers, len(coords))
	require.Len(t, layer.Paths, 3)

	assert.Equal(t, "Кольцевая линия", layer.Paths[0].Line)
	assert.True(t, layer.Paths[0].Closed)
	assert.Len(t, layer.Paths[0].Points, 4)

	assert.Equal(t, "Сокольническая линия", layer.Paths[1].Line)
	assert.False(t, layer.Paths[1].Closed)

	ghost := layer.Paths[2]
	assert.Equal(t, DefaultColor, ghost.Color)
	assert.Equal(t, 0.0, ghost.LengthKM, "single point has no length")

	for _, mk := range layer.Markers {
		assert.Equal(t, m.Colors().Lookup(mk.Line), mk.Color)
	}
}

func TestBuild_Warnings(t *testing.T) {
	m := NewMapper(DefaultColors(), nil)

	layer := m.Build(coords, "Нет такой")
	assert.Empty(t, layer.Markers)
	assert.Empty(t, layer.Paths)
	assert.Equal(t, []string{`No station coordinates for line "Нет такой".`}, layer.Warnings)

	layer = m.Build(nil, "")
	assert.Equal(t, []string{"No station coordinates loaded."}, layer.Warnings)
}

func TestMapper_CustomCircularLines(t *testing.T) {
	m := NewMapper(DefaultColors(), []string{"Сокольническая линия"})

	assert.True(t, m.IsCircular("Сокольническая линия"))
	assert.False(t, m.IsCircular("Кольцевая линия"))

	layer := m.Build(coords, "Кольцевая линия")
	assert.False(t, layer.Paths[0].Closed)
}

func TestLength(t *testing.T) {
	assert.Equal(t, 0.0, Length(nil))
	assert.Equal(t, 0.0, Length([]Point{{Lat: 55.75, Long: 37.61}}))

	// One degree of latitude is about 111 km.
	km := Length([]Point{{Lat: 55, Long: 37}, {Lat: 56, Long: 37}})
	assert.InDelta(t, 111.2, km, 0.5)

	// Closing a loop adds the return leg.
	open := Length([]Point{{Lat: 55, Long: 37}, {Lat: 56, Long: 37}, {Lat: 56, Long: 38}})
	closed := Length([]Point{{Lat: 55, Long: 37}, {Lat: 56, Long: 37}, {Lat: 56, Long: 38}, {Lat: 55, Long: 37}})
	assert.Greater(t, closed, open)
}

func TestPath_DoesNotAliasInput(t *testing.T) {
	m := NewMapper(DefaultColors(), nil)
	in := []Point{{Lat: 1, Long: 1}, {Lat: 2, Long: 2}}

	p := m.Path("Кольцевая линия", in)
	p.Points[0].Lat = 99

	assert.Equal(t, 1.0, in[0].Lat)
	assert.Len(t, in, 2)
}
