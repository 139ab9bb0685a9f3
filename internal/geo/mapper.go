// Package geo builds the map layer for a line selection: station markers,
// one connecting path per line, and a report of line names that do not join
// between the passenger and coordinate tables.
package geo

import (
	"fmt"

	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
	"github.com/umahmood/haversine"
)

// DefaultCircularLines are closed into loops when drawn.
var DefaultCircularLines = []string{
	"Кольцевая линия",
	"Большая кольцевая линия",
	"Московское центральное кольцо",
}

// Point is a position in degrees.
type Point struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Marker is one station on the map.
type Marker struct {
	Station string  `json:"station"`
	Line    string  `json:"line"`
	Color   string  `json:"color"`
	Lat     float64 `json:"lat"`
	Long    float64 `json:"long"`
}

// Path connects the stations of one line in file order.
type Path struct {
	Line     string  `json:"line"`
	Color    string  `json:"color"`
	Points   []Point `json:"points"`
	Closed   bool    `json:"closed"`
	LengthKM float64 `json:"length_km"`
}

// Layer is everything drawn for one line selection.
type Layer struct {
	Line     string   `json:"line"`
	Markers  []Marker `json:"markers"`
	Paths    []Path   `json:"paths"`
	Warnings []string `json:"warnings,omitempty"`
}

// Mapper turns coordinate rows into map layers.
type Mapper struct {
	colors   ColorTable
	circular map[string]struct{}
}

// NewMapper creates a Mapper. A nil circular list means DefaultCircularLines.
func NewMapper(colors ColorTable, circular []string) *Mapper {
	if circular == nil {
		circular = DefaultCircularLines
	}
	set := make(map[string]struct{}, len(circular))
	for _, l := range circular {
		set[l] = struct{}{}
	}
	return &Mapper{colors: colors, circular: set}
}

// Colors returns the mapper's color table.
func (m *Mapper) Colors() ColorTable { return m.colors }

// IsCircular reports whether line is drawn as a loop.
func (m *Mapper) IsCircular(line string) bool {
	_, ok := m.circular[line]
	return ok
}

// FilterCoordinates keeps the rows of line, or every row for the sentinel.
func FilterCoordinates(rows []dataset.StationCoordinate, line string) []dataset.StationCoordinate {
	if !(pipeline.Selection{Line: line}).HasLine() {
		return rows
	}
	var out []dataset.StationCoordinate
	for _, r := range rows {
		if r.Line == line {
			out = append(out, r)
		}
	}
	return out
}

// Build returns the layer for line (a line name or the sentinel).
func (m *Mapper) Build(rows []dataset.StationCoordinate, line string) Layer {
	line = pipeline.Selection{Line: line}.Normalize().Line
	kept := FilterCoordinates(rows, line)

	layer := Layer{
		Line:    line,
		Markers: make([]Marker, 0, len(kept)),
		Paths:   []Path{},
	}

	var (
		order  []string
		points = make(map[string][]Point)
	)
	for _, r := range kept {
		layer.Markers = append(layer.Markers, Marker{
			Station: r.Name,
			Line:    r.Line,
			Color:   m.colors.Lookup(r.Line),
			Lat:     r.Lat,
			Long:    r.Long,
		})
		if _, ok := points[r.Line]; !ok {
			order = append(order, r.Line)
		}
		points[r.Line] = append(points[r.Line], Point{Lat: r.Lat, Long: r.Long})
	}
	for _, l := range order {
		layer.Paths = append(layer.Paths, m.Path(l, points[l]))
	}

	switch {
	case len(kept) == 0 && line != pipeline.AllLines:
		layer.Warnings = append(layer.Warnings, fmt.Sprintf("No station coordinates for line %q.", line))
	case len(kept) == 0:
		layer.Warnings = append(layer.Warnings, "No station coordinates loaded.")
	}
	return layer
}

// Path builds the path for one line. Circular lines get a copy of their first
// point appended so the drawn path closes.
func (m *Mapper) Path(line string, points []Point) Path {
	pts := make([]Point, len(points), len(points)+1)
	copy(pts, points)

	closed := m.IsCircular(line) && len(pts) > 0
	if closed {
		pts = append(pts, pts[0])
	}
	return Path{
		Line:     line,
		Color:    m.colors.Lookup(line),
		Points:   pts,
		Closed:   closed,
		LengthKM: Length(pts),
	}
}

// Length is the great-circle length of the polyline in kilometres.
func Length(points []Point) float64 {
	var km float64
	for i := 1; i < len(points); i++ {
		_, d := haversine.Distance(
			haversine.Coord{Lat: points[i-1].Lat, Lon: points[i-1].Long},
			haversine.Coord{Lat: points[i].Lat, Lon: points[i].Long},
		)
		km += d
	}
	return km
}
