package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CoordinateTable is a loaded station-coordinate file, rows in file order.
type CoordinateTable struct {
	path     string
	rows     []StationCoordinate
	loadedAt time.Time
}

// Rows returns the stations in file order. The slice must not be modified.
func (t *CoordinateTable) Rows() []StationCoordinate { return t.rows }

// Len returns the number of stations.
func (t *CoordinateTable) Len() int { return len(t.rows) }

// Path returns the file the table was loaded from.
func (t *CoordinateTable) Path() string { return t.path }

// LoadedAt returns when the file was read.
func (t *CoordinateTable) LoadedAt() time.Time { return t.loadedAt }

// Lines returns the distinct line names in first-appearance order.
func (t *CoordinateTable) Lines() []string {
	seen := make(map[string]struct{})
	var lines []string
	for _, r := range t.rows {
		if _, ok := seen[r.Line]; ok {
			continue
		}
		seen[r.Line] = struct{}{}
		lines = append(lines, r.Line)
	}
	return lines
}

// LoadCoordinates reads a coordinate file.
func LoadCoordinates(spec Spec) (*CoordinateTable, error) {
	records, err := ReadRecords(spec)
	if err != nil {
		return nil, err
	}
	return NewCoordinateTable(spec.Path, records)
}

// NewCoordinateTable builds a table from records, header first. Every row
// must carry a parseable latitude and longitude.
func NewCoordinateTable(path string, records [][]string) (*CoordinateTable, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: no header row", ErrLoad, path)
	}
	idx, err := columnIndex(path, records[0], CoordinateColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]StationCoordinate, 0, len(records)-1)
	for r, rec := range records[1:] {
		lat, err := parseDegrees(cell(rec, idx[ColCoordLat]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: line %d: %s: %w", ErrLoad, path, r+2, ColCoordLat, err)
		}
		long, err := parseDegrees(cell(rec, idx[ColCoordLong]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: line %d: %s: %w", ErrLoad, path, r+2, ColCoordLong, err)
		}
		rows = append(rows, StationCoordinate{
			Line: cell(rec, idx[ColCoordLine]),
			Name: cell(rec, idx[ColCoordName]),
			Lat:  lat,
			Long: long,
		})
	}

	return &CoordinateTable{
		path:     path,
		rows:     rows,
		loadedAt: time.Now(),
	}, nil
}

func parseDegrees(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}
