package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// PassengerTable is a loaded passenger-flow file.
//
// The Year column is typed as int; every other column, measures included,
// is kept as the string read from the file. Measures are coerced later so a
// bad cell never fails the load.
type PassengerTable struct {
	path     string
	df       dataframe.DataFrame
	dropped  []string
	loadedAt time.Time
}

// Frame returns the underlying DataFrame. Gota operations return new frames,
// so callers may filter it freely.
func (t *PassengerTable) Frame() dataframe.DataFrame { return t.df }

// Len returns the number of data rows.
func (t *PassengerTable) Len() int { return t.df.Nrow() }

// Path returns the file the table was loaded from.
func (t *PassengerTable) Path() string { return t.path }

// Dropped returns the generated index columns removed at load.
func (t *PassengerTable) Dropped() []string { return t.dropped }

// LoadedAt returns when the file was read.
func (t *PassengerTable) LoadedAt() time.Time { return t.loadedAt }

// Columns returns the column names in file order.
func (t *PassengerTable) Columns() []string { return t.df.Names() }

// LoadPassengers reads a passenger file, drops generated index columns
// matching drop (blank headers are always dropped), and types the result.
func LoadPassengers(spec Spec, drop *regexp.Regexp) (*PassengerTable, error) {
	records, err := ReadRecords(spec)
	if err != nil {
		return nil, err
	}
	records, dropped := DropGeneratedColumns(records, drop)

	t, err := NewPassengerTable(spec.Path, records)
	if err != nil {
		return nil, err
	}
	t.dropped = dropped
	return t, nil
}

// NewPassengerTable builds a table from cleaned records, header first.
// A header with no data rows is a valid empty table.
func NewPassengerTable(path string, records [][]string) (*PassengerTable, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: no header row", ErrLoad, path)
	}
	header := records[0]
	idx, err := columnIndex(path, header, PassengerColumns)
	if err != nil {
		return nil, err
	}

	rows := records[1:]
	cols := make([]series.Series, 0, len(header))
	for c, name := range header {
		if idx[name] != c {
			continue // duplicate header, first one wins
		}

		if name == ColYear {
			years := make([]int, len(rows))
			for r, row := range rows {
				raw := strings.TrimSpace(cell(row, c))
				y, err := strconv.Atoi(raw)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: line %d: %s %q is not an integer", ErrLoad, path, r+2, ColYear, raw)
				}
				years[r] = y
			}
			cols = append(cols, series.New(years, series.Int, name))
			continue
		}

		values := make([]string, len(rows))
		for r, row := range rows {
			values[r] = cell(row, c)
		}
		cols = append(cols, series.New(values, series.String, name))
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, df.Err)
	}

	return &PassengerTable{
		path:     path,
		df:       df,
		loadedAt: time.Now(),
	}, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
