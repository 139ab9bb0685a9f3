package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
)

// Coerce converts every value of s to a number. Values that do not parse as
// a finite number become NaN. It never fails and keeps one entry per row.
func Coerce(s series.Series) []float64 {
	values := s.Float()
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			// gota does not trim; give padded cells a second chance.
			values[i] = parseMeasure(s.Elem(i).String())
		case math.IsInf(v, 0):
			values[i] = math.NaN()
		}
	}
	return values
}

func parseMeasure(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// Total is the sum of one measure column.
type Total struct {
	Sum     float64 `json:"sum"`
	Counted int     `json:"counted"`
	Missing int     `json:"missing"`
}

// Sum adds the non-missing values.
func Sum(values []float64) Total {
	var t Total
	for _, v := range values {
		if math.IsNaN(v) {
			t.Missing++
			continue
		}
		t.Sum += v
		t.Counted++
	}
	return t
}

// String formats the sum with thousands separators.
func (t Total) String() string { return FormatCount(t.Sum) }
