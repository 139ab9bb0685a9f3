package pipeline

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/leapstack-labs/metroflow/internal/dataset"
)

// Options are the values offered by the three selectors, sentinel first.
type Options struct {
	Lines    []string `json:"lines"`
	Years    []string `json:"years"`
	Quarters []string `json:"quarters"`
}

// BuildOptions collects the distinct values of the full table. Lines and
// quarters keep first-appearance order; years are sorted ascending.
func BuildOptions(df dataframe.DataFrame) (Options, error) {
	opts := Options{
		Lines:    []string{AllLines},
		Years:    []string{AllYears},
		Quarters: []string{AllQuarters},
	}
	if df.Nrow() == 0 {
		return opts, nil
	}

	years, err := df.Col(dataset.ColYear).Int()
	if err != nil {
		return opts, fmt.Errorf("read %s: %w", dataset.ColYear, err)
	}
	years = distinct(years)
	slices.Sort(years)
	for _, y := range years {
		opts.Years = append(opts.Years, strconv.Itoa(y))
	}

	opts.Lines = append(opts.Lines, distinct(df.Col(dataset.ColLine).Records())...)
	opts.Quarters = append(opts.Quarters, distinct(df.Col(dataset.ColQuarter).Records())...)
	return opts, nil
}

// Contains reports whether every field of sel is one of the offered values.
func (o Options) Contains(sel Selection) bool {
	sel = sel.Normalize()
	return slices.Contains(o.Lines, sel.Line) &&
		slices.Contains(o.Years, sel.Year) &&
		slices.Contains(o.Quarters, sel.Quarter)
}

// distinct keeps the first occurrence of each value.
func distinct[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
