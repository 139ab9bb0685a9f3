// Package pipeline filters the passenger table by line, year and quarter and
// aggregates the two passenger counts over the result.
//
// A run never mutates the source table. When the filters match nothing the
// result falls back to the full table, so callers always have something to
// display.
package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Selection sentinels. Each one means "no constraint" for its field.
const (
	AllLines    = "All lines"
	AllYears    = "All years"
	AllQuarters = "All quarters"
)

// ErrInvalidSelection is returned (wrapped) when a selection cannot be applied.
var ErrInvalidSelection = errors.New("invalid selection")

// Selection is the user's choice for the three filters. Each field holds a
// concrete value or its sentinel.
type Selection struct {
	Line    string `json:"line"`
	Year    string `json:"year"`
	Quarter string `json:"quarter"`
}

// DefaultSelection selects everything.
func DefaultSelection() Selection {
	return Selection{Line: AllLines, Year: AllYears, Quarter: AllQuarters}
}

// Normalize trims the fields and maps empty ones to their sentinel.
func (s Selection) Normalize() Selection {
	s.Line = orSentinel(s.Line, AllLines)
	s.Year = orSentinel(s.Year, AllYears)
	s.Quarter = orSentinel(s.Quarter, AllQuarters)
	return s
}

func orSentinel(v, sentinel string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return sentinel
	}
	return v
}

// IsDefault reports whether no filter is active.
func (s Selection) IsDefault() bool {
	return s.Normalize() == DefaultSelection()
}

// HasLine reports whether a concrete line is selected.
func (s Selection) HasLine() bool { return s.Normalize().Line != AllLines }

// YearValue returns the selected year. ok is false for the sentinel.
func (s Selection) YearValue() (year int, ok bool, err error) {
	raw := s.Normalize().Year
	if raw == AllYears {
		return 0, false, nil
	}
	year, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: year %q is not an integer", ErrInvalidSelection, raw)
	}
	return year, true, nil
}

// Validate checks that the selection can be applied.
func (s Selection) Validate() error {
	_, _, err := s.YearValue()
	return err
}

// String renders the selection for logs and titles.
func (s Selection) String() string {
	n := s.Normalize()
	return fmt.Sprintf("%s / %s / %s", n.Line, n.Year, n.Quarter)
}
