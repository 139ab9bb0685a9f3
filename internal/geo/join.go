package geo

import "fmt"

// JoinReport lists line names that do not match between the two tables.
// Lines are joined by exact string equality.
type JoinReport struct {
	PassengerLines  []string `json:"passenger_lines"`
	CoordinateLines []string `json:"coordinate_lines"`
	// WithoutCoordinates are passenger lines with no coordinate rows.
	WithoutCoordinates []string `json:"without_coordinates"`
	// WithoutPassengers are coordinate lines with no passenger rows.
	WithoutPassengers []string `json:"without_passengers"`
	// WithoutColor are lines from either table with no color entry.
	WithoutColor []string `json:"without_color"`
}

// Join compares the distinct line names of both tables.
func (m *Mapper) Join(passengerLines, coordinateLines []string) JoinReport {
	r := JoinReport{
		PassengerLines:     passengerLines,
		CoordinateLines:    coordinateLines,
		WithoutCoordinates: []string{},
		WithoutPassengers:  []string{},
		WithoutColor:       []string{},
	}

	inPassengers := toSet(passengerLines)
	inCoordinates := toSet(coordinateLines)

	for _, l := range passengerLines {
		if _, ok := inCoordinates[l]; !ok {
			r.WithoutCoordinates = append(r.WithoutCoordinates, l)
		}
	}
	for _, l := range coordinateLines {
		if _, ok := inPassengers[l]; !ok {
			r.WithoutPassengers = append(r.WithoutPassengers, l)
		}
	}

	seen := make(map[string]struct{})
	for _, l := range append(append([]string{}, passengerLines...), coordinateLines...) {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		if !m.colors.Has(l) {
			r.WithoutColor = append(r.WithoutColor, l)
		}
	}
	return r
}

// OK reports whether every line joins and has a color.
func (r JoinReport) OK() bool {
	return len(r.WithoutCoordinates) == 0 && len(r.WithoutPassengers) == 0 && len(r.WithoutColor) == 0
}

// Warnings renders the mismatches as sentences, one per line name.
func (r JoinReport) Warnings() []string {
	var out []string
	for _, l := range r.WithoutCoordinates {
		out = append(out, fmt.Sprintf("Line %q has passenger data but no station coordinates.", l))
	}
	for _, l := range r.WithoutPassengers {
		out = append(out, fmt.Sprintf("Line %q has station coordinates but no passenger data.", l))
	}
	for _, l := range r.WithoutColor {
		out = append(out, fmt.Sprintf("Line %q has no color; drawn in the default color.", l))
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
