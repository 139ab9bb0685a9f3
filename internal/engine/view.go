package engine

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/metroflow/internal/geo"
	"github.com/leapstack-labs/metroflow/internal/pipeline"
)

// Snapshot is everything the dashboard shows for one selection.
//
// A dataset that fails to load does not fail the snapshot: its error is kept
// and the parts that depend on it are left empty.
type Snapshot struct {
	Selection pipeline.Selection
	Options   pipeline.Options
	// Result is nil when the passenger table could not be loaded.
	Result *pipeline.Result
	Layer  geo.Layer
	// Join is nil unless both tables loaded.
	Join *geo.JoinReport
	Map  MapView

	PassengerErr  error
	CoordinateErr error
}

// HasErrors returns true if either dataset failed to load.
func (s *Snapshot) HasErrors() bool {
	return s.PassengerErr != nil || s.CoordinateErr != nil
}

// Errors returns the load errors as messages.
func (s *Snapshot) Errors() []string {
	var out []string
	if s.PassengerErr != nil {
		out = append(out, fmt.Sprintf("Passenger data: %v", s.PassengerErr))
	}
	if s.CoordinateErr != nil {
		out = append(out, fmt.Sprintf("Station coordinates: %v", s.CoordinateErr))
	}
	return out
}

// Warnings returns the map and join warnings.
func (s *Snapshot) Warnings() []string {
	out := append([]string{}, s.Layer.Warnings...)
	if s.Join != nil {
		out = append(out, s.Join.Warnings()...)
	}
	return out
}

// Summary returns a short human-readable summary.
func (s *Snapshot) Summary() string {
	var parts []string
	if s.Result != nil {
		parts = append(parts, fmt.Sprintf("%d rows", s.Result.Displayed()))
		if s.Result.Fallback {
			parts = append(parts, "fallback")
		}
	}
	parts = append(parts, fmt.Sprintf("%d markers", len(s.Layer.Markers)))
	if s.HasErrors() {
		parts = append(parts, fmt.Sprintf("%d load errors", len(s.Errors())))
	}
	return strings.Join(parts, ", ")
}

// Snapshot runs the pipeline and builds the map layer for sel. The only
// error it returns is pipeline.ErrInvalidSelection.
func (e *Engine) Snapshot(sel pipeline.Selection) (*Snapshot, error) {
	sel = sel.Normalize()
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Selection: sel,
		Options:   pipeline.Options{Lines: []string{pipeline.AllLines}, Years: []string{pipeline.AllYears}, Quarters: []string{pipeline.AllQuarters}},
		Map:       e.mapView,
	}

	passengers, err := e.source.Passengers()
	if err != nil {
		snap.PassengerErr = err
	} else {
		if snap.Options, err = pipeline.BuildOptions(passengers.Frame()); err != nil {
			snap.PassengerErr = err
		} else if snap.Result, err = pipeline.Run(passengers.Frame(), sel); err != nil {
			snap.PassengerErr = err
		}
	}

	coords, err := e.source.Coordinates()
	if err != nil {
		snap.CoordinateErr = err
		snap.Layer = geo.Layer{Line: sel.Line, Markers: []geo.Marker{}, Paths: []geo.Path{}}
	} else {
		snap.Layer = e.mapper.Build(coords.Rows(), sel.Line)
	}

	if !snap.HasErrors() {
		report := e.mapper.Join(snap.Options.Lines[1:], coords.Lines())
		snap.Join = &report
	}

	e.logger.Debug("snapshot built", "selection", sel.String(), "summary", snap.Summary())
	return snap, nil
}

// Summary runs the pipeline only.
func (e *Engine) Summary(sel pipeline.Selection) (*pipeline.Result, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	passengers, err := e.source.Passengers()
	if err != nil {
		return nil, err
	}
	return pipeline.Run(passengers.Frame(), sel)
}

// Options returns the selector values of the passenger table.
func (e *Engine) Options() (pipeline.Options, error) {
	passengers, err := e.source.Passengers()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.BuildOptions(passengers.Frame())
}

// Layer builds the map layer for line.
func (e *Engine) Layer(line string) (geo.Layer, error) {
	coords, err := e.source.Coordinates()
	if err != nil {
		return geo.Layer{}, err
	}
	return e.mapper.Build(coords.Rows(), line), nil
}

// Report loads both tables and compares their line names.
func (e *Engine) Report() (geo.JoinReport, error) {
	opts, err := e.Options()
	if err != nil {
		return geo.JoinReport{}, err
	}
	coords, err := e.source.Coordinates()
	if err != nil {
		return geo.JoinReport{}, err
	}
	return e.mapper.Join(opts.Lines[1:], coords.Lines()), nil
}
