// Package dataset loads the passenger-flow and station-coordinate tables.
//
// Both tables come from flat files. The passenger table is held as a gota
// DataFrame so the pipeline can filter it without copying rows by hand; the
// coordinate table is small and kept as a plain slice in file order.
// Loaded tables are read-only: every filter produces a new derived value.
package dataset

import (
	"errors"
	"math"
)

// ErrLoad is returned (wrapped) for every failure to read or parse a dataset.
var ErrLoad = errors.New("dataset load failed")

// Passenger table columns.
const (
	ColLine     = "Line"
	ColStation  = "NameOfStation"
	ColYear     = "Year"
	ColQuarter  = "Quarter"
	ColIncoming = "IncomingPassengers"
	ColOutgoing = "OutgoingPassengers"
)

// Coordinate table columns, as exported in the source data.
const (
	ColCoordLine = "Линия"
	ColCoordName = "Название"
	ColCoordLat  = "lat"
	ColCoordLong = "long"
)

// PassengerColumns lists the columns every passenger file must carry.
var PassengerColumns = []string{ColLine, ColStation, ColYear, ColQuarter, ColIncoming, ColOutgoing}

// CoordinateColumns lists the columns every coordinate file must carry.
var CoordinateColumns = []string{ColCoordLine, ColCoordName, ColCoordLat, ColCoordLong}

// PassengerRecord is one row per (station, line, year, quarter).
// A measure that could not be coerced to a number is NaN.
type PassengerRecord struct {
	Line               string
	NameOfStation      string
	Year               int
	Quarter            string
	IncomingPassengers float64
	OutgoingPassengers float64
}

// HasIncoming reports whether IncomingPassengers holds a number.
func (r PassengerRecord) HasIncoming() bool { return !math.IsNaN(r.IncomingPassengers) }

// HasOutgoing reports whether OutgoingPassengers holds a number.
func (r PassengerRecord) HasOutgoing() bool { return !math.IsNaN(r.OutgoingPassengers) }

// StationCoordinate is one station position on a line.
type StationCoordinate struct {
	Line string
	Name string
	Lat  float64
	Long float64
}
