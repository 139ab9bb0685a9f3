package pipeline

import (
	"fmt"

	"github.com/leapstack-labs/metroflow/internal/dataset"
)

// Chart is a stacked bar series: incoming at the base, outgoing on top.
type Chart struct {
	Title    string    `json:"title"`
	Stations []string  `json:"stations"`
	Incoming []float64 `json:"incoming"`
	Outgoing []float64 `json:"outgoing"`
}

// Len returns the number of bars.
func (c Chart) Len() int { return len(c.Stations) }

// ChartTitle names the chart after the selection.
func ChartTitle(sel Selection) string {
	sel = sel.Normalize()
	return fmt.Sprintf("Passenger flow on line %s (%s, %s)", sel.Line, sel.Year, sel.Quarter)
}

// BuildChart sums the rows per station, stations in first-appearance order.
// A missing measure adds nothing to its station's bar.
func BuildChart(rows []dataset.PassengerRecord, sel Selection) Chart {
	c := Chart{
		Title:    ChartTitle(sel),
		Stations: []string{},
		Incoming: []float64{},
		Outgoing: []float64{},
	}

	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.NameOfStation]
		if !ok {
			i = len(c.Stations)
			index[r.NameOfStation] = i
			c.Stations = append(c.Stations, r.NameOfStation)
			c.Incoming = append(c.Incoming, 0)
			c.Outgoing = append(c.Outgoing, 0)
		}
		if r.HasIncoming() {
			c.Incoming[i] += r.IncomingPassengers
		}
		if r.HasOutgoing() {
			c.Outgoing[i] += r.OutgoingPassengers
		}
	}
	return c
}
