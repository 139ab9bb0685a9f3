package pipeline

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/leapstack-labs/metroflow/internal/dataset"
)

// FallbackMessage explains why the full table is shown.
const FallbackMessage = "No data for the selected filters. Showing the full dataset."

// Result is the outcome of one run.
//
// When the filters match at least one row, Frame and Rows hold the matches
// and the totals and chart are computed over them. Otherwise Fallback is set,
// Frame and Rows hold the full table, and the totals and chart are computed
// over it. The two cases are told apart only by Matched.
type Result struct {
	Selection Selection
	Frame     dataframe.DataFrame
	Rows      []dataset.PassengerRecord
	Incoming  Total
	Outgoing  Total
	Chart     Chart
	// Matched is the number of rows the filters kept.
	Matched int
	// TotalRows is the size of the full table.
	TotalRows int
	Fallback  bool
	Message   string
}

// Run filters full by sel and aggregates the displayed rows.
// An empty full table is not an error: it yields an empty fallback result.
func Run(full dataframe.DataFrame, sel Selection) (*Result, error) {
	sel = sel.Normalize()

	filtered, err := Filter(full, sel)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Selection: sel,
		Frame:     filtered,
		Matched:   filtered.Nrow(),
		TotalRows: full.Nrow(),
	}
	if res.Matched == 0 {
		res.Fallback = true
		res.Message = FallbackMessage
		res.Frame = full
	}

	res.Rows, err = Rows(res.Frame)
	if err != nil {
		return nil, err
	}

	incoming := make([]float64, len(res.Rows))
	outgoing := make([]float64, len(res.Rows))
	for i, r := range res.Rows {
		incoming[i] = r.IncomingPassengers
		outgoing[i] = r.OutgoingPassengers
	}
	res.Incoming = Sum(incoming)
	res.Outgoing = Sum(outgoing)
	res.Chart = BuildChart(res.Rows, sel)
	return res, nil
}

// Displayed returns the number of rows shown.
func (r *Result) Displayed() int { return len(r.Rows) }
