package pipeline

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/leapstack-labs/metroflow/internal/dataset"
)

// Rows converts a passenger frame to records with coerced measures.
func Rows(df dataframe.DataFrame) ([]dataset.PassengerRecord, error) {
	n := df.Nrow()
	if n == 0 {
		return nil, nil
	}

	years, err := df.Col(dataset.ColYear).Int()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dataset.ColYear, err)
	}
	lines := df.Col(dataset.ColLine).Records()
	stations := df.Col(dataset.ColStation).Records()
	quarters := df.Col(dataset.ColQuarter).Records()
	incoming := Coerce(df.Col(dataset.ColIncoming))
	outgoing := Coerce(df.Col(dataset.ColOutgoing))

	rows := make([]dataset.PassengerRecord, n)
	for i := range rows {
		rows[i] = dataset.PassengerRecord{
			Line:               lines[i],
			NameOfStation:      stations[i],
			Year:               years[i],
			Quarter:            quarters[i],
			IncomingPassengers: incoming[i],
			OutgoingPassengers: outgoing[i],
		}
	}
	return rows, nil
}
