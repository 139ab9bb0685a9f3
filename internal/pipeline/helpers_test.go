package pipeline

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/stretchr/testify/require"
)

var header = []string{"Line", "NameOfStation", "Year", "Quarter", "IncomingPassengers", "OutgoingPassengers"}

// frame builds a passenger frame from data rows.
func frame(t *testing.T, rows ...[]string) dataframe.DataFrame {
	t.Helper()
	records := append([][]string{header}, rows...)
	table, err := dataset.NewPassengerTable("test.csv", records)
	require.NoError(t, err)
	return table.Frame()
}

// sampleFrame covers two lines, two years and two quarters.
func sampleFrame(t *testing.T) dataframe.DataFrame {
	t.Helper()
	return frame(t,
		[]string{"Сокольническая линия", "Черкизовская", "2021", "I квартал", "1000", "900"},
		[]string{"Сокольническая линия", "Черкизовская", "2021", "II квартал", "1100", "N/A"},
		[]string{"Сокольническая линия", "Сокольники", "2022", "I квартал", "700", "650"},
		[]string{"Кольцевая линия", "Курская", "2021", "I квартал", "3000", "2900"},
		[]string{"Кольцевая линия", "Курская", "2022", "II квартал", "", "3100"},
		[]string{"Кольцевая линия", "Комсомольская", "2022", "II квартал", "5000", "4800"},
	)
}
