package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const passengersCSV = `;Unnamed: 0;Line;NameOfStation;Year;Quarter;IncomingPassengers;OutgoingPassengers
0;0;Сокольническая линия;Бульвар Рокоссовского;2021;I квартал;1200;1100
1;1;Сокольническая линия;Черкизовская;2021;I квартал;N/A;900
2;2;Кольцевая линия;Курская;2022;II квартал;3000;2900
`

const coordinatesCSV = `Линия,Название,lat,long
Кольцевая линия,Курская,55.758,37.659
Кольцевая линия,Комсомольская,55.775,37.654
Кольцевая линия,Проспект Мира,55.779,37.633
Сокольническая линия,Бульвар Рокоссовского,55.814,37.734
`

// writeFile writes content to name inside a fresh temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
