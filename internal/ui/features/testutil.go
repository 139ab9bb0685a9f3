// Package features provides shared test utilities for UI feature tests.
package features

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metroflow/internal/dataset"
	"github.com/leapstack-labs/metroflow/internal/engine"
	"github.com/leapstack-labs/metroflow/internal/testutil"
	"github.com/leapstack-labs/metroflow/internal/ui/features/common"
	"github.com/leapstack-labs/metroflow/internal/ui/notifier"
)

// PassengersCSV is the default passenger file of a fixture.
const PassengersCSV = `;Unnamed: 0;Line;NameOfStation;Year;Quarter;IncomingPassengers;OutgoingPassengers
0;0;Сокольническая линия;Бульвар Рокоссовского;2021;I квартал;1200;1100
1;1;Сокольническая линия;Черкизовская;2021;I квартал;N/A;900
2;2;Кольцевая линия;Курская;2022;II квартал;3000;2900
3;3;Кольцевая линия;Комсомольская;2022;II квартал;2500;2400
`

// CoordinatesCSV is the default coordinate file of a fixture.
const CoordinatesCSV = `Линия,Название,lat,long
Кольцевая линия,Курская,55.758,37.659
Кольцевая линия,Комсомольская,55.775,37.654
Кольцевая линия,Проспект Мира,55.779,37.633
Сокольническая линия,Бульвар Рокоссовского,55.814,37.734
Сокольническая линия,Черкизовская,55.802,37.744
`

// TestData overrides the fixture's file contents. Empty fields use the
// defaults; set Missing to leave a file out entirely.
type TestData struct {
	Passengers         string
	Coordinates        string
	MissingPassengers  bool
	MissingCoordinates bool
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Engine       *engine.Engine
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Clients      *common.Clients

	PassengersPath  string
	CoordinatesPath string

	t *testing.T
}

// SetupTestFixture writes the data files to a temp directory and builds an
// engine over them.
func SetupTestFixture(t *testing.T, data ...TestData) *TestFixture {
	t.Helper()

	var d TestData
	if len(data) > 0 {
		d = data[0]
	}
	if d.Passengers == "" {
		d.Passengers = PassengersCSV
	}
	if d.Coordinates == "" {
		d.Coordinates = CoordinatesCSV
	}

	tmpDir := t.TempDir()
	f := &TestFixture{
		Notifier:        notifier.New(),
		SessionStore:    sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!")),
		Clients:         common.NewClients(common.DefaultClientLimit, common.DefaultClientTTL),
		PassengersPath:  filepath.Join(tmpDir, "metro_traffic.csv"),
		CoordinatesPath: filepath.Join(tmpDir, "moscow_underground_coords.csv"),
		t:               t,
	}
	if !d.MissingPassengers {
		f.WritePassengers(d.Passengers)
	}
	if !d.MissingCoordinates {
		f.WriteCoordinates(d.Coordinates)
	}

	eng, err := engine.New(engine.Config{
		Passengers:  dataset.Spec{Path: f.PassengersPath, Delimiter: ';'},
		Coordinates: dataset.Spec{Path: f.CoordinatesPath, Delimiter: ','},
		Cache:       dataset.CacheConfig{Size: 4},
		Logger:      testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	f.Engine = eng

	return f
}

// WritePassengers replaces the passenger file. The engine still serves the
// cached table until the path is invalidated.
func (f *TestFixture) WritePassengers(content string) {
	f.t.Helper()
	require.NoError(f.t, os.WriteFile(f.PassengersPath, []byte(content), 0600))
}

// WriteCoordinates replaces the coordinate file.
func (f *TestFixture) WriteCoordinates(content string) {
	f.t.Helper()
	require.NoError(f.t, os.WriteFile(f.CoordinatesPath, []byte(content), 0600))
}
