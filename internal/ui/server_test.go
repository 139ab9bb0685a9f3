package ui

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metroflow/internal/testutil"
	"github.com/leapstack-labs/metroflow/internal/ui/features"
	"github.com/leapstack-labs/metroflow/internal/ui/notifier"
)

func newTestServer(t *testing.T, fixture *features.TestFixture, mutate func(*Config)) *Server {
	t.Helper()
	cfg := Config{
		Engine:        fixture.Engine,
		TableLimit:    500,
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        testutil.NewTestLogger(t),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewServer(cfg)
}

// startServer runs s on a random port until the test ends.
func startServer(t *testing.T, s *Server) <-chan error {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.serve(ctx, ln) }()
	t.Cleanup(cancel)
	return errc
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Routes(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	handler, err := newTestServer(t, fixture, nil).Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/", http.StatusOK, "<!doctype html>"},
		{"/healthz", http.StatusOK, `"status":"ok"`},
		{"/api/summary", http.StatusOK, `"total_rows":4`},
		{"/api/summary?year=abc", http.StatusBadRequest, "invalid selection"},
		{"/api/stations", http.StatusOK, `"markers"`},
		{"/static/dashboard.js", http.StatusOK, "dashboard-data"},
		{"/static/dashboard.css", http.StatusOK, "#station-map"},
		{"/static/missing.js", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body, tt.wantBody)
		})
	}
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	s := newTestServer(t, fixture, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz") //nolint:noctx
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_WatchInvalidatesChangedFile(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	s := newTestServer(t, fixture, func(c *Config) { c.Watch = true })

	// Warm the cache.
	table, err := fixture.Engine.Passengers()
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())

	events := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(events)
	startServer(t, s)
	time.Sleep(100 * time.Millisecond) // let the watcher register

	fixture.WritePassengers(`Line;NameOfStation;Year;Quarter;IncomingPassengers;OutgoingPassengers
Кольцевая линия;Курская;2023;I квартал;10;20
`)

	select {
	case ev := <-events:
		assert.Equal(t, notifier.ReasonFileChanged, ev.Reason)
		assert.Equal(t, fixture.PassengersPath, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("no change event")
	}

	table, err = fixture.Engine.Passengers()
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len(), "the changed file should be reloaded")
}

func TestServer_RefreshSchedule(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	s := newTestServer(t, fixture, func(c *Config) { c.RefreshSchedule = "@every 1s" })

	events := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(events)
	startServer(t, s)

	select {
	case ev := <-events:
		assert.Equal(t, notifier.ReasonScheduled, ev.Reason)
	case <-time.After(3 * time.Second):
		t.Fatal("no scheduled refresh")
	}
}

func TestServer_InvalidSchedule(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	s := newTestServer(t, fixture, func(c *Config) { c.RefreshSchedule = "whenever" })

	errc := startServer(t, s)
	select {
	case err := <-errc:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid refresh schedule")
	case <-time.After(6 * time.Second):
		t.Fatal("server kept running with an invalid schedule")
	}
}
