package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/metroflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReportsDebouncedChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "traffic.csv")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(target, []byte("a\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{target}, testutil.NewTestLogger(t), func(p string) {
			changed <- p
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o600))
	for i := range 3 {
		require.NoError(t, os.WriteFile(target, []byte{'a' + byte(i), '\n'}, 0o600))
	}

	select {
	case p := <-changed:
		assert.Equal(t, target, p)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	// The burst collapses into one notification.
	select {
	case p := <-changed:
		t.Fatalf("unexpected second notification for %s", p)
	case <-time.After(3 * WatchDebounce):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), []string{filepath.Join(t.TempDir(), "gone", "x.csv")}, nil, func(string) {})
	require.Error(t, err)
}
