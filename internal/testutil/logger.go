// Package testutil provides test utilities for structured logging.
package testutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// Entry is one captured log record.
type Entry struct {
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Attrs   map[string]any `json:"-"`
}

// LogCapture collects JSON log records for assertions.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewCaptureLogger returns a debug-level logger whose records can be
// inspected through the returned LogCapture.
func NewCaptureLogger() (*slog.Logger, *LogCapture) {
	c := &LogCapture{}
	return slog.New(slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})), c
}

func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Entries decodes every record written so far.
func (c *LogCapture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Entry
	dec := json.NewDecoder(bytes.NewReader(c.buf.Bytes()))
	for dec.More() {
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			break
		}
		e := Entry{Attrs: raw}
		e.Level, _ = raw["level"].(string)
		e.Message, _ = raw["msg"].(string)
		out = append(out, e)
	}
	return out
}

// Find returns the first record with the given message.
func (c *LogCapture) Find(msg string) (Entry, bool) {
	for _, e := range c.Entries() {
		if e.Message == msg {
			return e, true
		}
	}
	return Entry{}, false
}
