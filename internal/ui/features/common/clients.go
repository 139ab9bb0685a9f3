package common

import (
	"time"

	"github.com/bluele/gcache"

	"github.com/leapstack-labs/metroflow/internal/pipeline"
)

// Registry bounds. A client whose entry was evicted falls back to the
// selection in its session cookie.
const (
	DefaultClientLimit = 1024
	DefaultClientTTL   = 24 * time.Hour
)

// Clients remembers the latest selection of each open dashboard, so that a
// long-lived update stream re-renders what the browser currently shows
// rather than what it showed when the stream opened.
//
// Entries are bounded by an LRU of limit clients and expire ttl after their
// last Set.
type Clients struct {
	store gcache.Cache
}

// NewClients creates an empty registry. A non-positive limit or ttl takes
// the default.
func NewClients(limit int, ttl time.Duration) *Clients {
	if limit <= 0 {
		limit = DefaultClientLimit
	}
	if ttl <= 0 {
		ttl = DefaultClientTTL
	}
	return &Clients{store: gcache.New(limit).LRU().Expiration(ttl).Build()}
}

// Set records the selection of client id.
func (c *Clients) Set(id string, sel pipeline.Selection) {
	_ = c.store.Set(id, sel.Normalize())
}

// Get returns the selection of client id.
func (c *Clients) Get(id string) (pipeline.Selection, bool) {
	v, err := c.store.GetIFPresent(id)
	if err != nil {
		return pipeline.Selection{}, false
	}
	sel, ok := v.(pipeline.Selection)
	return sel, ok
}

// Forget drops client id.
func (c *Clients) Forget(id string) {
	c.store.Remove(id)
}

// Len returns the number of live clients.
func (c *Clients) Len() int {
	return c.store.Len(true)
}
