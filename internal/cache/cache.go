// Package cache maps normalized ISBNs to resolved metadata with a
// uniform TTL. There is no size bound or LRU: entry counts track
// ISBNs seen per scanned page, so TTL expiry is the only eviction.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"isbnscan/internal/metadata"
	"isbnscan/internal/store"
)

// DefaultTTL is how long a resolved entry stays servable.
const DefaultTTL = 24 * time.Hour

// Entry is the record serialized into the backing store. FetchedAt is
// unix milliseconds so the stored form is a plain JSON number.
type Entry struct {
	Data      metadata.BookMetadata `json:"data"`
	FetchedAt int64                 `json:"fetchedAt"`
}

// Cache wraps a Store with TTL semantics. Entries are structurally
// replaced on refresh, never mutated in place; expiry is checked
// lazily on read.
type Cache struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time
}

func New(s store.Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: s, ttl: ttl, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get returns the cached metadata for an ISBN, or absent when there is
// no entry, the entry has outlived the TTL, or the stored record does
// not decode. Dead entries are dropped on the way out, best effort.
func (c *Cache) Get(ctx context.Context, isbn string) (*metadata.BookMetadata, bool) {
	raw, ok, err := c.store.Get(ctx, isbn)
	if err != nil {
		log.Printf("cache read failed: isbn=%s err=%v", isbn, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Unexpected shape in the store is a miss, not a fault.
		_ = c.store.Delete(ctx, isbn)
		return nil, false
	}

	if c.now().Sub(time.UnixMilli(e.FetchedAt)) > c.ttl {
		_ = c.store.Delete(ctx, isbn)
		return nil, false
	}

	m := e.Data
	return &m, true
}

// Put unconditionally overwrites any existing entry, stamped with the
// current time.
func (c *Cache) Put(ctx context.Context, isbn string, m metadata.BookMetadata) error {
	raw, err := json.Marshal(Entry{Data: m, FetchedAt: c.now().UnixMilli()})
	if err != nil {
		return err
	}
	return c.store.Set(ctx, isbn, raw)
}

// Clear drops all entries.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}
