// Package scan owns one page's scanning session: which ISBNs have
// been detected so far and the resolution of fresh ones.
package scan

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"isbnscan/internal/isbn"
	"isbnscan/internal/metadata"
)

// ErrScanInProgress is returned when a scan trigger arrives while one
// is already running. The new trigger is dropped, not queued.
var ErrScanInProgress = errors.New("scan already in progress")

const defaultWorkers = 4

// Resolver is what a session needs from the metadata pipeline.
type Resolver interface {
	Resolve(ctx context.Context, isbn string) metadata.BookMetadata
}

// Result pairs a detected ISBN with whatever the chain resolved for it.
type Result struct {
	ISBN      string                `json:"isbn"`
	Formatted string                `json:"formatted"`
	SearchURL string                `json:"search_url"`
	Book      metadata.BookMetadata `json:"book"`
}

// Session holds the set of ISBNs detected so far. The set only grows
// between resets; Reset abandons prior detections wholesale.
type Session struct {
	resolver Resolver
	extract  func(string) []string
	workers  int

	mu       sync.Mutex
	scanning bool
	detected map[string]bool
	order    []string
}

func NewSession(resolver Resolver) *Session {
	return &Session{
		resolver: resolver,
		extract:  isbn.Extract,
		workers:  defaultWorkers,
		detected: make(map[string]bool),
	}
}

// Scan extracts ISBNs from text and resolves metadata for those not
// seen in this session yet, in first-detection order. Fresh ISBNs are
// resolved concurrently; they share no state but the cache, and cache
// writes are idempotent per key.
//
// With reset true the detected set is cleared first, so the whole page
// is reported again. The clear happens inside the reentrancy guard: a
// trigger that loses to an in-progress scan is dropped wholesale and
// must not touch that scan's detections. ErrScanInProgress is the only
// error returned.
func (s *Session) Scan(ctx context.Context, text string, reset bool) ([]Result, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	s.scanning = true
	if reset {
		s.detected = make(map[string]bool)
		s.order = nil
	}

	var fresh []string
	for _, id := range s.extract(text) {
		if s.detected[id] {
			continue
		}
		s.detected[id] = true
		s.order = append(s.order, id)
		fresh = append(fresh, id)
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()

	results := make([]Result, len(fresh))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range fresh {
		g.Go(func() error {
			results[i] = Result{
				ISBN:      id,
				Formatted: isbn.Format(id),
				SearchURL: isbn.SearchURL(id),
				Book:      s.resolver.Resolve(gctx, id),
			}
			return nil
		})
	}
	// Workers never return errors; the resolver downgrades failures to
	// the sentinel.
	_ = g.Wait()

	return results, nil
}

// Reset clears the detected set so the next Scan reports everything
// on the page again.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detected = make(map[string]bool)
	s.order = nil
}

// Detected returns the ISBNs seen so far, in first-detection order.
func (s *Session) Detected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
