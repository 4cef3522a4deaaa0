package metadata

import (
	"context"
	"log"
)

// Resolver walks the cache and then each source in order until one
// returns a record. Adding a catalog is a list append, not new control
// flow.
type Resolver struct {
	cache   Cache
	sources []Source
}

func NewResolver(cache Cache, sources ...Source) *Resolver {
	return &Resolver{cache: cache, sources: sources}
}

// Resolve returns metadata for a normalized ISBN. A cache hit skips
// the network entirely. Source failures (transport, bad body, zero
// results) are logged and treated as misses so the chain continues;
// if every source misses, the source-none sentinel is returned and
// deliberately not cached.
func (r *Resolver) Resolve(ctx context.Context, isbn string) BookMetadata {
	if m, ok := r.cache.Get(ctx, isbn); ok {
		return *m
	}

	for _, src := range r.sources {
		m, err := src.Lookup(ctx, isbn)
		if err != nil {
			log.Printf("metadata lookup failed: source=%s isbn=%s err=%v", src.Name(), isbn, err)
			continue
		}
		if m == nil {
			continue
		}
		m.ISBN = isbn
		m.EnsureDefaults()
		if err := r.cache.Put(ctx, isbn, *m); err != nil {
			log.Printf("metadata cache write failed: isbn=%s err=%v", isbn, err)
		}
		return *m
	}

	return Unavailable(isbn)
}
