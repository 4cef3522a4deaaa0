package metadata

import "context"

// Source is one external catalog in the lookup chain. Lookup returns
// (nil, nil) when the catalog has no record for the ISBN; errors are
// downgraded to misses by the resolver, never propagated.
type Source interface {
	Name() string
	Lookup(ctx context.Context, isbn string) (*BookMetadata, error)
}

// Cache is the expiring metadata store consulted before any network
// call. Get treats expired or corrupt entries as absent.
type Cache interface {
	Get(ctx context.Context, isbn string) (*BookMetadata, bool)
	Put(ctx context.Context, isbn string, m BookMetadata) error
}
