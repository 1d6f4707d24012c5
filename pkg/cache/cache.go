// Package cache stores rendered SVG artifacts keyed by a hash of the DOT
// text they were rendered from, so repeated
// visualize runs of an unchanged graph skip Graphviz entirely.
//
// Alignment results are never cached: reads are cheap to re-align relative
// to their variability, and persistent alignment indexes are out of scope.
package cache

import (
	"context"
	"time"
)

// Cache is the minimal artifact store used by the CLI.
type Cache interface {
	// Get returns the cached data for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}
