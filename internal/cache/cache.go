// Package cache holds the facet cache: the distinct location and club lists
// served by the search endpoints. Entries are small JSON string lists.
//
// Every entry is stored under its key suffixed with the cache generation.
// Invalidate bumps the generation instead of deleting entries, and Set writes
// under the generation the caller saw before loading from storage. A list
// loaded before a write commits therefore lands under a generation nobody
// reads any more, and simply expires.
package cache

import (
	"context"
	"strconv"
	"time"
)

// Keys of the cached facet lists.
const (
	KeyLocations = "facets:locations"
	KeyClubs     = "facets:clubs"
)

// KeyGeneration holds the current generation counter.
const KeyGeneration = "facets:gen"

// Facets is a read-through cache for facet lists.
type Facets interface {
	// Get returns the cached list for key at the current generation, and that
	// generation. ok is false on a miss; gen is valid on a miss too and must
	// be passed to Set when filling it.
	Get(ctx context.Context, key string) (values []string, gen int64, ok bool, err error)

	// Set stores values under key at generation gen for the cache's TTL.
	Set(ctx context.Context, key string, gen int64, values []string) error

	// Invalidate moves the cache to a new generation, hiding every list
	// stored so far.
	Invalidate(ctx context.Context) error
}

// DefaultTTL applies when a cache is built with a non-positive TTL.
const DefaultTTL = 5 * time.Minute

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

// VersionedKey is the storage key of key at generation gen.
func VersionedKey(key string, gen int64) string {
	return key + ":" + strconv.FormatInt(gen, 10)
}
