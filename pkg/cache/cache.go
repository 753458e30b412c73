// Package cache stores rendered diagram artifacts keyed by scene script
// content.
//
// Rendering a timeline is deterministic: the same script, configuration and
// output format always produce the same bytes. The cache exploits that by
// keying artifacts on a hash of those inputs, so re-rendering an unchanged
// script is a lookup. Backends: a file cache for CLI usage, a Redis cache
// for the HTTP server, and a null cache to disable caching.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the artifact lifetime used when callers pass no TTL.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented cache with TTL support.
// A zero TTL stores the entry without expiration.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys for the render pipeline.
type Keyer interface {
	// ArtifactKey keys one rendered artifact: script content plus the
	// configuration it was rendered under, per output format.
	ArtifactKey(script, cfg []byte, format string) string
}

// DefaultKeyer derives keys by hashing the render inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ArtifactKey returns "artifact:<format>:<sha256(script|cfg)>".
func (k *DefaultKeyer) ArtifactKey(script, cfg []byte, format string) string {
	return hashKey("artifact:"+format, script, cfg)
}
