// Package cache memoises analysis results and surrogate predictions.
//
// Three backends implement [Cache]:
//   - [FileCache] stores entries as JSON files under a directory (CLI default)
//   - [RedisCache] shares entries between service replicas
//   - [NullCache] disables caching
//
// Keys come from a [Keyer], so that CLI and API agree on the layout of the
// key space. Analysis results are keyed by the SHA-256 of the canonical model
// JSON; a model that changes in any coefficient gets a different key.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind. Analyses are pure functions of the model, so
// they live long; predictions depend on a model file that may be retrained.
const (
	TTLResult     = 7 * 24 * time.Hour
	TTLPrediction = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
