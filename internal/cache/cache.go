// Package cache provides keyed memoization of assessment results. The cache
// holds serialized result payloads; callers own serialization so any backend
// can store any result type.
package cache

import "context"

// ResultCache is the storage contract for memoized assessment results.
// Implementations are safe for concurrent use. Get reports a miss with
// found=false and a nil error; errors are reserved for backend failures.
type ResultCache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}
