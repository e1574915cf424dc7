// internal/model/loader.go
package model

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	apperrors "clinovia-inference/internal/common/errors"
	"clinovia-inference/internal/common/logger"
	"clinovia-inference/internal/common/metrics"
	"clinovia-inference/internal/preprocess"
)

// Loader fetches and parses artifacts, memoizing the parsed form per key so
// repeated assessments do not re-read the store. The memo is bounded; cold
// keys are re-fetched after eviction.
type Loader struct {
	store  Store
	cache  *lru.Cache[string, interface{}]
	logger logger.Logger

	// Serializes store fetches so concurrent cold requests for the same
	// artifact do not hit the store more than necessary.
	mu sync.Mutex
}

// NewLoader creates a loader memoizing at most maxCached parsed artifacts.
func NewLoader(store Store, maxCached int, log logger.Logger) (*Loader, error) {
	cache, err := lru.New[string, interface{}](maxCached)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact cache: %w", err)
	}
	return &Loader{store: store, cache: cache, logger: log}, nil
}

// Model loads a classifier artifact.
func (l *Loader) Model(ctx context.Context, key string) (Classifier, error) {
	artifact, err := l.load(ctx, key)
	if err != nil {
		return nil, err
	}
	clf, ok := artifact.(Classifier)
	if !ok {
		return nil, apperrors.NewArtifactCorruptedError(key,
			fmt.Errorf("artifact is %T, not a classifier", artifact))
	}
	return clf, nil
}

// Scaler loads a fitted scaler artifact.
func (l *Loader) Scaler(ctx context.Context, key string) (preprocess.Scaler, error) {
	artifact, err := l.load(ctx, key)
	if err != nil {
		return nil, err
	}
	scaler, ok := artifact.(preprocess.Scaler)
	if !ok {
		return nil, apperrors.NewArtifactCorruptedError(key,
			fmt.Errorf("artifact is %T, not a scaler", artifact))
	}
	return scaler, nil
}

func (l *Loader) load(ctx context.Context, key string) (interface{}, error) {
	if artifact, found := l.cache.Get(key); found {
		metrics.ModelCacheHits.WithLabelValues(key).Inc()
		return artifact, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check under the lock; another goroutine may have loaded it.
	if artifact, found := l.cache.Get(key); found {
		metrics.ModelCacheHits.WithLabelValues(key).Inc()
		return artifact, nil
	}

	data, err := l.store.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	artifact, err := ParseArtifact(key, data)
	if err != nil {
		return nil, err
	}

	metrics.ModelLoads.WithLabelValues(key).Inc()
	l.logger.Info("Loaded model artifact", map[string]interface{}{
		"artifact_key": key,
		"size_bytes":   len(data),
	})

	l.cache.Add(key, artifact)
	return artifact, nil
}

// Evict removes a single artifact from the memo, forcing a reload on next
// use. Used when an artifact is republished under the same key.
func (l *Loader) Evict(key string) {
	l.cache.Remove(key)
}
