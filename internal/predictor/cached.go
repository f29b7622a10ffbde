// internal/predictor/cached.go
package predictor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SyedDaiam9101/success-detector/internal/cache"
	"github.com/SyedDaiam9101/success-detector/internal/imaging"
	"github.com/SyedDaiam9101/success-detector/internal/metrics"
)

// OutcomeStore is the subset of *cache.Cache used by Cached.
type OutcomeStore interface {
	GetOutcome(ctx context.Context, key string) (success, found bool, err error)
	SetOutcome(ctx context.Context, key string, success bool, ttl time.Duration) error
	Close() error
}

var _ OutcomeStore = (*cache.Cache)(nil)

// Cached serves repeated (frame, task) pairs from an OutcomeStore.
// Store failures are logged and bypassed; they never fail a prediction.
type Cached struct {
	next        Predictor
	store       OutcomeStore
	backend     string
	fingerprint string
	ttl         time.Duration
	logger      *zap.Logger
}

// NewCached wraps next with store. backend and fingerprint (see Fingerprint)
// are part of the cache key so verdicts are never shared across backends or
// predictor settings.
func NewCached(next Predictor, store OutcomeStore, backend, fingerprint string, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{
		next:        next,
		store:       store,
		backend:     backend,
		fingerprint: fingerprint,
		ttl:         ttl,
		logger:      logger,
	}
}

// PredictOutcome returns a cached verdict when present, otherwise delegates
// and stores the result.
func (c *Cached) PredictOutcome(ctx context.Context, img *imaging.NormalizedImage, task string, logMetrics bool) (bool, error) {
	if err := checkImage(c.backend, img); err != nil {
		return false, err
	}
	key := cache.OutcomeKey(c.backend, c.fingerprint, img, task)

	success, found, err := c.store.GetOutcome(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCacheLookup("error")
		c.logger.Warn("outcome cache lookup failed", zap.String("key", key), zap.Error(err))
	case found:
		metrics.RecordCacheLookup("hit")
		c.logger.Debug("outcome cache hit", zap.String("key", key), zap.Bool("success", success))
		return success, nil
	default:
		metrics.RecordCacheLookup("miss")
	}

	success, err = c.next.PredictOutcome(ctx, img, task, logMetrics)
	if err != nil {
		return false, err
	}

	if err := c.store.SetOutcome(ctx, key, success, c.ttl); err != nil {
		c.logger.Warn("outcome cache store failed", zap.String("key", key), zap.Error(err))
	}
	return success, nil
}

// Close closes the wrapped predictor and the store.
func (c *Cached) Close() error {
	return errors.Join(c.next.Close(), c.store.Close())
}

var _ Predictor = (*Cached)(nil)
