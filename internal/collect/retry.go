// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"math"
	"time"

	"github.com/pdiddy/deep-research/internal/pipeline"
	"github.com/pdiddy/deep-research/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff
// between collector attempts. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 2

// WithRetry wraps a collector with dispatch-layer retry: a failed
// invocation is retried up to maxRetries times with exponential
// backoff (base delay doubling each attempt). When maxRetries is 0
// the default (2) is used. If the context is cancelled during a
// backoff wait the context error is returned.
func WithRetry(inner pipeline.Collector, maxRetries int) pipeline.Collector {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &retryCollector{inner: inner, maxRetries: maxRetries}
}

type retryCollector struct {
	inner      pipeline.Collector
	maxRetries int
}

func (r *retryCollector) Collect(ctx context.Context, task types.CollectTask) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		payload, err := r.inner.Collect(ctx, task)
		if err == nil {
			return payload, nil
		}
		if attempt >= r.maxRetries {
			return nil, err
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
