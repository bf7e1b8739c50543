package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/torosent/rpcfire/internal/metrics"
)

// Executor issues one request and classifies its outcome. Implementations
// must not touch shared state; merging outcomes is the worker loop's job.
type Executor interface {
	Execute(ctx context.Context, requestID int64) metrics.Outcome
}

// ExecutorFactory builds the private executor for one worker. It runs before
// any worker is spawned, so a construction error aborts the whole campaign
// with no partial run.
type ExecutorFactory func(workerIndex int) (Executor, error)

// Options configure the Runner.
type Options struct {
	Concurrency   int             // number of worker goroutines
	Duration      time.Duration   // campaign length (required, > 0)
	RatePerSecond int             // dispatch pacing (0 means unlimited)
	NewExecutor   ExecutorFactory // per-worker executor constructor (required)
	Accumulator   *metrics.Accumulator

	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.Accumulator == nil {
		o.Accumulator = metrics.NewAccumulator()
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return nil
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
