package runner

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Result captures the campaign-level view after all workers have joined.
// Elapsed is actual wall-clock time, which can exceed the configured
// duration by in-flight completion and join overhead.
type Result struct {
	Total     int64
	Successes int64
	Failures  int64
	Elapsed   time.Duration
}

// Runner coordinates the concurrent worker loops of one campaign.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run executes the campaign: it constructs every worker's executor up front,
// computes the absolute deadline, spawns the workers, and blocks until each
// one has stopped. The accumulator is never mutated after Run returns.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.opt.NewExecutor == nil {
		return Result{}, fmt.Errorf("executor factory is required")
	}

	// Executor construction errors abort before any worker is spawned.
	executors := make([]Executor, r.opt.Concurrency)
	for i := range executors {
		exec, err := r.opt.NewExecutor(i)
		if err != nil {
			return Result{}, fmt.Errorf("worker %d executor: %w", i, err)
		}
		executors[i] = exec
	}

	start := time.Now()
	deadline := start.Add(r.opt.Duration)
	limiter := r.opt.LimiterFactory(r.opt.RatePerSecond)

	// paceCtx bounds only pacing waits: a long limiter wait must not stretch
	// past the deadline, while the request context stays uncancelled so
	// in-flight requests complete.
	paceCtx, cancelPace := context.WithDeadline(ctx, deadline)
	defer cancelPace()

	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for i := 0; i < r.opt.Concurrency; i++ {
		w := &worker{
			index:    i,
			exec:     executors[i],
			acc:      r.opt.Accumulator,
			deadline: deadline,
			limiter:  limiter,
		}
		go func() {
			defer wg.Done()
			w.run(ctx, paceCtx)
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	live := r.opt.Accumulator.Live(elapsed)
	return Result{
		Total:     live.Total,
		Successes: live.Successes,
		Failures:  live.Failures,
		Elapsed:   elapsed,
	}, nil
}
