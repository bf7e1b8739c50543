package runner_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/torosent/rpcfire/internal/metrics"
	"github.com/torosent/rpcfire/internal/runner"
)

// fakeExecutor simulates a request with fixed latency and a configurable
// outcome split.
type fakeExecutor struct {
	latency   time.Duration
	calls     *int64
	failEvery int64 // every Nth call yields an http error (0 = never)
}

func (f *fakeExecutor) Execute(ctx context.Context, requestID int64) metrics.Outcome {
	var n int64
	if f.calls != nil {
		n = atomic.AddInt64(f.calls, 1)
	}
	if f.latency > 0 {
		select {
		case <-time.After(f.latency):
		case <-ctx.Done():
			return metrics.Outcome{Kind: metrics.KindTransportError, Latency: f.latency, ErrKind: "canceled"}
		}
	}
	if f.failEvery > 0 && n%f.failEvery == 0 {
		return metrics.Outcome{Kind: metrics.KindHTTPError, Latency: f.latency, HTTPStatus: 502}
	}
	return metrics.Outcome{Kind: metrics.KindSuccess, Latency: f.latency, HTTPStatus: 200}
}

func singleExecutorFactory(exec runner.Executor) runner.ExecutorFactory {
	return func(int) (runner.Executor, error) { return exec, nil }
}

func TestRunnerHonorsDuration(t *testing.T) {
	var calls int64
	acc := metrics.NewAccumulator()
	r := runner.New(runner.Options{
		Concurrency: 10,
		Duration:    50 * time.Millisecond,
		NewExecutor: singleExecutorFactory(&fakeExecutor{latency: 5 * time.Millisecond, calls: &calls}),
		Accumulator: acc,
	})

	start := time.Now()
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 50*time.Millisecond || elapsed > 250*time.Millisecond {
		// allow scheduling fudge but not extremely off
		t.Fatalf("duration enforcement off: %s", elapsed)
	}
	if res.Total <= 0 {
		t.Fatal("expected some requests executed")
	}
	if res.Elapsed < 50*time.Millisecond {
		t.Fatalf("result elapsed below configured duration: %s", res.Elapsed)
	}
	if calls != res.Total {
		t.Fatalf("calls mismatch: %d vs %d", calls, res.Total)
	}
}

// TestRunnerCountsBalanceUnderStress verifies the core accounting invariant
// with a worker count well past typical contention.
func TestRunnerCountsBalanceUnderStress(t *testing.T) {
	var calls int64
	acc := metrics.NewAccumulator()
	r := runner.New(runner.Options{
		Concurrency: 60,
		Duration:    100 * time.Millisecond,
		NewExecutor: singleExecutorFactory(&fakeExecutor{calls: &calls, failEvery: 3}),
		Accumulator: acc,
	})

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Total != atomic.LoadInt64(&calls) {
		t.Fatalf("recorded %d outcomes for %d dispatches", res.Total, calls)
	}
	if res.Successes+res.Failures != res.Total {
		t.Fatalf("success+failure != total: %d+%d != %d", res.Successes, res.Failures, res.Total)
	}

	s := acc.Summarize(res.Elapsed)
	if s.Total != res.Total {
		t.Fatalf("summary total %d disagrees with result %d", s.Total, res.Total)
	}
}

// dispatchRecorder captures dispatch timestamps to check deadline gating.
type dispatchRecorder struct {
	mu         sync.Mutex
	dispatches []time.Time
	latency    time.Duration
}

func (d *dispatchRecorder) Execute(ctx context.Context, requestID int64) metrics.Outcome {
	d.mu.Lock()
	d.dispatches = append(d.dispatches, time.Now())
	d.mu.Unlock()
	time.Sleep(d.latency)
	return metrics.Outcome{Kind: metrics.KindSuccess, Latency: d.latency, HTTPStatus: 200}
}

// TestRunnerNoDispatchAfterDeadline: new requests stop at the deadline, but
// the in-flight request still completes and is recorded.
func TestRunnerNoDispatchAfterDeadline(t *testing.T) {
	rec := &dispatchRecorder{latency: 40 * time.Millisecond}
	acc := metrics.NewAccumulator()
	duration := 100 * time.Millisecond

	start := time.Now()
	r := runner.New(runner.Options{
		Concurrency: 2,
		Duration:    duration,
		NewExecutor: singleExecutorFactory(rec),
		Accumulator: acc,
	})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	deadline := start.Add(duration)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, ts := range rec.dispatches {
		// Small slack for the clock read between the loop check and the
		// recorder's own timestamp.
		if ts.After(deadline.Add(10 * time.Millisecond)) {
			t.Fatalf("dispatch %s after deadline %s", ts, deadline)
		}
	}
	if int64(len(rec.dispatches)) != res.Total {
		t.Fatalf("every dispatched request must be recorded: %d dispatched, %d recorded", len(rec.dispatches), res.Total)
	}
}

// idCollector records every request id it sees.
type idCollector struct {
	mu  sync.Mutex
	ids map[int64]int
}

func (c *idCollector) Execute(ctx context.Context, requestID int64) metrics.Outcome {
	c.mu.Lock()
	c.ids[requestID]++
	c.mu.Unlock()
	return metrics.Outcome{Kind: metrics.KindSuccess, Latency: time.Microsecond, HTTPStatus: 200}
}

func TestRunnerRequestIDsUniqueAcrossWorkers(t *testing.T) {
	collector := &idCollector{ids: make(map[int64]int)}
	r := runner.New(runner.Options{
		Concurrency: 8,
		Duration:    50 * time.Millisecond,
		NewExecutor: singleExecutorFactory(collector),
		Accumulator: metrics.NewAccumulator(),
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	collector.mu.Lock()
	defer collector.mu.Unlock()
	for id, count := range collector.ids {
		if count > 1 {
			t.Fatalf("request id %d issued %d times", id, count)
		}
	}
}

// panicExecutor blows up on its first call.
type panicExecutor struct{}

func (panicExecutor) Execute(ctx context.Context, requestID int64) metrics.Outcome {
	panic("worker bug")
}

// TestRunnerWorkerPanicIsolated: one faulty worker must not abort the
// campaign or lose the other workers' results.
func TestRunnerWorkerPanicIsolated(t *testing.T) {
	var calls int64
	acc := metrics.NewAccumulator()
	healthy := &fakeExecutor{latency: time.Millisecond, calls: &calls}

	r := runner.New(runner.Options{
		Concurrency: 4,
		Duration:    60 * time.Millisecond,
		Accumulator: acc,
		NewExecutor: func(workerIndex int) (runner.Executor, error) {
			if workerIndex == 0 {
				return panicExecutor{}, nil
			}
			return healthy, nil
		},
	})

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Total == 0 {
		t.Fatal("healthy workers should have produced results")
	}

	s := acc.Summarize(res.Elapsed)
	if len(s.WorkerFaults) != 1 {
		t.Fatalf("expected one recorded worker fault, got %d", len(s.WorkerFaults))
	}
}

func TestRunnerExecutorFactoryErrorAbortsBeforeSpawn(t *testing.T) {
	acc := metrics.NewAccumulator()
	r := runner.New(runner.Options{
		Concurrency: 4,
		Duration:    time.Second,
		Accumulator: acc,
		NewExecutor: func(workerIndex int) (runner.Executor, error) {
			if workerIndex == 2 {
				return nil, errors.New("bad endpoint")
			}
			return &fakeExecutor{}, nil
		},
	})

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected factory error to abort the run")
	}
	if s := acc.Summarize(time.Second); s.Total != 0 {
		t.Fatalf("no partial run allowed, got %d outcomes", s.Total)
	}
}

func TestRunnerRateLimitCapsThroughput(t *testing.T) {
	var calls int64
	rps := 100
	duration := 100 * time.Millisecond
	r := runner.New(runner.Options{
		Concurrency:    20,
		Duration:       duration,
		RatePerSecond:  rps,
		NewExecutor:    singleExecutorFactory(&fakeExecutor{calls: &calls}),
		Accumulator:    metrics.NewAccumulator(),
		LimiterFactory: func(n int) *rate.Limiter { return rate.NewLimiter(rate.Limit(n), 1) },
	})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	maxExpected := int64(float64(rps) * (float64(duration) / float64(time.Second)) * 1.20)
	if res.Total > maxExpected {
		t.Fatalf("rate limiter exceeded: total=%d max=%d", res.Total, maxExpected)
	}
}

func TestRunnerContextCancelStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int64
	r := runner.New(runner.Options{
		Concurrency: 4,
		Duration:    5 * time.Second,
		NewExecutor: singleExecutorFactory(&fakeExecutor{latency: time.Millisecond, calls: &calls}),
		Accumulator: metrics.NewAccumulator(),
	})

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if _, err := r.Run(ctx); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancellation did not stop the campaign promptly: %s", elapsed)
	}
}
