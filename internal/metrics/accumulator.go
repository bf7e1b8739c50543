package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/oklog/ulid/v2"
)

// Accumulator is the shared per-campaign result state. All workers merge
// outcomes into it; each merge is serialized by one mutex and applied as a
// single atomic unit, so a classification increment and its matching latency
// append can never be observed apart.
type Accumulator struct {
	mu          sync.Mutex
	runID       string
	latencies   []time.Duration // success outcomes only
	hist        *hdrhistogram.Histogram
	successes   int64
	failures    int64
	errorsByKey map[string]int64
	statusCodes map[int]int64
	rpcErrors   map[string]int64
	diagnostics *DiagnosticBuffer
	faults      []string
}

// LiveStats is a cheap point-in-time view for progress reporting. Percentile
// figures come from the HDR histogram, not the raw sample set.
type LiveStats struct {
	Total          int64
	Successes      int64
	Failures       int64
	RequestsPerSec float64
	P99LatencyMs   float64
}

func NewAccumulator() *Accumulator {
	// Track success latencies from 1µs up to 10min with 3 significant figures.
	h := hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3)
	return &Accumulator{
		runID:       ulid.Make().String(),
		hist:        h,
		errorsByKey: make(map[string]int64),
		statusCodes: make(map[int]int64),
		rpcErrors:   make(map[string]int64),
		diagnostics: NewDiagnosticBuffer(DefaultDiagnosticCapacity),
	}
}

// RunID returns the campaign's unique identifier.
func (a *Accumulator) RunID() string {
	return a.runID
}

// Record merges one outcome. Exactly one of the success/error counters is
// incremented; the latency sequence grows only for successes; the status and
// RPC error-code maps update only when the outcome carries those fields.
func (a *Accumulator) Record(o Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if o.Kind == KindSuccess {
		a.successes++
		a.latencies = append(a.latencies, o.Latency)
		us := o.Latency.Microseconds()
		if us < a.hist.LowestTrackableValue() {
			us = a.hist.LowestTrackableValue()
		}
		if us > a.hist.HighestTrackableValue() {
			us = a.hist.HighestTrackableValue()
		}
		_ = a.hist.RecordValue(us)
	} else {
		a.failures++
		a.errorsByKey[o.Key()]++
	}

	if o.HTTPStatus != 0 {
		a.statusCodes[o.HTTPStatus]++
	}
	if o.Kind == KindProtocolError {
		a.rpcErrors[o.RPCErrCode]++
	}
	if o.Diagnostic != nil {
		a.diagnostics.TryAdd(*o.Diagnostic)
	}
}

// RecordWorkerFault notes an unexpected failure inside one worker so the
// final report can surface it. The remaining workers' results are unaffected.
func (a *Accumulator) RecordWorkerFault(workerIndex int, v interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.faults = append(a.faults, fmt.Sprintf("worker %d: %v", workerIndex, v))
}

// Live returns a snapshot for the progress reporter.
func (a *Accumulator) Live(elapsed time.Duration) LiveStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	live := LiveStats{
		Total:     a.successes + a.failures,
		Successes: a.successes,
		Failures:  a.failures,
	}
	if elapsed > 0 && live.Total > 0 {
		live.RequestsPerSec = float64(live.Total) / elapsed.Seconds()
	}
	if a.hist.TotalCount() > 0 {
		live.P99LatencyMs = float64(a.hist.ValueAtQuantile(99)) / 1000.0
	}
	return live
}
