package metrics

import (
	"sort"
	"time"
)

// Summary is the final aggregated view of a completed campaign, computed once
// after all workers have joined.
type Summary struct {
	RunID     string  `json:"run_id"`
	Total     int64   `json:"total"`
	Successes int64   `json:"successes"`
	Failures  int64   `json:"failures"`
	ErrorRate float64 `json:"error_rate_pct"`

	Elapsed   time.Duration `json:"-"`
	ElapsedMs float64       `json:"elapsed_ms"`

	// Rates derive from actual elapsed wall time, not the configured
	// duration, since join overhead can stretch the run.
	RequestsPerSec float64 `json:"requests_per_sec"`
	SuccessPerSec  float64 `json:"success_per_sec"`

	// Latency is nil when the campaign recorded no successes.
	Latency *LatencySummary `json:"latency,omitempty"`

	StatusCodes       map[int]int64      `json:"status_codes,omitempty"`
	RPCErrors         map[string]int64   `json:"rpc_errors,omitempty"`
	ErrorsByKey       map[string]int64   `json:"errors,omitempty"`
	BadGatewayDetails []BadGatewayDetail `json:"bad_gateway_details,omitempty"`
	WorkerFaults      []string           `json:"worker_faults,omitempty"`
}

// LatencySummary holds order statistics over the success-latency samples,
// computed with the nearest-rank method.
type LatencySummary struct {
	Min  time.Duration `json:"-"`
	Max  time.Duration `json:"-"`
	Mean time.Duration `json:"-"`
	P50  time.Duration `json:"-"`
	P90  time.Duration `json:"-"`
	P95  time.Duration `json:"-"`
	P99  time.Duration `json:"-"`

	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P90Ms  float64 `json:"p90_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Summarize post-processes the accumulated state into a Summary. The success
// latency sequence is sorted once here; insertion order never mattered.
func (a *Accumulator) Summarize(elapsed time.Duration) Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Summary{
		RunID:     a.runID,
		Total:     a.successes + a.failures,
		Successes: a.successes,
		Failures:  a.failures,
		Elapsed:   elapsed,
		ElapsedMs: float64(elapsed) / float64(time.Millisecond),
	}

	if s.Total > 0 {
		s.ErrorRate = float64(s.Failures) / float64(s.Total) * 100
	}
	if elapsed > 0 {
		s.RequestsPerSec = float64(s.Total) / elapsed.Seconds()
		s.SuccessPerSec = float64(s.Successes) / elapsed.Seconds()
	}

	if len(a.latencies) > 0 {
		sorted := make([]time.Duration, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		s.Latency = summarizeLatencies(sorted)
	}

	if len(a.statusCodes) > 0 {
		s.StatusCodes = make(map[int]int64, len(a.statusCodes))
		for k, v := range a.statusCodes {
			s.StatusCodes[k] = v
		}
	}
	if len(a.rpcErrors) > 0 {
		s.RPCErrors = make(map[string]int64, len(a.rpcErrors))
		for k, v := range a.rpcErrors {
			s.RPCErrors[k] = v
		}
	}
	if len(a.errorsByKey) > 0 {
		s.ErrorsByKey = make(map[string]int64, len(a.errorsByKey))
		for k, v := range a.errorsByKey {
			s.ErrorsByKey[k] = v
		}
	}

	s.BadGatewayDetails = a.diagnostics.Entries()
	if len(a.faults) > 0 {
		s.WorkerFaults = append([]string(nil), a.faults...)
	}

	return s
}

func summarizeLatencies(sorted []time.Duration) *LatencySummary {
	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	ls := &LatencySummary{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: sum / time.Duration(len(sorted)),
	}
	ls.P50, _ = Percentile(sorted, 50)
	ls.P90, _ = Percentile(sorted, 90)
	ls.P95, _ = Percentile(sorted, 95)
	ls.P99, _ = Percentile(sorted, 99)

	ls.MinMs = ms(ls.Min)
	ls.MaxMs = ms(ls.Max)
	ls.MeanMs = ms(ls.Mean)
	ls.P50Ms = ms(ls.P50)
	ls.P90Ms = ms(ls.P90)
	ls.P95Ms = ms(ls.P95)
	ls.P99Ms = ms(ls.P99)
	return ls
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
