// Package metrics collects per-request outcomes during a load campaign and
// aggregates them into a final summary.
//
// # Outcome
//
// Every completed request produces exactly one [Outcome], a tagged variant
// over success, HTTP error, JSON-RPC protocol error, timeout, transport
// error, and decode error. Outcomes carry end-to-end latency measured on the
// monotonic clock up to the point the outcome was determined, including
// response-body decode time for responses that were decoded.
//
// # Accumulator
//
// The [Accumulator] is the single piece of state shared by all workers.
// Each merge of one outcome happens under one mutex and is atomic as a whole:
// one classification counter increment, a latency append for successes, and
// status/error-code map updates when applicable.
//
//	acc := metrics.NewAccumulator()
//	acc.Record(outcome)          // from any worker goroutine
//	summary := acc.Summarize(elapsed)
//
// Latency percentiles in the summary use the nearest-rank method over the
// raw success samples ([Percentile]); the embedded HDR histogram only feeds
// the cheap live snapshot used by the progress reporter.
//
// # Diagnostics
//
// HTTP 502 responses get a bounded forensic capture (body excerpt plus
// proxy-revealing headers) in a fixed-capacity [DiagnosticBuffer] that
// silently drops entries once full, so sustained failure cannot grow memory
// or block the hot path.
package metrics
