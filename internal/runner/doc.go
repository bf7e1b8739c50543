// Package runner drives a fixed-duration load campaign: it spawns the
// configured number of worker loops, shares one result accumulator between
// them, and joins every worker before returning.
//
// # Executor Interface
//
// The [Executor] interface is what a worker invokes once per iteration:
//
//	type Executor interface {
//		Execute(ctx context.Context, requestID int64) metrics.Outcome
//	}
//
// Implementations exist per transport (HTTP POST, WebSocket). Every worker
// gets its own executor instance from the options' factory, so connection
// state is never shared across workers.
//
// # Deadline Semantics
//
// The campaign deadline gates dispatch only. A worker checks the monotonic
// clock before issuing each request; an in-flight request always runs to
// completion (success, error, or its own timeout) and is recorded, even when
// the deadline passes mid-flight. Nothing preempts it.
//
// # Failure Isolation
//
// A panicking worker is recorded as a worker fault and does not abort the
// campaign; the remaining workers' results stay valid.
//
// # Pacing
//
// An optional requests-per-second cap paces dispatch through a shared
// rate.Limiter. Pacing is fixed, never adaptive.
package runner
