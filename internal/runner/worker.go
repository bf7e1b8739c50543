package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/torosent/rpcfire/internal/metrics"
)

// requestIDStride seeds each worker's id space so request ids stay unique
// across workers without coordination: id = workerIndex*stride + localSeq.
const requestIDStride = 1_000_000

// worker is one request-issuing loop. It owns its executor exclusively and
// touches shared state only through the accumulator's merge.
type worker struct {
	index    int
	exec     Executor
	acc      *metrics.Accumulator
	deadline time.Time
	limiter  *rate.Limiter
	seq      int64
}

// run loops until the deadline or context cancellation is observed before a
// dispatch. The deadline check happens once per iteration, ahead of the
// request; a request already in flight is never preempted.
func (w *worker) run(ctx context.Context, paceCtx context.Context) {
	defer func() {
		if v := recover(); v != nil {
			w.acc.RecordWorkerFault(w.index, v)
		}
	}()

	for time.Now().Before(w.deadline) {
		if ctx.Err() != nil {
			return
		}
		if w.limiter != nil {
			if err := w.limiter.Wait(paceCtx); err != nil {
				return
			}
		}

		w.seq++
		id := int64(w.index)*requestIDStride + w.seq
		outcome := w.exec.Execute(ctx, id)
		w.acc.Record(outcome)
	}
}
