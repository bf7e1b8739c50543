package runner

import (
	"context"

	"github.com/torosent/rpcfire/internal/metrics"
)

// FailureLogger logs failed requests.
type FailureLogger interface {
	LogFailure(workerIndex int, requestID int64, o metrics.Outcome)
}

// loggingExecutor wraps an Executor with failure logging.
type loggingExecutor struct {
	inner       Executor
	logger      FailureLogger
	workerIndex int
}

// WithLogging wraps an Executor so every non-success outcome is reported to
// the logger. Requests are never retried; logging is observation only.
func WithLogging(exec Executor, logger FailureLogger, workerIndex int) Executor {
	if logger == nil {
		return exec
	}
	return &loggingExecutor{
		inner:       exec,
		logger:      logger,
		workerIndex: workerIndex,
	}
}

func (l *loggingExecutor) Execute(ctx context.Context, requestID int64) metrics.Outcome {
	o := l.inner.Execute(ctx, requestID)
	if o.Kind != metrics.KindSuccess {
		l.logger.LogFailure(l.workerIndex, requestID, o)
	}
	return o
}
