package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/torosent/rpcfire/internal/metrics"
)

// ProgressReporter displays real-time progress updates.
type ProgressReporter struct {
	acc      *metrics.Accumulator
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
	start    time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(acc *metrics.Accumulator, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		acc:      acc,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
		start:    time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			live := p.acc.Live(time.Since(p.start))
			fmt.Fprintf(p.writer, "\rRequests: %d | Successes: %d | Failures: %d | RPS: %.1f | P99: %.1fms",
				live.Total, live.Successes, live.Failures, live.RequestsPerSec, live.P99LatencyMs)
		case <-p.done:
			return
		}
	}
}
