package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/torosent/rpcfire/internal/config"
	"github.com/torosent/rpcfire/internal/httpclient"
	"github.com/torosent/rpcfire/internal/metrics"
	"github.com/torosent/rpcfire/internal/output"
	"github.com/torosent/rpcfire/internal/runner"
	"github.com/torosent/rpcfire/internal/tracing"
	"github.com/torosent/rpcfire/internal/websocket"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

type stderrFailureLogger struct {
	mu sync.Mutex
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	acc := metrics.NewAccumulator()

	var failureLogger runner.FailureLogger
	if cfg.LogErrors {
		failureLogger = &stderrFailureLogger{}
	}

	factory, cleanup := newExecutorFactory(cfg, provider, failureLogger)
	defer cleanup()

	opts := runner.Options{
		Concurrency:   cfg.Concurrency,
		Duration:      cfg.Duration,
		RatePerSecond: cfg.Rate,
		NewExecutor:   factory,
		Accumulator:   acc,
	}
	r := runner.New(opts)

	var progress *output.ProgressReporter
	if !cfg.JSONOutput {
		progress = output.NewProgressReporter(acc, progressInterval, os.Stdout)
		progress.Start()
	}

	result, runErr := r.Run(ctx)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}
	if runErr != nil {
		return runErr
	}

	summary := acc.Summarize(result.Elapsed)
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, summary); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, summary)
	}

	if result.Failures > 0 {
		return fmt.Errorf("%d requests failed", result.Failures)
	}
	return nil
}

// newExecutorFactory builds the per-worker executor chain for the configured
// transport: base requester, then trace span wrapper, then failure logging.
// The returned cleanup releases the connections the executors held open.
func newExecutorFactory(cfg *config.Config, provider *tracing.Provider, logger runner.FailureLogger) (runner.ExecutorFactory, func()) {
	var client *http.Client
	if cfg.Transport == config.TransportHTTP {
		// One shared client: its pool is sized so each worker can hold a
		// persistent connection.
		client = httpclient.NewClient(cfg.Timeout, cfg.Concurrency)
	}

	var mu sync.Mutex
	var sockets []*wsRequester

	cleanup := func() {
		mu.Lock()
		defer mu.Unlock()
		for _, ws := range sockets {
			_ = ws.Close()
		}
		if client != nil {
			client.CloseIdleConnections()
		}
	}

	factory := func(workerIndex int) (runner.Executor, error) {
		var exec runner.Executor
		switch cfg.Transport {
		case config.TransportHTTP:
			exec = &httpRequester{
				client:  client,
				url:     cfg.TargetURL,
				method:  cfg.RPCMethod,
				params:  cfg.ParamsJSON,
				headers: cfg.Headers,
				tracer:  provider,
			}
		case config.TransportWebSocket:
			ws := newWebSocketRequester(cfg)
			mu.Lock()
			sockets = append(sockets, ws)
			mu.Unlock()
			exec = ws
		default:
			return nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
		}

		if provider != nil {
			exec = &tracedExecutor{
				inner:       exec,
				provider:    provider,
				method:      cfg.RPCMethod,
				workerIndex: workerIndex,
			}
		}
		exec = runner.WithLogging(exec, logger, workerIndex)
		return exec, nil
	}

	return factory, cleanup
}

// tracedExecutor opens a client span around each request so the outcome and
// latency show up in the trace backend alongside the server's own spans.
type tracedExecutor struct {
	inner       runner.Executor
	provider    *tracing.Provider
	method      string
	workerIndex int
}

func (t *tracedExecutor) Execute(ctx context.Context, requestID int64) metrics.Outcome {
	ctx, span := t.provider.StartRequestSpan(ctx, t.method, requestID, t.workerIndex)
	o := t.inner.Execute(ctx, requestID)
	tracing.EndSpan(span, o.Key(), o.HTTPStatus, nil)
	return o
}

func (l *stderrFailureLogger) LogFailure(workerIndex int, requestID int64, o metrics.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[rpcfire] worker %d request %d failed: %s\n", workerIndex, requestID, o.Key())
}

func newWebSocketRequester(cfg *config.Config) *wsRequester {
	headers := make(http.Header, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}
	client := websocket.NewClient(websocket.Config{
		URL:              cfg.TargetURL,
		Headers:          headers,
		HandshakeTimeout: cfg.HandshakeTimeout,
		CallTimeout:      cfg.Timeout,
	})
	return &wsRequester{
		client: client,
		method: cfg.RPCMethod,
		params: cfg.ParamsJSON,
	}
}
