package config

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rpcfire",
		Short:         "Concurrent JSON-RPC load generator with latency and error breakdown",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target flags
	flags.String("target", "", "JSON-RPC endpoint URL, e.g. http://127.0.0.1:8545")
	flags.StringP("rpc-method", "m", "eth_blockNumber", "JSON-RPC method to call")
	flags.StringP("params", "p", "[]", `JSON array of call parameters, e.g. '["latest", false]'`)
	flags.StringSlice("header", nil, "Additional request header in key=value form")

	// Load control flags
	flags.IntP("concurrency", "c", 100, "Number of concurrent workers")
	flags.DurationP("duration", "d", 60*time.Second, "How long to run the campaign (e.g. 30s, 1m)")
	flags.Duration("timeout", 5*time.Second, "Per-request timeout")
	flags.IntP("rate", "r", 0, "Requests per second limit (0 means unlimited)")

	// Transport flags
	flags.String("transport", string(TransportHTTP), "Transport mode: 'http' or 'websocket'")
	flags.Duration("handshake-timeout", 30*time.Second, "WebSocket handshake timeout")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("otlp-endpoint", "", "OTLP collector endpoint for span export")
	flags.String("otlp-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Bool("otlp-insecure", false, "Skip TLS for the OTLP exporter")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
	flags.Bool("trace-propagate", false, "Inject W3C trace context headers into requests")
	flags.String("trace-service-name", "", "Service name reported on exported spans")
}
