// Package config provides configuration loading and validation for rpcfire.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/torosent/rpcfire/internal/jsonrpc"
)

type Transport string

const (
	TransportHTTP      Transport = "http"
	TransportWebSocket Transport = "websocket"
)

type Config struct {
	TargetURL string            `mapstructure:"target"`
	RPCMethod string            `mapstructure:"rpc_method"`
	Params    string            `mapstructure:"params"`
	Headers   map[string]string `mapstructure:"headers"`

	Concurrency int           `mapstructure:"concurrency"`
	Duration    time.Duration `mapstructure:"duration"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Rate        int           `mapstructure:"rate"`

	Transport        Transport     `mapstructure:"transport"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`

	JSONOutput bool `mapstructure:"json_output"`
	LogErrors  bool `mapstructure:"log_errors"`

	Tracing TracingConfig `mapstructure:"tracing"`

	ConfigFile string `mapstructure:"-"`

	// ParamsJSON is the validated form of Params, populated by Validate.
	ParamsJSON json.RawMessage `mapstructure:"-"`
}

type TracingConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether span export is configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into
// outgoing requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

// ValidationError aggregates every configuration issue found in one pass.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks every invariant the campaign relies on and populates
// ParamsJSON. Any issue aborts before a single worker is spawned.
func (c *Config) Validate() error {
	var issues []string
	var warnings []string

	if strings.TrimSpace(c.TargetURL) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}
	if strings.TrimSpace(c.RPCMethod) == "" {
		issues = append(issues, "rpc-method is required")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Duration <= 0 {
		issues = append(issues, "duration must be > 0")
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be > 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.HandshakeTimeout < 0 {
		issues = append(issues, "handshake-timeout must be >= 0")
	}

	switch c.Transport {
	case TransportHTTP, TransportWebSocket:
	default:
		issues = append(issues, fmt.Sprintf("transport must be %q or %q", TransportHTTP, TransportWebSocket))
	}

	params, err := jsonrpc.ValidateParams(c.Params)
	if err != nil {
		issues = append(issues, err.Error())
	} else {
		c.ParamsJSON = params
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High concurrency configured (%d workers). Ensure you have authorization to test the target system.", c.Concurrency))
	}
	if c.Rate > 1000 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High rate limit configured (%d RPS). Ensure you have authorization to test the target system.", c.Rate))
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
