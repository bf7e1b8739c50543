package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional configuration file into
// a Config. Flags override file settings.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			_ = cmd.Help()
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flags := cmd.Flags()
	if len(args) == 0 {
		_ = cmd.Help()
		return nil, ErrHelpRequested
	}

	cfg := &Config{
		RPCMethod:        "eth_blockNumber",
		Params:           "[]",
		Headers:          map[string]string{},
		Concurrency:      100,
		Duration:         60 * time.Second,
		Timeout:          5 * time.Second,
		Transport:        TransportHTTP,
		HandshakeTimeout: 30 * time.Second,
		Tracing:          TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	configPath, _ := flags.GetString("config")
	if configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		cfg.ConfigFile = configPath
	}

	if err := applyFlagOverrides(cfg, flags); err != nil {
		return nil, err
	}

	cfg.Transport = Transport(strings.ToLower(string(cfg.Transport)))
	return cfg, nil
}

// applyFlagOverrides copies every explicitly set flag over the file-derived
// configuration. Defaults apply only when neither file nor flag set a value,
// which the zero-value checks above already arranged.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	stringFlag(flags, "target", &cfg.TargetURL)
	stringFlag(flags, "rpc-method", &cfg.RPCMethod)
	stringFlag(flags, "params", &cfg.Params)
	intFlag(flags, "concurrency", &cfg.Concurrency)
	durationFlag(flags, "duration", &cfg.Duration)
	durationFlag(flags, "timeout", &cfg.Timeout)
	intFlag(flags, "rate", &cfg.Rate)
	durationFlag(flags, "handshake-timeout", &cfg.HandshakeTimeout)
	boolFlag(flags, "json-output", &cfg.JSONOutput)
	boolFlag(flags, "log-errors", &cfg.LogErrors)

	if flags.Changed("transport") {
		raw, _ := flags.GetString("transport")
		cfg.Transport = Transport(raw)
	}

	if flags.Changed("header") {
		pairs, _ := flags.GetStringSlice("header")
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, pair := range pairs {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(key) == "" {
				return fmt.Errorf("invalid header %q: expected key=value", pair)
			}
			cfg.Headers[strings.TrimSpace(key)] = value
		}
	}

	stringFlag(flags, "otlp-endpoint", &cfg.Tracing.Endpoint)
	stringFlag(flags, "otlp-protocol", &cfg.Tracing.Protocol)
	boolFlag(flags, "otlp-insecure", &cfg.Tracing.Insecure)
	boolFlag(flags, "trace-propagate", &cfg.Tracing.Propagate)
	stringFlag(flags, "trace-service-name", &cfg.Tracing.ServiceName)
	if flags.Changed("trace-sample-rate") {
		cfg.Tracing.SampleRate, _ = flags.GetFloat64("trace-sample-rate")
	}

	return nil
}

func stringFlag(flags *pflag.FlagSet, name string, dst *string) {
	if flags.Changed(name) {
		*dst, _ = flags.GetString(name)
	}
}

func intFlag(flags *pflag.FlagSet, name string, dst *int) {
	if flags.Changed(name) {
		*dst, _ = flags.GetInt(name)
	}
}

func durationFlag(flags *pflag.FlagSet, name string, dst *time.Duration) {
	if flags.Changed(name) {
		*dst, _ = flags.GetDuration(name)
	}
}

func boolFlag(flags *pflag.FlagSet, name string, dst *bool) {
	if flags.Changed(name) {
		*dst, _ = flags.GetBool(name)
	}
}
