package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Default values.
const (
	// DefaultEvalTimeoutMS mirrors the 5000 ms evaluation deadline used by
	// other .NET debuggers.
	DefaultEvalTimeoutMS = 5000

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"
)

// ErrInvalidConfiguration is returned for unusable configuration values.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds the engine configuration.
type Config struct {
	Eval    EvalConfig    `toml:"eval"`
	Logging LoggingConfig `toml:"logging"`
}

// EvalConfig configures expression evaluation.
type EvalConfig struct {
	// TimeoutMS is the deadline, in milliseconds, for each of the two
	// evaluation wait phases.
	TimeoutMS int `toml:"timeout_ms"`
}

// Timeout returns the phase deadline as a duration.
func (c EvalConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// LoggingConfig configures engine logging.
type LoggingConfig struct {
	// Level is the minimum level to log: debug, info, warn or error.
	Level string `toml:"level"`
}

// BuildLogger constructs a logger at the configured level.
func (c LoggingConfig) BuildLogger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: logging.level %q", ErrInvalidConfiguration, c.Level)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Eval:    EvalConfig{TimeoutMS: DefaultEvalTimeoutMS},
		Logging: LoggingConfig{Level: DefaultLogLevel},
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Eval.TimeoutMS <= 0 {
		return fmt.Errorf("%w: eval.timeout_ms must be positive, got %d", ErrInvalidConfiguration, c.Eval.TimeoutMS)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfiguration, c.Logging.Level)
	}
	return nil
}
