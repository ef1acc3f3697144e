// Package config loads server settings from flags and environment variables.
package config

import (
	"flag"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/vshulcz/Twintick/internal/domain"
	"github.com/vshulcz/Twintick/internal/services/producer"
	"go.uber.org/zap/zapcore"
)

const (
	defaultListenAndServeAddr = ":8080"
	defaultTimeUnit           = time.Second
	defaultMinStep            = 1
	defaultMaxStep            = 5
	defaultBuffer             = 16
	defaultShutdownTimeout    = 5 * time.Second
	defaultLogLevel           = "info"
)

type ServerConfig struct {
	Address           string        `env:"ADDRESS"`
	TimeUnit          time.Duration `env:"TIME_UNIT"`
	MinStep           uint64        `env:"MIN_STEP"`
	MaxStep           uint64        `env:"MAX_STEP"`
	StepMode          string        `env:"STEP_MODE"`
	Buffer            int           `env:"PRODUCER_BUFFER"`
	QueryTimeout      time.Duration `env:"QUERY_TIMEOUT"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"`
	LogLevel          string        `env:"LOG_LEVEL"`
	LegacyErrorStatus bool          `env:"LEGACY_ERROR_STATUS"`
}

// Producer returns the pacing shared by every producer.
func (c ServerConfig) Producer() producer.Config {
	return producer.Config{
		Unit:    c.TimeUnit,
		Mode:    producer.StepMode(c.StepMode),
		MinStep: c.MinStep,
		MaxStep: c.MaxStep,
		Buffer:  c.Buffer,
	}
}

// ENV > CLI > defaults
func LoadServerConfig(args []string, out io.Writer) (ServerConfig, error) {
	if out == nil {
		out = io.Discard
	}

	cfg := ServerConfig{
		Address:         defaultListenAndServeAddr,
		TimeUnit:        defaultTimeUnit,
		MinStep:         defaultMinStep,
		MaxStep:         defaultMaxStep,
		StepMode:        string(producer.StepElapsed),
		Buffer:          defaultBuffer,
		ShutdownTimeout: defaultShutdownTimeout,
		LogLevel:        defaultLogLevel,
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&cfg.Address, "a", cfg.Address, "HTTP listen address")
	fs.DurationVar(&cfg.TimeUnit, "u", cfg.TimeUnit, "length of one producer time unit")
	fs.Uint64Var(&cfg.MinStep, "min", cfg.MinStep, "minimum producer wait, in time units")
	fs.Uint64Var(&cfg.MaxStep, "max", cfg.MaxStep, "maximum producer wait, in time units")
	fs.StringVar(&cfg.StepMode, "mode", cfg.StepMode, "increment mode: elapsed|independent")
	fs.IntVar(&cfg.Buffer, "b", cfg.Buffer, "producer channel buffer size")
	fs.DurationVar(&cfg.QueryTimeout, "t", cfg.QueryTimeout, "max wait for a snapshot, 0 waits forever")
	fs.DurationVar(&cfg.ShutdownTimeout, "s", cfg.ShutdownTimeout, "graceful HTTP shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug|info|warn|error")
	fs.BoolVar(&cfg.LegacyErrorStatus, "legacy-errors", cfg.LegacyErrorStatus, "answer failed lookups with 200")

	if err := fs.Parse(args); err != nil {
		return ServerConfig{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}

	cfg.Address = normalizeListenAndServeURL(cfg.Address)
	if _, port, err := net.SplitHostPort(cfg.Address); err != nil || port == "" {
		return ServerConfig{}, fmt.Errorf("%w: invalid listen address: %q", domain.ErrInvalidConfig, cfg.Address)
	}
	cfg.StepMode = strings.ToLower(strings.TrimSpace(cfg.StepMode))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Producer().Validate(); err != nil {
		return ServerConfig{}, err
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return ServerConfig{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	if cfg.QueryTimeout < 0 {
		return ServerConfig{}, fmt.Errorf("%w: query timeout must not be negative", domain.ErrInvalidConfig)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return cfg, nil
}

func normalizeListenAndServeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultListenAndServeAddr
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			return u.Host
		}
	}
	if !strings.Contains(s, ":") {
		return ":" + s
	}
	return s
}
