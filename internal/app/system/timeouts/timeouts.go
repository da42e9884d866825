// Package timeouts holds the deadlines applied to database and outbound
// calls made while serving a request.
//
// Tiers:
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries and report aggregation
//   - Long: multi-collection writes (profile sync, cascading deletes)
//   - External: calls to third parties (TTS, bot API, Google, S3)
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing     = 2 * time.Second
	DefaultShort    = 5 * time.Second
	DefaultMedium   = 10 * time.Second
	DefaultLong     = 30 * time.Second
	DefaultExternal = 45 * time.Second
)

// Config holds one value per tier. Zero values leave the tier unchanged.
type Config struct {
	Ping     time.Duration
	Short    time.Duration
	Medium   time.Duration
	Long     time.Duration
	External time.Duration
}

func defaults() Config {
	return Config{
		Ping:     DefaultPing,
		Short:    DefaultShort,
		Medium:   DefaultMedium,
		Long:     DefaultLong,
		External: DefaultExternal,
	}
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func get(f func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return f(cur)
}

func Ping() time.Duration     { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration    { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration   { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration     { return get(func(c Config) time.Duration { return c.Long }) }
func External() time.Duration { return get(func(c Config) time.Duration { return c.External }) }

// Configure overrides the tiers set to a positive value.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&cur, cfg)
}

func merge(dst *Config, src Config) {
	for _, p := range []struct {
		dst *time.Duration
		src time.Duration
	}{
		{&dst.Ping, src.Ping},
		{&dst.Short, src.Short},
		{&dst.Medium, src.Medium},
		{&dst.Long, src.Long},
		{&dst.External, src.External},
	} {
		if p.src > 0 {
			*p.dst = p.src
		}
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// ConfigureFromEnv reads TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM,
// TIMEOUT_LONG and TIMEOUT_EXTERNAL as Go durations. Unset or invalid values
// are skipped. It returns how many tiers were applied.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for name, dst := range map[string]*time.Duration{
		"TIMEOUT_PING":     &cfg.Ping,
		"TIMEOUT_SHORT":    &cfg.Short,
		"TIMEOUT_MEDIUM":   &cfg.Medium,
		"TIMEOUT_LONG":     &cfg.Long,
		"TIMEOUT_EXTERNAL": &cfg.External,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// Current returns a snapshot of the configured tiers.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.External(), h.Log, "tts synthesize")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
