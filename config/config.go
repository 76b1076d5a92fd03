// Package config defines the library-level tunables spec §4.9 and §9
// describe as configuration rather than code: vector width override,
// worker count, depth limit, lenient-mode flag, and a completion
// deadline. It is deliberately distinct from the CLI's flag parsing in
// cmd/jsonmin, which configures the driver, not the library.
package config

import (
	"os"
	"strconv"
	"time"

	"go.jacobcolvin.com/jsonmin/dispatch"
	"go.jacobcolvin.com/jsonmin/internal/cpufeature"
	"go.jacobcolvin.com/jsonmin/state"
)

// Config bundles the tunables every execution mode reads from.
type Config struct {
	Mode      dispatch.Mode
	Workers   int
	MaxDepth  int
	Lenient   bool
	Deadline  time.Duration
	NoSIMD    bool
	ChunkSize int // 0 selects the adaptive default
}

// Option mutates a Config; see With* constructors below.
type Option func(*Config)

// Default returns library defaults before any Option or environment
// override is applied.
func Default() Config {
	return Config{
		Mode:     dispatch.Eco,
		Workers:  0, // 0 means "auto-detect" to callers (turbo.defaultConfig uses GOMAXPROCS)
		MaxDepth: state.DefaultMaxDepth,
		Deadline: 30 * time.Second,
	}
}

// New builds a Config from Default, FromEnv, then any explicit
// Options, in that precedence order (explicit Options win).
func New(opts ...Option) Config {
	cfg := Default()
	FromEnv().apply(&cfg)
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.NoSIMD {
		w := cpufeature.Width8
		cpufeature.SetOverride(&w)
	}
	return cfg
}

// WithMode selects the execution strategy explicitly, bypassing
// dispatch.SelectMode.
func WithMode(m dispatch.Mode) Option { return func(c *Config) { c.Mode = m } }

// WithWorkers sets the TURBO worker count.
func WithWorkers(n int) Option { return func(c *Config) { c.Workers = n } }

// WithMaxDepth overrides the context-stack depth limit.
func WithMaxDepth(n int) Option { return func(c *Config) { c.MaxDepth = n } }

// WithLenient toggles SPORT/TURBO's validation pre-pass.
func WithLenient(lenient bool) Option { return func(c *Config) { c.Lenient = lenient } }

// WithDeadline overrides TURBO's completion deadline.
func WithDeadline(d time.Duration) Option { return func(c *Config) { c.Deadline = d } }

// WithChunkSize overrides TURBO's target chunk size.
func WithChunkSize(n int) Option { return func(c *Config) { c.ChunkSize = n } }

// envOverrides holds the subset of Config fields FromEnv can set; kept
// separate from Config so New can apply it before explicit Options
// without redefining precedence for fields the environment never
// touches.
type envOverrides struct {
	workers *int
	noSIMD  *bool
}

func (e envOverrides) apply(c *Config) {
	if e.workers != nil {
		c.Workers = *e.workers
	}
	if e.noSIMD != nil {
		c.NoSIMD = *e.noSIMD
	}
}

// FromEnv reads the two optional environment hints spec §6 names:
// JSONMIN_WORKERS (an integer worker-count hint) and JSONMIN_NO_SIMD
// (any non-empty value disables the vectorized fast paths). Both may
// be absent; absence leaves the corresponding Config field untouched.
func FromEnv() envOverrides {
	var e envOverrides
	if v := os.Getenv("JSONMIN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			e.workers = &n
		}
	}
	if v := os.Getenv("JSONMIN_NO_SIMD"); v != "" {
		b := true
		e.noSIMD = &b
	}
	return e
}
