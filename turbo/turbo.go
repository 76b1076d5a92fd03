// Package turbo implements the TURBO execution strategy (spec
// component C8): validate once, split the input into safe-boundary
// chunks (package chunk), minify each chunk independently on a
// work-stealing scheduler (package sched), and concatenate the
// results in chunk-id order.
//
// The wait for chunk completion is the hand-rolled counter+condvar
// pair spec §4.8 step 6 and §5 mandate verbatim; an errgroup.Group
// supervises the submitting goroutine's lifecycle and captures its
// error, composing with — not replacing — that condvar wait.
package turbo

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.jacobcolvin.com/jsonmin/chunk"
	"go.jacobcolvin.com/jsonmin/dispatch"
	"go.jacobcolvin.com/jsonmin/internal/xlog"
	"go.jacobcolvin.com/jsonmin/jerr"
	"go.jacobcolvin.com/jsonmin/sched"
	"go.jacobcolvin.com/jsonmin/sport"
	"go.jacobcolvin.com/jsonmin/state"
	"go.jacobcolvin.com/jsonmin/validate"
)

// DefaultTimeout is the hard deadline for waiting on chunk completion
// (spec §4.8 step 6: "a hard deadline (default 30 s)").
const DefaultTimeout = 30 * time.Second

// Config holds TURBO's tunables, set via functional Options.
type Config struct {
	Workers   int
	ChunkSize int // 0 selects dispatch.SelectChunkSize
	Lenient   bool
	Timeout   time.Duration
	Logger    *zap.Logger
	MaxDepth  int // 0 selects state.DefaultMaxDepth
}

// Option configures a TURBO run.
type Option func(*Config)

// WithWorkers overrides the worker count (default: GOMAXPROCS; a
// value below 1 also selects GOMAXPROCS).
func WithWorkers(n int) Option { return func(c *Config) { c.Workers = n } }

// WithChunkSize overrides the target chunk size in bytes.
func WithChunkSize(n int) Option { return func(c *Config) { c.ChunkSize = n } }

// WithLenient skips the whole-input validation pre-pass.
func WithLenient(lenient bool) Option { return func(c *Config) { c.Lenient = lenient } }

// WithTimeout overrides the completion deadline.
func WithTimeout(d time.Duration) Option { return func(c *Config) { c.Timeout = d } }

// WithLogger injects a *zap.Logger for scheduler diagnostics.
func WithLogger(l *zap.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithMaxDepth overrides the context-stack depth limit applied by the
// whole-input validation pre-pass.
func WithMaxDepth(n int) Option { return func(c *Config) { c.MaxDepth = n } }

func defaultConfig() Config {
	return Config{
		Workers:  runtime.GOMAXPROCS(0),
		Timeout:  DefaultTimeout,
		Logger:   xlog.Nop(),
		MaxDepth: state.DefaultMaxDepth,
	}
}

type chunkResult struct {
	out []byte
	err error
}

// Minify runs the full TURBO pipeline over a complete in-memory input.
func Minify(input []byte, opts ...Option) ([]byte, error) {
	var out bytes.Buffer
	if err := MinifyToWriter(input, &out, opts...); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// MinifyToWriter runs the full TURBO pipeline, writing the
// concatenated, ordered output to w.
func MinifyToWriter(input []byte, w io.Writer, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = state.DefaultMaxDepth
	}

	if !cfg.Lenient {
		if err := validate.ValidateWithDepth(input, cfg.MaxDepth); err != nil {
			return err
		}
	}

	if len(input) == 0 {
		return nil
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = dispatch.SelectChunkSize(int64(len(input)), cfg.Workers)
	}
	ranges := chunk.Split(input, chunkSize, chunk.DefaultOvershoot)

	results := make([]chunkResult, len(ranges))

	var mu sync.Mutex
	cond := sync.NewCond(&mu)
	completed := 0
	var firstErr error

	pool := sched.New(cfg.Workers,
		sched.WithLogger(cfg.Logger),
		sched.WithOnComplete(func(_ sched.Task, err error) {
			mu.Lock()
			completed++
			if err != nil && firstErr == nil {
				firstErr = err
			}
			cond.Signal()
			mu.Unlock()
		}),
	)
	pool.Start()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		for i, r := range ranges {
			i, r := i, r
			task := sched.Task{ID: r.ID, Run: func() error {
				out, err := sport.MinifyLenient(input[r.Start:r.End])
				results[i] = chunkResult{out: out, err: err}
				return err
			}}
			for {
				if err := pool.Submit(task); err == nil {
					break
				} else if err == sched.ErrStopped {
					return err
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Microsecond):
				}
			}
		}
		return nil
	})

	// Wake the condvar wait below when the deadline expires, so the
	// wait loop can re-check the context without a spurious poll.
	go func() {
		<-ctx.Done()
		mu.Lock()
		cond.Broadcast()
		mu.Unlock()
	}()

	submitErr := g.Wait()

	mu.Lock()
	for completed < len(ranges) && ctx.Err() == nil {
		cond.Wait()
	}
	timedOut := completed < len(ranges)
	mu.Unlock()

	pool.Stop()

	if submitErr != nil && submitErr != context.DeadlineExceeded {
		return submitErr
	}
	if timedOut {
		return &jerr.MinifyError{Kind: jerr.KindTimeout}
	}
	if firstErr != nil {
		return firstErr
	}

	for _, r := range results {
		if _, err := w.Write(r.out); err != nil {
			return &jerr.MinifyError{Kind: jerr.KindOutOfMemory, Err: err}
		}
	}
	return nil
}
