// Package sched implements the work-stealing scheduler (spec
// component C7) that backs TURBO: a pool of worker goroutines, each
// owning a bounded ring-buffer deque (package-private type queue),
// with four pluggable victim-selection strategies for stealing when a
// worker's own queue runs dry. Submission routes to the least-loaded
// queue; shutdown is cooperative via an atomic flag, draining pending
// items before workers exit.
//
// Concurrency follows the style the pack uses for its own worker
// pools (atomic counters guarding shared state rather than a single
// coarse mutex, e.g. pithecene-io-quarry's fan-out operator), adapted
// here to the CAS-based deque spec §4.7 and §9 require verbatim.
package sched

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"go.jacobcolvin.com/jsonmin/internal/xlog"
)

// VictimStrategy selects which other worker's queue an idle worker
// attempts to steal from.
type VictimStrategy int

const (
	// StrategyRandom picks a uniformly random victim each attempt.
	StrategyRandom VictimStrategy = iota
	// StrategyRoundRobin cycles through victims in a fixed rotation
	// shared across all workers via an atomic counter.
	StrategyRoundRobin
	// StrategyNearestNeighbor tries the victims closest in worker
	// index first, expanding outward.
	StrategyNearestNeighbor
	// StrategyWorkGuided tries the victim with the largest apparent
	// queue length first (a racy snapshot; see queue.approxLen).
	StrategyWorkGuided
)

// DefaultQueueCapacity is the per-worker ring buffer capacity used
// when none is configured. Must be a power of two; non-power-of-two
// values are rounded up.
const DefaultQueueCapacity = 256

// DefaultMaxStealAttempts is how many consecutive failed steal
// rounds a worker tolerates before idling.
const DefaultMaxStealAttempts = 16

// DefaultIdleSleep is how long an idle worker sleeps after exhausting
// MAX_STEAL_ATTEMPTS before retrying (spec §4.7).
const DefaultIdleSleep = 200 * time.Microsecond

// Task is a unit of work submitted to the pool. ID is opaque to the
// scheduler; callers use it to correlate completions (TURBO uses it
// as the chunk id).
type Task struct {
	ID  int
	Run func() error
}

// ErrStopped is returned by Submit once the pool has begun stopping.
var ErrStopped = errors.New("sched: pool is stopping")

// ErrQueueFull is returned by Submit when every queue rejected the
// item (all at capacity).
var ErrQueueFull = errors.New("sched: all worker queues full")

// Option configures a Pool at construction.
type Option func(*Pool)

// WithQueueCapacity overrides the per-worker queue capacity.
func WithQueueCapacity(n int) Option { return func(p *Pool) { p.queueCapacity = n } }

// WithStrategy overrides the victim-selection strategy.
func WithStrategy(s VictimStrategy) Option { return func(p *Pool) { p.strategy = s } }

// WithMaxStealAttempts overrides how many failed steal rounds a
// worker tolerates before idling.
func WithMaxStealAttempts(n int) Option { return func(p *Pool) { p.maxStealAttempts = n } }

// WithIdleSleep overrides the idle-worker backoff duration.
func WithIdleSleep(d time.Duration) Option { return func(p *Pool) { p.idleSleep = d } }

// WithLogger injects a *zap.Logger for lifecycle diagnostics. Defaults
// to a no-op logger; the data path (running a Task) never logs.
func WithLogger(l *zap.Logger) Option { return func(p *Pool) { p.log = l } }

// WithOnComplete registers a callback invoked after every Task runs,
// with the error it returned (nil on success). Used by TURBO to drive
// its completion counter and error slot.
func WithOnComplete(f func(Task, error)) Option { return func(p *Pool) { p.onComplete = f } }

// Pool is a work-stealing scheduler of W workers.
type Pool struct {
	queues           []*queue
	queueCapacity    int
	strategy         VictimStrategy
	maxStealAttempts int
	idleSleep        time.Duration
	log              *zap.Logger
	onComplete       func(Task, error)

	rrCursor   atomic.Uint64 // shared round-robin cursor for StrategyRoundRobin stealing
	shouldStop atomic.Bool
	wg         sync.WaitGroup
	started    bool
}

// New constructs a Pool of W workers. W < 1 is treated as 1.
func New(w int, opts ...Option) *Pool {
	if w < 1 {
		w = 1
	}
	p := &Pool{
		queueCapacity:    DefaultQueueCapacity,
		strategy:         StrategyWorkGuided,
		maxStealAttempts: DefaultMaxStealAttempts,
		idleSleep:        DefaultIdleSleep,
		log:              xlog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queues = make([]*queue, w)
	for i := range p.queues {
		p.queues[i] = newQueue(p.queueCapacity)
	}
	return p
}

// Workers reports the configured worker count W.
func (p *Pool) Workers() int { return len(p.queues) }

// Start launches the W worker goroutines. It is not safe to call
// Start more than once on the same Pool.
func (p *Pool) Start() {
	if p.started {
		return
	}
	p.started = true
	p.wg.Add(len(p.queues))
	for i := range p.queues {
		go p.workerLoop(i)
	}
	p.log.Debug("scheduler started", zap.Int("workers", len(p.queues)))
}

// Submit routes item to the least-loaded queue (spec §4.7: "submit by
// external producer routes to the least-loaded queue"). It fails once
// Stop has been called, or if every queue is at capacity.
func (p *Pool) Submit(t Task) error {
	if p.shouldStop.Load() {
		return ErrStopped
	}
	best := -1
	bestLen := -1
	for i, q := range p.queues {
		n := q.approxLen()
		if bestLen == -1 || n < bestLen {
			bestLen, best = n, i
		}
	}
	if p.queues[best].push(t) {
		return nil
	}
	// Least-loaded queue was nonetheless full (a burst); try the rest.
	for i, q := range p.queues {
		if i == best {
			continue
		}
		if q.push(t) {
			return nil
		}
	}
	return ErrQueueFull
}

// Stop signals all workers to drain their remaining items and exit,
// then blocks until they have joined.
func (p *Pool) Stop() {
	p.shouldStop.Store(true)
	p.wg.Wait()
	p.log.Debug("scheduler stopped")
}

func (p *Pool) workerLoop(id int) {
	defer p.wg.Done()
	attempts := 0
	for {
		item, ok := p.queues[id].pop()
		if !ok {
			item, ok = p.stealFrom(id)
		}
		if ok {
			p.run(item.(Task))
			attempts = 0
			continue
		}
		if p.shouldStop.Load() {
			return
		}
		attempts++
		if attempts >= p.maxStealAttempts {
			time.Sleep(p.idleSleep)
			attempts = 0
		}
	}
}

func (p *Pool) run(t Task) {
	err := t.Run()
	if err != nil {
		p.log.Debug("task failed", zap.Int("task_id", t.ID), zap.Error(err))
	}
	if p.onComplete != nil {
		p.onComplete(t, err)
	}
}

func (p *Pool) stealFrom(self int) (any, bool) {
	w := len(p.queues)
	if w == 1 {
		return nil, false
	}
	for _, victim := range p.victimOrder(self) {
		if item, ok := p.queues[victim].steal(); ok {
			return item, true
		}
	}
	return nil, false
}

// victimOrder returns the order in which self attempts to steal from
// other workers, per the configured strategy.
func (p *Pool) victimOrder(self int) []int {
	w := len(p.queues)
	order := make([]int, 0, w-1)
	switch p.strategy {
	case StrategyRoundRobin:
		start := int(p.rrCursor.Add(1)) % w
		for i := 0; i < w; i++ {
			v := (start + i) % w
			if v != self {
				order = append(order, v)
			}
		}
	case StrategyNearestNeighbor:
		for d := 1; d < w; d++ {
			if v := self + d; v < w {
				order = append(order, v)
			}
			if v := self - d; v >= 0 {
				order = append(order, v)
			}
		}
	case StrategyWorkGuided:
		for i := 0; i < w; i++ {
			if i != self {
				order = append(order, i)
			}
		}
		sortByApproxLenDesc(order, p.queues)
	default: // StrategyRandom
		for i := 0; i < w; i++ {
			if i != self {
				order = append(order, i)
			}
		}
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return order
}

func sortByApproxLenDesc(order []int, queues []*queue) {
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && queues[order[j]].approxLen() > queues[order[j-1]].approxLen(); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
}
