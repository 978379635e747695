// Package snowflake generates 64-bit, time-ordered identifiers composed of a
// 41-bit millisecond timestamp, a 10-bit machine id and a 12-bit sequence.
package snowflake

import (
	"fmt"
	"sync"
	"sync/atomic"
)

const unset = -1

// Generator produces snowflake ids for a single machine id.
// It is safe for concurrent use.
type Generator struct {
	epoch     int64
	machineID int64
	clock     Clock
	policy    RegressionPolicy

	mu       sync.Mutex
	lastTime int64 // wall-clock ms of the last id, unset before the first
	sequence int64

	generated   atomic.Int64
	exhausted   atomic.Int64
	regressions atomic.Int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the millisecond clock. Used by tests.
func WithClock(c Clock) Option {
	return func(g *Generator) {
		g.clock = c
	}
}

// WithRegressionPolicy sets how a backwards clock is handled.
func WithRegressionPolicy(p RegressionPolicy) Option {
	return func(g *Generator) {
		g.policy = p
	}
}

// New creates a Generator.
// machineID must be in range [0, 1023].
// epoch is the custom epoch in unix milliseconds.
func New(machineID, epoch int64, opts ...Option) (*Generator, error) {
	if machineID < 0 || machineID > MaxMachineID {
		return nil, fmt.Errorf("%w: must be between 0 and %d, got %d", ErrInvalidMachineID, MaxMachineID, machineID)
	}
	g := &Generator{
		epoch:     epoch,
		machineID: machineID,
		clock:     SystemClock,
		policy:    RejectRegression,
		lastTime:  unset,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) MachineID() int64 { return g.machineID }

func (g *Generator) Epoch() int64 { return g.epoch }

// Generate returns the next id. It blocks while the sequence for the current
// millisecond is exhausted.
func (g *Generator) Generate() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nextLocked()
}

// GenerateBatch returns count strictly increasing ids produced under one lock.
// count must be positive.
func (g *Generator) GenerateBatch(count int) ([]int64, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidCount, count)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		id, err := g.nextLocked()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// nextLocked must be called with g.mu held.
func (g *Generator) nextLocked() (int64, error) {
	now := g.clock()
	if now < g.epoch {
		return 0, fmt.Errorf("%w: current=%d, epoch=%d", ErrBeforeEpoch, now, g.epoch)
	}

	if now < g.lastTime {
		g.regressions.Add(1)
		if g.policy != ReuseLastTimestamp {
			return 0, &ClockRegressionError{Now: now, Last: g.lastTime}
		}
		now = g.lastTime
	}

	if now == g.lastTime {
		g.sequence = (g.sequence + 1) & MaxSequence
		if g.sequence == 0 {
			g.exhausted.Add(1)
			now = waitAfter(g.clock, g.lastTime)
		}
	} else {
		g.sequence = 0
	}

	elapsed := now - g.epoch
	if elapsed > MaxTimestamp {
		return 0, fmt.Errorf("%w: %dms since epoch", ErrTimestampOverflow, elapsed)
	}

	g.lastTime = now
	g.generated.Add(1)
	return Compose(elapsed, g.machineID, g.sequence), nil
}

// Stats is a snapshot of generator counters.
type Stats struct {
	Generated         int64
	SequenceExhausted int64
	ClockRegressions  int64
}

func (g *Generator) Stats() Stats {
	return Stats{
		Generated:         g.generated.Load(),
		SequenceExhausted: g.exhausted.Load(),
		ClockRegressions:  g.regressions.Load(),
	}
}
