package snowflake

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type fakeClock struct {
	ms atomic.Int64
}

func newFakeClock(ms int64) *fakeClock {
	c := &fakeClock{}
	c.ms.Store(ms)
	return c
}

func (c *fakeClock) Now() int64      { return c.ms.Load() }
func (c *fakeClock) Set(ms int64)    { c.ms.Store(ms) }
func (c *fakeClock) Advance(d int64) { c.ms.Add(d) }

func TestNewValidatesMachineID(t *testing.T) {
	for _, id := range []int64{-1, 1024, 1 << 20} {
		_, err := New(id, DefaultEpoch)
		require.Error(t, err, "machine id %d", id)
		assert.True(t, errors.Is(err, ErrInvalidMachineID))
	}
	for _, id := range []int64{0, 1, 512, MaxMachineID} {
		g, err := New(id, DefaultEpoch)
		require.NoError(t, err, "machine id %d", id)
		assert.Equal(t, id, g.MachineID())
		assert.Equal(t, DefaultEpoch, g.Epoch())
	}
}

func TestLayoutConstants(t *testing.T) {
	assert.Equal(t, 12, machineIDShift)
	assert.Equal(t, 22, timestampShift)
	assert.Equal(t, 4095, MaxSequence)
	assert.Equal(t, 1023, MaxMachineID)
	assert.Equal(t, int64(1609459200000), DefaultEpoch)

	id := Compose(1, 1, 1)
	assert.Equal(t, int64(1<<22|1<<12|1), id)
}

func TestGenerateFieldRoundTrip(t *testing.T) {
	g, err := New(321, DefaultEpoch)
	require.NoError(t, err)

	before := time.Now().UnixMilli()
	id, err := g.Generate()
	after := time.Now().UnixMilli()
	require.NoError(t, err)
	require.Positive(t, id)

	p := Decompose(id, DefaultEpoch)
	assert.Equal(t, int64(321), p.MachineID)
	assert.Equal(t, int64(0), p.Sequence)
	assert.GreaterOrEqual(t, p.TimestampMs, before)
	assert.LessOrEqual(t, p.TimestampMs, after)
}

func TestGenerateSameMillisecondIncrementsSequence(t *testing.T) {
	clock := newFakeClock(DefaultEpoch + 1000)
	g, err := New(7, DefaultEpoch, WithClock(clock.Now))
	require.NoError(t, err)

	for want := int64(0); want < 5; want++ {
		id, err := g.Generate()
		require.NoError(t, err)
		p := Decompose(id, DefaultEpoch)
		assert.Equal(t, want, p.Sequence)
		assert.Equal(t, DefaultEpoch+1000, p.TimestampMs)
	}

	clock.Advance(1)
	id, err := g.Generate()
	require.NoError(t, err)
	p := Decompose(id, DefaultEpoch)
	assert.Equal(t, int64(0), p.Sequence, "sequence resets when the millisecond advances")
	assert.Equal(t, DefaultEpoch+1001, p.TimestampMs)
}

func TestSequenceRolloverBlocksUntilClockAdvances(t *testing.T) {
	const start = DefaultEpoch + 5000
	clock := newFakeClock(start)
	g, err := New(1, DefaultEpoch, WithClock(clock.Now))
	require.NoError(t, err)

	var prev int64 = -1
	for i := 0; i <= MaxSequence; i++ {
		id, err := g.Generate()
		require.NoError(t, err)
		p := Decompose(id, DefaultEpoch)
		require.Equal(t, int64(i), p.Sequence)
		require.Equal(t, start, p.TimestampMs)
		require.Greater(t, id, prev)
		prev = id
	}

	done := make(chan int64, 1)
	go func() {
		id, err := g.Generate()
		if err != nil {
			close(done)
			return
		}
		done <- id
	}()

	select {
	case <-done:
		t.Fatal("generate returned before the clock advanced")
	case <-time.After(50 * time.Millisecond):
	}

	clock.Advance(1)

	select {
	case id, ok := <-done:
		require.True(t, ok, "generate failed after the clock advanced")
		p := Decompose(id, DefaultEpoch)
		assert.Equal(t, int64(0), p.Sequence)
		assert.Equal(t, start+1, p.TimestampMs)
		assert.Greater(t, id, prev)
	case <-time.After(2 * time.Second):
		t.Fatal("generate did not return after the clock advanced")
	}

	assert.Equal(t, int64(1), g.Stats().SequenceExhausted)
	assert.Equal(t, int64(MaxSequence+2), g.Stats().Generated)
}

func TestClockRegressionRejected(t *testing.T) {
	clock := newFakeClock(DefaultEpoch + 100)
	g, err := New(2, DefaultEpoch, WithClock(clock.Now))
	require.NoError(t, err)

	first, err := g.Generate()
	require.NoError(t, err)

	clock.Set(DefaultEpoch + 90)
	_, err = g.Generate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClockRegression))

	var regErr *ClockRegressionError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, DefaultEpoch+90, regErr.Now)
	assert.Equal(t, DefaultEpoch+100, regErr.Last)
	assert.Contains(t, regErr.Error(), "10ms")

	// State is untouched: once the clock catches up the sequence continues.
	clock.Set(DefaultEpoch + 100)
	next, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, first+1, next)
	assert.Equal(t, int64(1), g.Stats().ClockRegressions)
}

func TestClockRegressionReusesLastTimestamp(t *testing.T) {
	clock := newFakeClock(DefaultEpoch + 100)
	g, err := New(2, DefaultEpoch, WithClock(clock.Now), WithRegressionPolicy(ReuseLastTimestamp))
	require.NoError(t, err)

	first, err := g.Generate()
	require.NoError(t, err)

	clock.Set(DefaultEpoch + 50)
	second, err := g.Generate()
	require.NoError(t, err)
	assert.Greater(t, second, first)

	p := Decompose(second, DefaultEpoch)
	assert.Equal(t, DefaultEpoch+100, p.TimestampMs)
	assert.Equal(t, int64(1), p.Sequence)
	assert.Equal(t, int64(1), g.Stats().ClockRegressions)

	clock.Set(DefaultEpoch + 101)
	third, err := g.Generate()
	require.NoError(t, err)
	p = Decompose(third, DefaultEpoch)
	assert.Equal(t, DefaultEpoch+101, p.TimestampMs)
	assert.Equal(t, int64(0), p.Sequence)
}

func TestGenerateBeforeEpoch(t *testing.T) {
	clock := newFakeClock(DefaultEpoch - 1)
	g, err := New(0, DefaultEpoch, WithClock(clock.Now))
	require.NoError(t, err)

	_, err = g.Generate()
	assert.True(t, errors.Is(err, ErrBeforeEpoch))
}

func TestGenerateTimestampOverflow(t *testing.T) {
	clock := newFakeClock(DefaultEpoch + MaxTimestamp + 1)
	g, err := New(0, DefaultEpoch, WithClock(clock.Now))
	require.NoError(t, err)

	_, err = g.Generate()
	assert.True(t, errors.Is(err, ErrTimestampOverflow))

	clock.Set(DefaultEpoch + MaxTimestamp)
	id, err := g.Generate()
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestEpochBoundary(t *testing.T) {
	clock := newFakeClock(DefaultEpoch)
	g, err := New(9, DefaultEpoch, WithClock(clock.Now))
	require.NoError(t, err)

	id, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, int64(0), id>>timestampShift)
	assert.Equal(t, int64(9<<machineIDShift), id)

	now := time.Now().UnixMilli()
	g, err = New(9, now)
	require.NoError(t, err)
	id, err = g.Generate()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, id>>timestampShift, int64(0))
	assert.Less(t, id>>timestampShift, int64(1000))
}

func TestGenerateIsMonotonic(t *testing.T) {
	g, err := New(5, DefaultEpoch)
	require.NoError(t, err)

	prev, err := g.Generate()
	require.NoError(t, err)
	for i := 0; i < 20000; i++ {
		id, err := g.Generate()
		require.NoError(t, err)
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestGenerateConcurrentUniqueness(t *testing.T) {
	const (
		workers = 16
		perWork = 2000
	)
	g, err := New(42, DefaultEpoch)
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		all = make(map[int64]struct{}, workers*perWork)
	)
	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			local := make([]int64, 0, perWork)
			for i := 0; i < perWork; i++ {
				id, err := g.Generate()
				if err != nil {
					return err
				}
				local = append(local, id)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				all[id] = struct{}{}
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	assert.Len(t, all, workers*perWork)

	for id := range all {
		assert.Equal(t, int64(42), Decompose(id, DefaultEpoch).MachineID)
	}
}

func TestGenerateHappensBeforeOrdering(t *testing.T) {
	g, err := New(3, DefaultEpoch)
	require.NoError(t, err)

	// Each goroutine waits for its predecessor to finish before generating.
	const n = 64
	ids := make([]int64, n)
	prevDone := make(chan struct{})
	close(prevDone)
	var eg errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		wait := prevDone
		done := make(chan struct{})
		prevDone = done
		eg.Go(func() error {
			<-wait
			defer close(done)
			id, err := g.Generate()
			ids[i] = id
			return err
		})
	}
	require.NoError(t, eg.Wait())
	assert.True(t, sort.SliceIsSorted(ids, func(a, b int) bool { return ids[a] < ids[b] }))
}

func TestGenerateBatch(t *testing.T) {
	clock := newFakeClock(DefaultEpoch + 10)
	g, err := New(11, DefaultEpoch, WithClock(clock.Now))
	require.NoError(t, err)

	ids, err := g.GenerateBatch(100)
	require.NoError(t, err)
	require.Len(t, ids, 100)
	for i, id := range ids {
		p := Decompose(id, DefaultEpoch)
		assert.Equal(t, int64(i), p.Sequence)
		assert.Equal(t, int64(11), p.MachineID)
	}

	clock.Set(DefaultEpoch + 5)
	_, err = g.GenerateBatch(3)
	assert.True(t, errors.Is(err, ErrClockRegression))
}

func TestGenerateBatchRejectsNonPositiveCount(t *testing.T) {
	clock := newFakeClock(DefaultEpoch + 10)
	g, err := New(11, DefaultEpoch, WithClock(clock.Now))
	require.NoError(t, err)

	for _, count := range []int{0, -1} {
		ids, err := g.GenerateBatch(count)
		assert.Nil(t, ids)
		assert.True(t, errors.Is(err, ErrInvalidCount), "count %d", count)
	}
	assert.Zero(t, g.Stats().Generated)

	id, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, int64(0), Decompose(id, DefaultEpoch).Sequence)
}

func TestParseRegressionPolicy(t *testing.T) {
	p, err := ParseRegressionPolicy("")
	require.NoError(t, err)
	assert.Equal(t, RejectRegression, p)

	p, err = ParseRegressionPolicy(" Reuse ")
	require.NoError(t, err)
	assert.Equal(t, ReuseLastTimestamp, p)
	assert.Equal(t, "reuse", p.String())

	_, err = ParseRegressionPolicy("ignore")
	assert.True(t, errors.Is(err, ErrUnknownPolicy))
}
