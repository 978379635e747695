package snowflake

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Clock returns the current wall-clock time in unix milliseconds.
type Clock func() int64

// SystemClock reads time.Now.
func SystemClock() int64 {
	return time.Now().UnixMilli()
}

// RegressionPolicy decides what Generate does when the clock is observed
// behind the last timestamp it used.
type RegressionPolicy int

const (
	// RejectRegression fails the call with a *ClockRegressionError and leaves
	// the generator state untouched.
	RejectRegression RegressionPolicy = iota
	// ReuseLastTimestamp keeps issuing ids in the last observed millisecond,
	// continuing its sequence.
	ReuseLastTimestamp
)

func (p RegressionPolicy) String() string {
	switch p {
	case RejectRegression:
		return "reject"
	case ReuseLastTimestamp:
		return "reuse"
	default:
		return fmt.Sprintf("RegressionPolicy(%d)", int(p))
	}
}

// ParseRegressionPolicy maps a config value ("reject", "reuse") to a policy.
func ParseRegressionPolicy(s string) (RegressionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return RejectRegression, nil
	case "reuse":
		return ReuseLastTimestamp, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// waitAfter spins until the clock passes last, yielding between samples.
func waitAfter(clock Clock, last int64) int64 {
	now := clock()
	for now <= last {
		runtime.Gosched()
		now = clock()
	}
	return now
}
