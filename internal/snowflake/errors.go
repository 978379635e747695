package snowflake

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMachineID  = errors.New("invalid machine id")
	ErrClockRegression   = errors.New("clock moved backwards")
	ErrBeforeEpoch       = errors.New("current time is before epoch")
	ErrTimestampOverflow = errors.New("timestamp exceeds 41 bits")
	ErrInvalidCount      = errors.New("invalid batch count")
	ErrMalformedID       = errors.New("malformed id")
	ErrUnknownEncoding   = errors.New("unknown encoding")
	ErrUnknownPolicy     = errors.New("unknown clock regression policy")
)

// ClockRegressionError reports a clock sample older than the last one used.
type ClockRegressionError struct {
	Now  int64
	Last int64
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf("clock moved backwards by %dms: current=%d, last=%d", e.Last-e.Now, e.Now, e.Last)
}

func (e *ClockRegressionError) Is(target error) bool {
	return target == ErrClockRegression
}
