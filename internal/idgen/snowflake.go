package idgen

import (
	"fmt"
	"time"

	"github.com/weiawesome/wes-io-live/snowflake-service/internal/snowflake"
)

// Snowflake adapts a snowflake.Generator to the string interface, rendering
// ids in a fixed encoding.
type Snowflake struct {
	gen      *snowflake.Generator
	encoding snowflake.Encoding
	now      func() time.Time
}

func NewSnowflake(gen *snowflake.Generator, encoding snowflake.Encoding) *Snowflake {
	return &Snowflake{gen: gen, encoding: encoding, now: time.Now}
}

// Core returns the wrapped generator.
func (s *Snowflake) Core() *snowflake.Generator { return s.gen }

func (s *Snowflake) Encoding() snowflake.Encoding { return s.encoding }

func (s *Snowflake) Generate() (string, error) {
	id, err := s.gen.Generate()
	if err != nil {
		return "", err
	}
	return s.encoding.Encode(id), nil
}

func (s *Snowflake) GenerateBatch(count int) ([]string, error) {
	ids, err := s.gen.GenerateBatch(count)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = s.encoding.Encode(id)
	}
	return out, nil
}

func (s *Snowflake) Validate(id string) (bool, string) {
	n, err := s.encoding.Decode(id)
	if err != nil {
		return false, err.Error()
	}
	if n < 0 {
		return false, "id must be a positive integer"
	}
	p := snowflake.Decompose(n, s.gen.Epoch())
	if p.TimestampMs > s.now().UnixMilli() {
		return false, "timestamp is in the future"
	}
	return true, ""
}

func (s *Snowflake) Parse(id string) (*Fields, error) {
	n, err := s.encoding.Decode(id)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("id must be a positive integer")
	}
	p := snowflake.Decompose(n, s.gen.Epoch())
	return &Fields{
		TimestampMs: int64Ptr(p.TimestampMs),
		MachineID:   int64Ptr(p.MachineID),
		Sequence:    int64Ptr(p.Sequence),
	}, nil
}
