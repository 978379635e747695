package idgen

import (
	"encoding/hex"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ULID issues lexicographically sortable ids. ids from the same millisecond
// are monotonic because ulid.Make shares one monotonic entropy source.
type ULID struct{}

func NewULID() *ULID { return &ULID{} }

func (g *ULID) Generate() (string, error) {
	return ulid.Make().String(), nil
}

func (g *ULID) GenerateBatch(count int) ([]string, error) {
	return repeat(count, g.Generate)
}

func (g *ULID) Validate(id string) (bool, string) {
	if len(id) != ulid.EncodedSize {
		return false, fmt.Sprintf("expected length %d, got %d", ulid.EncodedSize, len(id))
	}
	if _, err := ulid.ParseStrict(id); err != nil {
		return false, fmt.Sprintf("invalid ULID format: %v", err)
	}
	return true, ""
}

func (g *ULID) Parse(id string) (*Fields, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return nil, fmt.Errorf("invalid ULID format: %w", err)
	}
	return &Fields{
		TimestampMs:   int64Ptr(int64(parsed.Time())),
		RandomPayload: hex.EncodeToString(parsed.Entropy()),
	}, nil
}
