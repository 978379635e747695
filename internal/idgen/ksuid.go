package idgen

import (
	"encoding/hex"
	"fmt"

	"github.com/segmentio/ksuid"
)

const ksuidEncodedLen = 27

// KSUID issues K-sortable ids with second precision.
type KSUID struct{}

func NewKSUID() *KSUID { return &KSUID{} }

func (g *KSUID) Generate() (string, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate KSUID: %w", err)
	}
	return id.String(), nil
}

func (g *KSUID) GenerateBatch(count int) ([]string, error) {
	return repeat(count, g.Generate)
}

func (g *KSUID) Validate(id string) (bool, string) {
	if len(id) != ksuidEncodedLen {
		return false, fmt.Sprintf("expected length %d, got %d", ksuidEncodedLen, len(id))
	}
	if _, err := ksuid.Parse(id); err != nil {
		return false, fmt.Sprintf("invalid KSUID format: %v", err)
	}
	return true, ""
}

func (g *KSUID) Parse(id string) (*Fields, error) {
	parsed, err := ksuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid KSUID format: %w", err)
	}
	return &Fields{
		TimestampMs:   int64Ptr(parsed.Time().UnixMilli()),
		RandomPayload: hex.EncodeToString(parsed.Payload()),
	}, nil
}
