package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// UUID issues RFC 4122 UUIDs of version 4 (random) or 7 (time-ordered).
type UUID struct {
	version int
}

func NewUUID(version int) (*UUID, error) {
	if version != 4 && version != 7 {
		return nil, fmt.Errorf("uuid version must be 4 or 7, got %d", version)
	}
	return &UUID{version: version}, nil
}

func (g *UUID) Generate() (string, error) {
	var (
		id  uuid.UUID
		err error
	)
	if g.version == 7 {
		id, err = uuid.NewV7()
	} else {
		id, err = uuid.NewRandom()
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

func (g *UUID) GenerateBatch(count int) ([]string, error) {
	return repeat(count, g.Generate)
}

func (g *UUID) Validate(id string) (bool, string) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false, fmt.Sprintf("invalid UUID format: %v", err)
	}
	if int(parsed.Version()) != g.version {
		return false, fmt.Sprintf("expected UUID v%d, got v%d", g.version, parsed.Version())
	}
	return true, ""
}

func (g *UUID) Parse(id string) (*Fields, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID format: %w", err)
	}

	f := &Fields{
		UUIDVersion: int32(parsed.Version()),
		UUIDVariant: variantName(parsed.Variant()),
	}
	if parsed.Version() == 7 {
		sec, nsec := parsed.Time().UnixTime()
		f.TimestampMs = int64Ptr(sec*1000 + nsec/1e6)
	}
	return f, nil
}

func variantName(v uuid.Variant) string {
	switch v {
	case uuid.RFC4122:
		return "RFC4122"
	case uuid.Reserved:
		return "Reserved"
	case uuid.Microsoft:
		return "Microsoft"
	case uuid.Future:
		return "Future"
	default:
		return "Unknown"
	}
}
