package idgen

import (
	"fmt"

	"github.com/nrednav/cuid2"
)

const DefaultCUID2Length = 24

// CUID2 issues collision-resistant ids of a fixed length.
type CUID2 struct {
	length int
	next   func() string
}

// NewCUID2 validates length in [2, 32].
func NewCUID2(length int) (*CUID2, error) {
	if length < 2 || length > 32 {
		return nil, fmt.Errorf("cuid2 length must be between 2 and 32, got %d", length)
	}
	next, err := cuid2.Init(cuid2.WithLength(length))
	if err != nil {
		return nil, fmt.Errorf("failed to init CUID2 generator: %w", err)
	}
	return &CUID2{length: length, next: next}, nil
}

func (g *CUID2) Generate() (string, error) {
	return g.next(), nil
}

func (g *CUID2) GenerateBatch(count int) ([]string, error) {
	return repeat(count, g.Generate)
}

func (g *CUID2) Validate(id string) (bool, string) {
	if len(id) != g.length {
		return false, fmt.Sprintf("expected length %d, got %d", g.length, len(id))
	}
	if !cuid2.IsCuid(id) {
		return false, "invalid CUID2 format"
	}
	return true, ""
}

func (g *CUID2) Parse(id string) (*Fields, error) {
	if ok, reason := g.Validate(id); !ok {
		return nil, fmt.Errorf("invalid CUID2: %s", reason)
	}
	return &Fields{IDLength: int32(len(id))}, nil
}
