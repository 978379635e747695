package idgen

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultNanoIDSize     = 21
	DefaultNanoIDAlphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NanoID issues random ids of a fixed size over a configurable alphabet.
type NanoID struct {
	size     int
	alphabet string
}

// NewNanoID validates size in [1, 256] and an alphabet of at least 2 characters.
func NewNanoID(size int, alphabet string) (*NanoID, error) {
	if size < 1 || size > 256 {
		return nil, fmt.Errorf("nanoid size must be between 1 and 256, got %d", size)
	}
	if len(alphabet) < 2 {
		return nil, fmt.Errorf("nanoid alphabet must have at least 2 characters, got %d", len(alphabet))
	}
	return &NanoID{size: size, alphabet: alphabet}, nil
}

func (g *NanoID) Generate() (string, error) {
	id, err := gonanoid.Generate(g.alphabet, g.size)
	if err != nil {
		return "", fmt.Errorf("failed to generate NanoID: %w", err)
	}
	return id, nil
}

func (g *NanoID) GenerateBatch(count int) ([]string, error) {
	return repeat(count, g.Generate)
}

func (g *NanoID) Validate(id string) (bool, string) {
	if len(id) != g.size {
		return false, fmt.Sprintf("expected length %d, got %d", g.size, len(id))
	}
	if i := strings.IndexFunc(id, func(r rune) bool { return !strings.ContainsRune(g.alphabet, r) }); i >= 0 {
		return false, fmt.Sprintf("character %q not in alphabet", id[i])
	}
	return true, ""
}

func (g *NanoID) Parse(id string) (*Fields, error) {
	if ok, reason := g.Validate(id); !ok {
		return nil, fmt.Errorf("invalid NanoID: %s", reason)
	}
	return &Fields{
		IDLength: int32(len(id)),
		Alphabet: g.alphabet,
	}, nil
}
