// Package idgen exposes every identifier kind the service issues behind one
// string-based Generator interface.
package idgen

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/weiawesome/wes-io-live/snowflake-service/internal/snowflake"
)

// Kind names an identifier format.
type Kind string

const (
	KindSnowflake Kind = "snowflake"
	KindUUID      Kind = "uuid"
	KindULID      Kind = "ulid"
	KindKSUID     Kind = "ksuid"
	KindNanoID    Kind = "nanoid"
	KindCUID2     Kind = "cuid2"
)

var (
	ErrUnknownType = errors.New("unknown id type")

	// ErrInvalidCount is returned by GenerateBatch for a non-positive count.
	ErrInvalidCount = snowflake.ErrInvalidCount
)

// ParseKind normalizes a request value. An empty value selects KindSnowflake.
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindSnowflake
	}
	return k
}

// Generator issues, validates and parses ids of one kind.
type Generator interface {
	Generate() (string, error)
	GenerateBatch(count int) ([]string, error)
	Validate(id string) (bool, string) // (valid, reason)
	Parse(id string) (*Fields, error)
}

// Fields holds what can be recovered from an id. Nil or empty fields do not
// apply to the kind; a snowflake always carries all three numeric parts, even
// when they are zero.
type Fields struct {
	TimestampMs   *int64 `json:"timestamp_ms,omitempty"`
	MachineID     *int64 `json:"machine_id,omitempty"`
	Sequence      *int64 `json:"sequence,omitempty"`
	UUIDVersion   int32  `json:"uuid_version,omitempty"`
	UUIDVariant   string `json:"uuid_variant,omitempty"`
	RandomPayload string `json:"random_payload,omitempty"` // hex
	IDLength      int32  `json:"id_length,omitempty"`
	Alphabet      string `json:"alphabet,omitempty"`
}

// Registry maps kinds to generators.
type Registry struct {
	generators map[Kind]Generator
}

func NewRegistry() *Registry {
	return &Registry{generators: make(map[Kind]Generator)}
}

// Register adds or replaces the generator for kind.
func (r *Registry) Register(kind Kind, gen Generator) {
	r.generators[kind] = gen
}

// Lookup returns the generator for kind, or ErrUnknownType.
func (r *Registry) Lookup(kind Kind) (Generator, error) {
	gen, ok := r.generators[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(kind))
	}
	return gen, nil
}

// Kinds returns the registered kinds in lexical order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.generators))
	for k := range r.generators {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func int64Ptr(v int64) *int64 { return &v }

// repeat builds a batch from a single-id function.
func repeat(count int, next func() (string, error)) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidCount, count)
	}
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id, err := next()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
