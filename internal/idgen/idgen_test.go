package idgen

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/snowflake-service/internal/snowflake"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	core, err := snowflake.New(12, snowflake.DefaultEpoch)
	require.NoError(t, err)
	uuidGen, err := NewUUID(4)
	require.NoError(t, err)
	nanoGen, err := NewNanoID(DefaultNanoIDSize, DefaultNanoIDAlphabet)
	require.NoError(t, err)
	cuidGen, err := NewCUID2(DefaultCUID2Length)
	require.NoError(t, err)

	r := NewRegistry()
	r.Register(KindSnowflake, NewSnowflake(core, snowflake.EncodingDecimal))
	r.Register(KindUUID, uuidGen)
	r.Register(KindULID, NewULID())
	r.Register(KindKSUID, NewKSUID())
	r.Register(KindNanoID, nanoGen)
	r.Register(KindCUID2, cuidGen)
	return r
}

func TestRegistryLookup(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, []Kind{KindCUID2, KindKSUID, KindNanoID, KindSnowflake, KindULID, KindUUID}, r.Kinds())

	_, err := r.Lookup("flake")
	assert.True(t, errors.Is(err, ErrUnknownType))

	gen, err := r.Lookup(ParseKind(""))
	require.NoError(t, err)
	assert.IsType(t, &Snowflake{}, gen)

	assert.Equal(t, KindULID, ParseKind(" ULID "))
}

func TestEveryKindGeneratesValidParsableIDs(t *testing.T) {
	r := newTestRegistry(t)
	for _, kind := range r.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			gen, err := r.Lookup(kind)
			require.NoError(t, err)

			ids, err := gen.GenerateBatch(50)
			require.NoError(t, err)
			require.Len(t, ids, 50)

			seen := make(map[string]struct{}, len(ids))
			for _, id := range ids {
				ok, reason := gen.Validate(id)
				assert.True(t, ok, "%s: %s", id, reason)
				_, err := gen.Parse(id)
				assert.NoError(t, err)
				seen[id] = struct{}{}
			}
			assert.Len(t, seen, len(ids))
		})
	}
}

func TestEveryKindRejectsNonPositiveBatch(t *testing.T) {
	r := newTestRegistry(t)
	for _, kind := range r.Kinds() {
		gen, err := r.Lookup(kind)
		require.NoError(t, err)
		for _, count := range []int{0, -1} {
			ids, err := gen.GenerateBatch(count)
			assert.Nil(t, ids)
			assert.True(t, errors.Is(err, ErrInvalidCount), "%s count %d", kind, count)
		}
	}
}

func TestSnowflakeAdapter(t *testing.T) {
	core, err := snowflake.New(99, snowflake.DefaultEpoch)
	require.NoError(t, err)
	s := NewSnowflake(core, snowflake.EncodingBase58)

	before := time.Now().UnixMilli()
	id, err := s.Generate()
	require.NoError(t, err)

	f, err := s.Parse(id)
	require.NoError(t, err)
	require.NotNil(t, f.MachineID)
	require.NotNil(t, f.TimestampMs)
	require.NotNil(t, f.Sequence)
	assert.Equal(t, int64(99), *f.MachineID)
	assert.Equal(t, int64(0), *f.Sequence)
	assert.GreaterOrEqual(t, *f.TimestampMs, before)

	ok, reason := s.Validate("not base58 0OIl")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	s.now = func() time.Time { return time.UnixMilli(before - 1000) }
	ok, reason = s.Validate(id)
	assert.False(t, ok)
	assert.Equal(t, "timestamp is in the future", reason)

	ids, err := s.GenerateBatch(10)
	require.NoError(t, err)
	prev := int64(-1)
	for _, enc := range ids {
		n, err := snowflake.EncodingBase58.Decode(enc)
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
}

func TestSnowflakeAdapterRejectsNegative(t *testing.T) {
	core, err := snowflake.New(1, snowflake.DefaultEpoch)
	require.NoError(t, err)
	s := NewSnowflake(core, snowflake.EncodingDecimal)

	ok, _ := s.Validate("-5")
	assert.False(t, ok)
	_, err = s.Parse("-5")
	assert.Error(t, err)
}

func TestUUIDVersions(t *testing.T) {
	_, err := NewUUID(5)
	assert.Error(t, err)

	v7, err := NewUUID(7)
	require.NoError(t, err)
	before := time.Now().UnixMilli()
	id, err := v7.Generate()
	require.NoError(t, err)

	f, err := v7.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, int32(7), f.UUIDVersion)
	assert.Equal(t, "RFC4122", f.UUIDVariant)
	require.NotNil(t, f.TimestampMs)
	assert.InDelta(t, before, *f.TimestampMs, 1000)

	v4, err := NewUUID(4)
	require.NoError(t, err)
	ok, reason := v4.Validate(id)
	assert.False(t, ok)
	assert.Equal(t, "expected UUID v4, got v7", reason)
}

func TestULIDParse(t *testing.T) {
	g := NewULID()
	before := time.Now().UnixMilli()
	id, err := g.Generate()
	require.NoError(t, err)

	f, err := g.Parse(id)
	require.NoError(t, err)
	require.NotNil(t, f.TimestampMs)
	assert.InDelta(t, before, *f.TimestampMs, 1000)
	assert.Len(t, f.RandomPayload, 20)

	ok, _ := g.Validate("short")
	assert.False(t, ok)
}

func TestKSUIDParse(t *testing.T) {
	g := NewKSUID()
	id, err := g.Generate()
	require.NoError(t, err)

	f, err := g.Parse(id)
	require.NoError(t, err)
	require.NotNil(t, f.TimestampMs)
	assert.InDelta(t, time.Now().UnixMilli(), *f.TimestampMs, 2000)
	assert.Len(t, f.RandomPayload, 32)
}

func TestNanoIDValidation(t *testing.T) {
	_, err := NewNanoID(0, DefaultNanoIDAlphabet)
	assert.Error(t, err)
	_, err = NewNanoID(10, "a")
	assert.Error(t, err)

	g, err := NewNanoID(8, "ab")
	require.NoError(t, err)
	id, err := g.Generate()
	require.NoError(t, err)
	assert.Empty(t, strings.Trim(id, "ab"))

	ok, reason := g.Validate("abababac")
	assert.False(t, ok)
	assert.Contains(t, reason, "not in alphabet")

	f, err := g.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, int32(8), f.IDLength)
	assert.Equal(t, "ab", f.Alphabet)
}

func TestCUID2Validation(t *testing.T) {
	_, err := NewCUID2(1)
	assert.Error(t, err)

	g, err := NewCUID2(10)
	require.NoError(t, err)
	id, err := g.Generate()
	require.NoError(t, err)
	assert.Len(t, id, 10)

	ok, _ := g.Validate("short")
	assert.False(t, ok)
}
