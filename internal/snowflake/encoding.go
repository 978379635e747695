package snowflake

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	bw "github.com/bwmarrin/snowflake"
)

// Encoding is a textual representation of an id.
type Encoding string

const (
	EncodingDecimal Encoding = "decimal"
	EncodingBase2   Encoding = "base2"
	EncodingBase32  Encoding = "base32"
	EncodingBase36  Encoding = "base36"
	EncodingBase58  Encoding = "base58"
	EncodingBase64  Encoding = "base64"
)

// Encodings lists every supported encoding.
var Encodings = []Encoding{
	EncodingDecimal,
	EncodingBase2,
	EncodingBase32,
	EncodingBase36,
	EncodingBase58,
	EncodingBase64,
}

// ParseEncoding maps a config or query value to an Encoding.
// An empty string selects EncodingDecimal.
func ParseEncoding(s string) (Encoding, error) {
	e := Encoding(strings.ToLower(strings.TrimSpace(s)))
	if e == "" {
		return EncodingDecimal, nil
	}
	for _, known := range Encodings {
		if e == known {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
}

// Encode renders id. The base encodings use the alphabets of
// github.com/bwmarrin/snowflake so ids stay readable by its consumers.
func (e Encoding) Encode(id int64) string {
	v := bw.ID(id)
	switch e {
	case EncodingBase2:
		return v.Base2()
	case EncodingBase32:
		return v.Base32()
	case EncodingBase36:
		return v.Base36()
	case EncodingBase58:
		return v.Base58()
	case EncodingBase64:
		return v.Base64()
	default:
		return strconv.FormatInt(id, 10)
	}
}

// Decode parses s written in encoding e. Base encodings reject input longer
// than the widest int64 and input that does not decode to a non-negative id.
func (e Encoding) Decode(s string) (int64, error) {
	var (
		v   bw.ID
		err error
	)
	if limit, ok := maxEncodedLen[e]; ok && e != EncodingDecimal && len(s) > limit {
		return 0, fmt.Errorf("%w: %s value longer than %d characters", ErrMalformedID, e, limit)
	}
	switch e {
	case EncodingDecimal:
		n, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return 0, fmt.Errorf("invalid integer format: %w", perr)
		}
		return n, nil
	case EncodingBase2:
		v, err = bw.ParseBase2(s)
	case EncodingBase32:
		v, err = bw.ParseBase32([]byte(s))
	case EncodingBase36:
		v, err = bw.ParseBase36(s)
	case EncodingBase58:
		v, err = bw.ParseBase58([]byte(s))
	case EncodingBase64:
		v, err = bw.ParseBase64(s)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, string(e))
	}
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", e, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s value overflows int64", ErrMalformedID, e)
	}
	// base32 and base58 accumulate without overflow checks, so a wrapped
	// value only shows up as a failed round trip.
	if (e == EncodingBase32 || e == EncodingBase58) && e.Encode(v.Int64()) != s {
		return 0, fmt.Errorf("%w: %s value overflows int64 or is not canonical", ErrMalformedID, e)
	}
	return v.Int64(), nil
}

var maxEncodedLen = func() map[Encoding]int {
	m := make(map[Encoding]int, len(Encodings))
	for _, e := range Encodings {
		m[e] = len(e.Encode(math.MaxInt64))
	}
	return m
}()
