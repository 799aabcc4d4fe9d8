package cache

import (
	"fmt"
	"strings"
)

// Policy selects how a Cache chooses its eviction victim when full.
type Policy int

const (
	// LRU evicts the entry that has gone longest without being read or
	// written. Reads promote entries; this is the right default when
	// "recently used" predicts "soon used again".
	LRU Policy = iota

	// FIFO evicts the entry that was inserted first, regardless of reads.
	// Cheaper than LRU on the hit path (no promotion) and preferable when
	// entries age out uniformly, such as time-windowed data.
	FIFO
)

// String returns the canonical token for the policy.
// Unknown values format as "Unknown(<n>)" rather than panicking, so
// corrupted values can still surface in logs.
func (p Policy) String() string {
	switch p {
	case LRU:
		return "LRU"
	case FIFO:
		return "FIFO"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// ParsePolicy parses a policy token. Matching is case-insensitive and
// surrounding whitespace is ignored.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LRU":
		return LRU, nil
	case "FIFO":
		return FIFO, nil
	case "":
		return LRU, fmt.Errorf("cache: empty policy")
	default:
		return LRU, fmt.Errorf("cache: unknown policy %q", s)
	}
}

// MustParsePolicy is like ParsePolicy but panics on invalid input.
// For hard-coded configuration and tests.
func MustParsePolicy(s string) Policy {
	p, err := ParsePolicy(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalText implements encoding.TextMarshaler. Unknown values are an
// error rather than being serialized in their diagnostic form.
func (p Policy) MarshalText() ([]byte, error) {
	switch p {
	case LRU, FIFO:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("cache: cannot marshal unknown policy %d", p)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. On failure the
// receiver is left unchanged.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
