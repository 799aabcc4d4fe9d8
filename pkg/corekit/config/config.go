package config

import (
	"sort"
	"strings"
	"time"
)

// Config wraps a map[string]any for type-safe value extraction.
//
// Key lookup is spelling-insensitive: keys are matched after lowercasing
// and dropping "-" and "_", so "merge_interval", "mergeInterval" and
// "merge-interval" all address the same value. Accessor methods return
// their default when the key is missing or the value cannot be coerced
// to the requested type.
type Config struct {
	raw  map[string]any
	data map[string]any // canonical key -> value
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	canonical := make(map[string]any, len(data))
	for k, v := range data {
		canonical[canonicalKey(k)] = v
	}
	return Config{raw: data, data: canonical}
}

// canonicalKey folds a key's spelling: lowercase, separators dropped.
func canonicalKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r == '-' || r == '_':
		case 'A' <= r && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (c Config) lookup(key string) (any, bool) {
	v, ok := c.data[canonicalKey(key)]
	return v, ok
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	if s, ok := c.lookup(key); ok {
		if v, ok := s.(string); ok {
			return v
		}
	}
	return defaultVal
}

// Duration returns the duration value for key, or defaultVal if missing
// or invalid. Strings go through time.ParseDuration; bare numbers are
// taken as seconds; a time.Duration passes through.
func (c Config) Duration(key string, defaultVal time.Duration) time.Duration {
	v, ok := c.lookup(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case float64:
		return time.Duration(val * float64(time.Second))
	case int:
		return time.Duration(val) * time.Second
	case int64:
		return time.Duration(val) * time.Second
	case time.Duration:
		return val
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
func (c Config) Bool(key string, defaultVal bool) bool {
	if v, ok := c.lookup(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not
// convertible. Floats convert only when they carry no fractional part,
// which is how JSON decoding hands over whole numbers.
func (c Config) Int(key string, defaultVal int) int {
	v, ok := c.lookup(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

// Float returns the float64 value for key, or defaultVal if missing or
// not convertible.
func (c Config) Float(key string, defaultVal float64) float64 {
	v, ok := c.lookup(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	return defaultVal
}

// StringSlice returns the string slice for key, or defaultVal if missing
// or if any element is not a string.
func (c Config) StringSlice(key string, defaultVal []string) []string {
	v, ok := c.lookup(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultVal
			}
			result = append(result, s)
		}
		return result
	}
	return defaultVal
}

// Has reports whether the key exists, under any accepted spelling.
func (c Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Keys returns the keys as they were spelled in the source, sorted.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.raw))
	for k := range c.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Raw returns the underlying map with its original key spellings.
// The returned map should not be modified.
func (c Config) Raw() map[string]any {
	return c.raw
}
