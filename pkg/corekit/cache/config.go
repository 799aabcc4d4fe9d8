package cache

import (
	"fmt"

	"github.com/abalassy/corekit/pkg/corekit/config"
)

// NewFromConfig builds a Cache from configuration. Recognized keys:
//
//	capacity  int     (required, positive)
//	policy    string  ("lru" or "fifo", default "lru")
func NewFromConfig[K comparable, V any](cfg config.Config, opts ...Option[K, V]) (*Cache[K, V], error) {
	capacity := cfg.Int("capacity", 0)
	policy, err := ParsePolicy(cfg.String("policy", "lru"))
	if err != nil {
		return nil, fmt.Errorf("cache config: %w", err)
	}
	opts = append([]Option[K, V]{WithPolicy[K, V](policy)}, opts...)
	return New(capacity, opts...)
}

// OptionsFromConfig translates configuration into accessor options.
// Recognized keys:
//
//	capacity        int       resident-entry bound (0 = unbounded)
//	expiration      duration  entry time-to-live (0 = never expires)
//	merge_interval  duration  read-layer merge cadence
//	protect_loader  bool      dedup concurrent loads per key
func OptionsFromConfig[K comparable, V any](cfg config.Config) []AccessorOption[K, V] {
	var opts []AccessorOption[K, V]
	if n := cfg.Int("capacity", 0); n > 0 {
		opts = append(opts, WithCapacity[K, V](n))
	}
	if d := cfg.Duration("expiration", 0); d > 0 {
		opts = append(opts, WithExpiration[K, V](d))
	}
	if d := cfg.Duration("merge_interval", 0); d > 0 {
		opts = append(opts, WithMergeInterval[K, V](d))
	}
	if cfg.Bool("protect_loader", false) {
		opts = append(opts, WithProtectedLoader[K, V]())
	}
	return opts
}
