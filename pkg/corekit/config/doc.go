/*
Package config provides type-safe configuration extraction from map[string]any.

# Overview

config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches gracefully by returning default values.
This is useful for extracting cache configuration from YAML/JSON structures
without verbose type assertions and nil checks.

# Basic Usage

Create a Config from any map and extract values with defaults:

	cfg := config.New(map[string]any{
	    "capacity":   1024,
	    "policy":     "LRU",
	    "expiration": "5m",
	})

	capacity := cfg.Int("capacity", 128)                 // 1024
	policy := cfg.String("policy", "FIFO")               // "LRU"
	expiry := cfg.Duration("expiration", time.Minute)    // 5m
	missing := cfg.Bool("protect_loader", false)         // false

Key lookup ignores case, hyphens, and underscores, so "merge_interval",
"mergeInterval", and "merge-interval" all address the same value. This lets
one Config serve files written in either snake_case or camelCase.

# Type Coercion

Duration handles multiple input types:
  - string: parsed with time.ParseDuration ("30s", "1h30m")
  - int/float64: interpreted as seconds
  - time.Duration: used directly

Numeric types handle reasonable conversions:
  - int from float64 (only without a fractional part)
  - float64 from int

All methods return the default value if:
  - The key is missing
  - The value cannot be converted to the requested type
  - The conversion would lose precision (e.g., float to int with fraction)

# File Loading

Load configuration from YAML or JSON files:

	cfg, err := config.FromFile("cache.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	// Or load from bytes
	cfg, err = config.FromYAML(yamlBytes)
	cfg, err = config.FromJSON(jsonBytes)

The cache package turns a Config into a set of accessor options; see
cache.OptionsFromConfig.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation. However, if the original map is modified
externally, behavior is undefined.
*/
package config
