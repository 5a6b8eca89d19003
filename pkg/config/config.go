// Package config holds the tunable parameters for the storage stack's
// cache and hybrid-routing layers, loadable from an optional YAML file so
// operators can override the constructor defaults without recompiling.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheConfig configures the LRU read cache in front of the key-value store.
type CacheConfig struct {
	Capacity         int           `yaml:"capacity"`
	ReadAhead        bool          `yaml:"read_ahead"`
	ReadAheadSize    int           `yaml:"read_ahead_size"`
	EnableCompression bool         `yaml:"enable_compression"`
	TTL              time.Duration `yaml:"ttl"`
}

// DefaultCacheConfig mirrors the original engine's defaults: a 10,000-entry
// cache with read-ahead enabled.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Capacity:      10_000,
		ReadAhead:     true,
		ReadAheadSize: 100,
	}
}

// HybridConfig configures the adaptive router between the direct store path
// and the cached path.
type HybridConfig struct {
	InitialReadRatioThreshold float64 `yaml:"initial_read_ratio_threshold"`
	MinOperationsForAdaptive  uint64  `yaml:"min_operations_for_adaptive"`
	StatsWindowSize           uint64  `yaml:"stats_window_size"`
	RebalanceInterval         uint64  `yaml:"rebalance_interval"`
}

// DefaultHybridConfig returns the router's out-of-the-box tuning.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{
		InitialReadRatioThreshold: 0.7,
		MinOperationsForAdaptive:  1000,
		StatsWindowSize:           10_000,
		RebalanceInterval:         1000,
	}
}

// PrefetchConfig configures the background prefetching range iterator.
type PrefetchConfig struct {
	PrefetchSize      int `yaml:"prefetch_size"`
	MaxBuffers        int `yaml:"max_buffers"`
	BufferSize        int `yaml:"buffer_size"`
	PrefetchTimeoutMs int `yaml:"prefetch_timeout_ms"`
}

// DefaultPrefetchConfig returns the iterator's out-of-the-box tuning.
func DefaultPrefetchConfig() PrefetchConfig {
	return PrefetchConfig{
		PrefetchSize:      32,
		MaxBuffers:        4,
		BufferSize:        1024,
		PrefetchTimeoutMs: 100,
	}
}

// GraphConfig is the top-level file format accepted by LoadGraphConfig.
// Any section omitted from the YAML file keeps its constructor default.
type GraphConfig struct {
	Cache    CacheConfig    `yaml:"cache"`
	Hybrid   HybridConfig   `yaml:"hybrid"`
	Prefetch PrefetchConfig `yaml:"prefetch"`
}

// DefaultGraphConfig bundles the three layer defaults.
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		Cache:    DefaultCacheConfig(),
		Hybrid:   DefaultHybridConfig(),
		Prefetch: DefaultPrefetchConfig(),
	}
}

// LoadGraphConfig reads a YAML file at path and overlays it onto the
// defaults. A missing file is not an error; callers get DefaultGraphConfig().
func LoadGraphConfig(path string) (GraphConfig, error) {
	cfg := DefaultGraphConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
