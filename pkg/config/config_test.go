package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultGraphConfig(t *testing.T) {
	cfg := DefaultGraphConfig()

	if cfg.Cache.Capacity != 10_000 {
		t.Errorf("Cache.Capacity = %d, want 10000", cfg.Cache.Capacity)
	}
	if !cfg.Cache.ReadAhead {
		t.Error("Cache.ReadAhead = false, want true")
	}
	if cfg.Hybrid.InitialReadRatioThreshold != 0.7 {
		t.Errorf("Hybrid.InitialReadRatioThreshold = %v, want 0.7", cfg.Hybrid.InitialReadRatioThreshold)
	}
	if cfg.Prefetch.PrefetchSize != 32 {
		t.Errorf("Prefetch.PrefetchSize = %d, want 32", cfg.Prefetch.PrefetchSize)
	}
}

func TestLoadGraphConfig(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadGraphConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg != DefaultGraphConfig() {
			t.Error("expected defaults for missing file")
		}
	})

	t.Run("overrides cache capacity only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graph.yaml")
		yamlBody := "cache:\n  capacity: 500\n"
		if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadGraphConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Cache.Capacity != 500 {
			t.Errorf("Cache.Capacity = %d, want 500", cfg.Cache.Capacity)
		}
		if cfg.Hybrid.InitialReadRatioThreshold != 0.7 {
			t.Errorf("Hybrid.InitialReadRatioThreshold = %v, want default 0.7", cfg.Hybrid.InitialReadRatioThreshold)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graph.yaml")
		if err := os.WriteFile(path, []byte("cache: [this is not a map"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadGraphConfig(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}
