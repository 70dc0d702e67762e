package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Aggregation.MaxCategories != 4 {
		t.Errorf("expected 4 categories, got %d", cfg.Aggregation.MaxCategories)
	}
	if cfg.Aggregation.Concurrency != 3 {
		t.Errorf("expected concurrency 3, got %d", cfg.Aggregation.Concurrency)
	}
	if cfg.Media.BatchSize != 3 {
		t.Errorf("expected batch size 3, got %d", cfg.Media.BatchSize)
	}
	if cfg.Media.FallbackURL != "/fallback-image.jpg" {
		t.Errorf("unexpected fallback URL %q", cfg.Media.FallbackURL)
	}
	if cfg.CacheTTL() != 5*time.Minute {
		t.Errorf("expected 5m cache TTL, got %v", cfg.CacheTTL())
	}
	if cfg.UI.PostsPerPage != 7 {
		t.Errorf("expected 7 posts per page, got %d", cfg.UI.PostsPerPage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PRESSROOM_BASE_URL", "")
	t.Setenv("PRESSROOM_CACHE_TTL", "")
	t.Setenv("PRESSROOM_RPS", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != DefaultConfig().BaseURL {
		t.Errorf("expected default base URL, got %q", cfg.BaseURL)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	t.Setenv("PRESSROOM_BASE_URL", "")
	t.Setenv("PRESSROOM_CACHE_TTL", "")
	t.Setenv("PRESSROOM_RPS", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `base_url: https://blog.example.com/wp-json/wp/v2
aggregation:
  cache_duration: 90s
  display_counts:
    7: 4
media:
  fallback_url: https://cdn.example.com/none.png
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://blog.example.com/wp-json/wp/v2" {
		t.Errorf("unexpected base URL %q", cfg.BaseURL)
	}
	if cfg.CacheTTL() != 90*time.Second {
		t.Errorf("expected 90s, got %v", cfg.CacheTTL())
	}
	if cfg.Aggregation.DisplayCounts[7] != 4 {
		t.Errorf("expected override 4 for category 7, got %d", cfg.Aggregation.DisplayCounts[7])
	}
	// Fields absent from the file keep their defaults.
	if cfg.Media.BatchSize != 3 {
		t.Errorf("expected default batch size, got %d", cfg.Media.BatchSize)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PRESSROOM_BASE_URL", "https://env.example.com/wp-json/wp/v2")
	t.Setenv("PRESSROOM_CACHE_TTL", "1m")
	t.Setenv("PRESSROOM_RPS", "2.5")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://env.example.com/wp-json/wp/v2" {
		t.Errorf("env base URL not applied: %q", cfg.BaseURL)
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("env TTL not applied: %v", cfg.CacheTTL())
	}
	if cfg.RequestsPerSecond != 2.5 {
		t.Errorf("env RPS not applied: %v", cfg.RequestsPerSecond)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.BaseURL = "" }},
		{"relative base url", func(c *Config) { c.BaseURL = "not a url" }},
		{"zero batch size", func(c *Config) { c.Media.BatchSize = 0 }},
		{"zero concurrency", func(c *Config) { c.Aggregation.Concurrency = 0 }},
		{"zero display override", func(c *Config) { c.Aggregation.DisplayCounts = map[int]int{1: 0} }},
		{"bad duration", func(c *Config) { c.Aggregation.CacheDuration = "soon" }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = "-1s" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.HasPrefix(err.Error(), "invalid config") {
				t.Errorf("unexpected error text: %v", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Aggregation.DisplayCounts = map[int]int{5: 1}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("PRESSROOM_BASE_URL", "")
	t.Setenv("PRESSROOM_CACHE_TTL", "")
	t.Setenv("PRESSROOM_RPS", "")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Aggregation.DisplayCounts[5] != 1 {
		t.Errorf("expected override to survive save, got %v", loaded.Aggregation.DisplayCounts)
	}
}

func TestTimeoutFallback(t *testing.T) {
	cfg := &Config{}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("expected 30s fallback, got %v", cfg.Timeout())
	}
	cfg.RequestTimeout = "5s"
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.Timeout())
	}
}
