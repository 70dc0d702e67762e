package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// Config is the persistent application configuration
type Config struct {
	// BaseURL is the root of the content API, e.g. https://example.com/wp-json/wp/v2
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Transport settings
	RequestTimeout    string  `yaml:"request_timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"` // 0 = unlimited

	// Aggregation settings
	Aggregation AggregationConfig `yaml:"aggregation"`

	// Media settings
	Media MediaConfig `yaml:"media"`

	// UI preferences
	UI UIConfig `yaml:"ui"`
}

// AggregationConfig controls the category listing on the home view.
type AggregationConfig struct {
	MaxCategories int    `yaml:"max_categories" validate:"gte=1"`
	Concurrency   int    `yaml:"concurrency" validate:"gte=1"`
	CacheDuration string `yaml:"cache_duration"`

	// DisplayCounts maps category id -> number of posts to show.
	// Categories without an entry alternate 3, 2, 3, 2 by position.
	DisplayCounts map[int]int `yaml:"display_counts" validate:"dive,gte=1"`
}

// MediaConfig controls featured media resolution.
type MediaConfig struct {
	BatchSize   int    `yaml:"batch_size" validate:"gte=1"`
	FallbackURL string `yaml:"fallback_url" validate:"required"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	PostsPerPage int `yaml:"posts_per_page" validate:"gte=1"`
	SearchMinLen int `yaml:"search_min_len" validate:"gte=0"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultConfigYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: invalid embedded default: %v", err))
	}
	return cfg
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "pressroom", "config.yaml")
}

// StateDir returns the directory for logs and event files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "pressroom")
}

// Load reads config from path (ConfigPath() when empty). A missing file
// yields defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.AutoPopulateFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnsureDefault writes the embedded default config if none exists.
func EnsureDefault() (string, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, defaultConfigYAML, 0644); err != nil {
		return "", fmt.Errorf("writing default config: %w", err)
	}
	return path, nil
}

// Save writes config to disk
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// AutoPopulateFromEnv applies PRESSROOM_* environment overrides.
func (c *Config) AutoPopulateFromEnv() {
	if v := os.Getenv("PRESSROOM_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PRESSROOM_CACHE_TTL"); v != "" {
		c.Aggregation.CacheDuration = v
	}
	if v := os.Getenv("PRESSROOM_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = rps
		}
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and duration syntax.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := parseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid config: request_timeout: %w", err)
	}
	if _, err := parseDuration(c.Aggregation.CacheDuration); err != nil {
		return fmt.Errorf("invalid config: cache_duration: %w", err)
	}
	return nil
}

// Timeout returns the transport timeout (30s when unset).
func (c *Config) Timeout() time.Duration {
	d, err := parseDuration(c.RequestTimeout)
	if err != nil || d == 0 {
		return 30 * time.Second
	}
	return d
}

// CacheTTL returns the freshness window for aggregated content (5m when unset).
func (c *Config) CacheTTL() time.Duration {
	d, err := parseDuration(c.Aggregation.CacheDuration)
	if err != nil || d == 0 {
		return 5 * time.Minute
	}
	return d
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}
