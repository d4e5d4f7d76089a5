// Package config provides configuration loading and structs for the kari server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MaterialFill65/Search-kari/internal/query"
	"github.com/MaterialFill65/Search-kari/internal/ranking"
)

// Index source kinds.
const (
	SourceJSON   = "json"
	SourceSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Index     IndexConfig     `yaml:"index"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IndexConfig says where the precomputed index lives.
type IndexConfig struct {
	// Source is "json" (a directory of partition files) or "sqlite".
	Source       string      `yaml:"source"`
	Dir          string      `yaml:"dir"`
	DatabasePath string      `yaml:"database_path"`
	MaxParallel  int         `yaml:"max_parallel"`
	Watch        WatchConfig `yaml:"watch"`
}

// WatchConfig holds index change watch settings.
type WatchConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Debounce   time.Duration `yaml:"debounce"`
	Extensions []string      `yaml:"extensions"`
}

// TokenizerConfig selects the tokenizer.
type TokenizerConfig struct {
	// Kind is "kagome" or "vocabulary".
	Kind           string `yaml:"kind"`
	VocabularyPath string `yaml:"vocabulary_path"`
	CacheSize      int    `yaml:"cache_size"`
}

// SearchConfig holds query engine settings.
type SearchConfig struct {
	ranking.Weights `yaml:",inline"`

	// MergePolicy is "first_seen" or "sum".
	MergePolicy string `yaml:"merge_policy"`
	// Filters replaces the built-in filter tags when set. An explicit empty
	// list disables filter tags.
	Filters           []query.Definition `yaml:"filters"`
	ConcurrentResolve bool               `yaml:"concurrent_resolve"`
	RejectConcurrent  bool               `yaml:"reject_concurrent"`
	MaxLimit          int                `yaml:"max_limit"`
	ThreadURLTemplate string             `yaml:"thread_url_template"`
}

// CacheConfig holds result cache settings. RedisAddr selects the Redis cache
// instead of the in-process one.
type CacheConfig struct {
	Size          int           `yaml:"size"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Index.Dir = expandPath(cfg.Index.Dir, configDir)
	cfg.Index.DatabasePath = expandPath(cfg.Index.DatabasePath, configDir)
	if cfg.Tokenizer.VocabularyPath != "" {
		cfg.Tokenizer.VocabularyPath = expandPath(cfg.Tokenizer.VocabularyPath, configDir)
	}

	return &cfg, nil
}

// Validate rejects values no component can use.
func Validate(cfg *Config) error {
	switch cfg.Index.Source {
	case SourceJSON, SourceSQLite:
	default:
		return fmt.Errorf("invalid index.source %q: want %q or %q", cfg.Index.Source, SourceJSON, SourceSQLite)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}
	if strings.Count(cfg.Search.ThreadURLTemplate, "%d") != 1 {
		return fmt.Errorf("search.thread_url_template must contain exactly one %%d: %q", cfg.Search.ThreadURLTemplate)
	}
	return nil
}

// Save writes the config to path. Used by "kari init".
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~", "~/..." and other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return filepath.Join(home, path)
}
