package config

import (
	"time"

	"github.com/MaterialFill65/Search-kari/internal/query"
)

// DefaultThreadURLTemplate renders a thread id as a board URL.
const DefaultThreadURLTemplate = "https://bbs.animanch.com/board/%d/"

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Index.Source == "" {
		cfg.Index.Source = SourceJSON
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = "/usr/local/var/kari/index"
	}
	if cfg.Index.DatabasePath == "" {
		cfg.Index.DatabasePath = "/usr/local/var/kari/index.db"
	}
	if cfg.Index.MaxParallel == 0 {
		cfg.Index.MaxParallel = 8
	}
	if cfg.Index.Watch.Debounce == 0 {
		cfg.Index.Watch.Debounce = 2 * time.Second
	}
	if cfg.Index.Watch.Extensions == nil {
		cfg.Index.Watch.Extensions = []string{".json", ".db"}
	}
	if cfg.Tokenizer.Kind == "" {
		cfg.Tokenizer.Kind = "kagome"
	}
	if cfg.Tokenizer.CacheSize == 0 {
		cfg.Tokenizer.CacheSize = 4096
	}
	cfg.Search.Weights.ApplyDefaults()
	if cfg.Search.MergePolicy == "" {
		cfg.Search.MergePolicy = "first_seen"
	}
	// Nil means unset; an explicit empty list stays empty.
	if cfg.Search.Filters == nil {
		cfg.Search.Filters = query.DefaultDefinitions()
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 500
	}
	if cfg.Search.ThreadURLTemplate == "" {
		cfg.Search.ThreadURLTemplate = DefaultThreadURLTemplate
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 1024
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}
}
