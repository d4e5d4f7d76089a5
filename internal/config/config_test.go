package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
index:
  source: sqlite
  database_path: "/data/index.db"
search:
  title_match_weight: 20
  merge_policy: sum
cache:
  ttl: 30s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %s", cfg.Server.Addr())
	}
	if cfg.Index.Source != SourceSQLite || cfg.Index.DatabasePath != "/data/index.db" {
		t.Errorf("unexpected index config: %+v", cfg.Index)
	}
	if cfg.Search.TitleMatch != 20 {
		t.Errorf("title_match_weight = %v, want 20", cfg.Search.TitleMatch)
	}
	if cfg.Search.NormalWord != 1 {
		t.Errorf("normal_word_weight = %v, want default 1", cfg.Search.NormalWord)
	}
	if cfg.Search.MergePolicy != "sum" {
		t.Errorf("merge_policy = %s", cfg.Search.MergePolicy)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	path := writeConfig(t, `
debug: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
index:
  dir: "./data/index"
  database_path: "./data/index.db"
tokenizer:
  kind: vocabulary
  vocabulary_path: "./data/vocabulary.json"
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "index"); cfg.Index.Dir != want {
		t.Errorf("index.dir = %s, want %s", cfg.Index.Dir, want)
	}
	if want := filepath.Join(dir, "data", "index.db"); cfg.Index.DatabasePath != want {
		t.Errorf("index.database_path = %s, want %s", cfg.Index.DatabasePath, want)
	}
	if want := filepath.Join(dir, "data", "vocabulary.json"); cfg.Tokenizer.VocabularyPath != want {
		t.Errorf("tokenizer.vocabulary_path = %s, want %s", cfg.Tokenizer.VocabularyPath, want)
	}
}

func TestLoad_expandPathTildeIsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, `
index:
  dir: "~/idx"
  database_path: "~"
tokenizer:
  kind: vocabulary
  vocabulary_path: "vocab/words.json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "idx"); cfg.Index.Dir != want {
		t.Errorf("index.dir = %s, want %s", cfg.Index.Dir, want)
	}
	if cfg.Index.DatabasePath != home {
		t.Errorf("index.database_path = %s, want %s", cfg.Index.DatabasePath, home)
	}
	if want := filepath.Join(home, "vocab", "words.json"); cfg.Tokenizer.VocabularyPath != want {
		t.Errorf("tokenizer.vocabulary_path = %s, want %s", cfg.Tokenizer.VocabularyPath, want)
	}
}

func TestLoad_Filters(t *testing.T) {
	t.Run("unset uses built-in tags", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "debug: false\n"))
		if err != nil {
			t.Fatal(err)
		}
		if len(cfg.Search.Filters) != 2 {
			t.Errorf("filters = %+v, want the two built-in tags", cfg.Search.Filters)
		}
	})
	t.Run("explicit empty list disables tags", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "search:\n  filters: []\n"))
		if err != nil {
			t.Fatal(err)
		}
		if len(cfg.Search.Filters) != 0 {
			t.Errorf("filters = %+v, want none", cfg.Search.Filters)
		}
	})
	t.Run("custom tags", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, `
search:
  filters:
    - name: AA_NOTATION
      pattern: "^AA$"
`))
		if err != nil {
			t.Fatal(err)
		}
		if len(cfg.Search.Filters) != 1 || cfg.Search.Filters[0].Name != "AA_NOTATION" || cfg.Search.Filters[0].Pattern != "^AA$" {
			t.Errorf("filters = %+v", cfg.Search.Filters)
		}
	})
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "server: [\n"},
		{"bad source", "index:\n  source: csv\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad url template", "search:\n  thread_url_template: \"https://example.com/\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Index.Source != SourceJSON {
		t.Errorf("default index source: got %s", cfg.Index.Source)
	}
	if cfg.Tokenizer.Kind != "kagome" {
		t.Errorf("default tokenizer: got %s", cfg.Tokenizer.Kind)
	}
	w := cfg.Search.Weights
	if w.TitleMatch != 10 || w.SpecialWord != 5 || w.NormalWord != 1 || w.ProximityBonus != 0.5 {
		t.Errorf("default weights: got %+v", w)
	}
	if cfg.Search.MergePolicy != "first_seen" {
		t.Errorf("default merge policy: got %s", cfg.Search.MergePolicy)
	}
	if cfg.Search.ThreadURLTemplate != DefaultThreadURLTemplate {
		t.Errorf("default thread url: got %s", cfg.Search.ThreadURLTemplate)
	}
	if cfg.Index.Watch.Enabled {
		t.Error("watch should be disabled by default")
	}
	if len(cfg.Index.Watch.Extensions) != 2 || cfg.Index.Watch.Extensions[0] != ".json" {
		t.Errorf("watch extensions: got %v", cfg.Index.Watch.Extensions)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "saved.yaml")
	cfg := Default()
	cfg.Server.Port = 9090
	cfg.Index.Dir = "/tmp/index"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Index.Dir != "/tmp/index" {
		t.Errorf("loaded index dir: got %s", loaded.Index.Dir)
	}
	if len(loaded.Search.Filters) != 2 {
		t.Errorf("loaded filters: got %+v", loaded.Search.Filters)
	}
}
