// Package main is the kari CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MaterialFill65/Search-kari/internal/cache"
	"github.com/MaterialFill65/Search-kari/internal/cli"
	"github.com/MaterialFill65/Search-kari/internal/config"
	"github.com/MaterialFill65/Search-kari/internal/index"
	"github.com/MaterialFill65/Search-kari/internal/metrics"
	"github.com/MaterialFill65/Search-kari/internal/models"
	"github.com/MaterialFill65/Search-kari/internal/search"
	"github.com/MaterialFill65/Search-kari/internal/server"
	"github.com/MaterialFill65/Search-kari/internal/storage"
	"github.com/MaterialFill65/Search-kari/internal/tokenizer"
	"github.com/MaterialFill65/Search-kari/internal/watcher"
	"github.com/MaterialFill65/Search-kari/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/kari/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory takes precedence if it exists, so running from a
// project checkout picks up the project's config.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "convert":
		runConvert()
	case "version", "--version", "-v":
		fmt.Printf("kari version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// A failed initial load leaves the server up and reporting "loading";
	// the watcher or POST /api/v1/index/reload can retry.
	if err := components.Engine.Load(ctx, components.Source, loadProgress(logger)); err != nil {
		logger.Error("initial index load failed", zap.String("location", components.Source.Location()), zap.Error(err))
	}

	var watchSvc *watcher.Watcher
	if cfg.Index.Watch.Enabled {
		watchSvc = watcher.New(
			components.Source.Location(),
			cfg.Index.Watch.Extensions,
			func(ctx context.Context) {
				if err := components.Engine.Reload(ctx); err != nil {
					logger.Warn("index reload after change failed", zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
			watcher.WithDebounce(cfg.Index.Watch.Debounce),
		)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(components.Engine, cfg, components.Metrics, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: kari search [flags] <query>\n\n")
	fmt.Fprintf(os.Stderr, "Query syntax:\n")
	fmt.Fprintf(os.Stderr, "  word1 word2      threads containing every word\n")
	fmt.Fprintf(os.Stderr, "  -word            exclude threads containing word\n")
	fmt.Fprintf(os.Stderr, "  author:name      only threads by author name\n")
	fmt.Fprintf(os.Stderr, "  dice, SS         filter words restrict to threads carrying that tag\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	fs.PrintDefaults()
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work without quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchFlags lists the search command's flags and whether each takes a value.
var searchFlags = map[string]bool{
	"config": true,
	"server": true,
	"limit":  true,
	"output": true,
	"h":      false,
	"help":   false,
}

// searchArgsReorder moves the search command's own flags (and their values) in
// front of the query and ends flag parsing with "--". Anything else that starts
// with a dash is a negated keyword and stays in the query.
func searchArgsReorder(args []string) []string {
	flags := make([]string, 0, len(args)+1)
	positional := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		name, inline := flagName(arg)
		takesValue, known := searchFlags[name]
		if !known {
			positional = append(positional, arg)
			continue
		}
		flags = append(flags, arg)
		if takesValue && !inline && i+1 < len(args) {
			flags = append(flags, args[i+1])
			i++
		}
	}
	flags = append(flags, "--")
	return append(flags, positional...)
}

// flagName returns the flag name in arg ("" when arg is not flag shaped) and
// whether the value is given inline as -name=value.
func flagName(arg string) (string, bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}
	name := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if eq := strings.IndexByte(name, '='); eq >= 0 {
		return name[:eq], true
	}
	return name, false
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = load the index directly)")
	limit := fs.Int("limit", 10, "number of results (0 = server maximum)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	searchQuery := &models.SearchQuery{Query: queryStr, Limit: *limit}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, searchQuery)
	} else {
		response, err = searchDirect(*configPath, searchQuery)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

// searchDirect loads the index in process and runs one query against it.
func searchDirect(configPath string, query *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	ctx := context.Background()
	components, cfg, logger, err := openDirect(ctx, configPath)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()
	defer components.Close()

	query.Normalize(cfg.Search.MaxLimit)
	results, err := components.Engine.Search(ctx, query.Query)
	if err != nil {
		return nil, err
	}
	total := len(results)
	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	for _, res := range results {
		res.URL = fmt.Sprintf(cfg.Search.ThreadURLTemplate, res.ThreadID)
	}
	return &models.SearchResponse{
		Query:     query.Query,
		Results:   results,
		Total:     total,
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = load the index directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil || format == cli.OutputCompact {
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var status *cli.Status
	if *serverURL != "" {
		status, err = statusViaHTTP(*serverURL)
	} else {
		status, err = statusDirect(*configPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*cli.Status, error) {
	u, err := url.JoinPath(serverURL, "/api/v1/status")
	if err != nil {
		return nil, err
	}
	resp, err := http.Get(u)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var status cli.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &status, nil
}

func statusDirect(configPath string) (*cli.Status, error) {
	ctx := context.Background()
	components, cfg, logger, err := openDirect(ctx, configPath)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()
	defer components.Close()

	report, err := server.BuildStatus(components.Engine, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &cli.Status{Index: report.Index, Footprint: report.Footprint, Config: report.Config}, nil
}

// openDirect loads config, builds components and loads the index, for the
// commands that work without a running server.
func openDirect(ctx context.Context, configPath string) (*Components, *config.Config, *zap.Logger, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create logger: %w", err)
	}
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := components.Engine.Load(ctx, components.Source, nil); err != nil {
		components.Close()
		return nil, nil, nil, err
	}
	return components, cfg, logger, nil
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path to write")
	force := fs.Bool("force", false, "overwrite an existing config file")
	_ = fs.Parse(os.Args[2:])

	if _, err := os.Stat(*configPath); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "%s already exists; use --force to overwrite\n", *configPath)
		os.Exit(1)
	}
	if err := config.Save(*configPath, config.Default()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", *configPath)
}

func runConvert() {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	from := fs.String("from", "", "JSON index directory to read")
	to := fs.String("to", "", "SQLite database to write")
	parallel := fs.Int("parallel", 8, "max word groups read at once")
	_ = fs.Parse(os.Args[2:])

	if *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "Usage: kari convert --from <index dir> --to <index.db>")
		os.Exit(1)
	}
	if err := convertIndex(context.Background(), *from, *to, *parallel); err != nil {
		fmt.Fprintf(os.Stderr, "Convert failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *to)
}

// convertIndex copies a JSON index directory into a SQLite database.
func convertIndex(ctx context.Context, from, to string, parallel int) error {
	raw, err := index.NewJSONSource(from, parallel).Load(ctx, func(float64, string) {})
	if err != nil {
		return err
	}
	return storage.WriteSQLite(ctx, to, raw)
}

// Components are the long-lived pieces built from a config.
type Components struct {
	Engine  *search.Engine
	Source  index.Source
	Metrics *metrics.Metrics
	redis   *cache.Redis
}

// Close releases external connections.
func (c *Components) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	tok, err := tokenizer.New(cfg.Tokenizer.Kind, cfg.Tokenizer.VocabularyPath, cfg.Tokenizer.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}

	c := &Components{}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
	}

	var resultCache cache.Cache
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		}, logger)
		if err != nil {
			logger.Warn("redis cache unavailable, using in-process cache", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
		} else {
			c.redis = rc
			resultCache = rc
		}
	}
	if resultCache == nil && cfg.Cache.Size > 0 {
		resultCache = cache.NewMemory(cfg.Cache.Size)
	}

	opts := []search.Option{search.WithLogger(logger), search.WithMetrics(c.Metrics)}
	if resultCache != nil {
		opts = append(opts, search.WithCache(resultCache))
	}
	engine, err := search.NewEngine(tok, &cfg.Search, opts...)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Engine = engine
	c.Source = newSource(cfg.Index)
	return c, nil
}

func newSource(cfg config.IndexConfig) index.Source {
	if cfg.Source == config.SourceSQLite {
		return storage.NewSQLiteSource(cfg.DatabasePath)
	}
	return index.NewJSONSource(cfg.Dir, cfg.MaxParallel)
}

func loadProgress(logger *zap.Logger) index.ProgressFunc {
	return func(progress float64, message string) {
		logger.Debug("index load", zap.Float64("progress", progress), zap.String("step", message))
	}
}

func printUsage() {
	fmt.Println(`kari - forum thread search engine

Usage:
  kari server [flags]           Start the HTTP server
  kari search [flags] <query>   Search threads
  kari status [flags]           Show index status
  kari init [flags]             Write a default config file
  kari convert [flags]          Copy a JSON index into a SQLite database
  kari version                  Show version
  kari help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kari/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to load the index directly.
  --limit int        Number of results (default: 10)
  --output string    Output format: text, compact or json (default: text)

Status Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to load the index directly.
  --output string    Output format: text or json (default: text)

Init Flags:
  --config string    Where to write the config (default: /usr/local/etc/kari/config.yaml)
  --force            Overwrite an existing file

Convert Flags:
  --from string      JSON index directory
  --to string        SQLite database path
  --parallel int     Word groups read at once (default: 8)

Examples:
  kari server
  kari search ねこ いぬ
  kari search ねこ -ネタバレ --limit 5
  kari search author:太郎 dice
  kari search --output json "ねこ"
  kari status --output json
  kari init --config ./config.yaml
  kari convert --from ./index --to ./index.db`)
}