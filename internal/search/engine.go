// Package search runs queries against an index snapshot: it resolves each
// keyword to its threads, intersects them, and ranks the survivors.
package search

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MaterialFill65/Search-kari/internal/cache"
	"github.com/MaterialFill65/Search-kari/internal/config"
	"github.com/MaterialFill65/Search-kari/internal/index"
	"github.com/MaterialFill65/Search-kari/internal/metrics"
	"github.com/MaterialFill65/Search-kari/internal/models"
	"github.com/MaterialFill65/Search-kari/internal/query"
	"github.com/MaterialFill65/Search-kari/internal/ranking"
	"github.com/MaterialFill65/Search-kari/internal/tokenizer"
)

// Context is the immutable state a query runs against. A query keeps the
// Context it started with even if a new snapshot is swapped in meanwhile.
type Context struct {
	Snapshot  *index.Snapshot
	Tokenizer tokenizer.Tokenizer
}

// Engine executes queries. It is safe for concurrent use.
type Engine struct {
	current atomic.Pointer[Context]

	tokenizer  tokenizer.Tokenizer
	parser     *query.Parser
	ranker     *ranking.Ranker
	policy     MergePolicy
	concurrent bool

	rejectConcurrent bool
	busy             atomic.Bool

	cache   cache.Cache
	metrics *metrics.Metrics
	logger  *zap.Logger

	loadMu sync.Mutex
	source index.Source
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithCache caches results per snapshot version and raw query.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithMetrics records query and load metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger. Nil means no logging.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine with no snapshot loaded. A nil cfg uses the
// defaults. Queries fail with ErrIndexUnavailable until Load or Swap.
func NewEngine(tok tokenizer.Tokenizer, cfg *config.SearchConfig, opts ...Option) (*Engine, error) {
	if tok == nil {
		return nil, fmt.Errorf("tokenizer is required")
	}
	if cfg == nil {
		cfg = &config.Default().Search
	}

	policy, err := ParseMergePolicy(cfg.MergePolicy)
	if err != nil {
		return nil, err
	}

	defs := cfg.Filters
	if defs == nil {
		defs = query.DefaultDefinitions()
	}
	filters, err := query.NewRegistry(defs...)
	if err != nil {
		return nil, fmt.Errorf("invalid filter tags: %w", err)
	}

	weights := cfg.Weights
	e := &Engine{
		tokenizer:        tok,
		parser:           query.NewParser(filters),
		ranker:           ranking.NewRanker(&weights),
		policy:           policy,
		concurrent:       cfg.ConcurrentResolve,
		rejectConcurrent: cfg.RejectConcurrent,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Swap installs snap as the active snapshot. A nil snap unloads the index.
func (e *Engine) Swap(snap *index.Snapshot) {
	if snap == nil {
		e.current.Store(nil)
		return
	}
	e.current.Store(&Context{Snapshot: snap, Tokenizer: e.tokenizer})
}

// Load builds a snapshot from src and swaps it in. On failure the previous
// snapshot, if any, stays active. src is remembered for Reload even when the
// load fails.
func (e *Engine) Load(ctx context.Context, src index.Source, progress index.ProgressFunc) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	e.source = src
	start := time.Now()
	e.logger.Info("loading index", zap.String("source", src.Location()))
	snap, err := index.Load(ctx, src, func(p float64, msg string) {
		e.logger.Debug("index load progress", zap.Float64("progress", p), zap.String("step", msg))
		if progress != nil {
			progress(p, msg)
		}
	})
	elapsed := time.Since(start)
	if err != nil {
		e.metrics.ObserveIndexLoad(err, elapsed, 0, 0)
		e.logger.Error("index load failed", zap.String("source", src.Location()), zap.Error(err))
		return err
	}

	stats := snap.Stats()
	e.metrics.ObserveIndexLoad(nil, elapsed, stats.Threads, stats.Words)
	e.Swap(snap)
	e.logger.Info("index loaded",
		zap.String("version", stats.Version),
		zap.Int("threads", stats.Threads),
		zap.Int("words", stats.Words),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

// Reload rebuilds the snapshot from the last source passed to Load.
func (e *Engine) Reload(ctx context.Context) error {
	e.loadMu.Lock()
	src := e.source
	e.loadMu.Unlock()
	if src == nil {
		return ErrNoSource
	}
	return e.Load(ctx, src, nil)
}

// Snapshot returns the active snapshot, or nil.
func (e *Engine) Snapshot() *index.Snapshot {
	c := e.current.Load()
	if c == nil {
		return nil
	}
	return c.Snapshot
}

// Stats describes the active snapshot.
func (e *Engine) Stats() (index.Stats, error) {
	snap := e.Snapshot()
	if snap == nil {
		return index.Stats{}, ErrIndexUnavailable
	}
	return snap.Stats(), nil
}

// Search runs raw against the active snapshot and returns threads ordered by
// descending score. Results carry thread id, title, score, matches and rank.
// The returned slice is never nil on success.
func (e *Engine) Search(ctx context.Context, raw string) ([]*models.SearchResult, error) {
	start := time.Now()
	c := e.current.Load()
	if c == nil {
		e.metrics.ObserveSearch(metrics.OutcomeUnavailable, false, time.Since(start), 0)
		return nil, ErrIndexUnavailable
	}
	if raw == "" {
		return []*models.SearchResult{}, nil
	}

	if e.rejectConcurrent {
		if !e.busy.CompareAndSwap(false, true) {
			e.metrics.ObserveSearch(metrics.OutcomeRejected, false, time.Since(start), 0)
			return nil, ErrSearchInProgress
		}
		defer e.busy.Store(false)
	}

	key := cache.Key(c.Snapshot.Version(), raw)
	if e.cache != nil {
		if results, ok := e.cache.Get(ctx, key); ok {
			e.metrics.ObserveCache(true)
			e.metrics.ObserveSearch(outcome(results), true, time.Since(start), len(results))
			return results, nil
		}
		e.metrics.ObserveCache(false)
	}

	results, err := e.run(ctx, c, raw)
	if err != nil {
		e.metrics.ObserveSearch(metrics.OutcomeError, false, time.Since(start), 0)
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(ctx, key, results)
	}

	elapsed := time.Since(start)
	e.metrics.ObserveSearch(outcome(results), false, elapsed, len(results))
	e.logger.Debug("search",
		zap.String("query", raw),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", elapsed),
	)
	return results, nil
}

// Explain returns the score breakdown of thread for raw, or false when the
// thread is not part of the result.
func (e *Engine) Explain(ctx context.Context, raw string, thread models.ThreadID) (*ranking.ScoreBreakdown, bool, error) {
	c := e.current.Load()
	if c == nil {
		return nil, false, ErrIndexUnavailable
	}
	if raw == "" {
		return nil, false, nil
	}
	m, err := e.match(ctx, c, raw)
	if err != nil {
		return nil, false, err
	}
	matches, ok := m.threads.Get(thread)
	if !ok {
		return nil, false, nil
	}
	if !m.keywords {
		return &ranking.ScoreBreakdown{FinalScore: ranking.BaseScore}, true, nil
	}
	tokens := c.Tokenizer.Tokenize(raw)
	return e.ranker.ScoreWithBreakdown(c.Snapshot, thread, tokens, matches), true, nil
}

type matchSet struct {
	threads  *MatchMap
	keywords bool
}

// match runs the parse, resolve and combine steps.
func (e *Engine) match(ctx context.Context, c *Context, raw string) (*matchSet, error) {
	q := e.parser.Parse(raw)
	snap := c.Snapshot

	var scope Scope
	if q.HasAuthor {
		scope.Author = snap.AuthorThreads(q.Author)
	}
	if len(q.Filters) > 0 {
		scope.Tags = snap.TagThreads(q.Filters)
	}
	ms := &matchSet{keywords: len(q.Keywords) > 0}
	if scope.Empty() {
		ms.threads = NewMatchMap()
		return ms, nil
	}

	resolver := NewResolver(snap, c.Tokenizer)
	constraints := Constraints{Scope: scope, Excluded: resolver.Excluded(q.NegativeKeywords)}

	perKeyword, err := e.resolveAll(ctx, resolver, q.Keywords, scope)
	if err != nil {
		return nil, err
	}
	ms.threads = Combine(snap.Threads(), perKeyword, constraints, e.policy)

	e.logger.Debug("query matched",
		zap.Bool("author", q.HasAuthor),
		zap.Int("keywords", len(q.Keywords)),
		zap.Int("negative", len(q.NegativeKeywords)),
		zap.Strings("filters", q.Filters),
		zap.Int("candidates", ms.threads.Len()),
	)
	return ms, nil
}

func (e *Engine) run(ctx context.Context, c *Context, raw string) ([]*models.SearchResult, error) {
	m, err := e.match(ctx, c, raw)
	if err != nil {
		return nil, err
	}

	var tokens []tokenizer.Token
	if m.keywords {
		tokens = c.Tokenizer.Tokenize(raw)
	}

	results := make([]*models.SearchResult, 0, m.threads.Len())
	for _, t := range m.threads.Threads() {
		matches, _ := m.threads.Get(t)
		score := ranking.BaseScore
		if m.keywords {
			score = e.ranker.Score(c.Snapshot, t, tokens, matches)
		}
		title, _ := c.Snapshot.Title(t)
		results = append(results, &models.SearchResult{
			ThreadID: t,
			Title:    title,
			Score:    score,
			Matches:  matches.Clone(),
		})
	}
	ranking.Rank(results)
	return results, nil
}

// resolveAll resolves every keyword. With concurrent resolution enabled the
// keywords run in parallel; the output order always follows keywords.
func (e *Engine) resolveAll(ctx context.Context, r *Resolver, keywords []string, scope Scope) ([]*MatchMap, error) {
	out := make([]*MatchMap, len(keywords))
	if !e.concurrent || len(keywords) < 2 {
		for i, kw := range keywords {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = r.Resolve(kw, scope)
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, kw := range keywords {
		i, kw := i, kw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = r.Resolve(kw, scope)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func outcome(results []*models.SearchResult) string {
	if len(results) == 0 {
		return metrics.OutcomeZeroResults
	}
	return metrics.OutcomeHit
}
