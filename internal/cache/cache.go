// Package cache provides result caches for the query engine: an in-process
// LRU and a Redis-backed cache.
//
// Cache keys include the snapshot version, so swapping in a new index makes
// every older entry unreachable without explicit invalidation. Versions are
// assigned per build, so entries are only ever hit by the process that built
// the snapshot; Redis moves them out of the heap and expires them by TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/MaterialFill65/Search-kari/internal/models"
)

// Cache stores ranked result lists by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]*models.SearchResult, bool)
	Set(ctx context.Context, key string, results []*models.SearchResult)
}

// Key derives the cache key for a raw query against one snapshot version.
func Key(version, query string) string {
	h := sha256.New()
	h.Write([]byte(version))
	h.Write([]byte{0})
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}

// Memory is an in-process result cache.
type Memory struct {
	lru *LRU[[]*models.SearchResult]
}

// NewMemory returns a memory cache holding at most size result lists.
func NewMemory(size int) *Memory {
	return &Memory{lru: NewLRU[[]*models.SearchResult](size)}
}

// Get returns a copy of the cached results.
func (m *Memory) Get(_ context.Context, key string) ([]*models.SearchResult, bool) {
	results, ok := m.lru.Get(key)
	if !ok {
		return nil, false
	}
	return Clone(results), true
}

// Set stores a copy of results.
func (m *Memory) Set(_ context.Context, key string, results []*models.SearchResult) {
	m.lru.Set(key, Clone(results))
}

// Len returns the number of cached result lists.
func (m *Memory) Len() int { return m.lru.Len() }

// Clone deep-copies a result list so callers may modify it freely.
func Clone(results []*models.SearchResult) []*models.SearchResult {
	out := make([]*models.SearchResult, len(results))
	for i, r := range results {
		c := *r
		c.Matches = r.Matches.Clone()
		out[i] = &c
	}
	return out
}
