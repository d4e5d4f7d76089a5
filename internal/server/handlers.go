package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MaterialFill65/Search-kari/internal/cache"
	"github.com/MaterialFill65/Search-kari/internal/config"
	"github.com/MaterialFill65/Search-kari/internal/index"
	"github.com/MaterialFill65/Search-kari/internal/models"
	"github.com/MaterialFill65/Search-kari/internal/ranking"
	"github.com/MaterialFill65/Search-kari/internal/search"
	"github.com/MaterialFill65/Search-kari/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var q models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.search(w, r, q)
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	q := models.SearchQuery{Query: r.URL.Query().Get("q")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		q.Limit = limit
	}
	s.search(w, r, q)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, q models.SearchQuery) {
	start := time.Now()
	q.Normalize(s.config.Search.MaxLimit)
	s.logger.Debug("search request", zap.String("query", q.Query), zap.Int("limit", q.Limit))

	v, err, shared := s.inflight.Do(q.Query, func() (any, error) {
		return s.engine.Search(context.WithoutCancel(r.Context()), q.Query)
	})
	if err != nil {
		s.respondEngineError(w, "search failed", err)
		return
	}
	results := v.([]*models.SearchResult)
	if shared {
		results = cache.Clone(results)
	}

	total := len(results)
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	for _, res := range results {
		res.URL = s.threadURL(res.ThreadID)
	}

	s.respondJSON(w, http.StatusOK, &models.SearchResponse{
		QueryID:   uuid.NewString(),
		Query:     q.Query,
		Results:   results,
		Total:     total,
		QueryTime: time.Since(start).Milliseconds(),
	})
}

type threadResponse struct {
	ThreadID models.ThreadID         `json:"thread_id"`
	Title    string                  `json:"title"`
	URL      string                  `json:"url"`
	Matched  *bool                   `json:"matched,omitempty"`
	Explain  *ranking.ScoreBreakdown `json:"explain,omitempty"`
}

// handleGetThread returns a thread's title. With ?q= it also explains how the
// thread scores for that query.
func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseThreadID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid thread id")
		return
	}
	snap := s.engine.Snapshot()
	if snap == nil {
		s.respondEngineError(w, "thread lookup failed", search.ErrIndexUnavailable)
		return
	}
	title, ok := snap.Title(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "thread not found")
		return
	}
	resp := threadResponse{ThreadID: id, Title: title, URL: s.threadURL(id)}

	if raw := r.URL.Query().Get("q"); raw != "" {
		breakdown, matched, err := s.engine.Explain(r.Context(), raw, id)
		if err != nil {
			s.respondEngineError(w, "explain failed", err)
			return
		}
		resp.Matched = &matched
		resp.Explain = breakdown
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// StatusResponse is the GET /api/v1/status payload.
type StatusResponse struct {
	Index     index.Stats             `json:"index"`
	Footprint *storage.IndexFootprint `json:"footprint,omitempty"`
	Config    map[string]any          `json:"config"`
}

// BuildStatus reports the engine's active index together with the settings
// that shape search results. A failure to measure the index on disk is
// logged and leaves Footprint nil.
func BuildStatus(engine *search.Engine, cfg *config.Config, logger *zap.Logger) (*StatusResponse, error) {
	stats, err := engine.Stats()
	if err != nil {
		return nil, err
	}

	location := cfg.Index.Dir
	if cfg.Index.Source == config.SourceSQLite {
		location = cfg.Index.DatabasePath
	}
	resp := &StatusResponse{
		Index: stats,
		Config: map[string]any{
			"index_source":       cfg.Index.Source,
			"index_location":     location,
			"index_watch":        cfg.Index.Watch.Enabled,
			"tokenizer":          cfg.Tokenizer.Kind,
			"merge_policy":       cfg.Search.MergePolicy,
			"title_match_weight": cfg.Search.TitleMatch,
			"normal_word_weight": cfg.Search.NormalWord,
			"concurrent_resolve": cfg.Search.ConcurrentResolve,
			"cache":              cacheKind(cfg.Cache),
		},
	}
	if fp, err := storage.MeasureIndex(cfg.Index.Watch.Extensions, location); err == nil {
		resp.Footprint = &fp
	} else if logger != nil {
		logger.Warn("status: measure index failed", zap.Error(err))
	}
	return resp, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := BuildStatus(s.engine, s.config, s.logger)
	if err != nil {
		s.respondEngineError(w, "status failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("index reload request")
	if err := s.engine.Reload(r.Context()); err != nil {
		if errors.Is(err, search.ErrNoSource) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("index reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := s.engine.Stats()
	if err != nil {
		s.respondEngineError(w, "status failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"status": "reloaded", "index": stats})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.engine.Snapshot() == nil {
		status = "loading"
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) threadURL(id models.ThreadID) string {
	return fmt.Sprintf(s.config.Search.ThreadURLTemplate, id)
}

func cacheKind(c config.CacheConfig) string {
	if c.RedisAddr != "" {
		return "redis"
	}
	return "memory"
}

func (s *Server) respondEngineError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, search.ErrIndexUnavailable):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, search.ErrSearchInProgress):
		s.respondError(w, http.StatusTooManyRequests, err.Error())
	default:
		s.logger.Error(msg, zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
