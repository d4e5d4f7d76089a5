package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSearch(OutcomeHit, false, time.Millisecond, 3)
	m.ObserveCache(true)
	m.ObserveIndexLoad(nil, time.Second, 1, 1)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveSearch(OutcomeHit, false, 2*time.Millisecond, 3)
	m.ObserveSearch(OutcomeUnavailable, false, time.Millisecond, 0)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveIndexLoad(nil, time.Second, 42, 7)
	m.ObserveIndexLoad(errors.New("boom"), time.Second, 0, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`kari_search_queries_total{outcome="hit"} 1`,
		`kari_search_queries_total{outcome="unavailable"} 1`,
		`kari_cache_hits_total 1`,
		`kari_cache_misses_total 1`,
		`kari_index_loads_total{status="ok"} 1`,
		`kari_index_loads_total{status="error"} 1`,
		`kari_indexed_threads 42`,
		`kari_indexed_words 7`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveCache(true)
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if strings.Contains(rec.Body.String(), "kari_cache_hits_total 1") {
		t.Error("registries should not share collectors")
	}
}
