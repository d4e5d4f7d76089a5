package cache

import (
	"context"
	"testing"

	"github.com/MaterialFill65/Search-kari/internal/models"
)

func TestKey(t *testing.T) {
	if Key("v1", "dice") == Key("v2", "dice") {
		t.Error("keys for different versions must differ")
	}
	if Key("v1", "a b") == Key("v1a", " b") {
		t.Error("version and query must be separated")
	}
	if Key("v1", "dice") != Key("v1", "dice") {
		t.Error("Key must be deterministic")
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(4)
	in := []*models.SearchResult{{ThreadID: 1, Score: 10, Matches: models.Matches{{Surface: "a", Count: 2}}}}
	m.Set(ctx, "k", in)

	in[0].Score = 0
	got, ok := m.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got[0].Score != 10 {
		t.Errorf("cached score = %v, want 10", got[0].Score)
	}
	got[0].URL = "changed"
	got[0].Matches.Set("a", 99)

	again, _ := m.Get(ctx, "k")
	if again[0].URL != "" || again[0].Matches[0].Count != 2 {
		t.Errorf("cache entry mutated through returned copy: %+v", again[0])
	}
	if _, ok := m.Get(ctx, "missing"); ok {
		t.Error("unexpected hit")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d", m.Len())
	}
}
