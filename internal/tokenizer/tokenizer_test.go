package tokenizer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemoize(t *testing.T) {
	calls := 0
	inner := Func(func(text string) []Token {
		calls++
		return []Token{{Surface: text}}
	})
	m := Memoize(inner, 8)
	first := m.Tokenize("x")
	second := m.Tokenize("x")
	if calls != 1 {
		t.Errorf("inner called %d times, want 1", calls)
	}
	if len(first) != 1 || first[0] != second[0] {
		t.Errorf("memoized results differ: %v vs %v", first, second)
	}
	if Memoize(inner, 0) == nil {
		t.Error("Memoize with size 0 should return the tokenizer itself")
	}
}

func TestToken_HasID(t *testing.T) {
	if (Token{Surface: "a"}).HasID() {
		t.Error("token without id reports HasID")
	}
	if !(Token{Surface: "a", VocabularyID: "0"}).HasID() {
		t.Error("token with id \"0\" should report HasID")
	}
}

func TestNew_Vocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	if err := os.WriteFile(path, []byte(`{"dice":"w1"}`), 0644); err != nil {
		t.Fatal(err)
	}
	tok, err := New("vocabulary", path, 16)
	if err != nil {
		t.Fatalf("New(vocabulary): %v", err)
	}
	if got := tok.Tokenize("dice"); len(got) != 1 || got[0].VocabularyID != "w1" {
		t.Errorf("Tokenize = %+v", got)
	}
}

func TestNew_Unknown(t *testing.T) {
	if _, err := New("mecab", "", 0); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestNew_VocabularyMissingFile(t *testing.T) {
	if _, err := New("vocabulary", filepath.Join(t.TempDir(), "none.json"), 0); err == nil {
		t.Fatal("expected error for missing vocabulary file")
	}
}
