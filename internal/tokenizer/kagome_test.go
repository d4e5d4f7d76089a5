package tokenizer

import (
	"strings"
	"testing"
)

func TestKagome_Tokenize(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the UniDic dictionary")
	}
	k, err := NewKagome()
	if err != nil {
		t.Fatalf("NewKagome: %v", err)
	}
	text := "すもももももももものうち"
	toks := k.Tokenize(text)
	if len(toks) == 0 {
		t.Fatal("no tokens")
	}
	var sb strings.Builder
	withID := 0
	for _, tok := range toks {
		sb.WriteString(tok.Surface)
		if tok.HasID() {
			withID++
		}
	}
	if sb.String() != text {
		t.Errorf("surfaces concatenate to %q, want %q", sb.String(), text)
	}
	if withID == 0 {
		t.Error("expected dictionary words to carry vocabulary ids")
	}

	again := k.Tokenize(text)
	if len(again) != len(toks) {
		t.Fatalf("tokenization not deterministic: %d vs %d tokens", len(again), len(toks))
	}
	for i := range toks {
		if again[i] != toks[i] {
			t.Errorf("token %d differs: %+v vs %+v", i, again[i], toks[i])
		}
	}
}
