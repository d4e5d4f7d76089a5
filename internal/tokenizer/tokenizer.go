// Package tokenizer adapts text tokenizers to the query engine. A token has a
// surface form and, when the tokenizer recognizes it, a vocabulary id shared
// with the index builder.
package tokenizer

import (
	"fmt"

	"github.com/MaterialFill65/Search-kari/internal/cache"
)

// Token is one unit of tokenized text.
type Token struct {
	Surface string `json:"surface"`
	// VocabularyID is empty when the tokenizer has no id for the token.
	VocabularyID string `json:"vocabulary_id,omitempty"`
}

// HasID reports whether the token carries a vocabulary id.
func (t Token) HasID() bool { return t.VocabularyID != "" }

// Tokenizer splits text into an ordered token sequence. Implementations must be
// deterministic and safe for concurrent use. Callers must not modify the
// returned slice.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// Func adapts a function to the Tokenizer interface.
type Func func(text string) []Token

// Tokenize calls f.
func (f Func) Tokenize(text string) []Token { return f(text) }

// Kind selects a tokenizer implementation.
type Kind string

const (
	// KindKagome is the UniDic morphological analyzer.
	KindKagome Kind = "kagome"
	// KindVocabulary is word segmentation with a surface-to-id vocabulary file.
	KindVocabulary Kind = "vocabulary"
)

// New creates a tokenizer of the given kind, memoized with an LRU of cacheSize
// entries (no memoization when cacheSize is 0).
// Supported kinds: "kagome" (default), "vocabulary".
func New(kind string, vocabularyPath string, cacheSize int) (Tokenizer, error) {
	var (
		t   Tokenizer
		err error
	)
	switch Kind(kind) {
	case KindKagome, "":
		t, err = NewKagome()
	case KindVocabulary:
		t, err = LoadVocabulary(vocabularyPath)
	default:
		return nil, fmt.Errorf("unknown tokenizer kind: %s (supported: kagome, vocabulary)", kind)
	}
	if err != nil {
		return nil, err
	}
	return Memoize(t, cacheSize), nil
}

type memoized struct {
	next Tokenizer
	lru  *cache.LRU[[]Token]
}

// Memoize caches up to size tokenizations of t. Tokenizers are deterministic,
// so cached and fresh results are identical.
func Memoize(t Tokenizer, size int) Tokenizer {
	if size <= 0 {
		return t
	}
	return &memoized{next: t, lru: cache.NewLRU[[]Token](size)}
}

func (m *memoized) Tokenize(text string) []Token {
	if tokens, ok := m.lru.Get(text); ok {
		return tokens
	}
	tokens := m.next.Tokenize(text)
	m.lru.Set(text, tokens)
	return tokens
}
