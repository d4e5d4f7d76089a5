package search

import (
	"strings"

	"github.com/MaterialFill65/Search-kari/internal/config"
	"github.com/MaterialFill65/Search-kari/internal/index"
	"github.com/MaterialFill65/Search-kari/internal/models"
	"github.com/MaterialFill65/Search-kari/internal/query"
	"github.com/MaterialFill65/Search-kari/internal/tokenizer"
)

// splitTokenizer splits on whitespace and '+', giving each piece the id found
// in vocab.
func splitTokenizer(vocab map[string]string) tokenizer.Tokenizer {
	return tokenizer.Func(func(text string) []tokenizer.Token {
		parts := strings.FieldsFunc(text, func(r rune) bool {
			return r == '+' || r == ' ' || r == '\t' || r == '\n'
		})
		out := make([]tokenizer.Token, 0, len(parts))
		for _, p := range parts {
			out = append(out, tokenizer.Token{Surface: p, VocabularyID: vocab[p]})
		}
		return out
	})
}

var testVocab = map[string]string{
	"cat":     "w-cat",
	"dog":     "w-dog",
	"fish":    "w-fish",
	"bird":    "w-bird",
	"spoiler": "w-spoiler",
	"dice":    "w-dice",
	"title":   "w-title",
}

// testRaw is a small corpus:
//
//	1 "Cats and dice"   cat:3 dog:1      title: cat dice   tag DICE
//	2 "Dogs"            cat:1 dog:4      title: dog
//	3 "Fish spoilers"   fish:2 spoiler:1                   tag SS
//	4 "Birds"           bird:5 cat:2                       author alice
func testRaw() *index.Raw {
	return &index.Raw{
		Titles: map[models.ThreadID]string{
			1: "Cats and dice",
			2: "Dogs",
			3: "Fish spoilers",
			4: "Birds",
		},
		Authors: map[string][]models.ThreadID{
			"alice": {4, 2},
			"bob":   {3},
		},
		Words: map[string][]models.Occurrence{
			"w-cat":            {{Thread: 1, Count: 3}, {Thread: 2, Count: 1}, {Thread: 4, Count: 2}},
			"w-dog":            {{Thread: 2, Count: 4}, {Thread: 1, Count: 1}},
			"w-fish":           {{Thread: 3, Count: 2}},
			"w-spoiler":        {{Thread: 3, Count: 1}},
			"w-bird":           {{Thread: 4, Count: 5}},
			query.DiceNotation: {{Thread: 1, Count: 1}},
			query.SSNotation:   {{Thread: 3, Count: 1}},
		},
		TitleWords: map[string][]models.Occurrence{
			"w-cat":  {{Thread: 1, Count: 1}},
			"w-dice": {{Thread: 1, Count: 1}},
			"w-dog":  {{Thread: 2, Count: 1}},
		},
	}
}

func newTestEngine(t interface{ Fatal(...any) }, mutate func(*config.SearchConfig), opts ...Option) *Engine {
	cfg := config.Default().Search
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewEngine(splitTokenizer(testVocab), &cfg, opts...)
	if err != nil {
		t.Fatal(err)
	}
	e.Swap(index.Build(testRaw()))
	return e
}

func threadIDs(results []*models.SearchResult) []models.ThreadID {
	out := make([]models.ThreadID, len(results))
	for i, r := range results {
		out[i] = r.ThreadID
	}
	return out
}
