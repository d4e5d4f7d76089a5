package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

// Vocabulary tokenizes with Unicode word segmentation and assigns ids from a
// surface-to-id table. Text is NFKC-normalized first; segments without letters
// or digits are dropped. Lookup tries the exact surface, then its lowercase form.
type Vocabulary struct {
	ids map[string]string
}

// NewVocabulary returns a tokenizer over ids (surface form -> vocabulary id).
func NewVocabulary(ids map[string]string) *Vocabulary {
	cp := make(map[string]string, len(ids))
	for k, v := range ids {
		cp[k] = v
	}
	return &Vocabulary{ids: cp}
}

// LoadVocabulary reads a JSON object mapping surface forms to vocabulary ids.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return nil, fmt.Errorf("vocabulary path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	var ids map[string]string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	return &Vocabulary{ids: ids}, nil
}

// Size returns the number of vocabulary entries.
func (v *Vocabulary) Size() int { return len(v.ids) }

// Tokenize segments text into words.
func (v *Vocabulary) Tokenize(text string) []Token {
	seg := words.FromString(norm.NFKC.String(text))
	var out []Token
	for seg.Next() {
		s := seg.Value()
		if !isWord(s) {
			continue
		}
		out = append(out, Token{Surface: s, VocabularyID: v.lookup(s)})
	}
	return out
}

func (v *Vocabulary) lookup(surface string) string {
	if id, ok := v.ids[surface]; ok {
		return id
	}
	return v.ids[strings.ToLower(surface)]
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
