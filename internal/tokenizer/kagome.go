package tokenizer

import (
	"fmt"
	"strconv"

	"github.com/ikawaha/kagome-dict/uni"
	kagome "github.com/ikawaha/kagome/v2/tokenizer"
)

// Kagome is a Japanese morphological tokenizer over the UniDic dictionary.
// Dictionary entries carry their entry index as vocabulary id; unknown words
// carry none.
type Kagome struct {
	t *kagome.Tokenizer
}

// NewKagome loads the UniDic dictionary and builds a tokenizer.
func NewKagome() (*Kagome, error) {
	t, err := kagome.New(uni.Dict(), kagome.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("failed to build kagome tokenizer: %w", err)
	}
	return &Kagome{t: t}, nil
}

// Tokenize runs morphological analysis in normal mode.
func (k *Kagome) Tokenize(text string) []Token {
	raw := k.t.Tokenize(text)
	out := make([]Token, 0, len(raw))
	for _, tok := range raw {
		switch tok.Class {
		case kagome.DUMMY:
			continue
		case kagome.KNOWN, kagome.USER:
			out = append(out, Token{Surface: tok.Surface, VocabularyID: strconv.Itoa(tok.ID)})
		default:
			out = append(out, Token{Surface: tok.Surface})
		}
	}
	return out
}
