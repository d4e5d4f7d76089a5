package ranking

import (
	"sort"

	"github.com/MaterialFill65/Search-kari/internal/models"
	"github.com/MaterialFill65/Search-kari/internal/tokenizer"
)

// Ranker scores threads against the tokens of the full query text.
type Ranker struct {
	weights *Weights
}

// NewRanker creates a new Ranker. A nil weights value uses the defaults.
func NewRanker(weights *Weights) *Ranker {
	if weights == nil {
		weights = DefaultWeights()
	}
	weights.ApplyDefaults()
	return &Ranker{weights: weights}
}

// Weights returns the weights in use.
func (r *Ranker) Weights() Weights {
	return *r.weights
}

// Score sums, over every query token that has a vocabulary id, TitleMatch when
// the word occurs in the thread's title and otherwise NormalWord times the
// count recorded for the token's surface form. Tokens are not deduplicated,
// and a token contributes in the title case even when it was never searched as
// a keyword.
func (r *Ranker) Score(titles TitleLookup, thread models.ThreadID, queryTokens []tokenizer.Token, matches models.Matches) float64 {
	score := 0.0
	for _, tok := range queryTokens {
		if !tok.HasID() {
			continue
		}
		if titles.InTitle(tok.VocabularyID, thread) {
			score += r.weights.TitleMatch
			continue
		}
		if n, ok := matches.Get(tok.Surface); ok && n != 0 {
			score += r.weights.NormalWord * float64(n)
		}
	}
	return score
}

// ScoreWithBreakdown returns detailed scoring information. Its FinalScore
// always equals Score for the same inputs.
func (r *Ranker) ScoreWithBreakdown(titles TitleLookup, thread models.ThreadID, queryTokens []tokenizer.Token, matches models.Matches) *ScoreBreakdown {
	b := &ScoreBreakdown{Contributions: make([]Contribution, 0, len(queryTokens))}
	for _, tok := range queryTokens {
		c := Contribution{Surface: tok.Surface}
		switch {
		case !tok.HasID():
		case titles.InTitle(tok.VocabularyID, thread):
			c.Kind = ContributionTitle
			c.Value = r.weights.TitleMatch
			b.TitleHits++
		default:
			if n, ok := matches.Get(tok.Surface); ok && n != 0 {
				c.Kind = ContributionBody
				c.Value = r.weights.NormalWord * float64(n)
			}
		}
		b.FinalScore += c.Value
		b.Contributions = append(b.Contributions, c)
	}
	return b
}

// Rank sorts results by descending score and assigns 1-based ranks. The sort
// is stable, so equal scores keep their incoming order.
func Rank(results []*models.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i, r := range results {
		r.Rank = i + 1
	}
}
