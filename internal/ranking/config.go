package ranking

// Weights holds the scoring constants.
type Weights struct {
	// TitleMatch is added once per query token whose word occurs in the
	// thread's title.
	TitleMatch float64 `yaml:"title_match_weight"` // default: 10
	// SpecialWord is reserved and not applied.
	SpecialWord float64 `yaml:"special_word_weight"` // default: 5
	// NormalWord multiplies the body occurrence count of a query token.
	NormalWord float64 `yaml:"normal_word_weight"` // default: 1
	// ProximityBonus is reserved and not applied.
	ProximityBonus float64 `yaml:"proximity_bonus"` // default: 0.5
}

// BaseScore is the score of every thread matched by a query without positive
// keywords.
const BaseScore = 1.0

// DefaultWeights returns the default scoring weights.
func DefaultWeights() *Weights {
	return &Weights{
		TitleMatch:     10,
		SpecialWord:    5,
		NormalWord:     1,
		ProximityBonus: 0.5,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (w *Weights) ApplyDefaults() {
	defaults := DefaultWeights()

	if w.TitleMatch == 0 {
		w.TitleMatch = defaults.TitleMatch
	}
	if w.SpecialWord == 0 {
		w.SpecialWord = defaults.SpecialWord
	}
	if w.NormalWord == 0 {
		w.NormalWord = defaults.NormalWord
	}
	if w.ProximityBonus == 0 {
		w.ProximityBonus = defaults.ProximityBonus
	}
}
