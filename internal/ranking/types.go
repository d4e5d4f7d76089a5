// Package ranking scores matched threads and orders them for display.
package ranking

import (
	"fmt"

	"github.com/MaterialFill65/Search-kari/internal/models"
)

// TitleLookup reports title membership of a word. *index.Snapshot satisfies it.
type TitleLookup interface {
	InTitle(vocabID string, thread models.ThreadID) bool
}

// ContributionKind says how one query token added to a score.
type ContributionKind int

const (
	// ContributionNone means the token had no vocabulary id or no matches.
	ContributionNone ContributionKind = iota
	// ContributionBody means the token was scored by its body count.
	ContributionBody
	// ContributionTitle means the token occurs in the thread title.
	ContributionTitle
)

// String returns a string representation of the contribution kind.
func (k ContributionKind) String() string {
	switch k {
	case ContributionNone:
		return "none"
	case ContributionBody:
		return "body"
	case ContributionTitle:
		return "title"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k ContributionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *ContributionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*k = ContributionNone
	case "body":
		*k = ContributionBody
	case "title":
		*k = ContributionTitle
	default:
		return fmt.Errorf("unknown contribution kind %q", text)
	}
	return nil
}

// Contribution is one query token's share of a score.
type Contribution struct {
	Surface string           `json:"surface"`
	Kind    ContributionKind `json:"kind"`
	Value   float64          `json:"value"`
}

// ScoreBreakdown provides detailed scoring information for debugging.
type ScoreBreakdown struct {
	Contributions []Contribution `json:"contributions"`
	TitleHits     int            `json:"title_hits"`
	FinalScore    float64        `json:"final_score"`
}
