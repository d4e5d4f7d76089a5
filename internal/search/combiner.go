package search

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/MaterialFill65/Search-kari/internal/models"
)

// MergePolicy decides how the matches of one thread found by several keywords
// are combined.
type MergePolicy int

const (
	// FirstSeenWins keeps the count of the first keyword that recorded a
	// surface form; later keywords only add new surface forms.
	FirstSeenWins MergePolicy = iota
	// Sum adds counts of a surface form recorded by several keywords.
	Sum
)

// String returns the config name of the policy.
func (p MergePolicy) String() string {
	switch p {
	case FirstSeenWins:
		return "first_seen"
	case Sum:
		return "sum"
	default:
		return "unknown"
	}
}

// ParseMergePolicy maps a config name to a policy. Empty means FirstSeenWins.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first_seen", "first-seen":
		return FirstSeenWins, nil
	case "sum":
		return Sum, nil
	default:
		return 0, fmt.Errorf("unknown merge policy %q", s)
	}
}

func (p MergePolicy) merge(dst *models.Matches, src models.Matches) {
	for _, m := range src {
		prev, ok := dst.Get(m.Surface)
		switch {
		case !ok:
			dst.Set(m.Surface, m.Count)
		case p == Sum:
			dst.Set(m.Surface, prev+m.Count)
		}
	}
}

// Constraints are the set restrictions applied while combining.
type Constraints struct {
	Scope
	// Excluded threads never appear in the result.
	Excluded *roaring.Bitmap
}

func (c Constraints) allows(thread models.ThreadID) bool {
	if c.Excluded != nil && c.Excluded.Contains(uint32(thread)) {
		return false
	}
	return c.Scope.Allows(thread)
}

// Combine intersects the per-keyword match maps. The first map is the pivot:
// the result holds its threads, in its order, that occur in every other map
// and pass the constraints. With no keyword maps the result is every thread of
// universe that passes the constraints, each with empty matches.
func Combine(universe []models.ThreadID, perKeyword []*MatchMap, c Constraints, policy MergePolicy) *MatchMap {
	out := NewMatchMap()
	if c.Scope.Empty() {
		return out
	}

	if len(perKeyword) == 0 {
		for _, t := range universe {
			if c.allows(t) {
				out.Entry(t)
			}
		}
		return out
	}

	pivot := perKeyword[0]
	for _, t := range pivot.Threads() {
		if !c.allows(t) || !inAll(t, perKeyword[1:]) {
			continue
		}
		dst := out.Entry(t)
		for _, m := range perKeyword {
			src, _ := m.Get(t)
			policy.merge(dst, src)
		}
	}
	return out
}

func inAll(thread models.ThreadID, maps []*MatchMap) bool {
	for _, m := range maps {
		if !m.Has(thread) {
			return false
		}
	}
	return true
}
