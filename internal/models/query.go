package models

import "strings"

// SearchQuery is a search request. Query is the raw query text, passed to the
// engine untouched (author clause, negations and filter words included).
type SearchQuery struct {
	Query string `json:"query"`
	// Limit caps the number of results returned to the caller; 0 means all.
	// Ranking always covers the full result set.
	Limit int `json:"limit,omitempty"`
}

// Normalize clamps Limit to [0, maxLimit]. A maxLimit of 0 leaves Limit unbounded.
func (q *SearchQuery) Normalize(maxLimit int) {
	if q.Limit < 0 {
		q.Limit = 0
	}
	if maxLimit > 0 && (q.Limit == 0 || q.Limit > maxLimit) {
		q.Limit = maxLimit
	}
}

// Blank reports whether the query holds no text at all.
func (q *SearchQuery) Blank() bool {
	return strings.TrimSpace(q.Query) == ""
}
