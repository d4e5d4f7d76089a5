// Package query parses raw query text into a structured search intent.
//
// Syntax: whitespace-separated keywords, all of which must match (AND). A
// keyword prefixed with "-" excludes threads matching it. An "author:<name>"
// clause restricts results to one author; only the first clause counts.
// Keywords matching a filter tag pattern (see Registry) select that tag
// instead of being searched as text.
package query

import (
	"regexp"
	"strings"
)

var authorClause = regexp.MustCompile(`author:(\S+)`)

// Query is a parsed search query.
type Query struct {
	Raw string
	// Author is the author constraint; HasAuthor distinguishes "no clause".
	Author    string
	HasAuthor bool
	// Keywords are the positive search terms, filter triggers removed.
	Keywords []string
	// NegativeKeywords are excluded terms, prefix stripped. Filter patterns are
	// not applied to them.
	NegativeKeywords []string
	// Filters are the matched filter tag names in registry order, each once.
	Filters []string
}

// Empty reports whether the query constrains nothing.
func (q *Query) Empty() bool {
	return !q.HasAuthor && len(q.Keywords) == 0 && len(q.NegativeKeywords) == 0 && len(q.Filters) == 0
}

// Parser turns raw query text into a Query. It is safe for concurrent use.
type Parser struct {
	filters *Registry
}

// NewParser returns a parser recognizing the given filter tags. A nil registry
// recognizes none.
func NewParser(filters *Registry) *Parser {
	return &Parser{filters: filters}
}

// Parse never fails; text with no clauses yields an empty Query, which matches
// every thread.
func (p *Parser) Parse(raw string) *Query {
	q := &Query{
		Raw:              raw,
		Keywords:         []string{},
		NegativeKeywords: []string{},
		Filters:          []string{},
	}

	rest := raw
	if loc := authorClause.FindStringSubmatchIndex(raw); loc != nil {
		q.Author = raw[loc[2]:loc[3]]
		q.HasAuthor = true
		rest = raw[:loc[0]] + raw[loc[1]:]
	}

	matched := make(map[string]bool)
	for _, word := range strings.Fields(rest) {
		if strings.HasPrefix(word, "-") {
			if neg := strings.TrimPrefix(word, "-"); neg != "" {
				q.NegativeKeywords = append(q.NegativeKeywords, neg)
			}
			continue
		}
		tags := p.filters.Match(word)
		if len(tags) == 0 {
			q.Keywords = append(q.Keywords, word)
			continue
		}
		for _, tag := range tags {
			matched[tag] = true
		}
	}
	for _, f := range p.filters.Filters() {
		if matched[f.Name] {
			q.Filters = append(q.Filters, f.Name)
		}
	}
	return q
}
