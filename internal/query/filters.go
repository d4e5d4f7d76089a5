package query

import (
	"fmt"
	"regexp"
)

// Names of the built-in filter tags. Each name is also the vocabulary id under
// which the index builder stores the threads carrying the tag.
const (
	DiceNotation = "DICE_NOTATION"
	SSNotation   = "SS_NOTATION"
)

// Definition names a filter tag and the pattern that triggers it.
type Definition struct {
	Name    string `yaml:"name" json:"name"`
	Pattern string `yaml:"pattern" json:"pattern"`
}

// DefaultDefinitions returns the built-in filter tags.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: DiceNotation, Pattern: `(?i)dice`},
		{Name: SSNotation, Pattern: `SS`},
	}
}

// Filter is a compiled filter tag.
type Filter struct {
	Name    string
	Pattern *regexp.Regexp
}

// Registry is an ordered, fixed table of filter tags evaluated once per query.
type Registry struct {
	filters []Filter
}

// NewRegistry compiles defs. Names must be unique and non-empty.
func NewRegistry(defs ...Definition) (*Registry, error) {
	seen := make(map[string]bool, len(defs))
	r := &Registry{filters: make([]Filter, 0, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("filter tag with pattern %q has no name", d.Pattern)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate filter tag %q", d.Name)
		}
		seen[d.Name] = true
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return nil, fmt.Errorf("filter tag %s: invalid pattern: %w", d.Name, err)
		}
		r.filters = append(r.filters, Filter{Name: d.Name, Pattern: re})
	}
	return r, nil
}

// DefaultRegistry returns the registry of built-in filter tags.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultDefinitions()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Filters returns the compiled filters in definition order.
func (r *Registry) Filters() []Filter {
	if r == nil {
		return nil
	}
	return r.filters
}

// Match returns the names of the filters whose pattern matches keyword.
func (r *Registry) Match(keyword string) []string {
	var names []string
	for _, f := range r.Filters() {
		if f.Pattern.MatchString(keyword) {
			names = append(names, f.Name)
		}
	}
	return names
}
