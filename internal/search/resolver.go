package search

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/MaterialFill65/Search-kari/internal/index"
	"github.com/MaterialFill65/Search-kari/internal/models"
	"github.com/MaterialFill65/Search-kari/internal/tokenizer"
)

// Scope restricts the threads a query may return. A nil set means
// unrestricted; a non-nil empty set admits nothing.
type Scope struct {
	Author *roaring.Bitmap
	Tags   *roaring.Bitmap
}

// Allows reports whether thread passes every set in the scope.
func (s Scope) Allows(thread models.ThreadID) bool {
	if s.Author != nil && !s.Author.Contains(uint32(thread)) {
		return false
	}
	if s.Tags != nil && !s.Tags.Contains(uint32(thread)) {
		return false
	}
	return true
}

// Empty reports whether the scope admits no thread at all.
func (s Scope) Empty() bool {
	return (s.Author != nil && s.Author.IsEmpty()) || (s.Tags != nil && s.Tags.IsEmpty())
}

// Resolver turns a keyword into the threads containing it.
type Resolver struct {
	snap *index.Snapshot
	tok  tokenizer.Tokenizer
}

// NewResolver returns a resolver over one snapshot.
func NewResolver(snap *index.Snapshot, tok tokenizer.Tokenizer) *Resolver {
	return &Resolver{snap: snap, tok: tok}
}

// Resolve tokenizes keyword and returns every thread containing at least one
// of its tokens, with the count of each matching surface form. Tokens without
// a vocabulary id are skipped. When two tokens share a surface form the later
// one's count replaces the earlier. Threads outside scope are dropped.
func (r *Resolver) Resolve(keyword string, scope Scope) *MatchMap {
	out := NewMatchMap()
	for _, tok := range r.tok.Tokenize(keyword) {
		if !tok.HasID() {
			continue
		}
		for _, occ := range r.snap.Occurrences(tok.VocabularyID) {
			if !scope.Allows(occ.Thread) {
				continue
			}
			out.Entry(occ.Thread).Set(tok.Surface, occ.Count)
		}
	}
	return out
}

// Threads returns the set of threads containing any token of keyword.
func (r *Resolver) Threads(keyword string) *roaring.Bitmap {
	bm := roaring.New()
	for _, tok := range r.tok.Tokenize(keyword) {
		if !tok.HasID() {
			continue
		}
		for _, occ := range r.snap.Occurrences(tok.VocabularyID) {
			bm.Add(uint32(occ.Thread))
		}
	}
	return bm
}

// Excluded returns the union of threads matched by any negative keyword.
func (r *Resolver) Excluded(negatives []string) *roaring.Bitmap {
	bm := roaring.New()
	for _, kw := range negatives {
		bm.Or(r.Threads(kw))
	}
	return bm
}
