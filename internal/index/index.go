// Package index holds the read-only inverted index over forum threads and the
// sources it is loaded from.
//
// A Snapshot is built once from a Raw payload and never mutated afterwards, so
// any number of queries may read it concurrently.
//
// Special filter tags (for example DICE_NOTATION) are stored by the index
// builder as ordinary vocabulary ids in the words index. Tag lookups therefore
// go through the same path as word lookups: the tag name is the vocabulary id.
package index

import (
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"

	"github.com/MaterialFill65/Search-kari/internal/models"
)

// Raw is the index payload as produced by the external index builder.
type Raw struct {
	Titles     map[models.ThreadID]string     `json:"titles"`
	Authors    map[string][]models.ThreadID   `json:"author"`
	Words      map[string][]models.Occurrence `json:"words_index"`
	TitleWords map[string][]models.Occurrence `json:"title_index"`
}

// Snapshot is an immutable, query-ready view of one Raw payload.
type Snapshot struct {
	version  string
	loadedAt time.Time

	words     map[string][]models.Occurrence
	titleSets map[string]*roaring.Bitmap
	authors   map[string]*roaring.Bitmap
	titles    map[models.ThreadID]string
	threads   []models.ThreadID
	universe  *roaring.Bitmap
}

// Stats summarizes a snapshot for status reporting.
type Stats struct {
	Version         string    `json:"version"`
	LoadedAt        time.Time `json:"loaded_at"`
	Threads         int       `json:"threads"`
	Words           int       `json:"words"`
	TitleWords      int       `json:"title_words"`
	Authors         int       `json:"authors"`
	WordOccurrences int       `json:"word_occurrences"`
}

// Build turns raw into a Snapshot. Duplicate thread ids inside one occurrence
// list are merged by summing their counts, keeping the position of the first.
// raw is not retained.
func Build(raw *Raw) *Snapshot {
	if raw == nil {
		raw = &Raw{}
	}
	s := &Snapshot{
		version:   uuid.NewString(),
		loadedAt:  time.Now(),
		words:     make(map[string][]models.Occurrence, len(raw.Words)),
		titleSets: make(map[string]*roaring.Bitmap, len(raw.TitleWords)),
		authors:   make(map[string]*roaring.Bitmap, len(raw.Authors)),
		titles:    make(map[models.ThreadID]string, len(raw.Titles)),
		threads:   make([]models.ThreadID, 0, len(raw.Titles)),
		universe:  roaring.New(),
	}
	for id, occs := range raw.Words {
		s.words[id] = mergeOccurrences(occs)
	}
	for id, occs := range raw.TitleWords {
		bm := roaring.New()
		for _, o := range occs {
			bm.Add(uint32(o.Thread))
		}
		s.titleSets[id] = bm
	}
	for name, threads := range raw.Authors {
		bm := roaring.New()
		for _, t := range threads {
			bm.Add(uint32(t))
		}
		s.authors[name] = bm
	}
	for id, title := range raw.Titles {
		s.titles[id] = title
		s.threads = append(s.threads, id)
		s.universe.Add(uint32(id))
	}
	// The universe is ordered by ascending thread id, the order in which
	// integer-like keys of the titles object enumerate.
	sort.Slice(s.threads, func(i, j int) bool { return s.threads[i] < s.threads[j] })
	return s
}

func mergeOccurrences(occs []models.Occurrence) []models.Occurrence {
	out := make([]models.Occurrence, 0, len(occs))
	pos := make(map[models.ThreadID]int, len(occs))
	for _, o := range occs {
		if i, ok := pos[o.Thread]; ok {
			out[i].Count += o.Count
			continue
		}
		pos[o.Thread] = len(out)
		out = append(out, o)
	}
	return out
}

// Version is a unique id assigned when the snapshot was built.
func (s *Snapshot) Version() string { return s.version }

// Occurrences returns the occurrence list for a vocabulary id, or nil when the
// id is unknown. Callers must not modify the returned slice.
func (s *Snapshot) Occurrences(vocabID string) []models.Occurrence {
	return s.words[vocabID]
}

// InTitle reports whether vocabID occurs in the title of thread.
func (s *Snapshot) InTitle(vocabID string, thread models.ThreadID) bool {
	bm, ok := s.titleSets[vocabID]
	if !ok {
		return false
	}
	return bm.Contains(uint32(thread))
}

// AuthorThreads returns a copy of the set of threads written by author.
// Unknown authors yield an empty set.
func (s *Snapshot) AuthorThreads(author string) *roaring.Bitmap {
	bm, ok := s.authors[author]
	if !ok {
		return roaring.New()
	}
	return bm.Clone()
}

// TagThreads returns the union of threads carrying any of the given filter tags.
func (s *Snapshot) TagThreads(tags []string) *roaring.Bitmap {
	out := roaring.New()
	for _, tag := range tags {
		for _, o := range s.words[tag] {
			out.Add(uint32(o.Thread))
		}
	}
	return out
}

// Title returns the display title of thread.
func (s *Snapshot) Title(thread models.ThreadID) (string, bool) {
	t, ok := s.titles[thread]
	return t, ok
}

// Threads returns every known thread id in ascending order. Callers must not
// modify the returned slice.
func (s *Snapshot) Threads() []models.ThreadID {
	return s.threads
}

// Contains reports whether thread is part of the thread universe.
func (s *Snapshot) Contains(thread models.ThreadID) bool {
	return s.universe.Contains(uint32(thread))
}

// Stats returns counts describing the snapshot.
func (s *Snapshot) Stats() Stats {
	occ := 0
	for _, list := range s.words {
		occ += len(list)
	}
	return Stats{
		Version:         s.version,
		LoadedAt:        s.loadedAt,
		Threads:         len(s.threads),
		Words:           len(s.words),
		TitleWords:      len(s.titleSets),
		Authors:         len(s.authors),
		WordOccurrences: occ,
	}
}
