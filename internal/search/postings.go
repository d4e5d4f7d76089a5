package search

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/MaterialFill65/Search-kari/internal/models"
)

// MatchMap maps threads to the surface forms that matched in them, keeping
// threads in first-insertion order.
type MatchMap struct {
	order   []models.ThreadID
	entries map[models.ThreadID]*models.Matches
}

// NewMatchMap returns an empty MatchMap.
func NewMatchMap() *MatchMap {
	return &MatchMap{entries: make(map[models.ThreadID]*models.Matches)}
}

// Has reports whether thread is present.
func (m *MatchMap) Has(thread models.ThreadID) bool {
	_, ok := m.entries[thread]
	return ok
}

// Get returns the matches recorded for thread.
func (m *MatchMap) Get(thread models.ThreadID) (models.Matches, bool) {
	e, ok := m.entries[thread]
	if !ok {
		return nil, false
	}
	return *e, true
}

// Entry returns the matches for thread, inserting an empty entry if absent.
func (m *MatchMap) Entry(thread models.ThreadID) *models.Matches {
	if e, ok := m.entries[thread]; ok {
		return e
	}
	e := &models.Matches{}
	m.entries[thread] = e
	m.order = append(m.order, thread)
	return e
}

// Threads returns thread ids in insertion order.
func (m *MatchMap) Threads() []models.ThreadID {
	return m.order
}

// Len returns the number of threads.
func (m *MatchMap) Len() int {
	return len(m.order)
}

// Bitmap returns the thread ids as a set.
func (m *MatchMap) Bitmap() *roaring.Bitmap {
	bm := roaring.New()
	for _, t := range m.order {
		bm.Add(uint32(t))
	}
	return bm
}
