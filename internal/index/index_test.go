package index

import (
	"testing"

	"github.com/MaterialFill65/Search-kari/internal/models"
)

func sampleRaw() *Raw {
	return &Raw{
		Titles: map[models.ThreadID]string{
			30: "Third",
			1:  "Dice Thread",
			2:  "Other",
		},
		Authors: map[string][]models.ThreadID{
			"alice": {1, 30},
		},
		Words: map[string][]models.Occurrence{
			"w1":            {{Thread: 1, Count: 3}, {Thread: 2, Count: 1}},
			"dup":           {{Thread: 2, Count: 2}, {Thread: 1, Count: 1}, {Thread: 2, Count: 5}},
			"DICE_NOTATION": {{Thread: 1, Count: 1}},
			"SS_NOTATION":   {{Thread: 30, Count: 1}},
		},
		TitleWords: map[string][]models.Occurrence{
			"w1": {{Thread: 1, Count: 1}},
		},
	}
}

func TestBuild_ThreadsAscending(t *testing.T) {
	s := Build(sampleRaw())
	got := s.Threads()
	want := []models.ThreadID{1, 2, 30}
	if len(got) != len(want) {
		t.Fatalf("Threads() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Threads()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if !s.Contains(30) || s.Contains(4) {
		t.Error("Contains mismatch")
	}
}

func TestBuild_MergesDuplicateOccurrences(t *testing.T) {
	s := Build(sampleRaw())
	occs := s.Occurrences("dup")
	if len(occs) != 2 {
		t.Fatalf("Occurrences(dup) = %v, want 2 entries", occs)
	}
	if occs[0].Thread != 2 || occs[0].Count != 7 {
		t.Errorf("first occurrence = %+v, want thread 2 count 7", occs[0])
	}
	if occs[1].Thread != 1 || occs[1].Count != 1 {
		t.Errorf("second occurrence = %+v, want thread 1 count 1", occs[1])
	}
}

func TestSnapshot_MissingKeysAreEmpty(t *testing.T) {
	s := Build(sampleRaw())
	if occs := s.Occurrences("nope"); len(occs) != 0 {
		t.Errorf("Occurrences(nope) = %v", occs)
	}
	if s.InTitle("nope", 1) {
		t.Error("InTitle on unknown id should be false")
	}
	if bm := s.AuthorThreads("ghost"); !bm.IsEmpty() {
		t.Errorf("AuthorThreads(ghost) cardinality = %d", bm.GetCardinality())
	}
	if _, ok := s.Title(99); ok {
		t.Error("Title(99) should be absent")
	}
}

func TestSnapshot_Lookups(t *testing.T) {
	s := Build(sampleRaw())
	if !s.InTitle("w1", 1) || s.InTitle("w1", 2) {
		t.Error("InTitle(w1) mismatch")
	}
	authors := s.AuthorThreads("alice")
	if !authors.Contains(1) || !authors.Contains(30) || authors.Contains(2) {
		t.Errorf("AuthorThreads(alice) = %v", authors.ToArray())
	}
	authors.Add(2)
	if s.AuthorThreads("alice").Contains(2) {
		t.Error("AuthorThreads must return a copy")
	}
	tags := s.TagThreads([]string{"DICE_NOTATION", "SS_NOTATION"})
	if tags.GetCardinality() != 2 || !tags.Contains(1) || !tags.Contains(30) {
		t.Errorf("TagThreads = %v", tags.ToArray())
	}
	if title, ok := s.Title(1); !ok || title != "Dice Thread" {
		t.Errorf("Title(1) = %q, %v", title, ok)
	}
}

func TestSnapshot_Stats(t *testing.T) {
	s := Build(sampleRaw())
	st := s.Stats()
	if st.Threads != 3 || st.Words != 4 || st.TitleWords != 1 || st.Authors != 1 {
		t.Errorf("Stats = %+v", st)
	}
	if st.WordOccurrences != 6 {
		t.Errorf("WordOccurrences = %d, want 6", st.WordOccurrences)
	}
	if st.Version == "" || st.Version == Build(sampleRaw()).Version() {
		t.Error("each build should get a distinct version")
	}
}

func TestBuild_NilRaw(t *testing.T) {
	s := Build(nil)
	if len(s.Threads()) != 0 {
		t.Errorf("Threads() = %v", s.Threads())
	}
}
