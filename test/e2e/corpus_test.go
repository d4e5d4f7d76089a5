package e2e

import (
	"testing"

	"github.com/MaterialFill65/Search-kari/internal/models"
)

func TestBuildCorpus_Threads(t *testing.T) {
	c := BuildCorpus(50)
	if len(c.Raw.Titles) != 50 {
		t.Errorf("titles = %d, want 50", len(c.Raw.Titles))
	}
	if got := len(c.Raw.Words[commonWord]); got != 50 {
		t.Errorf("common word postings = %d, want 50", got)
	}
	for word, occs := range c.Raw.Words {
		for i := 1; i < len(occs); i++ {
			if occs[i].Thread <= occs[i-1].Thread {
				t.Errorf("postings for %q not ascending at %d", word, i)
				break
			}
		}
	}
}

func TestBuildCorpus_QueryTestCases(t *testing.T) {
	c := BuildCorpus(50)
	if len(c.TestCases) == 0 {
		t.Fatal("expected query test cases")
	}
	nonEmpty := 0
	for i, tc := range c.TestCases {
		if tc.Query == "" {
			t.Errorf("test case %d: empty query", i)
		}
		if tc.Description == "" {
			t.Errorf("test case %d: no description", i)
		}
		if len(tc.Expected) > 0 {
			nonEmpty++
		}
		for _, id := range tc.Expected {
			if _, ok := c.Raw.Titles[id]; !ok {
				t.Errorf("test case %q expects unknown thread %d", tc.Query, id)
			}
		}
	}
	if nonEmpty < len(c.TestCases)/2 {
		t.Errorf("only %d of %d cases expect results", nonEmpty, len(c.TestCases))
	}
}

func TestBuildCorpus_SignatureWordsInVocabulary(t *testing.T) {
	c := BuildCorpus(10)
	for id := models.ThreadID(1); id <= 10; id++ {
		word := "sig" + id.String()
		if c.Vocabulary[word] != word {
			t.Errorf("vocabulary missing %q", word)
		}
	}
}
