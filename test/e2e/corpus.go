// Package e2e provides end-to-end tests over a generated forum corpus.
package e2e

import (
	"fmt"

	"github.com/MaterialFill65/Search-kari/internal/index"
	"github.com/MaterialFill65/Search-kari/internal/models"
	"github.com/MaterialFill65/Search-kari/internal/query"
)

// Vocabulary ids of the words every corpus shares.
const (
	commonWord  = "board"
	spoilerWord = "spoiler"
)

var topics = []string{"cat", "dog", "fish", "bird", "horse", "train", "ramen", "guitar"}

// QueryTestCase is a query and the exact set of threads it must return.
// When Ordered is set the results must come back in exactly that order.
type QueryTestCase struct {
	Query       string
	Expected    []models.ThreadID
	Ordered     bool
	Description string
}

// Corpus is a generated index with its vocabulary and query cases.
type Corpus struct {
	Raw        *index.Raw
	Vocabulary map[string]string
	TestCases  []QueryTestCase
}

// threadPlan is what the generator decided about one thread.
type threadPlan struct {
	id      models.ThreadID
	topic   string
	author  string
	common  int
	spoiler bool
	dice    bool
}

// BuildCorpus returns n threads (ids 1..n). Thread i is about
// topics[i%len(topics)], written by author<i%7>, carries a unique signature
// word sig<i>, mentions the common word (i*7)%11+1 times, contains the spoiler
// word when i%10 == 0 and is tagged as a dice thread when i%4 == 0.
func BuildCorpus(n int) *Corpus {
	plans := make([]threadPlan, 0, n)
	for i := 1; i <= n; i++ {
		plans = append(plans, threadPlan{
			id:      models.ThreadID(i),
			topic:   topics[i%len(topics)],
			author:  fmt.Sprintf("author%d", i%7),
			common:  (i*7)%11 + 1,
			spoiler: i%10 == 0,
			dice:    i%4 == 0,
		})
	}

	raw := &index.Raw{
		Titles:     make(map[models.ThreadID]string, n),
		Authors:    make(map[string][]models.ThreadID),
		Words:      make(map[string][]models.Occurrence),
		TitleWords: make(map[string][]models.Occurrence),
	}
	vocab := map[string]string{commonWord: commonWord, spoilerWord: spoilerWord}
	for _, topic := range topics {
		vocab[topic] = topic
	}

	// Plans are in ascending id order, so every posting list is too.
	for _, s := range plans {
		sig := fmt.Sprintf("sig%d", s.id)
		vocab[sig] = sig
		raw.Titles[s.id] = fmt.Sprintf("%s talk #%d", s.topic, s.id)
		raw.Authors[s.author] = append(raw.Authors[s.author], s.id)
		raw.TitleWords[s.topic] = append(raw.TitleWords[s.topic], models.Occurrence{Thread: s.id, Count: 1})
		raw.Words[s.topic] = append(raw.Words[s.topic], models.Occurrence{Thread: s.id, Count: 2})
		raw.Words[sig] = append(raw.Words[sig], models.Occurrence{Thread: s.id, Count: 1})
		raw.Words[commonWord] = append(raw.Words[commonWord], models.Occurrence{Thread: s.id, Count: s.common})
		if s.spoiler {
			raw.Words[spoilerWord] = append(raw.Words[spoilerWord], models.Occurrence{Thread: s.id, Count: 1})
		}
		if s.dice {
			raw.Words[query.DiceNotation] = append(raw.Words[query.DiceNotation], models.Occurrence{Thread: s.id, Count: 1})
		}
	}

	return &Corpus{Raw: raw, Vocabulary: vocab, TestCases: buildQueryTestCases(plans)}
}

func buildQueryTestCases(plans []threadPlan) []QueryTestCase {
	pick := func(keep func(threadPlan) bool) []models.ThreadID {
		var ids []models.ThreadID
		for _, s := range plans {
			if keep(s) {
				ids = append(ids, s.id)
			}
		}
		return ids
	}

	var cases []QueryTestCase
	if len(plans) > 0 {
		last := plans[len(plans)-1]
		cases = append(cases, QueryTestCase{
			Query:       fmt.Sprintf("sig%d", last.id),
			Expected:    []models.ThreadID{last.id},
			Ordered:     true,
			Description: "signature word finds exactly one thread",
		})
	}
	for _, topic := range topics[:3] {
		topic := topic
		cases = append(cases,
			QueryTestCase{
				Query:       topic,
				Expected:    pick(func(s threadPlan) bool { return s.topic == topic }),
				Ordered:     true,
				Description: "equal title scores keep posting order",
			},
			QueryTestCase{
				Query:       topic + " -" + spoilerWord,
				Expected:    pick(func(s threadPlan) bool { return s.topic == topic && !s.spoiler }),
				Ordered:     true,
				Description: "negation removes spoiler threads",
			},
			QueryTestCase{
				Query:       topic + " dice",
				Expected:    pick(func(s threadPlan) bool { return s.topic == topic && s.dice }),
				Ordered:     true,
				Description: "filter word restricts to dice threads",
			},
			QueryTestCase{
				Query:       "author:author3 " + topic,
				Expected:    pick(func(s threadPlan) bool { return s.topic == topic && s.author == "author3" }),
				Ordered:     true,
				Description: "author clause intersects with keywords",
			},
		)
	}
	cases = append(cases,
		QueryTestCase{
			Query:       commonWord,
			Expected:    pick(func(threadPlan) bool { return true }),
			Description: "common word matches every thread",
		},
		QueryTestCase{
			Query:       "author:author5",
			Expected:    pick(func(s threadPlan) bool { return s.author == "author5" }),
			Ordered:     true,
			Description: "author only query keeps author list order",
		},
		QueryTestCase{
			Query:       topics[0] + " " + topics[1],
			Expected:    nil,
			Description: "threads have a single topic",
		},
		QueryTestCase{
			Query:       "unknownword",
			Expected:    nil,
			Description: "out of vocabulary keyword matches nothing",
		},
	)
	return cases
}
