// Package models defines core data structures for index postings, queries, and search results.
package models

import (
	"fmt"
	"strconv"
)

// ThreadID identifies a forum thread. Thread ids fit in 32 bits so they can be
// stored in roaring bitmaps.
type ThreadID uint32

// ParseThreadID parses a decimal thread id as it appears in index JSON keys and URLs.
func ParseThreadID(s string) (ThreadID, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid thread id %q: %w", s, err)
	}
	return ThreadID(n), nil
}

func (t ThreadID) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// Occurrence records that a vocabulary id appears Count times in Thread.
type Occurrence struct {
	Thread ThreadID `json:"t"`
	Count  int      `json:"c"`
}
