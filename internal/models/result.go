package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Match is the count of one surface form inside a thread.
type Match struct {
	Surface string
	Count   int
}

// Matches is an insertion-ordered mapping from surface form to count. It
// marshals to a JSON object whose keys keep that order.
type Matches []Match

// Get returns the count stored for surface.
func (m Matches) Get(surface string) (int, bool) {
	for _, e := range m {
		if e.Surface == surface {
			return e.Count, true
		}
	}
	return 0, false
}

// Has reports whether surface is present.
func (m Matches) Has(surface string) bool {
	_, ok := m.Get(surface)
	return ok
}

// Set stores count for surface, overwriting an existing entry in place.
func (m *Matches) Set(surface string, count int) {
	for i := range *m {
		if (*m)[i].Surface == surface {
			(*m)[i].Count = count
			return
		}
	}
	*m = append(*m, Match{Surface: surface, Count: count})
}

// Clone returns a copy that shares no storage with m.
func (m Matches) Clone() Matches {
	if m == nil {
		return Matches{}
	}
	out := make(Matches, len(m))
	copy(out, m)
	return out
}

// MarshalJSON encodes the matches as an object, preserving order.
func (m Matches) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Surface)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", e.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object into matches, preserving key order.
func (m *Matches) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("matches: expected object, got %v", tok)
	}
	out := Matches{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("matches: expected string key, got %v", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("matches: count for %q: %w", key, err)
		}
		out.Set(key, count)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// SearchResult is a single ranked thread.
type SearchResult struct {
	ThreadID ThreadID `json:"thread_id"`
	Title    string   `json:"title"`
	URL      string   `json:"url,omitempty"`
	Score    float64  `json:"score"`
	Matches  Matches  `json:"matches"`
	Rank     int      `json:"rank"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	QueryID   string          `json:"query_id"`
	Query     string          `json:"query"`
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
}
