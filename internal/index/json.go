package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MaterialFill65/Search-kari/internal/models"
)

// File names of a partitioned JSON index directory.
const (
	AuthorFile      = "author.json"
	TitleIndexFile  = "title_index.json"
	TitlesFile      = "titles.json"
	WordGroupsFile  = "words_index_groups.json"
	wordGroupPrefix = "words_index_"
)

// WordGroupFile returns the file name holding one partition of the words index.
func WordGroupFile(group string) string {
	return wordGroupPrefix + group + ".json"
}

// JSONSource loads an index split across JSON files in one directory: the
// author, title index and titles files, plus a list of word-index groups with
// one file per group.
type JSONSource struct {
	dir string
	// maxParallel bounds concurrent group reads; 0 means unbounded.
	maxParallel int
}

// NewJSONSource returns a source reading from dir.
func NewJSONSource(dir string, maxParallel int) *JSONSource {
	return &JSONSource{dir: dir, maxParallel: maxParallel}
}

// Location returns the index directory.
func (s *JSONSource) Location() string { return s.dir }

// Load reads every file and merges the word groups in list order; a vocabulary
// id present in several groups keeps the value of the last group listing it.
func (s *JSONSource) Load(ctx context.Context, progress ProgressFunc) (*Raw, error) {
	var mu sync.Mutex
	report := func(p float64, msg string) {
		mu.Lock()
		defer mu.Unlock()
		progress(p, msg)
	}
	report(0, "index load started")

	var groups []string
	if err := s.readJSON(WordGroupsFile, &groups); err != nil {
		return nil, err
	}
	report(0.1, "word index groups listed")

	raw := &Raw{}
	parts := make([]map[string][]models.Occurrence, len(groups))
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	if s.maxParallel > 0 {
		g.SetLimit(s.maxParallel + 3)
	}
	g.Go(func() error { return s.readJSONCtx(gctx, AuthorFile, &raw.Authors) })
	g.Go(func() error { return s.readJSONCtx(gctx, TitleIndexFile, &raw.TitleWords) })
	g.Go(func() error { return s.readJSONCtx(gctx, TitlesFile, &raw.Titles) })
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			var part map[string][]models.Occurrence
			if err := s.readJSONCtx(gctx, WordGroupFile(group), &part); err != nil {
				return err
			}
			parts[i] = part

			mu.Lock()
			completed++
			done := completed
			progress(0.1+float64(done)/float64(len(groups))*0.6,
				fmt.Sprintf("word index %d/%d loaded", done, len(groups)))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report(0.8, "base files loaded")

	size := 0
	for _, p := range parts {
		size += len(p)
	}
	raw.Words = make(map[string][]models.Occurrence, size)
	for _, p := range parts {
		for id, occs := range p {
			raw.Words[id] = occs
		}
	}
	report(0.9, "word index groups merged")
	report(1, "index load complete")
	return raw, nil
}

func (s *JSONSource) readJSONCtx(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.readJSON(name, v)
}

func (s *JSONSource) readJSON(name string, v any) error {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// WriteJSON writes raw as a partitioned JSON index into dir, spreading the
// words index over groups by the first byte of each vocabulary id. It is the
// inverse of JSONSource.Load and is used to produce fixtures.
func WriteJSON(dir string, raw *Raw, groups int) error {
	if groups <= 0 {
		groups = 1
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	names := make([]string, groups)
	parts := make([]map[string][]models.Occurrence, groups)
	for i := range names {
		names[i] = fmt.Sprintf("%d", i)
		parts[i] = make(map[string][]models.Occurrence)
	}
	for id, occs := range raw.Words {
		b := 0
		if id != "" {
			b = int(id[0]) % groups
		}
		parts[b][id] = occs
	}
	files := map[string]any{
		AuthorFile:     nonNilAuthors(raw.Authors),
		TitleIndexFile: nonNilWords(raw.TitleWords),
		TitlesFile:     nonNilTitles(raw.Titles),
		WordGroupsFile: names,
	}
	for i, name := range names {
		files[WordGroupFile(name)] = parts[i]
	}
	for name, v := range files {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func nonNilAuthors(m map[string][]models.ThreadID) map[string][]models.ThreadID {
	if m == nil {
		return map[string][]models.ThreadID{}
	}
	return m
}

func nonNilWords(m map[string][]models.Occurrence) map[string][]models.Occurrence {
	if m == nil {
		return map[string][]models.Occurrence{}
	}
	return m
}

func nonNilTitles(m map[models.ThreadID]string) map[models.ThreadID]string {
	if m == nil {
		return map[models.ThreadID]string{}
	}
	return m
}
