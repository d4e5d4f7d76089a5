// Package storage provides a read-only SQLite source for the thread index.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MaterialFill65/Search-kari/internal/index"
	"github.com/MaterialFill65/Search-kari/internal/models"
)

// Schema is the table layout an index builder writes for SQLiteSource.
// seq preserves the source order of each occurrence list.
const Schema = `
	CREATE TABLE IF NOT EXISTS titles (
		thread_id INTEGER PRIMARY KEY,
		title TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS authors (
		author TEXT NOT NULL,
		thread_id INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_authors_author ON authors(author);

	CREATE TABLE IF NOT EXISTS words (
		word_id TEXT NOT NULL,
		thread_id INTEGER NOT NULL,
		count INTEGER NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_words_word ON words(word_id, seq);

	CREATE TABLE IF NOT EXISTS title_words (
		word_id TEXT NOT NULL,
		thread_id INTEGER NOT NULL,
		count INTEGER NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_title_words_word ON title_words(word_id, seq);
	`

// SQLiteSource implements index.Source over a SQLite database opened read-only.
type SQLiteSource struct {
	path string
}

// NewSQLiteSource returns a source for the database at dbPath. The file is
// opened on each Load.
func NewSQLiteSource(dbPath string) *SQLiteSource {
	return &SQLiteSource{path: dbPath}
}

// Location returns the database path.
func (s *SQLiteSource) Location() string { return s.path }

// Load reads all four index tables.
func (s *SQLiteSource) Load(ctx context.Context, progress index.ProgressFunc) (*index.Raw, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	db, err := sql.Open("sqlite3", sqliteDSN(s.path, "ro"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	progress(0, "index load started")
	raw := &index.Raw{}
	if raw.Titles, err = loadTitles(ctx, db); err != nil {
		return nil, err
	}
	progress(0.2, "titles loaded")
	if raw.Authors, err = loadAuthors(ctx, db); err != nil {
		return nil, err
	}
	progress(0.4, "authors loaded")
	if raw.TitleWords, err = loadOccurrences(ctx, db, "title_words"); err != nil {
		return nil, err
	}
	progress(0.6, "title index loaded")
	if raw.Words, err = loadOccurrences(ctx, db, "words"); err != nil {
		return nil, err
	}
	progress(1, "index load complete")
	return raw, nil
}

func loadTitles(ctx context.Context, db *sql.DB) (map[models.ThreadID]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT thread_id, title FROM titles`)
	if err != nil {
		return nil, fmt.Errorf("failed to query titles: %w", err)
	}
	defer rows.Close()

	titles := make(map[models.ThreadID]string)
	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		tid, err := threadID(id)
		if err != nil {
			return nil, err
		}
		titles[tid] = title
	}
	return titles, rows.Err()
}

func loadAuthors(ctx context.Context, db *sql.DB) (map[string][]models.ThreadID, error) {
	rows, err := db.QueryContext(ctx, `SELECT author, thread_id FROM authors ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	authors := make(map[string][]models.ThreadID)
	for rows.Next() {
		var name string
		var id int64
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		tid, err := threadID(id)
		if err != nil {
			return nil, err
		}
		authors[name] = append(authors[name], tid)
	}
	return authors, rows.Err()
}

// loadOccurrences reads table, which must be "words" or "title_words".
func loadOccurrences(ctx context.Context, db *sql.DB, table string) (map[string][]models.Occurrence, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT word_id, thread_id, count FROM `+table+` ORDER BY word_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	out := make(map[string][]models.Occurrence)
	for rows.Next() {
		var word string
		var id int64
		var count int
		if err := rows.Scan(&word, &id, &count); err != nil {
			return nil, err
		}
		tid, err := threadID(id)
		if err != nil {
			return nil, err
		}
		out[word] = append(out[word], models.Occurrence{Thread: tid, Count: count})
	}
	return out, rows.Err()
}

func threadID(id int64) (models.ThreadID, error) {
	if id < 0 || id > int64(^uint32(0)) {
		return 0, fmt.Errorf("thread id out of range: %d", id)
	}
	return models.ThreadID(id), nil
}

// dsnEscaper escapes the characters a file: URI would read as a query,
// fragment or escape.
var dsnEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// sqliteDSN returns a file: URI for path opened in the given SQLite mode.
func sqliteDSN(path, mode string) string {
	return "file:" + dsnEscaper.Replace(path) + "?mode=" + mode
}

// WriteSQLite writes raw into a new database at dbPath using Schema. It is the
// inverse of SQLiteSource.Load. An existing file at dbPath is replaced.
func WriteSQLite(ctx context.Context, dbPath string, raw *index.Raw) error {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old database: %w", err)
	}
	db, err := sql.Open("sqlite3", sqliteDSN(dbPath, "rwc"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for id, title := range raw.Titles {
		if _, err := tx.ExecContext(ctx, `INSERT INTO titles (thread_id, title) VALUES (?, ?)`, int64(id), title); err != nil {
			return fmt.Errorf("failed to insert title %d: %w", id, err)
		}
	}
	for _, name := range sortedKeys(raw.Authors) {
		for _, id := range raw.Authors[name] {
			if _, err := tx.ExecContext(ctx, `INSERT INTO authors (author, thread_id) VALUES (?, ?)`, name, int64(id)); err != nil {
				return fmt.Errorf("failed to insert author %s: %w", name, err)
			}
		}
	}
	if err := insertOccurrences(ctx, tx, "title_words", raw.TitleWords); err != nil {
		return err
	}
	if err := insertOccurrences(ctx, tx, "words", raw.Words); err != nil {
		return err
	}
	return tx.Commit()
}

func insertOccurrences(ctx context.Context, tx *sql.Tx, table string, occs map[string][]models.Occurrence) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+table+` (word_id, thread_id, count, seq) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer stmt.Close()
	for word, list := range occs {
		for seq, occ := range list {
			if _, err := stmt.ExecContext(ctx, word, int64(occ.Thread), occ.Count, seq); err != nil {
				return fmt.Errorf("failed to insert %s %s: %w", table, word, err)
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
