package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/justyntemme/dirindex/internal/search"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Setting keys
const (
	KeyLastPath = "last_path"
)

// JobRecord is the persisted outcome of one indexing job.
type JobRecord struct {
	ID         string
	Target     string
	State      string
	Err        string
	Docs       int
	StartedAt  time.Time
	FinishedAt time.Time
}

type DB struct {
	conn *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS index_meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	root TEXT NOT NULL,
	built_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS index_docs (
	id INTEGER PRIMARY KEY,
	path TEXT NOT NULL,
	name TEXT NOT NULL,
	size INTEGER NOT NULL,
	mod_time INTEGER NOT NULL,
	terms INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS index_terms (
	term TEXT NOT NULL,
	doc INTEGER NOT NULL,
	freq INTEGER NOT NULL,
	PRIMARY KEY (term, doc)
);
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	target TEXT NOT NULL,
	state TEXT NOT NULL,
	err TEXT NOT NULL DEFAULT '',
	docs INTEGER NOT NULL DEFAULT 0,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
`

// Open initializes the database connection and schema
func Open(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode allows simultaneous readers and writers
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, err
	}
	// Synchronous NORMAL is safe against app crashes, faster than FULL
	if _, err := db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	debug.Log(debug.STORE, "opened %s", dbPath)
	return &DB{conn: db, path: dbPath}, nil
}

// Path returns the database file location.
func (d *DB) Path() string {
	return d.path
}

// SaveIndex replaces the stored index snapshot with ix in one transaction.
func (d *DB) SaveIndex(ix *search.Index) (err error) {
	if ix == nil {
		return errors.New("store: nil index")
	}
	start := time.Now()

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{"DELETE FROM index_terms", "DELETE FROM index_docs", "DELETE FROM index_meta"} {
		if _, err = tx.Exec(stmt); err != nil {
			return err
		}
	}

	if _, err = tx.Exec("INSERT INTO index_meta (id, root, built_at) VALUES (1, ?, ?)",
		ix.Root, ix.BuiltAt.UnixNano()); err != nil {
		return err
	}

	docStmt, err := tx.Prepare("INSERT INTO index_docs (id, path, name, size, mod_time, terms) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer docStmt.Close()
	for _, doc := range ix.Docs() {
		if _, err = docStmt.Exec(doc.ID, doc.Path, doc.Name, doc.Size, doc.ModTime.UnixNano(), doc.Terms); err != nil {
			return err
		}
	}

	termStmt, err := tx.Prepare("INSERT INTO index_terms (term, doc, freq) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer termStmt.Close()
	err = ix.EachTerm(func(term string, list []search.Posting) error {
		for _, p := range list {
			if _, err := termStmt.Exec(term, p.Doc, p.Freq); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	debug.Log(debug.STORE, "SaveIndex: root=%q docs=%d terms=%d took=%v",
		ix.Root, ix.DocCount(), ix.TermCount(), time.Since(start))
	return nil
}

// LoadIndex restores the stored snapshot. It returns nil, nil when no index
// has been saved yet.
func (d *DB) LoadIndex() (*search.Index, error) {
	var root string
	var builtAt int64
	err := d.conn.QueryRow("SELECT root, built_at FROM index_meta WHERE id = 1").Scan(&root, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := d.conn.Query("SELECT id, path, name, size, mod_time, terms FROM index_docs ORDER BY id")
	if err != nil {
		return nil, err
	}
	var docs []search.Document
	for rows.Next() {
		var doc search.Document
		var mod int64
		if err := rows.Scan(&doc.ID, &doc.Path, &doc.Name, &doc.Size, &mod, &doc.Terms); err != nil {
			rows.Close()
			return nil, err
		}
		doc.ModTime = time.Unix(0, mod)
		docs = append(docs, doc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID != i {
			return nil, fmt.Errorf("store: index_docs not dense at id %d", docs[i].ID)
		}
	}

	rows, err = d.conn.Query("SELECT term, doc, freq FROM index_terms")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	postings := make(map[string][]search.Posting)
	for rows.Next() {
		var term string
		var p search.Posting
		if err := rows.Scan(&term, &p.Doc, &p.Freq); err != nil {
			return nil, err
		}
		postings[term] = append(postings[term], p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	debug.Log(debug.STORE, "LoadIndex: root=%q docs=%d", root, len(docs))
	return search.NewIndex(root, time.Unix(0, builtAt), docs, postings), nil
}

// RecordJob inserts or updates a job outcome.
func (d *DB) RecordJob(rec JobRecord) error {
	_, err := d.conn.Exec(`INSERT OR REPLACE INTO jobs (id, target, state, err, docs, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Target, rec.State, rec.Err, rec.Docs, rec.StartedAt.UnixNano(), rec.FinishedAt.UnixNano())
	if err != nil {
		debug.Error(debug.STORE, err, "RecordJob %s", rec.ID)
	}
	return err
}

// Jobs returns up to limit job records, most recently finished first.
func (d *DB) Jobs(limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.conn.Query(`SELECT id, target, state, err, docs, started_at, finished_at
		FROM jobs ORDER BY finished_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobRecord
	for rows.Next() {
		var rec JobRecord
		var started, finished int64
		if err := rows.Scan(&rec.ID, &rec.Target, &rec.State, &rec.Err, &rec.Docs, &started, &finished); err != nil {
			return nil, err
		}
		rec.StartedAt = time.Unix(0, started)
		rec.FinishedAt = time.Unix(0, finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveSetting upserts a key/value setting.
func (d *DB) SaveSetting(key, value string) error {
	// Use INSERT OR REPLACE to upsert the setting
	_, err := d.conn.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		debug.Error(debug.STORE, err, "saving setting %s", key)
	}
	return err
}

// Setting returns a stored value and whether it exists.
func (d *DB) Setting(key string) (string, bool, error) {
	var value string
	err := d.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Settings returns every stored setting.
func (d *DB) Settings() (map[string]string, error) {
	rows, err := d.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (d *DB) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}
