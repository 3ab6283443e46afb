package memory

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists Records in a SQLite database with an FTS5 virtual table
// for lexical search, matching the donor's pattern of a pure-Go SQLite
// driver for a single-process embedded store.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) the schema at path and returns a Store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory: failed to open database %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrateAuditTable(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			text TEXT NOT NULL,
			confidence REAL NOT NULL,
			source_turn_id TEXT,
			tags TEXT,
			supersedes TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			id UNINDEXED, text, content='records', content_rowid='rowid'
		)`,
		`CREATE TRIGGER IF NOT EXISTS records_ai AFTER INSERT ON records BEGIN
			INSERT INTO records_fts(rowid, id, text) VALUES (new.rowid, new.id, new.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS records_ad AFTER DELETE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, id, text) VALUES ('delete', old.rowid, old.id, old.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS records_au AFTER UPDATE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, id, text) VALUES ('delete', old.rowid, old.id, old.text);
			INSERT INTO records_fts(rowid, id, text) VALUES (new.rowid, new.id, new.text);
		END`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("memory: migration failed: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Upsert inserts or replaces a record by id.
func (s *Store) Upsert(r Record) error {
	_, err := s.db.Exec(
		`INSERT INTO records (id, kind, status, text, confidence, source_turn_id, tags, supersedes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET kind=excluded.kind, status=excluded.status, text=excluded.text,
			confidence=excluded.confidence, source_turn_id=excluded.source_turn_id, tags=excluded.tags,
			supersedes=excluded.supersedes, updated_at=excluded.updated_at`,
		r.ID, string(r.Kind), string(r.Status), r.Text, r.Confidence, r.SourceTurnID,
		strings.Join(r.Tags, ","), r.Supersedes, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("memory: upsert failed for %s: %w", r.ID, err)
	}
	return nil
}

// Get fetches one record by id.
func (s *Store) Get(id string) (Record, bool, error) {
	row := s.db.QueryRow(
		`SELECT id, kind, status, text, confidence, source_turn_id, tags, supersedes, created_at, updated_at
		 FROM records WHERE id = ?`, id,
	)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return r, true, nil
}

// Forget marks a record Forgotten rather than deleting its row, preserving
// the audit trail.
func (s *Store) Forget(id string, now time.Time) error {
	_, err := s.db.Exec(`UPDATE records SET status = ?, updated_at = ? WHERE id = ?`, string(StatusForgotten), now.Unix(), id)
	return err
}

// LexicalSearch runs an FTS5 MATCH query and scores the hits with Score,
// returning them sorted best-first. limit <= 0 means unbounded.
func (s *Store) LexicalSearch(query string, limit int, now time.Time) ([]SearchHit, error) {
	ftsQuery := ftsMatchQuery(query)
	sqlQuery := `
		SELECT r.id, r.kind, r.status, r.text, r.confidence, r.source_turn_id, r.tags, r.supersedes, r.created_at, r.updated_at
		FROM records r JOIN records_fts f ON f.id = r.id
		WHERE records_fts MATCH ? AND r.status = ?`
	if ftsQuery == "" {
		sqlQuery = `
			SELECT id, kind, status, text, confidence, source_turn_id, tags, supersedes, created_at, updated_at
			FROM records WHERE status = ?`
	}

	var rows *sql.Rows
	var err error
	if ftsQuery == "" {
		rows, err = s.db.Query(sqlQuery, string(StatusActive))
	} else {
		rows, err = s.db.Query(sqlQuery, ftsQuery, string(StatusActive))
	}
	if err != nil {
		return nil, fmt.Errorf("memory: lexical search failed: %w", err)
	}
	defer rows.Close()

	tokens := tokenize(query)
	nowSecs := now.Unix()
	var hits []SearchHit
	for rows.Next() {
		r, err := scanRecordRows(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, SearchHit{Record: r, Score: Score(r, tokens, nowSecs)})
	}

	sortHitsByScoreDesc(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// ftsMatchQuery builds a conservative FTS5 MATCH expression (tokens ANDed
// together) from a free-text query, escaping FTS5 special characters by
// quoting each token.
func ftsMatchQuery(query string) string {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return ""
	}
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " AND ")
}

func sortHitsByScoreDesc(hits []SearchHit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Score > hits[j-1].Score; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row *sql.Row) (Record, error) {
	return scanRecordFrom(row)
}

func scanRecordRows(rows *sql.Rows) (Record, error) {
	return scanRecordFrom(rows)
}

func scanRecordFrom(s rowScanner) (Record, error) {
	var r Record
	var kind, status, tags string
	var sourceTurnID, supersedes sql.NullString
	if err := s.Scan(&r.ID, &kind, &status, &r.Text, &r.Confidence, &sourceTurnID, &tags, &supersedes, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Record{}, err
	}
	r.Kind = Kind(kind)
	r.Status = Status(status)
	r.SourceTurnID = sourceTurnID.String
	r.Supersedes = supersedes.String
	if tags != "" {
		r.Tags = strings.Split(tags, ",")
	}
	return r, nil
}
