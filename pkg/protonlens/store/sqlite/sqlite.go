package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
	"github.com/cognicore/protonlens/pkg/protonlens/entities"
	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
	"github.com/cognicore/protonlens/pkg/protonlens/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist. The notes and *_freq
// tables keep the column layout downstream reporting tools expect, keyed by
// run.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	games INTEGER NOT NULL DEFAULT 0,
	reports INTEGER NOT NULL DEFAULT 0,
	notes INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS notes (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	app_id TEXT,
	note_text TEXT,
	word_count INTEGER,
	char_count INTEGER,
	sentence_count INTEGER,
	avg_word_length REAL,
	lexical_diversity REAL,
	tokens TEXT,
	stemmed_tokens TEXT,
	lemmatized_tokens TEXT,
	noun_count INTEGER,
	verb_count INTEGER,
	adjective_count INTEGER,
	adverb_count INTEGER,
	entities TEXT,
	sentiment TEXT,
	compound_score REAL,
	positive_score REAL,
	negative_score REAL,
	neutral_score REAL,
	topic_category TEXT,
	PRIMARY KEY(run_id, seq),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS word_freq (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	word TEXT NOT NULL,
	frequency INTEGER NOT NULL,
	PRIMARY KEY(run_id, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bigram_freq (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	bigram TEXT NOT NULL,
	frequency INTEGER NOT NULL,
	PRIMARY KEY(run_id, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS trigram_freq (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	trigram TEXT NOT NULL,
	frequency INTEGER NOT NULL,
	PRIMARY KEY(run_id, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_notes_topic ON notes(run_id, topic_category);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) (store.Run, error) {
	r = store.PrepareRun(r)
	if err := upsertRun(ctx, s.db, r); err != nil {
		return store.Run{}, err
	}
	return r, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertRun(ctx context.Context, db execer, r store.Run) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO runs (id, created_at, games, reports, notes, skipped)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	games=excluded.games,
	reports=excluded.reports,
	notes=excluded.notes,
	skipped=excluded.skipped;
`, r.ID, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.Games, r.Reports, r.Notes, r.Skipped)
	return err
}

// SaveRun writes the run row, its notes and its tables in one transaction.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run, notes []ingest.Note, tables map[store.Kind][]analytics.Entry) (store.Run, error) {
	for kind, entries := range tables {
		if err := store.ValidateEntries(kind, entries); err != nil {
			return store.Run{}, err
		}
	}
	r = store.PrepareRun(r)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Run{}, err
	}
	defer tx.Rollback()

	if err := upsertRun(ctx, tx, r); err != nil {
		return store.Run{}, fmt.Errorf("insert run: %w", err)
	}
	if err := replaceNotes(ctx, tx, r.ID, notes); err != nil {
		return store.Run{}, err
	}
	for _, kind := range store.Kinds {
		if err := replaceFrequencies(ctx, tx, r.ID, kind, tables[kind]); err != nil {
			return store.Run{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return store.Run{}, err
	}
	return r, nil
}

func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, created_at, games, reports, notes, skipped
FROM runs
WHERE id = ?;
`, id)
	return scanRun(row)
}

// LatestRun returns the run with the greatest id. ULIDs sort by creation
// time.
func (s *sqliteStore) LatestRun(ctx context.Context) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, created_at, games, reports, notes, skipped
FROM runs
ORDER BY id DESC
LIMIT 1;
`)
	return scanRun(row)
}

func scanRun(row *sql.Row) (store.Run, error) {
	var r store.Run
	var created string
	err := row.Scan(&r.ID, &created, &r.Games, &r.Reports, &r.Notes, &r.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run: %w", internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, err
	}
	r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return store.Run{}, fmt.Errorf("run %s created_at: %w", r.ID, err)
	}
	return r, nil
}

// requireRun fails with ErrNotFound unless the run exists. The foreign key
// pragma is per connection, so it is not relied on here.
func requireRun(ctx context.Context, tx *sql.Tx, runID string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	return err
}

// SaveNotes replaces the notes of a run.
func (s *sqliteStore) SaveNotes(ctx context.Context, runID string, notes []ingest.Note) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireRun(ctx, tx, runID); err != nil {
		return err
	}
	if err := replaceNotes(ctx, tx, runID, notes); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceNotes(ctx context.Context, tx *sql.Tx, runID string, notes []ingest.Note) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE run_id = ?`, runID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO notes (
	run_id, seq, app_id, note_text, word_count, char_count, sentence_count,
	avg_word_length, lexical_diversity, tokens, stemmed_tokens, lemmatized_tokens,
	noun_count, verb_count, adjective_count, adverb_count, entities, sentiment,
	compound_score, positive_score, negative_score, neutral_score, topic_category
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, n := range notes {
		ents, err := json.Marshal(n.Entities)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			runID, i, string(n.AppID), n.Text, n.WordCount, n.CharCount, n.SentenceCount,
			n.AvgWordLength, n.LexicalDiversity, n.Tokens, n.StemmedTokens, n.LemmatizedTokens,
			n.NounCount, n.VerbCount, n.AdjectiveCount, n.AdverbCount, string(ents), n.Sentiment,
			n.CompoundScore, n.PositiveScore, n.NegativeScore, n.NeutralScore, n.TopicCategory,
		)
		if err != nil {
			return fmt.Errorf("insert note %d: %w", i, err)
		}
	}
	return nil
}

func (s *sqliteStore) Notes(ctx context.Context, runID string) ([]ingest.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT app_id, note_text, word_count, char_count, sentence_count,
	avg_word_length, lexical_diversity, tokens, stemmed_tokens, lemmatized_tokens,
	noun_count, verb_count, adjective_count, adverb_count, entities, sentiment,
	compound_score, positive_score, negative_score, neutral_score, topic_category
FROM notes
WHERE run_id = ?
ORDER BY seq;
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []ingest.Note
	for rows.Next() {
		var n ingest.Note
		var appID, ents string
		err := rows.Scan(
			&appID, &n.Text, &n.WordCount, &n.CharCount, &n.SentenceCount,
			&n.AvgWordLength, &n.LexicalDiversity, &n.Tokens, &n.StemmedTokens, &n.LemmatizedTokens,
			&n.NounCount, &n.VerbCount, &n.AdjectiveCount, &n.AdverbCount, &ents, &n.Sentiment,
			&n.CompoundScore, &n.PositiveScore, &n.NegativeScore, &n.NeutralScore, &n.TopicCategory,
		)
		if err != nil {
			return nil, err
		}
		n.AppID = ingest.AppID(appID)
		n.Entities = []entities.Entity{}
		if err := json.Unmarshal([]byte(ents), &n.Entities); err != nil {
			return nil, fmt.Errorf("note entities: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// freqTable returns the table and gram column for a kind.
func freqTable(kind store.Kind) (table, column string, err error) {
	switch kind {
	case store.KindWord:
		return "word_freq", "word", nil
	case store.KindBigram:
		return "bigram_freq", "bigram", nil
	case store.KindTrigram:
		return "trigram_freq", "trigram", nil
	}
	return "", "", kind.Validate()
}

// SaveFrequencies replaces one frequency table of a run. Entries are stored
// in the given order.
func (s *sqliteStore) SaveFrequencies(ctx context.Context, runID string, kind store.Kind, entries []analytics.Entry) error {
	if err := store.ValidateEntries(kind, entries); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := requireRun(ctx, tx, runID); err != nil {
		return err
	}
	if err := replaceFrequencies(ctx, tx, runID, kind, entries); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceFrequencies(ctx context.Context, tx *sql.Tx, runID string, kind store.Kind, entries []analytics.Entry) error {
	table, column, err := freqTable(kind)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, runID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+table+` (run_id, rank, `+column+`, frequency) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, runID, i, e.Text(), e.Frequency); err != nil {
			return fmt.Errorf("insert %s entry %d: %w", kind, i, err)
		}
	}
	return nil
}

// Frequencies returns up to limit entries of a table in stored order. A
// non-positive limit returns all of them.
func (s *sqliteStore) Frequencies(ctx context.Context, runID string, kind store.Kind, limit int) ([]analytics.Entry, error) {
	table, column, err := freqTable(kind)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+column+`, frequency FROM `+table+` WHERE run_id = ? ORDER BY rank LIMIT ?`,
		runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []analytics.Entry
	for rows.Next() {
		var text string
		var e analytics.Entry
		if err := rows.Scan(&text, &e.Frequency); err != nil {
			return nil, err
		}
		e.Gram = strings.Fields(text)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
