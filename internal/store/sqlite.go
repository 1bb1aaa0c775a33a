package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"markbook/internal/record"
)

// SQLiteStore persists the registry document in an embedded SQLite
// database. Save replaces all rows in one transaction, matching the
// wholesale-write contract of the JSON backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and applies the
// schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		student_number TEXT PRIMARY KEY,
		student_name   TEXT NOT NULL,
		created_at     DATETIME NOT NULL,
		last_modified  DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mark_entries (
		id             TEXT PRIMARY KEY,
		student_number TEXT NOT NULL REFERENCES students(student_number),
		position       INTEGER NOT NULL,
		recorded_at    DATETIME NOT NULL,
		subject_marks  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS registry_meta (
		id           INTEGER PRIMARY KEY CHECK (id = 1),
		last_updated DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_student ON mark_entries(student_number, position);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Load rebuilds the full document from the database.
func (s *SQLiteStore) Load() (Document, error) {
	var doc Document

	rows, err := s.db.Query(`SELECT student_number, student_name, created_at, last_modified FROM students ORDER BY student_number`)
	if err != nil {
		return Document{}, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	type row struct {
		number, name            string
		createdAt, lastModified time.Time
	}
	var students []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.number, &r.name, &r.createdAt, &r.lastModified); err != nil {
			return Document{}, err
		}
		students = append(students, r)
	}
	if err := rows.Err(); err != nil {
		return Document{}, err
	}

	for _, st := range students {
		history, err := s.loadHistory(st.number)
		if err != nil {
			return Document{}, err
		}
		rec, err := record.Rehydrate(st.number, st.name, st.createdAt, st.lastModified, history)
		if err != nil {
			return Document{}, fmt.Errorf("student %s: %w", st.number, err)
		}
		doc.Students = append(doc.Students, rec)
	}

	err = s.db.QueryRow(`SELECT last_updated FROM registry_meta WHERE id = 1`).Scan(&doc.LastUpdated)
	if err != nil && err != sql.ErrNoRows {
		return Document{}, fmt.Errorf("query meta: %w", err)
	}
	return doc, nil
}

func (s *SQLiteStore) loadHistory(number string) ([]record.MarkEntry, error) {
	rows, err := s.db.Query(
		`SELECT recorded_at, subject_marks FROM mark_entries WHERE student_number = ? ORDER BY position`, number)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var history []record.MarkEntry
	for rows.Next() {
		var at time.Time
		var marksJSON string
		if err := rows.Scan(&at, &marksJSON); err != nil {
			return nil, err
		}
		var marks map[string]int
		if err := json.Unmarshal([]byte(marksJSON), &marks); err != nil {
			return nil, fmt.Errorf("decode marks for %s: %w", number, err)
		}
		entry, err := record.RehydrateEntry(marks, at)
		if err != nil {
			return nil, fmt.Errorf("entry for %s: %w", number, err)
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// Save replaces all persisted state in a single transaction.
func (s *SQLiteStore) Save(doc Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM mark_entries`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM students`); err != nil {
		return err
	}

	for _, rec := range doc.Students {
		if _, err := tx.Exec(
			`INSERT INTO students (student_number, student_name, created_at, last_modified) VALUES (?, ?, ?, ?)`,
			rec.Number(), rec.Name(), rec.CreatedAt(), rec.LastModified(),
		); err != nil {
			return err
		}
		for pos, entry := range rec.History() {
			marksJSON, err := json.Marshal(entry.SubjectMarks())
			if err != nil {
				return err
			}
			if _, err := tx.Exec(
				`INSERT INTO mark_entries (id, student_number, position, recorded_at, subject_marks) VALUES (?, ?, ?, ?, ?)`,
				uuid.NewString(), rec.Number(), pos, entry.Timestamp(), string(marksJSON),
			); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO registry_meta (id, last_updated) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET last_updated = excluded.last_updated`,
		doc.LastUpdated,
	); err != nil {
		return err
	}
	return tx.Commit()
}
