package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/seqlab/biolapse/internal/logic/course"
)

// ErrEmpty is returned by Latest when no capture has been recorded yet.
var ErrEmpty = errors.New("journal is empty")

// Capture is one journal row describing a captured image.
type Capture struct {
	ID        int64     `json:"id"`
	Session   string    `json:"session"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Kind      string    `json:"kind"` // "initial" or "timecourse"
	TakenAt   time.Time `json:"taken_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// Stats summarizes the journal contents.
type Stats struct {
	TotalCaptures  int            `json:"total_captures"`
	TotalSizeBytes int64          `json:"total_size_bytes"`
	PerKind        map[string]int `json:"per_kind"`
}

// Journal provides SQLite-backed records of every capture. It is an
// observability aid only: the machine treats record failures as non-fatal.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path and ensures
// the schema is current.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one capture row.
func (j *Journal) Record(rec course.Capture) error {
	if rec.Filename == "" {
		return fmt.Errorf("record capture: filename is empty")
	}
	takenAt := rec.TakenAt.UTC().Format(time.RFC3339Nano)

	_, err := j.db.Exec(
		`INSERT INTO captures (session, filename, path, kind, taken_at, size_bytes) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Session, rec.Filename, rec.Path, rec.Kind, takenAt, rec.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("record capture: insert: %w", err)
	}
	return nil
}

// List returns up to limit captures, newest first. limit <= 0 returns all.
func (j *Journal) List(limit int) ([]Capture, error) {
	q := `SELECT id, session, filename, path, kind, taken_at, size_bytes FROM captures ORDER BY taken_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}
	defer rows.Close()

	var out []Capture
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list captures: %w", err)
	}
	return out, nil
}

// Latest returns the most recent capture.
func (j *Journal) Latest() (Capture, error) {
	row := j.db.QueryRow(
		`SELECT id, session, filename, path, kind, taken_at, size_bytes FROM captures ORDER BY taken_at DESC, id DESC LIMIT 1`,
	)
	c, err := scanCapture(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Capture{}, ErrEmpty
		}
		return Capture{}, err
	}
	return c, nil
}

// Stats aggregates counts and sizes over the whole journal.
func (j *Journal) Stats() (Stats, error) {
	st := Stats{PerKind: make(map[string]int)}

	row := j.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM captures`)
	if err := row.Scan(&st.TotalCaptures, &st.TotalSizeBytes); err != nil {
		return Stats{}, fmt.Errorf("journal stats: %w", err)
	}

	rows, err := j.db.Query(`SELECT kind, COUNT(*) FROM captures GROUP BY kind`)
	if err != nil {
		return Stats{}, fmt.Errorf("journal stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return Stats{}, fmt.Errorf("journal stats: scan: %w", err)
		}
		st.PerKind[kind] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("journal stats: %w", err)
	}
	return st, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCapture(s scanner) (Capture, error) {
	var c Capture
	var takenAtStr string
	if err := s.Scan(&c.ID, &c.Session, &c.Filename, &c.Path, &c.Kind, &takenAtStr, &c.SizeBytes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Capture{}, sql.ErrNoRows
		}
		return Capture{}, fmt.Errorf("scan capture: %w", err)
	}

	takenAt, err := time.Parse(time.RFC3339Nano, takenAtStr)
	if err != nil {
		return Capture{}, fmt.Errorf("scan capture: parse taken_at: %w", err)
	}
	c.TakenAt = takenAt
	return c, nil
}
