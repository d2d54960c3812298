package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/daily"
	"github.com/google/uuid"
)

const (
	cutoffLayout = "2006-01-02 15:04:05"
	dayLayout    = "2006-01-02"
)

// Run is one row of the runs table.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	InputDir      string
	Cutoff        time.Time // naive, like message times
	Excluded      string
	Archives      int
	ArchiveErrors int
	Sources       int
	DecodeErrors  int
	Messages      int
	Interactions  int
}

// SourceRow is the outcome of one chat source within a run.
type SourceRow struct {
	Source     string
	Encoding   string
	Lines      int
	Candidates int
	Accepted   int
	Rejected   int
	Filtered   int
	Error      string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RecordRun stores a finished run, its sources and its daily table in one
// transaction. An empty run.ID is filled in and returned.
func (d *DB) RecordRun(run Run, sources []SourceRow, rows []daily.Interaction) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, started_at, finished_at, input_dir, cutoff, excluded,
		                   archives, archive_errors, sources, decode_errors, messages, interactions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.InputDir,
		run.Cutoff.Format(cutoffLayout),
		run.Excluded,
		run.Archives,
		run.ArchiveErrors,
		run.Sources,
		run.DecodeErrors,
		run.Messages,
		run.Interactions,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	srcStmt, err := tx.Prepare(
		`INSERT INTO run_sources (run_id, seq, source, encoding, lines, candidates, accepted, rejected, filtered, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", err
	}
	defer srcStmt.Close()

	for i, s := range sources {
		if _, err := srcStmt.Exec(run.ID, i, s.Source, s.Encoding, s.Lines, s.Candidates, s.Accepted, s.Rejected, s.Filtered, s.Error); err != nil {
			return "", fmt.Errorf("insert source %s: %w", s.Source, err)
		}
	}

	dayStmt, err := tx.Prepare(`INSERT INTO run_daily (run_id, name, day) VALUES (?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer dayStmt.Close()

	for _, r := range rows {
		if _, err := dayStmt.Exec(run.ID, r.Name, r.Day.Format(dayLayout)); err != nil {
			return "", fmt.Errorf("insert daily row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

const runColumns = `run_id, started_at, finished_at, input_dir, cutoff, excluded,
	archives, archive_errors, sources, decode_errors, messages, interactions`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	var started, finished, cutoff string
	err := row.Scan(&r.ID, &started, &finished, &r.InputDir, &cutoff, &r.Excluded,
		&r.Archives, &r.ArchiveErrors, &r.Sources, &r.DecodeErrors, &r.Messages, &r.Interactions)
	if err != nil {
		return r, err
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	r.Cutoff, _ = time.Parse(cutoffLayout, cutoff)
	return r, nil
}

// RecentRuns returns up to limit runs, newest first.
func (d *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun looks a run up by id or by a unique id prefix. It returns nil
// when nothing matches.
func (d *DB) GetRun(idOrPrefix string) (*Run, error) {
	rows, err := d.db.Query(
		"SELECT "+runColumns+" FROM runs WHERE run_id = ? OR run_id LIKE ? LIMIT 2",
		idOrPrefix, idOrPrefix+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if r.ID == idOrPrefix {
			return &r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", idOrPrefix)
	}
}

// LatestRun returns the newest run, or nil when the ledger is empty.
func (d *DB) LatestRun() (*Run, error) {
	r, err := scanRun(d.db.QueryRow("SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (d *DB) RunSources(runID string) ([]SourceRow, error) {
	rows, err := d.db.Query(
		`SELECT source, encoding, lines, candidates, accepted, rejected, filtered, error
		 FROM run_sources WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceRow
	for rows.Next() {
		var s SourceRow
		if err := rows.Scan(&s.Source, &s.Encoding, &s.Lines, &s.Candidates, &s.Accepted, &s.Rejected, &s.Filtered, &s.Error); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RunDaily returns the daily table stored with a run, sorted by name and day.
func (d *DB) RunDaily(runID string) ([]daily.Interaction, error) {
	rows, err := d.db.Query("SELECT name, day FROM run_daily WHERE run_id = ? ORDER BY name, day", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []daily.Interaction{}
	for rows.Next() {
		var name, day string
		if err := rows.Scan(&name, &day); err != nil {
			return nil, err
		}
		t, err := time.Parse(dayLayout, day)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad day %q: %w", runID, day, err)
		}
		out = append(out, daily.Interaction{Name: name, Day: t})
	}
	return out, rows.Err()
}
