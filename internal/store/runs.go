package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/bfjit/internal/queryir"
	"github.com/roach88/bfjit/internal/querysql"
)

// ErrNotFound is returned by ReadRun when no run has the given ID.
var ErrNotFound = errors.New("run not found")

// RunStatus is the outcome of a recorded run.
type RunStatus string

const (
	StatusOK    RunStatus = "ok"
	StatusError RunStatus = "error"
)

// Run is one row of run history.
type Run struct {
	ID              string    `json:"id"`
	Seq             int64     `json:"seq"`
	SourcePath      string    `json:"source_path"`
	ProgramHash     string    `json:"program_hash"`
	RawInstructions int       `json:"raw_instructions"`
	Instructions    int       `json:"instructions"`
	Steps           int64     `json:"steps"`
	BytesIn         int64     `json:"bytes_in"`
	BytesOut        int64     `json:"bytes_out"`
	Status          RunStatus `json:"status"`
	ErrorCode       string    `json:"error_code,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	EngineVersion   string    `json:"engine_version"`
}

// WriteRun records a run and returns it with ID and Seq assigned.
//
// If run.ID is empty a new ID is taken from the store's IDGenerator.
// Seq is always assigned by the store: MAX(seq)+1, read and written in one
// transaction.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	if run.Status != StatusOK && run.Status != StatusError {
		return Run{}, fmt.Errorf("write run: invalid status %q", run.Status)
	}
	if run.ID == "" {
		run.ID = s.idGen.Generate()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, source_path, program_hash, raw_instructions, instructions,
		 steps, bytes_in, bytes_out, status, error_code, error_message, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.SourcePath,
		run.ProgramHash,
		run.RawInstructions,
		run.Instructions,
		run.Steps,
		run.BytesIn,
		run.BytesOut,
		string(run.Status),
		run.ErrorCode,
		run.ErrorMessage,
		run.EngineVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

const selectRun = `
	SELECT id, seq, source_path, program_hash, raw_instructions, instructions,
	       steps, bytes_in, bytes_out, status, error_code, error_message, engine_version
	FROM runs`

// ReadRun returns the run with the given ID, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest (highest seq) first.
// A limit of zero or less returns every run.
//
// Returns an empty slice (not nil) if the store has no runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	return s.FindRuns(ctx, queryir.Select{Limit: limit})
}

// FindRuns returns the runs matching q, newest first.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) FindRuns(ctx context.Context, q queryir.Select) ([]Run, error) {
	clause, params, err := querysql.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, selectRun+"\n\t"+clause, params...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var status string
	err := sc.Scan(
		&run.ID,
		&run.Seq,
		&run.SourcePath,
		&run.ProgramHash,
		&run.RawInstructions,
		&run.Instructions,
		&run.Steps,
		&run.BytesIn,
		&run.BytesOut,
		&status,
		&run.ErrorCode,
		&run.ErrorMessage,
		&run.EngineVersion,
	)
	if err != nil {
		return Run{}, err
	}
	run.Status = RunStatus(status)
	return run, nil
}
