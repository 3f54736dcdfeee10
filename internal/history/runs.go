package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"benchcat/internal/failure"
	"benchcat/internal/workflow"
)

// Run is one stored report without its items.
type Run struct {
	RunID      string           `json:"run_id"`
	Workflow   string           `json:"workflow"`
	Roots      []string         `json:"roots"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Summary    workflow.Summary `json:"summary"`
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Record stores report and its items in order. Recording the same run
// twice replaces the earlier copy.
func (s *Store) Record(ctx context.Context, report workflow.Report) error {
	ctx = ensureContext(ctx)
	if report.RunID == "" {
		return errors.New("history: report has no run id")
	}
	roots, err := json.Marshal(report.Roots)
	if err != nil {
		return fmt.Errorf("marshal roots: %w", err)
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM run_items WHERE run_id = ?", report.RunID); err != nil {
			return fmt.Errorf("clear items: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO runs (
                run_id, workflow, roots_json, started_at, finished_at,
                succeeded, skipped, failed, unmatched
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID,
			report.Workflow,
			string(roots),
			formatTime(report.StartedAt),
			formatTime(report.FinishedAt),
			report.Summary.Succeeded,
			report.Summary.Skipped,
			report.Summary.Failed,
			report.Summary.Unmatched,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_items (
                run_id, seq, item, action, status, output, frames, width, height,
                bytes, message, error_code, error, sources_json, diagnostics_json
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare item insert: %w", err)
		}
		defer stmt.Close()

		for seq, item := range report.Items {
			sources, err := marshalList(item.Sources)
			if err != nil {
				return fmt.Errorf("marshal sources: %w", err)
			}
			diagnostics, err := marshalList(item.Diagnostics)
			if err != nil {
				return fmt.Errorf("marshal diagnostics: %w", err)
			}
			if _, err := stmt.ExecContext(ctx,
				report.RunID, seq, item.Item, item.Action, string(item.Status),
				nullableString(item.Output), item.Frames, item.Width, item.Height, item.Bytes,
				nullableString(item.Message), nullableString(item.ErrorCode), nullableString(item.Error),
				sources, diagnostics,
			); err != nil {
				return fmt.Errorf("insert item %d: %w", seq, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit record: %w", err)
		}
		return nil
	})
}

const runColumns = "run_id, workflow, roots_json, started_at, finished_at, succeeded, skipped, failed, unmatched"

// List returns the most recent runs first. A limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, run_id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get loads a full report. id may be a unique prefix of the run id.
func (s *Store) Get(ctx context.Context, id string) (*workflow.Report, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+` FROM runs WHERE run_id = ? OR run_id LIKE ? ESCAPE '\' ORDER BY run_id LIMIT 3`,
		id, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	var run Run
	switch {
	case len(matches) == 0:
		return nil, failure.Wrap(failure.ErrNotFound, "history", "get", fmt.Sprintf("no run matches %q", id), nil)
	case len(matches) == 1:
		run = matches[0]
	default:
		exact := false
		for _, m := range matches {
			if m.RunID == id {
				run, exact = m, true
			}
		}
		if !exact {
			return nil, fmt.Errorf("history: run id prefix %q is ambiguous", id)
		}
	}

	items, err := s.items(ctx, run.RunID)
	if err != nil {
		return nil, err
	}
	return &workflow.Report{
		RunID:      run.RunID,
		Workflow:   run.Workflow,
		Roots:      run.Roots,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Summary:    run.Summary,
		Items:      items,
	}, nil
}

func (s *Store) items(ctx context.Context, runID string) ([]workflow.ItemResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item, action, status, output, frames, width, height, bytes,
                message, error_code, error, sources_json, diagnostics_json
         FROM run_items WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	var items []workflow.ItemResult
	for rows.Next() {
		var (
			it                             workflow.ItemResult
			status                         string
			output, message, code, errText sql.NullString
			sources, diagnostics           sql.NullString
		)
		if err := rows.Scan(&it.Item, &it.Action, &status, &output, &it.Frames, &it.Width, &it.Height, &it.Bytes,
			&message, &code, &errText, &sources, &diagnostics); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Status = workflow.Status(status)
		it.Output = output.String
		it.Message = message.String
		it.ErrorCode = code.String
		it.Error = errText.String
		if it.Sources, err = unmarshalList(sources); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
		if it.Diagnostics, err = unmarshalList(diagnostics); err != nil {
			return nil, fmt.Errorf("decode diagnostics: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Prune deletes runs that started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin prune tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		ts := formatTime(cutoff)
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM run_items WHERE run_id IN (SELECT run_id FROM runs WHERE started_at < ?)", ts); err != nil {
			return fmt.Errorf("prune items: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", ts)
		if err != nil {
			return fmt.Errorf("prune runs: %w", err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("prune rows affected: %w", err)
		}
		return tx.Commit()
	})
	return removed, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		roots             string
		started, finished string
	)
	if err := row.Scan(&run.RunID, &run.Workflow, &roots, &started, &finished,
		&run.Summary.Succeeded, &run.Summary.Skipped, &run.Summary.Failed, &run.Summary.Unmatched); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(roots), &run.Roots); err != nil {
		return Run{}, fmt.Errorf("decode roots: %w", err)
	}
	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return Run{}, err
	}
	return run, nil
}
