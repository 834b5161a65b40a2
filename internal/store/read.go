package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoRuns is returned by LatestRunID when the index is empty.
var ErrNoRuns = errors.New("index has no runs")

// Run is one row of the runs table.
type Run struct {
	ID        string
	Input     string
	Output    string
	Mode      string
	StartedAt time.Time
	Items     int64
	Dropped   int64
	Truncated bool
	Duration  time.Duration
	Status    string
	Error     string
}

// KindCount is the number of indexed records of one kind.
type KindCount struct {
	Kind  string
	Count int64
}

// TypeRow is one indexed record.
type TypeRow struct {
	Seq    int64
	TypeID string
	Kind   string
	Name   string
	Record string
}

// LatestRunID returns the id of the most recently started run.
// UUIDv7 ids sort by creation time; started_at breaks ties for custom generators.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return id, nil
}

// ReadRun returns a run by id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var (
		r          Run
		startedAt  string
		truncated  int
		durationMS int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, input, output, mode, started_at, items, dropped, truncated, duration_ms, status, error
		FROM runs
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Input, &r.Output, &r.Mode, &startedAt, &r.Items, &r.Dropped,
		&truncated, &durationMS, &r.Status, &r.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: not found", id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}

	r.StartedAt, err = time.Parse(startedAtLayout, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("read run: started_at: %w", err)
	}
	r.Truncated = truncated != 0
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return r, nil
}

// KindCounts returns per-kind record counts for a run, largest first.
// Returns an empty slice (not nil) if the run has no records.
func (s *Store) KindCounts(ctx context.Context, runID string) ([]KindCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) AS n
		FROM types
		WHERE run_id = ?
		GROUP BY kind
		ORDER BY n DESC, kind COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query kind counts: %w", err)
	}
	defer rows.Close()

	counts := []KindCount{}
	for rows.Next() {
		var kc KindCount
		if err := rows.Scan(&kc.Kind, &kc.Count); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		counts = append(counts, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kind counts: %w", err)
	}
	return counts, nil
}

// TypesByKind returns the records of one kind in output order.
func (s *Store) TypesByKind(ctx context.Context, runID, kind string) ([]TypeRow, error) {
	return s.queryTypes(ctx, `
		SELECT seq, type_id, kind, name, record
		FROM types
		WHERE run_id = ? AND kind = ?
		ORDER BY seq ASC
	`, runID, kind)
}

// TypesByName returns the records with the given name in output order.
func (s *Store) TypesByName(ctx context.Context, runID, name string) ([]TypeRow, error) {
	return s.queryTypes(ctx, `
		SELECT seq, type_id, kind, name, record
		FROM types
		WHERE run_id = ? AND name = ?
		ORDER BY seq ASC
	`, runID, name)
}

func (s *Store) queryTypes(ctx context.Context, query string, args ...any) ([]TypeRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query types: %w", err)
	}
	defer rows.Close()

	out := []TypeRow{}
	for rows.Next() {
		var tr TypeRow
		if err := rows.Scan(&tr.Seq, &tr.TypeID, &tr.Kind, &tr.Name, &tr.Record); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate types: %w", err)
	}
	return out, nil
}
