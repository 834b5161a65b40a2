package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/typetrace/internal/record"
	"github.com/roach88/typetrace/internal/report"
)

// Run status values.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// startedAtLayout is fixed width, so started_at sorts chronologically as text.
const startedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// batchSize is the number of type rows committed per transaction.
const batchSize = 1000

// RunIDGenerator produces run ids.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids, so the latest run
// is also the greatest id.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RunIndex writes one run into the index. It is not safe for concurrent use;
// the pipeline drives it from its single loop.
type RunIndex struct {
	st  *Store
	gen RunIDGenerator
	now func() time.Time

	id   string
	seq  int64
	tx   *sql.Tx
	stmt *sql.Stmt
	rows int
}

// NewRunIndex creates a run index. A nil generator defaults to UUIDv7Generator.
func (s *Store) NewRunIndex(gen RunIDGenerator) *RunIndex {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return &RunIndex{st: s, gen: gen, now: time.Now}
}

// SetClock replaces the clock used for started_at.
func (x *RunIndex) SetClock(now func() time.Time) {
	x.now = now
}

// RunID returns the id assigned by Begin.
func (x *RunIndex) RunID() string {
	return x.id
}

// Begin inserts the run row.
func (x *RunIndex) Begin(ctx context.Context, input, output, mode string) error {
	x.id = x.gen.Generate()
	_, err := x.st.db.ExecContext(ctx, `
		INSERT INTO runs (id, input, output, mode, started_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, x.id, input, output, mode, x.now().UTC().Format(startedAtLayout), StatusRunning)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// Add indexes one normalized record. Rows are committed in batches.
func (x *RunIndex) Add(ctx context.Context, rec record.Record) error {
	if x.id == "" {
		return errors.New("add type: run not started")
	}
	if x.tx == nil {
		if err := x.beginBatch(ctx); err != nil {
			return err
		}
	}

	x.seq++
	id, _ := rec.Get("id")
	kind, _ := rec.StringField("kind")
	name, _ := rec.StringField("name")
	body, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("add type %d: %w", x.seq, err)
	}

	if _, err := x.stmt.ExecContext(ctx, x.id, x.seq, string(id), kind, name, string(body)); err != nil {
		return fmt.Errorf("add type %d: %w", x.seq, err)
	}

	x.rows++
	if x.rows >= batchSize {
		return x.commit()
	}
	return nil
}

func (x *RunIndex) beginBatch(ctx context.Context) error {
	tx, err := x.st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO types (run_id, seq, type_id, kind, name, record)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	x.tx, x.stmt, x.rows = tx, stmt, 0
	return nil
}

func (x *RunIndex) commit() error {
	if x.tx == nil {
		return nil
	}
	x.stmt.Close()
	err := x.tx.Commit()
	x.tx, x.stmt, x.rows = nil, nil, 0
	if err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Finish commits pending rows and records the run outcome.
// The run row is updated even when the pending batch fails to commit.
func (x *RunIndex) Finish(ctx context.Context, sum report.Summary, runErr error) error {
	commitErr := x.commit()

	status, message := StatusDone, ""
	if runErr != nil {
		status, message = StatusFailed, runErr.Error()
	}

	_, err := x.st.db.ExecContext(ctx, `
		UPDATE runs
		SET items = ?, dropped = ?, truncated = ?, duration_ms = ?, status = ?, error = ?
		WHERE id = ?
	`, sum.Items, sum.Dropped, sum.Truncated, sum.Duration.Milliseconds(), status, message, x.id)
	if err != nil {
		err = fmt.Errorf("finish run: %w", err)
	}
	return errors.Join(commitErr, err)
}
