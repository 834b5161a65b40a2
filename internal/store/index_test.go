package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typetrace/internal/report"
	"github.com/roach88/typetrace/internal/testutil"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRunIndex_WritesRunAndTypes(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	idx := s.NewRunIndex(testutil.NewFixedRunIDGenerator("run-1"))
	idx.SetClock(fixedNow(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, idx.Begin(ctx, "in.json", "out.json.gz", "line"))
	assert.Equal(t, "run-1", idx.RunID())

	records := []string{
		`{"id":1,"kind":"Union","count":2,"types":[2,3]}`,
		`{"id":2,"kind":"Object","name":"Foo"}`,
		`{"id":3,"kind":"Object","name":"Bar"}`,
	}
	for _, r := range records {
		require.NoError(t, idx.Add(ctx, createTestRecord(t, r)))
	}

	sum := report.Summary{Items: 3, Dropped: 1, Truncated: true, Duration: 42 * time.Millisecond}
	require.NoError(t, idx.Finish(ctx, sum, nil))

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, Run{
		ID:        "run-1",
		Input:     "in.json",
		Output:    "out.json.gz",
		Mode:      "line",
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Items:     3,
		Dropped:   1,
		Truncated: true,
		Duration:  42 * time.Millisecond,
		Status:    StatusDone,
	}, run)

	counts, err := s.KindCounts(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []KindCount{{Kind: "Object", Count: 2}, {Kind: "Union", Count: 1}}, counts)

	objects, err := s.TypesByKind(ctx, "run-1", "Object")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, int64(2), objects[0].Seq)
	assert.Equal(t, "2", objects[0].TypeID)
	assert.Equal(t, "Foo", objects[0].Name)
	assert.Equal(t, records[1], objects[0].Record)

	bars, err := s.TypesByName(ctx, "run-1", "Bar")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, "3", bars[0].TypeID)
}

func TestRunIndex_FailedRun(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	idx := s.NewRunIndex(testutil.NewFixedRunIDGenerator("run-err"))
	require.NoError(t, idx.Begin(ctx, "in.json", "out.json", "array"))
	require.NoError(t, idx.Add(ctx, createTestRecord(t, `{"id":1,"kind":"Other"}`)))
	require.NoError(t, idx.Finish(ctx, report.Summary{Items: 1}, errors.New("read input: boom")))

	run, err := s.ReadRun(ctx, "run-err")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, "read input: boom", run.Error)

	// Rows written before the failure are kept.
	counts, err := s.KindCounts(ctx, "run-err")
	require.NoError(t, err)
	assert.Equal(t, []KindCount{{Kind: "Other", Count: 1}}, counts)
}

func TestRunIndex_BatchesAcrossCommits(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	idx := s.NewRunIndex(testutil.NewFixedRunIDGenerator("run-big"))
	require.NoError(t, idx.Begin(ctx, "in", "out", "line"))

	total := batchSize*2 + 17
	for i := 1; i <= total; i++ {
		require.NoError(t, idx.Add(ctx, createTestRecord(t, fmt.Sprintf(`{"id":%d,"kind":"Other"}`, i))))
	}
	require.NoError(t, idx.Finish(ctx, report.Summary{Items: int64(total)}, nil))

	counts, err := s.KindCounts(ctx, "run-big")
	require.NoError(t, err)
	assert.Equal(t, []KindCount{{Kind: "Other", Count: int64(total)}}, counts)
}

func TestRunIndex_AddBeforeBegin(t *testing.T) {
	s := createTestStore(t)
	idx := s.NewRunIndex(nil)
	err := idx.Add(context.Background(), createTestRecord(t, `{"id":1,"kind":"Other"}`))
	require.Error(t, err)
}

func TestLatestRunID(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	_, err := s.LatestRunID(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)

	first := s.NewRunIndex(testutil.NewFixedRunIDGenerator("b-first"))
	first.SetClock(fixedNow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, first.Begin(ctx, "in", "out", "line"))
	require.NoError(t, first.Finish(ctx, report.Summary{}, nil))

	second := s.NewRunIndex(testutil.NewFixedRunIDGenerator("a-second"))
	second.SetClock(fixedNow(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, second.Begin(ctx, "in", "out", "line"))
	require.NoError(t, second.Finish(ctx, report.Summary{}, nil))

	latest, err := s.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-second", latest)
}

func TestLatestRunID_SameSecond(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	// 100ms then 120ms into the same second; ids sort the other way round.
	early := s.NewRunIndex(testutil.NewFixedRunIDGenerator("b-early"))
	early.SetClock(fixedNow(time.Date(2024, 1, 1, 0, 0, 0, 100_000_000, time.UTC)))
	require.NoError(t, early.Begin(ctx, "in", "out", "line"))
	require.NoError(t, early.Finish(ctx, report.Summary{}, nil))

	late := s.NewRunIndex(testutil.NewFixedRunIDGenerator("a-late"))
	late.SetClock(fixedNow(time.Date(2024, 1, 1, 0, 0, 0, 120_000_000, time.UTC)))
	require.NoError(t, late.Begin(ctx, "in", "out", "line"))
	require.NoError(t, late.Finish(ctx, report.Summary{}, nil))

	latest, err := s.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-late", latest)

	run, err := s.ReadRun(ctx, "b-early")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 100_000_000, time.UTC), run.StartedAt)
}

func TestKindCounts_EmptyRun(t *testing.T) {
	s := createTestStore(t)
	counts, err := s.KindCounts(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, counts)
	assert.Empty(t, counts)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	gen := UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
