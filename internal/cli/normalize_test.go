package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typetrace/internal/store"
	"github.com/roach88/typetrace/internal/testutil"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func testOptions() *RootOptions {
	return &RootOptions{
		Now:    testutil.NewStepClock(12 * time.Millisecond).Now,
		RunIDs: testutil.NewFixedRunIDGenerator("run-1"),
	}
}

func TestNormalize_Success(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json")

	stdout, _, err := execute(t, testOptions(), filepath.Join("testdata", "trace.json"), out)
	require.NoError(t, err)
	assert.Equal(t, "Processing...\nDone\nProcessed 4 items in 12 ms\n", stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "normalize", data)
}

func TestNormalize_Multiline(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json.gz")

	_, _, err := execute(t, testOptions(), "-m", filepath.Join("testdata", "trace.json"), out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestNormalize_TruncatedArrayIsSuccess(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json")

	stdout, stderr, err := execute(t, testOptions(), "--multiline", filepath.Join("testdata", "truncated.json"), out)
	require.NoError(t, err)
	assert.Equal(t, "Processing...\nDone\nProcessed 1 items in 12 ms\n", stdout)
	assert.Contains(t, stderr, "input truncated")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":7,"kind":"Intrinsic","name":"any"}]`, string(data))
}

func TestNormalize_LineModeDropsTruncatedTail(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json")

	stdout, stderr, err := execute(t, testOptions(), filepath.Join("testdata", "truncated.json"), out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Processed 1 items")
	assert.Contains(t, stderr, "dropped line")
	assert.Contains(t, stderr, "line=3")
}

func TestNormalize_MissingInput(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execute(t, testOptions(), filepath.Join(dir, "missing.json"), filepath.Join(dir, "out.json"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))

	assert.Contains(t, stdout, "Processing...\nError: open input: ")
	assert.Contains(t, stdout, "Processed 0 items in 12 ms\n")
}

func TestNormalize_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "typetrace.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("multiline: true\n"), 0o644))
	out := filepath.Join(dir, "out.json")

	// Array mode tolerates the truncated tail without a drop diagnostic.
	_, stderr, err := execute(t, testOptions(), "--config", cfg, filepath.Join("testdata", "truncated.json"), out)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "dropped line")
	assert.Contains(t, stderr, "input truncated")
}

func TestNormalize_Env(t *testing.T) {
	t.Setenv("TYPETRACE_MULTILINE", "true")
	out := filepath.Join(t.TempDir(), "out.json")

	_, stderr, err := execute(t, testOptions(), filepath.Join("testdata", "truncated.json"), out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "input truncated")
}

func TestNormalize_BadConfig(t *testing.T) {
	dir := t.TempDir()
	stdout, _, err := execute(t, testOptions(), "--config", filepath.Join(dir, "nope.yaml"),
		filepath.Join("testdata", "trace.json"), filepath.Join(dir, "out.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, stdout, "Processing...\nError: failed to read configuration: ")
	assert.True(t, strings.HasSuffix(stdout, "Processed 0 items in 0 ms\n"), stdout)

	stdout, _, err = execute(t, testOptions(), "--color", "purple",
		filepath.Join("testdata", "trace.json"), filepath.Join(dir, "out.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Processing...\nError: invalid configuration: config error in field 'color'")
}

func TestNormalize_UnopenableIndex(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be opened as a SQLite database.
	db := filepath.Join(dir, "index-dir")
	require.NoError(t, os.Mkdir(db, 0o755))

	stdout, _, err := execute(t, testOptions(), "--index", db,
		filepath.Join("testdata", "trace.json"), filepath.Join(dir, "out.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Equal(t, "Processing...\nError: "+err.Error()+"\nProcessed 0 items in 0 ms\n", stdout)
}

func TestNormalize_VerboseLogsKinds(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json")

	_, stderr, err := execute(t, testOptions(), "-v", filepath.Join("testdata", "trace.json"), out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "run starting")
	assert.Contains(t, stderr, "kind=AliasedUnion count=1")
}

func TestNormalize_Index(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	out := filepath.Join(dir, "out.json")

	_, stderr, err := execute(t, testOptions(), "--index", db, filepath.Join("testdata", "trace.json"), out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "run indexed")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusDone, run.Status)
	assert.Equal(t, int64(4), run.Items)
	assert.Equal(t, 12*time.Millisecond, run.Duration)
}
