package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typetrace/internal/record"
	"github.com/roach88/typetrace/internal/report"
)

func ptr[T any](v T) *T { return &v }

func testResult(t *testing.T, records ...string) *Result {
	t.Helper()
	result := NewResult()
	result.Summary = report.Summary{Items: int64(len(records)), Kinds: map[string]int64{}}
	for _, s := range records {
		r, err := record.Parse([]byte(s))
		require.NoError(t, err)
		result.Records = append(result.Records, r)
		kind, _ := r.StringField("kind")
		result.Summary.Kinds[kind]++
		result.IndexKinds[kind]++
	}
	return result
}

func TestAssertSummary(t *testing.T) {
	result := testResult(t, `{"id":1,"kind":"Other"}`)
	result.Summary.Dropped = 2

	assert.NoError(t, evaluate(result, Assertion{Type: AssertSummary, Items: ptr(int64(1)), Dropped: ptr(int64(2))}))
	assert.NoError(t, evaluate(result, Assertion{Type: AssertSummary, Truncated: ptr(false)}))

	err := evaluate(result, Assertion{Type: AssertSummary, Items: ptr(int64(3)), Truncated: ptr(true)})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "items=3 truncated=true", ae.Expected)
	assert.Equal(t, "items 1 != 3, truncated false != true", ae.Actual)
}

func TestAssertKindCount(t *testing.T) {
	result := testResult(t, `{"id":1,"kind":"Union"}`, `{"id":2,"kind":"Union"}`)

	assert.NoError(t, evaluate(result, Assertion{Type: AssertKindCount, Kind: "Union", Count: 2}))
	assert.NoError(t, evaluate(result, Assertion{Type: AssertKindCount, Kind: "Object", Count: 0}))

	// Summary and index must agree.
	result.IndexKinds["Union"] = 1
	err := evaluate(result, Assertion{Type: AssertKindCount, Kind: "Union", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 in run summary, 1 in index")
}

func TestAssertOutputContains(t *testing.T) {
	result := testResult(t, `{"id":1,"kind":"Union","count":2,"types":[2,3]}`)

	assert.NoError(t, evaluate(result, Assertion{Type: AssertOutputContains, Record: `{"id":1, "kind":"Union", "count":2, "types":[2, 3]}`}))

	// Member order matters.
	err := evaluate(result, Assertion{Type: AssertOutputContains, Record: `{"kind":"Union","id":1,"count":2,"types":[2,3]}`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in output")
	assert.Contains(t, err.Error(), `[1] {"id":1,"kind":"Union","count":2,"types":[2,3]}`)
}

func TestAssertOutputOrder(t *testing.T) {
	result := testResult(t, `{"id":3,"kind":"Other"}`, `{"id":1,"kind":"Other"}`)

	assert.NoError(t, evaluate(result, Assertion{Type: AssertOutputOrder, IDs: []int64{3, 1}}))

	err := evaluate(result, Assertion{Type: AssertOutputOrder, IDs: []int64{1, 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: [1, 3]")
	assert.Contains(t, err.Error(), "Actual: [3, 1]")
}

func TestAssertRunError(t *testing.T) {
	result := testResult(t)
	err := evaluate(result, Assertion{Type: AssertRunError, Contains: "gzip"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run succeeded")

	result.RunErr = errors.New("read input line 1: gzip: invalid header")
	assert.NoError(t, evaluate(result, Assertion{Type: AssertRunError, Contains: "gzip"}))
	assert.Error(t, evaluate(result, Assertion{Type: AssertRunError, Contains: "brotli"}))
}

func TestEvaluateAssertions_PrefixesIndex(t *testing.T) {
	result := testResult(t, `{"id":1,"kind":"Other"}`)
	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertSummary, Items: ptr(int64(1))},
		{Type: AssertKindCount, Kind: "Other", Count: 5},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "assertions[1]: Assertion failed: kind_count")
}
