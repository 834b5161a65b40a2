package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_JSONResult(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{JSON: true, Out: out}

	err := p.Result(KindEntry{Kind: "Union", Count: 3}, func(io.Writer) {
		t.Fatal("text renderer called in JSON mode")
	})
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok","data":{"kind":"Union","count":3}}`+"\n", out.String())
}

func TestPrinter_TextResult(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{Out: out}

	err := p.Result(KindEntry{Kind: "Union", Count: 3}, func(w io.Writer) {
		fmt.Fprintln(w, "Union 3")
	})
	require.NoError(t, err)
	assert.Equal(t, "Union 3\n", out.String())
}

func TestPrinter_FailJSON(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{JSON: true, Out: out}

	err := p.Fail(ExitCommandError, "E002", "no runs in index", errors.New("index has no runs"))
	assert.Equal(t, ExitCommandError, err.Code)
	assert.True(t, err.Reported)
	assert.Equal(t, "no runs in index: index has no runs", err.Error())

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrorBody{Code: "E002", Message: "no runs in index", Details: "index has no runs"}, *resp.Error)
}

func TestPrinter_FailJSONWithoutCause(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{JSON: true, Out: out}

	p.Fail(ExitFailure, "E003", "query failed", nil)
	assert.Equal(t, `{"status":"error","error":{"code":"E003","message":"query failed"}}`+"\n", out.String())
}

func TestPrinter_FailText(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{Out: out}

	err := p.Fail(ExitCommandError, "E001", "index not found", nil)
	assert.False(t, err.Reported)
	assert.Empty(t, out.String(), "text mode leaves printing to main")
}

func TestPrinter_Debugf(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    string
	}{
		{"verbose", true, "Reading index runs.db\n"},
		{"quiet", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			p := &Printer{JSON: true, Out: out, Diag: diag, Verbose: tt.verbose}

			p.Debugf("Reading index %s", "runs.db")
			assert.Empty(t, out.String())
			assert.Equal(t, tt.want, diag.String())
		})
	}
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")

	err := commandError("failed to open index", base)
	assert.Equal(t, "failed to open index: boom", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "bad args", commandError("bad args", nil).Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(commandError("x", nil)))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", runFailure("run failed", nil))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestIsReported(t *testing.T) {
	assert.False(t, IsReported(errors.New("plain")))
	assert.False(t, IsReported(runFailure("x", nil)))
	assert.True(t, IsReported(&ExitError{Code: ExitFailure, Message: "run failed", Reported: true}))
}
