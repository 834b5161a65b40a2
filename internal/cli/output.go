package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Run failure (unreadable input, unwritable output, corrupt compression, failed scenarios)
	ExitCommandError = 2 // Command error (bad arguments, invalid config, index not found)
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Reported is set when the command already showed the error, either as
	// console output of a run or as a JSON envelope.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// commandError is an ExitCommandError; err may be nil.
func commandError(message string, err error) *ExitError {
	return &ExitError{Code: ExitCommandError, Message: message, Err: err}
}

// runFailure is an ExitFailure; err may be nil.
func runFailure(message string, err error) *ExitError {
	return &ExitError{Code: ExitFailure, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err.
// Errors that are not an *ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsReported reports whether err was already shown by the command.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// Response is the envelope printed by commands in --format json.
type Response struct {
	Status string     `json:"status"` // "ok" or "error"
	Data   any        `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed command in a Response.
type ErrorBody struct {
	Code    string `json:"code"` // "E001", "E002", ...
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Printer writes command results as text or as a JSON Response.
type Printer struct {
	JSON    bool
	Out     io.Writer
	Diag    io.Writer // debug lines; never mixed into Out so JSON stays parseable
	Verbose bool
}

func newPrinter(cmd *cobra.Command, format string) *Printer {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return &Printer{
		JSON:    format == "json",
		Out:     cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: verbose,
	}
}

// Result prints data: the JSON envelope in JSON mode, text(Out) otherwise.
func (p *Printer) Result(data any, text func(io.Writer)) error {
	if p.JSON {
		return p.encode(Response{Status: "ok", Data: data})
	}
	text(p.Out)
	return nil
}

// Fail builds the error a command returns. In JSON mode the error is also
// printed as an envelope and marked reported, so stdout always holds exactly
// one document.
func (p *Printer) Fail(exitCode int, code, message string, err error) *ExitError {
	exitErr := &ExitError{Code: exitCode, Message: message, Err: err}
	if !p.JSON {
		return exitErr
	}
	body := &ErrorBody{Code: code, Message: message}
	if err != nil {
		body.Details = err.Error()
	}
	if p.encode(Response{Status: "error", Error: body}) == nil {
		exitErr.Reported = true
	}
	return exitErr
}

// Debugf writes a line to Diag when verbose.
func (p *Printer) Debugf(format string, args ...any) {
	if !p.Verbose || p.Diag == nil {
		return
	}
	fmt.Fprintf(p.Diag, format+"\n", args...)
}

func (p *Printer) encode(v any) error {
	if err := json.MarshalWrite(p.Out, v); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	_, err := io.WriteString(p.Out, "\n")
	return err
}
