package cli

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A database of the topology is unreachable
	ExitCommandError = 2 // Invalid flags, arguments or configuration
)

const (
	formatText = "text"
	formatJSON = "json"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
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

// OutputFormatter writes command results as JSON or text.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Write renders data as indented JSON, or calls text for the text format.
func (f *OutputFormatter) Write(data any, text func(w io.Writer) error) error {
	if f.Format != formatJSON {
		return text(f.Writer)
	}

	encoded, err := jsoniter.ConfigFastest.MarshalIndent(data, "", "  ")
	if err != nil {
		return WrapExitError(ExitFailure, "encoding output failed", err)
	}

	_, err = fmt.Fprintln(f.Writer, string(encoded))

	return err
}
