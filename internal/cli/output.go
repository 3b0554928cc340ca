package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/schema"
	"github.com/roach88/recq/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation or scenario failure
	ExitCommandError = 2 // Command error (invalid paths, bad query, database errors, etc.)
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric            = "E001" // Generic/unknown error
	ErrCodeScanError          = "E002" // Directory scan error
	ErrCodeNoFiles            = "E003" // No CUE files found
	ErrCodeSchemaInvalid      = "E004" // CUE schema failed to compile
	ErrCodeNotFound           = "E005" // Path not found
	ErrCodeDatasetInvalid     = "E006" // Dataset could not be read or parsed
	ErrCodeStore              = "E007" // Snapshot store error
	ErrCodeInvalidArgument    = "E010" // Malformed query
	ErrCodeFieldNotFound      = "E011" // Query names an unknown field
	ErrCodeInvalidRecord      = "E012" // Record does not fit its schema
	ErrCodeCollectionNotFound = "E013" // Collection is not declared or stored
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode maps an error to its CLI error code.
func ErrorCode(err error) string {
	var (
		loadErr *LoadError
		ce      *collection.Error
		re      *schema.RecordError
		compErr *schema.CompileError
	)
	switch {
	case errors.As(err, &loadErr):
		return loadErr.Code
	case errors.As(err, &ce) && ce.Code == collection.ErrCodeFieldNotFound:
		return ErrCodeFieldNotFound
	case errors.As(err, &ce):
		return ErrCodeInvalidArgument
	case errors.As(err, &re):
		return ErrCodeInvalidRecord
	case errors.As(err, &compErr):
		return ErrCodeSchemaInvalid
	case errors.Is(err, store.ErrCollectionNotFound):
		return ErrCodeCollectionNotFound
	default:
		return ErrCodeGeneric
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err through the formatter and returns it as an ExitError
// carrying exitCode and the error's CLI code.
func (f *OutputFormatter) Fail(exitCode int, err error) error {
	code := ErrorCode(err)
	_ = f.Error(code, err.Error(), errorDetails(err))
	return WrapExitError(exitCode, code, err)
}

// errorDetails pulls the offending field and record index out of err.
func errorDetails(err error) any {
	var collErr *collection.Error
	if errors.As(err, &collErr) && collErr.Field != "" {
		return map[string]any{"field": collErr.Field}
	}
	var recErr *schema.RecordError
	if errors.As(err, &recErr) {
		d := map[string]any{}
		if recErr.Index >= 0 {
			d["record"] = recErr.Index
		}
		if recErr.Field != "" {
			d["field"] = recErr.Field
		}
		if len(d) > 0 {
			return d
		}
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
