package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/recq/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Collections []CollectionShape `json:"collections,omitempty"`
	Errors      []ValidationError `json:"errors,omitempty"`
}

// CollectionShape summarizes one compiled collection.
type CollectionShape struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
	Text   []string `json:"text_fields"`
}

// ValidationError is one schema problem with its source line.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-dir>",
		Short: "Validate collection schemas",
		Long: `Compile every CUE file in a schema directory and report problems.

Each file is compiled on its own and all errors are reported, not just
the first. A collection declared in two files is an error.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, loadErrors := LoadSchemas(dir, LoadModeCollectAll)

	// Directory-level problems (not found, no files) are command errors
	if loadResult == nil {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
		}
		return formatter.Fail(ExitCommandError, loadErrors[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	var validationErrors []ValidationError
	for _, err := range loadErrors {
		validationErrors = append(validationErrors, toValidationError(err))
	}
	if len(validationErrors) == 0 && len(loadResult.Schemas) == 0 {
		validationErrors = append(validationErrors, ValidationError{
			Code:    ErrCodeSchemaInvalid,
			Message: "no collections declared",
		})
	}
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	shapes := make([]CollectionShape, len(loadResult.Schemas))
	for i, s := range loadResult.Schemas {
		formatter.VerboseLog("Collection %s: %d field(s)", s.Name, len(s.Fields))
		shapes[i] = shapeOf(s)
	}
	return outputValidateSuccess(formatter, shapes)
}

func shapeOf(s *schema.Schema) CollectionShape {
	return CollectionShape{Name: s.Name, Fields: s.Names(), Text: s.TextFields()}
}

func toValidationError(err error) ValidationError {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return ValidationError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	ve := ValidationError{Code: loadErr.Code, Message: loadErr.Message}
	if loadErr.Pos.IsValid() {
		ve.File = loadErr.Pos.Filename()
		ve.Line = loadErr.Pos.Line()
	}
	return ve
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, shapes []CollectionShape) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Collections: shapes})
	}

	fmt.Fprintln(formatter.Writer, "✓ All schemas valid")
	if formatter.Verbose {
		for _, s := range shapes {
			fmt.Fprintf(formatter.Writer, "  %s (%d fields)\n", s.Name, len(s.Fields))
		}
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", err.File, err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
