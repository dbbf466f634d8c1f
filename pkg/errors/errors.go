// Package errors defines the structured error types used across the
// reconciliation engine.
//
// Two error kinds matter to callers:
//   - invalid-input errors (malformed date, amount, or empty required field)
//     are recoverable: the affected scoring dimension contributes 0 and the
//     surrounding ranking continues;
//   - configuration errors (missing or malformed category catalog, bad
//     matching context) are fatal and must surface before any scoring runs.
//
// Every error carries a category, a code, optional key/value context and a
// suggestion, plus a captured stack trace for diagnostics.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Category groups errors by the subsystem that produced them.
type Category string

const (
	CategoryFile          Category = "file"
	CategoryParse         Category = "parse"
	CategoryInput         Category = "input"
	CategoryConfiguration Category = "configuration"
	CategoryMatching      Category = "matching"
	CategoryInternal      Category = "internal"
)

// Code identifies a specific failure within a category.
type Code string

const (
	// File errors
	CodeFileNotFound   Code = "file_not_found"
	CodeFilePermission Code = "file_permission"

	// Parse errors
	CodeInvalidFormat Code = "invalid_format"
	CodeMissingColumn Code = "missing_column"
	CodeInvalidData   Code = "invalid_data"

	// Input errors
	CodeInvalidAmount Code = "invalid_amount"
	CodeInvalidDate   Code = "invalid_date"
	CodeEmptyField    Code = "empty_field"

	// Configuration errors
	CodeInvalidConfig  Code = "invalid_config"
	CodeMissingCatalog Code = "missing_catalog"
	CodeInvalidCatalog Code = "invalid_catalog"

	// Matching errors
	CodeNoCandidates    Code = "no_candidates"
	CodeProcessingError Code = "processing_error"

	// Internal errors
	CodeUnexpectedError Code = "unexpected_error"
)

// Error is the base error type for the reconciliation engine.
type Error struct {
	Category   Category          `json:"category"`
	Code       Code              `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error.
type Context map[string]interface{}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRecoverable reports whether the caller may recover by treating the
// affected record as unmatchable instead of aborting the operation.
func (e *Error) IsRecoverable() bool {
	return e.Category == CategoryInput
}

// GetExitCode returns the process exit code appropriate for the error.
func (e *Error) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryInput:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryMatching, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// New creates a new Error.
func New(category Category, code Code, message string) *Error {
	return &Error{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with category and code context.
func Wrap(err error, category Category, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// InvalidInputError creates a recoverable input error for a malformed record
// field. Callers score the affected dimension 0 rather than aborting.
func InvalidInputError(code Code, field string, value interface{}) *Error {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "ensure amounts are valid decimal numbers (e.g., '12.34')"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use date format YYYY-MM-DD"
	case CodeEmptyField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	default:
		message = fmt.Sprintf("invalid input in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	return New(CategoryInput, code, message).
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a fatal configuration error. A bad catalog or
// matching context silently corrupts every downstream decision, so these are
// surfaced before any categorization or ranking runs.
func ConfigurationError(code Code, setting string, err error) *Error {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s'", setting)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingCatalog:
		message = fmt.Sprintf("missing category catalog: %s", setting)
		suggestion = "provide a catalog file or use the built-in default catalog"
	case CodeInvalidCatalog:
		message = fmt.Sprintf("malformed category catalog: %s", setting)
		suggestion = "verify the catalog YAML structure and category definitions"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *Error
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting)
}

// FileError creates a file-access error.
func FileError(code Code, path string, err error) *Error {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *Error
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing error located at a specific line and column.
func ParseError(code Code, file string, line int, column string, value string, err error) *Error {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "check the data format and ensure it matches the expected structure"
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column '%s' in file %s", column, file)
		suggestion = "verify the file has all required columns with correct headers"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "correct the data format or remove the invalid entry"
	default:
		message = fmt.Sprintf("parse error in file %s at line %d", file, line)
		suggestion = "check the file format and data integrity"
	}

	var result *Error
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("column", column).
		WithContext("value", value)
}

// MatchingError creates an error for a failed ranking or reconciliation pass.
func MatchingError(code Code, operation string, err error) *Error {
	var message string
	var suggestion string

	switch code {
	case CodeNoCandidates:
		message = fmt.Sprintf("no candidates available during %s", operation)
		suggestion = "load candidate records before ranking"
	case CodeProcessingError:
		message = fmt.Sprintf("processing error during %s", operation)
		suggestion = "check the input data and matching context"
	default:
		message = fmt.Sprintf("matching error during %s", operation)
		suggestion = "review the data and configuration"
	}

	var result *Error
	if err != nil {
		result = Wrap(err, CategoryMatching, code, message)
	} else {
		result = New(CategoryMatching, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// InternalError creates an error for unexpected internal failures.
func InternalError(operation string, err error) *Error {
	result := Wrap(err, CategoryInternal, CodeUnexpectedError,
		fmt.Sprintf("unexpected error during %s", operation))
	if result == nil {
		result = New(CategoryInternal, CodeUnexpectedError,
			fmt.Sprintf("unexpected error during %s", operation))
	}
	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// Summary aggregates multiple errors, typically accumulated per-record during
// a parse or ranking pass.
type Summary struct {
	Total        int              `json:"total"`
	ByCategory   map[Category]int `json:"by_category"`
	ByCode       map[Code]int     `json:"by_code"`
	Errors       []*Error         `json:"errors"`
	SampleErrors []*Error         `json:"sample_errors,omitempty"`
}

// NewSummary creates a summary over the given errors.
func NewSummary(errs []*Error) *Summary {
	summary := &Summary{
		Total:      len(errs),
		ByCategory: make(map[Category]int),
		ByCode:     make(map[Code]int),
		Errors:     errs,
	}
	if len(errs) == 0 {
		summary.Errors = []*Error{}
		return summary
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	maxSamples := 5
	if len(errs) > maxSamples {
		summary.SampleErrors = errs[:maxSamples]
	} else {
		summary.SampleErrors = errs
	}

	return summary
}

// Error returns a formatted message covering all collected errors.
func (s *Summary) Error() string {
	if s.Total == 0 {
		return "no errors"
	}

	if s.Total == 1 {
		return s.Errors[0].Error()
	}

	var categories []string
	for category, count := range s.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", s.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category.
func (s *Summary) HasCategory(category Category) bool {
	return s.ByCategory[category] > 0
}

// GetExitCode returns the highest priority exit code from all errors.
func (s *Summary) GetExitCode() int {
	if s.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range s.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr, true
	}
	return nil, false
}

// IsInvalidInput reports whether err is a recoverable input error.
func IsInvalidInput(err error) bool {
	if coreErr, ok := As(err); ok {
		return coreErr.IsRecoverable()
	}
	return false
}

// IsConfiguration reports whether err is a fatal configuration error.
func IsConfiguration(err error) bool {
	if coreErr, ok := As(err); ok {
		return coreErr.Category == CategoryConfiguration
	}
	return false
}
