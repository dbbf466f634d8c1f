package errors

import (
	"errors"
	"testing"
)

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		category   Category
		code       Code
		message    string
		cause      error
		expectCode int
	}{
		{
			name:       "file error",
			category:   CategoryFile,
			code:       CodeFileNotFound,
			message:    "file not found",
			cause:      errors.New("no such file"),
			expectCode: 2,
		},
		{
			name:       "input error",
			category:   CategoryInput,
			code:       CodeInvalidDate,
			message:    "invalid date",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "configuration error",
			category:   CategoryConfiguration,
			code:       CodeInvalidConfig,
			message:    "invalid config",
			cause:      errors.New("missing field"),
			expectCode: 4,
		},
		{
			name:       "matching error",
			category:   CategoryMatching,
			code:       CodeProcessingError,
			message:    "ranking failed",
			cause:      nil,
			expectCode: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *Error
			if tt.cause != nil {
				err = Wrap(tt.cause, tt.category, tt.code, tt.message)
			} else {
				err = New(tt.category, tt.code, tt.message)
			}

			if err.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.GetExitCode() != tt.expectCode {
				t.Errorf("expected exit code %d, got %d", tt.expectCode, err.GetExitCode())
			}
			if err.Error() != tt.message {
				t.Errorf("expected error string %s, got %s", tt.message, err.Error())
			}
			if tt.cause != nil && err.Unwrap() != tt.cause {
				t.Errorf("expected to unwrap to %v, got %v", tt.cause, err.Unwrap())
			}
		})
	}
}

func TestErrorWithContext(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "test error").
		WithContext("file", "/path/to/file").
		WithContext("line", 42).
		WithSuggestion("check file path")

	if err.Context["file"] != "/path/to/file" {
		t.Errorf("expected file context '/path/to/file', got %v", err.Context["file"])
	}
	if err.Context["line"] != 42 {
		t.Errorf("expected line context 42, got %v", err.Context["line"])
	}
	if err.Suggestion != "check file path" {
		t.Errorf("expected suggestion 'check file path', got %s", err.Suggestion)
	}

	expected := "test error (suggestion: check file path)"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestInvalidInputErrorIsRecoverable(t *testing.T) {
	err := InvalidInputError(CodeInvalidAmount, "amount", "abc")

	if !err.IsRecoverable() {
		t.Error("expected invalid input error to be recoverable")
	}
	if !IsInvalidInput(err) {
		t.Error("expected IsInvalidInput to detect the error")
	}
	if IsConfiguration(err) {
		t.Error("input error should not be classified as configuration")
	}
	if err.Context["field"] != "amount" {
		t.Errorf("expected field context 'amount', got %v", err.Context["field"])
	}
}

func TestConfigurationErrorIsFatal(t *testing.T) {
	err := ConfigurationError(CodeInvalidCatalog, "categories.yaml", errors.New("bad yaml"))

	if err.IsRecoverable() {
		t.Error("configuration errors must not be recoverable")
	}
	if !IsConfiguration(err) {
		t.Error("expected IsConfiguration to detect the error")
	}
	if err.GetExitCode() != 4 {
		t.Errorf("expected exit code 4, got %d", err.GetExitCode())
	}
}

func TestSummary(t *testing.T) {
	errs := []*Error{
		InvalidInputError(CodeInvalidDate, "date", "not-a-date"),
		InvalidInputError(CodeInvalidAmount, "amount", ""),
		FileError(CodeFileNotFound, "missing.csv", nil),
	}

	summary := NewSummary(errs)

	if summary.Total != 3 {
		t.Errorf("expected total 3, got %d", summary.Total)
	}
	if summary.ByCategory[CategoryInput] != 2 {
		t.Errorf("expected 2 input errors, got %d", summary.ByCategory[CategoryInput])
	}
	if !summary.HasCategory(CategoryFile) {
		t.Error("expected summary to contain file category")
	}
	if summary.GetExitCode() != 3 {
		t.Errorf("expected exit code 3, got %d", summary.GetExitCode())
	}
	if len(summary.SampleErrors) != 3 {
		t.Errorf("expected 3 sample errors, got %d", len(summary.SampleErrors))
	}
}

func TestEmptySummary(t *testing.T) {
	summary := NewSummary(nil)

	if summary.Total != 0 {
		t.Errorf("expected total 0, got %d", summary.Total)
	}
	if summary.Error() != "no errors" {
		t.Errorf("expected 'no errors', got %q", summary.Error())
	}
	if summary.GetExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", summary.GetExitCode())
	}
}

func TestAsUnwrapsChain(t *testing.T) {
	inner := InvalidInputError(CodeEmptyField, "merchant", nil)

	extracted, ok := As(inner)
	if !ok {
		t.Fatal("expected As to extract the error")
	}
	if extracted.Code != CodeEmptyField {
		t.Errorf("expected code %s, got %s", CodeEmptyField, extracted.Code)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Error("plain errors must not be extracted")
	}
}
