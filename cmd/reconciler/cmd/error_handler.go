package cmd

import (
	"fmt"
	"os"

	"expense-reconciliation-service/pkg/errors"
	"expense-reconciliation-service/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler renders errors for the terminal and maps them to exit
// codes.
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler.
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a user-facing message and returns the exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if coreErr, ok := errors.As(err); ok {
		return h.handleCoreError(coreErr)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func (h *CLIErrorHandler) handleCoreError(err *errors.Error) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", categoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

func categoryHelp(category errors.Category) string {
	switch category {
	case errors.CategoryFile:
		return "Check the file paths and permissions, then try again."
	case errors.CategoryParse:
		return "Check the CSV structure against the expected columns. Run with --verbose for details."
	case errors.CategoryInput:
		return "One or more records carry malformed values. They were skipped; fix them to include them."
	case errors.CategoryConfiguration:
		return "Fix the configuration or catalog before re-running; bad configuration corrupts every result."
	case errors.CategoryMatching:
		return "Review the input pools and matching thresholds."
	default:
		return "An unexpected error occurred. Run with --verbose for diagnostics."
	}
}
