// Package config assembles the engine configuration for the CLI from flags,
// environment, and config file values.
package config

import (
	"expense-reconciliation-service/internal/categorizer"
	"expense-reconciliation-service/internal/matcher"
	"expense-reconciliation-service/internal/parsers"
	"expense-reconciliation-service/internal/reconciler"
	"expense-reconciliation-service/internal/reporter"
	"expense-reconciliation-service/pkg/errors"
)

// MatchingOverrides carries the CLI-tunable matching knobs. Zero values mean
// "keep the context default".
type MatchingOverrides struct {
	BankThreshold    float64
	ExpenseThreshold float64
	AmbiguityEpsilon float64
	BankWindowDays   int
	ExpenseWindow    int
}

// AppConfig is the fully resolved configuration for one CLI run.
type AppConfig struct {
	ReceiptsFile string
	BankFile     string
	ExpensesFile string
	CatalogFile  string

	Overrides  MatchingOverrides
	Categorize bool

	OutputFormat string
	OutputFile   string
}

// Validate checks the resolved configuration before any file is touched.
func (c *AppConfig) Validate() error {
	if c.ReceiptsFile == "" {
		return errors.ConfigurationError(errors.CodeInvalidConfig,
			"receipts file is required", nil)
	}
	if c.BankFile == "" && c.ExpensesFile == "" {
		return errors.ConfigurationError(errors.CodeInvalidConfig,
			"at least one transaction pool is required", nil).
			WithSuggestion("provide --bank-file, --expenses-file, or both")
	}
	for _, pair := range []struct {
		name  string
		value float64
	}{
		{"bank threshold", c.Overrides.BankThreshold},
		{"expense threshold", c.Overrides.ExpenseThreshold},
		{"ambiguity epsilon", c.Overrides.AmbiguityEpsilon},
	} {
		if pair.value < 0 || pair.value > 1 {
			return errors.ConfigurationError(errors.CodeInvalidConfig, pair.name, nil).
				WithContext("value", pair.value).
				WithSuggestion("use a value between 0.0 and 1.0")
		}
	}
	return nil
}

// BuildSessionConfig creates the reconciliation session configuration with
// the overrides applied.
func (c *AppConfig) BuildSessionConfig() (*reconciler.Config, error) {
	cfg := reconciler.DefaultConfig()
	cfg.CategorizeTransactions = c.Categorize

	apply := func(ctx *matcher.MatchContext, threshold, epsilon float64, window int) {
		if threshold > 0 {
			ctx.MinConfidenceScore = threshold
		}
		if epsilon > 0 {
			ctx.AmbiguityEpsilon = epsilon
		}
		if window > 0 {
			ctx.DateWindowDays = window
		}
	}
	apply(cfg.BankContext, c.Overrides.BankThreshold, c.Overrides.AmbiguityEpsilon, c.Overrides.BankWindowDays)
	apply(cfg.ExpenseContext, c.Overrides.ExpenseThreshold, c.Overrides.AmbiguityEpsilon, c.Overrides.ExpenseWindow)

	if c.CatalogFile != "" {
		catalog, err := categorizer.LoadCatalog(c.CatalogFile)
		if err != nil {
			return nil, err
		}
		cfg.Catalog = catalog
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BuildReportConfig creates the reporter configuration.
func (c *AppConfig) BuildReportConfig() *reporter.ReportConfig {
	cfg := reporter.DefaultReportConfig()
	if c.OutputFormat != "" {
		cfg.Format = reporter.OutputFormat(c.OutputFormat)
	}
	return cfg
}

// BuildParserConfigs creates the file parser configurations.
func (c *AppConfig) BuildParserConfigs() (*parsers.ReceiptFileConfig, *parsers.TransactionFileConfig, *parsers.TransactionFileConfig) {
	return parsers.DefaultReceiptFileConfig(),
		parsers.DefaultBankFileConfig(),
		parsers.DefaultExpenseFileConfig()
}
