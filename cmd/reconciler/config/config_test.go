package config

import (
	"os"
	"path/filepath"
	"testing"

	"expense-reconciliation-service/internal/reporter"
	"expense-reconciliation-service/pkg/errors"
)

func validConfig() *AppConfig {
	return &AppConfig{
		ReceiptsFile: "receipts.csv",
		BankFile:     "bank.csv",
		Categorize:   true,
	}
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(c *AppConfig) {}, false},
		{"expenses pool only", func(c *AppConfig) { c.BankFile = ""; c.ExpensesFile = "e.csv" }, false},
		{"missing receipts", func(c *AppConfig) { c.ReceiptsFile = "" }, true},
		{"no pools", func(c *AppConfig) { c.BankFile = "" }, true},
		{"threshold out of range", func(c *AppConfig) { c.Overrides.BankThreshold = 1.5 }, true},
		{"negative epsilon", func(c *AppConfig) { c.Overrides.AmbiguityEpsilon = -0.2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsConfiguration(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestBuildSessionConfigAppliesOverrides(t *testing.T) {
	cfg := validConfig()
	cfg.Overrides = MatchingOverrides{
		BankThreshold:    0.85,
		ExpenseThreshold: 0.6,
		AmbiguityEpsilon: 0.05,
		BankWindowDays:   5,
	}

	sessionConfig, err := cfg.BuildSessionConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sessionConfig.BankContext.MinConfidenceScore != 0.85 {
		t.Errorf("bank threshold override not applied: %f", sessionConfig.BankContext.MinConfidenceScore)
	}
	if sessionConfig.ExpenseContext.MinConfidenceScore != 0.6 {
		t.Errorf("expense threshold override not applied: %f", sessionConfig.ExpenseContext.MinConfidenceScore)
	}
	if sessionConfig.BankContext.AmbiguityEpsilon != 0.05 {
		t.Errorf("epsilon override not applied: %f", sessionConfig.BankContext.AmbiguityEpsilon)
	}
	if sessionConfig.BankContext.DateWindowDays != 5 {
		t.Errorf("window override not applied: %d", sessionConfig.BankContext.DateWindowDays)
	}

	// Untouched knobs keep their defaults.
	if sessionConfig.ExpenseContext.DateWindowDays != 7 {
		t.Errorf("expense window changed without override: %d", sessionConfig.ExpenseContext.DateWindowDays)
	}
}

func TestBuildSessionConfigZeroOverridesKeepDefaults(t *testing.T) {
	sessionConfig, err := validConfig().BuildSessionConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sessionConfig.BankContext.MinConfidenceScore != 0.8 {
		t.Errorf("bank default threshold changed: %f", sessionConfig.BankContext.MinConfidenceScore)
	}
	if sessionConfig.ExpenseContext.MinConfidenceScore != 0.7 {
		t.Errorf("expense default threshold changed: %f", sessionConfig.ExpenseContext.MinConfidenceScore)
	}
}

func TestBuildSessionConfigLoadsCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `categories:
  - name: Groceries
    high_keywords: [grocery]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := validConfig()
	cfg.CatalogFile = path

	sessionConfig, err := cfg.BuildSessionConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessionConfig.Catalog.Categories) != 1 || sessionConfig.Catalog.Categories[0].Name != "Groceries" {
		t.Errorf("catalog not loaded: %+v", sessionConfig.Catalog)
	}
}

func TestBuildSessionConfigBadCatalog(t *testing.T) {
	cfg := validConfig()
	cfg.CatalogFile = filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := cfg.BuildSessionConfig(); err == nil {
		t.Fatal("expected error for missing catalog file")
	}
}

func TestBuildReportConfig(t *testing.T) {
	cfg := validConfig()
	cfg.OutputFormat = "json"

	reportConfig := cfg.BuildReportConfig()
	if reportConfig.Format != reporter.FormatJSON {
		t.Errorf("expected json format, got %s", reportConfig.Format)
	}
}
