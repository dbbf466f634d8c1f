package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expense-reconciliation-service/cmd/reconciler/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDoMatchEndToEnd(t *testing.T) {
	dir := t.TempDir()

	receipts := writeFile(t, dir, "receipts.csv", `id,date,total,merchant
r1,2024-03-15,45.67,Starbucks Coffee
r2,2024-03-10,100.00,Office Depot
`)
	bank := writeFile(t, dir, "bank.csv", `id,date,amount,merchant
t1,2024-03-15,-45.67,STARBUCKS #1234
`)
	expenses := writeFile(t, dir, "expenses.csv", `id,date,amount
e1,2024-03-10,105.00
`)
	output := filepath.Join(dir, "report.csv")

	appConfig := &config.AppConfig{
		ReceiptsFile: receipts,
		BankFile:     bank,
		ExpensesFile: expenses,
		Categorize:   true,
		OutputFormat: "csv",
		OutputFile:   output,
	}

	if err := doMatch(context.Background(), appConfig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	report := string(data)

	if !strings.Contains(report, "r1,t1,matched,bank-transaction") {
		t.Errorf("bank match missing from report:\n%s", report)
	}
	if !strings.Contains(report, "r2,e1,matched,expense-pool") {
		t.Errorf("expense match missing from report:\n%s", report)
	}
}

func TestDoMatchMissingReceiptsFile(t *testing.T) {
	appConfig := &config.AppConfig{
		ReceiptsFile: filepath.Join(t.TempDir(), "absent.csv"),
		BankFile:     "unused.csv",
	}

	if err := doMatch(context.Background(), appConfig); err == nil {
		t.Fatal("expected error for missing receipts file")
	}
}

func TestCLIErrorHandlerExitCodes(t *testing.T) {
	handler := NewCLIErrorHandler()

	if code := handler.HandleError(nil); code != 0 {
		t.Errorf("nil error should exit 0, got %d", code)
	}

	appConfig := &config.AppConfig{}
	err := appConfig.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if code := handler.HandleError(err); code != 4 {
		t.Errorf("configuration error should exit 4, got %d", code)
	}
}
