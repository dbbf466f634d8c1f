package reporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"expense-reconciliation-service/internal/models"
	"expense-reconciliation-service/internal/normalize"
	"expense-reconciliation-service/internal/reconciler"

	"github.com/shopspring/decimal"
)

func sessionResult(t *testing.T) *reconciler.Result {
	t.Helper()

	session, err := reconciler.NewSession(nil)
	if err != nil {
		t.Fatal(err)
	}

	date := models.NewCalendarDate(2024, time.March, 15)
	money := func(s string) models.MoneyAmount {
		return models.NewMoneyAmount(decimal.RequireFromString(s), "USD")
	}

	receipts := []*models.ReceiptRecord{
		{ID: "r1", Date: date, Total: money("45.67"), Merchant: normalize.Merchant("Starbucks Coffee")},
		{ID: "r2", Date: models.NewCalendarDate(2024, time.January, 1), Total: money("30.00"), Merchant: normalize.Merchant("Nowhere")},
	}
	bank := []*models.TransactionRecord{
		{ID: "t1", Date: date, Amount: money("-45.67"), Merchant: normalize.Merchant("STARBUCKS #1234"), Source: models.SourceBank},
	}

	result, err := session.Reconcile(context.Background(), receipts, nil, bank)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestConsoleReport(t *testing.T) {
	result := sessionResult(t)

	gen, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gen.GenerateReport(result, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Reconciliation Report",
		"Matched:           1",
		"r1 -> t1",
		"score 90%",
		"Exact amount match",
		"Unmatched receipts: r2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console report missing %q:\n%s", want, out)
		}
	}
}

func TestJSONReport(t *testing.T) {
	result := sessionResult(t)

	gen, err := NewReportGenerator(&ReportConfig{Format: FormatJSON, MaxReasons: 5})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gen.GenerateReport(result, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if _, ok := decoded["summary"]; !ok {
		t.Error("JSON report missing summary")
	}
}

func TestCSVReport(t *testing.T) {
	result := sessionResult(t)

	gen, err := NewReportGenerator(&ReportConfig{Format: FormatCSV})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gen.GenerateReport(result, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("report is not valid CSV: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "receipt_id" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	byID := map[string][]string{}
	for _, row := range rows[1:] {
		byID[row[0]] = row
	}
	if byID["r1"][2] != "matched" || byID["r1"][1] != "t1" {
		t.Errorf("r1 row wrong: %v", byID["r1"])
	}
	if byID["r2"][2] != "unmatched" {
		t.Errorf("r2 row wrong: %v", byID["r2"])
	}
}

func TestReportConfigValidation(t *testing.T) {
	if _, err := NewReportGenerator(&ReportConfig{Format: "xml"}); err == nil {
		t.Error("expected error for unsupported format")
	}
	if _, err := NewReportGenerator(&ReportConfig{Format: FormatJSON, MaxReasons: -1}); err == nil {
		t.Error("expected error for negative max reasons")
	}
}

func TestReportNilResult(t *testing.T) {
	gen, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := gen.GenerateReport(nil, &bytes.Buffer{}); err == nil {
		t.Error("expected error for nil result")
	}
}
