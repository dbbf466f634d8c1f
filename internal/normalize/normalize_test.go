package normalize

import (
	"testing"
	"time"

	"expense-reconciliation-service/internal/models"
	"expense-reconciliation-service/pkg/errors"

	"github.com/shopspring/decimal"
)

func TestMerchant(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"exact", "starbucks", "starbucks"},
		{"uppercase", "STARBUCKS #1234", "starbucks #1234"},
		{"surrounding whitespace", "  Whole Foods  ", "whole foods"},
		{"internal whitespace", "Whole\t Foods   Market", "whole foods market"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Merchant(tt.input)
			if m.Normalized != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, m.Normalized)
			}
			if m.Raw != tt.input {
				t.Errorf("raw form must be preserved: expected %q, got %q", tt.input, m.Raw)
			}
		})
	}
}

func TestMerchantIdempotent(t *testing.T) {
	inputs := []string{"STARBUCKS #1234", "  Whole   Foods ", "", "trader joe's"}

	for _, input := range inputs {
		once := Merchant(input)
		twice := Merchant(once.Normalized)
		if twice.Normalized != once.Normalized {
			t.Errorf("normalization not idempotent for %q: %q != %q",
				input, once.Normalized, twice.Normalized)
		}
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name             string
		input            models.MoneyAmount
		sourceCurrency   string
		expectedValue    string
		expectedCurrency string
	}{
		{
			name:             "negative becomes absolute",
			input:            models.MoneyAmount{Magnitude: decimal.NewFromFloat(-42.50), Currency: "USD"},
			sourceCurrency:   "EUR",
			expectedValue:    "42.5",
			expectedCurrency: "USD",
		},
		{
			name:             "missing currency defaults to source",
			input:            models.MoneyAmount{Magnitude: decimal.NewFromFloat(10)},
			sourceCurrency:   "EUR",
			expectedValue:    "10",
			expectedCurrency: "EUR",
		},
		{
			name:             "no currency anywhere falls back to default",
			input:            models.MoneyAmount{Magnitude: decimal.NewFromFloat(10)},
			sourceCurrency:   "",
			expectedValue:    "10",
			expectedCurrency: models.DefaultCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Amount(tt.input, tt.sourceCurrency)
			if result.Magnitude.String() != tt.expectedValue {
				t.Errorf("expected magnitude %s, got %s", tt.expectedValue, result.Magnitude)
			}
			if result.Currency != tt.expectedCurrency {
				t.Errorf("expected currency %s, got %s", tt.expectedCurrency, result.Currency)
			}
		})
	}
}

func TestParseAmountInvalid(t *testing.T) {
	_, err := ParseAmount("not-money", "USD")
	if err == nil {
		t.Fatal("expected error for malformed amount")
	}
	if !errors.IsInvalidInput(err) {
		t.Errorf("expected recoverable input error, got %v", err)
	}
}

func TestDateTruncation(t *testing.T) {
	ts := time.Date(2024, 1, 5, 18, 30, 0, 0, time.FixedZone("CET", 3600))

	d, err := Date(ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-01-05" {
		t.Errorf("expected 2024-01-05, got %s", d)
	}
}

func TestDateZeroValue(t *testing.T) {
	_, err := Date(time.Time{})
	if err == nil {
		t.Fatal("expected error for zero time")
	}
	if !errors.IsInvalidInput(err) {
		t.Errorf("expected recoverable input error, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05T23:59:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-01-05" {
		t.Errorf("expected 2024-01-05, got %s", d)
	}

	if _, err := ParseDate("yesterday"); !errors.IsInvalidInput(err) {
		t.Errorf("expected recoverable input error, got %v", err)
	}
}
