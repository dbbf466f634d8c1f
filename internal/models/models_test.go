package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseSourceTag(t *testing.T) {
	tests := []struct {
		input    string
		expected SourceTag
		wantErr  bool
	}{
		{"bank", SourceBank, false},
		{"BANK", SourceBank, false},
		{" manual ", SourceManual, false},
		{"expense", SourceManual, false},
		{"card", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tag, err := ParseSourceTag(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tag != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, tag)
			}
		})
	}
}

func TestMoneyAmountDefaults(t *testing.T) {
	m := NewMoneyAmount(decimal.NewFromFloat(-12.34), "")

	if m.Currency != DefaultCurrency {
		t.Errorf("expected default currency %s, got %s", DefaultCurrency, m.Currency)
	}
	if !m.Abs().Equal(decimal.NewFromFloat(12.34)) {
		t.Errorf("expected abs 12.34, got %s", m.Abs())
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		currency string
		expected string
		wantErr  bool
	}{
		{"plain", "4.75", "USD", "4.75", false},
		{"currency symbol", "$1,234.50", "", "1234.5", false},
		{"negative", "-42.00", "EUR", "-42", false},
		{"empty", "", "USD", "", true},
		{"garbage", "4.7.5", "USD", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMoney(tt.input, tt.currency)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Magnitude.String() != tt.expected {
				t.Errorf("expected magnitude %s, got %s", tt.expected, m.Magnitude)
			}
		})
	}
}

func TestMoneyAmountJSONRoundTrip(t *testing.T) {
	original := NewMoneyAmount(decimal.NewFromFloat(99.95), "EUR")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored MoneyAmount
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !restored.Equal(original) {
		t.Errorf("expected %s, got %s", original, restored)
	}
}

func TestCalendarDateTruncation(t *testing.T) {
	// Late-evening timestamp stays on its own wall-clock day.
	ts := time.Date(2024, 1, 5, 23, 45, 12, 0, time.FixedZone("PST", -8*3600))
	d := CalendarDateOf(ts)

	if d.Year != 2024 || d.Month != time.January || d.Day != 5 {
		t.Errorf("expected 2024-01-05, got %s", d)
	}
}

func TestCalendarDateDaysApart(t *testing.T) {
	a := NewCalendarDate(2024, time.January, 5)

	tests := []struct {
		other    CalendarDate
		expected int
	}{
		{NewCalendarDate(2024, time.January, 5), 0},
		{NewCalendarDate(2024, time.January, 6), 1},
		{NewCalendarDate(2024, time.January, 2), 3},
		{NewCalendarDate(2023, time.December, 29), 7},
		{NewCalendarDate(2024, time.February, 5), 31},
	}

	for _, tt := range tests {
		if got := a.DaysApart(tt.other); got != tt.expected {
			t.Errorf("DaysApart(%s, %s): expected %d, got %d", a, tt.other, tt.expected, got)
		}
		// Symmetric
		if got := tt.other.DaysApart(a); got != tt.expected {
			t.Errorf("DaysApart(%s, %s): expected %d, got %d", tt.other, a, tt.expected, got)
		}
	}
}

func TestParseCalendarDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"2024-01-05", "2024-01-05", false},
		{"2024-01-05T14:30:00Z", "2024-01-05", false},
		{"01/15/2024", "2024-01-15", false},
		{"Jan 5, 2024", "2024-01-05", false},
		{"not-a-date", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseCalendarDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.String() != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, d)
			}
		})
	}
}

func TestTransactionRecordValidate(t *testing.T) {
	valid := &TransactionRecord{
		ID:     "TX001",
		Date:   NewCalendarDate(2024, time.January, 5),
		Amount: NewMoneyAmount(decimal.NewFromFloat(4.75), "USD"),
		Source: SourceBank,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*TransactionRecord)
	}{
		{"empty ID", func(tx *TransactionRecord) { tx.ID = "  " }},
		{"zero date", func(tx *TransactionRecord) { tx.Date = CalendarDate{} }},
		{"bad source", func(tx *TransactionRecord) { tx.Source = "card" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := *valid
			tt.mutate(&tx)
			if err := tx.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestReceiptRecordValidate(t *testing.T) {
	valid := &ReceiptRecord{
		ID:    "RC001",
		Date:  NewCalendarDate(2024, time.January, 5),
		Total: NewMoneyAmount(decimal.NewFromFloat(4.75), "USD"),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	invalid := &ReceiptRecord{Date: NewCalendarDate(2024, time.January, 5)}
	if err := invalid.Validate(); err == nil {
		t.Error("expected validation error for empty ID")
	}
}

func TestReciprocalLinkAccessors(t *testing.T) {
	tx := &TransactionRecord{ID: "TX001"}
	rc := &ReceiptRecord{ID: "RC001"}

	if tx.IsMatched() || rc.IsMatched() {
		t.Error("fresh records must be unmatched")
	}

	tx.ReceiptID = "RC001"
	rc.TransactionID = "TX001"

	if !tx.IsMatched() || !rc.IsMatched() {
		t.Error("linked records must report matched")
	}
}
