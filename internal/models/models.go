// Package models defines the canonical entities of the reconciliation core:
// transaction and receipt records, money amounts, day-granular dates, and
// merchant names. Adapters translate external API and storage shapes into
// these types before calling into the engine.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when a source supplies no currency code.
const DefaultCurrency = "USD"

// SourceTag identifies the origin of a transaction record.
type SourceTag string

const (
	// SourceBank marks transactions reported by a bank feed.
	SourceBank SourceTag = "bank"
	// SourceManual marks manually entered expenses.
	SourceManual SourceTag = "manual"
)

// String returns the string representation of SourceTag.
func (s SourceTag) String() string {
	return string(s)
}

// IsValid checks if the source tag is a known value.
func (s SourceTag) IsValid() bool {
	return s == SourceBank || s == SourceManual
}

// ParseSourceTag parses and validates a source tag from string.
func ParseSourceTag(s string) (SourceTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bank":
		return SourceBank, nil
	case "manual", "expense":
		return SourceManual, nil
	default:
		return "", fmt.Errorf("invalid source tag '%s': must be bank or manual", s)
	}
}

// CategoryLabel is a spending category drawn from a configurable catalog.
type CategoryLabel string

// CategoryUncategorized is the fallback when no catalog rule scores.
const CategoryUncategorized CategoryLabel = "Uncategorized"

// String returns the string representation of CategoryLabel.
func (c CategoryLabel) String() string {
	return string(c)
}

// MoneyAmount is a monetary value with a currency code. Matching always
// compares absolute magnitude regardless of the stored sign, since bank
// feeds report debits negative while receipts carry positive totals.
type MoneyAmount struct {
	Magnitude decimal.Decimal `json:"magnitude"`
	Currency  string          `json:"currency"`
}

// NewMoneyAmount creates a MoneyAmount, defaulting the currency when absent.
func NewMoneyAmount(magnitude decimal.Decimal, currency string) MoneyAmount {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return MoneyAmount{Magnitude: magnitude, Currency: currency}
}

// Abs returns the absolute magnitude used for matching.
func (m MoneyAmount) Abs() decimal.Decimal {
	return m.Magnitude.Abs()
}

// IsZero reports whether the magnitude is zero.
func (m MoneyAmount) IsZero() bool {
	return m.Magnitude.IsZero()
}

// Equal compares two amounts by magnitude and currency.
func (m MoneyAmount) Equal(other MoneyAmount) bool {
	return m.Currency == other.Currency && m.Magnitude.Equal(other.Magnitude)
}

// String returns a human-readable representation.
func (m MoneyAmount) String() string {
	return fmt.Sprintf("%s %s", m.Magnitude.StringFixed(2), m.Currency)
}

// MarshalJSON renders the magnitude as a string to avoid float drift.
func (m MoneyAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Magnitude string `json:"magnitude"`
		Currency  string `json:"currency"`
	}{
		Magnitude: m.Magnitude.String(),
		Currency:  m.Currency,
	})
}

// UnmarshalJSON parses the string-form magnitude.
func (m *MoneyAmount) UnmarshalJSON(data []byte) error {
	aux := &struct {
		Magnitude string `json:"magnitude"`
		Currency  string `json:"currency"`
	}{}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	magnitude, err := decimal.NewFromString(aux.Magnitude)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	*m = NewMoneyAmount(magnitude, aux.Currency)
	return nil
}

// ParseMoney parses a monetary amount from a string, stripping common
// currency symbols and thousand separators.
func ParseMoney(s, currency string) (MoneyAmount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MoneyAmount{}, fmt.Errorf("amount string cannot be empty")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return MoneyAmount{}, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return NewMoneyAmount(d, currency), nil
}

// CalendarDate is a date truncated to day granularity. Comparison is
// timezone-naive: timestamps are truncated in their own wall-clock frame
// before the source timezone is discarded.
type CalendarDate struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// NewCalendarDate creates a CalendarDate from its components.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Year: year, Month: month, Day: day}
}

// CalendarDateOf truncates a timestamp to its wall-clock day.
func CalendarDateOf(t time.Time) CalendarDate {
	year, month, day := t.Date()
	return CalendarDate{Year: year, Month: month, Day: day}
}

// Time returns the date as midnight UTC, the canonical instant used for
// day arithmetic.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date is unset.
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Equal compares two calendar dates.
func (d CalendarDate) Equal(other CalendarDate) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// Before reports whether d falls before other.
func (d CalendarDate) Before(other CalendarDate) bool {
	return d.Time().Before(other.Time())
}

// DaysApart returns the absolute number of days between two dates.
func (d CalendarDate) DaysApart(other CalendarDate) int {
	diff := d.Time().Sub(other.Time())
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}

// String formats the date as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return d.Time().Format("2006-01-02")
}

// MarshalJSON renders the date in YYYY-MM-DD form.
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses the YYYY-MM-DD form.
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseCalendarDate attempts to parse a date from string using the formats
// commonly seen in bank exports and OCR output.
func ParseCalendarDate(s string) (CalendarDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalendarDate{}, fmt.Errorf("date string cannot be empty")
	}

	formats := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"01/02/2006",
		"2006/01/02",
		"Jan 2, 2006",
		"January 2, 2006",
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return CalendarDateOf(t), nil
		} else {
			lastErr = err
		}
	}

	return CalendarDate{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// MerchantName holds a merchant string in both its raw and normalized forms.
// The normalized form (trimmed, lowercased, whitespace-collapsed) is what
// scorers compare; the raw form is preserved for display.
type MerchantName struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// IsEmpty reports whether no merchant text is present. Manual expenses
// frequently lack merchant text, so an empty name is valid data.
func (m MerchantName) IsEmpty() bool {
	return m.Normalized == ""
}

// String returns the raw merchant text.
func (m MerchantName) String() string {
	return m.Raw
}

// TransactionRecord is a transaction reported by a bank feed or entered
// manually. Records are created by ingestion collaborators; this core only
// scores and ranks them.
type TransactionRecord struct {
	ID          string        `json:"id"`
	Date        CalendarDate  `json:"date"`
	Amount      MoneyAmount   `json:"amount"`
	Merchant    MerchantName  `json:"merchant"`
	Description string        `json:"description"`
	Source      SourceTag     `json:"source"`
	Category    CategoryLabel `json:"category,omitempty"`

	// MerchantCategoryHint is the provider's merchant-type annotation
	// (e.g. "ride_share"), used by the categorizer when present.
	MerchantCategoryHint string `json:"merchant_category_hint,omitempty"`

	// ReceiptID is the reciprocal reference to a matched receipt.
	ReceiptID string `json:"receipt_id,omitempty"`
}

// Validate performs basic validation on the TransactionRecord.
func (t *TransactionRecord) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}

	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	if !t.Source.IsValid() {
		return fmt.Errorf("invalid source tag: %s", t.Source)
	}

	return nil
}

// IsMatched reports whether the transaction carries a reciprocal link.
func (t *TransactionRecord) IsMatched() bool {
	return t.ReceiptID != ""
}

// String returns a string representation of the TransactionRecord.
func (t *TransactionRecord) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Date: %s, Amount: %s, Merchant: %q, Source: %s}",
		t.ID, t.Date, t.Amount, t.Merchant.Raw, t.Source)
}

// LineItem is a single purchased item on a receipt.
type LineItem struct {
	Description string      `json:"description"`
	Amount      MoneyAmount `json:"amount"`
}

// ReceiptRecord is a scanned or uploaded receipt. OCR noise in the merchant
// name and total is expected; the scorers absorb it.
type ReceiptRecord struct {
	ID       string       `json:"id"`
	Date     CalendarDate `json:"date"`
	Total    MoneyAmount  `json:"total"`
	Merchant MerchantName `json:"merchant"`
	Items    []LineItem   `json:"items,omitempty"`
	Tax      *MoneyAmount `json:"tax,omitempty"`

	// TransactionID is the reciprocal reference to a matched transaction.
	TransactionID string `json:"transaction_id,omitempty"`
}

// Validate performs basic validation on the ReceiptRecord.
func (r *ReceiptRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("receipt ID cannot be empty")
	}

	if r.Date.IsZero() {
		return fmt.Errorf("receipt date cannot be zero")
	}

	return nil
}

// IsMatched reports whether the receipt carries a reciprocal link.
func (r *ReceiptRecord) IsMatched() bool {
	return r.TransactionID != ""
}

// String returns a string representation of the ReceiptRecord.
func (r *ReceiptRecord) String() string {
	return fmt.Sprintf("Receipt{ID: %s, Date: %s, Total: %s, Merchant: %q}",
		r.ID, r.Date, r.Total, r.Merchant.Raw)
}
