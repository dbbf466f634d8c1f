// Package normalize canonicalizes raw money, date, and merchant-string
// values before they reach the scorers. All functions are pure.
//
// Malformed input yields a recoverable input error; callers treat the
// affected record as unmatchable (scoring 0) instead of aborting the
// surrounding operation.
package normalize

import (
	"strings"
	"time"

	"expense-reconciliation-service/internal/models"
	"expense-reconciliation-service/pkg/errors"
)

// Merchant canonicalizes a raw merchant string: trimmed, lowercased, and
// internal whitespace collapsed to single spaces. Semantic content is never
// altered, and the operation is idempotent. An empty result is valid data
// (manual expenses often lack merchant text).
func Merchant(raw string) models.MerchantName {
	return models.MerchantName{
		Raw:        raw,
		Normalized: strings.Join(strings.Fields(strings.ToLower(raw)), " "),
	}
}

// Amount canonicalizes a monetary value to its absolute magnitude, defaulting
// the currency to the source currency, or to models.DefaultCurrency when the
// source supplies none.
func Amount(m models.MoneyAmount, sourceCurrency string) models.MoneyAmount {
	currency := m.Currency
	if currency == "" {
		currency = sourceCurrency
	}
	return models.NewMoneyAmount(m.Magnitude.Abs(), currency)
}

// ParseAmount parses and canonicalizes a monetary value from its string form.
func ParseAmount(raw, currency string) (models.MoneyAmount, error) {
	m, err := models.ParseMoney(raw, currency)
	if err != nil {
		return models.MoneyAmount{}, errors.InvalidInputError(errors.CodeInvalidAmount, "amount", raw)
	}
	return Amount(m, currency), nil
}

// Date truncates a timestamp to day granularity. Truncation is
// timezone-naive: the wall-clock day of the source timestamp is kept and the
// zone discarded, so a same-day purchase recorded in different zones can land
// on adjacent days. The coarse date tiers in the scorers absorb that skew.
func Date(t time.Time) (models.CalendarDate, error) {
	if t.IsZero() {
		return models.CalendarDate{}, errors.InvalidInputError(errors.CodeInvalidDate, "date", t)
	}
	return models.CalendarDateOf(t), nil
}

// ParseDate parses and truncates a date from its string form.
func ParseDate(raw string) (models.CalendarDate, error) {
	d, err := models.ParseCalendarDate(raw)
	if err != nil {
		return models.CalendarDate{}, errors.InvalidInputError(errors.CodeInvalidDate, "date", raw)
	}
	return d, nil
}
