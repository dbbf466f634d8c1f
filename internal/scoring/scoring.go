// Package scoring implements the three similarity scorers used to decide
// whether two financial records describe the same real-world purchase:
// date proximity, amount proximity, and merchant-name similarity.
//
// Each scorer is a pure function returning a score in [0,1] together with
// the discrete tier that produced it. Discrete tiers, not continuous decay,
// keep results explainable and stable against small clock skew between OCR
// and bank posting timestamps. Reason tags are derived strictly from the
// tier hit, never recomputed, so explanations cannot disagree with the
// numeric result.
package scoring

import (
	"fmt"
	"strings"

	"expense-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// Strictness selects between the two tier tables. The strict variant applies
// in the bank-transaction context, which can trigger an automatic reciprocal
// link and therefore tolerates less drift.
type Strictness int

const (
	// Lenient uses the expense-pool tier table.
	Lenient Strictness = iota
	// Strict uses the bank-transaction tier table: date tiers capped at
	// three days, reduced mid-range amount scores.
	Strict
)

// String returns the string representation of Strictness.
func (s Strictness) String() string {
	if s == Strict {
		return "strict"
	}
	return "lenient"
}

// DateTier identifies the discrete date-proximity bucket that was hit.
type DateTier int

const (
	DateExact DateTier = iota
	DateWithin1Day
	DateWithin2Days
	DateWithin3Days
	DateWithinWeek
	DateNone
)

// DateScore is the result of a date-proximity comparison.
type DateScore struct {
	Value     float64
	Tier      DateTier
	DaysApart int
}

// Reason returns the human-readable tag for the tier hit, or "" when the
// dimension did not contribute.
func (s DateScore) Reason() string {
	switch s.Tier {
	case DateExact:
		return "Same date"
	case DateWithin1Day:
		return "Within 1 day"
	case DateWithin2Days:
		return "Within 2 days"
	case DateWithin3Days:
		return "Within 3 days"
	case DateWithinWeek:
		return "Within a week"
	default:
		return ""
	}
}

// DateProximity scores two calendar dates by their day difference.
//
// Tiers: same day 1.0, 1 day 0.9, 2 days 0.8, 3 days 0.7, within a week 0.5,
// otherwise 0. Under Strict the non-zero range is capped at three days.
func DateProximity(a, b models.CalendarDate, strictness Strictness) DateScore {
	if a.IsZero() || b.IsZero() {
		return DateScore{Tier: DateNone}
	}

	days := a.DaysApart(b)
	score := DateScore{DaysApart: days}

	switch {
	case days == 0:
		score.Value, score.Tier = 1.0, DateExact
	case days == 1:
		score.Value, score.Tier = 0.9, DateWithin1Day
	case days == 2:
		score.Value, score.Tier = 0.8, DateWithin2Days
	case days == 3:
		score.Value, score.Tier = 0.7, DateWithin3Days
	case days <= 7 && strictness == Lenient:
		score.Value, score.Tier = 0.5, DateWithinWeek
	default:
		score.Tier = DateNone
	}

	return score
}

// AmountTier identifies the discrete amount-proximity bucket that was hit.
type AmountTier int

const (
	AmountExact AmountTier = iota
	AmountWithin1Pct
	AmountWithin5Pct
	AmountWithin10Pct
	AmountWithin20Pct
	AmountNone
)

// AmountScore is the result of an amount-proximity comparison.
type AmountScore struct {
	Value float64
	Tier  AmountTier
	// PctDiff is |a-b| / reference as a fraction (0.05 means 5%).
	PctDiff decimal.Decimal
}

// Reason returns the human-readable tag for the tier hit.
func (s AmountScore) Reason() string {
	switch s.Tier {
	case AmountExact:
		return "Exact amount match"
	case AmountWithin1Pct:
		return "Amount within 1%"
	case AmountWithin5Pct:
		return "Amount within 5%"
	case AmountWithin10Pct:
		return "Amount within 10%"
	case AmountWithin20Pct:
		return "Amount within 20%"
	default:
		return ""
	}
}

// AmountProximity scores two absolute magnitudes, with reference designating
// the record being matched against. Percentage difference is computed
// relative to the reference; a zero reference fails closed (score 0) rather
// than dividing by zero.
//
// Tiers: exact 1.0, within 1% 0.9, within 5% 0.8 (0.7 strict), within 10%
// 0.7 (0.5 strict), within 20% 0.5, otherwise 0.
func AmountProximity(amount, reference decimal.Decimal, strictness Strictness) AmountScore {
	amount = amount.Abs()
	reference = reference.Abs()

	if reference.IsZero() {
		return AmountScore{Tier: AmountNone}
	}

	diff := amount.Sub(reference).Abs()
	pct := diff.Div(reference)
	score := AmountScore{PctDiff: pct}

	switch {
	case diff.IsZero():
		score.Value, score.Tier = 1.0, AmountExact
	case pct.LessThanOrEqual(decimal.NewFromFloat(0.01)):
		score.Value, score.Tier = 0.9, AmountWithin1Pct
	case pct.LessThanOrEqual(decimal.NewFromFloat(0.05)):
		score.Value, score.Tier = 0.8, AmountWithin5Pct
		if strictness == Strict {
			score.Value = 0.7
		}
	case pct.LessThanOrEqual(decimal.NewFromFloat(0.10)):
		score.Value, score.Tier = 0.7, AmountWithin10Pct
		if strictness == Strict {
			score.Value = 0.5
		}
	case pct.LessThanOrEqual(decimal.NewFromFloat(0.20)):
		score.Value, score.Tier = 0.5, AmountWithin20Pct
	default:
		score.Tier = AmountNone
	}

	return score
}

// MerchantTier identifies the discrete merchant-similarity bucket hit.
type MerchantTier int

const (
	MerchantExact MerchantTier = iota
	MerchantContains
	MerchantSimilar
	MerchantNone
)

// MerchantScore is the result of a merchant-name comparison.
type MerchantScore struct {
	Value float64
	Tier  MerchantTier
	// Distance is the raw Levenshtein edit count over the full normalized
	// strings; -1 when the comparison short-circuited before computing it.
	Distance int
}

// Reason returns the human-readable tag for the tier hit.
func (s MerchantScore) Reason() string {
	switch s.Tier {
	case MerchantExact:
		return "Exact merchant match"
	case MerchantContains:
		return "Merchant name contained"
	case MerchantSimilar:
		return "Merchant name similar"
	default:
		return ""
	}
}

// MerchantSimilarity scores two merchant names over their normalized forms.
// The comparison is symmetric.
//
// Either side empty scores 0: with no merchant text there is nothing to
// assert a match on. Exact normalized equality scores 1.0, substring
// containment in either direction 0.9. Otherwise the full dynamic-programming
// Levenshtein distance decides: an edit count of at most 2 scores 0.8. As a
// last resort the leading tokens are compared under the same rules, which
// rates storefront variants like "starbucks coffee" vs "starbucks #1234" as
// similar even though their full-string edit distance is large.
func MerchantSimilarity(a, b models.MerchantName) MerchantScore {
	na, nb := a.Normalized, b.Normalized

	if na == "" || nb == "" {
		return MerchantScore{Tier: MerchantNone, Distance: -1}
	}

	if na == nb {
		return MerchantScore{Value: 1.0, Tier: MerchantExact, Distance: 0}
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return MerchantScore{Value: 0.9, Tier: MerchantContains, Distance: -1}
	}

	distance := levenshtein(na, nb)
	if distance <= 2 {
		return MerchantScore{Value: 0.8, Tier: MerchantSimilar, Distance: distance}
	}

	if primaryTokensSimilar(na, nb) {
		return MerchantScore{Value: 0.8, Tier: MerchantSimilar, Distance: distance}
	}

	return MerchantScore{Value: 0, Tier: MerchantNone, Distance: distance}
}

// primaryTokensSimilar compares the leading whitespace-delimited tokens of
// two normalized merchant strings. Bank feeds commonly append store numbers
// or location suffixes after the brand token.
func primaryTokensSimilar(a, b string) bool {
	ta := strings.Fields(a)[0]
	tb := strings.Fields(b)[0]

	// Too short to carry brand identity on its own.
	if len(ta) < 3 || len(tb) < 3 {
		return false
	}

	if ta == tb {
		return true
	}
	return levenshtein(ta, tb) <= 2
}

// String helpers for diagnostics.

func (t DateTier) String() string {
	switch t {
	case DateExact:
		return "exact"
	case DateWithin1Day:
		return "within_1_day"
	case DateWithin2Days:
		return "within_2_days"
	case DateWithin3Days:
		return "within_3_days"
	case DateWithinWeek:
		return "within_week"
	default:
		return "none"
	}
}

func (t AmountTier) String() string {
	switch t {
	case AmountExact:
		return "exact"
	case AmountWithin1Pct:
		return "within_1_pct"
	case AmountWithin5Pct:
		return "within_5_pct"
	case AmountWithin10Pct:
		return "within_10_pct"
	case AmountWithin20Pct:
		return "within_20_pct"
	default:
		return "none"
	}
}

func (t MerchantTier) String() string {
	switch t {
	case MerchantExact:
		return "exact"
	case MerchantContains:
		return "contains"
	case MerchantSimilar:
		return "similar"
	default:
		return "none"
	}
}

// FormatPercent renders a [0,1] score in percentage form. This is the only
// place scores leave fractional form; everything internal stays in [0,1].
func FormatPercent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}
