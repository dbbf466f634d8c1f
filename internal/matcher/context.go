// Package matcher combines the three similarity scorers into composite
// scores, ranks candidate transactions for a receipt, and selects the best
// match.
//
// The two near-duplicate matching paths of earlier iterations (generic vs
// bank-strict) are unified behind one ranking function parameterized by a
// MatchContext, so thresholds and weights cannot drift apart by accident.
// All configuration is passed explicitly into every call; ranking never
// depends on ambient mutable state.
//
// Example usage:
//
//	ctx := matcher.BankTransactionContext()
//	ranked, err := matcher.RankCandidates(receipt, transactions, ctx)
//	best, ok, err := matcher.FindBestMatch(receipt, transactions, ctx)
package matcher

import (
	"fmt"

	"expense-reconciliation-service/internal/scoring"
)

// Weights defines the relative importance of the three scoring dimensions
// in the composite score. Weights must sum to approximately 1.0.
type Weights struct {
	Date     float64 `json:"date_weight"`
	Amount   float64 `json:"amount_weight"`
	Merchant float64 `json:"merchant_weight"`
}

// Validate checks if the weights are valid.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"date": w.Date, "amount": w.Amount, "merchant": w.Merchant,
	} {
		if v < 0.0 || v > 1.0 {
			return fmt.Errorf("%s weight must be between 0.0 and 1.0: %f", name, v)
		}
	}

	total := w.Date + w.Amount + w.Merchant
	if total < 0.99 || total > 1.01 {
		return fmt.Errorf("weights should sum to 1.0, got %f", total)
	}

	return nil
}

// MatchContext holds the configuration for one matching pool. The two pools
// are ranked and filtered independently and never merged, since their
// confidence thresholds differ.
type MatchContext struct {
	// Name identifies the context in logs and reports.
	Name string `json:"name"`

	// Strictness selects the scorer tier tables.
	Strictness scoring.Strictness `json:"strictness"`

	// Weights for the composite score.
	Weights Weights `json:"weights"`

	// MinConfidenceScore is the composite threshold below which candidates
	// are dropped.
	MinConfidenceScore float64 `json:"min_confidence_score"`

	// AmbiguityEpsilon: when two or more surviving candidates score within
	// this margin of the winner, the ranking is flagged for manual review
	// instead of silently auto-accepting an arbitrary winner.
	AmbiguityEpsilon float64 `json:"ambiguity_epsilon"`

	// DateWindowDays bounds candidate pre-filtering; candidates further
	// away can never score above zero on the date dimension.
	DateWindowDays int `json:"date_window_days"`

	// MaxCandidates limits the number of pre-filtered candidates ranked
	// per reference record.
	MaxCandidates int `json:"max_candidates"`
}

// ExpensePoolContext returns the configuration for matching receipts against
// manually entered expenses. Date and amount are equally weighted and the
// merchant dimension is omitted: many manual expenses lack merchant text.
func ExpensePoolContext() *MatchContext {
	return &MatchContext{
		Name:               "expense-pool",
		Strictness:         scoring.Lenient,
		Weights:            Weights{Date: 0.5, Amount: 0.5, Merchant: 0},
		MinConfidenceScore: 0.7,
		AmbiguityEpsilon:   0.01,
		DateWindowDays:     7,
		MaxCandidates:      50,
	}
}

// BankTransactionContext returns the configuration for matching receipts
// against bank-reported transactions: composite = (date + amount +
// 2*merchant) / 4 with a 0.8 threshold. Stricter because a match in this
// context can trigger an automatic reciprocal link.
func BankTransactionContext() *MatchContext {
	return &MatchContext{
		Name:               "bank-transaction",
		Strictness:         scoring.Strict,
		Weights:            Weights{Date: 0.25, Amount: 0.25, Merchant: 0.5},
		MinConfidenceScore: 0.8,
		AmbiguityEpsilon:   0.01,
		DateWindowDays:     3,
		MaxCandidates:      50,
	}
}

// Validate checks if the match context is valid.
func (mc *MatchContext) Validate() error {
	if mc.Name == "" {
		return fmt.Errorf("context name cannot be empty")
	}

	if mc.MinConfidenceScore < 0.0 || mc.MinConfidenceScore > 1.0 {
		return fmt.Errorf("minimum confidence score must be between 0.0 and 1.0: %f", mc.MinConfidenceScore)
	}

	if mc.AmbiguityEpsilon < 0.0 || mc.AmbiguityEpsilon > 1.0 {
		return fmt.Errorf("ambiguity epsilon must be between 0.0 and 1.0: %f", mc.AmbiguityEpsilon)
	}

	if mc.DateWindowDays < 0 {
		return fmt.Errorf("date window days cannot be negative: %d", mc.DateWindowDays)
	}

	if mc.MaxCandidates <= 0 {
		return fmt.Errorf("max candidates must be positive: %d", mc.MaxCandidates)
	}

	return mc.Weights.Validate()
}

// Clone creates a copy of the match context.
func (mc *MatchContext) Clone() *MatchContext {
	if mc == nil {
		return nil
	}
	clone := *mc
	return &clone
}

// String returns a human-readable description of the context.
func (mc *MatchContext) String() string {
	return fmt.Sprintf("MatchContext{Name: %s, Strictness: %s, MinConfidence: %.2f, Weights: {date: %.2f, amount: %.2f, merchant: %.2f}}",
		mc.Name, mc.Strictness, mc.MinConfidenceScore,
		mc.Weights.Date, mc.Weights.Amount, mc.Weights.Merchant)
}
