package matcher

import (
	"sort"

	"expense-reconciliation-service/internal/models"
	"expense-reconciliation-service/internal/scoring"
	"expense-reconciliation-service/pkg/errors"

	"github.com/shopspring/decimal"
)

// MatchCandidate is the immutable result of scoring one transaction against
// a reference receipt. Candidates are plain values so pools can be scored
// concurrently without shared state.
type MatchCandidate struct {
	Transaction *models.TransactionRecord

	// Score is the composite confidence in [0,1].
	Score float64

	// Reasons are ordered human-readable tags derived strictly from the
	// scorer tiers that were hit.
	Reasons []string

	// Per-dimension results, kept for reporting and diagnostics.
	DateScore     scoring.DateScore
	AmountScore   scoring.AmountScore
	MerchantScore scoring.MerchantScore

	// AmountDifference is the absolute magnitude difference, used as the
	// secondary tie-breaker.
	AmountDifference decimal.Decimal
}

// AmbiguousMatchWarning is surfaced as metadata when two or more surviving
// candidates score within epsilon of the winner. It is not fatal; the caller
// routes the decision to manual review instead of auto-accepting.
type AmbiguousMatchWarning struct {
	Epsilon      float64  `json:"epsilon"`
	TopScore     float64  `json:"top_score"`
	CandidateIDs []string `json:"candidate_ids"`
}

// RankedMatches is the ordered outcome of ranking one candidate pool.
type RankedMatches struct {
	Candidates []MatchCandidate
	Ambiguity  *AmbiguousMatchWarning
}

// ScoreCandidate computes the composite score and reason tags for a single
// receipt/transaction pair under the given context. Pure and side-effect
// free; a recoverable input problem on either record scores the affected
// dimension 0 rather than returning an error.
func ScoreCandidate(receipt *models.ReceiptRecord, tx *models.TransactionRecord, ctx *MatchContext) MatchCandidate {
	dateScore := scoring.DateProximity(receipt.Date, tx.Date, ctx.Strictness)
	amountScore := scoring.AmountProximity(tx.Amount.Abs(), receipt.Total.Abs(), ctx.Strictness)
	merchantScore := scoring.MerchantSimilarity(receipt.Merchant, tx.Merchant)

	composite := dateScore.Value*ctx.Weights.Date +
		amountScore.Value*ctx.Weights.Amount +
		merchantScore.Value*ctx.Weights.Merchant

	candidate := MatchCandidate{
		Transaction:      tx,
		Score:            composite,
		DateScore:        dateScore,
		AmountScore:      amountScore,
		MerchantScore:    merchantScore,
		AmountDifference: tx.Amount.Abs().Sub(receipt.Total.Abs()).Abs(),
	}
	candidate.Reasons = buildReasons(candidate, ctx)

	return candidate
}

// buildReasons assembles the ordered reason tags from the tier hits.
// Dimensions with zero weight in the context contribute no reasons: the
// expense-pool context omits merchant entirely.
func buildReasons(c MatchCandidate, ctx *MatchContext) []string {
	reasons := []string{}

	if ctx.Weights.Amount > 0 {
		if r := c.AmountScore.Reason(); r != "" {
			reasons = append(reasons, r)
		}
	}
	if ctx.Weights.Date > 0 {
		if r := c.DateScore.Reason(); r != "" {
			reasons = append(reasons, r)
		}
	}
	if ctx.Weights.Merchant > 0 {
		if r := c.MerchantScore.Reason(); r != "" {
			reasons = append(reasons, r)
		}
	}

	return reasons
}

// RankCandidates scores every still-unmatched candidate against the
// reference receipt, drops those below the context threshold, and sorts the
// survivors into a deterministic total order: descending composite score,
// ties broken first by earliest transaction date, then by smallest absolute
// amount difference, then by record ID.
//
// When the runner-up scores within the context's ambiguity epsilon of the
// winner, the result carries an AmbiguousMatchWarning so the caller can
// route to manual review.
func RankCandidates(receipt *models.ReceiptRecord, candidates []*models.TransactionRecord, ctx *MatchContext) (*RankedMatches, error) {
	if receipt == nil {
		return nil, errors.MatchingError(errors.CodeProcessingError, "rank_candidates", nil).
			WithContext("reason", "nil reference receipt")
	}
	if err := ctx.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "match_context", err)
	}

	var survivors []MatchCandidate
	for _, tx := range candidates {
		if tx == nil || tx.IsMatched() {
			continue
		}

		candidate := ScoreCandidate(receipt, tx, ctx)
		if candidate.Score >= ctx.MinConfidenceScore {
			survivors = append(survivors, candidate)
		}
	}

	sort.Slice(survivors, func(i, j int) bool {
		return lessCandidate(survivors[i], survivors[j])
	})

	ranked := &RankedMatches{Candidates: survivors}
	ranked.Ambiguity = detectAmbiguity(survivors, ctx.AmbiguityEpsilon)

	return ranked, nil
}

// lessCandidate implements the strict total order over ranked candidates.
func lessCandidate(a, b MatchCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Transaction.Date.Equal(b.Transaction.Date) {
		return a.Transaction.Date.Before(b.Transaction.Date)
	}
	if !a.AmountDifference.Equal(b.AmountDifference) {
		return a.AmountDifference.LessThan(b.AmountDifference)
	}
	return a.Transaction.ID < b.Transaction.ID
}

// detectAmbiguity flags rankings where the winner is not clearly separated
// from the runner-up.
func detectAmbiguity(ranked []MatchCandidate, epsilon float64) *AmbiguousMatchWarning {
	if len(ranked) < 2 {
		return nil
	}

	top := ranked[0].Score
	var contenders []string
	for _, c := range ranked {
		if top-c.Score <= epsilon {
			contenders = append(contenders, c.Transaction.ID)
		}
	}

	if len(contenders) < 2 {
		return nil
	}

	return &AmbiguousMatchWarning{
		Epsilon:      epsilon,
		TopScore:     top,
		CandidateIDs: contenders,
	}
}

// FindBestMatch returns the top-ranked candidate for the receipt, or false
// when no candidate survives filtering. Candidate pools from different
// contexts are never merged; each pool is ranked independently.
func FindBestMatch(receipt *models.ReceiptRecord, candidates []*models.TransactionRecord, ctx *MatchContext) (MatchCandidate, bool, error) {
	ranked, err := RankCandidates(receipt, candidates, ctx)
	if err != nil {
		return MatchCandidate{}, false, err
	}

	if len(ranked.Candidates) == 0 {
		return MatchCandidate{}, false, nil
	}

	return ranked.Candidates[0], true, nil
}
