// Package reconciler drives full reconciliation sessions: categorizing
// incoming transactions, ranking receipts against the manual expense pool
// and the bank transaction pool, maintaining the reciprocal-link ledger, and
// summarizing the outcome.
//
// The two pools are matched in separate passes and never merged. The bank
// pass runs first because an unambiguous bank match triggers an automatic
// reciprocal link; the expense pass then covers receipts the bank feed did
// not explain.
package reconciler

import (
	"context"
	"time"

	"expense-reconciliation-service/internal/categorizer"
	"expense-reconciliation-service/internal/matcher"
	"expense-reconciliation-service/internal/models"
	"expense-reconciliation-service/pkg/errors"
	"expense-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Config holds the session configuration. All of it is passed explicitly;
// nothing reads ambient process state.
type Config struct {
	ExpenseContext *matcher.MatchContext
	BankContext    *matcher.MatchContext
	Catalog        *categorizer.Catalog

	// CategorizeTransactions controls whether uncategorized transactions
	// are labeled during the session.
	CategorizeTransactions bool
}

// DefaultConfig returns a session configuration with the standard contexts
// and the built-in catalog.
func DefaultConfig() *Config {
	return &Config{
		ExpenseContext:         matcher.ExpensePoolContext(),
		BankContext:            matcher.BankTransactionContext(),
		Catalog:                categorizer.DefaultCatalog(),
		CategorizeTransactions: true,
	}
}

// Validate checks the session configuration.
func (c *Config) Validate() error {
	if c.ExpenseContext == nil || c.BankContext == nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig,
			"session requires both match contexts", nil)
	}
	if err := c.ExpenseContext.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "expense context", err)
	}
	if err := c.BankContext.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "bank context", err)
	}
	if c.Catalog != nil {
		if err := c.Catalog.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MatchQuality buckets accepted matches by confidence for reporting.
type MatchQuality string

const (
	QualityExact    MatchQuality = "exact"
	QualityStrong   MatchQuality = "strong"
	QualityModerate MatchQuality = "moderate"
)

func qualityOf(score float64) MatchQuality {
	switch {
	case score >= 0.999:
		return QualityExact
	case score >= 0.9:
		return QualityStrong
	default:
		return QualityModerate
	}
}

// ReceiptOutcome is the per-receipt result of a session: the accepted match
// if one exists, or the ambiguity that blocked auto-acceptance.
type ReceiptOutcome struct {
	Receipt *models.ReceiptRecord `json:"receipt"`

	// Match is the accepted candidate, nil when the receipt stayed
	// unmatched.
	Match *matcher.MatchCandidate `json:"match,omitempty"`

	// ContextName names the pool the match came from.
	ContextName string `json:"context_name,omitempty"`

	Quality MatchQuality `json:"quality,omitempty"`

	// Ambiguity is set when auto-acceptance was blocked because two or
	// more candidates were indistinguishable. The receipt is routed to
	// manual review instead.
	Ambiguity *matcher.AmbiguousMatchWarning `json:"ambiguity,omitempty"`
}

// Matched reports whether the receipt ended the session linked.
func (o *ReceiptOutcome) Matched() bool {
	return o.Match != nil
}

// Summary aggregates the session outcome.
type Summary struct {
	TotalReceipts     int `json:"total_receipts"`
	TotalTransactions int `json:"total_transactions"`
	SkippedRecords    int `json:"skipped_records"`

	MatchedReceipts   int `json:"matched_receipts"`
	UnmatchedReceipts int `json:"unmatched_receipts"`
	AmbiguousReceipts int `json:"ambiguous_receipts"`

	ByContext map[string]int       `json:"by_context"`
	ByQuality map[MatchQuality]int `json:"by_quality"`

	MatchedAmount   decimal.Decimal `json:"matched_amount"`
	UnmatchedAmount decimal.Decimal `json:"unmatched_amount"`

	Categorized int `json:"categorized"`

	ProcessingTime time.Duration `json:"processing_time"`
}

// Result is the full outcome of one reconciliation session.
type Result struct {
	Outcomes []ReceiptOutcome `json:"outcomes"`

	// NeedsReview lists receipts with ambiguous rankings, in input order.
	NeedsReview []ReceiptOutcome `json:"needs_review,omitempty"`

	Summary Summary `json:"summary"`

	// InputErrors collects per-record validation failures. These are
	// recoverable: the offending record is skipped, not the session.
	InputErrors *errors.Summary `json:"input_errors,omitempty"`
}

// Session reconciles receipts against the two transaction pools.
type Session struct {
	config      *Config
	categorizer *categorizer.Categorizer
	ledger      *LinkLedger
	logger      logger.Logger
}

// NewSession creates a session, validating configuration up front so a bad
// catalog or context surfaces before any scoring runs.
func NewSession(config *Config) (*Session, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cat, err := categorizer.New(config.Catalog)
	if err != nil {
		return nil, err
	}

	return &Session{
		config:      config,
		categorizer: cat,
		ledger:      NewLinkLedger(),
		logger:      logger.GetGlobalLogger().WithComponent("reconciliation_session"),
	}, nil
}

// Ledger exposes the session's link ledger.
func (s *Session) Ledger() *LinkLedger {
	return s.ledger
}

// Reconcile runs both matching passes over the given records and returns the
// per-receipt outcomes with a summary. Input records that fail validation
// are skipped and reported, never fatal. The context is checked between
// receipts so long sessions can be cancelled.
func (s *Session) Reconcile(
	ctx context.Context,
	receipts []*models.ReceiptRecord,
	expenses []*models.TransactionRecord,
	bankTransactions []*models.TransactionRecord,
) (*Result, error) {
	start := time.Now()

	validReceipts, validExpenses, validBank, inputErrs := s.validateInputs(receipts, expenses, bankTransactions)

	if s.config.CategorizeTransactions {
		s.categorizePools(validExpenses, validBank)
	}

	expenseIndex := matcher.NewCandidateIndex(validExpenses)
	bankIndex := matcher.NewCandidateIndex(validBank)

	result := &Result{
		Summary: Summary{
			TotalReceipts:     len(validReceipts),
			TotalTransactions: len(validExpenses) + len(validBank),
			SkippedRecords:    len(inputErrs),
			ByContext:         make(map[string]int),
			ByQuality:         make(map[MatchQuality]int),
			MatchedAmount:     decimal.Zero,
			UnmatchedAmount:   decimal.Zero,
		},
	}
	if len(inputErrs) > 0 {
		result.InputErrors = errors.NewSummary(inputErrs)
	}

	for _, receipt := range validReceipts {
		if err := ctx.Err(); err != nil {
			return nil, errors.MatchingError(errors.CodeProcessingError, "reconciliation session", err)
		}

		outcome := s.matchReceipt(receipt, bankIndex, expenseIndex)
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Ambiguity != nil {
			result.NeedsReview = append(result.NeedsReview, outcome)
		}
		s.tally(&result.Summary, outcome)
	}

	if s.config.CategorizeTransactions {
		result.Summary.Categorized = countCategorized(validExpenses) + countCategorized(validBank)
	}
	result.Summary.ProcessingTime = time.Since(start)

	s.logger.WithFields(logger.Fields{
		"receipts":  result.Summary.TotalReceipts,
		"matched":   result.Summary.MatchedReceipts,
		"ambiguous": result.Summary.AmbiguousReceipts,
		"skipped":   result.Summary.SkippedRecords,
	}).Info("Reconciliation session complete")

	return result, nil
}

// matchReceipt ranks the receipt against the bank pool first, then the
// expense pool. Each pool is filtered by its own context and never merged
// with the other. An unambiguous winner is accepted into the ledger and the
// reciprocal references are written onto both records.
func (s *Session) matchReceipt(
	receipt *models.ReceiptRecord,
	bankIndex, expenseIndex *matcher.CandidateIndex,
) ReceiptOutcome {
	outcome := ReceiptOutcome{Receipt: receipt}

	passes := []struct {
		index *matcher.CandidateIndex
		mctx  *matcher.MatchContext
	}{
		{bankIndex, s.config.BankContext},
		{expenseIndex, s.config.ExpenseContext},
	}

	for _, pass := range passes {
		candidates := pass.index.Candidates(receipt, pass.mctx)
		ranked, err := matcher.RankCandidates(receipt, candidates, pass.mctx)
		if err != nil {
			s.logger.WithError(err).WithField("receipt_id", receipt.ID).
				Warn("Ranking failed, skipping pool")
			continue
		}

		if len(ranked.Candidates) == 0 {
			continue
		}

		if ranked.Ambiguity != nil {
			outcome.Ambiguity = ranked.Ambiguity
			outcome.ContextName = pass.mctx.Name
			s.logger.WithFields(logger.Fields{
				"receipt_id": receipt.ID,
				"context":    pass.mctx.Name,
				"contenders": ranked.Ambiguity.CandidateIDs,
			}).Warn("Ambiguous ranking routed to manual review")
			return outcome
		}

		best := ranked.Candidates[0]
		s.accept(receipt, &best, pass.mctx.Name)

		outcome.Match = &best
		outcome.ContextName = pass.mctx.Name
		outcome.Quality = qualityOf(best.Score)
		return outcome
	}

	return outcome
}

// accept records the link in the ledger and writes the reciprocal references
// onto both records, dissolving any prior link either side held.
func (s *Session) accept(receipt *models.ReceiptRecord, match *matcher.MatchCandidate, contextName string) {
	tx := match.Transaction

	s.ledger.Accept(receipt.ID, tx.ID)
	receipt.TransactionID = tx.ID
	tx.ReceiptID = receipt.ID

	s.logger.WithFields(logger.Fields{
		"receipt_id":     receipt.ID,
		"transaction_id": tx.ID,
		"context":        contextName,
		"score":          match.Score,
		"reasons":        match.Reasons,
	}).Debug("Match accepted")
}

func (s *Session) tally(summary *Summary, outcome ReceiptOutcome) {
	switch {
	case outcome.Matched():
		summary.MatchedReceipts++
		summary.ByContext[outcome.ContextName]++
		summary.ByQuality[outcome.Quality]++
		summary.MatchedAmount = summary.MatchedAmount.Add(outcome.Receipt.Total.Abs())
	case outcome.Ambiguity != nil:
		summary.AmbiguousReceipts++
		summary.UnmatchedReceipts++
		summary.UnmatchedAmount = summary.UnmatchedAmount.Add(outcome.Receipt.Total.Abs())
	default:
		summary.UnmatchedReceipts++
		summary.UnmatchedAmount = summary.UnmatchedAmount.Add(outcome.Receipt.Total.Abs())
	}
}

// validateInputs drops nil and invalid records, accumulating one recoverable
// error per skipped record.
func (s *Session) validateInputs(
	receipts []*models.ReceiptRecord,
	expenses []*models.TransactionRecord,
	bankTransactions []*models.TransactionRecord,
) ([]*models.ReceiptRecord, []*models.TransactionRecord, []*models.TransactionRecord, []*errors.Error) {
	var errs []*errors.Error

	validReceipts := make([]*models.ReceiptRecord, 0, len(receipts))
	for _, r := range receipts {
		if r == nil {
			continue
		}
		if err := r.Validate(); err != nil {
			errs = append(errs, errors.InvalidInputError(errors.CodeEmptyField, "receipt", r.ID).
				WithContext("cause", err.Error()))
			continue
		}
		validReceipts = append(validReceipts, r)
	}

	validate := func(pool []*models.TransactionRecord, field string) []*models.TransactionRecord {
		valid := make([]*models.TransactionRecord, 0, len(pool))
		for _, tx := range pool {
			if tx == nil {
				continue
			}
			if err := tx.Validate(); err != nil {
				errs = append(errs, errors.InvalidInputError(errors.CodeEmptyField, field, tx.ID).
					WithContext("cause", err.Error()))
				continue
			}
			valid = append(valid, tx)
		}
		return valid
	}

	validExpenses := validate(expenses, "expense")
	validBank := validate(bankTransactions, "bank_transaction")

	return validReceipts, validExpenses, validBank, errs
}

// categorizePools labels transactions that arrived without a category.
func (s *Session) categorizePools(pools ...[]*models.TransactionRecord) {
	for _, pool := range pools {
		for _, tx := range pool {
			if tx.Category == "" {
				tx.Category = s.categorizer.Categorize(tx)
			}
		}
	}
}

func countCategorized(pool []*models.TransactionRecord) int {
	n := 0
	for _, tx := range pool {
		if tx.Category != "" && tx.Category != models.CategoryUncategorized {
			n++
		}
	}
	return n
}
