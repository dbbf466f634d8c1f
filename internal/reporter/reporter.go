// Package reporter renders reconciliation session results as console text,
// JSON, or CSV. Scores stay in [0,1] everywhere inside the engine; this
// package is the presentation boundary where they become percentages.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"expense-reconciliation-service/internal/reconciler"
	"expense-reconciliation-service/internal/scoring"
	"expense-reconciliation-service/pkg/errors"
)

// OutputFormat selects the report rendering.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	}
	return false
}

// ReportConfig controls report content and rendering.
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeUnmatched lists receipts that found no counterpart.
	IncludeUnmatched bool `json:"include_unmatched"`

	// IncludeReview lists ambiguous receipts routed to manual review.
	IncludeReview bool `json:"include_review"`

	// MaxReasons caps reason tags shown per match in console output.
	MaxReasons int `json:"max_reasons"`
}

// DefaultReportConfig returns the standard configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatConsole,
		IncludeUnmatched: true,
		IncludeReview:    true,
		MaxReasons:       5,
	}
}

// Validate checks the configuration.
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "report format", nil).
			WithContext("format", string(c.Format))
	}
	if c.MaxReasons < 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "max reasons", nil)
	}
	return nil
}

// ReportGenerator renders session results in the configured format.
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a generator with the given configuration.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the session result to the writer.
func (rg *ReportGenerator) GenerateReport(result *reconciler.Result, writer io.Writer) error {
	if result == nil {
		return errors.InternalError("report generation", fmt.Errorf("nil result"))
	}

	switch rg.config.Format {
	case FormatJSON:
		return rg.generateJSON(result, writer)
	case FormatCSV:
		return rg.generateCSV(result, writer)
	default:
		return rg.generateConsole(result, writer)
	}
}

func (rg *ReportGenerator) generateConsole(result *reconciler.Result, writer io.Writer) error {
	s := result.Summary

	fmt.Fprintln(writer, "Reconciliation Report")
	fmt.Fprintln(writer, strings.Repeat("=", 60))
	fmt.Fprintf(writer, "Receipts:          %d\n", s.TotalReceipts)
	fmt.Fprintf(writer, "Transactions:      %d\n", s.TotalTransactions)
	fmt.Fprintf(writer, "Matched:           %d (%s)\n", s.MatchedReceipts, rate(s.MatchedReceipts, s.TotalReceipts))
	fmt.Fprintf(writer, "Unmatched:         %d\n", s.UnmatchedReceipts)
	fmt.Fprintf(writer, "Needs review:      %d\n", s.AmbiguousReceipts)
	if s.SkippedRecords > 0 {
		fmt.Fprintf(writer, "Skipped records:   %d\n", s.SkippedRecords)
	}
	fmt.Fprintf(writer, "Matched amount:    %s\n", s.MatchedAmount.StringFixed(2))
	fmt.Fprintf(writer, "Unmatched amount:  %s\n", s.UnmatchedAmount.StringFixed(2))

	if len(s.ByQuality) > 0 {
		fmt.Fprintln(writer)
		fmt.Fprintln(writer, "Match quality:")
		for _, q := range []reconciler.MatchQuality{reconciler.QualityExact, reconciler.QualityStrong, reconciler.QualityModerate} {
			if n := s.ByQuality[q]; n > 0 {
				fmt.Fprintf(writer, "  %-10s %d\n", q, n)
			}
		}
	}

	fmt.Fprintln(writer)
	fmt.Fprintln(writer, "Matches:")
	for _, outcome := range result.Outcomes {
		if !outcome.Matched() {
			continue
		}
		m := outcome.Match
		fmt.Fprintf(writer, "  %s -> %s  score %s  [%s]  %s\n",
			outcome.Receipt.ID,
			m.Transaction.ID,
			scoring.FormatPercent(m.Score),
			outcome.ContextName,
			strings.Join(truncate(m.Reasons, rg.config.MaxReasons), "; "))
	}

	if rg.config.IncludeReview && len(result.NeedsReview) > 0 {
		fmt.Fprintln(writer)
		fmt.Fprintln(writer, "Needs manual review:")
		for _, outcome := range result.NeedsReview {
			fmt.Fprintf(writer, "  %s  top score %s  contenders %s\n",
				outcome.Receipt.ID,
				scoring.FormatPercent(outcome.Ambiguity.TopScore),
				strings.Join(outcome.Ambiguity.CandidateIDs, ", "))
		}
	}

	if rg.config.IncludeUnmatched {
		var unmatched []string
		for _, outcome := range result.Outcomes {
			if !outcome.Matched() && outcome.Ambiguity == nil {
				unmatched = append(unmatched, outcome.Receipt.ID)
			}
		}
		if len(unmatched) > 0 {
			fmt.Fprintln(writer)
			fmt.Fprintf(writer, "Unmatched receipts: %s\n", strings.Join(unmatched, ", "))
		}
	}

	return nil
}

func (rg *ReportGenerator) generateJSON(result *reconciler.Result, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return errors.InternalError("json report", err)
	}
	return nil
}

func (rg *ReportGenerator) generateCSV(result *reconciler.Result, writer io.Writer) error {
	w := csv.NewWriter(writer)

	header := []string{"receipt_id", "transaction_id", "status", "context", "score", "quality", "reasons"}
	if err := w.Write(header); err != nil {
		return errors.InternalError("csv report", err)
	}

	for _, outcome := range result.Outcomes {
		row := []string{outcome.Receipt.ID, "", "unmatched", "", "", "", ""}

		switch {
		case outcome.Matched():
			m := outcome.Match
			row[1] = m.Transaction.ID
			row[2] = "matched"
			row[3] = outcome.ContextName
			row[4] = scoring.FormatPercent(m.Score)
			row[5] = string(outcome.Quality)
			row[6] = strings.Join(m.Reasons, "; ")
		case outcome.Ambiguity != nil:
			row[2] = "needs_review"
			row[3] = outcome.ContextName
			row[4] = scoring.FormatPercent(outcome.Ambiguity.TopScore)
			row[6] = strings.Join(outcome.Ambiguity.CandidateIDs, "; ")
		}

		if err := w.Write(row); err != nil {
			return errors.InternalError("csv report", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.InternalError("csv report", err)
	}
	return nil
}

func truncate(reasons []string, max int) []string {
	if max > 0 && len(reasons) > max {
		return reasons[:max]
	}
	return reasons
}

func rate(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return scoring.FormatPercent(float64(part) / float64(total))
}
