// Package categorizer maps transactions to spending categories by weighted
// keyword scoring against a configurable catalog.
//
// Categorization is pure and deterministic: the same transaction and catalog
// always yield the same label, and no call mutates the catalog or the
// transaction. Score ties between categories are resolved by catalog
// declaration order. This mirrors long-standing behavior and is kept for
// reproducibility, but declaration order is not a deliberate priority rule;
// catalogs that rely on it should be restructured instead.
package categorizer

import (
	"strings"

	"expense-reconciliation-service/internal/models"
)

// Rule weights. A merchant-type hint hit outweighs any single keyword hit
// because provider annotations are curated, not free text.
const (
	weightHighKeyword   = 3
	weightMediumKeyword = 2
	weightLowKeyword    = 1
	weightMerchantType  = 4
	weightAmountRange   = 1
)

// Categorizer scores transactions against a validated catalog.
type Categorizer struct {
	catalog *Catalog
}

// New creates a Categorizer over the given catalog. The catalog is validated
// here so that a malformed one fails before any categorization runs.
func New(catalog *Catalog) (*Categorizer, error) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &Categorizer{catalog: catalog}, nil
}

// Categorize returns the best-scoring category label for the transaction,
// or Uncategorized when no rule scores at all.
func (c *Categorizer) Categorize(tx *models.TransactionRecord) models.CategoryLabel {
	label, _ := c.CategorizeWithScore(tx)
	return label
}

// CategorizeWithScore returns the winning label together with its rule
// score, for diagnostics and reporting.
func (c *Categorizer) CategorizeWithScore(tx *models.TransactionRecord) (models.CategoryLabel, int) {
	if tx == nil {
		return models.CategoryUncategorized, 0
	}

	text := strings.ToLower(tx.Description + " " + tx.Merchant.Normalized)
	hint := strings.ToLower(tx.MerchantCategoryHint)
	amount, _ := tx.Amount.Abs().Float64()

	best := models.CategoryUncategorized
	bestScore := 0

	// Strictly-greater comparison preserves declaration-order tie-breaking.
	for _, cat := range c.catalog.Categories {
		score := scoreCategory(cat, text, hint, amount)
		if score > bestScore {
			best = models.CategoryLabel(cat.Name)
			bestScore = score
		}
	}

	return best, bestScore
}

func scoreCategory(cat Category, text, hint string, amount float64) int {
	score := 0

	score += weightHighKeyword * countHits(text, cat.HighKeywords)
	score += weightMediumKeyword * countHits(text, cat.MediumKeywords)
	score += weightLowKeyword * countHits(text, cat.LowKeywords)

	if hint != "" {
		for _, token := range cat.MerchantTypes {
			if strings.Contains(hint, strings.ToLower(token)) {
				score += weightMerchantType
				break
			}
		}
	}

	if cat.AmountRange != nil && cat.AmountRange.Contains(amount) {
		score += weightAmountRange
	}

	return score
}

// countHits counts how many keywords appear as substrings of the combined
// description and merchant text. Each keyword counts once regardless of how
// often it repeats.
func countHits(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			hits++
		}
	}
	return hits
}
