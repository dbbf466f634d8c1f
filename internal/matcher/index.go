package matcher

import (
	"sort"

	"expense-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// CandidateIndex provides indexed candidate pre-filtering over a pool of
// transactions. At realistic scale (tens to low hundreds of unmatched
// candidates per user) a sequential scan would suffice, but the index keeps
// ranking cheap when pools grow and bounds the work per reference record.
type CandidateIndex struct {
	// dateIndex maps YYYY-MM-DD strings to transactions on that day.
	dateIndex map[string][]*models.TransactionRecord

	// amountIndex holds unique absolute amounts in ascending order for
	// range-based lookups.
	amountIndex []*amountIndexEntry

	// all holds every indexed transaction.
	all []*models.TransactionRecord
}

type amountIndexEntry struct {
	amount       decimal.Decimal
	transactions []*models.TransactionRecord
}

// IndexStats describes the shape of a built index.
type IndexStats struct {
	TotalRecords   int `json:"total_records"`
	DistinctDates  int `json:"distinct_dates"`
	DistinctAmount int `json:"distinct_amounts"`
}

// NewCandidateIndex builds an index over the given transaction pool.
func NewCandidateIndex(transactions []*models.TransactionRecord) *CandidateIndex {
	index := &CandidateIndex{
		dateIndex: make(map[string][]*models.TransactionRecord),
		all:       transactions,
	}

	amountMap := make(map[string]*amountIndexEntry)

	for _, tx := range transactions {
		if tx == nil {
			continue
		}

		dateKey := tx.Date.String()
		index.dateIndex[dateKey] = append(index.dateIndex[dateKey], tx)

		amountKey := tx.Amount.Abs().String()
		if entry, exists := amountMap[amountKey]; exists {
			entry.transactions = append(entry.transactions, tx)
		} else {
			amountMap[amountKey] = &amountIndexEntry{
				amount:       tx.Amount.Abs(),
				transactions: []*models.TransactionRecord{tx},
			}
		}
	}

	index.amountIndex = make([]*amountIndexEntry, 0, len(amountMap))
	for _, entry := range amountMap {
		index.amountIndex = append(index.amountIndex, entry)
	}
	sort.Slice(index.amountIndex, func(i, j int) bool {
		return index.amountIndex[i].amount.LessThan(index.amountIndex[j].amount)
	})

	return index
}

// All returns every indexed transaction.
func (ci *CandidateIndex) All() []*models.TransactionRecord {
	return ci.all
}

// Stats returns statistics about the built index.
func (ci *CandidateIndex) Stats() IndexStats {
	return IndexStats{
		TotalRecords:   len(ci.all),
		DistinctDates:  len(ci.dateIndex),
		DistinctAmount: len(ci.amountIndex),
	}
}

// Candidates returns the transactions worth scoring against the receipt
// under the given context: the union of records within the context's date
// window and records whose absolute amount lies within 20% of the receipt
// total (the widest non-zero amount tier). The result is deterministic,
// unmatched-only, and capped at ctx.MaxCandidates.
func (ci *CandidateIndex) Candidates(receipt *models.ReceiptRecord, ctx *MatchContext) []*models.TransactionRecord {
	seen := make(map[string]bool)
	var candidates []*models.TransactionRecord

	add := func(tx *models.TransactionRecord) {
		if tx.IsMatched() || seen[tx.ID] {
			return
		}
		seen[tx.ID] = true
		candidates = append(candidates, tx)
	}

	// Date window around the receipt date.
	for offset := -ctx.DateWindowDays; offset <= ctx.DateWindowDays; offset++ {
		day := models.CalendarDateOf(receipt.Date.Time().AddDate(0, 0, offset))
		for _, tx := range ci.dateIndex[day.String()] {
			add(tx)
		}
	}

	// Amount band: within the widest scoring tier of the receipt total.
	if !receipt.Total.IsZero() {
		reference := receipt.Total.Abs()
		band := reference.Mul(decimal.NewFromFloat(0.20))
		low := reference.Sub(band)
		high := reference.Add(band)

		first := sort.Search(len(ci.amountIndex), func(i int) bool {
			return ci.amountIndex[i].amount.GreaterThanOrEqual(low)
		})
		for i := first; i < len(ci.amountIndex); i++ {
			if ci.amountIndex[i].amount.GreaterThan(high) {
				break
			}
			for _, tx := range ci.amountIndex[i].transactions {
				add(tx)
			}
		}
	}

	// Stable order so ranking input is deterministic regardless of index
	// iteration order.
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].Date.Equal(candidates[j].Date) {
			return candidates[i].Date.Before(candidates[j].Date)
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > ctx.MaxCandidates {
		candidates = candidates[:ctx.MaxCandidates]
	}

	return candidates
}
