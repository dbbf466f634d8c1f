package reconciler

import "sync"

// LinkLedger is the in-memory record of reciprocal links between receipts
// and transactions. It enforces the 1:1 invariant: accepting a link clears
// any prior link held by either side before the new pair is recorded.
//
// The ledger guards its maps with a mutex so concurrent sessions over
// disjoint record sets can share one ledger. Persisting accepted links is
// the caller's responsibility.
type LinkLedger struct {
	mu          sync.RWMutex
	receiptToTx map[string]string
	txToReceipt map[string]string
}

// NewLinkLedger creates an empty ledger.
func NewLinkLedger() *LinkLedger {
	return &LinkLedger{
		receiptToTx: make(map[string]string),
		txToReceipt: make(map[string]string),
	}
}

// Accept records a reciprocal link between a receipt and a transaction.
// Existing links on either side are dissolved first so no record ever holds
// two links.
func (l *LinkLedger) Accept(receiptID, txID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prior, ok := l.receiptToTx[receiptID]; ok {
		delete(l.txToReceipt, prior)
	}
	if prior, ok := l.txToReceipt[txID]; ok {
		delete(l.receiptToTx, prior)
	}

	l.receiptToTx[receiptID] = txID
	l.txToReceipt[txID] = receiptID
}

// Unlink dissolves the link held by the given receipt, if any.
func (l *LinkLedger) Unlink(receiptID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if txID, ok := l.receiptToTx[receiptID]; ok {
		delete(l.txToReceipt, txID)
		delete(l.receiptToTx, receiptID)
	}
}

// TransactionFor returns the transaction linked to the receipt.
func (l *LinkLedger) TransactionFor(receiptID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	txID, ok := l.receiptToTx[receiptID]
	return txID, ok
}

// ReceiptFor returns the receipt linked to the transaction.
func (l *LinkLedger) ReceiptFor(txID string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	receiptID, ok := l.txToReceipt[txID]
	return receiptID, ok
}

// Len returns the number of accepted links.
func (l *LinkLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.receiptToTx)
}

// Links returns a copy of the receipt-to-transaction link map.
func (l *LinkLedger) Links() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	links := make(map[string]string, len(l.receiptToTx))
	for r, t := range l.receiptToTx {
		links[r] = t
	}
	return links
}
