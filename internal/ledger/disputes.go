package ledger

import (
	"github.com/shopspring/decimal"

	"txledger/internal/core"
)

type openDispute struct {
	client core.ClientID
	amount decimal.Decimal
}

// DisputeTracker is the set of transactions with an open dispute. Each entry
// keeps the disputing client and the amount that was moved to held, so a
// resolve or chargeback releases exactly what was held, from the account it
// was held on, even if the ledger entry is overwritten in the meantime.
type DisputeTracker struct {
	open map[core.TxID]openDispute
}

func NewDisputeTracker() *DisputeTracker {
	return &DisputeTracker{open: make(map[core.TxID]openDispute)}
}

// Open marks tx as disputed by client for amount. It returns false if tx was
// already open.
func (d *DisputeTracker) Open(tx core.TxID, client core.ClientID, amount decimal.Decimal) bool {
	if _, ok := d.open[tx]; ok {
		return false
	}
	d.open[tx] = openDispute{client: client, amount: amount}
	return true
}

// Close ends the dispute client opened on tx and returns the held amount. It
// returns false, leaving the tracker unchanged, if tx is not open or was
// opened by another client.
func (d *DisputeTracker) Close(tx core.TxID, client core.ClientID) (decimal.Decimal, bool) {
	entry, ok := d.open[tx]
	if !ok || entry.client != client {
		return decimal.Zero, false
	}
	delete(d.open, tx)
	return entry.amount, true
}

func (d *DisputeTracker) Len() int {
	return len(d.open)
}
