package ledger

import (
	"github.com/shopspring/decimal"

	"txledger/internal/core"
)

// TxLedger remembers the amount originally applied by each deposit and
// withdrawal so later disputes can hold, release or reverse it.
type TxLedger struct {
	amounts map[core.TxID]decimal.Decimal
}

func NewTxLedger() *TxLedger {
	return &TxLedger{amounts: make(map[core.TxID]decimal.Decimal)}
}

// Record stores amount under tx. A reused tx id overwrites the earlier amount.
func (l *TxLedger) Record(tx core.TxID, amount decimal.Decimal) {
	l.amounts[tx] = amount
}

func (l *TxLedger) Lookup(tx core.TxID) (decimal.Decimal, bool) {
	amount, ok := l.amounts[tx]
	return amount, ok
}

func (l *TxLedger) Has(tx core.TxID) bool {
	_, ok := l.amounts[tx]
	return ok
}

func (l *TxLedger) Len() int {
	return len(l.amounts)
}
