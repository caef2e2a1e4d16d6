// Package ledger implements the transaction state machine and the stores it
// owns: accounts, the ledger of disputable amounts and open disputes.
//
// A Processor applies records strictly in input order. It is not safe for
// concurrent use; later records depend on the state produced by earlier ones.
package ledger

import (
	"github.com/shopspring/decimal"

	"txledger/internal/core"
)

// Policy holds the optional hardening rules. With the zero value locked
// accounts keep transacting and reused tx ids overwrite the recorded amount.
type Policy struct {
	// EnforceLock rejects every record that targets a locked account.
	EnforceLock bool
	// RejectDuplicateTx rejects deposits and withdrawals whose tx id is
	// already recorded.
	RejectDuplicateTx bool
}

type Processor struct {
	accounts *AccountStore
	txs      *TxLedger
	disputes *DisputeTracker
	policy   Policy
}

// NewProcessor creates a processor with empty stores.
func NewProcessor(policy Policy) *Processor {
	return &Processor{
		accounts: NewAccountStore(),
		txs:      NewTxLedger(),
		disputes: NewDisputeTracker(),
		policy:   policy,
	}
}

func (p *Processor) Accounts() *AccountStore { return p.accounts }

func (p *Processor) Ledger() *TxLedger { return p.txs }

func (p *Processor) Disputes() *DisputeTracker { return p.disputes }

// Apply runs a single record through the state machine. A rejected record
// leaves every store unchanged.
func (p *Processor) Apply(r core.Record) core.Outcome {
	if !r.Type.IsValid() {
		return core.RejectedUnknownType
	}

	switch r.Type {
	case core.Deposit:
		return p.deposit(r)
	case core.Withdrawal:
		return p.withdraw(r)
	case core.Dispute:
		return p.dispute(r)
	case core.Resolve:
		return p.resolve(r)
	default:
		return p.chargeback(r)
	}
}

func (p *Processor) deposit(r core.Record) core.Outcome {
	acct, ok := p.accounts.Get(r.Client)
	if ok && p.policy.EnforceLock && acct.Locked {
		return core.RejectedAccountLocked
	}
	if p.policy.RejectDuplicateTx && p.txs.Has(r.Tx) {
		return core.RejectedDuplicateTx
	}

	if !ok {
		p.accounts.Upsert(core.NewAccount(r.Client, r.Amount))
	} else {
		acct.Available = acct.Available.Add(r.Amount)
		acct.Total = acct.Total.Add(r.Amount)
	}
	p.txs.Record(r.Tx, r.Amount)
	return core.Applied
}

func (p *Processor) withdraw(r core.Record) core.Outcome {
	acct, outcome := p.target(r.Client)
	if outcome != core.Applied {
		return outcome
	}
	if p.policy.RejectDuplicateTx && p.txs.Has(r.Tx) {
		return core.RejectedDuplicateTx
	}
	if r.Amount.GreaterThan(acct.Available) {
		return core.RejectedInsufficientFunds
	}

	acct.Available = acct.Available.Sub(r.Amount)
	acct.Total = acct.Total.Sub(r.Amount)
	p.txs.Record(r.Tx, r.Amount)
	return core.Applied
}

// dispute holds the recorded amount without checking current availability,
// so available may go negative.
func (p *Processor) dispute(r core.Record) core.Outcome {
	acct, outcome := p.target(r.Client)
	if outcome != core.Applied {
		return outcome
	}
	amount, ok := p.txs.Lookup(r.Tx)
	if !ok {
		return core.RejectedUnknownTx
	}
	if !p.disputes.Open(r.Tx, r.Client, amount) {
		return core.RejectedAlreadyDisputed
	}

	acct.Available = acct.Available.Sub(amount)
	acct.Held = acct.Held.Add(amount)
	return core.Applied
}

func (p *Processor) resolve(r core.Record) core.Outcome {
	acct, amount, outcome := p.settle(r)
	if outcome != core.Applied {
		return outcome
	}

	acct.Available = acct.Available.Add(amount)
	acct.Held = acct.Held.Sub(amount)
	return core.Applied
}

func (p *Processor) chargeback(r core.Record) core.Outcome {
	acct, amount, outcome := p.settle(r)
	if outcome != core.Applied {
		return outcome
	}

	acct.Held = acct.Held.Sub(amount)
	acct.Total = acct.Total.Sub(amount)
	acct.Locked = true
	return core.Applied
}

// settle closes the dispute referenced by r for resolve and chargeback. Only
// the client that opened the dispute can settle it.
func (p *Processor) settle(r core.Record) (*core.Account, decimal.Decimal, core.Outcome) {
	acct, outcome := p.target(r.Client)
	if outcome != core.Applied {
		return nil, decimal.Zero, outcome
	}
	amount, ok := p.disputes.Close(r.Tx, r.Client)
	if !ok {
		return nil, decimal.Zero, core.RejectedNotDisputed
	}
	return acct, amount, core.Applied
}

// target returns the existing account for client, applying the lock policy.
func (p *Processor) target(client core.ClientID) (*core.Account, core.Outcome) {
	acct, ok := p.accounts.Get(client)
	if !ok {
		return nil, core.RejectedUnknownClient
	}
	if p.policy.EnforceLock && acct.Locked {
		return nil, core.RejectedAccountLocked
	}
	return acct, core.Applied
}
