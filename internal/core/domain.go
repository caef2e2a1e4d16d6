package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	Deposit    TxType = "deposit"
	Withdrawal TxType = "withdrawal"
	Dispute    TxType = "dispute"
	Resolve    TxType = "resolve"
	Chargeback TxType = "chargeback"
)

type (
	// TxType is the raw, case-sensitive transaction type read from input.
	// Values outside the five known types are kept so the processor can
	// reject them explicitly.
	TxType string

	ClientID uint16
	TxID     uint32

	Account struct {
		ID        ClientID
		Available decimal.Decimal
		Held      decimal.Decimal
		Total     decimal.Decimal
		Locked    bool
	}

	// Record is a single input row.
	Record struct {
		Type   TxType
		Client ClientID
		Tx     TxID
		Amount decimal.Decimal
		Line   int // 1-based input line, 0 when unknown
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidClientID = errors.New("invalid client id")
	ErrInvalidTxID     = errors.New("invalid transaction id")
)

// IsValid reports whether t is one of the known transaction types.
func (t TxType) IsValid() bool {
	switch t {
	case Deposit, Withdrawal, Dispute, Resolve, Chargeback:
		return true
	default:
		return false
	}
}

// NewAccount opens an account funded by its first deposit.
func NewAccount(id ClientID, amount decimal.Decimal) Account {
	return Account{
		ID:        id,
		Available: amount,
		Held:      decimal.Zero,
		Total:     amount,
	}
}

// Balanced reports whether total equals available plus held.
func (a Account) Balanced() bool {
	return a.Total.Equal(a.Available.Add(a.Held))
}
