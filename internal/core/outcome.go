package core

// Outcome is the result of applying a single record. Every value other than
// Applied is a rejection that left account state untouched.
type Outcome int

const (
	Applied Outcome = iota
	RejectedUnknownClient
	RejectedInsufficientFunds
	RejectedUnknownTx
	RejectedNotDisputed
	RejectedAlreadyDisputed
	RejectedUnknownType
	RejectedAccountLocked
	RejectedDuplicateTx
)

var outcomeNames = [...]string{
	Applied:                   "applied",
	RejectedUnknownClient:     "rejected_unknown_client",
	RejectedInsufficientFunds: "rejected_insufficient_funds",
	RejectedUnknownTx:         "rejected_unknown_tx",
	RejectedNotDisputed:       "rejected_not_disputed",
	RejectedAlreadyDisputed:   "rejected_already_disputed",
	RejectedUnknownType:       "rejected_unknown_type",
	RejectedAccountLocked:     "rejected_account_locked",
	RejectedDuplicateTx:       "rejected_duplicate_tx",
}

// String implements fmt.Stringer
func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

func (o Outcome) Rejected() bool {
	return o != Applied
}

// Outcomes returns every outcome in declaration order.
func Outcomes() []Outcome {
	out := make([]Outcome, len(outcomeNames))
	for i := range outcomeNames {
		out[i] = Outcome(i)
	}
	return out
}
