package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"txledger/internal/core"
	"txledger/internal/report"
)

// AccountSnapshotMessage carries one account's final state for a run.
// Amounts are encoded as JSON strings to keep decimal precision.
type AccountSnapshotMessage struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Client      uint16          `json:"client"`
	Available   decimal.Decimal `json:"available"`
	Held        decimal.Decimal `json:"held"`
	Total       decimal.Decimal `json:"total"`
	Locked      bool            `json:"locked"`
}

func NewAccountSnapshotMessage(run report.Run, a core.Account) *AccountSnapshotMessage {
	return &AccountSnapshotMessage{
		RunID:       run.ID.String(),
		GeneratedAt: run.GeneratedAt,
		Client:      uint16(a.ID),
		Available:   a.Available,
		Held:        a.Held,
		Total:       a.Total,
		Locked:      a.Locked,
	}
}

// ToJSON converts the message to JSON bytes
func (m *AccountSnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
