package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"txledger/internal/core"
)

// Run identifies one replay so exported snapshots from different runs can be
// told apart.
type Run struct {
	ID          uuid.UUID
	GeneratedAt time.Time
}

func NewRun() Run {
	return Run{ID: uuid.New(), GeneratedAt: time.Now().UTC()}
}

// Sink receives the final account snapshot. Accounts are ordered by
// ascending client id and must be treated as read-only, since sinks may run
// concurrently over the same slice.
type Sink interface {
	Name() string
	Emit(ctx context.Context, run Run, accounts []core.Account) error
}

// Header is the column row shared by every tabular sink.
var Header = []string{"client", "available", "held", "total", "locked"}

// Row renders an account as report columns.
func Row(a core.Account) []string {
	return []string{
		formatClient(a.ID),
		core.FormatAmount(a.Available),
		core.FormatAmount(a.Held),
		core.FormatAmount(a.Total),
		formatLocked(a.Locked),
	}
}
