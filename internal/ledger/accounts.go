package ledger

import (
	"slices"

	"txledger/internal/core"
)

// AccountStore maps client ids to account state. Accounts are created on
// first deposit and never removed. Not safe for concurrent use.
type AccountStore struct {
	accounts map[core.ClientID]*core.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[core.ClientID]*core.Account)}
}

// Get returns the live account for id. Callers mutate it in place.
func (s *AccountStore) Get(id core.ClientID) (*core.Account, bool) {
	a, ok := s.accounts[id]
	return a, ok
}

// Upsert stores a copy of a, replacing any account with the same id.
func (s *AccountStore) Upsert(a core.Account) *core.Account {
	stored := a
	s.accounts[a.ID] = &stored
	return &stored
}

func (s *AccountStore) Len() int {
	return len(s.accounts)
}

// Snapshot returns copies of all accounts ordered by ascending client id.
func (s *AccountStore) Snapshot() []core.Account {
	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	slices.SortFunc(out, func(a, b core.Account) int {
		return int(a.ID) - int(b.ID)
	})
	return out
}
