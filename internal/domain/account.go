package domain

import (
	"payengine/pkg/money"
)

// Account holds one client's balances. Created lazily on first reference,
// never destroyed during a run.
//
// Invariant: Available+Held stays representable; the engine checks the sum
// before every mutation, so Total never wraps.
type Account struct {
	Available money.Amount
	Held      money.Amount
	Locked    bool
}

// Total returns available + held. Derived, not stored.
func (a *Account) Total() money.Amount {
	return a.Available + a.Held
}

// AccountSummary is one snapshot row.
type AccountSummary struct {
	Client    ClientID
	Available money.Amount
	Held      money.Amount
	Total     money.Amount
	Locked    bool
}
