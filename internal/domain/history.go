package domain

import (
	"payengine/pkg/money"
)

// EntryState is the dispute state of a retained transaction.
type EntryState uint8

const (
	StateNormal EntryState = iota + 1
	StateDisputed
)

func (s EntryState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateDisputed:
		return "disputed"
	default:
		return "unknown"
	}
}

// HistoryEntry is a retained record of a past disputable transaction.
// Only successful withdrawals are retained; an entry exists exactly as long
// as a future dispute/resolve/chargeback may still reference it.
type HistoryEntry struct {
	Tx     TxID
	Client ClientID
	Amount money.Amount
	State  EntryState
}
