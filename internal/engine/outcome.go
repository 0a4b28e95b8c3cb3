package engine

import (
	"payengine/internal/domain"
)

// Status classifies what happened to a record.
type Status uint8

const (
	StatusApplied Status = iota + 1
	StatusRejected
	StatusIgnored
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusRejected:
		return "rejected"
	case StatusIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Reason is the structured cause attached to rejected/ignored outcomes.
// Every one of them is recoverable: the record is discarded and processing
// continues.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonAccountLocked
	ReasonInsufficientFunds
	ReasonUnknownTransaction
	ReasonClientMismatch
	ReasonAlreadyDisputed
	ReasonNotDisputed
	ReasonOverflow
	ReasonFormat
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonAccountLocked:
		return "account_locked"
	case ReasonInsufficientFunds:
		return "insufficient_funds"
	case ReasonUnknownTransaction:
		return "unknown_transaction"
	case ReasonClientMismatch:
		return "client_mismatch"
	case ReasonAlreadyDisputed:
		return "already_disputed"
	case ReasonNotDisputed:
		return "not_disputed"
	case ReasonOverflow:
		return "overflow"
	case ReasonFormat:
		return "format"
	default:
		return "unknown"
	}
}

// Outcome is the per-record result of Process.
type Outcome struct {
	Status Status
	Reason Reason
}

// Applied is the success outcome.
var Applied = Outcome{Status: StatusApplied}

// Rejected builds a rejection outcome with the given reason.
func Rejected(r Reason) Outcome { return Outcome{Status: StatusRejected, Reason: r} }

// Ignored builds an ignored outcome with the given reason.
func Ignored(r Reason) Outcome { return Outcome{Status: StatusIgnored, Reason: r} }

// Sink receives every rejected/ignored event. Implementations must be
// fire-and-forget: never block, never fail the caller.
type Sink interface {
	Record(out Outcome, kind domain.Kind, client domain.ClientID, tx domain.TxID)
}
