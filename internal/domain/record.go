package domain

import (
	"payengine/pkg/money"
)

// ClientID identifies an account holder. Opaque, caller-supplied.
type ClientID uint32

// TxID identifies a transaction. Unique across the whole input stream,
// not per client.
type TxID uint64

// Kind tags the record variants.
type Kind uint8

const (
	KindDeposit Kind = iota + 1
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeback
)

func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindDispute:
		return "dispute"
	case KindResolve:
		return "resolve"
	case KindChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// Record is the interface for all transaction records. The variant set is
// closed: the engine dispatches on the concrete type and treats anything
// else as a programming error.
type Record interface {
	GetTx() TxID
	GetClient() ClientID
	GetKind() Kind
}

// BaseRecord contains the fields common to every record.
type BaseRecord struct {
	Tx     TxID     `json:"tx"`
	Client ClientID `json:"client"`
}

func (r BaseRecord) GetTx() TxID         { return r.Tx }
func (r BaseRecord) GetClient() ClientID { return r.Client }

// Deposit credits a client's available funds.
type Deposit struct {
	BaseRecord
	Amount money.Amount `json:"amount"`
}

func (Deposit) GetKind() Kind { return KindDeposit }

// Withdrawal debits a client's available funds.
type Withdrawal struct {
	BaseRecord
	Amount money.Amount `json:"amount"`
}

func (Withdrawal) GetKind() Kind { return KindWithdrawal }

// Dispute opens a claim against a prior withdrawal. Carries no amount;
// the referenced transaction supplies it.
type Dispute struct {
	BaseRecord
}

func (Dispute) GetKind() Kind { return KindDispute }

// Resolve settles an open dispute in the client's favor.
type Resolve struct {
	BaseRecord
}

func (Resolve) GetKind() Kind { return KindResolve }

// Chargeback settles an open dispute against the client and freezes the account.
type Chargeback struct {
	BaseRecord
}

func (Chargeback) GetKind() Kind { return KindChargeback }
