package engine

import (
	"context"
	"fmt"
	"log/slog"

	"payengine/internal/domain"
	"payengine/internal/history"
)

// Processor is the single-threaded transaction state machine. It owns the
// accounts map and the history cache exclusively; at most one Process call
// may be in flight at any time. Later records causally depend on earlier
// ones, so no reordering or batching is permitted.
type Processor struct {
	inbox    chan domain.Record
	accounts map[domain.ClientID]*domain.Account
	seen     []domain.ClientID // first-seen order, drives snapshot ordering
	history  *history.Cache
	sink     Sink
}

// NewProcessor creates a processor backed by the given history cache.
// sink may be nil.
func NewProcessor(inboxSize int, hist *history.Cache, sink Sink) *Processor {
	return &Processor{
		inbox:    make(chan domain.Record, inboxSize),
		accounts: make(map[domain.ClientID]*domain.Account),
		history:  hist,
		sink:     sink,
	}
}

// Inbox returns the record channel for feed mode. External sources send
// records here; Run is the only consumer.
func (p *Processor) Inbox() chan<- domain.Record {
	return p.inbox
}

// Run consumes the inbox until the context is cancelled. It MUST be the only
// goroutine calling Process.
func (p *Processor) Run(ctx context.Context) {
	slog.Info("processor started")

	for {
		select {
		case <-ctx.Done():
			slog.Info("processor stopping")
			return
		case rec := <-p.inbox:
			p.Process(rec)
		}
	}
}

// Process applies one record and returns its outcome. A pure, synchronous
// state transition: no suspension, no I/O besides the history fallback.
// Every failure mode comes back as a typed outcome, never a crash.
func (p *Processor) Process(rec domain.Record) Outcome {
	acct := p.account(rec.GetClient())

	// Locked accounts are inert: nothing mutates them again.
	if acct.Locked {
		return p.report(Ignored(ReasonAccountLocked), rec)
	}

	var out Outcome
	switch r := rec.(type) {
	case domain.Deposit:
		out = p.deposit(acct, r)
	case domain.Withdrawal:
		out = p.withdraw(acct, r)
	case domain.Dispute:
		out = p.dispute(acct, r)
	case domain.Resolve:
		out = p.resolve(acct, r)
	case domain.Chargeback:
		out = p.chargeback(acct, r)
	default:
		panic(fmt.Sprintf("unhandled record type %T", rec))
	}

	return p.report(out, rec)
}

// Snapshot returns one row per distinct client ever seen, in first-seen
// order. Only call it after the full input stream has been consumed:
// balances are meaningful once all contributing records are known.
func (p *Processor) Snapshot() []domain.AccountSummary {
	rows := make([]domain.AccountSummary, 0, len(p.seen))
	for _, client := range p.seen {
		acct := p.accounts[client]
		rows = append(rows, domain.AccountSummary{
			Client:    client,
			Available: acct.Available,
			Held:      acct.Held,
			Total:     acct.Total(),
			Locked:    acct.Locked,
		})
	}
	return rows
}

func (p *Processor) deposit(acct *domain.Account, r domain.Deposit) Outcome {
	avail, err := acct.Available.CheckedAdd(r.Amount)
	if err != nil {
		return Rejected(ReasonOverflow)
	}
	// Keep available+held representable so Total never wraps.
	if _, err := avail.CheckedAdd(acct.Held); err != nil {
		return Rejected(ReasonOverflow)
	}

	acct.Available = avail
	// Deposits are not disputable, so none enter history.
	return Applied
}

func (p *Processor) withdraw(acct *domain.Account, r domain.Withdrawal) Outcome {
	avail, err := acct.Available.CheckedSub(r.Amount)
	if err != nil {
		return Rejected(ReasonInsufficientFunds)
	}

	acct.Available = avail
	p.history.Insert(domain.HistoryEntry{
		Tx:     r.Tx,
		Client: r.Client,
		Amount: r.Amount,
		State:  domain.StateNormal,
	})
	return Applied
}

func (p *Processor) dispute(acct *domain.Account, r domain.Dispute) Outcome {
	entry, ok := p.history.Get(r.Tx)
	if !ok {
		return Rejected(ReasonUnknownTransaction)
	}
	if entry.Client != r.Client {
		return Rejected(ReasonClientMismatch)
	}
	if entry.State == domain.StateDisputed {
		return Rejected(ReasonAlreadyDisputed)
	}

	held, err := acct.Held.CheckedAdd(entry.Amount)
	if err != nil {
		return Rejected(ReasonOverflow)
	}
	if _, err := held.CheckedAdd(acct.Available); err != nil {
		return Rejected(ReasonOverflow)
	}

	// Held increases while available stays untouched. This is the chosen
	// semantics, not the usual move-to-held model; see the engine tests
	// before changing it.
	acct.Held = held
	p.history.MarkDisputed(r.Tx)
	return Applied
}

func (p *Processor) resolve(acct *domain.Account, r domain.Resolve) Outcome {
	entry, out := p.settlementEntry(r.Tx, r.Client)
	if out.Status != StatusApplied {
		return out
	}

	held, err := acct.Held.CheckedSub(entry.Amount)
	if err != nil {
		// Only reachable when the dispute was raised in a previous run and
		// recovered through the fallback: this run never held the funds.
		return Rejected(ReasonNotDisputed)
	}

	acct.Held = held
	p.history.Remove(r.Tx)
	return Applied
}

func (p *Processor) chargeback(acct *domain.Account, r domain.Chargeback) Outcome {
	entry, out := p.settlementEntry(r.Tx, r.Client)
	if out.Status != StatusApplied {
		return out
	}

	held, err := acct.Held.CheckedSub(entry.Amount)
	if err != nil {
		return Rejected(ReasonNotDisputed)
	}

	acct.Held = held
	acct.Locked = true
	p.history.Remove(r.Tx)
	return Applied
}

// settlementEntry validates the shared resolve/chargeback lookup rules.
func (p *Processor) settlementEntry(tx domain.TxID, client domain.ClientID) (domain.HistoryEntry, Outcome) {
	entry, ok := p.history.Get(tx)
	if !ok {
		return entry, Rejected(ReasonUnknownTransaction)
	}
	if entry.Client != client {
		return entry, Rejected(ReasonClientMismatch)
	}
	if entry.State != domain.StateDisputed {
		return entry, Rejected(ReasonNotDisputed)
	}
	return entry, Applied
}

// Materialize ensures the account for client exists without applying
// anything. Records rejected before they reach a state transition still
// surface their client in the snapshot.
func (p *Processor) Materialize(client domain.ClientID) {
	p.account(client)
}

// account returns the client's account, creating it on first reference.
func (p *Processor) account(client domain.ClientID) *domain.Account {
	acct, ok := p.accounts[client]
	if !ok {
		acct = &domain.Account{}
		p.accounts[client] = acct
		p.seen = append(p.seen, client)
	}
	return acct
}

func (p *Processor) report(out Outcome, rec domain.Record) Outcome {
	if out.Status != StatusApplied && p.sink != nil {
		p.sink.Record(out, rec.GetKind(), rec.GetClient(), rec.GetTx())
	}
	return out
}
