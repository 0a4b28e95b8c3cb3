// Package stream owns the boundary between serialized transaction records
// and the engine: a CSV reader, the snapshot writer, and the driver that
// pulls one record at a time. Ordering and backpressure live here; the
// driver never buffers more than one pending record.
package stream

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"payengine/internal/domain"
	"payengine/pkg/money"
)

// AmountFault reports a structurally valid row whose amount failed to parse.
// The driver downgrades it to a rejected outcome and keeps going; every other
// reader error is fatal to the run.
type AmountFault struct {
	Line   int
	Kind   domain.Kind
	Client domain.ClientID
	Tx     domain.TxID
	Err    error
}

func (f *AmountFault) Error() string {
	return fmt.Sprintf("line %d: %s tx %d: %v", f.Line, f.Kind, f.Tx, f.Err)
}

func (f *AmountFault) Unwrap() error { return f.Err }

// Reader decodes transaction records from CSV input. The expected format is
// a header row followed by `type, client, tx, amount` rows; dispute, resolve
// and chargeback rows may omit the amount column entirely or leave it empty.
// Fields are trimmed of surrounding whitespace.
type Reader struct {
	csv        *csv.Reader
	headerRead bool
}

// NewReader wraps r in a record reader.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // validated per row, amount column is optional
	cr.TrimLeadingSpace = true

	return &Reader{csv: cr}
}

// Read returns the next record, io.EOF at end of input, an *AmountFault for
// a bad amount, or a fatal error for structural faults.
func (r *Reader) Read() (domain.Record, error) {
	if !r.headerRead {
		if _, err := r.csv.Read(); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		r.headerRead = true
	}

	row, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	// Quoted fields may span lines, so take the position from the parser.
	line, _ := r.csv.FieldPos(0)

	if len(row) < 3 || len(row) > 4 {
		return nil, fmt.Errorf("line %d: expected 3 or 4 fields, got %d", line, len(row))
	}

	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	client, err := strconv.ParseUint(row[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid client id %q: %w", line, row[1], err)
	}
	tx, err := strconv.ParseUint(row[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid tx id %q: %w", line, row[2], err)
	}

	base := domain.BaseRecord{
		Tx:     domain.TxID(tx),
		Client: domain.ClientID(client),
	}

	switch row[0] {
	case "deposit":
		amount, err := r.amount(row, base, domain.KindDeposit)
		if err != nil {
			return nil, err
		}
		return domain.Deposit{BaseRecord: base, Amount: amount}, nil
	case "withdrawal":
		amount, err := r.amount(row, base, domain.KindWithdrawal)
		if err != nil {
			return nil, err
		}
		return domain.Withdrawal{BaseRecord: base, Amount: amount}, nil
	case "dispute":
		return domain.Dispute{BaseRecord: base}, nil
	case "resolve":
		return domain.Resolve{BaseRecord: base}, nil
	case "chargeback":
		return domain.Chargeback{BaseRecord: base}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown record type %q", line, row[0])
	}
}

func (r *Reader) amount(row []string, base domain.BaseRecord, kind domain.Kind) (money.Amount, error) {
	raw := ""
	if len(row) == 4 {
		raw = row[3]
	}

	amount, err := money.Parse(raw)
	if err != nil {
		line, _ := r.csv.FieldPos(0)
		return 0, &AmountFault{
			Line:   line,
			Kind:   kind,
			Client: base.Client,
			Tx:     base.Tx,
			Err:    err,
		}
	}
	return amount, nil
}
