package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"payengine/internal/engine"
)

// Driver pulls records from a reader one at a time and feeds them to the
// processor, then writes the final snapshot. Strictly ordered; a structural
// input fault aborts before any snapshot is produced.
type Driver struct {
	proc *engine.Processor
	sink engine.Sink
}

// NewDriver creates a driver for the given processor. sink may be nil; it
// receives the amount faults the reader downgrades to rejections.
func NewDriver(proc *engine.Processor, sink engine.Sink) *Driver {
	return &Driver{proc: proc, sink: sink}
}

// Run consumes the whole input, then writes the snapshot to w.
func (d *Driver) Run(r io.Reader, w io.Writer) error {
	reader := NewReader(r)
	var processed, skipped uint64

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var fault *AmountFault
			if errors.As(err, &fault) {
				// Bad amount on a well-formed row: reject and keep going.
				// The client still counts as referenced.
				d.proc.Materialize(fault.Client)
				if d.sink != nil {
					d.sink.Record(engine.Rejected(engine.ReasonFormat), fault.Kind, fault.Client, fault.Tx)
				}
				skipped++
				continue
			}
			return fmt.Errorf("input stream fault: %w", err)
		}

		d.proc.Process(rec)
		processed++
	}

	slog.Info("stream consumed",
		slog.Uint64("processed", processed),
		slog.Uint64("skipped", skipped))

	if err := WriteSnapshot(w, d.proc.Snapshot()); err != nil {
		return fmt.Errorf("snapshot write fault: %w", err)
	}
	return nil
}
