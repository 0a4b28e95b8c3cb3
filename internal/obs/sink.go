// Package obs implements the observability sinks consumed by the engine:
// every rejected/ignored record is reported with its structured reason code.
// Sinks are fire-and-forget and never fail processing.
package obs

import (
	"log/slog"

	"payengine/internal/domain"
	"payengine/internal/engine"
)

// SlogSink logs every event through a structured logger.
type SlogSink struct {
	log *slog.Logger
}

// NewSlogSink wraps logger; nil falls back to the default logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{log: logger}
}

func (s *SlogSink) Record(out engine.Outcome, kind domain.Kind, client domain.ClientID, tx domain.TxID) {
	s.log.Warn("record not applied",
		slog.String("status", out.Status.String()),
		slog.String("reason", out.Reason.String()),
		slog.String("kind", kind.String()),
		slog.Uint64("client", uint64(client)),
		slog.Uint64("tx", uint64(tx)))
}

// MultiSink fans one event out to several sinks.
type MultiSink []engine.Sink

func (m MultiSink) Record(out engine.Outcome, kind domain.Kind, client domain.ClientID, tx domain.TxID) {
	for _, s := range m {
		s.Record(out, kind, client, tx)
	}
}
