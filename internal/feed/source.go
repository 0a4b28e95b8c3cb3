// Package feed provides the live transaction source: a websocket client that
// decodes JSON records and hands them to the engine inbox one at a time. The
// engine stays single-consumer; this package only owns the connection
// lifecycle.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"payengine/internal/domain"
	"payengine/pkg/money"
)

// Source manages the lifecycle of a websocket transaction feed.
// It handles reconnection with backoff and read timeouts.
type Source struct {
	url   string
	inbox chan<- domain.Record

	mu     sync.RWMutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ReadTimeout time.Duration
}

// NewSource creates a feed source delivering records into inbox.
func NewSource(url string, inbox chan<- domain.Record) *Source {
	return &Source{
		url:         url,
		inbox:       inbox,
		ReadTimeout: 60 * time.Second,
	}
}

// Start initiates the connection loop.
func (s *Source) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Stop terminates the source.
func (s *Source) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.close()
	s.wg.Wait()
}

func (s *Source) runLoop(ctx context.Context) {
	defer s.wg.Done()
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.connect(ctx); err != nil {
			slog.Warn("feed connection failed", slog.String("url", s.url), slog.Any("error", err), slog.Int("retry", retry))
			delay := calculateBackoff(retry)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0 // Reset on successful connect
		s.process(ctx)
	}
}

func (s *Source) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	slog.Info("feed connected", slog.String("url", s.url))
	return nil
}

func (s *Source) process(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.close()
			return
		default:
		}

		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return
		}

		if s.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				slog.Warn("feed read failed", slog.Any("error", err))
			}
			s.close()
			return
		}

		rec, err := decodeRecord(msg)
		if err != nil {
			slog.Warn("feed record dropped", slog.Any("error", err))
			continue
		}

		select {
		case <-ctx.Done():
			s.close()
			return
		case s.inbox <- rec:
		}
	}
}

func (s *Source) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// wireRecord is the JSON shape of one feed message. Amount is a pointer so
// an absent key is distinguishable from an explicit "0.0000".
type wireRecord struct {
	Type   string          `json:"type"`
	Client domain.ClientID `json:"client"`
	Tx     domain.TxID     `json:"tx"`
	Amount *money.Amount   `json:"amount"`
}

func decodeRecord(msg []byte) (domain.Record, error) {
	var w wireRecord
	if err := json.Unmarshal(msg, &w); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	base := domain.BaseRecord{Tx: w.Tx, Client: w.Client}

	switch w.Type {
	case "deposit":
		if w.Amount == nil {
			return nil, fmt.Errorf("deposit tx %d: missing amount", w.Tx)
		}
		return domain.Deposit{BaseRecord: base, Amount: *w.Amount}, nil
	case "withdrawal":
		if w.Amount == nil {
			return nil, fmt.Errorf("withdrawal tx %d: missing amount", w.Tx)
		}
		return domain.Withdrawal{BaseRecord: base, Amount: *w.Amount}, nil
	case "dispute":
		return domain.Dispute{BaseRecord: base}, nil
	case "resolve":
		return domain.Resolve{BaseRecord: base}, nil
	case "chargeback":
		return domain.Chargeback{BaseRecord: base}, nil
	default:
		return nil, fmt.Errorf("unknown record type %q", w.Type)
	}
}
