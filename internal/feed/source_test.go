package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"payengine/internal/domain"
)

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		kind domain.Kind
	}{
		{"deposit", `{"type":"deposit","client":1,"tx":2,"amount":"3.1400"}`, domain.KindDeposit},
		{"withdrawal", `{"type":"withdrawal","client":1,"tx":3,"amount":"1.0000"}`, domain.KindWithdrawal},
		{"dispute", `{"type":"dispute","client":1,"tx":3}`, domain.KindDispute},
		{"resolve", `{"type":"resolve","client":1,"tx":3}`, domain.KindResolve},
		{"chargeback", `{"type":"chargeback","client":1,"tx":3}`, domain.KindChargeback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := decodeRecord([]byte(tt.msg))
			if err != nil {
				t.Fatalf("decodeRecord failed: %v", err)
			}
			if rec.GetKind() != tt.kind {
				t.Errorf("kind = %s, want %s", rec.GetKind(), tt.kind)
			}
		})
	}
}

func TestDecodeRecord_Rejects(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"unknown type", `{"type":"transfer","client":1,"tx":2}`},
		{"bad json", `{`},
		{"float amount", `{"type":"deposit","client":1,"tx":2,"amount":3.14}`},
		{"negative amount", `{"type":"deposit","client":1,"tx":2,"amount":"-1.0"}`},
		{"deposit without amount", `{"type":"deposit","client":1,"tx":2}`},
		{"withdrawal without amount", `{"type":"withdrawal","client":1,"tx":2}`},
		{"null amount", `{"type":"deposit","client":1,"tx":2,"amount":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeRecord([]byte(tt.msg)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDecodeRecord_AmountValue(t *testing.T) {
	rec, err := decodeRecord([]byte(`{"type":"deposit","client":1,"tx":2,"amount":"3.14"}`))
	if err != nil {
		t.Fatalf("decodeRecord failed: %v", err)
	}

	dep, ok := rec.(domain.Deposit)
	if !ok {
		t.Fatalf("expected Deposit, got %T", rec)
	}
	if got, want := dep.Amount.String(), "3.1400"; got != want {
		t.Errorf("amount = %s, want %s", got, want)
	}
}

// createMockServer spins up a websocket server running handler per connection.
func createMockServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func httpToWS(url string) string {
	return strings.Replace(url, "http://", "ws://", 1)
}

func TestSource_DeliversRecords(t *testing.T) {
	messages := []string{
		`{"type":"deposit","client":1,"tx":1,"amount":"10.0000"}`,
		`not json`, // dropped, must not kill the stream
		`{"type":"withdrawal","client":1,"tx":2,"amount":"5.0000"}`,
	}

	server := createMockServer(t, func(conn *websocket.Conn) {
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	inbox := make(chan domain.Record, 8)
	source := NewSource(httpToWS(server.URL), inbox)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source.Start(ctx)
	defer source.Stop()

	var got []domain.Record
	timeout := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case rec := <-inbox:
			got = append(got, rec)
		case <-timeout:
			t.Fatalf("timed out with %d records", len(got))
		}
	}

	if got[0].GetKind() != domain.KindDeposit || got[0].GetTx() != 1 {
		t.Errorf("record 0: %s tx %d", got[0].GetKind(), got[0].GetTx())
	}
	if got[1].GetKind() != domain.KindWithdrawal || got[1].GetTx() != 2 {
		t.Errorf("record 1: %s tx %d", got[1].GetKind(), got[1].GetTx())
	}
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		retry int
		want  time.Duration
	}{
		{-1, baseDelay},
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{6, 60 * time.Second}, // capped
		{31, maxDelay},
	}

	for _, tt := range tests {
		if got := calculateBackoff(tt.retry); got != tt.want {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tt.retry, got, tt.want)
		}
	}
}
