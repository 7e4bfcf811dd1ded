package channel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

// dial connects a test client to a channel served over httptest.
func dial(t *testing.T, ch *Channel) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(ch)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, env Envelope) Reply {
	t.Helper()
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply Reply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	return reply
}

func TestChannel_DispatchAndCorrelation(t *testing.T) {
	ch := New(nil)
	ch.Register("ECHO", func(ctx context.Context, payload json.RawMessage) (any, error) {
		var in map[string]string
		if err := json.Unmarshal(payload, &in); err != nil {
			return nil, err
		}
		return in, nil
	})

	conn := dial(t, ch)

	reply := roundTrip(t, conn, Envelope{
		Type:      "ECHO",
		Payload:   json.RawMessage(`{"hello":"world"}`),
		RequestID: "req-42",
	})

	if reply.RequestID != "req-42" {
		t.Errorf("RequestID = %q, want req-42", reply.RequestID)
	}
	if !reply.Success {
		t.Fatalf("reply = %+v", reply)
	}
	data, ok := reply.Data.(map[string]any)
	if !ok || data["hello"] != "world" {
		t.Errorf("Data = %+v", reply.Data)
	}
}

func TestChannel_UnknownType(t *testing.T) {
	conn := dial(t, New(nil))

	reply := roundTrip(t, conn, Envelope{Type: "NOPE", RequestID: "r1"})

	if reply.Success {
		t.Error("unknown type reported success")
	}
	if !strings.Contains(reply.Error, "unknown message type") {
		t.Errorf("Error = %q", reply.Error)
	}
	if reply.RequestID != "r1" {
		t.Errorf("RequestID = %q", reply.RequestID)
	}
}

func TestChannel_HandlerError(t *testing.T) {
	ch := New(nil)
	ch.Register("FAIL", func(ctx context.Context, payload json.RawMessage) (any, error) {
		return nil, errors.New("sheet not found")
	})

	conn := dial(t, ch)
	reply := roundTrip(t, conn, Envelope{Type: "FAIL", RequestID: "r2"})

	if reply.Success {
		t.Error("failed handler reported success")
	}
	if reply.Error != "sheet not found" {
		t.Errorf("Error = %q", reply.Error)
	}
}

func TestChannel_SequentialPerConnection(t *testing.T) {
	ch := New(nil)
	var order []string
	ch.Register("MARK", func(ctx context.Context, payload json.RawMessage) (any, error) {
		var in struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(payload, &in)
		order = append(order, in.ID) // no lock needed if dispatch is sequential
		return nil, nil
	})

	conn := dial(t, ch)
	for _, id := range []string{"a", "b", "c"} {
		reply := roundTrip(t, conn, Envelope{
			Type:      "MARK",
			Payload:   json.RawMessage(`{"id":"` + id + `"}`),
			RequestID: id,
		})
		if !reply.Success {
			t.Fatalf("reply for %s = %+v", id, reply)
		}
	}

	if strings.Join(order, "") != "abc" {
		t.Errorf("handled order = %v", order)
	}
}
