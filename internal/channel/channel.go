// Package channel implements the bidirectional message channel the UI
// talks to: JSON envelopes {type, payload, requestId} over a websocket,
// dispatched to handlers keyed by message type. Messages on one
// connection are handled in arrival order, mirroring the cooperative
// single-threaded model of the extension runtime; concurrency comes
// from multiple connections.
package channel

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types the engine handles.
const (
	TypeValidateSheet   = "VALIDATE_SHEET"
	TypeReadEventData   = "READ_EVENT_DATA"
	TypeUpdateEventData = "UPDATE_EVENT_DATA"
	TypeAppendLog       = "APPEND_LOG"
	TypeShareContacts   = "SHARE_CONTACTS"
	TypeGetLogs         = "GET_LOGS"
)

// slowHandlerThreshold marks handlers worth a WARN: a facade call that
// needed retries can legitimately run for several seconds.
const slowHandlerThreshold = 2 * time.Second

// Envelope is one request from the UI side of the channel.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"requestId"`
}

// Reply is the response to one envelope. Error carries a short
// human-readable string; kind detail never crosses the channel.
type Reply struct {
	RequestID string `json:"requestId"`
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandlerFunc processes one payload and returns the reply data.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// Channel routes envelopes to registered handlers.
type Channel struct {
	handlers map[string]HandlerFunc
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// New creates an empty channel. If logger is nil, slog.Default() is
// used.
func New(logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		handlers: make(map[string]HandlerFunc),
		upgrader: websocket.Upgrader{
			// The channel binds to loopback; the browser extension is
			// the only expected peer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Register installs a handler for one message type. Registering twice
// for the same type replaces the handler.
func (c *Channel) Register(msgType string, fn HandlerFunc) {
	c.handlers[msgType] = fn
}

// ServeHTTP upgrades the connection and serves envelopes until the
// peer disconnects.
func (c *Channel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connID := uuid.New().String()
	logger := c.logger.With("conn", connID)
	logger.Info("channel connected", "remote", r.RemoteAddr)

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("channel read failed", "error", err)
			} else {
				logger.Info("channel disconnected")
			}
			return
		}

		reply := c.dispatch(r.Context(), logger, env)
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("channel write failed", "error", err)
			return
		}
	}
}

// dispatch runs the handler for one envelope and wraps the outcome.
func (c *Channel) dispatch(ctx context.Context, logger *slog.Logger, env Envelope) Reply {
	reply := Reply{RequestID: env.RequestID}

	fn, ok := c.handlers[env.Type]
	if !ok {
		logger.Warn("unknown message type", "type", env.Type)
		reply.Error = "unknown message type: " + env.Type
		return reply
	}

	start := time.Now()
	data, err := fn(ctx, env.Payload)
	duration := time.Since(start)

	attrs := []any{"type", env.Type, "request", env.RequestID, "duration_ms", duration.Milliseconds()}
	if err != nil {
		logger.Error("message failed", append(attrs, "error", err)...)
		reply.Error = err.Error()
		return reply
	}

	if duration > slowHandlerThreshold {
		logger.Warn("slow message", attrs...)
	} else {
		logger.Debug("message handled", attrs...)
	}
	reply.Success = true
	reply.Data = data
	return reply
}
