package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// defaultRingCapacity bounds the in-memory log buffer when no size is
// configured. Past the bound, the oldest entries are dropped.
const defaultRingCapacity = 200

// RingEntry is one captured log record, flattened for display.
type RingEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   string
}

func (e RingEntry) String() string {
	if e.Attrs == "" {
		return fmt.Sprintf("%s %s %s", e.Time.Format(time.RFC3339), e.Level, e.Message)
	}
	return fmt.Sprintf("%s %s %s %s", e.Time.Format(time.RFC3339), e.Level, e.Message, e.Attrs)
}

// ringState is the buffer shared by a handler and its WithAttrs clones.
type ringState struct {
	mu      sync.Mutex
	cap     int
	entries []RingEntry
	start   int
	count   int
}

func (s *ringState) push(entry RingEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count < s.cap {
		s.entries[(s.start+s.count)%s.cap] = entry
		s.count++
		return
	}
	// Full: overwrite the oldest slot.
	s.entries[s.start] = entry
	s.start = (s.start + 1) % s.cap
}

// RingHandler is a slog.Handler keeping the N most recent records in
// memory. It replaces the unbounded static log buffer of earlier
// designs with an injectable, bounded one.
type RingHandler struct {
	state *ringState
	level slog.Level
	attrs []slog.Attr
}

var _ slog.Handler = (*RingHandler)(nil)

// NewRingHandler creates a ring holding at most capacity records.
// capacity <= 0 selects the default.
func NewRingHandler(capacity int, level slog.Level) *RingHandler {
	if capacity <= 0 {
		capacity = defaultRingCapacity
	}
	return &RingHandler{
		state: &ringState{
			cap:     capacity,
			entries: make([]RingEntry, capacity),
		},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *RingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *RingHandler) Handle(ctx context.Context, record slog.Record) error {
	var b strings.Builder
	for _, a := range h.attrs {
		appendAttr(&b, a)
	}
	record.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, a)
		return true
	})

	h.state.push(RingEntry{
		Time:    record.Time,
		Level:   record.Level,
		Message: record.Message,
		Attrs:   strings.TrimSpace(b.String()),
	})
	return nil
}

// WithAttrs implements slog.Handler. The returned handler shares the
// ring buffer with the receiver.
func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RingHandler{
		state: h.state,
		level: h.level,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler. Groups are flattened; the buffer
// exists for quick inspection, not structured querying.
func (h *RingHandler) WithGroup(name string) slog.Handler {
	return h
}

// Entries returns the buffered records, oldest first.
func (h *RingHandler) Entries() []RingEntry {
	s := h.state
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RingEntry, s.count)
	for i := 0; i < s.count; i++ {
		out[i] = s.entries[(s.start+i)%s.cap]
	}
	return out
}

// Len returns the number of buffered records.
func (h *RingHandler) Len() int {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return h.state.count
}

func appendAttr(b *strings.Builder, a slog.Attr) {
	fmt.Fprintf(b, "%s=%v ", a.Key, a.Value)
}
