package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Record is one captured log entry with its attributes flattened into a
// map for assertion.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler is a slog.Handler that keeps records in memory so tests
// can assert on structured log output. Handlers derived through
// Logger.With share the same buffer, so assertions on the original
// handler see records logged through derived loggers too.
type CaptureHandler struct {
	mu   *sync.Mutex
	recs *[]Record
	base []slog.Attr
}

// NewLogger returns a logger whose output lands in the returned handler.
func NewLogger() (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{mu: &sync.Mutex{}, recs: &[]Record{}}
	return slog.New(h), h
}

// Enabled implements slog.Handler. Tests want every level captured.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.base))
	for _, a := range h.base {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.recs = append(*h.recs, Record{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler. The accumulated attributes are
// folded into every record the derived handler captures.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	base := make([]slog.Attr, 0, len(h.base)+len(attrs))
	base = append(base, h.base...)
	base = append(base, attrs...)
	return &CaptureHandler{mu: h.mu, recs: h.recs, base: base}
}

// WithGroup implements slog.Handler. Groups are not used in this
// codebase, so the name is ignored rather than prefixed onto keys.
func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of everything captured so far.
func (h *CaptureHandler) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(*h.recs))
	copy(out, *h.recs)
	return out
}

// ContainsMessage reports whether any record's message contains substr.
func (h *CaptureHandler) ContainsMessage(substr string) bool {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries key=value.
func (h *CaptureHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}
