package logging

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
)

// LogEntry is a captured log record in a shape that can be served as JSON.
type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Function  string            `json:"function,omitempty"`
	Line      int               `json:"line,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// LogQuery filters captured entries. Zero values disable the corresponding filter.
type LogQuery struct {
	Limit int
	Level string
	Since time.Time
}

// LogStats summarises the captured entries.
type LogStats struct {
	Total   int            `json:"total"`
	ByLevel map[string]int `json:"by_level"`
	Oldest  *time.Time     `json:"oldest"`
	Newest  *time.Time     `json:"newest"`
}

// LogBuffer keeps the most recent log entries in memory.
type LogBuffer struct {
	mu       sync.Mutex
	capacity int
	entries  []LogEntry
}

// NewLogBuffer creates a buffer that retains at most capacity entries.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &LogBuffer{
		mu:       sync.Mutex{},
		capacity: capacity,
		entries:  make([]LogEntry, 0, capacity),
	}
}

func (b *LogBuffer) add(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == b.capacity {
		copy(b.entries, b.entries[1:])
		b.entries = b.entries[:len(b.entries)-1]
	}
	b.entries = append(b.entries, entry)
}

// Query returns the newest entries matching q in chronological order.
func (b *LogBuffer) Query(q LogQuery) []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]LogEntry, 0, len(b.entries))
	for _, entry := range b.entries {
		if q.Level != "" && !strings.EqualFold(entry.Level, q.Level) {
			continue
		}
		if !q.Since.IsZero() && !entry.Timestamp.After(q.Since) {
			continue
		}
		result = append(result, entry)
	}
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[len(result)-q.Limit:]
	}
	return result
}

// Stats counts the captured entries per level.
func (b *LogBuffer) Stats() LogStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := LogStats{
		Total: len(b.entries),
		ByLevel: map[string]int{
			slog.LevelDebug.String(): 0,
			slog.LevelInfo.String():  0,
			slog.LevelWarn.String():  0,
			slog.LevelError.String(): 0,
		},
		Oldest: nil,
		Newest: nil,
	}
	for _, entry := range b.entries {
		stats.ByLevel[entry.Level]++
	}
	if len(b.entries) > 0 {
		oldest := b.entries[0].Timestamp
		newest := b.entries[len(b.entries)-1].Timestamp
		stats.Oldest = &oldest
		stats.Newest = &newest
	}
	return stats
}

// Clear drops every captured entry.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = b.entries[:0]
}

// CaptureHandler copies every record at or above level into a [LogBuffer] before passing it to the next handler.
type CaptureHandler struct {
	next   slog.Handler
	buffer *LogBuffer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewCaptureHandler tees records of at least level into buffer.
func NewCaptureHandler(next slog.Handler, buffer *LogBuffer, level slog.Leveler) *CaptureHandler {
	return &CaptureHandler{
		next:   next,
		buffer: buffer,
		level:  level,
		attrs:  nil,
		groups: nil,
	}
}

func (h *CaptureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() || h.next.Enabled(ctx, level)
}

func (h *CaptureHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level.Level() {
		h.buffer.add(h.entry(r))
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r) //nolint:wrapcheck // the context handler wraps the error.
}

func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	prefix := strings.Join(h.groups, ".")
	for _, attr := range attrs {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		prefixed = append(prefixed, attr)
	}
	return &CaptureHandler{
		next:   h.next.WithAttrs(attrs),
		buffer: h.buffer,
		level:  h.level,
		attrs:  prefixed,
		groups: h.groups,
	}
}

func (h *CaptureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &CaptureHandler{
		next:   h.next.WithGroup(name),
		buffer: h.buffer,
		level:  h.level,
		attrs:  h.attrs,
		groups: append(slices.Clip(h.groups), name),
	}
}

func (h *CaptureHandler) entry(r slog.Record) LogEntry {
	entry := LogEntry{
		Timestamp: r.Time,
		Level:     r.Level.String(),
		Message:   r.Message,
		Function:  "",
		Line:      0,
		Attrs:     map[string]string{},
	}
	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		entry.Function = frame.Function
		entry.Line = frame.Line
	}
	for _, attr := range h.attrs {
		flatten(entry.Attrs, "", attr)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(attr slog.Attr) bool {
		flatten(entry.Attrs, prefix, attr)
		return true
	})
	if len(entry.Attrs) == 0 {
		entry.Attrs = nil
	}
	return entry
}

func flatten(dst map[string]string, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	key := attr.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if attr.Value.Kind() == slog.KindGroup {
		for _, member := range attr.Value.Group() {
			flatten(dst, key, member)
		}
		return
	}
	if key == "" {
		return
	}
	dst[key] = attr.Value.String()
}
