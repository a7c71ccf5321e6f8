package log

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[2m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// terminalHandler renders records as single coloured lines for
// interactive use:
//
//	15:04:05.000 INF server started port=8080
//
// WithAttrs renders its attributes once into the preformatted tail, so
// loggers derived with slog.With do not re-render them per record. The
// mutex is shared across derived handlers; they all write to one stream.
type terminalHandler struct {
	writer       io.Writer
	level        slog.Leveler
	prefix       string
	preformatted []byte
	mu           *sync.Mutex
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *terminalHandler {
	h := &terminalHandler{
		writer: w,
		level:  slog.LevelInfo,
		mu:     &sync.Mutex{},
	}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether records at the given level are emitted.
func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one coloured line for the record.
func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, 256+len(h.preformatted))

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	line = append(line, ansiDim...)
	line = ts.AppendFormat(line, "15:04:05.000")
	line = append(line, ansiReset...)
	line = append(line, ' ')

	colour, tag := levelTag(r.Level)
	line = append(line, colour...)
	line = append(line, tag...)
	line = append(line, ansiReset...)
	line = append(line, ' ')

	line = append(line, ansiBold...)
	line = append(line, r.Message...)
	line = append(line, ansiReset...)

	line = append(line, h.preformatted...)
	r.Attrs(func(a slog.Attr) bool {
		line = appendAttr(line, a, h.prefix)
		return true
	})
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(line)
	return err
}

// WithAttrs returns a handler whose preformatted tail also carries attrs.
func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	tail := make([]byte, len(h.preformatted), len(h.preformatted)+32*len(attrs))
	copy(tail, h.preformatted)
	for _, a := range attrs {
		tail = appendAttr(tail, a, h.prefix)
	}
	return &terminalHandler{
		writer:       h.writer,
		level:        h.level,
		prefix:       h.prefix,
		preformatted: tail,
		mu:           h.mu,
	}
}

// WithGroup returns a handler that prefixes subsequent attribute keys
// with the group name.
func (h *terminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &terminalHandler{
		writer:       h.writer,
		level:        h.level,
		prefix:       h.prefix + name + ".",
		preformatted: h.preformatted,
		mu:           h.mu,
	}
}

func levelTag(level slog.Level) (string, string) {
	switch {
	case level < slog.LevelInfo:
		return ansiCyan, "DBG"
	case level < slog.LevelWarn:
		return ansiGreen, "INF"
	case level < slog.LevelError:
		return ansiYellow, "WRN"
	default:
		return ansiRed, "ERR"
	}
}

// appendAttr renders one attribute as " key=value" with the key dimmed.
// Group attributes flatten into dotted keys; empty attributes vanish, as
// the slog.Handler contract requires.
func appendAttr(line []byte, a slog.Attr, prefix string) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return line
	}

	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			line = appendAttr(line, ga, inner)
		}
		return line
	}

	line = append(line, ' ')
	line = append(line, ansiDim...)
	line = append(line, prefix...)
	line = append(line, a.Key...)
	line = append(line, '=')
	line = append(line, ansiReset...)
	return appendValue(line, a.Value)
}

func appendValue(line []byte, v slog.Value) []byte {
	s := v.String()
	if v.Kind() == slog.KindString && strings.ContainsAny(s, " \t\n\"\\") {
		return strconv.AppendQuote(line, s)
	}
	return append(line, s...)
}
