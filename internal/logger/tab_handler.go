package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// tabHandler renders records as "HH:MM:SS.mmm<TAB>LEVEL<TAB>message k=v".
// It keeps the daily files grep-friendly; structured attributes are
// appended as key=value pairs.
type tabHandler struct {
	mu    sync.Mutex
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
}

func newTabHandler(w io.Writer, level slog.Leveler) *tabHandler {
	return &tabHandler{w: w, level: level}
}

func (h *tabHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *tabHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.WriteString(r.Time.Format("15:04:05.000"))
	buf.WriteByte('\t')
	buf.WriteString(levelTag(r.Level))
	buf.WriteByte('\t')
	buf.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&buf, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *tabHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &tabHandler{w: h.w, level: h.level, attrs: merged}
}

func (h *tabHandler) WithGroup(_ string) slog.Handler {
	// Groups are not used by this program; attrs stay flat.
	return h
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "FATAL"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func writeAttr(buf *bytes.Buffer, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(buf, " %s=%v", a.Key, a.Value.Resolve().Any())
}
