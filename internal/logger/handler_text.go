package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ColorTextHandler implements slog.Handler with one line per record and optionally coloured levels.
type ColorTextHandler struct {
	opts     *slog.HandlerOptions
	w        io.Writer
	mu       *sync.Mutex
	attrs    []slog.Attr
	groups   []string
	useColor bool
}

var (
	debugColor = color.New(color.FgHiBlack)
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
	keyColor   = color.New(color.FgCyan)
)

// NewColorTextHandler creates a ColorTextHandler writing to w.
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorTextHandler{
		opts:     opts,
		w:        w,
		mu:       &sync.Mutex{},
		useColor: useColor,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes a log record.
func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf []byte
	if !r.Time.IsZero() {
		buf = fmt.Appendf(buf, "%s ", r.Time.Format("2006-01-02 15:04:05"))
	}
	buf = fmt.Appendf(buf, "%s %s", h.level(r.Level), r.Message)
	for _, attr := range h.attrs {
		buf = h.appendAttr(buf, "", attr)
	}
	prefix := h.groupPrefix()
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *ColorTextHandler) level(level slog.Level) string {
	var name string
	var c *color.Color
	switch {
	case level < slog.LevelInfo:
		name, c = "DEBUG", debugColor
	case level < slog.LevelWarn:
		name, c = "INFO", infoColor
	case level < slog.LevelError:
		name, c = "WARN", warnColor
	default:
		name, c = "ERROR", errorColor
	}
	if !h.useColor {
		return name
	}
	return colorize(c, name)
}

func (h *ColorTextHandler) groupPrefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func (h *ColorTextHandler) appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return buf
	}
	a.Value = a.Value.Resolve()
	key := prefix + a.Key
	if h.useColor {
		key = colorize(keyColor, key)
	}
	return fmt.Appendf(buf, " %s=%s", key, formatValue(a.Value))
}

// colorize renders s in c even when the color package decided stdout is not a terminal.
func colorize(c *color.Color, s string) string {
	clone := *c
	clone.EnableColor()
	return clone.Sprint(s)
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\"=") {
			return fmt.Sprintf("%q", s)
		}
		return s
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return fmt.Sprintf("%q", err.Error())
		}
		return fmt.Sprintf("%v", v.Any())
	default:
		return v.String()
	}
}

// WithAttrs returns a new handler with additional attrs.
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if prefix := h.groupPrefix(); prefix != "" {
		prefixed := make([]slog.Attr, len(attrs))
		for i, a := range attrs {
			prefixed[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
		}
		attrs = prefixed
	}
	return &ColorTextHandler{
		opts:     h.opts,
		w:        h.w,
		mu:       h.mu,
		attrs:    append(append([]slog.Attr{}, h.attrs...), attrs...),
		groups:   append([]string{}, h.groups...),
		useColor: h.useColor,
	}
}

// WithGroup returns a new handler with a group name.
func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ColorTextHandler{
		opts:     h.opts,
		w:        h.w,
		mu:       h.mu,
		attrs:    append([]slog.Attr{}, h.attrs...),
		groups:   append(append([]string{}, h.groups...), name),
		useColor: h.useColor,
	}
}
