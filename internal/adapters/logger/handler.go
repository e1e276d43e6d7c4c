package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

// Top-level attribute keys rendered as a "[flow/stage]" prefix instead of
// key=value pairs, matching the prefix of stage output lines.
const (
	flowKey  = "flow"
	stageKey = "stage"
)

// PrettyHandler is a slog.Handler for terminals. The message is coloured by
// level, flow and stage attributes become a prefix and the remaining
// attributes follow dimmed.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewPrettyHandler creates a PrettyHandler writing to w, or stderr when w is nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var flow, stage string
	var pairs []string

	// Handler attrs are qualified by WithAttrs, record attrs by the open groups.
	collect := func(group string, a slog.Attr) {
		if group == "" {
			switch a.Key {
			case flowKey:
				flow = a.Value.String()
				return
			case stageKey:
				stage = a.Value.String()
				return
			}
		}
		pairs = appendAttr(pairs, group, a)
	}
	for _, a := range h.attrs {
		collect("", a)
	}
	group := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		collect(group, a)
		return true
	})

	var b strings.Builder
	if p := prefix(flow, stage); p != "" {
		b.WriteString(h.dim(p) + " ")
	}

	icon, color := levelMarker(r.Level)
	msg := r.Message
	if icon != "" {
		msg = icon + " " + msg
	}
	b.WriteString(h.out.String(msg).Foreground(color).String())

	if len(pairs) > 0 {
		b.WriteString(" " + h.dim(strings.Join(pairs, " ")))
	}
	b.WriteString("\n")

	_, err := h.out.WriteString(b.String())
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
// Attributes added inside a group are qualified right away.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	if len(h.groups) > 0 {
		g := strings.Join(h.groups, ".")
		for _, a := range attrs {
			next.attrs = append(next.attrs, slog.Attr{Key: g + "." + a.Key, Value: a.Value})
		}
		return next
	}
	next.attrs = append(next.attrs, attrs...)
	return next
}

// WithGroup returns a new Handler nesting later attributes under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		out:    h.out,
		level:  h.level,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func (h *PrettyHandler) dim(s string) string {
	return h.out.String(s).Foreground(termenv.RGBColor(string(style.Slate))).String()
}

func levelMarker(level slog.Level) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, termenv.RGBColor(string(style.Red))
	case level >= slog.LevelWarn:
		return style.Warning, termenv.RGBColor(string(style.Yellow))
	case level < slog.LevelInfo:
		return style.Dot, termenv.RGBColor(string(style.Slate))
	default:
		return "", termenv.RGBColor(string(style.Iris))
	}
}

func prefix(flow, stage string) string {
	switch {
	case flow != "" && stage != "":
		return "[" + flow + "/" + stage + "]"
	case stage != "":
		return "[" + stage + "]"
	case flow != "":
		return "[" + flow + "]"
	default:
		return ""
	}
}

// appendAttr renders a as key=value pairs, flattening groups into dotted keys.
func appendAttr(pairs []string, group string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return pairs
	}

	key := a.Key
	if group != "" && key != "" {
		key = group + "." + key
	} else if key == "" {
		key = group
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			pairs = appendAttr(pairs, key, ga)
		}
		return pairs
	}
	return append(pairs, key+"="+formatValue(a.Value))
}

// formatValue rounds durations to build-log precision and quotes values
// containing spaces, such as paths.
func formatValue(v slog.Value) string {
	if v.Kind() == slog.KindDuration {
		return v.Duration().Round(100 * time.Millisecond).String()
	}
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"") {
		return strconv.Quote(s)
	}
	return s
}
