package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Static errors for InteractiveHandler validation
var (
	ErrInteractiveHandlerWriterRequired    = errors.New("InteractiveHandler: Writer is required")
	ErrInteractiveHandlerFormatterRequired = errors.New("InteractiveHandler: Formatter is required")
)

// InteractiveHandler writes compact, optionally colored lines for a human
// watching a terminal. It is disabled when the stream is not interactive.
type InteractiveHandler struct {
	mu          *sync.Mutex
	interactive bool
	color       bool
	formatter   MessageFormatter
	writer      io.Writer
	level       slog.Leveler
	attrs       []slog.Attr
	groups      []string
}

// InteractiveHandlerOptions configures the InteractiveHandler.
type InteractiveHandlerOptions struct {
	Level       slog.Leveler
	Writer      io.Writer
	Interactive bool
	Color       bool
	Formatter   MessageFormatter
}

// NewInteractiveHandler creates a new InteractiveHandler with the given options.
func NewInteractiveHandler(opts InteractiveHandlerOptions) (*InteractiveHandler, error) {
	if opts.Writer == nil {
		return nil, ErrInteractiveHandlerWriterRequired
	}
	if opts.Formatter == nil {
		return nil, ErrInteractiveHandlerFormatterRequired
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	return &InteractiveHandler{
		mu:          &sync.Mutex{},
		interactive: opts.Interactive,
		color:       opts.Color,
		formatter:   opts.Formatter,
		writer:      opts.Writer,
		level:       level,
	}, nil
}

// Enabled reports whether the handler handles records at the given level.
func (h *InteractiveHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.interactive && level >= h.level.Level()
}

// Handle formats r with the accumulated attributes and writes one line.
// Record attributes are qualified with the current group path.
func (h *InteractiveHandler) Handle(_ context.Context, r slog.Record) error {
	if !h.interactive {
		return nil
	}

	prefix := h.groupPrefix()
	record := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	record.AddAttrs(h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		record.AddAttrs(slog.Attr{Key: prefix + a.Key, Value: a.Value})
		return true
	})

	line := h.formatter.Format(record, h.color) + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, line)
	return err
}

// WithAttrs returns a new handler with additional attributes. Keys are
// qualified with the current group path.
func (h *InteractiveHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	prefix := h.groupPrefix()
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}
	return &clone
}

func (h *InteractiveHandler) groupPrefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

// WithGroup returns a new handler with an additional group.
func (h *InteractiveHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}
