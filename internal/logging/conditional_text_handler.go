package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// ErrConditionalTextHandlerWriterRequired is returned when no writer is given.
var ErrConditionalTextHandlerWriterRequired = errors.New("ConditionalTextHandler: Writer is required")

// ConditionalTextHandler wraps a slog.TextHandler that only emits when the
// log stream is not an interactive terminal. It pairs with
// InteractiveHandler so exactly one of them writes each record.
type ConditionalTextHandler struct {
	interactive bool
	textHandler slog.Handler
}

// ConditionalTextHandlerOptions configures the ConditionalTextHandler.
type ConditionalTextHandlerOptions struct {
	// Interactive disables the handler when true.
	Interactive bool

	// TextHandlerOptions will be passed to slog.NewTextHandler
	TextHandlerOptions *slog.HandlerOptions

	// Writer is the output destination for the text handler
	Writer io.Writer
}

// NewConditionalTextHandler creates a new ConditionalTextHandler.
func NewConditionalTextHandler(opts ConditionalTextHandlerOptions) (*ConditionalTextHandler, error) {
	if opts.Writer == nil {
		return nil, ErrConditionalTextHandlerWriterRequired
	}
	return &ConditionalTextHandler{
		interactive: opts.Interactive,
		textHandler: slog.NewTextHandler(opts.Writer, opts.TextHandlerOptions),
	}, nil
}

// Enabled reports whether the handler handles records at the given level.
func (h *ConditionalTextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return !h.interactive && h.textHandler.Enabled(ctx, level)
}

// Handle delegates to the text handler unless the stream is interactive.
func (h *ConditionalTextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.interactive {
		return nil
	}
	return h.textHandler.Handle(ctx, r)
}

// WithAttrs returns a new handler with additional attributes.
func (h *ConditionalTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ConditionalTextHandler{interactive: h.interactive, textHandler: h.textHandler.WithAttrs(attrs)}
}

// WithGroup returns a new handler with an additional group.
func (h *ConditionalTextHandler) WithGroup(name string) slog.Handler {
	return &ConditionalTextHandler{interactive: h.interactive, textHandler: h.textHandler.WithGroup(name)}
}
