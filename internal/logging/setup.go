package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/isseis/go-binmeta/internal/terminal"
)

// ErrInvalidLogLevel is returned by ParseLevel.
var ErrInvalidLogLevel = errors.New("invalid log level")

// Options configures Setup.
type Options struct {
	// Level is the minimum level logged.
	Level slog.Level

	// Writer receives log output, normally stderr.
	Writer io.Writer

	// Capabilities of Writer.
	Capabilities terminal.Capabilities

	// RunID tags every record. NewRunID is used when empty.
	RunID string
}

// NewRunID returns a fresh, time-ordered identifier for one invocation.
func NewRunID() string {
	return ulid.Make().String()
}

// ParseLevel converts debug, info, warn or error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}
}

// NewLogger builds the handler stack without installing it.
func NewLogger(opts Options) (*slog.Logger, error) {
	if opts.RunID == "" {
		opts.RunID = NewRunID()
	}

	interactive, err := NewInteractiveHandler(InteractiveHandlerOptions{
		Level:       opts.Level,
		Writer:      opts.Writer,
		Interactive: opts.Capabilities.Interactive,
		Color:       opts.Capabilities.Color,
		Formatter:   NewDefaultMessageFormatter(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create interactive handler: %w", err)
	}

	text, err := NewConditionalTextHandler(ConditionalTextHandlerOptions{
		Interactive:        opts.Capabilities.Interactive,
		TextHandlerOptions: &slog.HandlerOptions{Level: opts.Level},
		Writer:             opts.Writer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create conditional text handler: %w", err)
	}

	handler := NewMultiHandler(interactive, text).
		WithAttrs([]slog.Attr{slog.String("run_id", opts.RunID)})
	return slog.New(handler), nil
}

// Setup builds the logger and installs it as the slog default.
//
// It must be called once during startup, before concurrent logging begins.
func Setup(opts Options) (*slog.Logger, error) {
	logger, err := NewLogger(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
