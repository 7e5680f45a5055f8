package logging

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/isseis/go-binmeta/internal/color"
)

// MessageFormatter renders a record as one line of terminal output.
type MessageFormatter interface {
	Format(record slog.Record, useColor bool) string
}

// DefaultMessageFormatter prints the level, the message and the attributes,
// with the attributes a reader scans for first (error, path, kind, space)
// moved to the front.
type DefaultMessageFormatter struct{}

// NewDefaultMessageFormatter creates a new DefaultMessageFormatter.
func NewDefaultMessageFormatter() *DefaultMessageFormatter {
	return &DefaultMessageFormatter{}
}

// priorityKeys are printed first, in this order.
var priorityKeys = []string{"error", "path", "kind", "space"}

// skipKeys are bookkeeping attributes that only matter in machine logs.
var skipKeys = []string{"run_id"}

// Format implements MessageFormatter.
func (f *DefaultMessageFormatter) Format(record slog.Record, useColor bool) string {
	var sb strings.Builder
	sb.WriteString(formatLevel(record.Level, useColor))
	sb.WriteString(" ")
	sb.WriteString(record.Message)

	var attrs []slog.Attr
	record.Attrs(func(a slog.Attr) bool {
		if !slices.Contains(skipKeys, a.Key) {
			attrs = append(attrs, a)
		}
		return true
	})
	slices.SortStableFunc(attrs, func(a, b slog.Attr) int {
		return priority(a.Key) - priority(b.Key)
	})

	for _, a := range attrs {
		sb.WriteString(" ")
		key := a.Key + "="
		if useColor {
			key = color.Gray(key)
		}
		sb.WriteString(key)
		sb.WriteString(formatValue(a.Value))
	}
	return sb.String()
}

// priority ranks keys ending in a priority name ahead of the rest.
func priority(key string) int {
	for i, p := range priorityKeys {
		if key == p || strings.HasSuffix(key, "."+p) {
			return i
		}
	}
	return len(priorityKeys)
}

func formatLevel(level slog.Level, useColor bool) string {
	if useColor {
		switch {
		case level >= slog.LevelError:
			return color.Red("X ERROR")
		case level >= slog.LevelWarn:
			return color.Yellow("! WARN ")
		case level >= slog.LevelInfo:
			return color.Green("+ INFO ")
		default:
			return color.Gray("* DEBUG")
		}
	}
	switch {
	case level >= slog.LevelError:
		return "[ERROR]"
	case level >= slog.LevelWarn:
		return "[WARN ]"
	case level >= slog.LevelInfo:
		return "[INFO ]"
	default:
		return "[DEBUG]"
	}
}

func formatValue(value slog.Value) string {
	value = value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return quote(value.String())
	case slog.KindTime:
		return value.Time().Format(time.RFC3339)
	case slog.KindGroup:
		attrs := value.Group()
		parts := make([]string, 0, len(attrs))
		for _, a := range attrs {
			parts = append(parts, a.Key+"="+formatValue(a.Value))
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return quote(value.String())
	}
}

// quote wraps s in double quotes when it is empty or would not read back as
// a single key=value token.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"=") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
