// Package color wraps text in ANSI escape sequences.
//
//nolint:revive // package name conflicts with standard library
package color

// ANSI color codes
const (
	resetCode  = "\033[0m"
	boldCode   = "\033[1m"
	grayCode   = "\033[90m" // Bright black/gray
	greenCode  = "\033[32m"
	yellowCode = "\033[33m"
	redCode    = "\033[31m"
	blueCode   = "\033[34m"
	purpleCode = "\033[35m"
	cyanCode   = "\033[36m"
)

// Color wraps text with an ANSI escape sequence.
type Color func(text string) string

// NewColor creates a color function with the specified ANSI code.
func NewColor(ansiCode string) Color {
	return func(text string) string {
		if text == "" {
			return ""
		}
		return ansiCode + text + resetCode
	}
}

// Predefined color functions
var (
	Bold   = NewColor(boldCode)
	Gray   = NewColor(grayCode)
	Green  = NewColor(greenCode)
	Yellow = NewColor(yellowCode)
	Red    = NewColor(redCode)
	Blue   = NewColor(blueCode)
	Purple = NewColor(purpleCode)
	Cyan   = NewColor(cyanCode)
)

// Plain returns text unchanged.
func Plain(text string) string { return text }

// Palette applies colors only when enabled, so callers can format
// unconditionally.
type Palette struct {
	enabled bool
}

// NewPalette returns a Palette that colors text when enabled is true.
func NewPalette(enabled bool) Palette {
	return Palette{enabled: enabled}
}

// Enabled reports whether the palette emits escape sequences.
func (p Palette) Enabled() bool {
	return p.enabled
}

// Paint renders text with c, or unchanged when the palette is disabled.
func (p Palette) Paint(c Color, text string) string {
	if !p.enabled || c == nil {
		return text
	}
	return c(text)
}
