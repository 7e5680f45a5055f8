package terminal

import "strings"

// ColorMode is the user's colour choice.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// colorTerminals lists TERM values (or prefixes) that are known to support
// basic terminal colors.
var colorTerminals = []string{
	"xterm",
	"screen",
	"tmux",
	"rxvt",
	"vt100",
	"vt220",
	"ansi",
	"linux",
	"cygwin",
	"putty",
}

// termSupportsColor checks TERM. Unknown terminals get no colour.
func termSupportsColor(env Env) bool {
	t := strings.ToLower(strings.TrimSpace(getenv(env, "TERM")))
	if t == "" || t == "dumb" {
		return false
	}
	for _, ct := range colorTerminals {
		if t == ct || strings.HasPrefix(t, ct+"-") {
			return true
		}
	}
	return false
}

// explicitColor resolves the settings that win regardless of the terminal:
// the colour mode, then CLICOLOR_FORCE, then NO_COLOR (any value, even
// empty). ok is false when none of them decides.
func explicitColor(env Env, mode ColorMode) (enabled, ok bool) {
	switch mode {
	case ColorAlways:
		return true, true
	case ColorNever:
		return false, true
	}
	if isTruthy(getenv(env, "CLICOLOR_FORCE")) {
		return true, true
	}
	if _, set := env.LookupEnv("NO_COLOR"); set {
		return false, true
	}
	return false, false
}

// ColorEnabled reports whether output written to fd should be coloured.
//
// Priority: colour mode, CLICOLOR_FORCE, NO_COLOR, then for interactive
// colour-capable terminals only, CLICOLOR (default on).
func ColorEnabled(env Env, opts Options, fd uintptr) bool {
	if enabled, ok := explicitColor(env, opts.Color); ok {
		return enabled
	}
	if !IsInteractive(env, opts, fd) || !termSupportsColor(env) {
		return false
	}
	if v := getenv(env, "CLICOLOR"); v != "" {
		return isTruthy(v)
	}
	return true
}

// isTruthy accepts "1", "true" and "yes", case insensitively.
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
