// Package terminal decides whether output goes to an interactive terminal
// and whether it should be coloured.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// Env is the process environment the detectors consult.
type Env interface {
	LookupEnv(key string) (string, bool)
	IsTerminal(fd uintptr) bool
}

type osEnv struct{}

func (osEnv) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

func (osEnv) IsTerminal(fd uintptr) bool { return term.IsTerminal(int(fd)) } //nolint:gosec // file descriptors fit in int

// OSEnv returns the real environment.
func OSEnv() Env {
	return osEnv{}
}

// getenv treats an empty value like an unset one.
func getenv(env Env, key string) string {
	v, _ := env.LookupEnv(key)
	return v
}
