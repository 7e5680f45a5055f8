//go:build test

package terminal

// fakeEnv is a fixed environment; fds listed in ttys are terminals.
type fakeEnv struct {
	vars map[string]string
	ttys map[uintptr]bool
}

func newFakeEnv(vars map[string]string, ttys ...uintptr) fakeEnv {
	env := fakeEnv{vars: vars, ttys: map[uintptr]bool{}}
	for _, fd := range ttys {
		env.ttys[fd] = true
	}
	return env
}

func (e fakeEnv) LookupEnv(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

func (e fakeEnv) IsTerminal(fd uintptr) bool {
	return e.ttys[fd]
}

const (
	stdoutFd uintptr = 1
	stderrFd uintptr = 2
)
