//go:build test

package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCI(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want bool
	}{
		{name: "no variables", vars: nil, want: false},
		{name: "GITHUB_ACTIONS", vars: map[string]string{"GITHUB_ACTIONS": "true"}, want: true},
		{name: "JENKINS_URL", vars: map[string]string{"JENKINS_URL": "http://jenkins.example.com"}, want: true},
		{name: "BUILD_NUMBER", vars: map[string]string{"BUILD_NUMBER": "123"}, want: true},
		{name: "CI=true", vars: map[string]string{"CI": "true"}, want: true},
		{name: "CI=false", vars: map[string]string{"CI": "false"}, want: false},
		{name: "CI=0", vars: map[string]string{"CI": "0"}, want: false},
		{name: "CI=No", vars: map[string]string{"CI": "No"}, want: false},
		{name: "empty value ignored", vars: map[string]string{"TRAVIS": ""}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCI(newFakeEnv(tt.vars)))
		})
	}
}

func TestIsInteractive(t *testing.T) {
	tests := []struct {
		name string
		env  fakeEnv
		opts Options
		want bool
	}{
		{name: "tty", env: newFakeEnv(nil, stdoutFd), want: true},
		{name: "pipe", env: newFakeEnv(nil), want: false},
		{name: "other fd is a tty", env: newFakeEnv(nil, stderrFd), want: false},
		{name: "ci overrides tty", env: newFakeEnv(map[string]string{"CI": "1"}, stdoutFd), want: false},
		{name: "force interactive overrides ci", env: newFakeEnv(map[string]string{"CI": "1"}), opts: Options{ForceInteractive: true}, want: true},
		{name: "force non-interactive overrides tty", env: newFakeEnv(nil, stdoutFd), opts: Options{ForceNonInteractive: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInteractive(tt.env, tt.opts, stdoutFd))
		})
	}
}
