//go:build test

package main

import (
	"bytes"
	"debug/elf"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isseis/go-binmeta/internal/config"
	"github.com/isseis/go-binmeta/internal/objfile/objfiletesting"
	"github.com/isseis/go-binmeta/internal/terminal"
)

// nop; mov eax, 0x29; syscall; ret
var entryCode = []byte{0x90, 0xb8, 0x29, 0x00, 0x00, 0x00, 0x0f, 0x05, 0xc3}

// fakeEnv has no terminals.
type fakeEnv map[string]string

func (e fakeEnv) LookupEnv(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

func (fakeEnv) IsTerminal(uintptr) bool { return false }

// isolate pins the environment and restores the default logger.
func isolate(t *testing.T, vars fakeEnv) {
	t.Helper()
	prevEnv := environment
	prevLogger := slog.Default()
	environment = vars
	t.Cleanup(func() {
		environment = prevEnv
		slog.SetDefault(prevLogger)
	})
}

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sample")
	objfiletesting.WriteELF64(t, path, objfiletesting.Image{
		Entry: 0x401000,
		Segments: []objfiletesting.Segment{
			{Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_X, Off: 0x1000, Filesz: uint64(len(entryCode)), Vaddr: 0x401000, Memsz: uint64(len(entryCode))},
		},
		Sections: []objfiletesting.Section{
			{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Addr: 0x401000, Offset: 0x1000, Data: entryCode},
			{Name: ".bss", Type: elf.SHT_NOBITS, Flags: elf.SHF_ALLOC | elf.SHF_WRITE, Addr: 0x402000, Offset: 0x1010, Size: 0x100},
		},
	})
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunRequiresAtLeastOneFile(t *testing.T) {
	isolate(t, fakeEnv{})

	code, _, stderr := runCLI(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "at least one file path")
	assert.Contains(t, stderr, "Usage:")
}

func TestRunHelp(t *testing.T) {
	isolate(t, fakeEnv{})

	code, _, stderr := runCLI(t, "-h")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "-disasm")
}

func TestRunClassic(t *testing.T) {
	isolate(t, fakeEnv{})
	path := writeSample(t, t.TempDir())

	code, stdout, stderr := runCLI(t, "-format", "classic", "-space", "file", "-tags", "code", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t,
		"0x1000..0x1009(8) -> Code - \"PT_LOAD\" : R+X\n"+
			"0x1000..0x1009(8) -> Code - \".text\" : R+X\n",
		stdout)
}

func TestRunUnresolvableSectionName(t *testing.T) {
	isolate(t, fakeEnv{})
	path := writeSample(t, t.TempDir())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	objfiletesting.SetSectionNameOffset(t, data, 1, 0xFFFFFF)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	code, stdout, stderr := runCLI(t, "-format", "classic", "-space", "file", "-tags", "code", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t,
		"0x1000..0x1009(8) -> Code - \"PT_LOAD\" : R+X\n"+
			"0x1000..0x1009(8) -> Code - \"None\" : R+X\n",
		stdout)
}

func TestRunLookup(t *testing.T) {
	isolate(t, fakeEnv{})
	path := writeSample(t, t.TempDir())

	code, stdout, _ := runCLI(t, "-format", "classic", "-tags", "zero", "-addr", "0x402080", "-offset", "1004", path)
	require.Equal(t, exitOK, code)
	assert.Equal(t,
		"# file ranges\n"+
			"# memory ranges\n"+
			"0x402000..0x402100(255) -> Zero - \".bss\" : RW\n"+
			"# memory 0x402080\n"+
			"0x402000..0x402100(255) -> Zero - \".bss\" : RW\n"+
			"# file 0x1004\n"+
			"0x1000..0x1009(8) -> Code - \"PT_LOAD\" : R+X\n"+
			"0x1000..0x1009(8) -> Code - \".text\" : R+X\n",
		stdout)
}

func TestRunJSONWithDisassembly(t *testing.T) {
	isolate(t, fakeEnv{})
	path := writeSample(t, t.TempDir())

	code, stdout, _ := runCLI(t, "-format", "json", "-space", "memory", "-disasm", "3", path)
	require.Equal(t, exitOK, code)

	var doc struct {
		RunID  string `json:"run_id"`
		Path   string `json:"path"`
		Kind   string `json:"kind"`
		Ranges []struct {
			Space   string           `json:"space"`
			Records []map[string]any `json:"records"`
		} `json:"ranges"`
		Disassembly []struct {
			Addr string `json:"addr"`
			Text string `json:"text"`
		} `json:"disassembly"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.NotEmpty(t, doc.RunID)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "elf", doc.Kind)
	require.Len(t, doc.Ranges, 1)
	assert.Equal(t, "memory", doc.Ranges[0].Space)
	require.Len(t, doc.Disassembly, 3)
	assert.Equal(t, "0x401000", doc.Disassembly[0].Addr)
	assert.Equal(t, "nop", doc.Disassembly[0].Text)
	assert.Equal(t, "syscall", doc.Disassembly[2].Text)
}

func TestRunConfigFile(t *testing.T) {
	isolate(t, fakeEnv{})
	dir := t.TempDir()
	path := writeSample(t, dir)
	cfgPath := filepath.Join(dir, "binmeta.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format = \"json\"\nspace = \"file\"\n[filter]\ntags = [\"zero\"]\n"), 0o600))

	t.Run("file values", func(t *testing.T) {
		code, stdout, _ := runCLI(t, "-config", cfgPath, path)
		require.Equal(t, exitOK, code)

		var doc struct {
			Ranges []struct {
				Space   string `json:"space"`
				Records []any  `json:"records"`
			} `json:"ranges"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
		require.Len(t, doc.Ranges, 1)
		assert.Equal(t, "file", doc.Ranges[0].Space)
		assert.NotNil(t, doc.Ranges[0].Records)
		assert.Empty(t, doc.Ranges[0].Records, "zero-filled sections have no file range")
	})

	t.Run("flags override", func(t *testing.T) {
		code, stdout, _ := runCLI(t, "-config", cfgPath, "-format", "classic", "-space", "memory", path)
		require.Equal(t, exitOK, code)
		assert.Equal(t, "0x402000..0x402100(255) -> Zero - \".bss\" : RW\n", stdout)
	})
}

func TestRunConfigErrors(t *testing.T) {
	isolate(t, fakeEnv{})
	dir := t.TempDir()
	path := writeSample(t, dir)
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("format = \"xml\"\n"), 0o600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "invalid config value", args: []string{"-config", bad, path}, want: "invalid format"},
		{name: "missing config", args: []string{"-config", filepath.Join(dir, "none.toml"), path}, want: "failed to read config"},
		{name: "invalid flag value", args: []string{"-space", "disk", path}, want: "invalid space"},
		{name: "unknown tag", args: []string{"-tags", "code,bogus", path}, want: "unknown tag"},
		{name: "conflicting colors", args: []string{"-color", "-no-color", path}, want: "mutually exclusive"},
		{name: "bad hex", args: []string{"-addr", "0xzz", path}, want: "invalid hexadecimal value"},
		{name: "bad log level", args: []string{"-log-level", "loud", path}, want: "invalid log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestRunPartialFailure(t *testing.T) {
	isolate(t, fakeEnv{})
	dir := t.TempDir()
	path := writeSample(t, dir)
	script := filepath.Join(dir, "script.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o600))

	code, stdout, stderr := runCLI(t, "-format", "classic", "-tags", "code", "-space", "file",
		filepath.Join(dir, "missing"), script, path)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, `-> Code - ".text" : R+X`, "readable files are still reported")
	assert.Contains(t, stderr, "Failed to analyze file")
	assert.Contains(t, stderr, "unrecognized")
}

func TestRunUnsupportedKind(t *testing.T) {
	isolate(t, fakeEnv{})
	archive := filepath.Join(t.TempDir(), "lib.a")
	require.NoError(t, os.WriteFile(archive, []byte("!<arch>\n"), 0o600))

	code, stdout, stderr := runCLI(t, "-format", "json", archive)
	require.Equal(t, exitOK, code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "archive", doc["kind"])
	assert.Contains(t, stderr, "Object kind not supported")

	code, _, stderr = runCLI(t, "-quiet", archive)
	require.Equal(t, exitOK, code)
	assert.Empty(t, stderr, "quiet hides warnings")
}

func TestRunTableColor(t *testing.T) {
	path := writeSample(t, t.TempDir())

	t.Run("plain by default off a terminal", func(t *testing.T) {
		isolate(t, fakeEnv{"TERM": "xterm"})
		code, stdout, _ := runCLI(t, path)
		require.Equal(t, exitOK, code)
		assert.NotContains(t, stdout, "\033[")
		assert.Contains(t, stdout, "file ranges")
	})

	t.Run("forced", func(t *testing.T) {
		isolate(t, fakeEnv{})
		code, stdout, _ := runCLI(t, "-color", path)
		require.Equal(t, exitOK, code)
		assert.Contains(t, stdout, "\033[")
	})

	t.Run("CLICOLOR_FORCE", func(t *testing.T) {
		isolate(t, fakeEnv{"CLICOLOR_FORCE": "1"})
		code, stdout, _ := runCLI(t, path)
		require.Equal(t, exitOK, code)
		assert.Contains(t, stdout, "\033[")
	})
}

func TestRunDebugLogging(t *testing.T) {
	isolate(t, fakeEnv{})
	path := writeSample(t, t.TempDir())

	code, _, stderr := runCLI(t, "-log-level", "debug", "-format", "classic", path)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "Range classified")
	assert.Contains(t, stderr, "run_id=")
}

func TestHexFlag(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"0x401000", 0x401000},
		{"401000", 0x401000},
		{"0XFF", 0xff},
		{" 10 ", 0x10},
		{"ffffffffffffffff", ^uint64(0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var h hexFlag
			require.NoError(t, h.Set(tt.in))
			assert.Equal(t, tt.want, h.value)
			assert.True(t, h.set)
		})
	}

	var h hexFlag
	assert.Empty(t, h.String())
	assert.ErrorIs(t, h.Set("0x"), errInvalidHex)
	assert.ErrorIs(t, h.Set("10000000000000000"), errInvalidHex)
	require.NoError(t, h.Set("0x2a"))
	assert.Equal(t, "0x2a", h.String())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"code", "zero"}, splitList(" code, ,zero,"))
	assert.Nil(t, splitList(""))
}

func TestDetectNonFileWriter(t *testing.T) {
	isolate(t, fakeEnv{"TERM": "xterm"})
	var buf bytes.Buffer
	caps := detect(config.Config{Color: config.ColorAuto}, &buf)
	assert.Equal(t, terminal.Capabilities{}, caps)
}
