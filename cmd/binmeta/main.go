// Package main provides the binmeta command. It classifies the segments and
// sections of executable files and prints them indexed by file offset and by
// virtual address.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/isseis/go-binmeta/internal/binmeta"
	"github.com/isseis/go-binmeta/internal/color"
	"github.com/isseis/go-binmeta/internal/config"
	"github.com/isseis/go-binmeta/internal/disasm"
	"github.com/isseis/go-binmeta/internal/logging"
	"github.com/isseis/go-binmeta/internal/objfile"
	"github.com/isseis/go-binmeta/internal/report"
	"github.com/isseis/go-binmeta/internal/terminal"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var (
	errNoFilesProvided   = errors.New("at least one file path must be provided")
	errConflictingColors = errors.New("-color and -no-color are mutually exclusive")
	errInvalidHex        = errors.New("invalid hexadecimal value")
)

// environment is swapped in tests.
var environment = terminal.OSEnv()

// hexFlag is a uint64 flag written in hex, with or without a 0x prefix.
type hexFlag struct {
	value uint64
	set   bool
}

func (h *hexFlag) String() string {
	if !h.set {
		return ""
	}
	return fmt.Sprintf("%#x", h.value)
}

func (h *hexFlag) Set(s string) error {
	digits := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", errInvalidHex, s)
	}
	h.value, h.set = v, true
	return nil
}

type cliOptions struct {
	configPath string
	format     string
	space      string
	tags       string
	skipEmpty  bool
	disasm     int
	color      bool
	noColor    bool
	logLevel   string
	quiet      bool
	addr       hexFlag
	offset     hexFlag
}

type runConfig struct {
	files  []string
	cfg    config.Config
	quiet  bool
	addr   hexFlag
	offset hexFlag
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	rc, fs, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		printUsage(fs, stderr)
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	runID := logging.NewRunID()
	if err := setupLogging(rc, runID, stderr); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	stdoutCaps := detect(rc.cfg, stdout)
	renderer, err := report.NewRenderer(report.Format(rc.cfg.Format), color.NewPalette(stdoutCaps.Color))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	docs, failures := analyzeFiles(rc, runID)

	if err := renderer.Render(stdout, docs); err != nil {
		slog.Error("Failed to write report", slog.Any("error", err))
		return exitFailure
	}
	if failures > 0 {
		return exitFailure
	}
	return exitOK
}

func parseArgs(args []string, stderr io.Writer) (*runConfig, *flag.FlagSet, error) {
	var opts cliOptions

	fs := flag.NewFlagSet("binmeta", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs, stderr) }
	fs.StringVar(&opts.configPath, "config", "", "Path to a TOML configuration file")
	fs.StringVar(&opts.format, "format", "", "Output format: table, classic, json or yaml (default table)")
	fs.StringVar(&opts.space, "space", "", "Ranges to print: file, memory or both (default both)")
	fs.StringVar(&opts.tags, "tags", "", "Comma separated list of tags to print (default all)")
	fs.BoolVar(&opts.skipEmpty, "skip-empty", false, "Hide zero-length ranges")
	fs.Var(&opts.addr, "addr", "List the memory ranges containing this hex address")
	fs.Var(&opts.offset, "offset", "List the file ranges containing this hex offset")
	fs.IntVar(&opts.disasm, "disasm", 0, "Decode this many instructions at the entry point")
	fs.BoolVar(&opts.color, "color", false, "Always color the output")
	fs.BoolVar(&opts.noColor, "no-color", false, "Never color the output")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (default info)")
	fs.BoolVar(&opts.quiet, "quiet", false, "Only log errors")

	// The flag package already printed usage for parse errors.
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() == 0 {
		return nil, fs, errNoFilesProvided
	}
	if opts.color && opts.noColor {
		return nil, fs, errConflictingColors
	}

	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, fs, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Format = opts.format
		case "space":
			cfg.Space = opts.space
		case "tags":
			cfg.Filter.Tags = splitList(opts.tags)
		case "skip-empty":
			cfg.Filter.SkipEmpty = opts.skipEmpty
		case "disasm":
			cfg.Disassemble = opts.disasm
		case "color":
			if opts.color {
				cfg.Color = config.ColorAlways
			}
		case "no-color":
			if opts.noColor {
				cfg.Color = config.ColorNever
			}
		case "log-level":
			cfg.LogLevel = opts.logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, fs, err
	}

	return &runConfig{
		files:  fs.Args(),
		cfg:    cfg,
		quiet:  opts.quiet,
		addr:   opts.addr,
		offset: opts.offset,
	}, fs, nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	if fs == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "Usage: %s [flags] <file> [<file>...]\n", filepath.Base(os.Args[0]))
	fs.PrintDefaults()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// noTTY reports every descriptor as a non-terminal.
type noTTY struct{ terminal.Env }

func (noTTY) IsTerminal(uintptr) bool { return false }

// detect evaluates w, which is only treated as a terminal when it is an
// *os.File.
func detect(cfg config.Config, w io.Writer) terminal.Capabilities {
	opts := terminal.Options{Color: terminal.ColorMode(cfg.Color)}
	if f, ok := w.(*os.File); ok {
		return terminal.DetectWithEnv(environment, opts, f.Fd())
	}
	return terminal.DetectWithEnv(noTTY{environment}, opts, 0)
}

func setupLogging(rc *runConfig, runID string, stderr io.Writer) error {
	level, err := logging.ParseLevel(rc.cfg.LogLevel)
	if err != nil {
		return err
	}
	if rc.quiet {
		level = slog.LevelError
	}
	_, err = logging.Setup(logging.Options{
		Level:        level,
		Writer:       stderr,
		Capabilities: detect(rc.cfg, stderr),
		RunID:        runID,
	})
	return err
}

func reportOptions(cfg config.Config) report.Options {
	opts := report.Options{Tags: cfg.Tags(), SkipEmpty: cfg.Filter.SkipEmpty}
	switch cfg.Space {
	case config.SpaceFile:
		opts.Spaces = []binmeta.Space{binmeta.FileSpace}
	case config.SpaceMemory:
		opts.Spaces = []binmeta.Space{binmeta.MemorySpace}
	}
	return opts
}

// analyzeFiles builds one document per readable file and counts the files
// that could not be read or parsed.
func analyzeFiles(rc *runConfig, runID string) ([]report.Document, int) {
	opts := reportOptions(rc.cfg)
	docs := make([]report.Document, 0, len(rc.files))
	failures := 0

	for _, path := range rc.files {
		doc, err := analyzeFile(rc, runID, path, opts)
		if err != nil {
			slog.Error("Failed to analyze file", slog.String("path", path), slog.Any("error", err))
			failures++
			continue
		}
		docs = append(docs, doc)
	}

	slog.Debug("Analysis finished", slog.Int("files", len(rc.files)), slog.Int("failures", failures))
	return docs, failures
}

func analyzeFile(rc *runConfig, runID, path string, opts report.Options) (report.Document, error) {
	data, err := objfile.ReadFile(path)
	if err != nil {
		return report.Document{}, err
	}
	obj, err := objfile.Parse(data)
	if err != nil {
		return report.Document{}, err
	}
	if !obj.Kind.Supported() {
		slog.Warn("Object kind not supported, no ranges reported",
			slog.String("path", path),
			slog.String("kind", obj.Kind.String()))
	}

	analysis := binmeta.New(obj)
	doc := report.NewDocument(runID, report.Input{Path: path, Data: data, Object: obj, Analysis: analysis}, opts)

	if rc.addr.set {
		doc.AddLookup(analysis, binmeta.MemorySpace, rc.addr.value)
	}
	if rc.offset.set {
		doc.AddLookup(analysis, binmeta.FileSpace, rc.offset.value)
	}

	if n := rc.cfg.Disassemble; n > 0 && obj.Kind.Supported() {
		insts, err := disasm.DecodeEntry(obj, analysis, data, n)
		if err != nil {
			slog.Warn("Entry point not disassembled", slog.String("path", path), slog.Any("error", err))
		} else {
			doc.SetDisassembly(insts)
		}
	}
	return doc, nil
}
