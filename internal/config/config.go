// Package config loads the binmeta configuration file.
//
// The file is TOML. Every key is optional; missing keys keep the defaults
// returned by Default, and unknown keys are rejected so that typos surface as
// errors instead of being silently ignored.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"

	"github.com/isseis/go-binmeta/internal/binmeta"
)

// Output formats.
const (
	FormatTable   = "table"
	FormatClassic = "classic"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
)

// Range spaces to print.
const (
	SpaceFile   = "file"
	SpaceMemory = "memory"
	SpaceBoth   = "both"
)

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// MaxDisassemble bounds the entry-point preview length.
const MaxDisassemble = 1024

var (
	// ErrInvalidConfig is wrapped by every ValidationError.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrParseConfig is returned when the file is not valid TOML for Config.
	ErrParseConfig = errors.New("failed to parse config")
)

var (
	formats   = []string{FormatTable, FormatClassic, FormatJSON, FormatYAML}
	spaces    = []string{SpaceFile, SpaceMemory, SpaceBoth}
	colors    = []string{ColorAuto, ColorAlways, ColorNever}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// Filter selects which records are printed.
type Filter struct {
	// Tags limits output to records with one of these tags. Empty means all.
	Tags []string `toml:"tags"`

	// SkipEmpty hides zero-length ranges.
	SkipEmpty bool `toml:"skip_empty"`
}

// Config is the complete tool configuration.
type Config struct {
	Format      string `toml:"format"`
	Space       string `toml:"space"`
	Color       string `toml:"color"`
	LogLevel    string `toml:"log_level"`
	Disassemble int    `toml:"disassemble"`
	Filter      Filter `toml:"filter"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Format:   FormatTable,
		Space:    SpaceBoth,
		Color:    ColorAuto,
		LogLevel: "info",
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	content, err := os.ReadFile(path) // #nosec G304 - config path is supplied by the operator
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(content)
}

// Parse decodes content over the defaults and validates the result.
func Parse(content []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrParseConfig, strict.String())
		}
		return Config{}, fmt.Errorf("%w: %w", ErrParseConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	check := func(field, value string, allowed []string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		result = multierror.Append(result, &ValidationError{
			Field:  field,
			Value:  value,
			Reason: "must be one of " + strings.Join(allowed, ", "),
		})
	}
	check("format", c.Format, formats)
	check("space", c.Space, spaces)
	check("color", c.Color, colors)
	check("log_level", strings.ToLower(c.LogLevel), logLevels)

	if c.Disassemble < 0 || c.Disassemble > MaxDisassemble {
		result = multierror.Append(result, &ValidationError{
			Field:  "disassemble",
			Value:  fmt.Sprint(c.Disassemble),
			Reason: fmt.Sprintf("must be between 0 and %d", MaxDisassemble),
		})
	}

	for _, name := range c.Filter.Tags {
		if _, err := binmeta.ParseTag(name); err != nil {
			result = multierror.Append(result, &ValidationError{
				Field:  "filter.tags",
				Value:  name,
				Reason: "unknown tag",
			})
		}
	}

	return result.ErrorOrNil()
}

// Tags returns the parsed tag filter. Call Validate first; unknown names are
// skipped.
func (c *Config) Tags() []binmeta.Tag {
	var tags []binmeta.Tag
	for _, name := range c.Filter.Tags {
		if tag, err := binmeta.ParseTag(name); err == nil {
			tags = append(tags, tag)
		}
	}
	return tags
}
