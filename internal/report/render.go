package report

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/isseis/go-binmeta/internal/color"
)

// Format names an output format.
type Format string

// Output formats.
const (
	FormatTable   Format = "table"
	FormatClassic Format = "classic"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// ErrUnknownFormat is returned by NewRenderer.
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer writes documents to w.
type Renderer interface {
	Render(w io.Writer, docs []Document) error
}

// NewRenderer returns the renderer for format. The palette only affects the
// table format.
func NewRenderer(format Format, palette color.Palette) (Renderer, error) {
	switch format {
	case FormatTable:
		return &tableRenderer{palette: palette}, nil
	case FormatClassic:
		return classicRenderer{}, nil
	case FormatJSON:
		return jsonRenderer{}, nil
	case FormatYAML:
		return yamlRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonRenderer writes one indented JSON object per document.
type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, docs []Document) error {
	enc := jsonAPI.NewEncoder(w)
	enc.SetIndent("", "  ")
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode %s: %w", doc.Path, err)
		}
	}
	return nil
}

// yamlRenderer writes a YAML stream with one document per file.
type yamlRenderer struct{}

func (yamlRenderer) Render(w io.Writer, docs []Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode %s: %w", doc.Path, err)
		}
	}
	return enc.Close()
}
