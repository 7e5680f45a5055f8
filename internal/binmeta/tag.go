package binmeta

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTag indicates a tag name that is not part of the Tag vocabulary.
var ErrUnknownTag = errors.New("unknown tag")

// Tag is the semantic class of an address range.
type Tag int

const (
	// Meta is structural bookkeeping, such as the program header table or
	// the dynamic linking table.
	Meta Tag = iota

	// Code is loaded content occupying file space: code or initialized data.
	Code

	// Data is reserved; no classification rule currently produces it.
	Data

	// Relocation is a relocation table, with or without addends.
	Relocation

	// StringTable is a string table.
	StringTable

	// SymbolTable is a static or dynamic symbol table.
	SymbolTable

	// Zero is declared memory with no file bytes, zero-filled at load time.
	Zero

	// ASCII is content read as text, such as the interpreter path or notes.
	ASCII

	// Unknown is any unrecognized type code.
	Unknown
)

var tagNames = [...]string{
	Meta:        "Meta",
	Code:        "Code",
	Data:        "Data",
	Relocation:  "Relocation",
	StringTable: "StringTable",
	SymbolTable: "SymbolTable",
	Zero:        "Zero",
	ASCII:       "ASCII",
	Unknown:     "Unknown",
}

// AllTags returns every Tag in declaration order.
func AllTags() []Tag {
	return []Tag{Meta, Code, Data, Relocation, StringTable, SymbolTable, Zero, ASCII, Unknown}
}

// String returns a string representation of Tag.
func (t Tag) String() string {
	if t >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// ParseTag returns the Tag named s, ignoring case.
func ParseTag(s string) (Tag, error) {
	for i, name := range tagNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return Tag(i), nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownTag, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	parsed, err := ParseTag(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
