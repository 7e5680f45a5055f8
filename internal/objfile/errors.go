package objfile

import "errors"

// Static errors
var (
	// ErrUnrecognizedFormat indicates the data does not start with the magic
	// number of any known container format.
	ErrUnrecognizedFormat = errors.New("unrecognized object file format")

	// ErrMalformedELF indicates the data has an ELF magic number but could
	// not be parsed.
	ErrMalformedELF = errors.New("malformed ELF file")

	// ErrMalformedObject indicates a recognized non-ELF container could not
	// be parsed.
	ErrMalformedObject = errors.New("malformed object file")

	// ErrNotRegularFile indicates the path is not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrFileTooLarge indicates the file exceeds the maximum size for analysis.
	ErrFileTooLarge = errors.New("file too large")
)
