package parser

import (
	"io"
	"path/filepath"

	"sqlpp/internal/core"
	"sqlpp/internal/parser/toml"
)

// Parser reads a schema file and converts it to the canonical
// core.Database representation. ParseFile picks a reader by file
// extension; only ".toml" is recognized, and any other extension yields
// an *UnsupportedFormatError.
type Parser interface {
	Parse(r io.Reader) (*core.Database, error)
	ParseFile(path string) (*core.Database, error)
}

func ParseFile(path string) (*core.Database, error) {
	ext := filepath.Ext(path)

	switch ext {
	case ".toml":
		return toml.NewParser().ParseFile(path)
	default:
		return nil, &UnsupportedFormatError{Path: path}
	}
}

type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported file format: " + e.Path
}
