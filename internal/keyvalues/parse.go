package keyvalues

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse tokenizes and builds src in one step
func Parse(src string) (*KeyValues, error) {
	return ParseWithOptions(src, Options{})
}

// ParseWithOptions is Parse with explicit lexer options
func ParseWithOptions(src string, opts Options) (*KeyValues, error) {
	tokens, err := TokenizeWithOptions(src, opts)
	if err != nil {
		return nil, err
	}
	return Build(tokens)
}

// ParseSequence parses a document made only of anonymous blocks
func ParseSequence(src string, opts Options) ([]*KeyValues, error) {
	tokens, err := TokenizeWithOptions(src, opts)
	if err != nil {
		return nil, err
	}
	return BuildSequence(tokens)
}

// ParseReader reads r to the end before parsing. A leading UTF-8 byte order
// mark is dropped.
func ParseReader(r io.Reader, opts Options) (*KeyValues, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading keyvalues: %w", err)
	}
	return ParseWithOptions(string(bytes.TrimPrefix(data, utf8BOM)), opts)
}

// ParseFile reads a whole file (.vmt, .res, ...) and parses it. Syntax errors
// keep their *Error so errors.As still reaches the position.
func ParseFile(path string, opts Options) (*KeyValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	kv, err := ParseWithOptions(string(bytes.TrimPrefix(data, utf8BOM)), opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return kv, nil
}
