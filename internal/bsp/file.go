package bsp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jchantrell/sourcedb/internal/keyvalues"
)

var (
	ErrLumpIndex      = errors.New("lump index out of range")
	ErrCompressedLump = errors.New("lump is LZMA compressed")
)

// lzmaMagic opens every compressed lump
var lzmaMagic = []byte("LZMA")

// File is an opened BSP with its decoded header
type File struct {
	Header *Header

	data   io.ReaderAt
	size   int64
	closer io.Closer
}

// Open reads the header of the BSP at path. The file stays open for lump
// reads until Close.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening BSP file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat BSP file: %w", err)
	}

	bsp, err := NewFile(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	bsp.closer = f

	slog.Debug("Opened BSP", "path", path, "version", bsp.Header.Version, "revision", bsp.Header.MapRevision)
	return bsp, nil
}

// NewFile decodes the header from r, which holds size bytes of BSP data
func NewFile(r io.ReaderAt, size int64) (*File, error) {
	header, err := ReadHeader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, err
	}

	return &File{
		Header: header,
		data:   r,
		size:   size,
	}, nil
}

// Close releases the underlying file, if Open created one
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}

// RawLump returns the lump's bytes as stored. Absent lumps return nil.
func (f *File) RawLump(idx LumpIndex) ([]byte, error) {
	lump, err := f.Header.Lump(idx)
	if err != nil {
		return nil, err
	}

	if !lump.Exists() {
		return nil, nil
	}

	end := int64(lump.Offset) + int64(lump.Length)
	if end > f.size {
		return nil, fmt.Errorf("lump %s ends at %d, file is %d bytes: %w", idx, end, f.size, ErrUnexpectedEOF)
	}

	buf := make([]byte, lump.Length)
	if _, err := io.ReadFull(io.NewSectionReader(f.data, int64(lump.Offset), int64(lump.Length)), buf); err != nil {
		return nil, fmt.Errorf("reading lump %s: %w", idx, err)
	}

	return buf, nil
}

// LumpData returns the lump's uncompressed bytes. LZMA lumps are reported
// with ErrCompressedLump.
func (f *File) LumpData(idx LumpIndex) ([]byte, error) {
	data, err := f.RawLump(idx)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(data, lzmaMagic) {
		return nil, fmt.Errorf("lump %s: %w", idx, ErrCompressedLump)
	}

	return data, nil
}

// EntityText returns the entity lump as text without its trailing NUL. A
// map without an entity lump yields "". VBSP always writes at least
// worldspawn, so that only happens for damaged files.
func (f *File) EntityText() (string, error) {
	data, err := f.LumpData(LumpEntities)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(data, "\x00")), nil
}

// Entities parses the entity lump, one tree per entity
func (f *File) Entities() ([]*keyvalues.KeyValues, error) {
	text, err := f.EntityText()
	if err != nil {
		return nil, err
	}

	entities, err := keyvalues.ParseSequence(text, keyvalues.Options{})
	if err != nil {
		return nil, fmt.Errorf("parsing entity lump: %w", err)
	}

	slog.Debug("Parsed entity lump", "entities", len(entities), "bytes", len(text))
	return entities, nil
}
