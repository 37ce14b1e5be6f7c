// Package bsp reads the header of Source engine map files (.bsp) and the
// lumps it points at.
package bsp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderSize is ident + version + 64 lumps of 16 bytes + map revision
	HeaderSize = 1036

	// Ident is "VBSP" read as a little-endian uint32
	Ident uint32 = 0x50534256
)

var (
	ErrInvalidIdentifier = errors.New("invalid BSP identifier")
	ErrUnexpectedEOF     = errors.New("unexpected end of BSP data")
)

// IdentifierError reports the identifier found in place of "VBSP". Quake
// maps carry "IBSP", GoldSrc maps carry none.
type IdentifierError struct {
	Found uint32
}

func (e *IdentifierError) Error() string {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], e.Found)
	return fmt.Sprintf("invalid BSP identifier 0x%08X (%q), expected VBSP", e.Found, raw[:])
}

func (e *IdentifierError) Unwrap() error {
	return ErrInvalidIdentifier
}

// Header is the fixed-size table at the start of every VBSP file
type Header struct {
	Ident       uint32
	Version     int32 // 19-20 for HL2 era maps, 21 for CS:GO and Portal 2
	Lumps       [LumpCount]Lump
	MapRevision int32 // the map's iteration count as saved by Hammer
}

// ReadHeader decodes a header from the first HeaderSize bytes of r
func ReadHeader(r io.Reader) (*Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading BSP header: %w", err)
	}

	if h.Ident != Ident {
		return nil, &IdentifierError{Found: h.Ident}
	}

	return &h, nil
}

// ParseHeader decodes a header from an in-memory buffer
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrUnexpectedEOF
	}
	return ReadHeader(bytes.NewReader(data[:HeaderSize]))
}

// Lump returns the table entry for idx
func (h *Header) Lump(idx LumpIndex) (Lump, error) {
	if !idx.Valid() {
		return Lump{}, fmt.Errorf("%w: %d", ErrLumpIndex, int(idx))
	}
	return h.Lumps[idx], nil
}

func (h *Header) String() string {
	return fmt.Sprintf("BSP Version: %d, Map Revision: %d", h.Version, h.MapRevision)
}
