package bsp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const entityLump = `{
"world_maxs" "1024 1024 512"
"classname" "worldspawn"
}
{
"origin" "0 0 64"
"classname" "info_player_start"
}
` + "\x00"

// buildBSP lays out a header followed by the given lumps in slot order
func buildBSP(t *testing.T, lumps map[LumpIndex][]byte) []byte {
	t.Helper()

	h := Header{Ident: Ident, Version: 20, MapRevision: 7}
	var payload bytes.Buffer
	offset := int32(HeaderSize)
	for idx := LumpIndex(0); idx < LumpCount; idx++ {
		data, ok := lumps[idx]
		if !ok {
			continue
		}
		h.Lumps[idx] = Lump{Offset: offset, Length: int32(len(data))}
		payload.Write(data)
		offset += int32(len(data))
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		t.Fatalf("write header: %v", err)
	}
	buf.Write(payload.Bytes())
	return buf.Bytes()
}

func TestHeaderSize(t *testing.T) {
	if size := binary.Size(Header{}); size != HeaderSize {
		t.Fatalf("Expected header size %d, got %d", HeaderSize, size)
	}
}

func TestParseHeader_Offsets(t *testing.T) {
	data := make([]byte, HeaderSize)
	copy(data[0:], "VBSP")
	binary.LittleEndian.PutUint32(data[4:], 21)

	// lump 40 (PakFile) starts at 8 + 40*16
	base := 8 + int(LumpPakFile)*16
	binary.LittleEndian.PutUint32(data[base:], 4096)
	binary.LittleEndian.PutUint32(data[base+4:], 512)
	binary.LittleEndian.PutUint32(data[base+8:], 1)
	copy(data[base+12:], "abcd")
	binary.LittleEndian.PutUint32(data[HeaderSize-4:], 1234)

	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader() failed: %v", err)
	}
	if h.Version != 21 || h.MapRevision != 1234 {
		t.Errorf("Expected version 21 revision 1234, got %d %d", h.Version, h.MapRevision)
	}

	lump, err := h.Lump(LumpPakFile)
	if err != nil {
		t.Fatalf("Lump() failed: %v", err)
	}
	want := Lump{Offset: 4096, Length: 512, Version: 1, FourCC: [4]byte{'a', 'b', 'c', 'd'}}
	if lump != want {
		t.Errorf("Expected %+v, got %+v", want, lump)
	}
	if !lump.Exists() {
		t.Error("Expected PakFile lump to exist")
	}
	if h.Lumps[LumpEntities].Exists() {
		t.Error("Expected empty Entities slot")
	}
}

func TestParseHeader_Errors(t *testing.T) {
	if _, err := ParseHeader([]byte("VBSP")); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("Expected ErrUnexpectedEOF for short data, got %v", err)
	}

	data := make([]byte, HeaderSize)
	copy(data, "IBSP")
	_, err := ParseHeader(data)
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("Expected ErrInvalidIdentifier, got %v", err)
	}
	var identErr *IdentifierError
	if !errors.As(err, &identErr) || identErr.Found != 0x50534249 {
		t.Errorf("Expected IBSP identifier in error, got %v", err)
	}
}

func TestReadHeader_Truncated(t *testing.T) {
	data := buildBSP(t, nil)
	if _, err := ReadHeader(bytes.NewReader(data[:100])); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("Expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestLumpIndex_String(t *testing.T) {
	tests := map[LumpIndex]string{
		LumpEntities:               "Entities",
		LumpGameLump:               "GameLump",
		LumpPakFile:                "PakFile",
		LumpDisplacementMultiblend: "DisplacementMultiblend",
		LumpIndex(64):              "LumpIndex(64)",
	}
	for idx, want := range tests {
		if got := idx.String(); got != want {
			t.Errorf("LumpIndex(%d).String() = %q, want %q", int(idx), got, want)
		}
	}
}

func TestFile_Entities(t *testing.T) {
	data := buildBSP(t, map[LumpIndex][]byte{
		LumpEntities: []byte(entityLump),
		LumpPlanes:   make([]byte, 20),
	})

	f, err := NewFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewFile() failed: %v", err)
	}

	text, err := f.EntityText()
	if err != nil {
		t.Fatalf("EntityText() failed: %v", err)
	}
	if text[len(text)-1] == 0 {
		t.Error("Expected trailing NUL to be removed")
	}

	entities, err := f.Entities()
	if err != nil {
		t.Fatalf("Entities() failed: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("Expected 2 entities, got %d", len(entities))
	}
	if c, _ := entities[0].Value("classname"); c != "worldspawn" {
		t.Errorf("Expected worldspawn first, got %q", c)
	}

	planes, err := f.LumpData(LumpPlanes)
	if err != nil || len(planes) != 20 {
		t.Errorf("Expected 20 plane bytes, got %d (%v)", len(planes), err)
	}

	missing, err := f.LumpData(LumpFaces)
	if err != nil || missing != nil {
		t.Errorf("Expected nil data for absent lump, got %v (%v)", missing, err)
	}

	if _, err := f.LumpData(LumpIndex(99)); !errors.Is(err, ErrLumpIndex) {
		t.Errorf("Expected ErrLumpIndex, got %v", err)
	}
}

func TestFile_CompressedLump(t *testing.T) {
	data := buildBSP(t, map[LumpIndex][]byte{
		LumpEntities: append([]byte("LZMA"), make([]byte, 32)...),
	})

	f, err := NewFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewFile() failed: %v", err)
	}
	if _, err := f.EntityText(); !errors.Is(err, ErrCompressedLump) {
		t.Errorf("Expected ErrCompressedLump, got %v", err)
	}

	raw, err := f.RawLump(LumpEntities)
	if err != nil || !bytes.HasPrefix(raw, []byte("LZMA")) {
		t.Errorf("Expected raw LZMA data, got %v", err)
	}
}

func TestFile_LumpPastEnd(t *testing.T) {
	data := buildBSP(t, map[LumpIndex][]byte{LumpEntities: []byte(entityLump)})
	truncated := data[:len(data)-10]

	f, err := NewFile(bytes.NewReader(truncated), int64(len(truncated)))
	if err != nil {
		t.Fatalf("NewFile() failed: %v", err)
	}
	if _, err := f.EntityText(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("Expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.bsp")
	if err := os.WriteFile(path, buildBSP(t, map[LumpIndex][]byte{LumpEntities: []byte(entityLump)}), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer f.Close()

	if f.Header.Version != 20 || f.Header.MapRevision != 7 {
		t.Errorf("Unexpected header: %s", f.Header)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.bsp")); err == nil {
		t.Error("Expected error for missing file")
	}
}
