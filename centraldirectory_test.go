// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package zipbrowser

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
)

// buildCentralDirectoryRecord assembles one raw Central Directory record,
// optionally with a ZIP64 extra field substituting sentinel-valued fields.
func buildCentralDirectoryRecord(name string, compressedSize, uncompressedSize, localHeaderOffset int64, zip64 bool) []byte {
	var extra []byte
	cs, us, lho := compressedSize, uncompressedSize, localHeaderOffset
	if zip64 {
		var field bytes.Buffer
		binary.Write(&field, binary.LittleEndian, uint64(uncompressedSize))
		binary.Write(&field, binary.LittleEndian, uint64(compressedSize))
		binary.Write(&field, binary.LittleEndian, uint64(localHeaderOffset))

		var e bytes.Buffer
		binary.Write(&e, binary.LittleEndian, uint16(zip64ExtraHeaderID))
		binary.Write(&e, binary.LittleEndian, uint16(field.Len()))
		e.Write(field.Bytes())
		extra = e.Bytes()

		cs, us, lho = sentinel32, sentinel32, sentinel32
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(sigCentralDir))
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // version made by
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // version needed
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // general purpose flag
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // compression method
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // last mod time
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // last mod date
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // crc32
	binary.Write(&buf, binary.LittleEndian, uint32(cs))
	binary.Write(&buf, binary.LittleEndian, uint32(us))
	binary.Write(&buf, binary.LittleEndian, uint16(len(name)))
	binary.Write(&buf, binary.LittleEndian, uint16(len(extra)))
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // file comment length
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // disk number start
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // internal attributes
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // external attributes
	binary.Write(&buf, binary.LittleEndian, uint32(lho))
	buf.WriteString(name)
	buf.Write(extra)
	return buf.Bytes()
}

func TestParseCentralDirectoryZip64Extra(t *testing.T) {
	rec := buildCentralDirectoryRecord("big.bin", 50, 100, 12345, true)
	f := newTestFetcher(rec)

	eocd := endOfCentralDirectory{centralDirectoryOffset: 0, centralDirectorySize: int64(len(rec))}
	entries, err := parseCentralDirectory(context.Background(), f, eocd)
	if err != nil {
		t.Fatalf("parseCentralDirectory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Name != "big.bin" {
		t.Fatalf("Name = %q", e.Name)
	}
	if e.CompressedSize != 50 || e.UncompressedSize != 100 || e.LocalHeaderOffset != 12345 {
		t.Fatalf("sizes/offset = %d/%d/%d, want 50/100/12345", e.CompressedSize, e.UncompressedSize, e.LocalHeaderOffset)
	}
}

func TestParseCentralDirectoryPlainRecord(t *testing.T) {
	rec := buildCentralDirectoryRecord("small.txt", 3, 3, 0, false)
	f := newTestFetcher(rec)

	eocd := endOfCentralDirectory{centralDirectoryOffset: 0, centralDirectorySize: int64(len(rec))}
	entries, err := parseCentralDirectory(context.Background(), f, eocd)
	if err != nil {
		t.Fatalf("parseCentralDirectory: %v", err)
	}
	if len(entries) != 1 || entries[0].CompressedSize != 3 {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestParseCentralDirectoryEmpty(t *testing.T) {
	entries, err := parseCentralDirectory(context.Background(), nil, endOfCentralDirectory{})
	if err != nil {
		t.Fatalf("parseCentralDirectory: %v", err)
	}
	if entries != nil {
		t.Fatalf("entries = %v, want nil", entries)
	}
}

func TestParseCentralDirectoryTrailingPaddingIgnored(t *testing.T) {
	rec := buildCentralDirectoryRecord("small.txt", 3, 3, 0, false)
	rec = append(rec, []byte{0, 0, 0, 0}...) // padding too short to be a record

	f := newTestFetcher(rec)
	eocd := endOfCentralDirectory{centralDirectoryOffset: 0, centralDirectorySize: int64(len(rec))}
	entries, err := parseCentralDirectory(context.Background(), f, eocd)
	if err != nil {
		t.Fatalf("parseCentralDirectory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
}
