// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package zipbrowser

import (
	"context"
	"encoding/binary"
	"strings"
)

const (
	centralDirFixedLen = 46
	zip64ExtraHeaderID = 0x0001
	sentinel32         = 0xffffffff
)

// parseCentralDirectory fetches exactly eocd.centralDirectorySize bytes
// starting at eocd.centralDirectoryOffset and walks it into an ordered list
// of Entry records. A signature mismatch ends iteration early, tolerating
// trailing padding after the last valid record.
func parseCentralDirectory(ctx context.Context, f *rangeFetcher, eocd endOfCentralDirectory) ([]Entry, error) {
	if eocd.centralDirectorySize == 0 {
		return nil, nil
	}

	data, err := f.fetch(ctx, eocd.centralDirectoryOffset, eocd.centralDirectoryOffset+eocd.centralDirectorySize-1)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for len(data) >= centralDirFixedLen {
		if binary.LittleEndian.Uint32(data[0:4]) != sigCentralDir {
			break
		}

		compressionMethod := binary.LittleEndian.Uint16(data[10:12])
		crc32 := binary.LittleEndian.Uint32(data[16:20])
		compressedSize := int64(binary.LittleEndian.Uint32(data[20:24]))
		uncompressedSize := int64(binary.LittleEndian.Uint32(data[24:28]))
		fileNameLength := int(binary.LittleEndian.Uint16(data[28:30]))
		extraFieldLength := int(binary.LittleEndian.Uint16(data[30:32]))
		fileCommentLength := int(binary.LittleEndian.Uint16(data[32:34]))
		externalAttributes := binary.LittleEndian.Uint32(data[38:42])
		localHeaderOffset := int64(binary.LittleEndian.Uint32(data[42:46]))

		recordLen := centralDirFixedLen + fileNameLength + extraFieldLength + fileCommentLength
		if len(data) < recordLen {
			break
		}

		name := string(data[centralDirFixedLen : centralDirFixedLen+fileNameLength])
		extra := data[centralDirFixedLen+fileNameLength : centralDirFixedLen+fileNameLength+extraFieldLength]

		if uncompressedSize == sentinel32 || compressedSize == sentinel32 || localHeaderOffset == sentinel32 {
			uncompressedSize, compressedSize, localHeaderOffset = resolveZip64Extra(
				extra, uncompressedSize, compressedSize, localHeaderOffset)
		}

		isDirectory := strings.HasSuffix(name, "/") || externalAttributes&0x10 != 0

		entries = append(entries, Entry{
			Name:              name,
			LocalHeaderOffset: localHeaderOffset,
			CompressedSize:    compressedSize,
			UncompressedSize:  uncompressedSize,
			CompressionMethod: compressionMethod,
			CRC32:             crc32,
			IsDirectory:       isDirectory,
			FileNameLength:    fileNameLength,
			ExtraFieldLength:  extraFieldLength,
		})

		data = data[recordLen:]
	}

	return entries, nil
}

// resolveZip64Extra walks the extra-field TLV blob for a 0x0001 ZIP64
// extended-information record and substitutes any field that held the
// 0xFFFFFFFF sentinel in the Central Directory, in the fixed order the
// format requires: uncompressed size, compressed size, local header offset.
// Unknown extra
// records are skipped by their declared size.
func resolveZip64Extra(extra []byte, uncompressedSize, compressedSize, localHeaderOffset int64) (int64, int64, int64) {
	for len(extra) >= 4 {
		headerID := binary.LittleEndian.Uint16(extra[0:2])
		dataSize := int(binary.LittleEndian.Uint16(extra[2:4]))
		if len(extra) < 4+dataSize {
			break
		}
		field := extra[4 : 4+dataSize]
		extra = extra[4+dataSize:]

		if headerID != zip64ExtraHeaderID {
			continue
		}

		if uncompressedSize == sentinel32 && len(field) >= 8 {
			uncompressedSize = int64(binary.LittleEndian.Uint64(field[0:8]))
			field = field[8:]
		}
		if compressedSize == sentinel32 && len(field) >= 8 {
			compressedSize = int64(binary.LittleEndian.Uint64(field[0:8]))
			field = field[8:]
		}
		if localHeaderOffset == sentinel32 && len(field) >= 8 {
			localHeaderOffset = int64(binary.LittleEndian.Uint64(field[0:8]))
			field = field[8:]
		}
		break
	}
	return uncompressedSize, compressedSize, localHeaderOffset
}
