// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package zipbrowser

import (
	"context"
	"encoding/binary"
	"log/slog"
)

const (
	sigEOCD         = 0x06054b50
	sigZip64Locator = 0x07064b50
	sigZip64EOCD    = 0x06064b50
	sigCentralDir   = 0x02014b50
	sigLocalHeader  = 0x04034b50

	eocdInitialWindow = 1024
	eocdMaxWindow     = 65536
	eocdRecordLen     = 22
	zip64LocatorLen   = 20
	zip64EOCDLen      = 56
)

// endOfCentralDirectory is the resolved location of the Central Directory,
// whichever of the standard or ZIP64 trailer chains produced it.
type endOfCentralDirectory struct {
	centralDirectoryOffset int64
	centralDirectorySize   int64
	totalEntries           uint64
}

// locateTrailer finds the EOCD record by scanning backwards from the end of
// the archive. The EOCD carries a variable-length comment field of unknown
// size, so its offset can't be computed directly; instead this fetches a
// trailing window, searches it for the signature, and doubles the window
// and retries when the signature isn't found (the comment may be larger
// than the current window, or entirely absent and the window just missed
// it). Once found, it follows the ZIP64 locator chain when the standard
// EOCD carries 0xFFFF/0xFFFFFFFF sentinels.
func locateTrailer(ctx context.Context, f *rangeFetcher, archiveSize int64) (endOfCentralDirectory, error) {
	window := int64(eocdInitialWindow)

	for {
		if window > archiveSize {
			window = archiveSize
		}
		start := archiveSize - window

		buf, err := f.fetch(ctx, start, archiveSize-1)
		if err != nil {
			return endOfCentralDirectory{}, err
		}

		for i := len(buf) - 4; i >= 0; i-- {
			if binary.LittleEndian.Uint32(buf[i:]) != sigEOCD {
				continue
			}
			if len(buf)-i < eocdRecordLen {
				// Signature found too close to the end of the archive to
				// start a full 22-byte record, so these are comment bytes,
				// not the EOCD: keep scanning backwards.
				continue
			}
			return parseEOCD(ctx, f, archiveSize, buf[i:i+eocdRecordLen], start+int64(i))
		}

		if window >= archiveSize || window > eocdMaxWindow {
			return endOfCentralDirectory{}, ErrEOCDNotFound
		}
		slog.Debug("eocdSearchWiden", "window", window*2)
		window *= 2
	}
}

// parseEOCD interprets a 22-byte EOCD record found at absolute offset
// eocdOffset and, if it carries ZIP64 sentinels, follows the locator chain.
func parseEOCD(ctx context.Context, f *rangeFetcher, archiveSize int64, rec []byte, eocdOffset int64) (endOfCentralDirectory, error) {
	totalEntries := uint64(binary.LittleEndian.Uint16(rec[10:12]))
	centralDirSize := int64(binary.LittleEndian.Uint32(rec[12:16]))
	centralDirOffset := int64(binary.LittleEndian.Uint32(rec[16:20]))

	isZip64 := centralDirSize == 0xffffffff || centralDirOffset == 0xffffffff || totalEntries == 0xffff
	if isZip64 {
		return locateZip64Trailer(ctx, f, archiveSize, eocdOffset)
	}

	eocd := endOfCentralDirectory{
		centralDirectoryOffset: centralDirOffset,
		centralDirectorySize:   centralDirSize,
		totalEntries:           totalEntries,
	}
	if err := validateTrailerGeometry(eocd, archiveSize); err != nil {
		return endOfCentralDirectory{}, err
	}
	return eocd, nil
}

// locateZip64Trailer follows the ZIP64 End of Central Directory Locator
// (immediately preceding the standard EOCD) to the ZIP64 EOCD record itself.
func locateZip64Trailer(ctx context.Context, f *rangeFetcher, archiveSize, eocdOffset int64) (endOfCentralDirectory, error) {
	locatorStart := eocdOffset - zip64LocatorLen
	if locatorStart < 0 {
		return endOfCentralDirectory{}, ErrInvalidZip64Locator
	}

	locator, err := f.fetch(ctx, locatorStart, eocdOffset-1)
	if err != nil {
		return endOfCentralDirectory{}, err
	}
	if len(locator) < zip64LocatorLen || binary.LittleEndian.Uint32(locator[0:4]) != sigZip64Locator {
		return endOfCentralDirectory{}, ErrInvalidZip64Locator
	}
	zip64EOCDOffset := int64(binary.LittleEndian.Uint64(locator[8:16]))

	rec, err := f.fetch(ctx, zip64EOCDOffset, zip64EOCDOffset+zip64EOCDLen-1)
	if err != nil {
		return endOfCentralDirectory{}, err
	}
	if len(rec) < zip64EOCDLen || binary.LittleEndian.Uint32(rec[0:4]) != sigZip64EOCD {
		return endOfCentralDirectory{}, ErrInvalidZip64EOCD
	}

	totalEntries := binary.LittleEndian.Uint64(rec[24:32])
	centralDirSize := int64(binary.LittleEndian.Uint64(rec[40:48]))
	centralDirOffset := int64(binary.LittleEndian.Uint64(rec[48:56]))

	eocd := endOfCentralDirectory{
		centralDirectoryOffset: centralDirOffset,
		centralDirectorySize:   centralDirSize,
		totalEntries:           totalEntries,
	}
	if err := validateTrailerGeometry(eocd, archiveSize); err != nil {
		return endOfCentralDirectory{}, err
	}
	return eocd, nil
}

func validateTrailerGeometry(eocd endOfCentralDirectory, archiveSize int64) error {
	if eocd.centralDirectoryOffset < 0 || eocd.centralDirectoryOffset >= archiveSize {
		return ErrInvalidTrailer
	}
	if eocd.centralDirectorySize < 0 || eocd.centralDirectorySize > archiveSize {
		return ErrInvalidTrailer
	}
	if eocd.centralDirectoryOffset+eocd.centralDirectorySize > archiveSize {
		return ErrInvalidTrailer
	}
	return nil
}
