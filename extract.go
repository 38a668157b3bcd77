// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package zipbrowser

import (
	"bytes"
	"compress/flate"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/mdzhigarov/zipbrowser/internal/crcreader"
	"github.com/mdzhigarov/zipbrowser/internal/headercache"
	"github.com/mdzhigarov/zipbrowser/internal/traceid"
)

const localHeaderFixedLen = 30

// memberExtractor resolves one Entry's payload range and returns a streaming
// decompressor over it. The Central Directory alone can't locate the
// payload: the Local File Header must be re-read, because its name and
// extra-field lengths may differ from the Central Directory's. Its size
// fields are zero (or ZIP64 sentinels) in a streaming-mode archive, in which
// case the Central Directory's compressed size is used instead.
type memberExtractor struct {
	f        *rangeFetcher
	cache    *headercache.Cache
	validate bool
}

// extract fetches the whole compressed payload of e into memory and returns a
// ReadCloser that decompresses it as it is read; its Read calls do not touch
// the network.
func (x *memberExtractor) extract(ctx context.Context, e Entry) (io.ReadCloser, error) {
	op := traceid.New(e.Name)

	local, err := x.localHeader(ctx, e, op)
	if err != nil {
		return nil, err
	}

	compressedSize := local.CompressedSize
	if isZip64OrStreamingFormat(local.CompressedSize, local.UncompressedSize) {
		slog.Debug("streamingSizeFallback", "op", op, "name", e.Name,
			"localCompressedSize", local.CompressedSize, "centralDirCompressedSize", e.CompressedSize)
		compressedSize = e.CompressedSize
	}

	payloadStart := e.LocalHeaderOffset + localHeaderFixedLen + int64(local.FileNameLength) + int64(local.ExtraFieldLength)
	payloadEnd := payloadStart + compressedSize - 1
	if compressedSize == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	slog.Debug("fetchPayload", "op", op, "name", e.Name, "start", payloadStart, "end", payloadEnd)
	raw, err := x.f.fetch(ctx, payloadStart, payloadEnd)
	if err != nil {
		return nil, err
	}

	rc, err := x.decompress(e, raw)
	if err != nil {
		return nil, err
	}

	if x.validate {
		rc = crcreader.New(rc, e.UncompressedSize, e.CRC32, ErrChecksum)
	}
	return rc, nil
}

// isZip64OrStreamingFormat reports whether the Local Header's own size
// fields cannot be trusted: either they carry the ZIP64 32-bit sentinel, or
// they are zero because the actual sizes were deferred to a data descriptor
// written after the payload (the "streaming" case, used when a writer didn't
// know the compressed size up front). Both cases get the same treatment:
// fall back to the Central Directory's sizes.
func isZip64OrStreamingFormat(compressedSize, uncompressedSize int64) bool {
	return compressedSize == sentinel32 || uncompressedSize == sentinel32 ||
		compressedSize == 0 || uncompressedSize == 0
}

// localHeader re-reads the member's own Local File Header, consulting and
// populating the header cache so a repeated Get for the same offset skips
// the 30-byte re-fetch. Local Header name/extra-field lengths may diverge
// from the Central Directory's (ZIP permits different extras in each), so
// the payload offset can only be computed from this re-read.
func (x *memberExtractor) localHeader(ctx context.Context, e Entry, op string) (headercache.Header, error) {
	if h, ok := x.cache.Get(e.LocalHeaderOffset); ok {
		return h, nil
	}

	hdr, err := x.f.fetch(ctx, e.LocalHeaderOffset, e.LocalHeaderOffset+localHeaderFixedLen-1)
	if err != nil {
		return headercache.Header{}, err
	}
	if len(hdr) < localHeaderFixedLen || binary.LittleEndian.Uint32(hdr[0:4]) != sigLocalHeader {
		return headercache.Header{}, ErrInvalidLocalHeader
	}

	h := headercache.Header{
		CompressionMethod: binary.LittleEndian.Uint16(hdr[8:10]),
		CompressedSize:    int64(binary.LittleEndian.Uint32(hdr[18:22])),
		UncompressedSize:  int64(binary.LittleEndian.Uint32(hdr[22:26])),
		FileNameLength:    int(binary.LittleEndian.Uint16(hdr[26:28])),
		ExtraFieldLength:  int(binary.LittleEndian.Uint16(hdr[28:30])),
	}

	slog.Debug("localHeaderRead", "op", op, "name", e.Name,
		"fileNameLength", h.FileNameLength, "extraFieldLength", h.ExtraFieldLength)

	x.cache.Add(e.LocalHeaderOffset, h)
	return h, nil
}

// decompress dispatches on the Central Directory's compression method. Only
// stored and raw-deflate are serviceable; every other method is rejected
// explicitly rather than handed back as if it were stored.
func (x *memberExtractor) decompress(e Entry, raw []byte) (io.ReadCloser, error) {
	switch e.CompressionMethod {
	case 0:
		return io.NopCloser(bytes.NewReader(raw)), nil
	case 8:
		return &flateReadCloser{fr: flate.NewReader(bytes.NewReader(raw))}, nil
	default:
		return nil, fmt.Errorf("%w: method %d for %q", ErrUnsupportedCompressionMethod, e.CompressionMethod, e.Name)
	}
}

// flateReadCloser turns compress/flate decode errors into ErrDecompressionFailed
// so callers don't need to know the stdlib decoder is involved at all.
type flateReadCloser struct {
	fr io.ReadCloser
}

func (r *flateReadCloser) Read(p []byte) (int, error) {
	n, err := r.fr.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %w", ErrDecompressionFailed, err)
	}
	return n, err
}

func (r *flateReadCloser) Close() error { return r.fr.Close() }
