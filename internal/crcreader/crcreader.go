// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package crcreader wraps a decompressed member's io.ReadCloser with an
// opt-in CRC-32 validator, checked once the declared size has been read in
// full.
package crcreader

import (
	"hash"
	"hash/crc32"
	"io"
)

// New wraps rc so that once size bytes have been read from it, the running
// CRC-32 is compared against want. A mismatch surfaces as mismatch from the
// Read call that completes the member, and every Read after that returns
// mismatch as well.
func New(rc io.ReadCloser, size int64, want uint32, mismatch error) io.ReadCloser {
	return &reader{rc: rc, remain: size, want: want, mismatch: mismatch, hash: crc32.NewIEEE()}
}

type reader struct {
	rc       io.ReadCloser
	remain   int64
	want     uint32
	mismatch error
	hash     hash.Hash32 // nil once the checksum has been judged, good or bad
	failed   bool
}

func (r *reader) Read(b []byte) (int, error) {
	if r.failed {
		return 0, r.mismatch
	}
	n, err := r.rc.Read(b)
	if n > 0 && r.hash != nil {
		r.hash.Write(b[:n])
		r.remain -= int64(n)
		if r.remain <= 0 && r.hash.Sum32() != r.want {
			r.failed = true
			r.hash = nil
			return n, r.mismatch
		}
		if r.remain <= 0 {
			r.hash = nil
		}
	}
	return n, err
}

func (r *reader) Close() error { return r.rc.Close() }
