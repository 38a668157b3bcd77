// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package traceid generates short correlation identifiers for log records
// emitted while servicing a Get call, so that interleaved debug
// output from concurrent operations on the same Browser can be told apart.
package traceid

import (
	"encoding/binary"
	"time"

	"github.com/cespare/xxhash/v2"
)

// New returns an 8-hex-digit identifier derived from subject and the
// current time, suitable for a log field such as slog.String("op", ...).
func New(subject string) string {
	var h xxhash.Digest
	h.WriteString(subject)
	binary.Write(&h, binary.BigEndian, time.Now().UnixNano())
	return uint32hex(uint32(h.Sum64()))
}

func uint32hex(v uint32) string {
	const digits = "0123456789abcdef"
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = digits[v&0xf]
		v >>= 4
	}
	return string(b)
}
