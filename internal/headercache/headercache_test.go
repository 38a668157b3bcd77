// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package headercache

import "testing"

func TestCacheAddGet(t *testing.T) {
	c := New(4)
	h := Header{CompressionMethod: 8, CompressedSize: 10, UncompressedSize: 20, FileNameLength: 5, ExtraFieldLength: 0}
	c.Add(100, h)

	got, ok := c.Get(100)
	if !ok {
		t.Fatal("Get(100) not found after Add")
	}
	if got != h {
		t.Fatalf("Get(100) = %+v, want %+v", got, h)
	}
}

func TestCacheMiss(t *testing.T) {
	c := New(4)
	if _, ok := c.Get(999); ok {
		t.Fatal("Get on empty cache returned ok=true")
	}
}
