// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package zipbrowser

import (
	"context"
	"slices"
	"testing"
)

func TestGlob(t *testing.T) {
	archive := buildZip([]zipMember{
		{name: "file1.txt", content: "a"},
		{name: "subdir/file2.txt", content: "b"},
		{name: "subdir/nested/file3.txt", content: "c"},
		{name: "readme.md", content: "d"},
	})
	srv := rangeServer(archive, true)
	defer srv.Close()

	br, err := NewBuilder(srv.URL).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer br.Close()

	matches, err := br.Glob("**/*.txt")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	want := []string{"file1.txt", "subdir/file2.txt", "subdir/nested/file3.txt"}
	for _, w := range want {
		if !slices.Contains(matches, w) {
			t.Fatalf("Glob(**/*.txt) = %v, missing %q", matches, w)
		}
	}
	if slices.Contains(matches, "readme.md") {
		t.Fatalf("Glob(**/*.txt) unexpectedly matched readme.md")
	}
}

func TestGlobAfterClose(t *testing.T) {
	archive := buildZip([]zipMember{{name: "a.txt", content: "x"}})
	srv := rangeServer(archive, true)
	defer srv.Close()

	br, err := NewBuilder(srv.URL).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	br.Close()

	if _, err := br.Glob("*"); err != ErrBrowserClosed {
		t.Fatalf("Glob() after Close err = %v, want ErrBrowserClosed", err)
	}
}
