// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package zipbrowser

import "log/slog"

// index is the immutable, construct-then-publish mapping from member name to
// Entry. It is built once from an ordered traversal of the Central Directory
// and never mutated afterwards, so concurrent Browser.List/Browser.Get calls
// need no lock around it.
type index struct {
	byName map[string]Entry
	names  []string // insertion order from Central Directory traversal
}

// buildIndex records entries in traversal order; when two records share a
// name, the later one wins, matching a plain map overwrite during a linear
// walk. A duplicate name usually signals a malformed or hand-edited archive,
// so the overwrite is logged rather than passed over silently.
func buildIndex(entries []Entry) *index {
	idx := &index{
		byName: make(map[string]Entry, len(entries)),
		names:  make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		if _, dup := idx.byName[e.Name]; dup {
			slog.Warn("duplicateEntryName", "name", e.Name)
		} else {
			idx.names = append(idx.names, e.Name)
		}
		idx.byName[e.Name] = e
	}
	return idx
}

// list returns the ordered sequence of member names, in Central Directory
// traversal order. Calling it repeatedly returns identical content in
// identical order, since the underlying slice is never reordered after
// buildIndex populates it.
func (idx *index) list() []string {
	out := make([]string, len(idx.names))
	copy(out, idx.names)
	return out
}

// find looks up a member by its exact, byte-for-byte name.
func (idx *index) find(name string) (Entry, bool) {
	e, ok := idx.byName[name]
	return e, ok
}
