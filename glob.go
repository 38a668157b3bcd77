// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package zipbrowser

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob returns the member names matching a doublestar pattern (supporting
// "**" for arbitrary path depth), in the same order they appear from List.
func (br *Browser) Glob(pattern string) ([]string, error) {
	if br.closed.Load() {
		return nil, ErrBrowserClosed
	}

	var matches []string
	for _, name := range br.idx.names {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("zipbrowser: invalid glob pattern %q: %w", pattern, err)
		}
		if ok {
			matches = append(matches, name)
		}
	}
	return matches, nil
}
