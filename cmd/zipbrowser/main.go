// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Command zipbrowser is a minimal demonstration driver: it builds a
// zipbrowser.Browser for the archive named by ZIP_FILE_URL, lists its
// members, and fetches one candidate file. This is reference usage, not
// part of the module's public surface.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mdzhigarov/zipbrowser"
)

var candidateFiles = []string{
	"metadata/metadata.yml",
	"README.md",
	"README.txt",
	"index.html",
	"manifest.yml",
}

func main() {
	if err := run(); err != nil {
		slog.Error("zipbrowser demo failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	url := os.Getenv("ZIP_FILE_URL")
	user := os.Getenv("ARTIFACTORY_USERNAME")
	pass := os.Getenv("ARTIFACTORY_PASSWORD")
	if url == "" {
		fmt.Fprintln(os.Stderr, "missing required environment variable ZIP_FILE_URL")
		fmt.Fprintln(os.Stderr, "example usage:")
		fmt.Fprintln(os.Stderr, "  export ZIP_FILE_URL=https://example.com/path/to/archive.zip")
		fmt.Fprintln(os.Stderr, "  export ARTIFACTORY_USERNAME=myuser   # optional")
		fmt.Fprintln(os.Stderr, "  export ARTIFACTORY_PASSWORD=mypass   # optional")
		os.Exit(1)
	}

	ctx := context.Background()

	slog.Info("building browser", "url", url)
	builder := zipbrowser.NewBuilder(url)
	if user != "" && pass != "" {
		builder = builder.WithBasicAuth(user, pass)
	}

	browser, err := builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	defer browser.Close()

	slog.Info("initialized", "sizeBytes", browser.Size())

	names, err := browser.List(ctx)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	slog.Info("listed members", "count", len(names))
	for _, name := range names {
		fmt.Println(" ", name)
	}

	target := pickTarget(names)
	if target == "" {
		slog.Warn("no suitable member found to fetch")
		return nil
	}

	slog.Info("fetching", "name", target)
	rc, found, err := browser.Get(ctx, target)
	if err != nil {
		return fmt.Errorf("get %q: %w", target, err)
	}
	if !found {
		slog.Warn("target not found in archive", "name", target)
		return nil
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("reading %q: %w", target, err)
	}

	fmt.Println("content:")
	if len(content) > 500 {
		fmt.Printf("%s...\n", content[:500])
	} else {
		fmt.Printf("%s\n", content)
	}
	return nil
}

func pickTarget(names []string) string {
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, candidate := range candidateFiles {
		if have[candidate] {
			return candidate
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}
