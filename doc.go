// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package zipbrowser lists and extracts individual members from a ZIP archive
// that lives on a remote HTTP server, without ever downloading the whole
// archive.
//
// A [Browser] parses only the archive's trailer structures — the End of
// Central Directory record, the ZIP64 locator chain when present, and the
// Central Directory itself — using HTTP byte-range requests, then services
// each [Browser.Get] with a range request for the member's Local File Header
// (skipped when that header is already cached) and one for its payload,
// followed by DEFLATE decompression for deflated members. The server must
// honor Range requests with
// 206 Partial Content; see [ErrRangeUnsupported].
package zipbrowser
