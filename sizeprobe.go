// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package zipbrowser

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// probeSize issues a metadata-only HEAD request and returns the archive's
// total length from the Content-Length response header. It is the sole
// source of truth for archiveSize: every later geometry check (EOCD search,
// central directory bounds, local header offsets) is validated against it.
func probeSize(ctx context.Context, url string, client HTTPDoer, authHeader string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("zipbrowser: building size probe request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("zipbrowser: size probe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &HTTPStatusError{StatusCode: resp.StatusCode}
	}

	raw := resp.Header.Get("Content-Length")
	if raw == "" {
		return 0, ErrMissingContentLength
	}

	size, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || size < 0 {
		return 0, ErrMalformedContentLength
	}

	return size, nil
}
