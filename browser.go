// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package zipbrowser

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/mdzhigarov/zipbrowser/internal/headercache"
)

const defaultHeaderCacheSize = 1024

// Browser lists and extracts members of a single remote ZIP archive. It is
// built once by a Builder and is safe for concurrent use by multiple
// goroutines: List and Get share the immutable index and the stateless
// RangeFetcher without locking them; only the Local File Header cache that
// Get consults takes its own short lock.
type Browser struct {
	url        string
	client     HTTPDoer
	authHeader string

	archiveSize int64
	idx         *index

	extractor *memberExtractor
	closed    atomic.Bool
}

// Builder configures and constructs a Browser. Its zero value is not usable;
// create one with NewBuilder.
type Builder struct {
	url        string
	client     HTTPDoer
	authHeader string
	validate   bool
	cacheSize  int
}

// NewBuilder returns a Builder targeting the archive at url. Defaults: the
// standard library's http.DefaultClient, no credentials, no CRC-32
// validation.
func NewBuilder(url string) *Builder {
	return &Builder{url: url, cacheSize: defaultHeaderCacheSize}
}

// WithBasicAuth attaches an HTTP Basic Authorization header, encoded as
// "Basic " + base64(user:pass), to every request this Browser issues.
// Both arguments must be non-empty to take effect.
func (b *Builder) WithBasicAuth(user, pass string) *Builder {
	if user == "" || pass == "" {
		return b
	}
	cred := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	b.authHeader = "Basic " + cred
	return b
}

// WithHTTPClient overrides the default HTTP collaborator. client need only
// satisfy HTTPDoer; *http.Client does.
func (b *Builder) WithHTTPClient(client HTTPDoer) *Builder {
	b.client = client
	return b
}

// WithCRCValidation enables CRC-32 checking of each member's decompressed
// bytes against the Central Directory's recorded checksum. The checksum is
// accumulated as the returned reader is read; a mismatch surfaces as
// ErrChecksum from the Read call that completes the member.
func (b *Builder) WithCRCValidation() *Builder {
	b.validate = true
	return b
}

// WithHeaderCacheSize overrides the number of Local File Header records
// cached across Get calls. The default is defaultHeaderCacheSize.
func (b *Builder) WithHeaderCacheSize(n int) *Builder {
	if n > 0 {
		b.cacheSize = n
	}
	return b
}

// Build runs the initialization pipeline: probe the archive's total size,
// locate the End of Central Directory trailer, parse the Central Directory
// it points at, then build the name index. The returned Browser is immutable
// and ready for List/Get.
func (b *Builder) Build(ctx context.Context) (*Browser, error) {
	client := b.client
	if client == nil {
		client = http.DefaultClient
	}

	archiveSize, err := probeSize(ctx, b.url, client, b.authHeader)
	if err != nil {
		return nil, err
	}
	slog.Debug("archiveSizeProbed", "url", b.url, "size", archiveSize)

	f := &rangeFetcher{url: b.url, client: client, authHeader: b.authHeader}

	eocd, err := locateTrailer(ctx, f, archiveSize)
	if err != nil {
		return nil, err
	}
	slog.Debug("trailerLocated", "offset", eocd.centralDirectoryOffset, "size", eocd.centralDirectorySize, "entries", eocd.totalEntries)

	entries, err := parseCentralDirectory(ctx, f, eocd)
	if err != nil {
		return nil, err
	}
	idx := buildIndex(entries)
	slog.Debug("indexBuilt", "members", len(idx.names))

	br := &Browser{
		url:         b.url,
		client:      client,
		authHeader:  b.authHeader,
		archiveSize: archiveSize,
		idx:         idx,
		extractor: &memberExtractor{
			f:        f,
			cache:    headercache.New(b.cacheSize),
			validate: b.validate,
		},
	}
	return br, nil
}

// Size returns the archive's total byte length, as determined during Build.
// It is cached at construction time, so it stays readable after Close.
func (br *Browser) Size() int64 { return br.archiveSize }

// List returns the ordered sequence of member names discovered during Build.
// Repeated calls return identical content in identical order.
func (br *Browser) List(ctx context.Context) ([]string, error) {
	if br.closed.Load() {
		return nil, ErrBrowserClosed
	}
	return br.idx.list(), nil
}

// Get returns a lazily decompressing reader over the named member's
// payload. The second return value is false when the name is absent from
// the archive or refers to a directory entry; in that case the reader is
// nil and the error is nil.
func (br *Browser) Get(ctx context.Context, name string) (io.ReadCloser, bool, error) {
	if br.closed.Load() {
		return nil, false, ErrBrowserClosed
	}

	e, ok := br.idx.find(name)
	if !ok || e.IsDirectory {
		return nil, false, nil
	}

	rc, err := br.extractor.extract(ctx, e)
	if err != nil {
		return nil, false, fmt.Errorf("zipbrowser: extracting %q: %w", name, err)
	}
	return rc, true, nil
}

// Close latches the Browser closed. It is idempotent and does not cancel or
// wait on anything: an extraction already in flight when Close is called is
// allowed to finish, since the returned reader holds its own fetch state
// independent of the Browser.
func (br *Browser) Close() error {
	br.closed.Store(true)
	return nil
}
