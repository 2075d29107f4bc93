// Package fetcher opens region sources by path or URI and reads tabular files.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Opener opens a source for reading.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Options configures remote access for Sources.
type Options struct {
	HTTP HTTPOptions
	FTP  FTPOptions
}

// Sources resolves local paths, file://, http(s):// and ftp:// URIs.
type Sources struct {
	http *HTTPFetcher
	ftp  *FTPFetcher
}

// New creates a Sources opener.
func New(opts Options) *Sources {
	return &Sources{
		http: NewHTTPFetcher(opts.HTTP),
		ftp:  NewFTPFetcher(opts.FTP),
	}
}

// Scheme returns the lowercased URI scheme, or "" for plain filesystem paths.
func Scheme(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || len(u.Scheme) <= 1 {
		// Unparseable strings and Windows drive letters are treated as paths.
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// LocalPath returns the filesystem path of a local source and whether the source is local.
func LocalPath(uri string) (string, bool) {
	switch Scheme(uri) {
	case "":
		return uri, true
	case "file":
		u, err := url.Parse(uri)
		if err != nil {
			return "", false
		}
		return u.Path, true
	default:
		return "", false
	}
}

// Open returns a reader over the source content. The caller must close it.
func (s *Sources) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if path, ok := LocalPath(uri); ok {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: open %s", path)
		}
		return f, nil
	}

	switch Scheme(uri) {
	case "http", "https":
		return s.http.Download(ctx, uri)
	case "ftp":
		return s.ftp.Download(ctx, uri)
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme in %q", uri)
	}
}

// Localize makes the source available as a local file. Remote sources are
// downloaded into tempDir keeping their extension; cleanup removes the copy.
func (s *Sources) Localize(ctx context.Context, uri, tempDir string) (path string, cleanup func(), err error) {
	if p, ok := LocalPath(uri); ok {
		return p, func() {}, nil
	}

	ext := ""
	if u, perr := url.Parse(uri); perr == nil {
		ext = filepath.Ext(u.Path)
	}

	if tempDir != "" {
		if err := os.MkdirAll(tempDir, 0o755); err != nil {
			return "", nil, eris.Wrap(err, "fetcher: create temp dir")
		}
	}
	f, err := os.CreateTemp(tempDir, "source-*"+ext)
	if err != nil {
		return "", nil, eris.Wrap(err, "fetcher: create temp file")
	}
	cleanup = func() { _ = os.Remove(f.Name()) }

	body, err := s.Open(ctx, uri)
	if err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	defer body.Close() //nolint:errcheck

	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, eris.Wrapf(err, "fetcher: download %s", uri)
	}

	zap.L().Debug("fetcher: localized source",
		zap.String("uri", uri),
		zap.String("path", f.Name()),
		zap.Int64("bytes", n),
	)
	return f.Name(), cleanup, nil
}
