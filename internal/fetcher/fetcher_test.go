package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSources() *Sources {
	return New(Options{HTTP: HTTPOptions{
		UserAgent:   "test-agent",
		Timeout:     5 * time.Second,
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
	}})
}

func TestScheme(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{"data/regions.csv", ""},
		{"/abs/regions.csv", ""},
		{`C:\data\regions.csv`, ""},
		{"file:///data/regions.csv", "file"},
		{"HTTPS://example.com/a.geojson", "https"},
		{"ftp://ftp.example.com/a.zip", "ftp"},
		{"s3://bucket/a.csv", "s3"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.expected, Scheme(tt.uri))
		})
	}
}

func TestLocalPath(t *testing.T) {
	p, ok := LocalPath("file:///data/regions.csv")
	assert.True(t, ok)
	assert.Equal(t, "/data/regions.csv", p)

	p, ok = LocalPath("regions.csv")
	assert.True(t, ok)
	assert.Equal(t, "regions.csv", p)

	_, ok = LocalPath("https://example.com/regions.csv")
	assert.False(t, ok)
}

func TestOpen_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.csv")
	require.NoError(t, os.WriteFile(path, []byte("region_id\n01\n"), 0o644))

	rc, err := newTestSources().Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "region_id\n01\n", string(data))
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := newTestSources().Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, err := newTestSources().Open(context.Background(), "s3://bucket/regions.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestOpen_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	rc, err := newTestSources().Open(context.Background(), srv.URL+"/jabar.geojson")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")
}

func TestLocalize_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("binary-ish"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, cleanup, err := newTestSources().Localize(context.Background(), srv.URL+"/data/regions.xlsx", dir)
	require.NoError(t, err)

	assert.Equal(t, ".xlsx", filepath.Ext(path))
	assert.Equal(t, dir, filepath.Dir(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "binary-ish", string(data))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalize_LocalIsPassthrough(t *testing.T) {
	path, cleanup, err := newTestSources().Localize(context.Background(), "testdata/regions.csv", t.TempDir())
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, "testdata/regions.csv", path)
}

func TestLocalize_RemoteFailureRemovesTempFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, _, err := newTestSources().Localize(context.Background(), srv.URL+"/missing.zip", dir)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
