package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.Error(w, "no such artifact", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newServer(t, map[string]string{"/fernflower.jar": "jar-bytes"})

	t.Run("writes file and reports progress", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "nested", "fernflower.jar")
		var mu sync.Mutex
		var events []Progress
		f := NewFetcher(WithProgress(func(p Progress) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, p)
		}, 0))

		err := f.Fetch(context.Background(), Artifact{URL: srv.URL + "/fernflower.jar", Dest: dest})

		require.NoError(t, err)
		got, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "jar-bytes", string(got))
		assert.NoFileExists(t, dest+".part")

		require.NotEmpty(t, events)
		last := events[len(events)-1]
		assert.True(t, last.Done)
		assert.Equal(t, int64(len("jar-bytes")), last.BytesDone)
	})

	t.Run("verifies digest", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "fernflower.jar")
		f := NewFetcher()

		err := f.Fetch(context.Background(), Artifact{
			URL:    srv.URL + "/fernflower.jar",
			Dest:   dest,
			Digest: digest.FromString("jar-bytes"),
		})

		require.NoError(t, err)
		assert.FileExists(t, dest)
	})

	t.Run("digest mismatch leaves nothing behind", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "fernflower.jar")
		f := NewFetcher()
		expected := digest.FromString("something else")

		err := f.Fetch(context.Background(), Artifact{URL: srv.URL + "/fernflower.jar", Dest: dest, Digest: expected})

		var mismatch *DigestMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, expected, mismatch.Expected)
		assert.Equal(t, digest.FromString("jar-bytes"), mismatch.Actual)
		assert.NoFileExists(t, dest)
		assert.NoFileExists(t, dest+".part")
	})

	t.Run("non-2xx status", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "missing.jar")
		f := NewFetcher()

		err := f.Fetch(context.Background(), Artifact{URL: srv.URL + "/missing.jar", Dest: dest})

		var statusErr *HTTPStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "no such artifact")
		assert.NoFileExists(t, dest)
	})

	t.Run("transport failure", func(t *testing.T) {
		f := NewFetcher()
		err := f.Fetch(context.Background(), Artifact{URL: "http://127.0.0.1:1/x", Dest: filepath.Join(t.TempDir(), "x")})

		var dlErr *DownloadError
		assert.ErrorAs(t, err, &dlErr)
	})
}

func TestFetchAll(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/a.zip": "aaa",
		"/b.tgz": "bbb",
		"/c.jar": "ccc",
	})
	dir := t.TempDir()

	t.Run("downloads every artifact", func(t *testing.T) {
		f := NewFetcher(WithParallelism(2))
		var artifacts []Artifact
		for _, name := range []string{"a.zip", "b.tgz", "c.jar"} {
			artifacts = append(artifacts, Artifact{URL: srv.URL + "/" + name, Dest: filepath.Join(dir, name)})
		}

		require.NoError(t, f.FetchAll(context.Background(), artifacts))

		for _, a := range artifacts {
			got, err := os.ReadFile(a.Dest)
			require.NoError(t, err)
			assert.Equal(t, strings.Repeat(string(filepath.Base(a.Dest)[0]), 3), string(got))
		}
	})

	t.Run("first failure is returned", func(t *testing.T) {
		f := NewFetcher(WithParallelism(3))
		err := f.FetchAll(context.Background(), []Artifact{
			{URL: srv.URL + "/a.zip", Dest: filepath.Join(t.TempDir(), "a.zip")},
			{URL: srv.URL + "/nope", Dest: filepath.Join(t.TempDir(), "nope")},
		})

		var statusErr *HTTPStatusError
		assert.ErrorAs(t, err, &statusErr)
	})
}

func TestFileName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/adoptium/temurin23-binaries/releases/download/jdk-23.0.2%2B7/OpenJDK23U-jdk_x64_linux_hotspot_23.0.2_7.tar.gz", "OpenJDK23U-jdk_x64_linux_hotspot_23.0.2_7.tar.gz"},
		{"https://s3.amazonaws.com/sillysoft/LuxDelux-linux.tgz", "LuxDelux-linux.tgz"},
		{"https://example.com/files/name%20with%20space.zip?token=abc", "name with space.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.url))
		})
	}
}
