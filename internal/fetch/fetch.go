// Package fetch downloads build inputs over HTTP.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"
)

// Artifact is a single file to download.
type Artifact struct {
	URL    string
	Dest   string        // local file path
	Digest digest.Digest // optional; verified after download when set
}

// Progress reports the state of one download.
type Progress struct {
	URL        string
	Dest       string
	BytesDone  int64
	BytesTotal int64 // zero when the server sent no Content-Length
	Done       bool
}

// ProgressFunc receives progress updates. It must be safe for concurrent calls.
type ProgressFunc func(Progress)

// Fetcher downloads artifacts.
type Fetcher struct {
	client      *http.Client
	progress    ProgressFunc
	interval    time.Duration
	parallelism int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client used for requests.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithProgress registers a progress callback, invoked at most once per interval per download
// plus once on completion.
func WithProgress(fn ProgressFunc, interval time.Duration) Option {
	return func(f *Fetcher) {
		f.progress = fn
		f.interval = interval
	}
}

// WithParallelism bounds the number of concurrent downloads in FetchAll.
func WithParallelism(n int) Option {
	return func(f *Fetcher) {
		f.parallelism = n
	}
}

// NewFetcher creates a Fetcher. The default client has no timeout; callers bound downloads
// through the context.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      http.DefaultClient,
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.parallelism < 1 {
		f.parallelism = 1
	}
	return f
}

// Fetch downloads a single artifact. Content is streamed to "<dest>.part" and renamed into
// place only after the body was fully read and its digest (if any) verified.
func (f *Fetcher) Fetch(ctx context.Context, a Artifact) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return &DownloadError{URL: a.URL, Dest: a.Dest, Cause: err}
	}
	req.Header.Set("Accept", "application/octet-stream, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return &DownloadError{URL: a.URL, Dest: a.Dest, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPStatusError{
			URL:        a.URL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	if err := os.MkdirAll(filepath.Dir(a.Dest), 0o755); err != nil {
		return &DownloadError{URL: a.URL, Dest: a.Dest, Cause: err}
	}

	partPath := a.Dest + ".part"
	out, err := os.Create(partPath)
	if err != nil {
		return &DownloadError{URL: a.URL, Dest: a.Dest, Cause: err}
	}
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(partPath)
		}
	}()

	var verifier digest.Verifier
	var dst io.Writer = out
	if a.Digest != "" {
		verifier = a.Digest.Verifier()
		dst = io.MultiWriter(out, verifier)
	}

	pw := &progressWriter{
		fn:       f.progress,
		interval: f.interval,
		state:    Progress{URL: a.URL, Dest: a.Dest, BytesTotal: max(resp.ContentLength, 0)},
	}
	if _, err := io.Copy(io.MultiWriter(dst, pw), resp.Body); err != nil {
		_ = out.Close()
		return &DownloadError{URL: a.URL, Dest: a.Dest, Cause: err}
	}
	if err := out.Close(); err != nil {
		return &DownloadError{URL: a.URL, Dest: a.Dest, Cause: err}
	}

	if verifier != nil && !verifier.Verified() {
		actual, err := digestFile(partPath, a.Digest.Algorithm())
		if err != nil {
			return &DownloadError{URL: a.URL, Dest: a.Dest, Cause: err}
		}
		return &DigestMismatchError{URL: a.URL, Expected: a.Digest, Actual: actual}
	}

	if err := os.Rename(partPath, a.Dest); err != nil {
		return &DownloadError{URL: a.URL, Dest: a.Dest, Cause: err}
	}
	keep = true

	pw.finish()
	return nil
}

// FetchAll downloads artifacts concurrently, bounded by the configured parallelism.
// The first failure cancels the remaining downloads.
func (f *Fetcher) FetchAll(ctx context.Context, artifacts []Artifact) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.parallelism)
	for _, a := range artifacts {
		g.Go(func() error {
			return f.Fetch(ctx, a)
		})
	}
	return g.Wait()
}

// FileName returns the unescaped last path segment of rawURL.
func FileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}

func digestFile(p string, alg digest.Algorithm) (digest.Digest, error) {
	file, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return alg.FromReader(file)
}

// progressWriter counts bytes and throttles progress callbacks.
type progressWriter struct {
	fn       ProgressFunc
	interval time.Duration
	state    Progress
	last     time.Time
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.state.BytesDone += int64(len(b))
	if p.fn != nil && time.Since(p.last) >= p.interval {
		p.last = time.Now()
		p.fn(p.state)
	}
	return len(b), nil
}

func (p *progressWriter) finish() {
	if p.fn == nil {
		return
	}
	p.state.Done = true
	p.fn(p.state)
}
