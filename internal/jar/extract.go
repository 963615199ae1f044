package jar

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/luxdlx/buildtools/internal/service/fs"
)

const filePerm os.FileMode = 0o644

// fileSystem is the subset of filesystem operations the extractor writes through.
type fileSystem interface {
	EnsureDirs(path string) error
	WriteFile(path string, content []byte, perm os.FileMode) error
}

// Extractor materializes archives on disk while renaming siblings that would collide on a
// case-insensitive filesystem because of the case of their first character.
type Extractor struct {
	fs      fileSystem
	onEntry func(entry, resolved string)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithEntryHook registers a callback invoked after each entry is written,
// with the archive name and the resolved path relative to the output directory.
func WithEntryHook(fn func(entry, resolved string)) Option {
	return func(x *Extractor) {
		x.onEntry = fn
	}
}

// Stats counts what an extraction wrote.
type Stats struct {
	Entries int
	Renamed int // entries whose resolved path differs from the archive name
}

// WithStats tallies every written entry into s.
func WithStats(s *Stats) Option {
	return WithEntryHook(func(entry, resolved string) {
		s.Entries++
		if path.Clean(strings.Trim(entry, "/")) != resolved {
			s.Renamed++
		}
	})
}

// NewExtractor creates an Extractor writing through fs.
func NewExtractor(fs fileSystem, opts ...Option) *Extractor {
	if fs == nil {
		panic("fs is required")
	}
	x := &Extractor{fs: fs}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract writes every entry of archive under outputDir in archive order.
// It stops at the first error; entries already written are left in place.
func (x *Extractor) Extract(archive Archive, outputDir string) error {
	entries, err := archive.Entries()
	if err != nil {
		return &ArchiveReadError{Cause: err}
	}

	if err := x.fs.EnsureDirs(outputDir); err != nil {
		return &FilesystemError{Path: outputDir, Cause: err}
	}

	ledger := NewLedger()
	for _, entry := range entries {
		if err := x.extractEntry(ledger, entry, outputDir); err != nil {
			return err
		}
	}
	return nil
}

func (x *Extractor) extractEntry(ledger *Ledger, entry Entry, outputDir string) error {
	name := entry.Name()
	segments := splitSegments(name)
	if len(segments) == 0 {
		return nil
	}

	parent := ""
	for i, seg := range segments {
		if seg == ".." {
			return &FilesystemError{Entry: name, Path: outputDir, Cause: ErrUnsafePath}
		}
		segments[i] = ledger.Resolve(parent, seg)
		parent = path.Join(parent, segments[i])
	}

	target := filepath.Join(outputDir, filepath.FromSlash(parent))

	if entry.IsDir() {
		if err := x.fs.EnsureDirs(target); err != nil {
			return &FilesystemError{Entry: name, Path: target, Cause: err}
		}
		x.notify(name, parent)
		return nil
	}

	content, err := readEntry(entry)
	if err != nil {
		return &ArchiveReadError{Path: name, Entry: true, Cause: err}
	}

	if err := x.fs.EnsureDirs(filepath.Dir(target)); err != nil {
		return &FilesystemError{Entry: name, Path: target, Cause: err}
	}
	if err := x.fs.WriteFile(target, content, filePerm); err != nil {
		return &FilesystemError{Entry: name, Path: target, Cause: err}
	}
	x.notify(name, parent)
	return nil
}

func (x *Extractor) notify(entry, resolved string) {
	if x.onEntry != nil {
		x.onEntry(entry, resolved)
	}
}

// ExtractFile opens the jar at jarPath and extracts it into outputDir using the OS filesystem.
func ExtractFile(jarPath, outputDir string, opts ...Option) error {
	archive, err := OpenZip(jarPath)
	if err != nil {
		return err
	}
	defer archive.Close()

	return NewExtractor(fs.NewOSFileSystem(), opts...).Extract(archive, outputDir)
}

// splitSegments splits an entry name on '/', dropping empty and "." segments.
func splitSegments(name string) []string {
	parts := strings.Split(name, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}

func readEntry(entry Entry) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
