package jar

import (
	"io"

	"github.com/klauspost/compress/zip"
)

// Entry is a single record of an archive.
type Entry interface {
	// Name returns the '/'-delimited path of the entry inside the archive.
	Name() string
	IsDir() bool
	// Open returns the raw payload of a file entry.
	Open() (io.ReadCloser, error)
}

// Archive exposes archive entries in their original enumeration order.
type Archive interface {
	Entries() ([]Entry, error)
}

// ZipArchive adapts a zip container (jar files included) to Archive.
type ZipArchive struct {
	path   string
	reader *zip.ReadCloser
}

// OpenZip opens the zip-format archive at path.
func OpenZip(path string) (*ZipArchive, error) {
	// A reader returned together with an error is still usable; entry names are checked during extraction.
	rc, err := zip.OpenReader(path)
	if rc == nil {
		return nil, &ArchiveReadError{Path: path, Cause: err}
	}
	return &ZipArchive{path: path, reader: rc}, nil
}

// Entries returns the entries in central directory order.
func (a *ZipArchive) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(a.reader.File))
	for _, f := range a.reader.File {
		entries = append(entries, zipEntry{file: f})
	}
	return entries, nil
}

// Close releases the underlying file.
func (a *ZipArchive) Close() error {
	return a.reader.Close()
}

type zipEntry struct {
	file *zip.File
}

func (e zipEntry) Name() string {
	return e.file.Name
}

func (e zipEntry) IsDir() bool {
	return e.file.FileInfo().IsDir()
}

func (e zipEntry) Open() (io.ReadCloser, error) {
	return e.file.Open()
}
