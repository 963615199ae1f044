// Package archive unpacks the zip and gzipped tar distributions the build downloads.
package archive

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// Format identifies an archive container.
type Format int

const (
	FormatUnknown Format = iota
	FormatZip
	FormatTarGzip
)

// DetectFormat maps a file suffix to its container format.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".jar":
		return FormatZip
	case ".gz", ".tgz":
		return FormatTarGzip
	default:
		return FormatUnknown
	}
}

// Extract unpacks archivePath into destDir, creating destDir when missing.
// Every write goes through an os.Root on destDir, so entries reaching outside it through
// symlinks planted earlier in the same archive are refused.
func Extract(archivePath, destDir string) error {
	format := DetectFormat(archivePath)
	if format == FormatUnknown {
		return &UnsupportedFormatError{Path: archivePath}
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return &ExtractError{Archive: archivePath, Cause: err}
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return &ExtractError{Archive: archivePath, Cause: err}
	}
	defer root.Close()

	if format == FormatZip {
		return extractZip(archivePath, root)
	}
	return extractTarGz(archivePath, root)
}

// target turns an entry name into a clean path relative to the destination root and rejects
// anything lexically outside it.
func target(archivePath, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(name, "/")))
	if clean == "." || !filepath.IsLocal(clean) {
		return "", &UnsafePathError{Archive: archivePath, Entry: name}
	}
	return clean, nil
}

func extractZip(archivePath string, root *os.Root) error {
	r, err := zip.OpenReader(archivePath)
	if r == nil {
		return &ExtractError{Archive: archivePath, Cause: err}
	}
	defer r.Close()

	for _, f := range r.File {
		dst, err := target(archivePath, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := root.MkdirAll(dst, 0o755); err != nil {
				return &ExtractError{Archive: archivePath, Entry: f.Name, Cause: err}
			}
			continue
		}
		if err := writeZipFile(root, f, dst); err != nil {
			return &ExtractError{Archive: archivePath, Entry: f.Name, Cause: err}
		}
	}
	return nil
}

func writeZipFile(root *os.Root, f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return writeFile(root, dst, rc, fileMode(f.Mode()))
}

func extractTarGz(archivePath string, root *os.Root) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return &ExtractError{Archive: archivePath, Cause: err}
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return &ExtractError{Archive: archivePath, Cause: err}
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &ExtractError{Archive: archivePath, Cause: err}
		}

		if strings.Trim(hdr.Name, "/.") == "" {
			continue
		}
		dst, err := target(archivePath, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			err = root.MkdirAll(dst, 0o755)
		case tar.TypeReg:
			err = writeFile(root, dst, tr, fileMode(hdr.FileInfo().Mode()))
		case tar.TypeSymlink:
			err = writeSymlink(archivePath, root, dst, hdr)
		case tar.TypeLink:
			var src string
			if src, err = target(archivePath, hdr.Linkname); err == nil {
				err = linkOrCopy(root, src, dst)
			}
		default:
			// Devices, fifos and pax metadata have no place in a toolchain tree.
			continue
		}
		if err != nil {
			var unsafe *UnsafePathError
			if errors.As(err, &unsafe) {
				return err
			}
			return &ExtractError{Archive: archivePath, Entry: hdr.Name, Cause: err}
		}
	}
}

func writeSymlink(archivePath string, root *os.Root, dst string, hdr *tar.Header) error {
	link := filepath.FromSlash(hdr.Linkname)
	if filepath.IsAbs(link) {
		return &UnsafePathError{Archive: archivePath, Entry: hdr.Name}
	}
	resolved := filepath.Join(filepath.Dir(dst), link)
	if !filepath.IsLocal(resolved) {
		return &UnsafePathError{Archive: archivePath, Entry: hdr.Name}
	}
	if err := mkdirParent(root, dst); err != nil {
		return err
	}
	_ = root.Remove(dst)
	if runtime.GOOS == "windows" {
		return linkOrCopy(root, resolved, dst)
	}
	return root.Symlink(hdr.Linkname, dst)
}

func linkOrCopy(root *os.Root, src, dst string) error {
	if err := mkdirParent(root, dst); err != nil {
		return err
	}
	_ = root.Remove(dst)
	if err := root.Link(src, dst); err == nil {
		return nil
	}
	in, err := root.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	return writeFile(root, dst, in, info.Mode().Perm())
}

func mkdirParent(root *os.Root, name string) error {
	if dir := filepath.Dir(name); dir != "." {
		return root.MkdirAll(dir, 0o755)
	}
	return nil
}

func writeFile(root *os.Root, dst string, r io.Reader, perm os.FileMode) error {
	if err := mkdirParent(root, dst); err != nil {
		return err
	}
	out, err := root.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile applies the umask; restore the executable bits recorded in the archive.
	return root.Chmod(dst, perm)
}

// fileMode keeps the permission bits of an entry, falling back to 0644 when none are recorded.
func fileMode(m os.FileMode) os.FileMode {
	perm := m.Perm()
	if perm == 0 {
		return 0o644
	}
	return perm | 0o200
}
