package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// OSFileSystem implements filesystem operations using the local OS filesystem primitives.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat returns file info for a path (follows symlinks).
func (fs *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether path exists.
func (fs *OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile reads the whole file.
func (fs *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// UserHomeDir returns the current user's home directory.
func (fs *OSFileSystem) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// WriteFile creates or truncates path and writes content to it.
func (fs *OSFileSystem) WriteFile(path string, content []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, content, perm); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}

// WriteFileAtomic writes content to a file atomically using temp file + rename pattern.
// The temp file is created in the same directory as the target to ensure atomic rename.
func (fs *OSFileSystem) WriteFileAtomic(path string, r io.Reader, perm os.FileMode) (int64, error) {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return 0, &TempFileError{Dir: dir, Cause: err}
	}

	tmpPath := tmpFile.Name()
	needsCleanup := true

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}
		if needsCleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmpFile, r)
	if err != nil {
		return n, &WriteError{Path: tmpPath, Cause: err}
	}

	// Close file before rename (required on some systems)
	if err := tmpFile.Close(); err != nil {
		tmpFile = nil
		return n, &WriteError{Path: tmpPath, Cause: err}
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, path); err != nil {
		return n, &RenameError{Old: tmpPath, New: path, Cause: err}
	}
	needsCleanup = false

	if err := os.Chmod(path, perm); err != nil {
		return n, &ChmodError{Path: path, Mode: perm, Cause: err}
	}

	return n, nil
}

// EnsureDirs creates parent directories recursively if they don't exist.
func (fs *OSFileSystem) EnsureDirs(path string) error {
	return os.MkdirAll(path, 0o755)
}

// ListDir lists the contents of a directory.
func (fs *OSFileSystem) ListDir(path string) ([]os.DirEntry, error) {
	return os.ReadDir(path)
}

// Chmod changes the mode of path.
func (fs *OSFileSystem) Chmod(path string, mode os.FileMode) error {
	if err := os.Chmod(path, mode); err != nil {
		return &ChmodError{Path: path, Mode: mode, Cause: err}
	}
	return nil
}

// Move renames src to dst, creating the parent of dst.
// Falls back to copy and remove when a plain rename fails (e.g. across devices).
func (fs *OSFileSystem) Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return &RenameError{Old: src, New: dst, Cause: err}
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	} else if _, statErr := os.Lstat(src); statErr != nil {
		return &RenameError{Old: src, New: dst, Cause: err}
	}

	if err := fs.Copy(src, dst); err != nil {
		return err
	}
	return fs.RemoveAll(src)
}

// Copy copies a file or directory tree from src to dst, preserving modes.
func (fs *OSFileSystem) Copy(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode().Perm())
	}

	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return &CopyError{Src: path, Dst: dst, Cause: err}
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return &CopyError{Src: path, Dst: dst, Cause: err}
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &CopyError{Src: path, Dst: target, Cause: err}
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return &CopyError{Src: path, Dst: target, Cause: err}
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	if err := out.Close(); err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	return nil
}

// RemoveAll removes path and everything below it. A missing path is not an error.
// Read-only entries (common in Windows checkouts) are made writable and retried once.
func (fs *OSFileSystem) RemoveAll(path string) error {
	err := os.RemoveAll(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrPermission) {
		return &RemoveError{Path: path, Cause: err}
	}

	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		mode := os.FileMode(0o644)
		if d.IsDir() {
			mode = 0o755
		}
		_ = os.Chmod(p, mode)
		return nil
	})
	if err := os.RemoveAll(path); err != nil {
		return &RemoveError{Path: path, Cause: err}
	}
	return nil
}
