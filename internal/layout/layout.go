// Package layout reshapes the decompiled game sources into a Maven project tree.
package layout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Maven source roots relative to the project directory.
var (
	JavaRoot     = filepath.Join("src", "main", "java")
	ResourceRoot = filepath.Join("src", "main", "resources")
	LibDir       = "lib"
)

// obfuscatedPackage is the top-level directory Fernflower emits for the obfuscated classes; it
// belongs to com.sillysoft.lux.random.
const obfuscatedPackage = "A"

// FileSystem is the subset of filesystem operations the layout needs.
type FileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ListDir(path string) ([]os.DirEntry, error)
	EnsureDirs(path string) error
	Move(src, dst string) error
	RemoveAll(path string) error
}

// Report describes what a layout operation changed.
type Report struct {
	Moved    []Move
	Skipped  []string
	Warnings []string
}

// Move records a single relocation.
type Move struct {
	From string
	To   string
}

func (r *Report) moved(from, to string) {
	r.Moved = append(r.Moved, Move{From: from, To: to})
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Layout performs the restructuring steps on a project directory.
type Layout struct {
	fs           FileSystem
	resourceExts []string
}

// NewLayout creates a Layout that moves root files with the given extensions into resources.
func NewLayout(fs FileSystem, resourceExts []string) *Layout {
	if fs == nil {
		panic("fs is required")
	}
	return &Layout{fs: fs, resourceExts: resourceExts}
}

// Restructure turns the flat decompiled tree in projectDir into a Maven layout.
func (l *Layout) Restructure(projectDir string) (*Report, error) {
	report := &Report{}
	javaRoot := filepath.Join(projectDir, JavaRoot)
	resources := filepath.Join(projectDir, ResourceRoot)
	for _, dir := range []string{javaRoot, resources, filepath.Join(projectDir, LibDir)} {
		if err := l.fs.EnsureDirs(dir); err != nil {
			return report, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if l.isDir(filepath.Join(projectDir, "com")) {
		if err := l.move(report, filepath.Join(projectDir, "com"), filepath.Join(javaRoot, "com")); err != nil {
			return report, err
		}
	}

	random := filepath.Join(javaRoot, "com", "sillysoft", "lux", "random")
	if l.isDir(filepath.Join(projectDir, obfuscatedPackage)) {
		if err := l.move(report, filepath.Join(projectDir, obfuscatedPackage), random); err != nil {
			return report, err
		}
	}
	if err := l.flatten(report, random, filepath.Join(random, obfuscatedPackage)); err != nil {
		return report, err
	}

	metaInf := filepath.Join(projectDir, "META-INF")
	if l.isDir(metaInf) {
		if err := l.fs.RemoveAll(metaInf); err != nil {
			return report, err
		}
	}

	entries, err := l.fs.ListDir(projectDir)
	if err != nil {
		return report, fmt.Errorf("failed to list %s: %w", projectDir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !l.isResource(e.Name()) {
			continue
		}
		if err := l.move(report, filepath.Join(projectDir, e.Name()), filepath.Join(resources, e.Name())); err != nil {
			return report, err
		}
	}
	return report, nil
}

// flatten moves the children of sub into base, leaving existing targets alone, and removes
// sub once it is empty.
func (l *Layout) flatten(report *Report, base, sub string) error {
	if !l.isDir(sub) {
		report.warnf("subdirectory %s does not exist", sub)
		return nil
	}
	entries, err := l.fs.ListDir(sub)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", sub, err)
	}
	for _, e := range entries {
		target := filepath.Join(base, e.Name())
		if l.exists(target) {
			report.warnf("%s already exists, skipping", target)
			report.Skipped = append(report.Skipped, filepath.Join(sub, e.Name()))
			continue
		}
		if err := l.move(report, filepath.Join(sub, e.Name()), target); err != nil {
			return err
		}
	}

	rest, err := l.fs.ListDir(sub)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", sub, err)
	}
	if len(rest) > 0 {
		report.warnf("directory %s is not empty, not removed", sub)
		return nil
	}
	return l.fs.RemoveAll(sub)
}

func (l *Layout) move(report *Report, from, to string) error {
	if err := l.fs.Move(from, to); err != nil {
		return err
	}
	report.moved(from, to)
	return nil
}

func (l *Layout) isResource(name string) bool {
	return slices.Contains(l.resourceExts, filepath.Ext(name))
}

func (l *Layout) isDir(path string) bool {
	info, err := l.fs.Stat(path)
	return err == nil && info.IsDir()
}

func (l *Layout) exists(path string) bool {
	_, err := l.fs.Stat(path)
	return err == nil
}

// Rename is one "src => dst" line of a renames file, both relative to the java source root.
type Rename struct {
	Src string
	Dst string
}

// ParseRenames reads rename rules. Blank lines and '#' comments are ignored; lines without
// "=>" are returned in skipped.
func ParseRenames(r io.Reader) (renames []Rename, skipped []string, err error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		src, dst, ok := strings.Cut(line, "=>")
		if !ok {
			skipped = append(skipped, line)
			continue
		}
		renames = append(renames, Rename{Src: strings.TrimSpace(src), Dst: strings.TrimSpace(dst)})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read renames: %w", err)
	}
	return renames, skipped, nil
}

// ApplyRenames moves every existing rename source under base to its destination.
// Missing sources are recorded as skipped.
func (l *Layout) ApplyRenames(base string, renames []Rename) (*Report, error) {
	report := &Report{}
	for _, rn := range renames {
		src, err := within(base, rn.Src)
		if err != nil {
			return report, err
		}
		dst, err := within(base, rn.Dst)
		if err != nil {
			return report, err
		}
		if !l.exists(src) {
			report.Skipped = append(report.Skipped, rn.Src)
			continue
		}
		if err := l.move(report, src, dst); err != nil {
			return report, err
		}
	}
	return report, nil
}

// ErrOutsideBase is returned for rename rules that point outside the source root.
var ErrOutsideBase = errors.New("path leaves the source root")

func within(base, rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%q: %w", rel, ErrOutsideBase)
	}
	return filepath.Join(base, local), nil
}
