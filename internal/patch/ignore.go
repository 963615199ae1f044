package patch

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// alwaysIgnored never takes part in a patch: repository metadata and Maven output.
var alwaysIgnored = []string{".git", "target/"}

// ignoreMatcher decides which files of a tree are left out of a patch.
type ignoreMatcher struct {
	matcher gitignore.Matcher
}

// newIgnoreMatcher combines the built-in exclusions with the .gitignore at the root of dir,
// if there is one.
func newIgnoreMatcher(dir string) (*ignoreMatcher, error) {
	var patterns []gitignore.Pattern
	for _, p := range alwaysIgnored {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return &ignoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore reports whether rel, relative to the tree root, is excluded.
func (m *ignoreMatcher) ShouldIgnore(rel string, isDir bool) bool {
	return m.matcher.Match(splitPath(rel), isDir)
}

func splitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
