package jar

import (
	"unicode"
	"unicode/utf8"
)

// Separator is inserted after the first character of a name that collides with a sibling.
const Separator = "_"

// Ledger records the names already written under each output directory during one extraction.
// Keys are resolved directory paths relative to the output root ("" for the root itself).
type Ledger struct {
	dirs map[string]map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{dirs: make(map[string]map[string]struct{})}
}

// Resolve returns the name to use for name under parent and records it.
// A name is rewritten only when a recorded sibling is identical except for the case of its
// first character; the first-seen spelling is never altered.
func (l *Ledger) Resolve(parent, name string) string {
	siblings, ok := l.dirs[parent]
	if !ok {
		siblings = make(map[string]struct{})
		l.dirs[parent] = siblings
	}

	resolved := name
	for existing := range siblings {
		if firstCaseConflict(existing, name) {
			_, size := utf8.DecodeRuneInString(name)
			resolved = name[:size] + Separator + name[size:]
			break
		}
	}

	siblings[resolved] = struct{}{}
	return resolved
}

// firstCaseConflict reports whether a and b differ only in the case of their first character.
func firstCaseConflict(a, b string) bool {
	ra, sa := utf8.DecodeRuneInString(a)
	rb, sb := utf8.DecodeRuneInString(b)
	if sa == 0 || sb == 0 {
		return false
	}
	if a[sa:] != b[sb:] {
		return false
	}
	return ra != rb && unicode.ToLower(ra) == unicode.ToLower(rb)
}
