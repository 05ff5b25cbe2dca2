// Package glob expands the action's pattern input into the list of files to format.
//
// The pattern language follows the GitHub Actions glob toolkit: one pattern per line,
// '#' comments, '!' negation where the last matching line wins, '**' for any number of
// directories, '~' for the home directory, and a pattern that names a directory matches
// every file below it.
package glob

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const metaChars = `*?[]{}\`

// Pattern is one parsed line of the input.
type Pattern struct {
	Negate bool
	Glob   string // absolute, '/' separated
	Root   string // literal directory (or file) the pattern is anchored at, OS separators
}

// PatternSet is an ordered list of patterns. Later patterns override earlier ones.
type PatternSet struct {
	patterns []Pattern
}

// Parse compiles input relative to baseDir. home is only consulted for patterns
// starting with '~' and may be nil otherwise.
func Parse(input, baseDir string, home func() (string, error)) (*PatternSet, error) {
	set := &PatternSet{}
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p, err := parseLine(line, baseDir, home)
		if err != nil {
			return nil, err
		}
		set.patterns = append(set.patterns, p)
	}
	return set, nil
}

func parseLine(line, baseDir string, home func() (string, error)) (Pattern, error) {
	raw := line

	var p Pattern
	for strings.HasPrefix(line, "!") {
		p.Negate = !p.Negate
		line = line[1:]
	}
	if line == "" {
		return Pattern{}, &InvalidPatternError{Pattern: raw}
	}

	line = filepath.ToSlash(line)
	if line == "~" || strings.HasPrefix(line, "~/") {
		if home == nil {
			return Pattern{}, &InvalidPatternError{Pattern: raw}
		}
		h, err := home()
		if err != nil {
			return Pattern{}, &InvalidPatternError{Pattern: raw}
		}
		line = escapeMeta(filepath.ToSlash(h)) + strings.TrimPrefix(line, "~")
	} else if !path.IsAbs(line) && !filepath.IsAbs(filepath.FromSlash(line)) {
		line = escapeMeta(filepath.ToSlash(baseDir)) + "/" + line
	}

	p.Glob = path.Clean(line)
	if !doublestar.ValidatePattern(p.Glob) {
		return Pattern{}, &InvalidPatternError{Pattern: raw}
	}

	root := p.Glob
	if hasMeta(root) {
		root, _ = doublestar.SplitPattern(root)
	}
	p.Root = filepath.FromSlash(unescapeMeta(root))
	return p, nil
}

// Patterns returns the parsed patterns in input order.
func (s *PatternSet) Patterns() []Pattern {
	return append([]Pattern(nil), s.patterns...)
}

// Roots returns the search roots of the include patterns in input order. A root lying
// below another root is dropped, so every directory is walked once.
func (s *PatternSet) Roots() []string {
	var distinct []string
	seen := make(map[string]struct{})
	for _, p := range s.patterns {
		if p.Negate {
			continue
		}
		if _, ok := seen[p.Root]; ok {
			continue
		}
		seen[p.Root] = struct{}{}
		distinct = append(distinct, p.Root)
	}

	var roots []string
	for _, r := range distinct {
		nested := false
		for _, other := range distinct {
			if isBelow(other, r) {
				nested = true
				break
			}
		}
		if !nested {
			roots = append(roots, r)
		}
	}
	return roots
}

// isBelow reports whether child is a strict descendant of parent.
func isBelow(parent, child string) bool {
	prefix := strings.TrimSuffix(parent, string(filepath.Separator)) + string(filepath.Separator)
	return child != parent && strings.HasPrefix(child, prefix)
}

// Match reports whether the absolute path is selected by the set: the last pattern
// matching the path decides, and a path nobody matches is not selected.
func (s *PatternSet) Match(name string) bool {
	name = filepath.ToSlash(name)
	matched := false
	for _, p := range s.patterns {
		if matches(p.Glob, name) {
			matched = !p.Negate
		}
	}
	return matched
}

func matches(glob, name string) bool {
	if ok, _ := doublestar.Match(glob, name); ok {
		return true
	}
	// a pattern naming a directory selects everything below it
	ok, _ := doublestar.Match(glob+"/**", name)
	return ok
}

func hasMeta(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func escapeMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(metaChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unescapeMeta(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
