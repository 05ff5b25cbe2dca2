package tool

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SemVer is a release number. pgFormatter tags are major.minor; a missing part is zero.
type SemVer [3]uint64

// ParseSemVer parses 5, 5.1 or 5.1.2, with or without a leading "v".
func ParseSemVer(v string) (SemVer, error) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(v), "v"), ".")
	if len(parts) > 3 {
		return SemVer{}, &InvalidVersionError{Version: v}
	}

	var s SemVer
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return SemVer{}, &InvalidVersionError{Version: v}
		}
		s[i] = n
	}
	return s, nil
}

// Major returns the major version.
func (s SemVer) Major() uint64 {
	return s[0]
}

// Minor returns the minor version.
func (s SemVer) Minor() uint64 {
	return s[1]
}

// Patch returns the patch version.
func (s SemVer) Patch() uint64 {
	return s[2]
}

// Compare returns -1, 0 or 1 as s is older than, equal to or newer than o.
func (s SemVer) Compare(o SemVer) int {
	for i := range s {
		switch {
		case s[i] < o[i]:
			return -1
		case s[i] > o[i]:
			return 1
		}
	}
	return 0
}

func (s SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", s[0], s[1], s[2])
}

// SortVersions orders versions oldest first. Names that are not release numbers sort
// after all release numbers, alphabetically.
func SortVersions(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		a, aErr := ParseSemVer(versions[i])
		b, bErr := ParseSemVer(versions[j])
		switch {
		case aErr == nil && bErr == nil:
			if c := a.Compare(b); c != 0 {
				return c < 0
			}
			return versions[i] < versions[j]
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return versions[i] < versions[j]
	})
}
