package naming

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// versionRe matches a whole version string, "v" plus a digit run of any
// width. Production data mixes "v2" and "v002".
var versionRe = regexp.MustCompile(`^v(\d+)$`)

// ParseVersion extracts the numeric value from a version string.
// "v010" -> 10. Returns false for anything else.
func ParseVersion(s string) (int, bool) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsVersion reports whether s is a well-formed version string.
func IsVersion(s string) bool {
	_, ok := ParseVersion(s)
	return ok
}

// FormatVersion renders a numeric version with zero padding,
// e.g. FormatVersion(6, 3) == "v006".
func FormatVersion(n, width int) string {
	return fmt.Sprintf("v%0*d", width, n)
}

// CompareVersions orders two version strings numerically: v010 > v002 > v2
// regardless of padding. Unparseable strings sort below every valid version;
// two unparseable strings fall back to a lexical tie-break so the order
// stays total.
func CompareVersions(a, b string) int {
	na, oka := ParseVersion(a)
	nb, okb := ParseVersion(b)
	switch {
	case oka && okb:
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		return 0
	case oka:
		return 1
	case okb:
		return -1
	default:
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
}

// SortVersionsDesc sorts version strings newest first, in place.
// The sort is stable so numeric duplicates keep their discovery order.
func SortVersionsDesc(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return CompareVersions(versions[i], versions[j]) > 0
	})
}
