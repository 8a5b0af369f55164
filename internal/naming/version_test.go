package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		ok   bool
	}{
		{"v001", 1, true},
		{"v010", 10, true},
		{"v2", 2, true},
		{"v0042", 42, true},
		{"version3", 0, false},
		{"v", 0, false},
		{"v01a", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		n, ok := ParseVersion(tc.in)
		assert.Equal(t, tc.ok, ok, "ParseVersion(%q)", tc.in)
		assert.Equal(t, tc.n, n, "ParseVersion(%q)", tc.in)
	}
}

func TestCompareVersions_NumericNotLexical(t *testing.T) {
	// Lexical order would put "v002" above "v010" and "v2" above both.
	assert.Positive(t, CompareVersions("v010", "v002"))
	assert.Positive(t, CompareVersions("v010", "v2"))
	assert.Positive(t, CompareVersions("v3", "v002"))
	assert.Negative(t, CompareVersions("v002", "v010"))
	assert.Zero(t, CompareVersions("v2", "v002"))
	// Valid versions always beat junk.
	assert.Positive(t, CompareVersions("v001", "garbage"))
}

func TestSortVersionsDesc(t *testing.T) {
	vs := []string{"v002", "v010", "v001", "v2", "v6"}
	SortVersionsDesc(vs)
	assert.Equal(t, []string{"v010", "v6"}, vs[:2])
	// v002 and v2 tie numerically; stability keeps discovery order.
	assert.Equal(t, []string{"v002", "v2", "v001"}, vs[2:])
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "v006", FormatVersion(6, 3))
	assert.Equal(t, "v042", FormatVersion(42, 3))
	assert.Equal(t, "v1000", FormatVersion(1000, 3))
}
