package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelab/multishot/api"
)

func TestParseFullName(t *testing.T) {
	c := DefaultCodec()

	f, ok := c.ParseFullName("Ep04_sq0070_SH0170__CHAR_CatStompie_001.abc")
	require.True(t, ok)
	assert.Equal(t, Fields{
		Episode:   "Ep04",
		Sequence:  "sq0070",
		Shot:      "SH0170",
		AssetType: "CHAR",
		AssetName: "CatStompie",
		Variant:   "001",
		Ext:       "abc",
	}, f)
}

func TestParseFullName_Malformed(t *testing.T) {
	c := DefaultCodec()

	cases := []struct {
		name  string
		input string
	}{
		{"not a name at all", "not_a_valid_name.xyz"},
		{"missing separator", "Ep04_sq0070_SH0170_CHAR_CatStompie_001.abc"},
		{"unlisted extension", "Ep04_sq0070_SH0170__CHAR_CatStompie_001.exr"},
		{"separator inside asset name", "Ep04_sq0070_SH0170__CHAR_Cat__Stompie_001.abc"},
		{"lowercase asset type", "Ep04_sq0070_SH0170__char_CatStompie_001.abc"},
		{"missing variant", "Ep04_sq0070_SH0170__CHAR_CatStompie.abc"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := c.ParseFullName(tc.input)
			assert.False(t, ok)
		})
	}
}

func TestParseNamespace(t *testing.T) {
	c := DefaultCodec()

	f, ok := c.ParseNamespace("CHAR_CatStompie_001")
	require.True(t, ok)
	assert.Equal(t, Fields{AssetType: "CHAR", AssetName: "CatStompie", Variant: "001"}, f)
}

func TestParseNamespace_UnderscoreInAssetName(t *testing.T) {
	c := DefaultCodec()

	// The middle group must claim the whole name, not split on the first "_".
	f, ok := c.ParseNamespace("PROP_Barn_Door_002")
	require.True(t, ok)
	assert.Equal(t, "PROP", f.AssetType)
	assert.Equal(t, "Barn_Door", f.AssetName)
	assert.Equal(t, "002", f.Variant)
}

func TestParseNamespace_Malformed(t *testing.T) {
	c := DefaultCodec()
	for _, input := range []string{"", "char_cat_001", "CHAR_Cat", "CHAR", "001"} {
		_, ok := c.ParseNamespace(input)
		assert.False(t, ok, "input %q should not parse", input)
	}
}

func TestRoundTrip(t *testing.T) {
	c := DefaultCodec()

	fields := []Fields{
		{Episode: "Ep04", Sequence: "sq0070", Shot: "SH0170", AssetType: "CHAR", AssetName: "CatStompie", Variant: "001", Ext: "abc"},
		{Episode: "Ep01", Sequence: "sq0010", Shot: "SH0010", AssetType: "PROP", AssetName: "Barn_Door", Variant: "002", Ext: "vdb"},
		{Episode: "Ep12", Sequence: "sq1200", Shot: "SH9999", AssetType: "ENV", AssetName: "Forest", Variant: "010", Ext: "rs"},
	}
	for _, f := range fields {
		got, ok := c.ParseFullName(FormatFullName(f))
		require.True(t, ok, "formatted name should parse: %s", FormatFullName(f))
		assert.Equal(t, f, got)

		nsOnly := Fields{AssetType: f.AssetType, AssetName: f.AssetName, Variant: f.Variant}
		gotNS, ok := c.ParseNamespace(FormatNamespace(nsOnly))
		require.True(t, ok)
		assert.Equal(t, nsOnly, gotNS)
	}
}

func TestDetectFormat(t *testing.T) {
	c := DefaultCodec()
	assert.Equal(t, FullNameFormat, c.DetectFormat("Ep04_sq0070_SH0170__CHAR_CatStompie_001.abc"))
	assert.Equal(t, NamespaceFormat, c.DetectFormat("CHAR_CatStompie_001"))
	assert.Equal(t, FormatInvalid, c.DetectFormat("not_a_valid_name.xyz"))
}

func TestNewCodec_ConfigOverrides(t *testing.T) {
	// Extension allow-list narrows the built-in pattern.
	c, err := NewCodec(api.NamingPatterns{}, []string{"abc"})
	require.NoError(t, err)
	_, ok := c.ParseFullName("Ep04_sq0070_SH0170__CHAR_CatStompie_001.abc")
	assert.True(t, ok)
	_, ok = c.ParseFullName("Ep04_sq0070_SH0170__CHAR_CatStompie_001.ma")
	assert.False(t, ok)

	// Bad override pattern fails construction, not parse time.
	_, err = NewCodec(api.NamingPatterns{FullName: "("}, nil)
	assert.Error(t, err)
}
