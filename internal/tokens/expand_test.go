package tokens

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	values := map[string]string{"ep": "Ep04", "seq": "sq0070", "shot": "SH0170"}

	got, err := Expand("$ep/$seq/$shot", values, "")
	require.NoError(t, err)
	assert.Equal(t, "Ep04/sq0070/SH0170", got)
}

func TestExpand_UnderscoreSeparatesTokens(t *testing.T) {
	values := map[string]string{"ep": "Ep04", "seq": "sq0070", "shot": "SH0170"}

	got, err := Expand("$ep_$seq_$shot", values, "")
	require.NoError(t, err)
	assert.Equal(t, "Ep04_sq0070_SH0170", got)
}

func TestExpand_VersionOverride(t *testing.T) {
	values := map[string]string{"dept": "anim", "ver": "v001"}

	got, err := Expand("$dept/$ver", values, "v006")
	require.NoError(t, err)
	assert.Equal(t, "anim/v006", got, "override must beat the ver entry in values")

	got, err = Expand("$dept/$ver", map[string]string{"dept": "anim"}, "v006")
	require.NoError(t, err)
	assert.Equal(t, "anim/v006", got, "override must satisfy a missing ver value")
}

func TestExpand_MissingTokenFailsByName(t *testing.T) {
	_, err := Expand("$ep/$seq/$shot", map[string]string{"ep": "Ep04"}, "")
	require.Error(t, err)

	var ee *ExpandError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "seq", ee.Token)
	assert.Contains(t, err.Error(), "seq")
}

func TestExpand_NeverEmitsPlaceholderText(t *testing.T) {
	got, err := Expand("$root/$project", map[string]string{"root": "/mnt/v"}, "")
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestExpand_NoTokens(t *testing.T) {
	got, err := Expand("all/scene/publish", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "all/scene/publish", got)
}

func TestExtractTokens(t *testing.T) {
	assert.Equal(t,
		[]string{"projRoot", "project", "ep", "seq", "shot", "ep"},
		ExtractTokens("$projRoot$project/$ep/$seq/$shot/$ep"),
		"order of appearance, duplicates preserved")

	assert.Nil(t, ExtractTokens("no tokens here"))
	assert.Equal(t, []string{"ep", "seq", "shot"}, ExtractTokens("$ep_$seq_$shot"))
}

func TestUniqueTokens(t *testing.T) {
	assert.Equal(t, []string{"ep", "seq"}, UniqueTokens("$ep/$seq/$ep"))
}

func TestStripAtToken(t *testing.T) {
	tmpl := "$projRoot$project/scene/$ep/$seq/$shot/$dept/publish/$ver/$file"
	assert.Equal(t, "$projRoot$project/scene/$ep/$seq/$shot/$dept/publish", StripAtToken(tmpl, "ver"))
	// "version" must not match the "ver" prefix of another token.
	assert.Equal(t, "$a/$version", StripAtToken("$a/$version", "ver"))
	// Token absent: template returned untouched.
	assert.Equal(t, "$a/$b", StripAtToken("$a/$b", "ver"))
}
