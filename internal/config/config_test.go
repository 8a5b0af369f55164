package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `{
  "version": "1.1",
  "project": {"name": "Stompie World Adventures", "code": "SWA"},
  "tokens": {
    "ep":   {"pattern": "Ep\\d+"},
    "seq":  {"pattern": "sq\\d+"},
    "shot": {"pattern": "SH\\d+"},
    "dept": {"values": ["anim", "layout", "fx", "lighting"]},
    "ver":  {"pattern": "v\\d+"},
    "file": {}
  },
  "templates": {
    "publish_dir":  "$projRoot$project/$sceneBase/$ep/$seq/$shot/$dept/publish",
    "publish_file": "$projRoot$project/$sceneBase/$ep/$seq/$shot/$dept/publish/$ver/$file"
  },
  "roots": {"projRoot": "projects"},
  "staticPaths": {"sceneBase": "all/scene"},
  "platformMapping": {
    "windows": {"projRoot": "V:/"},
    "linux":   {"projRoot": "/mnt/projects/"}
  },
  "extensions": ["abc", "ma", "mb", "vdb", "ass", "rs"]
}`

func TestParse_Valid(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)
	assert.Equal(t, "SWA", cfg.Project.Code)
	assert.Contains(t, cfg.Templates, "publish_file")
	assert.Equal(t, "/mnt/projects/", cfg.PlatformMapping["linux"]["projRoot"])
}

func TestParse_MissingRequiredKey(t *testing.T) {
	_, err := Parse([]byte(`{"version": "1.0", "tokens": {}, "templates": {}, "roots": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platformMapping")
}

func TestParse_UnsupportedVersion(t *testing.T) {
	_, err := Parse([]byte(`{"version": "9.9", "tokens": {}, "templates": {}, "roots": {}, "platformMapping": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "9.9")
}

func TestParse_UndeclaredTemplateToken(t *testing.T) {
	doc := `{
	  "version": "1.0",
	  "tokens": {"ep": {}},
	  "templates": {"bad": "$ep/$mystery"},
	  "roots": {},
	  "platformMapping": {}
	}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"mystery"`)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestParse_PlatformMapsUndeclaredRoot(t *testing.T) {
	doc := `{
	  "version": "1.0",
	  "tokens": {},
	  "templates": {},
	  "roots": {"projRoot": "projects"},
	  "platformMapping": {"linux": {"imgRoot": "/mnt/img/"}}
	}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imgRoot")
}

func TestParse_BadNamingPattern(t *testing.T) {
	doc := `{
	  "version": "1.0",
	  "tokens": {},
	  "templates": {},
	  "roots": {},
	  "platformMapping": {},
	  "namingPatterns": {"fullName": "("}
	}`
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	require.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestAssemble(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	table, reg, codec, err := Assemble(cfg)
	require.NoError(t, err)

	assert.True(t, table.Has("ep"))
	assert.True(t, table.Has("projRoot"), "roots are implicit tokens")
	assert.True(t, table.Has("sceneBase"), "static paths are implicit tokens")
	assert.True(t, table.Has("project"))

	raw, err := reg.Get("publish_dir")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	_, ok := codec.ParseFullName("Ep04_sq0070_SH0170__CHAR_CatStompie_001.abc")
	assert.True(t, ok)
}

func TestRootsForPlatform(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	require.NoError(t, err)

	roots, err := RootsForPlatform(cfg, "linux")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/projects/", roots["projRoot"])

	_, err = RootsForPlatform(cfg, "plan9")
	assert.Error(t, err)
}
