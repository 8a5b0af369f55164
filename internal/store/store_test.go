package store

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelab/multishot/internal/host"
	"github.com/pipelab/multishot/internal/model"
	"github.com/pipelab/multishot/internal/naming"
	"github.com/pipelab/multishot/internal/vcache"
)

var (
	shotA = model.ShotID{Episode: "Ep04", Sequence: "sq0070", Code: "SH0170"}
	shotB = model.ShotID{Episode: "Ep04", Sequence: "sq0070", Code: "SH0180"}
	cat   = model.BindingKey{AssetType: "CHAR", AssetName: "CatStompie", Variant: "001"}
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoadModel_RoundTrip(t *testing.T) {
	s := openTemp(t)

	m := model.New()
	m.GetOrCreateProject("SWA", "Ep04", "sq0070", "/cfg/ctx_config.json")
	_, err := m.CreateShot(shotA, 1001, 1050, "grp_SH0170")
	require.NoError(t, err)
	_, err = m.CreateShot(shotB, 1051, 1100, "grp_SH0180")
	require.NoError(t, err)
	_, err = m.AddBinding(shotA, model.Binding{
		Key: cat, Dept: "anim", Version: "v003", Template: "publish_file", Ext: "abc",
		Target: host.TargetRef{Handle: "standin_cat", Kind: host.KindStandIn, Link: host.LinkIdentityOnly},
	})
	require.NoError(t, err)
	require.NoError(t, m.Activate(shotB))

	require.NoError(t, s.SaveModel(m))

	got, err := s.LoadModel()
	require.NoError(t, err)

	p := got.Project()
	require.NotNil(t, p)
	assert.Equal(t, "SWA", p.Code)
	assert.Equal(t, "/cfg/ctx_config.json", p.ConfigPath)

	require.Len(t, got.Shots(), 2)
	shot, ok := got.Shot(shotA)
	require.True(t, ok)
	assert.Equal(t, 1001, shot.FrameStart)
	assert.Equal(t, "grp_SH0170", shot.GroupHandle)

	b, ok := shot.Binding(cat)
	require.True(t, ok)
	assert.Equal(t, "v003", b.Version)
	assert.Equal(t, host.KindStandIn, b.Target.Kind)
	assert.Equal(t, host.LinkIdentityOnly, b.Target.Link)

	active, ok := got.ActiveShot()
	require.True(t, ok)
	assert.Equal(t, shotB, active.ID)

	// Reverse index must be rebuilt on load, not persisted blindly.
	assert.Len(t, got.BindingsByTarget("standin_cat"), 1)
}

func TestSaveModel_ReplacesRemovedShots(t *testing.T) {
	s := openTemp(t)

	m := model.New()
	m.GetOrCreateProject("SWA", "Ep04", "sq0070", "")
	_, err := m.CreateShot(shotA, 1, 100, "gA")
	require.NoError(t, err)
	_, err = m.CreateShot(shotB, 1, 100, "gB")
	require.NoError(t, err)
	require.NoError(t, s.SaveModel(m))

	require.NoError(t, m.RemoveShot(shotA))
	require.NoError(t, s.SaveModel(m))

	got, err := s.LoadModel()
	require.NoError(t, err)
	assert.Len(t, got.Shots(), 1)
	_, ok := got.Shot(shotA)
	assert.False(t, ok)
}

func TestLoadModel_EmptyFile(t *testing.T) {
	s := openTemp(t)
	got, err := s.LoadModel()
	require.NoError(t, err)
	assert.Nil(t, got.Project())
	assert.Empty(t, got.Shots())
}

func TestLoadModel_Silent(t *testing.T) {
	s := openTemp(t)

	m := model.New()
	_, err := m.CreateShot(shotA, 1, 100, "g")
	require.NoError(t, err)
	require.NoError(t, s.SaveModel(m))

	got, err := s.LoadModel()
	require.NoError(t, err)

	// Listeners subscribed after load see nothing from the replay, and the
	// loaded model notifies normally afterwards.
	fired := 0
	got.Subscribe(func(model.Event) { fired++ })
	_, err = got.CreateShot(shotB, 1, 100, "g2")
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestSaveLoadCache_RoundTrip(t *testing.T) {
	s := openTemp(t)

	const dir = "/mnt/projects/SWA/all/scene/Ep04/sq0070/SH0170/anim/publish"
	fs := memfs.New()
	src := vcache.New(fs, naming.DefaultCodec())
	for _, v := range []string{"v001", "v006"} {
		f, err := fs.Create(fs.Join(dir, v, "Ep04_sq0070_SH0170__CHAR_CatStompie_001.abc"))
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	_, err := src.Refresh(dir)
	require.NoError(t, err)

	require.NoError(t, s.SaveCache(src))

	dst := vcache.New(memfs.New(), naming.DefaultCodec())
	require.NoError(t, s.LoadCache(dst))

	assert.True(t, dst.HasEntry(dir))
	latest, ok := dst.Latest(dir, "CHAR_CatStompie_001")
	require.True(t, ok)
	assert.Equal(t, "v006", latest)

	scannedAt, ok := dst.ScannedAt(dir)
	require.True(t, ok)
	assert.False(t, scannedAt.IsZero())
}
