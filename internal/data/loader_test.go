package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
items:
  - name: Sword
    categories: [weapon]
    stats: {damage: 2}
  - name: Forge
    categories: [tech]
    animations: {day_bonus: 0.5}
    script: |
      function day_bonus() end
`

func TestParseCatalog(t *testing.T) {
	doc, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)

	sword := doc.Items[0]
	assert.Equal(t, "Sword", sword.Name)
	assert.True(t, sword.HasCategory("weapon"))
	assert.Equal(t, 2, sword.Stats.Get("damage"))
	assert.NotNil(t, sword.Animations, "maps are initialized")

	forge := doc.Items[1]
	assert.Equal(t, 0.5, forge.Animations["day_bonus"])
	assert.Contains(t, forge.Script, "day_bonus")
	assert.NotNil(t, forge.Stats)
}

func TestParseCatalogRejectsDuplicates(t *testing.T) {
	_, err := ParseCatalog([]byte("items:\n  - name: A\n  - name: A\n"))
	assert.ErrorContains(t, err, "duplicate item name")

	_, err = ParseCatalog([]byte("items:\n  - stats: {damage: 1}\n"))
	assert.ErrorContains(t, err, "has no name")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel([]byte(`
name: tutorial
width: 3
height: 2
player_start: {x: 1, y: 1}
turns: 5
items:
  - {kind: Sword, x: 0, y: 0}
`))
	require.NoError(t, err)
	assert.Equal(t, 10, lvl.PlayerHealth, "default health")
	assert.Equal(t, 6, lvl.Grid().Len())
	assert.Equal(t, "Sword", lvl.Items[0].Kind)

	_, err = ParseLevel([]byte("name: broken\nwidth: 2\nheight: 2\nplayer_start: {x: 5, y: 5}\n"))
	assert.ErrorContains(t, err, "is not a tile")

	_, err = ParseLevel([]byte("name: empty\n"))
	assert.Error(t, err)
}

func TestLoaderFallbackHierarchy(t *testing.T) {
	campaign := t.TempDir()
	world := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(world, "items.yaml"), []byte(catalogYAML), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(campaign, "levels"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(campaign, "levels", "first-room.yaml"),
		[]byte("name: First Room\nwidth: 2\nheight: 2\n"), 0o644))

	l := NewLoader([]string{campaign, world})

	doc, err := l.LoadCatalog()
	require.NoError(t, err)
	assert.Len(t, doc.Items, 2)

	lvl, err := l.LoadLevel("First Room")
	require.NoError(t, err)
	assert.Equal(t, "First Room", lvl.Name)

	_, err = l.LoadLevel("missing")
	assert.ErrorContains(t, err, "could not find")
}

func TestCatalogSchema(t *testing.T) {
	raw, err := MarshalCatalogSchema()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Quantum Dungeon Item Catalog")
	assert.Contains(t, string(raw), "spawn_weight")
}

func TestLoaderResolvesNamesAndPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "levels"), 0o755))
	file := filepath.Join(dir, "levels", "first.yaml")
	require.NoError(t, os.WriteFile(file, []byte("name: first\nwidth: 2\nheight: 2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.yaml"), []byte(catalogYAML), 0o644))

	l := NewLoader([]string{t.TempDir(), dir})

	path, err := l.ResolveLevel(file)
	require.NoError(t, err)
	assert.Equal(t, file, path, "an existing file is used as is")

	path, err = l.ResolveLevel("first")
	require.NoError(t, err)
	assert.Equal(t, file, path)

	path, err = l.ResolveCatalog("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "items.yaml"), path)

	path, err = l.ResolveCatalog("custom.yaml")
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", path)

	_, err = l.ResolveLevel("nowhere")
	assert.Error(t, err)
}
