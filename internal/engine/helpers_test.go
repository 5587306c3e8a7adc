package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
	"github.com/suderio/quantum-dungeon/internal/script"
)

const testCatalog = `
items:
  - name: Sword
    categories: [weapon]
    stats: {damage: 1}
  - name: Bow
    categories: [weapon]
    stats: {damage: 2}
  - name: Map
    categories: [map]
    script: |
      function active()
        game.open_tiles(2)
        game.set_used()
      end
  - name: Forge
    categories: [tech]
    script: |
      function day_bonus()
        game.bonus{scope = "nearby", range = 1, category = "weapon", stats = {damage = 2}}
      end
  - name: Mirror
    categories: [magic]
    script: |
      function active()
        game.duplicate()
      end
  - name: Echo
    script: |
      function active()
        game.gain_moves(1)
        local t = game.find_items{scope = "board", name = "Ping"}
        game.use(t[1])
      end
  - name: Ping
    script: |
      function active()
        game.gain_moves(1)
        local t = game.find_items{scope = "board", name = "Echo"}
        game.use(t[1])
      end
  - name: Lantern
    animations: {day_bonus: 0.5}
    script: |
      function day_bonus()
        state.lit = (state.lit or 0) + 1
        game.light(2, 2)
      end
`

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Strict = true
	cfg.StepIntro = 0
	return cfg
}

func newTestCatalog(t *testing.T, src string) *Catalog {
	t.Helper()
	doc, err := data.ParseCatalog([]byte(src))
	require.NoError(t, err)
	ev, err := data.NewEvaluator()
	require.NoError(t, err)
	host := script.NewHost(zap.NewNop(), ev)
	return LoadCatalog(doc, host, ev, zap.NewNop())
}

func rectLevel(w, h int, start grid.Pos, items ...data.Placement) *data.LevelConfig {
	return &data.LevelConfig{
		Name:         "test",
		Width:        w,
		Height:       h,
		PlayerStart:  start,
		PlayerHealth: 10,
		Items:        items,
	}
}

func newTestModel(t *testing.T, level *data.LevelConfig, cfg Config) *Model {
	t.Helper()
	m, err := New(newTestCatalog(t, testCatalog), level, WithConfig(cfg), WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, err)
	return m
}

// itemOfKind returns the first inventory item of the named kind.
func itemOfKind(t *testing.T, m *Model, kind string) (id.ID, *InventoryItem) {
	t.Helper()
	for _, i := range m.store.ItemIDs() {
		it, _ := m.store.Item(i)
		if it.Kind.Name() == kind {
			return i, it
		}
	}
	t.Fatalf("no %s in inventory", kind)
	return id.ID{}, nil
}

func countKind(m *Model, kind string) int {
	n := 0
	for _, i := range m.store.ItemIDs() {
		if it, _ := m.store.Item(i); it.Kind.Name() == kind {
			n++
		}
	}
	return n
}
