package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/script"
)

func TestShippedContentPlays(t *testing.T) {
	doc, err := data.LoadCatalogFile("../../data/items.yaml")
	require.NoError(t, err)
	ev, err := data.NewEvaluator()
	require.NoError(t, err)
	cat := LoadCatalog(doc, script.NewHost(zap.NewNop(), ev), ev, zap.NewNop())
	require.Empty(t, cat.Diagnostics)
	for _, item := range doc.Items {
		_, ok := item.Animations[string(script.TriggerNight)]
		assert.False(t, ok, "%s: night resolves without delay", item.Name)
	}

	level, err := data.LoadLevelFile("../../data/levels/first.yaml")
	require.NoError(t, err)
	m, err := New(cat, level, WithConfig(testConfig()), WithSeed(3))
	require.NoError(t, err)

	for cycle := 1; cycle <= 6; cycle++ {
		m.phase = &SelectPhase{Options: m.rollOptions(m.cfg.OptionsPerSelect)}
		if len(m.phase.(*SelectPhase).Options) > 0 {
			require.NoError(t, m.HandleInput(SelectItem{Index: 0}))
		} else {
			require.NoError(t, m.HandleInput(Skip{}))
		}
		for i := 0; i < 200 && m.Phase().Kind() == PhasePassive; i++ {
			m.Update(0.1)
		}
		if m.Phase().Kind() == PhaseLevelFinished {
			break
		}
		assert.NotEqual(t, PhasePassive, m.Phase().Kind(), "cycle %d", cycle)
		require.NoError(t, m.store.CheckLinks())
	}
	assert.GreaterOrEqual(t, m.Cycle(), 1)
}
