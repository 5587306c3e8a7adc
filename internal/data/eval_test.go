package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	item := map[string]any{
		"name":       "Sword",
		"categories": StringsToAny([]string{"weapon"}),
		"stats":      StatsToAny(Stats{"damage": 3}),
	}

	t.Run("predicate", func(t *testing.T) {
		ok, err := ev.EvalBool("'weapon' in item.categories && item.stats.damage > 2", map[string]any{"item": item})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("number from int", func(t *testing.T) {
		n, err := ev.EvalNumber("cycle + 1", map[string]any{"cycle": 4})
		require.NoError(t, err)
		assert.Equal(t, 5.0, n)
	})

	t.Run("number from double", func(t *testing.T) {
		n, err := ev.EvalNumber("double(cycle) / 2.0", map[string]any{"cycle": 3})
		require.NoError(t, err)
		assert.Equal(t, 1.5, n)
	})

	t.Run("defaults", func(t *testing.T) {
		n, err := ev.EvalNumber("owned", nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, n)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := ev.EvalBool("cycle", nil)
		assert.ErrorContains(t, err, "want bool")
	})

	t.Run("compile error", func(t *testing.T) {
		assert.ErrorContains(t, ev.Compile("item.("), "CEL compile error")
	})
}
