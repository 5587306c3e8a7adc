package script

import (
	"testing"

	"github.com/Shopify/go-lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTripShapes(t *testing.T) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	require.NoError(t, restoreState(l, State(`{"list":[1,2,3],"nested":{"ok":true,"name":"x"},"ratio":0.5}`)))

	require.NoError(t, lua.DoString(l, `state.list[4] = 4; state.fn = function() end`))
	out, err := captureState(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"list":[1,2,3,4],"nested":{"name":"x","ok":true},"ratio":0.5}`, string(out))
}

func TestCaptureWithoutTable(t *testing.T) {
	l := lua.NewState()
	require.NoError(t, lua.DoString(l, `state = 3`))
	out, err := captureState(l)
	require.NoError(t, err)
	assert.Nil(t, out)
}
