package id

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaInsertGetRemove(t *testing.T) {
	var a Arena[string]

	first := a.Insert("sword")
	second := a.Insert("map")
	assert.Equal(t, 2, a.Len())

	v, ok := a.Get(first)
	require.True(t, ok)
	assert.Equal(t, "sword", v)

	removed, ok := a.Remove(first)
	require.True(t, ok)
	assert.Equal(t, "sword", removed)
	assert.False(t, a.Contains(first))
	assert.True(t, a.Contains(second))

	_, ok = a.Remove(first)
	assert.False(t, ok, "double remove must fail")
}

func TestArenaNeverReusesHandle(t *testing.T) {
	var a Arena[int]
	old := a.Insert(1)
	a.Remove(old)

	fresh := a.Insert(2)
	assert.Equal(t, old.Index, fresh.Index, "slot is recycled")
	assert.NotEqual(t, old, fresh, "generation differs")

	_, ok := a.Get(old)
	assert.False(t, ok)
	v, ok := a.Get(fresh)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestZeroIDNeverResolves(t *testing.T) {
	var a Arena[int]
	a.Insert(7)
	assert.False(t, a.Contains(ID{}))
	assert.True(t, ID{}.IsZero())
}

func TestIDsStableOrder(t *testing.T) {
	var a Arena[string]
	x := a.Insert("x")
	y := a.Insert("y")
	z := a.Insert("z")
	a.Remove(y)

	assert.Equal(t, []ID{x, z}, a.IDs())

	var seen []string
	a.Each(func(_ ID, v string) { seen = append(seen, v) })
	assert.Equal(t, []string{"x", "z"}, seen)
}

func TestParseRoundTrip(t *testing.T) {
	h := ID{Index: 12, Gen: 3}
	assert.Equal(t, "12:3", h.String())

	parsed, err := Parse("12:3")
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	for _, bad := range []string{"", "12", "a:1", "1:b"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestExhaustedSlotIsRetired(t *testing.T) {
	var a Arena[string]
	first := a.Insert("a")
	a.slots[first.Index].gen = math.MaxUint32
	last := ID{Index: first.Index, Gen: math.MaxUint32}

	_, ok := a.Remove(last)
	require.True(t, ok)
	assert.Empty(t, a.free)

	next := a.Insert("b")
	assert.NotEqual(t, first.Index, next.Index)
	assert.False(t, next.IsZero())
	assert.False(t, a.Contains(last))
	assert.Equal(t, 1, a.Len())
}
