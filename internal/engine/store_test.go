package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
)

func newItem(name string) *InventoryItem {
	return &InventoryItem{Kind: &Kind{Config: data.ItemConfig{Name: name}}, Permanent: data.Stats{}, Temporary: data.Stats{}}
}

func TestStorePlaceAndUnplace(t *testing.T) {
	s := NewStore()
	a := s.AddItem(newItem("a"))
	b := s.AddItem(newItem("b"))
	assert.ElementsMatch(t, []id.ID{a, b}, s.Carried())

	bid, err := s.Place(a, grid.Pos{X: 1, Y: 1})
	require.NoError(t, err)
	got, bi, ok := s.BoardAt(grid.Pos{X: 1, Y: 1})
	require.True(t, ok)
	assert.Equal(t, bid, got)
	assert.Equal(t, a, bi.Item)
	assert.Equal(t, []id.ID{b}, s.Carried())

	_, err = s.Place(b, grid.Pos{X: 1, Y: 1})
	assert.Error(t, err, "occupied tile")
	_, err = s.Place(a, grid.Pos{X: 2, Y: 2})
	assert.Error(t, err, "already placed")
	require.NoError(t, s.CheckLinks())

	require.NoError(t, s.Unplace(a))
	_, _, ok = s.BoardAt(grid.Pos{X: 1, Y: 1})
	assert.False(t, ok)
	_, ok = s.BoardItem(bid)
	assert.False(t, ok)
	assert.Error(t, s.Unplace(a))
	require.NoError(t, s.CheckLinks())
}

func TestStoreRemoveItemDropsPlacement(t *testing.T) {
	s := NewStore()
	a := s.AddItem(newItem("a"))
	_, err := s.Place(a, grid.Pos{})
	require.NoError(t, err)

	require.NoError(t, s.RemoveItem(a))
	assert.Zero(t, s.ItemCount())
	assert.Empty(t, s.BoardIDs())
	require.NoError(t, s.CheckLinks())

	err = s.RemoveItem(a)
	assert.ErrorIs(t, err, id.ErrStale)
	_, err = s.Place(a, grid.Pos{})
	assert.ErrorIs(t, err, id.ErrStale)
}

func TestStoreSwapRejectsCarried(t *testing.T) {
	s := NewStore()
	a := s.AddItem(newItem("a"))
	b := s.AddItem(newItem("b"))
	_, err := s.Place(a, grid.Pos{X: 0})
	require.NoError(t, err)

	assert.Error(t, s.Swap(a, b))
	assert.Error(t, s.Swap(a, a))
	pos, _ := s.ItemPos(a)
	assert.Equal(t, grid.Pos{X: 0}, pos)
	require.NoError(t, s.CheckLinks())
}

func TestStoreCheckLinksAndRepair(t *testing.T) {
	s := NewStore()
	a := s.AddItem(newItem("a"))
	b := s.AddItem(newItem("b"))
	_, err := s.Place(a, grid.Pos{X: 1})
	require.NoError(t, err)
	_, err = s.Place(b, grid.Pos{X: 2})
	require.NoError(t, err)

	// Break the back link of a by hand.
	ia, _ := s.Item(a)
	ia.Board = id.ID{}
	require.ErrorIs(t, s.CheckLinks(), ErrInvariant)

	s.Repair()
	require.NoError(t, s.CheckLinks())
	_, ok := s.ItemPos(a)
	assert.False(t, ok)
	pos, ok := s.ItemPos(b)
	require.True(t, ok)
	assert.Equal(t, grid.Pos{X: 2}, pos)
}

func TestStoreEntityAt(t *testing.T) {
	s := NewStore()
	e := s.AddEntity(&Entity{Kind: "goblin", Pos: grid.Pos{X: 3, Y: 1}, Health: 1})

	got, ent, ok := s.EntityAt(grid.Pos{X: 3, Y: 1})
	require.True(t, ok)
	assert.Equal(t, e, got)
	assert.Equal(t, "goblin", ent.Kind)

	assert.True(t, s.RemoveEntity(e))
	assert.False(t, s.RemoveEntity(e))
	_, _, ok = s.EntityAt(grid.Pos{X: 3, Y: 1})
	assert.False(t, ok)
}
