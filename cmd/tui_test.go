package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suderio/quantum-dungeon/internal/engine"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
)

func TestRenderBoard(t *testing.T) {
	player := id.ID{Index: 0, Gen: 1}
	snap := engine.Snapshot{
		Player: player,
		Tiles:  []grid.Pos{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 1}},
		Entities: []engine.EntitySnapshot{
			{ID: player, Entity: engine.Entity{Kind: "player", Pos: grid.Pos{X: 0, Y: 0}}},
			{ID: id.ID{Index: 1, Gen: 1}, Entity: engine.Entity{Kind: "goblin", Pos: grid.Pos{X: 2, Y: 1}}},
		},
		BoardItems: []engine.BoardItemSnapshot{{Kind: "Sword", Pos: grid.Pos{X: 1, Y: 0}}},
	}

	lines := strings.Split(renderBoard(snap, false), "\n")
	assert.Equal(t, []string{"@ S . ", ".   g "}, lines)
	assert.Equal(t, "(no tiles)", renderBoard(engine.Snapshot{}, false))
}

func TestRenderStatus(t *testing.T) {
	snap := engine.Snapshot{
		Phase:     &engine.SelectPhase{Options: []string{"Sword", "Map"}},
		PhaseName: "Select",
		Cycle:     2,
		Inventory: []engine.ItemSnapshot{{Kind: "Lantern"}, {Kind: "Bow"}},
	}
	out := renderStatus(snap)
	assert.Contains(t, out, "Phase: Select")
	assert.Contains(t, out, "0. Sword")
	assert.Contains(t, out, "1. Map")
	assert.Contains(t, out, "Carrying: Bow, Lantern")
}
