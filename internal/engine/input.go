package engine

import (
	"fmt"

	"github.com/suderio/quantum-dungeon/internal/grid"
)

// Input is one abstract player input. String returns the canonical text
// form, which the input grammar parses back to the same value.
type Input interface {
	fmt.Stringer
	isInput()
}

// Dir moves the player one tile, or turns the look while in Vision.
type Dir struct{ DX, DY int }

// Tile addresses a tile: activate, place, or open it depending on phase.
type Tile struct{ X, Y int }

// Vision points the look at Pos and optionally commits it.
type Vision struct {
	Pos    grid.Pos
	Commit bool
}

// SelectItem picks an option by zero-based index.
type SelectItem struct{ Index int }

type Reroll struct{}
type Skip struct{}
type Retry struct{}

func (Dir) isInput()        {}
func (Tile) isInput()       {}
func (Vision) isInput()     {}
func (SelectItem) isInput() {}
func (Reroll) isInput()     {}
func (Skip) isInput()       {}
func (Retry) isInput()      {}

func (d Dir) String() string  { return fmt.Sprintf("dir %d %d", d.DX, d.DY) }
func (t Tile) String() string { return fmt.Sprintf("tile %d %d", t.X, t.Y) }
func (v Vision) String() string {
	if v.Commit {
		return fmt.Sprintf("look %d %d commit", v.Pos.X, v.Pos.Y)
	}
	return fmt.Sprintf("look %d %d", v.Pos.X, v.Pos.Y)
}
func (s SelectItem) String() string { return fmt.Sprintf("select %d", s.Index) }
func (Reroll) String() string       { return "reroll" }
func (Skip) String() string         { return "skip" }
func (Retry) String() string        { return "retry" }

// Pos returns the offset as a position delta.
func (d Dir) Pos() grid.Pos { return grid.Pos{X: d.DX, Y: d.DY} }

// Pos returns the addressed tile.
func (t Tile) Pos() grid.Pos { return grid.Pos{X: t.X, Y: t.Y} }
