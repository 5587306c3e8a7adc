package parser

import (
	"strings"

	"github.com/suderio/quantum-dungeon/internal/engine"
	"github.com/suderio/quantum-dungeon/internal/grid"
)

// Command is one line of player input.
type Command struct {
	Move   *MoveCmd   `parser:"( @@"`
	Dir    *DirCmd    `parser:"| @@"`
	Tile   *TileCmd   `parser:"| @@"`
	Look   *LookCmd   `parser:"| @@"`
	Select *SelectCmd `parser:"| @@"`
	Bare   *BareCmd   `parser:"| @@ )"`
}

// MoveCmd steps the player one tile in a named direction.
type MoveCmd struct {
	Keyword string `parser:"(\"move\"|\"go\")"`
	Way     string `parser:"@(\"left\"|\"right\"|\"up\"|\"down\"|\"north\"|\"south\"|\"east\"|\"west\")"`
}

// DirCmd is the raw offset form: dir <dx> <dy>.
type DirCmd struct {
	Keyword string `parser:"\"dir\""`
	DX      int    `parser:"@Int"`
	DY      int    `parser:"@Int"`
}

// TileCmd addresses a tile: tile <x> <y>.
type TileCmd struct {
	Keyword string `parser:"\"tile\""`
	X       int    `parser:"@Int"`
	Y       int    `parser:"@Int"`
}

// LookCmd points the look: look <x> <y> [commit].
type LookCmd struct {
	Keyword string `parser:"\"look\""`
	X       int    `parser:"@Int"`
	Y       int    `parser:"@Int"`
	Commit  bool   `parser:"@\"commit\"?"`
}

// SelectCmd picks an offered option by index.
type SelectCmd struct {
	Keyword string `parser:"\"select\""`
	Index   int    `parser:"@Int"`
}

// BareCmd covers the argument-less inputs.
type BareCmd struct {
	Word string `parser:"@(\"reroll\"|\"skip\"|\"retry\")"`
}

var ways = map[string]grid.Pos{
	"left": {X: -1}, "west": {X: -1},
	"right": {X: 1}, "east": {X: 1},
	"up": {Y: -1}, "north": {Y: -1},
	"down": {Y: 1}, "south": {Y: 1},
}

// Input converts the parsed command to an engine input.
func (c *Command) Input() engine.Input {
	switch {
	case c.Move != nil:
		d := ways[strings.ToLower(c.Move.Way)]
		return engine.Dir{DX: d.X, DY: d.Y}
	case c.Dir != nil:
		return engine.Dir{DX: c.Dir.DX, DY: c.Dir.DY}
	case c.Tile != nil:
		return engine.Tile{X: c.Tile.X, Y: c.Tile.Y}
	case c.Look != nil:
		return engine.Vision{Pos: grid.Pos{X: c.Look.X, Y: c.Look.Y}, Commit: c.Look.Commit}
	case c.Select != nil:
		return engine.SelectItem{Index: c.Select.Index}
	case c.Bare != nil:
		switch strings.ToLower(c.Bare.Word) {
		case "reroll":
			return engine.Reroll{}
		case "retry":
			return engine.Retry{}
		}
		return engine.Skip{}
	}
	return nil
}
