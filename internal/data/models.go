package data

import "github.com/suderio/quantum-dungeon/internal/grid"

// ItemConfig is the designer-authored definition of one item kind.
type ItemConfig struct {
	Name       string   `json:"name" yaml:"name" jsonschema:"required"`
	Categories []string `json:"categories,omitempty" yaml:"categories"`
	Stats      Stats    `json:"stats,omitempty" yaml:"stats"`
	// SpawnWeight is a CEL expression over `cycle` and `owned` returning a
	// number. Empty means 1.
	SpawnWeight string `json:"spawn_weight,omitempty" yaml:"spawn_weight"`
	// Animations maps a trigger name to the presentation delay in seconds.
	// A trigger without an entry resolves without any delay.
	Animations map[string]float64 `json:"animations,omitempty" yaml:"animations"`
	Script     string             `json:"script,omitempty" yaml:"script"`
}

// HasCategory reports whether the item is tagged with category.
func (c ItemConfig) HasCategory(category string) bool {
	for _, cat := range c.Categories {
		if cat == category {
			return true
		}
	}
	return false
}

// CatalogDocument is the top-level structure of an item catalog file.
type CatalogDocument struct {
	Items []ItemConfig `json:"items" yaml:"items" jsonschema:"required"`
}

// EnemyConfig describes one enemy kind that the night may spawn.
type EnemyConfig struct {
	Name   string `json:"name" yaml:"name"`
	Health int    `json:"health" yaml:"health"`
	Damage int    `json:"damage" yaml:"damage"`
	Weight string `json:"weight,omitempty" yaml:"weight"`
}

// Placement puts a starting item on a tile.
type Placement struct {
	Kind string `json:"kind" yaml:"kind"`
	X    int    `json:"x" yaml:"x"`
	Y    int    `json:"y" yaml:"y"`
}

// Pos returns the placement's tile.
func (p Placement) Pos() grid.Pos { return grid.Pos{X: p.X, Y: p.Y} }

// LevelConfig describes the board a run starts on.
type LevelConfig struct {
	Name string `json:"name" yaml:"name"`
	// Either Width/Height or an explicit Tiles list defines the board.
	Width  int        `json:"width,omitempty" yaml:"width"`
	Height int        `json:"height,omitempty" yaml:"height"`
	Tiles  []grid.Pos `json:"tiles,omitempty" yaml:"tiles"`

	PlayerStart  grid.Pos    `json:"player_start" yaml:"player_start"`
	PlayerHealth int         `json:"player_health" yaml:"player_health"`
	Turns        int         `json:"turns" yaml:"turns"` // 0 means unlimited
	Items        []Placement `json:"items,omitempty" yaml:"items"`
	Carried      []string    `json:"carried,omitempty" yaml:"carried"`

	Enemies []EnemyConfig `json:"enemies,omitempty" yaml:"enemies"`
	// EnemiesPerNight is a CEL expression over `cycle` returning how many
	// enemies spawn at each night. Empty means none.
	EnemiesPerNight string `json:"enemies_per_night,omitempty" yaml:"enemies_per_night"`
}

// Grid builds the level's starting grid.
func (l LevelConfig) Grid() *grid.Grid {
	if len(l.Tiles) > 0 {
		return grid.New(l.Tiles)
	}
	return grid.NewRect(l.Width, l.Height)
}
