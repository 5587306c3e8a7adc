// Package grid tracks which tiles exist, which were stepped on this turn,
// and derives per-tile light levels from a set of light sources.
package grid

import (
	"math"
	"sort"
)

// Pos is an integer tile coordinate.
type Pos struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Directions holds the 4-neighbourhood unit offsets.
var Directions = [4]Pos{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

func (p Pos) Add(o Pos) Pos { return Pos{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Pos) Sub(o Pos) Pos { return Pos{X: p.X - o.X, Y: p.Y - o.Y} }
func (p Pos) IsZero() bool  { return p.X == 0 && p.Y == 0 }

// IsUnit reports whether p is exactly one of Directions.
func (p Pos) IsUnit() bool {
	return (abs(p.X) == 1 && p.Y == 0) || (p.X == 0 && abs(p.Y) == 1)
}

// Chebyshev returns the king-move distance between two tiles.
func (p Pos) Chebyshev(o Pos) int {
	return max(abs(p.X-o.X), abs(p.Y-o.Y))
}

// Distance returns the euclidean distance between two tiles.
func (p Pos) Distance(o Pos) float64 {
	return math.Hypot(float64(p.X-o.X), float64(p.Y-o.Y))
}

// Neighbors returns the 4-neighbourhood of p.
func (p Pos) Neighbors() [4]Pos {
	var out [4]Pos
	for i, d := range Directions {
		out[i] = p.Add(d)
	}
	return out
}

// DirectionTo returns the unit direction along the dominant axis from p
// towards o. Ties favour the horizontal axis. Equal positions yield zero.
func (p Pos) DirectionTo(o Pos) Pos {
	d := o.Sub(p)
	if d.IsZero() {
		return Pos{}
	}
	if abs(d.X) >= abs(d.Y) {
		return Pos{X: sign(d.X)}
	}
	return Pos{Y: sign(d.Y)}
}

type set map[Pos]struct{}

// Grid stores existing tiles, the tiles fractured this turn and the tiles
// that have ever been fractured.
type Grid struct {
	tiles     set
	fractured set
	visited   set
}

// New builds a grid from an explicit tile list.
func New(tiles []Pos) *Grid {
	g := &Grid{tiles: set{}, fractured: set{}, visited: set{}}
	for _, t := range tiles {
		g.tiles[t] = struct{}{}
	}
	return g
}

// NewRect builds a width x height grid anchored at the origin.
func NewRect(width, height int) *Grid {
	tiles := make([]Pos, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tiles = append(tiles, Pos{X: x, Y: y})
		}
	}
	return New(tiles)
}

func (g *Grid) Exists(p Pos) bool {
	_, ok := g.tiles[p]
	return ok
}

// AddTile opens a new tile. It returns false if the tile already existed.
func (g *Grid) AddTile(p Pos) bool {
	if g.Exists(p) {
		return false
	}
	g.tiles[p] = struct{}{}
	return true
}

// Touches reports whether p is orthogonally adjacent to an existing tile.
func (g *Grid) Touches(p Pos) bool {
	for _, n := range p.Neighbors() {
		if g.Exists(n) {
			return true
		}
	}
	return false
}

// Fracture marks p as stepped on this turn.
func (g *Grid) Fracture(p Pos) {
	g.fractured[p] = struct{}{}
	g.visited[p] = struct{}{}
}

func (g *Grid) IsFractured(p Pos) bool {
	_, ok := g.fractured[p]
	return ok
}

func (g *Grid) Visited(p Pos) bool {
	_, ok := g.visited[p]
	return ok
}

// ResetFractured clears the per-turn fractured set. Visited history stays.
func (g *Grid) ResetFractured() {
	g.fractured = set{}
}

func (g *Grid) Len() int { return len(g.tiles) }

// Tiles returns every tile sorted row-major.
func (g *Grid) Tiles() []Pos { return sorted(g.tiles) }

// Fractured returns the fractured tiles sorted row-major.
func (g *Grid) Fractured() []Pos { return sorted(g.fractured) }

// Bounds returns the inclusive bounding box of all tiles.
func (g *Grid) Bounds() (lo, hi Pos) {
	first := true
	for t := range g.tiles {
		if first {
			lo, hi = t, t
			first = false
			continue
		}
		lo = Pos{X: min(lo.X, t.X), Y: min(lo.Y, t.Y)}
		hi = Pos{X: max(hi.X, t.X), Y: max(hi.Y, t.Y)}
	}
	return lo, hi
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{tiles: g.tiles.clone(), fractured: g.fractured.clone(), visited: g.visited.clone()}
}

func (s set) clone() set {
	out := make(set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// SortPositions orders positions row-major in place.
func SortPositions(ps []Pos) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}

func sorted(s set) []Pos {
	out := make([]Pos, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	SortPositions(out)
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
