package grid

import "math"

// VisitedGlow is the floor light level of a tile that was ever fractured.
const VisitedGlow = 0.2

// coneCos is cos(45°): a cone light covers a 90° wedge around its direction.
var coneCos = math.Sqrt2 / 2

// Light is a single light source. A zero Dir means omnidirectional; any
// other Dir restricts the light to a cone facing that direction.
type Light struct {
	Pos       Pos     `json:"pos"`
	Radius    float64 `json:"radius"`
	Intensity float64 `json:"intensity"`
	Dir       Pos     `json:"dir,omitempty"`
}

// At returns the contribution of l to tile p, in [0, Intensity].
func (l Light) At(p Pos) float64 {
	d := l.Pos.Distance(p)
	if d > l.Radius {
		return 0
	}
	if !l.Dir.IsZero() && p != l.Pos {
		v := p.Sub(l.Pos)
		dot := float64(v.X*l.Dir.X + v.Y*l.Dir.Y)
		if dot+1e-9 < d*coneCos {
			return 0
		}
	}
	return l.Intensity * (1 - d/(l.Radius+1))
}

// Covers reports whether p receives any light from l.
func (l Light) Covers(p Pos) bool { return l.At(p) > 0 }

// LightLevel computes the light level of p from the current grid and light
// sources. It keeps no cache: the result is a pure function of its inputs.
func (g *Grid) LightLevel(p Pos, lights []Light) float32 {
	if !g.Exists(p) {
		return 0
	}
	level := 0.0
	if g.Visited(p) {
		level = VisitedGlow
	}
	for _, l := range lights {
		level = math.Max(level, l.At(p))
	}
	return float32(math.Min(1, math.Max(0, level)))
}
