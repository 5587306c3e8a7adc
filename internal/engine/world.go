package engine

import (
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
	"github.com/suderio/quantum-dungeon/internal/script"
)

// LightSource is an emitted light with a lifetime counted in cycles.
type LightSource struct {
	grid.Light
	Remaining int `json:"remaining"`
	Duration  int `json:"duration"`
}

// currentLights lists every light that contributes right now: the player's
// own light, the look cone, and emitted lights faded by remaining life.
func (m *Model) currentLights() []grid.Light {
	player, _ := m.store.Entity(m.player)
	lights := []grid.Light{{Pos: player.Pos, Radius: m.cfg.PlayerLight, Intensity: 1}}
	if look, ok := m.lookCone(); ok {
		lights = append(lights, look)
	}
	for _, l := range m.lights {
		lt := l.Light
		if l.Duration > 0 {
			lt.Intensity = float64(l.Remaining) / float64(l.Duration)
		}
		lights = append(lights, lt)
	}
	return lights
}

func (m *Model) lookCone() (grid.Light, bool) {
	player, _ := m.store.Entity(m.player)
	dir := player.Look
	if v, ok := m.phase.(*VisionPhase); ok {
		if d := player.Pos.DirectionTo(v.Look); !d.IsZero() {
			dir = d
		}
	}
	if dir.IsZero() {
		return grid.Light{}, false
	}
	return grid.Light{Pos: player.Pos, Radius: m.cfg.LookRadius, Intensity: 1, Dir: dir}, true
}

// LightLevel returns the light level of p. It is recomputed from the grid
// and the live light sources on every call.
func (m *Model) LightLevel(p grid.Pos) float32 {
	return m.grid.LightLevel(p, m.currentLights())
}

// visible reports whether p is lit above the visited floor.
func (m *Model) visible(p grid.Pos) bool {
	return m.LightLevel(p) > grid.VisitedGlow
}

// observed reports whether p lies in the player's look cone.
func (m *Model) observed(p grid.Pos) bool {
	cone, ok := m.lookCone()
	return ok && m.grid.Exists(p) && cone.Covers(p)
}

// worldView is the read-only face of the model handed to scripts.
type worldView struct{ m *Model }

func (w worldView) Item(i id.ID) (script.ItemView, bool) {
	it, ok := w.m.store.Item(i)
	if !ok {
		return script.ItemView{}, false
	}
	return w.view(i, it), true
}

func (w worldView) Items() []script.ItemView {
	var out []script.ItemView
	w.m.store.inventory.Each(func(i id.ID, it *InventoryItem) {
		out = append(out, w.view(i, it))
	})
	return out
}

func (w worldView) view(i id.ID, it *InventoryItem) script.ItemView {
	v := script.ItemView{
		ID:           i,
		Kind:         it.Kind.Name(),
		Categories:   append([]string(nil), it.Kind.Config.Categories...),
		Stats:        it.Temporary.Clone(),
		TurnsOnBoard: it.TurnsOnBoard,
		Used:         it.Used,
	}
	if pos, ok := w.m.store.ItemPos(i); ok {
		v.OnBoard = true
		v.Pos = pos
	}
	return v
}

func (w worldView) Entities() []script.EntityView {
	var out []script.EntityView
	w.m.store.entities.Each(func(i id.ID, e *Entity) {
		out = append(out, script.EntityView{
			ID:        i,
			Kind:      e.Kind,
			Pos:       e.Pos,
			Health:    e.Health,
			MaxHealth: e.MaxHealth,
			Player:    e.Fraction == FractionPlayer,
		})
	})
	return out
}

func (w worldView) LightLevel(p grid.Pos) float32 { return w.m.LightLevel(p) }
func (w worldView) Observed(p grid.Pos) bool      { return w.m.observed(p) }
func (w worldView) Cycle() int                    { return w.m.cycle }

func (w worldView) HasKind(name string) bool {
	_, ok := w.m.catalog.Kind(name)
	return ok
}
