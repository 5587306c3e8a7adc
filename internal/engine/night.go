package engine

import (
	"math"

	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/effect"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
	"github.com/suderio/quantum-dungeon/internal/script"
)

// startNight runs the generation step of a new cycle and hands over to
// the passive resolution.
func (m *Model) startNight() {
	m.setPhase(&NightPhase{})
	m.cycle++
	if m.level.Turns > 0 && m.cycle > m.level.Turns {
		m.setPhase(&LevelFinishedPhase{Win: true})
		return
	}

	m.decayLights()
	m.grid.ResetFractured()
	m.store.inventory.Each(func(_ id.ID, it *InventoryItem) {
		it.Used = false
		if it.OnBoard() {
			it.TurnsOnBoard++
		}
	})
	m.moves = m.cfg.MovesPerTurn

	for _, item := range m.boardOrder() {
		m.resolve(Step{Item: item, Trigger: script.TriggerNight})
	}
	m.spawnEnemies()
	m.enemiesAct()
	if m.reap() {
		return
	}
	m.beginPassive()
}

// beginPassive resets temporary stats and queues the day steps: every
// board item's day_bonus, then every board item's day_action.
func (m *Model) beginPassive() {
	m.store.inventory.Each(func(_ id.ID, it *InventoryItem) {
		it.Temporary = it.Permanent.Clone()
	})
	order := m.boardOrder()
	queue := make([]Step, 0, 2*len(order))
	for _, item := range order {
		queue = append(queue, Step{Item: item, Trigger: script.TriggerDayBonus})
	}
	for _, item := range order {
		queue = append(queue, Step{Item: item, Trigger: script.TriggerDayAction})
	}
	m.setPhase(&PassivePhase{Queue: queue})
}

func (m *Model) decayLights() {
	live := m.lights[:0]
	for _, l := range m.lights {
		l.Remaining--
		if l.Remaining > 0 {
			live = append(live, l)
		}
	}
	m.lights = live
}

// spawnEnemies places the number of enemies the level's policy asks for
// on free tiles away from the player, preferring tiles out of sight.
func (m *Model) spawnEnemies() {
	if m.level.EnemiesPerNight == "" || len(m.level.Enemies) == 0 || m.catalog.Eval == nil {
		return
	}
	vars := map[string]any{"cycle": m.cycle}
	n, err := m.catalog.Eval.EvalNumber(m.level.EnemiesPerNight, vars)
	if err != nil {
		m.logger.Warn("enemy policy failed", zap.Error(err))
		return
	}
	count := int(math.Floor(n))

	weights := make([]float64, len(m.level.Enemies))
	for i, e := range m.level.Enemies {
		weights[i] = 1
		if e.Weight == "" {
			continue
		}
		w, err := m.catalog.Eval.EvalNumber(e.Weight, vars)
		if err != nil {
			m.logger.Warn("enemy weight failed", zap.String("enemy", e.Name), zap.Error(err))
			w = 0
		}
		weights[i] = w
	}

	player, _ := m.store.Entity(m.player)
	for i := 0; i < count; i++ {
		var hidden, seen []grid.Pos
		for _, p := range m.grid.Tiles() {
			if !m.freeTile(p) || p.Chebyshev(player.Pos) <= 1 {
				continue
			}
			if m.visible(p) {
				seen = append(seen, p)
			} else {
				hidden = append(hidden, p)
			}
		}
		candidates := hidden
		if len(candidates) == 0 {
			candidates = seen
		}
		if len(candidates) == 0 {
			return
		}
		k := weightedIndex(m.rng, weights)
		if k < 0 {
			return
		}
		cfg := m.level.Enemies[k]
		pos := candidates[m.rng.Intn(len(candidates))]
		eid := m.store.AddEntity(&Entity{
			Kind:      cfg.Name,
			Fraction:  FractionEnemy,
			Pos:       pos,
			Health:    cfg.Health,
			MaxHealth: cfg.Health,
			Damage:    cfg.Damage,
		})
		m.logger.Debug("enemy spawned", zap.String("kind", cfg.Name), zap.Stringer("id", eid), zap.Any("pos", pos))
	}
}

// enemiesAct steps each enemy towards the player and lets adjacent
// enemies strike.
func (m *Model) enemiesAct() {
	player, _ := m.store.Entity(m.player)
	for _, eid := range m.store.EntityIDs() {
		if eid == m.player {
			continue
		}
		e, _ := m.store.Entity(eid)
		if !e.Alive() {
			continue
		}
		if !e.Pos.Sub(player.Pos).IsUnit() {
			next := e.Pos.Add(e.Pos.DirectionTo(player.Pos))
			if m.freeTile(next) {
				e.Pos = next
			}
		}
		if e.Pos.Sub(player.Pos).IsUnit() && e.Damage > 0 {
			m.queue.Push(effect.Damage{Source: eid, Target: m.player, Amount: e.Damage})
		}
	}
	m.drain()
}

// rollOptions draws n distinct kinds weighted by their spawn weights.
func (m *Model) rollOptions(n int) []string {
	names := m.catalog.Names()
	owned := map[string]int{}
	m.store.inventory.Each(func(_ id.ID, it *InventoryItem) { owned[it.Kind.Name()]++ })

	weights := make([]float64, len(names))
	for i, name := range names {
		k, _ := m.catalog.Kind(name)
		weights[i] = m.spawnWeight(k, owned[name])
	}
	var out []string
	for _, i := range drawDistinct(m.rng, weights, n) {
		out = append(out, names[i])
	}
	return out
}

func (m *Model) spawnWeight(k *Kind, owned int) float64 {
	if k.Config.SpawnWeight == "" || m.catalog.Eval == nil {
		return 1
	}
	w, err := m.catalog.Eval.EvalNumber(k.Config.SpawnWeight, map[string]any{
		"cycle": m.cycle,
		"owned": owned,
	})
	if err != nil {
		m.logger.Debug("spawn weight failed", zap.String("kind", k.Name()), zap.Error(err))
		return 0
	}
	return w
}

// portalOptions draws up to PortalOptions distinct magic kinds.
func (m *Model) portalOptions() []string {
	magic := m.catalog.WithCategory("magic")
	weights := make([]float64, len(magic))
	for i := range weights {
		weights[i] = 1
	}
	var out []string
	for _, i := range drawDistinct(m.rng, weights, m.cfg.PortalOptions) {
		out = append(out, magic[i].Name())
	}
	return out
}
