package engine

import (
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
)

// AnimationKind tags what an animation completes.
type AnimationKind string

const (
	AnimationDamage    AnimationKind = "damage"
	AnimationDuplicate AnimationKind = "duplicate"
)

// Animation is a logical countdown. Presentation may interpolate over it;
// the model only cares when it expires.
type Animation struct {
	Kind      AnimationKind `json:"kind"`
	Entity    id.ID         `json:"entity,omitempty"`
	Item      id.ID         `json:"item,omitempty"`
	Pos       grid.Pos      `json:"pos"`
	Remaining float64       `json:"remaining"`
	Duration  float64       `json:"duration"`
}

// Progress returns how far the animation has run, in [0,1].
func (a Animation) Progress() float64 {
	if a.Duration <= 0 {
		return 1
	}
	return 1 - a.Remaining/a.Duration
}

func (m *Model) animate(a Animation, duration float64) {
	a.Duration = saturate(duration)
	a.Remaining = a.Duration
	m.animations = append(m.animations, a)
}

// tickAnimations advances every animation by dt and completes the expired
// ones in registration order.
func (m *Model) tickAnimations(dt float64) {
	if len(m.animations) == 0 {
		return
	}
	var live, expired []Animation
	for _, a := range m.animations {
		a.Remaining = saturate(a.Remaining - dt)
		if a.Remaining > 0 {
			live = append(live, a)
		} else {
			expired = append(expired, a)
		}
	}
	m.animations = live
	for _, a := range expired {
		m.complete(a)
	}
}

func (m *Model) complete(a Animation) {
	if a.Kind != AnimationDuplicate {
		return
	}
	orig, ok := m.store.Item(a.Item)
	if !ok {
		m.logger.Warn("duplicate dropped", zap.Stringer("item", a.Item), zap.Error(ErrTargetMissing))
		return
	}
	copyID, err := m.createItem(orig.Kind.Name())
	if err != nil {
		m.logger.Warn("duplicate dropped", zap.Stringer("item", a.Item), zap.Error(err))
		return
	}
	if pos, ok := m.store.ItemPos(a.Item); ok {
		for _, n := range pos.Neighbors() {
			if m.freeTile(n) {
				if _, err := m.store.Place(copyID, n); err != nil {
					m.invariant(err)
				}
				break
			}
		}
	}
	m.logger.Debug("item duplicated", zap.String("kind", orig.Kind.Name()), zap.Stringer("copy", copyID))
}

// Animating reports whether any animation is still running.
func (m *Model) Animating() bool { return len(m.animations) > 0 }
