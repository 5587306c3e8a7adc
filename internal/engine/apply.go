package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/effect"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
	"github.com/suderio/quantum-dungeon/internal/script"
)

// apply performs one effect. A returned error means the effect was dropped
// and the model is unchanged by it.
func (m *Model) apply(e effect.Effect) error {
	switch v := e.(type) {
	case effect.SetUsed:
		it, err := m.item(v.Item)
		if err != nil {
			return err
		}
		it.Used = true

	case effect.Damage:
		target, ok := m.store.Entity(v.Target)
		if !ok || !target.Alive() {
			return fmt.Errorf("%w: entity %s is gone", ErrTargetMissing, v.Target)
		}
		target.Health -= max(v.Amount, 0)
		if target.Health < 0 {
			target.Health = 0
		}
		m.animate(Animation{Kind: AnimationDamage, Entity: v.Target, Pos: target.Pos}, m.cfg.DamageAnimation)

	case effect.Bonus:
		it, err := m.item(v.Target)
		if err != nil {
			return err
		}
		if v.Permanent {
			it.Permanent.Add(v.Stats)
		}
		it.Temporary.Add(v.Stats)

	case effect.OpenTiles:
		if v.Count <= 0 {
			return fmt.Errorf("%w: cannot open %d tiles", ErrInvalidInput, v.Count)
		}
		if mp, ok := m.phase.(*MapPhase); ok {
			mp.TilesLeft += v.Count
			return nil
		}
		m.pendingTiles += v.Count

	case effect.Destroy:
		it, err := m.item(v.Item)
		if err != nil {
			return err
		}
		if v.Consume {
			return m.store.RemoveItem(v.Item)
		}
		if !it.OnBoard() {
			return fmt.Errorf("%w: item %s is not on the board", ErrTargetMissing, v.Item)
		}
		if err := m.store.Unplace(v.Item); err != nil {
			return err
		}

	case effect.Duplicate:
		if _, err := m.item(v.Item); err != nil {
			return err
		}
		pos, _ := m.store.ItemPos(v.Item)
		m.animate(Animation{Kind: AnimationDuplicate, Item: v.Item, Pos: pos}, m.cfg.DuplicateAnimation)

	case effect.GainMoves:
		m.moves += v.Count
		if m.moves < 0 {
			m.moves = 0
		}

	case effect.Portal:
		m.pendingPortal = true

	case effect.SwapItems:
		if err := m.store.Swap(v.A, v.B); err != nil {
			return fmt.Errorf("%w: %v", ErrTargetMissing, err)
		}

	case effect.TransformItem:
		return m.transform(v)

	case effect.EmitLight:
		if v.Radius <= 0 || v.Duration <= 0 {
			return fmt.Errorf("%w: light radius %.1f duration %d", ErrInvalidInput, v.Radius, v.Duration)
		}
		m.lights = append(m.lights, LightSource{
			Light:     grid.Light{Pos: v.Pos, Radius: v.Radius, Intensity: 1},
			Remaining: v.Duration,
			Duration:  v.Duration,
		})

	case effect.UseItem:
		return m.useItem(v.Item)

	case effect.NewItem:
		return m.newItem(v.KindName)

	default:
		return fmt.Errorf("unknown effect %T", e)
	}
	return nil
}

func (m *Model) item(i id.ID) (*InventoryItem, error) {
	it, ok := m.store.Item(i)
	if !ok {
		return nil, fmt.Errorf("%w: item %s is gone", ErrTargetMissing, i)
	}
	return it, nil
}

// transform swaps an item's kind in place and restarts its script state.
func (m *Model) transform(v effect.TransformItem) error {
	it, err := m.item(v.Item)
	if err != nil {
		return err
	}
	k, ok := m.catalog.Kind(v.TargetKind)
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrTargetMissing, v.TargetKind)
	}
	it.Kind = k
	it.Permanent = k.Config.Stats.Clone()
	it.Temporary = k.Config.Stats.Clone()
	m.instantiate(v.Item, it)
	return nil
}

// useItem runs another item's active handler inside the current drain.
// Each item runs at most once per drain, which bounds use chains.
func (m *Model) useItem(i id.ID) error {
	it, err := m.item(i)
	if err != nil {
		return err
	}
	if it.Used {
		return fmt.Errorf("%w: item %s was already used this cycle", ErrInvalidInput, i)
	}
	if m.chain == nil {
		m.chain = map[id.ID]bool{}
	}
	if m.chain[i] {
		return fmt.Errorf("%w: item %s already ran in this chain", ErrInvalidInput, i)
	}
	m.chain[i] = true
	m.runTrigger(i, script.TriggerActive)
	return nil
}

// newItem creates an item and tries to place it on a free tile the player
// cannot currently see. Without such a tile it stays carried.
func (m *Model) newItem(kind string) error {
	if _, ok := m.catalog.Kind(kind); !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrTargetMissing, kind)
	}
	item, err := m.createItem(kind)
	if err != nil {
		return err
	}
	var hidden []grid.Pos
	for _, p := range m.grid.Tiles() {
		if m.freeTile(p) && !m.visible(p) {
			hidden = append(hidden, p)
		}
	}
	if len(hidden) == 0 {
		m.logger.Debug("new item carried", zap.String("kind", kind))
		return nil
	}
	p := hidden[m.rng.Intn(len(hidden))]
	if _, err := m.store.Place(item, p); err != nil {
		return err
	}
	return nil
}
