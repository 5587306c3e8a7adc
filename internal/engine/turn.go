package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
	"github.com/suderio/quantum-dungeon/internal/script"
)

func (m *Model) handlePlayer(in Input) error {
	switch v := in.(type) {
	case Dir:
		return m.move(v)
	case Tile:
		return m.useTile(v.Pos())
	case Skip:
		m.enterVision()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrWrongPhase, in)
}

// move validates and performs one step of the player.
func (m *Model) move(d Dir) error {
	step := d.Pos()
	if !step.IsUnit() {
		return fmt.Errorf("%w: direction %v is not a unit step", ErrInvalidInput, step)
	}
	player, _ := m.store.Entity(m.player)
	target := player.Pos.Add(step)
	if !m.grid.Exists(target) {
		return fmt.Errorf("%w: no tile at %v", ErrInvalidInput, target)
	}
	if m.grid.IsFractured(target) {
		return fmt.Errorf("%w: tile %v is fractured", ErrInvalidInput, target)
	}
	if _, _, ok := m.store.EntityAt(target); ok {
		return fmt.Errorf("%w: tile %v is blocked", ErrInvalidInput, target)
	}

	player.Pos = target
	player.Look = step
	m.grid.Fracture(target)
	if _, bi, ok := m.store.BoardAt(target); ok {
		item := bi.Item
		if err := m.store.Unplace(item); err != nil {
			m.invariant(err)
		} else {
			m.logger.Debug("item picked up", zap.Stringer("item", item), zap.Any("pos", target))
		}
	}
	m.moves--
	if m.moves <= 0 {
		m.moves = 0
		m.enterVision()
	}
	return nil
}

func (m *Model) enterVision() {
	player, _ := m.store.Entity(m.player)
	look := player.Pos.Add(player.Look)
	if player.Look.IsZero() {
		look = player.Pos.Add(grid.Directions[0])
	}
	m.setPhase(&VisionPhase{Look: look})
}

// useTile activates the board item on p, or places the last carried item
// on an empty tile next to the player.
func (m *Model) useTile(p grid.Pos) error {
	if _, bi, ok := m.store.BoardAt(p); ok {
		it, _ := m.store.Item(bi.Item)
		if it.Used {
			return fmt.Errorf("%w: %s was already used this cycle", ErrInvalidInput, it.Kind.Name())
		}
		if !it.Kind.Unit.Handles(script.TriggerActive) {
			return fmt.Errorf("%w: %s has nothing to activate", ErrInvalidInput, it.Kind.Name())
		}
		m.activate(bi.Item)
		return nil
	}

	player, _ := m.store.Entity(m.player)
	if !m.grid.Exists(p) || !p.Sub(player.Pos).IsUnit() {
		return fmt.Errorf("%w: %v is not an empty tile next to the player", ErrInvalidInput, p)
	}
	if _, _, ok := m.store.EntityAt(p); ok {
		return fmt.Errorf("%w: tile %v is blocked", ErrInvalidInput, p)
	}
	carried := m.store.Carried()
	if len(carried) == 0 {
		return fmt.Errorf("%w: nothing to place", ErrInvalidInput)
	}
	item := carried[len(carried)-1]
	if _, err := m.store.Place(item, p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (m *Model) handleVision(p *VisionPhase, in Input) error {
	player, _ := m.store.Entity(m.player)
	switch v := in.(type) {
	case Dir:
		if !v.Pos().IsUnit() {
			return fmt.Errorf("%w: direction %v is not a unit step", ErrInvalidInput, v.Pos())
		}
		player.Look = v.Pos()
		p.Look = player.Pos.Add(v.Pos())
		return nil
	case Vision:
		dir := player.Pos.DirectionTo(v.Pos)
		if dir.IsZero() {
			return fmt.Errorf("%w: cannot look at own tile", ErrInvalidInput)
		}
		player.Look = dir
		p.Look = v.Pos
		if v.Commit {
			target := v.Pos
			m.lookTarget = &target
			m.setPhase(&SelectPhase{Options: m.rollOptions(m.cfg.OptionsPerSelect)})
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrWrongPhase, in)
}

func (m *Model) handleSelect(p *SelectPhase, in Input) error {
	switch v := in.(type) {
	case SelectItem:
		if v.Index < 0 || v.Index >= len(p.Options) {
			return fmt.Errorf("%w: option %d of %d", ErrInvalidInput, v.Index, len(p.Options))
		}
		item, err := m.createItem(p.Options[v.Index])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if t := m.lookTarget; t != nil && m.freeTile(*t) {
			if _, err := m.store.Place(item, *t); err != nil {
				m.invariant(err)
			}
		}
		m.lookTarget = nil
		m.startNight()
		return nil
	case Reroll:
		if p.Rerolls >= m.cfg.RerollsPerCycle {
			return fmt.Errorf("%w: no rerolls left", ErrInvalidInput)
		}
		p.Options = m.rollOptions(m.cfg.OptionsPerSelect)
		p.Rerolls++
		return nil
	case Skip:
		m.lookTarget = nil
		m.startNight()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrWrongPhase, in)
}

func (m *Model) handleMap(p *MapPhase, in Input) error {
	switch v := in.(type) {
	case Tile:
		t := v.Pos()
		if m.grid.Exists(t) || !m.grid.Touches(t) {
			return fmt.Errorf("%w: %v is not a new tile next to the board", ErrInvalidInput, t)
		}
		m.grid.AddTile(t)
		p.TilesLeft--
		if p.TilesLeft <= 0 {
			m.finishResolution()
		}
		return nil
	case Skip:
		m.finishResolution()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrWrongPhase, in)
}

func (m *Model) handlePortal(p *PortalPhase, in Input) error {
	switch v := in.(type) {
	case SelectItem:
		if v.Index < 0 || v.Index >= len(p.Options) {
			return fmt.Errorf("%w: option %d of %d", ErrInvalidInput, v.Index, len(p.Options))
		}
		if _, err := m.createItem(p.Options[v.Index]); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		m.finishResolution()
		return nil
	case Skip:
		m.finishResolution()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrWrongPhase, in)
}

// freeTile reports whether p exists and holds neither an item nor an entity.
func (m *Model) freeTile(p grid.Pos) bool {
	if !m.grid.Exists(p) {
		return false
	}
	if _, _, ok := m.store.BoardAt(p); ok {
		return false
	}
	_, _, ok := m.store.EntityAt(p)
	return !ok
}

// boardOrder lists placed items in row-major position order.
func (m *Model) boardOrder() []id.ID {
	type placed struct {
		item id.ID
		pos  grid.Pos
	}
	var all []placed
	for _, b := range m.store.BoardIDs() {
		bi, _ := m.store.BoardItem(b)
		all = append(all, placed{bi.Item, bi.Pos})
	}
	positions := make([]grid.Pos, len(all))
	byPos := make(map[grid.Pos]id.ID, len(all))
	for i, p := range all {
		positions[i] = p.pos
		byPos[p.pos] = p.item
	}
	grid.SortPositions(positions)
	out := make([]id.ID, len(positions))
	for i, p := range positions {
		out[i] = byPos[p]
	}
	return out
}
