package engine

import (
	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
)

// EntitySnapshot is a copy of one entity.
type EntitySnapshot struct {
	ID id.ID `json:"id"`
	Entity
}

// BoardItemSnapshot is a copy of one placement.
type BoardItemSnapshot struct {
	ID   id.ID    `json:"id"`
	Item id.ID    `json:"item"`
	Kind string   `json:"kind"`
	Pos  grid.Pos `json:"pos"`
}

// ItemSnapshot is a copy of one inventory item.
type ItemSnapshot struct {
	ID           id.ID      `json:"id"`
	Kind         string     `json:"kind"`
	Categories   []string   `json:"categories,omitempty"`
	Board        id.ID      `json:"board"`
	TurnsOnBoard int        `json:"turns_on_board"`
	Used         bool       `json:"used"`
	Permanent    data.Stats `json:"permanent"`
	Temporary    data.Stats `json:"temporary"`
}

// OnBoard reports whether the item was placed when the snapshot was taken.
func (s ItemSnapshot) OnBoard() bool { return !s.Board.IsZero() }

// Snapshot is an immutable, internally consistent copy of the model taken
// between updates. Nothing in it aliases model state.
type Snapshot struct {
	Phase      Phase               `json:"phase"`
	PhaseName  string              `json:"phase_name"`
	Cycle      int                 `json:"cycle"`
	MovesLeft  int                 `json:"moves_left"`
	Player     id.ID               `json:"player"`
	Tiles      []grid.Pos          `json:"tiles"`
	Fractured  []grid.Pos          `json:"fractured"`
	Entities   []EntitySnapshot    `json:"entities"`
	BoardItems []BoardItemSnapshot `json:"board_items"`
	Inventory  []ItemSnapshot      `json:"inventory"`
	Animations []Animation         `json:"animations"`
	Lights     []grid.Light        `json:"lights"`

	grid *grid.Grid
}

// Snapshot copies the model's current state.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Phase:      m.phase.clone(),
		PhaseName:  m.phase.Kind().String(),
		Cycle:      m.cycle,
		MovesLeft:  m.moves,
		Player:     m.player,
		Tiles:      m.grid.Tiles(),
		Fractured:  m.grid.Fractured(),
		Animations: append([]Animation(nil), m.animations...),
		Lights:     m.currentLights(),
		grid:       m.grid.Clone(),
	}
	m.store.entities.Each(func(i id.ID, e *Entity) {
		s.Entities = append(s.Entities, EntitySnapshot{ID: i, Entity: *e})
	})
	m.store.board.Each(func(b id.ID, bi *BoardItem) {
		kind := ""
		if it, ok := m.store.Item(bi.Item); ok {
			kind = it.Kind.Name()
		}
		s.BoardItems = append(s.BoardItems, BoardItemSnapshot{ID: b, Item: bi.Item, Kind: kind, Pos: bi.Pos})
	})
	m.store.inventory.Each(func(i id.ID, it *InventoryItem) {
		s.Inventory = append(s.Inventory, ItemSnapshot{
			ID:           i,
			Kind:         it.Kind.Name(),
			Categories:   append([]string(nil), it.Kind.Config.Categories...),
			Board:        it.Board,
			TurnsOnBoard: it.TurnsOnBoard,
			Used:         it.Used,
			Permanent:    it.Permanent.Clone(),
			Temporary:    it.Temporary.Clone(),
		})
	})
	return s
}

// LightLevel answers the light query against the snapshot's own copy of
// the grid and light sources.
func (s Snapshot) LightLevel(p grid.Pos) float32 {
	if s.grid == nil {
		return 0
	}
	return s.grid.LightLevel(p, s.Lights)
}

// PlayerEntity returns the player's entity record.
func (s Snapshot) PlayerEntity() (EntitySnapshot, bool) {
	for _, e := range s.Entities {
		if e.ID == s.Player {
			return e, true
		}
	}
	return EntitySnapshot{}, false
}

// EntityAt returns the entity standing on p.
func (s Snapshot) EntityAt(p grid.Pos) (EntitySnapshot, bool) {
	for _, e := range s.Entities {
		if e.Pos == p {
			return e, true
		}
	}
	return EntitySnapshot{}, false
}

// BoardItemAt returns the placement on p.
func (s Snapshot) BoardItemAt(p grid.Pos) (BoardItemSnapshot, bool) {
	for _, b := range s.BoardItems {
		if b.Pos == p {
			return b, true
		}
	}
	return BoardItemSnapshot{}, false
}

// Item returns an inventory item by id.
func (s Snapshot) Item(i id.ID) (ItemSnapshot, bool) {
	for _, it := range s.Inventory {
		if it.ID == i {
			return it, true
		}
	}
	return ItemSnapshot{}, false
}
