package engine

import (
	"fmt"

	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
)

// Store is the arena-backed authoritative storage. Board items and
// inventory items are kept in a checked bidirectional relationship: every
// mutation that touches one side updates the other in the same call.
type Store struct {
	entities  id.Arena[*Entity]
	board     id.Arena[*BoardItem]
	inventory id.Arena[*InventoryItem]
	occupied  map[grid.Pos]id.ID // tile -> board item
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{occupied: make(map[grid.Pos]id.ID)}
}

// --- Entities ---

func (s *Store) AddEntity(e *Entity) id.ID { return s.entities.Insert(e) }

func (s *Store) Entity(i id.ID) (*Entity, bool) { return s.entities.Get(i) }

func (s *Store) RemoveEntity(i id.ID) bool {
	_, ok := s.entities.Remove(i)
	return ok
}

// EntityIDs lists live entities in slot order.
func (s *Store) EntityIDs() []id.ID { return s.entities.IDs() }

// EntityAt returns the entity standing on p.
func (s *Store) EntityAt(p grid.Pos) (id.ID, *Entity, bool) {
	for _, eid := range s.entities.IDs() {
		e, _ := s.entities.Get(eid)
		if e.Pos == p {
			return eid, e, true
		}
	}
	return id.ID{}, nil, false
}

// --- Inventory ---

// AddItem stores a carried inventory item.
func (s *Store) AddItem(it *InventoryItem) id.ID {
	it.Board = id.ID{}
	return s.inventory.Insert(it)
}

func (s *Store) Item(i id.ID) (*InventoryItem, bool) { return s.inventory.Get(i) }

// ItemIDs lists live inventory items in slot order.
func (s *Store) ItemIDs() []id.ID { return s.inventory.IDs() }

func (s *Store) ItemCount() int { return s.inventory.Len() }

// Carried lists inventory items without a board placement.
func (s *Store) Carried() []id.ID {
	var out []id.ID
	s.inventory.Each(func(i id.ID, it *InventoryItem) {
		if !it.OnBoard() {
			out = append(out, i)
		}
	})
	return out
}

// RemoveItem deletes an inventory item together with its placement.
func (s *Store) RemoveItem(i id.ID) error {
	it, ok := s.inventory.Get(i)
	if !ok {
		return fmt.Errorf("inventory item %s: %w", i, id.ErrStale)
	}
	if it.OnBoard() {
		if err := s.Unplace(i); err != nil {
			return err
		}
	}
	s.inventory.Remove(i)
	return nil
}

// --- Board ---

func (s *Store) BoardItem(b id.ID) (*BoardItem, bool) { return s.board.Get(b) }

// BoardAt returns the board item on p.
func (s *Store) BoardAt(p grid.Pos) (id.ID, *BoardItem, bool) {
	b, ok := s.occupied[p]
	if !ok {
		return id.ID{}, nil, false
	}
	bi, ok := s.board.Get(b)
	return b, bi, ok
}

// BoardIDs lists live board items in slot order.
func (s *Store) BoardIDs() []id.ID { return s.board.IDs() }

// Place puts a carried item on a free tile.
func (s *Store) Place(item id.ID, p grid.Pos) (id.ID, error) {
	it, ok := s.inventory.Get(item)
	if !ok {
		return id.ID{}, fmt.Errorf("inventory item %s: %w", item, id.ErrStale)
	}
	if it.OnBoard() {
		return id.ID{}, fmt.Errorf("item %s is already placed", item)
	}
	if _, taken := s.occupied[p]; taken {
		return id.ID{}, fmt.Errorf("tile %v is occupied", p)
	}
	b := s.board.Insert(&BoardItem{Pos: p, Item: item})
	s.occupied[p] = b
	it.Board = b
	return b, nil
}

// Unplace removes an item's placement; the inventory record stays.
func (s *Store) Unplace(item id.ID) error {
	it, ok := s.inventory.Get(item)
	if !ok {
		return fmt.Errorf("inventory item %s: %w", item, id.ErrStale)
	}
	if !it.OnBoard() {
		return fmt.Errorf("item %s is not placed", item)
	}
	bi, ok := s.board.Get(it.Board)
	if !ok {
		it.Board = id.ID{}
		return fmt.Errorf("%w: item %s links to missing board item", ErrInvariant, item)
	}
	delete(s.occupied, bi.Pos)
	s.board.Remove(it.Board)
	it.Board = id.ID{}
	return nil
}

// ItemPos returns the tile an inventory item is placed on.
func (s *Store) ItemPos(item id.ID) (grid.Pos, bool) {
	it, ok := s.inventory.Get(item)
	if !ok || !it.OnBoard() {
		return grid.Pos{}, false
	}
	bi, ok := s.board.Get(it.Board)
	if !ok {
		return grid.Pos{}, false
	}
	return bi.Pos, true
}

// Swap exchanges the tiles of two placed items. Both are validated before
// either moves, so the swap happens completely or not at all.
func (s *Store) Swap(a, b id.ID) error {
	if a == b {
		return fmt.Errorf("cannot swap item %s with itself", a)
	}
	pa, ok := s.ItemPos(a)
	if !ok {
		return fmt.Errorf("item %s is not on the board", a)
	}
	pb, ok := s.ItemPos(b)
	if !ok {
		return fmt.Errorf("item %s is not on the board", b)
	}
	ia, _ := s.inventory.Get(a)
	ib, _ := s.inventory.Get(b)
	ba, _ := s.board.Get(ia.Board)
	bb, _ := s.board.Get(ib.Board)

	ba.Pos, bb.Pos = pb, pa
	s.occupied[pa] = ib.Board
	s.occupied[pb] = ia.Board
	return nil
}

// CheckLinks verifies both directions of the board/inventory relationship
// and the occupancy index.
func (s *Store) CheckLinks() error {
	var err error
	s.board.Each(func(b id.ID, bi *BoardItem) {
		if err != nil {
			return
		}
		it, ok := s.inventory.Get(bi.Item)
		switch {
		case !ok:
			err = fmt.Errorf("%w: board item %s owner %s is gone", ErrInvariant, b, bi.Item)
		case it.Board != b:
			err = fmt.Errorf("%w: board item %s owner links to %s", ErrInvariant, b, it.Board)
		case s.occupied[bi.Pos] != b:
			err = fmt.Errorf("%w: tile %v not indexed for board item %s", ErrInvariant, bi.Pos, b)
		}
	})
	if err != nil {
		return err
	}
	s.inventory.Each(func(i id.ID, it *InventoryItem) {
		if err != nil || !it.OnBoard() {
			return
		}
		if bi, ok := s.board.Get(it.Board); !ok || bi.Item != i {
			err = fmt.Errorf("%w: item %s links to foreign board item %s", ErrInvariant, i, it.Board)
		}
	})
	if err == nil && len(s.occupied) != s.board.Len() {
		err = fmt.Errorf("%w: %d indexed tiles for %d board items", ErrInvariant, len(s.occupied), s.board.Len())
	}
	return err
}

// Repair drops links that cannot resolve so lenient models keep running.
func (s *Store) Repair() {
	var orphans []id.ID
	s.board.Each(func(b id.ID, bi *BoardItem) {
		if it, ok := s.inventory.Get(bi.Item); !ok || it.Board != b {
			orphans = append(orphans, b)
		}
	})
	for _, b := range orphans {
		s.board.Remove(b)
	}
	s.inventory.Each(func(i id.ID, it *InventoryItem) {
		if bi, ok := s.board.Get(it.Board); it.OnBoard() && (!ok || bi.Item != i) {
			it.Board = id.ID{}
		}
	})
	s.occupied = make(map[grid.Pos]id.ID)
	s.board.Each(func(b id.ID, bi *BoardItem) { s.occupied[bi.Pos] = b })
}
