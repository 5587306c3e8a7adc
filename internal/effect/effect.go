// Package effect defines the deferred, data-only mutation requests that item
// behaviour produces and the FIFO queue the model drains them from.
//
// Effects never touch state themselves: the engine applies them in order.
package effect

import (
	"fmt"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
)

// Kind discriminates Effect variants.
type Kind string

const (
	KindSetUsed   Kind = "SetUsed"
	KindDamage    Kind = "Damage"
	KindBonus     Kind = "Bonus"
	KindOpenTiles Kind = "OpenTiles"
	KindDestroy   Kind = "Destroy"
	KindDuplicate Kind = "Duplicate"
	KindGainMoves Kind = "GainMoves"
	KindPortal    Kind = "Portal"
	KindSwapItems Kind = "SwapItems"
	KindTransform Kind = "TransformItem"
	KindEmitLight Kind = "EmitLight"
	KindUseItem   Kind = "UseItem"
	KindNewItem   Kind = "NewItem"
)

// Effect is one queued mutation. Item fields hold inventory item IDs;
// Damage targets entity IDs.
type Effect interface {
	Kind() Kind
	Message() string
}

// SetUsed marks an item as used for the current cycle.
type SetUsed struct {
	Item id.ID `json:"item"`
}

func (e SetUsed) Kind() Kind      { return KindSetUsed }
func (e SetUsed) Message() string { return fmt.Sprintf("item %s used", e.Item) }

// Damage reduces an entity's health.
type Damage struct {
	Source id.ID `json:"source"`
	Target id.ID `json:"target"`
	Amount int   `json:"amount"`
}

func (e Damage) Kind() Kind { return KindDamage }
func (e Damage) Message() string {
	return fmt.Sprintf("entity %s takes %d damage", e.Target, e.Amount)
}

// Bonus merges stat deltas into the permanent or temporary stats of Target.
type Bonus struct {
	From      id.ID      `json:"from"`
	Target    id.ID      `json:"target"`
	Stats     data.Stats `json:"stats"`
	Permanent bool       `json:"permanent"`
}

func (e Bonus) Kind() Kind { return KindBonus }
func (e Bonus) Message() string {
	scope := "temporary"
	if e.Permanent {
		scope = "permanent"
	}
	return fmt.Sprintf("item %s gets %s bonus %v", e.Target, scope, map[string]int(e.Stats))
}

// OpenTiles lets the player open Count new tiles.
type OpenTiles struct {
	Count int `json:"count"`
}

func (e OpenTiles) Kind() Kind      { return KindOpenTiles }
func (e OpenTiles) Message() string { return fmt.Sprintf("%d tiles may be opened", e.Count) }

// Destroy removes an item's board placement.
//
// A consumed item leaves the inventory as well; otherwise it only leaves
// the board and stays carried.
type Destroy struct {
	Item    id.ID `json:"item"`
	Consume bool  `json:"consume,omitempty"`
}

func (e Destroy) Kind() Kind { return KindDestroy }
func (e Destroy) Message() string {
	if e.Consume {
		return fmt.Sprintf("item %s consumed", e.Item)
	}
	return fmt.Sprintf("item %s destroyed", e.Item)
}

// Duplicate copies an item once its animation finishes.
type Duplicate struct {
	Item id.ID `json:"item"`
}

func (e Duplicate) Kind() Kind      { return KindDuplicate }
func (e Duplicate) Message() string { return fmt.Sprintf("item %s duplicating", e.Item) }

// GainMoves adds moves to the current turn.
type GainMoves struct {
	Count int `json:"count"`
}

func (e GainMoves) Kind() Kind      { return KindGainMoves }
func (e GainMoves) Message() string { return fmt.Sprintf("gain %d moves", e.Count) }

// Portal opens the portal choice.
type Portal struct{}

func (e Portal) Kind() Kind      { return KindPortal }
func (e Portal) Message() string { return "a portal opens" }

// SwapItems exchanges the board positions of two items.
type SwapItems struct {
	A id.ID `json:"a"`
	B id.ID `json:"b"`
}

func (e SwapItems) Kind() Kind      { return KindSwapItems }
func (e SwapItems) Message() string { return fmt.Sprintf("items %s and %s swap", e.A, e.B) }

// TransformItem replaces an item's kind in place.
type TransformItem struct {
	Item       id.ID  `json:"item"`
	TargetKind string `json:"target_kind"`
}

func (e TransformItem) Kind() Kind { return KindTransform }
func (e TransformItem) Message() string {
	return fmt.Sprintf("item %s becomes %s", e.Item, e.TargetKind)
}

// EmitLight registers a light source lasting Duration cycles.
type EmitLight struct {
	Pos      grid.Pos `json:"pos"`
	Radius   float64  `json:"radius"`
	Duration int      `json:"duration"`
}

func (e EmitLight) Kind() Kind { return KindEmitLight }
func (e EmitLight) Message() string {
	return fmt.Sprintf("light at %v radius %.1f for %d", e.Pos, e.Radius, e.Duration)
}

// UseItem runs another item's active handler.
type UseItem struct {
	Item id.ID `json:"item"`
}

func (e UseItem) Kind() Kind      { return KindUseItem }
func (e UseItem) Message() string { return fmt.Sprintf("item %s used by another", e.Item) }

// NewItem creates a fresh item of the named kind.
type NewItem struct {
	KindName string `json:"kind"`
}

func (e NewItem) Kind() Kind      { return KindNewItem }
func (e NewItem) Message() string { return fmt.Sprintf("new %s appears", e.KindName) }
