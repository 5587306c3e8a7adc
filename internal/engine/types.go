// Package engine implements the authoritative turn-resolution model: the
// entity and item store, the phase state machine, effect application and
// the logical animation timers that gate phase progression.
package engine

import (
	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
	"github.com/suderio/quantum-dungeon/internal/script"
)

// --- Store records ---

// Fraction is the allegiance of an entity.
type Fraction int

const (
	FractionPlayer Fraction = iota
	FractionEnemy
)

func (f Fraction) String() string {
	if f == FractionPlayer {
		return "player"
	}
	return "enemy"
}

// Entity is a board occupant: the player avatar or an enemy.
type Entity struct {
	Kind      string   `json:"kind"`
	Fraction  Fraction `json:"fraction"`
	Pos       grid.Pos `json:"pos"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"max_health"`
	Damage    int      `json:"damage"`
	Look      grid.Pos `json:"look"` // unit direction, zero when unset
}

// Alive reports whether the entity still has health left.
func (e *Entity) Alive() bool { return e.Health > 0 }

// BoardItem places an inventory item on a tile.
type BoardItem struct {
	Pos  grid.Pos `json:"pos"`
	Item id.ID    `json:"item"`
}

// InventoryItem is an item owned by the player, placed or carried.
type InventoryItem struct {
	Kind         *Kind
	State        script.State
	Board        id.ID // zero while carried
	TurnsOnBoard int
	Permanent    data.Stats
	Temporary    data.Stats
	Used         bool
}

// OnBoard reports whether the item currently has a board placement.
func (it *InventoryItem) OnBoard() bool { return !it.Board.IsZero() }

// --- Phases ---

// PhaseKind names the live state of the turn machine.
type PhaseKind int

const (
	PhasePlayer PhaseKind = iota
	PhaseNight
	PhasePassive
	PhaseVision
	PhaseSelect
	PhaseActive
	PhaseMap
	PhasePortal
	PhaseLevelFinished
)

var phaseNames = map[PhaseKind]string{
	PhasePlayer:        "Player",
	PhaseNight:         "Night",
	PhasePassive:       "Passive",
	PhaseVision:        "Vision",
	PhaseSelect:        "Select",
	PhaseActive:        "Active",
	PhaseMap:           "Map",
	PhasePortal:        "Portal",
	PhaseLevelFinished: "LevelFinished",
}

func (k PhaseKind) String() string {
	if s, ok := phaseNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Phase is one variant of the turn machine. Exactly one is live at a time.
type Phase interface {
	Kind() PhaseKind
	clone() Phase
}

// Step is one item's pass through a resolution phase.
type Step struct {
	Item    id.ID          `json:"item"`
	Trigger script.Trigger `json:"trigger"`
}

// Timers is the two-timer gate of a resolution step: StartDelay runs
// before the step mutates anything, EndDelay after.
type Timers struct {
	StartDelay float64 `json:"start_delay"`
	EndDelay   float64 `json:"end_delay"`
	Applied    bool    `json:"applied"`
}

type timerState int

const (
	timerWaiting timerState = iota
	timerApply
	timerDone
)

// tick decrements whichever timer is live, once.
func (t *Timers) tick(dt float64) timerState {
	if !t.Applied {
		t.StartDelay = saturate(t.StartDelay - dt)
		if t.StartDelay > 0 {
			return timerWaiting
		}
		t.Applied = true
		return timerApply
	}
	t.EndDelay = saturate(t.EndDelay - dt)
	if t.EndDelay > 0 {
		return timerWaiting
	}
	return timerDone
}

// holdFor keeps the step open until an animation of d seconds has run.
func (t *Timers) holdFor(d float64) {
	t.EndDelay = max(t.EndDelay, d)
}

func saturate(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// NightPhase runs the generation step. It is entered and left within the
// same call.
type NightPhase struct{}

// PassivePhase walks the day_bonus then day_action steps of board items.
type PassivePhase struct {
	Queue   []Step `json:"queue"`
	Current *Step  `json:"current,omitempty"`
	Timers
}

// PlayerPhase accepts movement, activation and placement.
type PlayerPhase struct{}

// VisionPhase lets the player choose where to look.
type VisionPhase struct {
	Look grid.Pos `json:"look"`
}

// SelectPhase offers item kinds to pick from.
type SelectPhase struct {
	Options []string `json:"options"`
	Rerolls int      `json:"rerolls"`
}

// ActivePhase resolves one explicitly activated item.
type ActivePhase struct {
	Fraction Fraction `json:"fraction"`
	Item     id.ID    `json:"item"`
	Timers
}

// MapPhase lets the player open new tiles.
type MapPhase struct {
	TilesLeft int `json:"tiles_left"`
}

// PortalPhase offers magic item kinds.
type PortalPhase struct {
	Options []string `json:"options"`
}

// LevelFinishedPhase is terminal until Retry.
type LevelFinishedPhase struct {
	Win bool `json:"win"`
}

func (*NightPhase) Kind() PhaseKind         { return PhaseNight }
func (*PassivePhase) Kind() PhaseKind       { return PhasePassive }
func (*PlayerPhase) Kind() PhaseKind        { return PhasePlayer }
func (*VisionPhase) Kind() PhaseKind        { return PhaseVision }
func (*SelectPhase) Kind() PhaseKind        { return PhaseSelect }
func (*ActivePhase) Kind() PhaseKind        { return PhaseActive }
func (*MapPhase) Kind() PhaseKind           { return PhaseMap }
func (*PortalPhase) Kind() PhaseKind        { return PhasePortal }
func (*LevelFinishedPhase) Kind() PhaseKind { return PhaseLevelFinished }

func (p *NightPhase) clone() Phase { return &NightPhase{} }
func (p *PassivePhase) clone() Phase {
	c := *p
	c.Queue = append([]Step(nil), p.Queue...)
	if p.Current != nil {
		cur := *p.Current
		c.Current = &cur
	}
	return &c
}
func (p *PlayerPhase) clone() Phase { return &PlayerPhase{} }
func (p *VisionPhase) clone() Phase { c := *p; return &c }
func (p *SelectPhase) clone() Phase {
	c := *p
	c.Options = append([]string(nil), p.Options...)
	return &c
}
func (p *ActivePhase) clone() Phase { c := *p; return &c }
func (p *MapPhase) clone() Phase    { c := *p; return &c }
func (p *PortalPhase) clone() Phase {
	c := *p
	c.Options = append([]string(nil), p.Options...)
	return &c
}
func (p *LevelFinishedPhase) clone() Phase { c := *p; return &c }
