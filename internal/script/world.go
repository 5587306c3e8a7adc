package script

import (
	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
)

// ItemView is the read-only picture of one inventory item a script sees.
type ItemView struct {
	ID           id.ID
	Kind         string
	Categories   []string
	Stats        data.Stats // effective (temporary) stats
	OnBoard      bool
	Pos          grid.Pos
	TurnsOnBoard int
	Used         bool
}

// HasCategory reports whether the item carries category c.
func (v ItemView) HasCategory(c string) bool {
	for _, have := range v.Categories {
		if have == c {
			return true
		}
	}
	return false
}

// EntityView is the read-only picture of one living entity.
type EntityView struct {
	ID        id.ID
	Kind      string
	Pos       grid.Pos
	Health    int
	MaxHealth int
	Player    bool
}

// World is the query surface scripts read through. Implementations must
// answer from the model as it is at call time.
type World interface {
	Item(id.ID) (ItemView, bool)
	// Items returns every inventory item in a stable order.
	Items() []ItemView
	Entities() []EntityView
	LightLevel(grid.Pos) float32
	Observed(grid.Pos) bool
	Cycle() int
	HasKind(name string) bool
}

func itemContext(v ItemView) map[string]any {
	return map[string]any{
		"id":             v.ID.String(),
		"name":           v.Kind,
		"categories":     data.StringsToAny(v.Categories),
		"stats":          data.StatsToAny(v.Stats),
		"on_board":       v.OnBoard,
		"x":              int64(v.Pos.X),
		"y":              int64(v.Pos.Y),
		"turns_on_board": int64(v.TurnsOnBoard),
		"used":           v.Used,
	}
}
