package script

import (
	"fmt"

	"github.com/suderio/quantum-dungeon/internal/grid"
)

// Selection scopes accepted by find_items, random_item and bonus.
const (
	ScopeSelf      = "self"
	ScopeNearby    = "nearby"
	ScopeConnected = "connected"
	ScopeBoard     = "board"
	ScopeGlobal    = "global"
)

// Filter narrows the item set a script acts on.
type Filter struct {
	Scope       string
	Range       int
	Name        string
	Category    string
	Where       string // CEL predicate over item, self and cycle
	IncludeSelf bool
}

func (c *call) selectItems(f Filter) ([]ItemView, error) {
	self, ok := c.self()
	if !ok {
		return nil, nil
	}
	if f.Range <= 0 {
		f.Range = 1
	}

	var pool []ItemView
	switch f.Scope {
	case "", ScopeSelf:
		pool = []ItemView{self}
		f.IncludeSelf = true
	case ScopeNearby:
		if !self.OnBoard {
			return nil, nil
		}
		for _, v := range c.env.World.Items() {
			if v.OnBoard && v.Pos.Chebyshev(self.Pos) <= f.Range {
				pool = append(pool, v)
			}
		}
	case ScopeConnected:
		if !self.OnBoard {
			return nil, nil
		}
		pool = connected(self, c.env.World.Items())
	case ScopeBoard:
		for _, v := range c.env.World.Items() {
			if v.OnBoard {
				pool = append(pool, v)
			}
		}
	case ScopeGlobal:
		pool = c.env.World.Items()
	default:
		return nil, fmt.Errorf("unknown scope %q", f.Scope)
	}

	out := pool[:0:0]
	for _, v := range pool {
		if v.ID == self.ID && !f.IncludeSelf {
			continue
		}
		if f.Name != "" && v.Kind != f.Name {
			continue
		}
		if f.Category != "" && !v.HasCategory(f.Category) {
			continue
		}
		if f.Where != "" {
			keep, err := c.where(f.Where, v, self)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *call) where(formula string, v, self ItemView) (bool, error) {
	if c.host.eval == nil {
		return false, fmt.Errorf("where filters are not available")
	}
	return c.host.eval.EvalBool(formula, map[string]any{
		"item":  itemContext(v),
		"self":  itemContext(self),
		"cycle": c.env.World.Cycle(),
	})
}

// connected collects the board items reachable from start through
// 4-neighbour steps over occupied tiles, in input order.
func connected(start ItemView, items []ItemView) []ItemView {
	byPos := make(map[grid.Pos]ItemView, len(items))
	for _, v := range items {
		if v.OnBoard {
			byPos[v.Pos] = v
		}
	}

	seen := map[grid.Pos]bool{start.Pos: true}
	frontier := []grid.Pos{start.Pos}
	for len(frontier) > 0 {
		p := frontier[0]
		frontier = frontier[1:]
		for _, n := range p.Neighbors() {
			if _, ok := byPos[n]; ok && !seen[n] {
				seen[n] = true
				frontier = append(frontier, n)
			}
		}
	}

	var out []ItemView
	for _, v := range items {
		if v.OnBoard && seen[v.Pos] {
			out = append(out, v)
		}
	}
	return out
}
