package script

import (
	"math"
	"math/rand"

	"github.com/Shopify/go-lua"
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/effect"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
)

// call is the per-invocation binding behind the `game` table.
type call struct {
	host    *Host
	kind    string
	env     Env
	out     *effect.Buffer
	loading bool
}

func (c *call) api() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		// effects
		{Name: "damage", Function: c.damage},
		{Name: "damage_nearby", Function: c.damageNearby},
		{Name: "bonus", Function: c.bonus},
		{Name: "open_tiles", Function: c.openTiles},
		{Name: "destroy", Function: c.destroy},
		{Name: "consume", Function: c.consume},
		{Name: "duplicate", Function: c.duplicate},
		{Name: "set_used", Function: c.setUsed},
		{Name: "swap", Function: c.swap},
		{Name: "transform", Function: c.transform},
		{Name: "light", Function: c.light},
		{Name: "gain_moves", Function: c.gainMoves},
		{Name: "portal", Function: c.portal},
		{Name: "use", Function: c.use},
		{Name: "new_item", Function: c.newItem},
		// item search
		{Name: "find_items", Function: c.findItems},
		{Name: "random_item", Function: c.randomItem},
		{Name: "enemies", Function: c.enemies},
		// queries
		{Name: "id", Function: c.id},
		{Name: "name", Function: c.name},
		{Name: "position", Function: c.position},
		{Name: "stat", Function: c.stat},
		{Name: "turns_on_board", Function: c.turnsOnBoard},
		{Name: "cycle", Function: c.cycle},
		{Name: "observed", Function: c.observed},
		{Name: "visible", Function: c.visible},
		{Name: "light_level", Function: c.lightLevel},
		// randomness
		{Name: "random", Function: c.random},
		{Name: "choose", Function: c.choose},
		{Name: "log", Function: c.log},
	}
}

func (c *call) ready(l *lua.State) {
	if c.loading || c.env.World == nil {
		lua.Errorf(l, "game API is not available while loading %s", c.kind)
	}
}

func (c *call) self() (ItemView, bool) {
	if c.env.World == nil {
		return ItemView{}, false
	}
	return c.env.World.Item(c.env.Item)
}

func (c *call) push(e effect.Effect) { c.out.Push(e) }

func (c *call) damage(l *lua.State) int {
	c.ready(l)
	target := checkID(l, 1)
	amount := lua.CheckInteger(l, 2)
	// items fight for the player, so only enemies are valid targets
	for _, e := range c.env.World.Entities() {
		if e.ID == target && !e.Player {
			c.push(effect.Damage{Source: c.env.Item, Target: target, Amount: amount})
			l.PushBoolean(true)
			return 1
		}
	}
	l.PushBoolean(false)
	return 1
}

func (c *call) damageNearby(l *lua.State) int {
	c.ready(l)
	rng := lua.CheckInteger(l, 1)
	amount := lua.CheckInteger(l, 2)
	hits := 0
	for _, e := range c.nearbyEnemies(rng) {
		c.push(effect.Damage{Source: c.env.Item, Target: e.ID, Amount: amount})
		hits++
	}
	l.PushInteger(hits)
	return 1
}

func (c *call) nearbyEnemies(rng int) []EntityView {
	self, ok := c.self()
	if !ok || !self.OnBoard {
		return nil
	}
	var out []EntityView
	for _, e := range c.env.World.Entities() {
		if !e.Player && e.Pos.Chebyshev(self.Pos) <= rng {
			out = append(out, e)
		}
	}
	return out
}

func (c *call) enemies(l *lua.State) int {
	c.ready(l)
	rng := lua.OptInteger(l, 1, 1)
	list := c.nearbyEnemies(rng)
	l.NewTable()
	for i, e := range list {
		l.PushString(e.ID.String())
		l.RawSetInt(-2, i+1)
	}
	return 1
}

// bonus{stats = {...}, permanent = bool, scope = ..., range, name, category, where}
func (c *call) bonus(l *lua.State) int {
	c.ready(l)
	lua.CheckType(l, 1, lua.TypeTable)
	l.Field(1, "stats")
	if l.TypeOf(-1) != lua.TypeTable {
		lua.ArgumentError(l, 1, "stats table expected")
	}
	stats := readStats(l, -1)
	l.Pop(1)
	permanent := boolField(l, 1, "permanent")

	targets, err := c.selectItems(readFilter(l, 1))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	for _, t := range targets {
		c.push(effect.Bonus{From: c.env.Item, Target: t.ID, Stats: stats.Clone(), Permanent: permanent})
	}
	l.PushInteger(len(targets))
	return 1
}

func (c *call) openTiles(l *lua.State) int {
	c.ready(l)
	c.push(effect.OpenTiles{Count: lua.OptInteger(l, 1, 1)})
	return 0
}

func (c *call) destroy(l *lua.State) int {
	c.ready(l)
	c.push(effect.Destroy{Item: optID(l, 1, c.env.Item)})
	return 0
}

// consume([item]) removes the item from the game for good.
func (c *call) consume(l *lua.State) int {
	c.ready(l)
	c.push(effect.Destroy{Item: optID(l, 1, c.env.Item), Consume: true})
	return 0
}

func (c *call) duplicate(l *lua.State) int {
	c.ready(l)
	c.push(effect.Duplicate{Item: optID(l, 1, c.env.Item)})
	return 0
}

func (c *call) setUsed(l *lua.State) int {
	c.ready(l)
	c.push(effect.SetUsed{Item: optID(l, 1, c.env.Item)})
	return 0
}

func (c *call) swap(l *lua.State) int {
	c.ready(l)
	a := checkID(l, 1)
	b := optID(l, 2, c.env.Item)
	c.push(effect.SwapItems{A: a, B: b})
	return 0
}

func (c *call) transform(l *lua.State) int {
	c.ready(l)
	kind := lua.CheckString(l, 1)
	target := optID(l, 2, c.env.Item)
	if !c.env.World.HasKind(kind) {
		c.host.logger.Warn("transform to unknown kind",
			zap.String("kind", c.kind), zap.String("target_kind", kind))
	}
	c.push(effect.TransformItem{Item: target, TargetKind: kind})
	return 0
}

func (c *call) light(l *lua.State) int {
	c.ready(l)
	radius := lua.CheckNumber(l, 1)
	duration := lua.OptInteger(l, 2, 1)
	self, ok := c.self()
	if !ok || !self.OnBoard {
		l.PushBoolean(false)
		return 1
	}
	c.push(effect.EmitLight{Pos: self.Pos, Radius: radius, Duration: duration})
	l.PushBoolean(true)
	return 1
}

func (c *call) gainMoves(l *lua.State) int {
	c.ready(l)
	c.push(effect.GainMoves{Count: lua.OptInteger(l, 1, 1)})
	return 0
}

func (c *call) portal(l *lua.State) int {
	c.ready(l)
	c.push(effect.Portal{})
	return 0
}

func (c *call) use(l *lua.State) int {
	c.ready(l)
	c.push(effect.UseItem{Item: checkID(l, 1)})
	return 0
}

func (c *call) newItem(l *lua.State) int {
	c.ready(l)
	c.push(effect.NewItem{KindName: lua.CheckString(l, 1)})
	return 0
}

func (c *call) findItems(l *lua.State) int {
	c.ready(l)
	items, err := c.selectItems(readFilter(l, 1))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	l.NewTable()
	for i, v := range items {
		l.PushString(v.ID.String())
		l.RawSetInt(-2, i+1)
	}
	return 1
}

func (c *call) randomItem(l *lua.State) int {
	c.ready(l)
	items, err := c.selectItems(readFilter(l, 1))
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	if len(items) == 0 {
		l.PushNil()
		return 1
	}
	l.PushString(items[c.rand(l).Intn(len(items))].ID.String())
	return 1
}

func (c *call) id(l *lua.State) int {
	c.ready(l)
	l.PushString(c.env.Item.String())
	return 1
}

func (c *call) name(l *lua.State) int {
	c.ready(l)
	v, ok := c.env.World.Item(optID(l, 1, c.env.Item))
	if !ok {
		l.PushNil()
		return 1
	}
	l.PushString(v.Kind)
	return 1
}

func (c *call) position(l *lua.State) int {
	c.ready(l)
	v, ok := c.env.World.Item(optID(l, 1, c.env.Item))
	if !ok || !v.OnBoard {
		l.PushNil()
		return 1
	}
	l.PushInteger(v.Pos.X)
	l.PushInteger(v.Pos.Y)
	return 2
}

func (c *call) stat(l *lua.State) int {
	c.ready(l)
	name := lua.CheckString(l, 1)
	v, ok := c.env.World.Item(optID(l, 2, c.env.Item))
	if !ok {
		l.PushInteger(0)
		return 1
	}
	l.PushInteger(v.Stats.Get(name))
	return 1
}

func (c *call) turnsOnBoard(l *lua.State) int {
	c.ready(l)
	self, _ := c.self()
	l.PushInteger(self.TurnsOnBoard)
	return 1
}

func (c *call) cycle(l *lua.State) int {
	c.ready(l)
	l.PushInteger(c.env.World.Cycle())
	return 1
}

func (c *call) observed(l *lua.State) int {
	c.ready(l)
	self, ok := c.self()
	l.PushBoolean(ok && self.OnBoard && c.env.World.Observed(self.Pos))
	return 1
}

func (c *call) visible(l *lua.State) int {
	c.ready(l)
	self, ok := c.self()
	l.PushBoolean(ok && self.OnBoard && c.env.World.LightLevel(self.Pos) > grid.VisitedGlow)
	return 1
}

func (c *call) lightLevel(l *lua.State) int {
	c.ready(l)
	x := lua.CheckInteger(l, 1)
	y := lua.CheckInteger(l, 2)
	l.PushNumber(float64(c.env.World.LightLevel(grid.Pos{X: x, Y: y})))
	return 1
}

// random mirrors math.random.
func (c *call) random(l *lua.State) int {
	c.ready(l)
	return c.mathRandom(l)
}

func (c *call) mathRandom(l *lua.State) int {
	r := c.rand(l)
	switch l.Top() {
	case 0:
		l.PushNumber(r.Float64())
	case 1:
		hi := lua.CheckInteger(l, 1)
		if hi < 1 {
			lua.ArgumentError(l, 1, "interval is empty")
		}
		l.PushInteger(1 + r.Intn(hi))
	default:
		lo := lua.CheckInteger(l, 1)
		hi := lua.CheckInteger(l, 2)
		if hi < lo {
			lua.ArgumentError(l, 2, "interval is empty")
		}
		span := uint64(hi) - uint64(lo)
		if span >= math.MaxInt64 {
			lua.ArgumentError(l, 2, "interval is too large")
		}
		l.PushInteger(lo + int(r.Int63n(int64(span)+1)))
	}
	return 1
}

// choose picks an index from a weights array, or nil when all weights are zero.
func (c *call) choose(l *lua.State) int {
	c.ready(l)
	lua.CheckType(l, 1, lua.TypeTable)
	var weights []float64
	total := 0.0
	for i := 1; ; i++ {
		l.RawGetInt(1, i)
		if l.IsNoneOrNil(-1) {
			l.Pop(1)
			break
		}
		w, _ := l.ToNumber(-1)
		l.Pop(1)
		if w < 0 || math.IsNaN(w) {
			w = 0
		}
		weights = append(weights, w)
		total += w
	}
	if total <= 0 {
		l.PushNil()
		return 1
	}
	pick := c.rand(l).Float64() * total
	for i, w := range weights {
		if pick < w {
			l.PushInteger(i + 1)
			return 1
		}
		pick -= w
	}
	l.PushInteger(len(weights))
	return 1
}

func (c *call) log(l *lua.State) int {
	msg := lua.CheckString(l, 1)
	c.host.logger.Info(msg, zap.String("kind", c.kind), zap.Stringer("item", c.env.Item))
	return 0
}

func (c *call) rand(l *lua.State) *rand.Rand {
	if c.env.Rand == nil {
		lua.Errorf(l, "no random source bound to %s", c.kind)
	}
	return c.env.Rand
}

func checkID(l *lua.State, index int) id.ID {
	s := lua.CheckString(l, index)
	v, err := id.Parse(s)
	if err != nil {
		lua.ArgumentError(l, index, err.Error())
	}
	return v
}

func optID(l *lua.State, index int, def id.ID) id.ID {
	if l.IsNoneOrNil(index) {
		return def
	}
	return checkID(l, index)
}

func readStats(l *lua.State, index int) data.Stats {
	index = l.AbsIndex(index)
	stats := data.Stats{}
	l.PushNil()
	for l.Next(index) {
		if l.TypeOf(-2) == lua.TypeString {
			key, _ := l.ToString(-2)
			if n, ok := l.ToNumber(-1); ok {
				stats[key] = int(n)
			}
		}
		l.Pop(1)
	}
	return stats
}

func readFilter(l *lua.State, index int) Filter {
	if l.IsNoneOrNil(index) {
		return Filter{}
	}
	if l.TypeOf(index) == lua.TypeString {
		s, _ := l.ToString(index)
		return Filter{Scope: s}
	}
	lua.CheckType(l, index, lua.TypeTable)
	return Filter{
		Scope:       stringField(l, index, "scope"),
		Range:       intField(l, index, "range"),
		Name:        stringField(l, index, "name"),
		Category:    stringField(l, index, "category"),
		Where:       stringField(l, index, "where"),
		IncludeSelf: boolField(l, index, "include_self"),
	}
}

func stringField(l *lua.State, index int, name string) string {
	l.Field(index, name)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeString {
		return ""
	}
	s, _ := l.ToString(-1)
	return s
}

func intField(l *lua.State, index int, name string) int {
	l.Field(index, name)
	defer l.Pop(1)
	n, _ := l.ToInteger(-1)
	return n
}

func boolField(l *lua.State, index int, name string) bool {
	l.Field(index, name)
	defer l.Pop(1)
	return l.ToBoolean(-1)
}
