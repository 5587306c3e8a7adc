package script

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/effect"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
)

type fakeWorld struct {
	items    []ItemView
	entities []EntityView
	cycle    int
	light    float32
	kinds    map[string]bool
}

func (w *fakeWorld) Item(i id.ID) (ItemView, bool) {
	for _, v := range w.items {
		if v.ID == i {
			return v, true
		}
	}
	return ItemView{}, false
}

func (w *fakeWorld) Items() []ItemView           { return append([]ItemView(nil), w.items...) }
func (w *fakeWorld) Entities() []EntityView      { return w.entities }
func (w *fakeWorld) LightLevel(grid.Pos) float32 { return w.light }
func (w *fakeWorld) Observed(grid.Pos) bool      { return w.light > grid.VisitedGlow }
func (w *fakeWorld) Cycle() int                  { return w.cycle }
func (w *fakeWorld) HasKind(name string) bool    { return w.kinds[name] }

func iid(n uint32) id.ID { return id.ID{Index: n, Gen: 1} }

func newTestWorld() *fakeWorld {
	return &fakeWorld{
		items: []ItemView{
			{ID: iid(0), Kind: "Forge", Categories: []string{"building"}, OnBoard: true, Pos: grid.Pos{X: 1, Y: 1}, Stats: data.Stats{}},
			{ID: iid(1), Kind: "Sword", Categories: []string{"weapon"}, OnBoard: true, Pos: grid.Pos{X: 2, Y: 1}, Stats: data.Stats{"damage": 1}},
			{ID: iid(2), Kind: "Bow", Categories: []string{"weapon"}, OnBoard: true, Pos: grid.Pos{X: 3, Y: 1}, Stats: data.Stats{"damage": 2}},
			{ID: iid(3), Kind: "Axe", Categories: []string{"weapon"}, OnBoard: true, Pos: grid.Pos{X: 3, Y: 3}, Stats: data.Stats{"damage": 3}},
			{ID: iid(4), Kind: "Dagger", Categories: []string{"weapon"}, Stats: data.Stats{"damage": 1}},
		},
		entities: []EntityView{
			{ID: iid(0), Kind: "player", Pos: grid.Pos{X: 0, Y: 0}, Health: 10, MaxHealth: 10, Player: true},
			{ID: iid(1), Kind: "goblin", Pos: grid.Pos{X: 1, Y: 2}, Health: 3, MaxHealth: 3},
			{ID: iid(2), Kind: "goblin", Pos: grid.Pos{X: 5, Y: 5}, Health: 3, MaxHealth: 3},
		},
		light: 1,
		kinds: map[string]bool{"Forge": true, "Sword": true, "Gold": true},
	}
}

func newTestHost(t *testing.T) *Host {
	t.Helper()
	ev, err := data.NewEvaluator()
	require.NoError(t, err)
	return NewHost(zap.NewNop(), ev)
}

func run(t *testing.T, h *Host, src string, trig Trigger, saved State, w World) ([]effect.Effect, State, error) {
	t.Helper()
	u, err := h.Compile("Test", src)
	require.NoError(t, err)
	var buf effect.Buffer
	next, err := h.Trigger(u, trig, saved, Env{Item: iid(0), World: w, Sink: &buf, Rand: rand.New(rand.NewSource(7))})
	return buf.Effects, next, err
}

func TestCompile(t *testing.T) {
	h := newTestHost(t)

	t.Run("empty source is inert", func(t *testing.T) {
		u, err := h.Compile("Rock", "  ")
		require.NoError(t, err)
		assert.True(t, u.Inert())
		assert.False(t, u.Handles(TriggerNight))
	})

	t.Run("handlers are discovered", func(t *testing.T) {
		u, err := h.Compile("Forge", "function day_bonus() end\nfunction active() end")
		require.NoError(t, err)
		assert.True(t, u.Handles(TriggerDayBonus))
		assert.True(t, u.Handles(TriggerActive))
		assert.False(t, u.Handles(TriggerNight))
	})

	t.Run("syntax error degrades to inert", func(t *testing.T) {
		u, err := h.Compile("Broken", "function night( end")
		require.ErrorIs(t, err, ErrCompile)
		require.NotNil(t, u)
		assert.True(t, u.Inert())
	})

	t.Run("game API is unavailable at load time", func(t *testing.T) {
		_, err := h.Compile("Eager", "game.portal()")
		assert.ErrorIs(t, err, ErrCompile)
	})
}

func TestStatePersistsAcrossTriggers(t *testing.T) {
	h := newTestHost(t)
	w := newTestWorld()
	src := `
function night()
  state.count = (state.count or 0) + 1
  if state.count >= 2 then
    game.open_tiles(1)
  end
end`

	effects, saved, err := run(t, h, src, TriggerNight, nil, w)
	require.NoError(t, err)
	assert.Empty(t, effects)
	assert.JSONEq(t, `{"count":1}`, string(saved))

	effects, saved, err = run(t, h, src, TriggerNight, saved, w)
	require.NoError(t, err)
	assert.Equal(t, []effect.Effect{effect.OpenTiles{Count: 1}}, effects)
	assert.JSONEq(t, `{"count":2}`, string(saved))
}

func TestInstantiate(t *testing.T) {
	h := newTestHost(t)
	u, err := h.Compile("Chest", "state = {charges = 1}\nfunction init() state.charges = state.charges + 2 end")
	require.NoError(t, err)

	saved, err := h.Instantiate(u, Env{Item: iid(0), World: newTestWorld()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"charges":3}`, string(saved))

	plain, err := h.Compile("Rock", "function night() end")
	require.NoError(t, err)
	saved, err = h.Instantiate(plain, Env{Item: iid(0), World: newTestWorld()})
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestFailedCallCommitsNothing(t *testing.T) {
	h := newTestHost(t)
	prev := State(`{"count":5}`)
	effects, next, err := run(t, h, `function night() game.portal(); state.count = 0; error("boom") end`, TriggerNight, prev, newTestWorld())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, effects)
	assert.Equal(t, prev, next)
}

func TestUndefinedHandlerIsNoop(t *testing.T) {
	h := newTestHost(t)
	prev := State(`{"x":1}`)
	effects, next, err := run(t, h, "function night() game.portal() end", TriggerActive, prev, newTestWorld())
	require.NoError(t, err)
	assert.Empty(t, effects)
	assert.Equal(t, prev, next)
}

func TestSandbox(t *testing.T) {
	h := newTestHost(t)
	src := `
function night()
  assert(io == nil, "io")
  assert(os == nil, "os")
  assert(load == nil, "load")
  assert(require == nil, "require")
  assert(dofile == nil, "dofile")
  assert(string.upper("a") == "A")
  assert(math.floor(1.5) == 1)
end`
	_, _, err := run(t, h, src, TriggerNight, nil, newTestWorld())
	assert.NoError(t, err)
}

func TestRandomIntervalTooLargeIsAScriptError(t *testing.T) {
	h := newTestHost(t)
	assert.NotPanics(t, func() {
		_, _, err := run(t, h, "function night() local x = math.random(-2^62, 2^62) end", TriggerNight, nil, newTestWorld())
		assert.ErrorContains(t, err, "interval is too large")
	})

	_, next, err := run(t, h, "function night() state.x = math.random(-3, 3) end", TriggerNight, nil, newTestWorld())
	require.NoError(t, err)
	assert.Contains(t, string(next), `"x":`)
}

func TestInstructionBudget(t *testing.T) {
	h := newTestHost(t)

	_, _, err := run(t, h, "function night() while true do end end", TriggerNight, nil, newTestWorld())
	assert.ErrorContains(t, err, ErrBudget.Error())

	_, err = h.Compile("Spin", "while true do end")
	assert.ErrorIs(t, err, ErrCompile)

	u, err := h.Compile("Counter", `
function night()
  local n = 0
  for i = 1, 1000 do n = n + i end
  state.n = n
end`)
	require.NoError(t, err)
	env := Env{Item: iid(0), World: newTestWorld(), Sink: &effect.Buffer{}, Rand: rand.New(rand.NewSource(1)), Budget: 100}
	_, err = h.Trigger(u, TriggerNight, nil, env)
	assert.ErrorContains(t, err, ErrBudget.Error())

	env.Budget = 0
	next, err := h.Trigger(u, TriggerNight, nil, env)
	require.NoError(t, err)
	assert.Contains(t, string(next), `"n":500500`)
}

func TestBonusScopes(t *testing.T) {
	h := newTestHost(t)
	w := newTestWorld()

	t.Run("nearby weapons", func(t *testing.T) {
		effects, _, err := run(t, h, `function day_bonus() game.bonus{stats = {damage = 2}, scope = "nearby", category = "weapon"} end`, TriggerDayBonus, nil, w)
		require.NoError(t, err)
		require.Len(t, effects, 1)
		b := effects[0].(effect.Bonus)
		assert.Equal(t, iid(1), b.Target)
		assert.Equal(t, iid(0), b.From)
		assert.Equal(t, 2, b.Stats.Get("damage"))
		assert.False(t, b.Permanent)
	})

	t.Run("connected chain", func(t *testing.T) {
		effects, _, err := run(t, h, `function day_bonus() game.bonus{stats = {damage = 1}, scope = "connected", permanent = true} end`, TriggerDayBonus, nil, w)
		require.NoError(t, err)
		var targets []id.ID
		for _, e := range effects {
			targets = append(targets, e.(effect.Bonus).Target)
			assert.True(t, e.(effect.Bonus).Permanent)
		}
		assert.Equal(t, []id.ID{iid(1), iid(2)}, targets)
	})

	t.Run("global with where", func(t *testing.T) {
		effects, _, err := run(t, h, `function day_bonus() game.bonus{stats = {damage = 1}, scope = "global", where = "item.stats.damage >= 2"} end`, TriggerDayBonus, nil, w)
		require.NoError(t, err)
		require.Len(t, effects, 2)
		assert.Equal(t, iid(2), effects[0].(effect.Bonus).Target)
		assert.Equal(t, iid(3), effects[1].(effect.Bonus).Target)
	})

	t.Run("unknown scope raises", func(t *testing.T) {
		_, _, err := run(t, h, `function day_bonus() game.bonus{stats = {damage = 1}, scope = "galaxy"} end`, TriggerDayBonus, nil, w)
		assert.Error(t, err)
	})
}

func TestDamageNearby(t *testing.T) {
	h := newTestHost(t)
	effects, _, err := run(t, h, `function day_action() game.damage_nearby(1, 2) end`, TriggerDayAction, nil, newTestWorld())
	require.NoError(t, err)
	assert.Equal(t, []effect.Effect{effect.Damage{Source: iid(0), Target: iid(1), Amount: 2}}, effects)
}

func TestDamageTargetsEnemiesOnly(t *testing.T) {
	h := newTestHost(t)
	src := `
function active()
  state.player = game.damage("` + iid(0).String() + `", 3)
  state.goblin = game.damage("` + iid(2).String() + `", 3)
end`
	effects, next, err := run(t, h, src, TriggerActive, nil, newTestWorld())
	require.NoError(t, err)
	assert.Equal(t, []effect.Effect{effect.Damage{Source: iid(0), Target: iid(2), Amount: 3}}, effects)
	assert.JSONEq(t, `{"player":false,"goblin":true}`, string(next))
}

func TestQueriesAndEffects(t *testing.T) {
	h := newTestHost(t)
	w := newTestWorld()
	w.cycle = 4
	src := `
function active()
  local x, y = game.position()
  assert(x == 1 and y == 1)
  assert(game.name() == "Forge")
  assert(game.stat("damage", "1:1") == 1)
  assert(game.cycle() == 4)
  assert(game.observed())
  local weapons = game.find_items{scope = "global", category = "weapon"}
  assert(#weapons == 4)
  game.swap(weapons[1], weapons[2])
  game.transform("Gold")
  game.light(2, 3)
  game.set_used()
end`
	effects, _, err := run(t, h, src, TriggerActive, nil, w)
	require.NoError(t, err)
	assert.Equal(t, []effect.Effect{
		effect.SwapItems{A: iid(1), B: iid(2)},
		effect.TransformItem{Item: iid(0), TargetKind: "Gold"},
		effect.EmitLight{Pos: grid.Pos{X: 1, Y: 1}, Radius: 2, Duration: 3},
		effect.SetUsed{Item: iid(0)},
	}, effects)
}

func TestRandomnessIsSeeded(t *testing.T) {
	h := newTestHost(t)
	src := `
function night()
  state.a = math.random(1, 100)
  state.b = game.random(6)
  state.c = game.choose({0, 1, 0})
end`
	_, first, err := run(t, h, src, TriggerNight, nil, newTestWorld())
	require.NoError(t, err)
	_, second, err := run(t, h, src, TriggerNight, nil, newTestWorld())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, string(first), `"c":2`)
}
