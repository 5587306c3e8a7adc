package engine

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/effect"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/id"
	"github.com/suderio/quantum-dungeon/internal/script"
)

// Config tunes the rules. Durations are in seconds of Update time except
// light durations, which count cycles.
type Config struct {
	MovesPerTurn       int     `mapstructure:"moves_per_turn"`
	PlayerLight        float64 `mapstructure:"player_light"`
	LookRadius         float64 `mapstructure:"look_radius"`
	OptionsPerSelect   int     `mapstructure:"options_per_select"`
	RerollsPerCycle    int     `mapstructure:"rerolls_per_cycle"`
	PortalOptions      int     `mapstructure:"portal_options"`
	StepIntro          float64 `mapstructure:"step_intro"`
	DamageAnimation    float64 `mapstructure:"damage_animation"`
	DuplicateAnimation float64 `mapstructure:"duplicate_animation"`
	// ScriptBudget caps the Lua instructions of one script call.
	ScriptBudget int `mapstructure:"script_budget"`
	// Strict turns invariant violations into panics instead of repairs.
	Strict bool `mapstructure:"strict"`
}

// DefaultConfig returns the stock rules.
func DefaultConfig() Config {
	return Config{
		MovesPerTurn:       3,
		PlayerLight:        1.5,
		LookRadius:         4,
		OptionsPerSelect:   3,
		RerollsPerCycle:    1,
		PortalOptions:      3,
		StepIntro:          0.15,
		DamageAnimation:    0.3,
		DuplicateAnimation: 0.5,
		ScriptBudget:       script.DefaultBudget,
	}
}

// Option configures a Model.
type Option func(*Model)

func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithConfig(cfg Config) Option { return func(m *Model) { m.cfg = cfg } }

// WithSeed seeds the model's random source. All randomness, script draws
// included, comes from this one stream.
func WithSeed(seed int64) Option {
	return func(m *Model) { m.rng = rand.New(rand.NewSource(seed)) }
}

func WithRand(r *rand.Rand) Option { return func(m *Model) { m.rng = r } }

// Model owns all authoritative state. It is single-threaded: HandleInput
// and Update must not be called concurrently.
type Model struct {
	cfg     Config
	logger  *zap.Logger
	catalog *Catalog
	level   *data.LevelConfig
	rng     *rand.Rand

	grid   *grid.Grid
	store  *Store
	player id.ID
	phase  Phase

	queue      effect.Queue
	animations []Animation
	lights     []LightSource

	cycle      int
	moves      int
	lookTarget *grid.Pos

	pendingTiles  int
	pendingPortal bool
	chain         map[id.ID]bool
}

// New builds a model on level using kinds from catalog.
func New(catalog *Catalog, level *data.LevelConfig, opts ...Option) (*Model, error) {
	m := &Model{
		cfg:     DefaultConfig(),
		logger:  zap.NewNop(),
		catalog: catalog,
		level:   level,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(1))
	}
	m.logger = m.logger.Named("engine")
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// reset rebuilds the run from the level definition.
func (m *Model) reset() error {
	m.grid = m.level.Grid()
	m.store = NewStore()
	m.queue = effect.Queue{}
	m.animations = nil
	m.lights = nil
	m.cycle = 0
	m.moves = m.cfg.MovesPerTurn
	m.lookTarget = nil
	m.pendingTiles = 0
	m.pendingPortal = false

	health := m.level.PlayerHealth
	m.player = m.store.AddEntity(&Entity{
		Kind:      "player",
		Fraction:  FractionPlayer,
		Pos:       m.level.PlayerStart,
		Health:    health,
		MaxHealth: health,
	})

	for _, pl := range m.level.Items {
		item, err := m.createItem(pl.Kind)
		if err != nil {
			return err
		}
		if !m.grid.Exists(pl.Pos()) {
			return fmt.Errorf("level item %s: tile %v does not exist", pl.Kind, pl.Pos())
		}
		if _, err := m.store.Place(item, pl.Pos()); err != nil {
			return fmt.Errorf("level item %s: %w", pl.Kind, err)
		}
	}
	for _, name := range m.level.Carried {
		if _, err := m.createItem(name); err != nil {
			return err
		}
	}
	m.setPhase(&PlayerPhase{})
	return nil
}

// createItem instantiates a carried item of the named kind.
func (m *Model) createItem(name string) (id.ID, error) {
	k, ok := m.catalog.Kind(name)
	if !ok {
		return id.ID{}, fmt.Errorf("unknown item kind %q", name)
	}
	it := &InventoryItem{
		Kind:      k,
		Permanent: k.Config.Stats.Clone(),
		Temporary: k.Config.Stats.Clone(),
	}
	item := m.store.AddItem(it)
	m.instantiate(item, it)
	return item, nil
}

func (m *Model) instantiate(item id.ID, it *InventoryItem) {
	env := m.env(item)
	env.Sink = nil // init only seeds state
	st, err := m.catalog.Host.Instantiate(it.Kind.Unit, env)
	if err != nil {
		m.logger.Warn("script init failed", zap.String("kind", it.Kind.Name()), zap.Error(err))
		st = nil
	}
	it.State = st
}

func (m *Model) env(item id.ID) script.Env {
	return script.Env{Item: item, World: worldView{m}, Sink: &m.queue, Rand: m.rng, Budget: m.cfg.ScriptBudget}
}

func (m *Model) setPhase(p Phase) {
	prev := "none"
	if m.phase != nil {
		prev = m.phase.Kind().String()
	}
	m.phase = p
	m.logger.Debug("phase changed", zap.String("from", prev), zap.String("to", p.Kind().String()), zap.Int("cycle", m.cycle))
}

// invariant reports a store inconsistency: a panic in strict mode, a
// logged repair otherwise.
func (m *Model) invariant(err error) {
	if err == nil {
		return
	}
	if m.cfg.Strict {
		panic(err)
	}
	m.logger.Error("invariant violated", zap.Error(err))
	m.store.Repair()
}

// HandleInput applies one player input. A rejected input leaves the state
// unchanged; the error wraps ErrWrongPhase or ErrInvalidInput.
func (m *Model) HandleInput(in Input) error {
	err := m.handle(in)
	if err != nil {
		m.logger.Warn("input rejected",
			zap.String("phase", m.phase.Kind().String()),
			zap.Stringer("input", in),
			zap.Error(err))
	}
	return err
}

func (m *Model) handle(in Input) error {
	switch p := m.phase.(type) {
	case *PlayerPhase:
		return m.handlePlayer(in)
	case *VisionPhase:
		return m.handleVision(p, in)
	case *SelectPhase:
		return m.handleSelect(p, in)
	case *MapPhase:
		return m.handleMap(p, in)
	case *PortalPhase:
		return m.handlePortal(p, in)
	case *LevelFinishedPhase:
		if _, ok := in.(Retry); !ok {
			return fmt.Errorf("%w: %s", ErrWrongPhase, in)
		}
		return m.reset()
	}
	return fmt.Errorf("%w: %s during %s", ErrWrongPhase, in, m.phase.Kind())
}

// Update advances timers and resolution phases by dt seconds.
func (m *Model) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	m.tickAnimations(dt)
	switch p := m.phase.(type) {
	case *PassivePhase:
		m.updatePassive(p, dt)
	case *ActivePhase:
		m.updateActive(p, dt)
	}
}

// Phase returns a copy of the live phase.
func (m *Model) Phase() Phase { return m.phase.clone() }

// Cycle returns the number of nights passed.
func (m *Model) Cycle() int { return m.cycle }

// MovesLeft returns the remaining moves of the current turn.
func (m *Model) MovesLeft() int { return m.moves }

// Player returns a copy of the player entity.
func (m *Model) Player() Entity {
	e, _ := m.store.Entity(m.player)
	return *e
}

// Catalog returns the kinds the model was built with.
func (m *Model) Catalog() *Catalog { return m.catalog }
