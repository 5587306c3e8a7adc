// Package script hosts per-item Lua behaviour.
//
// Every item kind compiles to a Unit once. Each trigger call builds a fresh
// sandboxed VM, runs the unit, restores the instance's persisted `state`
// table, calls the handler and captures `state` again. Handlers talk to the
// game only through the `game` table, whose functions read a World view and
// append effects; nothing in the API mutates the model directly.
package script

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/Shopify/go-lua"
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/data"
	"github.com/suderio/quantum-dungeon/internal/effect"
	"github.com/suderio/quantum-dungeon/internal/id"
)

var (
	// ErrCompile wraps every script load failure.
	ErrCompile = errors.New("script compile failed")
	// ErrBudget is raised inside a VM that ran out of instructions.
	ErrBudget = errors.New("instruction budget exhausted")
)

// DefaultBudget is the instruction budget of one VM when the caller
// sets none.
const DefaultBudget = 1_000_000

// Trigger names a hook point where item behaviour may run.
type Trigger string

const (
	TriggerNight     Trigger = "night"
	TriggerDayBonus  Trigger = "day_bonus"
	TriggerDayAction Trigger = "day_action"
	TriggerActive    Trigger = "active"

	entryInit = "init"
)

// Triggers lists every trigger in resolution order.
var Triggers = []Trigger{TriggerNight, TriggerDayBonus, TriggerDayAction, TriggerActive}

// State is the serialized continuation of one item instance: the JSON
// encoding of its Lua `state` table. Nil means "nothing persisted yet".
type State []byte

// Unit is the compiled behaviour of one item kind. A unit with no source,
// or whose source failed to compile, is inert.
type Unit struct {
	Kind     string
	source   string
	handlers map[string]bool
}

// Inert reports whether the unit has no behaviour at all.
func (u *Unit) Inert() bool { return u == nil || u.source == "" }

// Handles reports whether the unit defines a handler for t.
func (u *Unit) Handles(t Trigger) bool {
	return u != nil && u.handlers[string(t)]
}

// Env binds one trigger call to its item and to the narrow capabilities a
// script may use.
type Env struct {
	Item  id.ID
	World World
	Sink  effect.Sink
	Rand  *rand.Rand
	// Budget caps the VM instructions of the call, chunk load included.
	// Zero or less means DefaultBudget.
	Budget int
}

// Host compiles and runs item scripts.
type Host struct {
	logger *zap.Logger
	eval   *data.Evaluator
}

// NewHost creates a scripting host. eval powers `where` filters and may be nil.
func NewHost(logger *zap.Logger, eval *data.Evaluator) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{logger: logger.Named("script"), eval: eval}
}

// Compile loads source for kind. On failure it returns an inert unit
// together with an error wrapping ErrCompile, so callers can degrade the
// kind instead of aborting.
func (h *Host) Compile(kind, source string) (*Unit, error) {
	inert := &Unit{Kind: kind, handlers: map[string]bool{}}
	if strings.TrimSpace(source) == "" {
		return inert, nil
	}

	c := &call{host: h, kind: kind, loading: true, out: &effect.Buffer{}}
	l := h.newState(c, DefaultBudget)
	if err := lua.LoadBuffer(l, source, "="+kind, "t"); err != nil {
		return inert, h.compileError(kind, err)
	}
	if err := protectedCall(l); err != nil {
		return inert, h.compileError(kind, err)
	}

	u := &Unit{Kind: kind, source: source, handlers: map[string]bool{}}
	for _, name := range append([]string{entryInit}, triggerNames()...) {
		l.Global(name)
		u.handlers[name] = l.IsFunction(-1)
		l.Pop(1)
	}
	return u, nil
}

func (h *Host) compileError(kind string, err error) error {
	h.logger.Warn("script compile failed", zap.String("kind", kind), zap.Error(err))
	return fmt.Errorf("%w: %s: %v", ErrCompile, kind, err)
}

// Instantiate runs the optional init entry point for a new item instance
// and returns its first continuation.
func (h *Host) Instantiate(u *Unit, env Env) (State, error) {
	if u.Inert() || !u.handlers[entryInit] {
		return nil, nil
	}
	return h.run(u, entryInit, nil, env)
}

// Trigger resumes an instance from saved and runs the handler for t.
// An undefined handler is a silent no-op. On error the saved state is
// returned unchanged and none of the call's effects reach env.Sink.
func (h *Host) Trigger(u *Unit, t Trigger, saved State, env Env) (State, error) {
	if !u.Handles(t) {
		return saved, nil
	}
	return h.run(u, string(t), saved, env)
}

func (h *Host) run(u *Unit, entry string, saved State, env Env) (State, error) {
	buf := &effect.Buffer{}
	c := &call{host: h, kind: u.Kind, env: env, out: buf}
	l := h.newState(c, env.Budget)

	if err := lua.LoadBuffer(l, u.source, "="+u.Kind, "t"); err != nil {
		return saved, fmt.Errorf("%s: %w", u.Kind, err)
	}
	if err := protectedCall(l); err != nil {
		return saved, fmt.Errorf("%s: %w", u.Kind, err)
	}
	if err := restoreState(l, saved); err != nil {
		return saved, fmt.Errorf("%s: restore state: %w", u.Kind, err)
	}

	l.Global(entry)
	if !l.IsFunction(-1) {
		l.Pop(1)
		return saved, nil
	}
	if err := protectedCall(l); err != nil {
		return saved, fmt.Errorf("%s.%s: %w", u.Kind, entry, err)
	}

	next, err := captureState(l)
	if err != nil {
		return saved, fmt.Errorf("%s: capture state: %w", u.Kind, err)
	}
	if env.Sink != nil {
		for _, e := range buf.Effects {
			env.Sink.Push(e)
		}
	}
	return next, nil
}

// unsafeGlobals are removed from every VM: file, process and module access
// plus dynamic code loading.
var unsafeGlobals = []string{
	"io", "os", "package", "debug", "require",
	"dofile", "loadfile", "load", "loadstring", "collectgarbage",
}

// protectedCall calls the function on top of the stack. go-lua only
// recovers error panics; anything else raised below a Go function is
// turned into an error here so no script can take the host down.
func protectedCall(l *lua.State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panicked: %v", r)
		}
	}()
	return l.ProtectedCall(0, 0, 0)
}

func (h *Host) newState(c *call, budget int) *lua.State {
	if budget <= 0 {
		budget = DefaultBudget
	}
	l := lua.NewState()
	lua.OpenLibraries(l)
	lua.SetDebugHook(l, func(l *lua.State, _ lua.Debug) {
		lua.Errorf(l, "%s after %d instructions", ErrBudget.Error(), budget)
	}, lua.MaskCount, budget)
	for _, name := range unsafeGlobals {
		l.PushNil()
		l.SetGlobal(name)
	}

	l.Global("math")
	l.PushGoFunction(c.mathRandom)
	l.SetField(-2, "random")
	l.PushGoFunction(func(*lua.State) int { return 0 })
	l.SetField(-2, "randomseed")
	l.Pop(1)

	l.NewTable()
	lua.SetFunctions(l, c.api(), 0)
	l.SetGlobal("game")
	return l
}

func triggerNames() []string {
	out := make([]string, len(Triggers))
	for i, t := range Triggers {
		out[i] = string(t)
	}
	return out
}
