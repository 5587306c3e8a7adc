package engine

import (
	"go.uber.org/zap"

	"github.com/suderio/quantum-dungeon/internal/id"
	"github.com/suderio/quantum-dungeon/internal/script"
)

// updatePassive walks the passive queue. Steps whose kind has no animation
// for their trigger and that start no animation resolve at once; every
// other step is gated by its timers, one timer decrement per tick.
func (m *Model) updatePassive(p *PassivePhase, dt float64) {
	for m.phase == Phase(p) {
		if p.Current == nil {
			step, ok := m.nextStep(p)
			if !ok {
				m.finishResolution()
				return
			}
			it, _ := m.store.Item(step.Item)
			delay, animated := it.Kind.Animation(step.Trigger)
			if !animated {
				wait := m.resolve(step)
				if m.reap() {
					return
				}
				if wait <= 0 {
					continue
				}
				p.Current = &step
				p.Timers = Timers{Applied: true, EndDelay: wait}
				return
			}
			p.Current = &step
			p.Timers = Timers{StartDelay: m.cfg.StepIntro, EndDelay: delay}
		}

		switch p.Timers.tick(dt) {
		case timerWaiting:
			return
		case timerApply:
			p.Timers.holdFor(m.resolve(*p.Current))
			m.reap()
			return
		case timerDone:
			p.Current = nil
			dt = 0
		}
	}
}

// nextStep pops queued steps until one can still run: its item must be on
// the board and its kind must handle the trigger.
func (m *Model) nextStep(p *PassivePhase) (Step, bool) {
	for len(p.Queue) > 0 {
		step := p.Queue[0]
		p.Queue = p.Queue[1:]
		it, ok := m.store.Item(step.Item)
		if ok && it.OnBoard() && it.Kind.Unit.Handles(step.Trigger) {
			return step, true
		}
	}
	return Step{}, false
}

// activate starts resolving one item's active handler.
func (m *Model) activate(item id.ID) {
	it, _ := m.store.Item(item)
	delay, animated := it.Kind.Animation(script.TriggerActive)
	if !animated {
		p := &ActivePhase{Fraction: FractionPlayer, Item: item, Timers: Timers{Applied: true}}
		m.setPhase(p)
		p.Timers.holdFor(m.resolve(Step{Item: item, Trigger: script.TriggerActive}))
		if !m.reap() && p.Timers.EndDelay <= 0 {
			m.finishResolution()
		}
		return
	}
	m.setPhase(&ActivePhase{
		Fraction: FractionPlayer,
		Item:     item,
		Timers:   Timers{StartDelay: m.cfg.StepIntro, EndDelay: delay},
	})
}

func (m *Model) updateActive(p *ActivePhase, dt float64) {
	switch p.Timers.tick(dt) {
	case timerApply:
		p.Timers.holdFor(m.resolve(Step{Item: p.Item, Trigger: script.TriggerActive}))
		m.reap()
	case timerDone:
		m.finishResolution()
	}
}

// finishResolution leaves a resolution phase. Tile opening and portals
// requested during resolution take over before control returns to the
// player.
func (m *Model) finishResolution() {
	if m.pendingTiles > 0 {
		n := m.pendingTiles
		m.pendingTiles = 0
		m.setPhase(&MapPhase{TilesLeft: n})
		return
	}
	if m.pendingPortal {
		m.pendingPortal = false
		if opts := m.portalOptions(); len(opts) > 0 {
			m.setPhase(&PortalPhase{Options: opts})
			return
		}
		m.logger.Info("portal fizzles: no magic items in catalog")
	}
	if m.moves <= 0 {
		m.enterVision()
		return
	}
	m.setPhase(&PlayerPhase{})
}

// resolve runs one step's trigger and applies every effect it produced,
// in order, before returning. It reports how long the longest animation
// the step started has left to run.
func (m *Model) resolve(step Step) float64 {
	started := len(m.animations)
	m.chain = map[id.ID]bool{step.Item: true}
	m.runTrigger(step.Item, step.Trigger)
	m.drain()
	m.chain = nil

	wait := 0.0
	for _, a := range m.animations[started:] {
		wait = max(wait, a.Remaining)
	}
	return wait
}

func (m *Model) runTrigger(item id.ID, t script.Trigger) {
	it, ok := m.store.Item(item)
	if !ok {
		return
	}
	next, err := m.catalog.Host.Trigger(it.Kind.Unit, t, it.State, m.env(item))
	if err != nil {
		m.logger.Warn("script trigger failed",
			zap.String("kind", it.Kind.Name()),
			zap.String("trigger", string(t)),
			zap.Error(err))
		return
	}
	// the handler may not remove items, so it is still live here
	it.State = next
}

// drain applies queued effects in FIFO order. A dropped effect never
// stops the rest of the queue.
func (m *Model) drain() {
	for {
		e, ok := m.queue.Pop()
		if !ok {
			break
		}
		if err := m.apply(e); err != nil {
			m.logger.Warn("effect dropped", zap.String("effect", string(e.Kind())), zap.Error(err))
			continue
		}
		m.logger.Debug(e.Message(), zap.String("effect", string(e.Kind())))
	}
	m.invariant(m.store.CheckLinks())
}

// reap removes dead enemies. It reports whether the player died, in which
// case the level is finished.
func (m *Model) reap() bool {
	for _, eid := range m.store.EntityIDs() {
		e, _ := m.store.Entity(eid)
		if e.Alive() {
			continue
		}
		if eid == m.player {
			m.setPhase(&LevelFinishedPhase{Win: false})
			return true
		}
		m.store.RemoveEntity(eid)
		m.logger.Debug("entity died", zap.String("kind", e.Kind), zap.Stringer("id", eid))
	}
	return false
}
