// Package id provides generation-tagged handles into index-stable arenas.
//
// An ID stays comparable after its referent is removed: lookups with a
// stale ID simply fail, and a freed slot is never handed out again under
// the same generation.
package id

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrStale is returned when an ID no longer resolves to a live value.
var ErrStale = errors.New("stale id")

// ID is an opaque handle into an Arena. The zero value never resolves.
type ID struct {
	Index uint32 `json:"index"`
	Gen   uint32 `json:"gen"`
}

// IsZero reports whether the ID is the unset handle.
func (i ID) IsZero() bool { return i.Gen == 0 }

// String renders the handle as "index:gen", the form exposed to scripts.
func (i ID) String() string {
	return strconv.FormatUint(uint64(i.Index), 10) + ":" + strconv.FormatUint(uint64(i.Gen), 10)
}

// Parse reads a handle previously produced by String.
func Parse(s string) (ID, error) {
	idx, gen, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ID{}, fmt.Errorf("malformed id %q", s)
	}
	i, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return ID{}, fmt.Errorf("malformed id %q: %w", s, err)
	}
	g, err := strconv.ParseUint(gen, 10, 32)
	if err != nil {
		return ID{}, fmt.Errorf("malformed id %q: %w", s, err)
	}
	return ID{Index: uint32(i), Gen: uint32(g)}, nil
}

type slot[T any] struct {
	gen   uint32
	alive bool
	value T
}

// Arena stores values addressed by generation-tagged IDs.
// Iteration order is slot order, which is stable across removals.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// Insert stores v and returns its new handle.
func (a *Arena[T]) Insert(v T) ID {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.alive = true
		s.value = v
		a.live++
		return ID{Index: idx, Gen: s.gen}
	}
	a.slots = append(a.slots, slot[T]{gen: 1, alive: true, value: v})
	a.live++
	return ID{Index: uint32(len(a.slots) - 1), Gen: 1}
}

// Get returns the value for id if it is still alive.
func (a *Arena[T]) Get(id ID) (T, bool) {
	var zero T
	if !a.Contains(id) {
		return zero, false
	}
	return a.slots[id.Index].value, true
}

// Contains reports whether id resolves to a live value.
func (a *Arena[T]) Contains(id ID) bool {
	if id.IsZero() || int(id.Index) >= len(a.slots) {
		return false
	}
	s := a.slots[id.Index]
	return s.alive && s.gen == id.Gen
}

// Remove deletes the value behind id. The slot's generation is bumped so
// the old handle can never resolve again. A slot whose generation would
// wrap is retired instead of reused.
func (a *Arena[T]) Remove(id ID) (T, bool) {
	var zero T
	if !a.Contains(id) {
		return zero, false
	}
	s := &a.slots[id.Index]
	v := s.value
	s.value = zero
	s.alive = false
	if s.gen < math.MaxUint32 {
		s.gen++
		a.free = append(a.free, id.Index)
	}
	a.live--
	return v, true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int { return a.live }

// IDs lists live handles in slot order.
func (a *Arena[T]) IDs() []ID {
	out := make([]ID, 0, a.live)
	for i, s := range a.slots {
		if s.alive {
			out = append(out, ID{Index: uint32(i), Gen: s.gen})
		}
	}
	return out
}

// Each calls fn for every live value in slot order. fn must not insert or
// remove values.
func (a *Arena[T]) Each(fn func(ID, T)) {
	for i, s := range a.slots {
		if s.alive {
			fn(ID{Index: uint32(i), Gen: s.gen}, s.value)
		}
	}
}
