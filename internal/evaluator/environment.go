package evaluator

import "sync"

// Slot is one variable's storage. It holds either a plain value or, once
// the variable has been captured by a closure, a *SharedCell. Promotion is
// monotonic: a slot never goes back from Shared to plain.
type Slot struct {
	value Object
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]*Slot)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

type Environment struct {
	mu    sync.RWMutex
	store map[string]*Slot
	outer *Environment
}

// Get returns the slot's stored representation: the plain value, or the
// shared cell itself when the slot has been promoted. Dereferencing is the
// caller's concern so that cell identity survives up to the point where it
// matters (hazard detection, is_shared, re-capture).
func (e *Environment) Get(name string) (Object, bool) {
	e.mu.RLock()
	slot, ok := e.store[name]
	e.mu.RUnlock()
	if ok {
		return slot.value, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// Declare binds a name to a fresh slot in this scope. Re-declaring a name
// replaces the slot: closures that captured the old slot keep their shared
// cell, the new declaration starts plain (normal shadowing semantics).
func (e *Environment) Declare(name string, val Object) Object {
	e.mu.Lock()
	e.store[name] = &Slot{value: val}
	e.mu.Unlock()
	return val
}

// Update assigns to an existing variable, resolving through outer scopes.
// A promoted slot is written through its cell so every other owner sees
// the new value; an unpromoted slot is written in place.
func (e *Environment) Update(name string, val Object) bool {
	e.mu.Lock()
	if slot, ok := e.store[name]; ok {
		if cell, isCell := slot.value.(*SharedCell); isCell {
			e.mu.Unlock()
			cell.Set(val)
			return true
		}
		slot.value = val
		e.mu.Unlock()
		return true
	}
	e.mu.Unlock()
	if e.outer != nil {
		return e.outer.Update(name, val)
	}
	return false
}

// Promote converts the named slot to shared storage, resolving through
// outer scopes with normal shadowing (innermost declaration wins). If the
// slot is already promoted the existing cell is returned, never a second
// allocation. The conversion is irreversible by construction: nothing ever
// writes a plain value back into a promoted slot.
func (e *Environment) Promote(name string, threaded bool) (*SharedCell, bool) {
	e.mu.Lock()
	if slot, ok := e.store[name]; ok {
		if cell, isCell := slot.value.(*SharedCell); isCell {
			e.mu.Unlock()
			return cell, true
		}
		cell := NewSharedCell(slot.value, threaded)
		slot.value = cell
		e.mu.Unlock()
		return cell, true
	}
	e.mu.Unlock()
	if e.outer != nil {
		return e.outer.Promote(name, threaded)
	}
	return nil, false
}

// Has reports whether the name resolves to a variable in this scope chain.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Names returns the variable names declared in this scope (not outer
// scopes). Used to seed the analyzer in the REPL.
func (e *Environment) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	return names
}
