package evaluator

import (
	"sync"
	"sync/atomic"
)

// SharedCell is the unit of sharing between a captured variable's original
// scope slot and every closure that captured it. Identity is allocation
// identity: two closures capturing the same slot instance hold the same
// *SharedCell, which is how all of them observe the same mutations.
//
// Two configurations exist, selected at allocation time:
//
//   - threaded == false (default): plain owner counting and a re-entrant
//     exclusive-access depth counter. Acquire never blocks; the aliasing
//     hazard between a call's receiver and its arguments is caught by the
//     identity scan in the call protocol and surfaces as a runtime error.
//
//   - threaded == true: a real mutex and atomic owner counting, for hosts
//     that run scripts on more than one goroutine. The same aliasing is
//     then undetectable up front and manifests as the goroutine blocking
//     on a lock it already holds. That divergence in failure mode is
//     documented behavior, not something this type tries to unify.
type SharedCell struct {
	mu       sync.Mutex
	threaded bool
	owners   int32
	depth    int // re-entrant exclusive-access depth (single-thread mode)
	value    Object
}

func NewSharedCell(val Object, threaded bool) *SharedCell {
	return &SharedCell{threaded: threaded, owners: 1, value: val}
}

func (c *SharedCell) Type() ObjectType { return SHARED_CELL_OBJ }
func (c *SharedCell) Inspect() string  { return c.Get().Inspect() }
func (c *SharedCell) Hash() uint32     { return c.Get().Hash() }

// Get returns the cell's current value (shared access).
func (c *SharedCell) Get() Object {
	if c.threaded {
		c.mu.Lock()
		defer c.mu.Unlock()
	}
	return c.value
}

// Set replaces the cell's value (short exclusive access).
func (c *SharedCell) Set(val Object) {
	if c.threaded {
		c.mu.Lock()
		defer c.mu.Unlock()
	}
	c.value = val
}

// Acquire grants exclusive access for the duration of a receiver-bound
// call. Callers must pair it with Release on every exit path.
func (c *SharedCell) Acquire() {
	if c.threaded {
		c.mu.Lock()
		return
	}
	c.depth++
}

func (c *SharedCell) Release() {
	if c.threaded {
		c.mu.Unlock()
		return
	}
	c.depth--
}

// Value and SetValue are for a holder that already has exclusive access
// via Acquire; they skip the lock.
func (c *SharedCell) Value() Object       { return c.value }
func (c *SharedCell) SetValue(val Object) { c.value = val }

// Retain records a new owner (a closure's pre-bound argument list; the
// originating scope slot is the first owner). The count is diagnostic:
// actual lifetime is garbage-collected.
func (c *SharedCell) Retain() {
	if c.threaded {
		atomic.AddInt32(&c.owners, 1)
		return
	}
	c.owners++
}

// Owners reports the current owner count.
func (c *SharedCell) Owners() int32 {
	if c.threaded {
		return atomic.LoadInt32(&c.owners)
	}
	return c.owners
}
