package paint

import "fmt"

// cacheState tags a cached value.
type cacheState uint8

const (
	stateDirty cacheState = iota
	stateClean
)

// cached is a lazily recomputed value. A fresh cached starts dirty, so a
// new layer never exposes a zero value as if it had been computed.
type cached[T any] struct {
	state cacheState
	value T
}

func (c *cached[T]) dirty() bool {
	return c.state == stateDirty
}

// markDirty reports whether the state changed.
func (c *cached[T]) markDirty() bool {
	if c.state == stateDirty {
		return false
	}
	c.state = stateDirty
	return true
}

func (c *cached[T]) set(v T) {
	c.value = v
	c.state = stateClean
}

// get returns the value, panicking when it is stale. what names the value in
// the panic message.
func (c *cached[T]) get(what string, id LayerID) T {
	if c.state == stateDirty {
		panic(usageError("read of stale %s on layer %v", what, id))
	}
	return c.value
}

// Stats counts dirty-bit work so tests can verify that invalidation and
// recomputation stay proportional to the dirtied region.
type Stats struct {
	// DirtyMarks counts bits that went from clean to dirty.
	DirtyMarks int
	// Recomputes counts cached values recomputed on read.
	Recomputes int
	// StackingRebuilds counts z-order list rebuilds.
	StackingRebuilds int
}

// UsageError is the panic value for programming errors: stale reads,
// inserting an already parented layer, queries outside their lifecycle
// phase.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string {
	return "paint: " + e.msg
}

func usageError(format string, args ...any) *UsageError {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(usageError(format, args...))
	}
}
