// Package clock provides the engine.Clock collaborator: a thin wrapper over
// wall-clock time for stamping orders, plus a deterministic fake for tests
// that need specific, reproducible timestamps (e.g. FIFO ordering
// scenarios where arrival order must be pinned).
package clock

import "time"

// System sources timestamps from time.Now(). It satisfies engine.Clock; an
// Engine given no clock uses its own equivalent wall-clock default.
type System struct{}

func (System) NowNanos() uint64 { return uint64(time.Now().UnixNano()) }

// Fake is a manually-advanced clock for deterministic tests.
type Fake struct {
	nanos uint64
}

// NewFake constructs a Fake clock starting at the given nanosecond value.
func NewFake(start uint64) *Fake {
	return &Fake{nanos: start}
}

func (f *Fake) NowNanos() uint64 { return f.nanos }

// Set pins the clock to an exact value.
func (f *Fake) Set(nanos uint64) { f.nanos = nanos }

// Advance moves the clock forward by delta nanoseconds and returns the new
// value.
func (f *Fake) Advance(delta uint64) uint64 {
	f.nanos += delta
	return f.nanos
}
