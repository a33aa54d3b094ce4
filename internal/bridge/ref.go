package bridge

import (
	"runtime"
	"sync"
)

// Ref owns one handle on behalf of a garbage-collected host.
//
// Memory Management:
// Refs should be closed explicitly when no longer needed. A finalizer is
// set as a safety net so that a ref the host drops is still released, and
// its secrets zeroed, when the collector reclaims it.
type Ref struct {
	reg  *Registry
	h    Handle
	once sync.Once
	err  error
}

// NewRef takes ownership of h.
func (r *Registry) NewRef(h Handle) *Ref {
	ref := &Ref{reg: r, h: h}
	runtime.SetFinalizer(ref, func(x *Ref) {
		_ = x.Close()
	})
	return ref
}

// Handle returns the owned handle.
func (x *Ref) Handle() Handle { return x.h }

// Close releases the handle. It is safe to call Close multiple times; only
// the first call releases and later calls return its result.
func (x *Ref) Close() error {
	if x == nil {
		return nil
	}
	x.once.Do(func() {
		x.err = x.reg.Release(x.h)
		runtime.SetFinalizer(x, nil)
	})
	return x.err
}
