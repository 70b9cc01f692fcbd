package vm

// Deferred is the outcome of an operation that may need more interpreted
// code to run before its value is known.
//
// An immediate Deferred already holds its value. A pending one holds a
// Frame; Resolve hands the frame to the context's Interpreter exactly once
// and remembers the outcome. Accessor side effects therefore happen when,
// and only when, the caller resolves.
type Deferred struct {
	value    Value
	frame    Frame
	err      error
	running  bool
	resolved bool
}

// Immediate returns a Deferred that is already complete.
func Immediate(v Value) *Deferred {
	return &Deferred{value: v, resolved: true}
}

// Pending returns a Deferred that completes when f runs.
// Panics if f is nil.
func Pending(f Frame) *Deferred {
	if f == nil {
		panic("vm: Pending with nil frame")
	}
	return &Deferred{value: Undefined, frame: f}
}

// IsPending reports whether the result still needs a frame to run.
func (d *Deferred) IsPending() bool {
	return !d.resolved
}

// Frame returns the frame waiting to run, or nil once resolved.
func (d *Deferred) Frame() Frame {
	if d.resolved {
		return nil
	}
	return d.frame
}

// Value returns the completed value. The second result is false while the
// Deferred is pending.
func (d *Deferred) Value() (Value, bool) {
	if !d.resolved {
		return Undefined, false
	}
	return d.value, true
}

// Resolve drives the Deferred to completion. Errors raised by the frame are
// returned unchanged, and repeated calls return the first outcome without
// running the frame again. A call made from inside the running frame fails
// with ErrResolving.
func (d *Deferred) Resolve(ctx *Context) (Value, error) {
	if d.resolved {
		return d.value, d.err
	}
	if d.running {
		return Undefined, ErrResolving
	}
	if ctx == nil || ctx.Interp == nil {
		panic("vm: resolving a pending result without an interpreter")
	}
	d.running = true
	v, err := ctx.Interp.RunFrame(ctx, d.frame)
	d.running = false
	d.frame = nil
	d.resolved = true
	if err != nil {
		d.value, d.err = Undefined, err
		return Undefined, err
	}
	d.value = v
	return v, nil
}
