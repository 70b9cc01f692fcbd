package vm

// ---------------------------------------------------------------------------
// Execution context
// ---------------------------------------------------------------------------

// Frame is an interpreter activation that still has to run. This package
// never looks inside a Frame; it only hands it back to the Interpreter.
type Frame interface{}

// Interpreter is the execution engine that drives pending frames to
// completion. Running a frame may re-enter object operations, including on
// the object that produced the frame.
type Interpreter interface {
	RunFrame(ctx *Context, f Frame) (Value, error)
}

// Context carries what object operations need from the caller: the
// interpreter that resolves deferred results and the active mutation.
type Context struct {
	Interp   Interpreter
	Mutation *Mutation
}

// NewContext creates a context for one interpreter step.
func NewContext(interp Interpreter, mc *Mutation) *Context {
	return &Context{Interp: interp, Mutation: mc}
}

// Heap returns the heap the context's mutation belongs to.
func (c *Context) Heap() *Heap {
	return c.Mutation.Heap()
}

// ---------------------------------------------------------------------------
// Callables
// ---------------------------------------------------------------------------

// Callable is anything that can be installed as a method or accessor half.
//
// Call may finish immediately or return a pending Deferred whose frame the
// interpreter has to run. Errors are the callee's own and callers return
// them unchanged.
type Callable interface {
	Call(ctx *Context, receiver Value, args []Value) (*Deferred, error)
}

// Tracer is implemented by callables that keep heap values alive. The
// collector visits every value a Tracer reports.
type Tracer interface {
	Trace(visit func(Value))
}

// NativeFunc adapts a Go function to Callable. It always completes
// immediately.
type NativeFunc func(ctx *Context, receiver Value, args []Value) (Value, error)

// Call implements Callable.
func (f NativeFunc) Call(ctx *Context, receiver Value, args []Value) (*Deferred, error) {
	v, err := f(ctx, receiver, args)
	if err != nil {
		return nil, err
	}
	return Immediate(v), nil
}

// FrameFunc adapts a Go function that produces an interpreter frame instead
// of a value. It is how compiled code is exposed as a Callable.
type FrameFunc func(ctx *Context, receiver Value, args []Value) (Frame, error)

// Call implements Callable.
func (f FrameFunc) Call(ctx *Context, receiver Value, args []Value) (*Deferred, error) {
	fr, err := f(ctx, receiver, args)
	if err != nil {
		return nil, err
	}
	return Pending(fr), nil
}
