package vm

import "fmt"

// PrototypeName is the property a function object's instances delegate to.
var PrototypeName = PublicName("prototype")

// FunctionObject is an object that can be called. It carries a Callable and,
// for bound methods, the receiver every call uses.
//
// FunctionObject is itself a Callable, so a function object can be
// installed as a method or accessor half on another object; the registry
// then keeps it alive through tracing.
type FunctionObject struct {
	ScriptObject
}

// NewFunction allocates a function object for fn delegating to proto, which
// may be nil.
func NewFunction(mc *Mutation, fn Callable, proto Object) FunctionObject {
	checkProto(mc, proto)
	checkCallable(mc, fn)
	s := newStorage(FunctionKind, proto, Slots{})
	s.callable = fn
	h := mc.Heap().Allocate(mc, s)
	return FunctionObject{ScriptObject{heap: mc.Heap(), h: h}}
}

// BindMethod returns a function object that calls fn with receiver. Reading
// a method property hands out one of these.
func BindMethod(mc *Mutation, fn Callable, receiver Value) FunctionObject {
	checkCallable(mc, fn)
	var proto Object
	if f, ok := fn.(FunctionObject); ok {
		proto = f.Proto()
	}
	checkProto(mc, proto)
	s := newStorage(FunctionKind, proto, Slots{})
	s.callable = fn
	s.bound = receiver
	s.hasBound = true
	h := mc.Heap().Allocate(mc, s)
	return FunctionObject{ScriptObject{heap: mc.Heap(), h: h}}
}

// Bind returns a copy of f bound to receiver.
func (f FunctionObject) Bind(mc *Mutation, receiver Value) FunctionObject {
	return BindMethod(mc, f, receiver)
}

// Callable returns the wrapped callable.
func (f FunctionObject) Callable() Callable {
	return f.storage().callable
}

// Bound returns the bound receiver, if any.
func (f FunctionObject) Bound() (Value, bool) {
	s := f.storage()
	return s.bound, s.hasBound
}

// Call implements Callable. A bound function ignores receiver in favor of
// the one it was bound to.
func (f FunctionObject) Call(ctx *Context, receiver Value, args []Value) (*Deferred, error) {
	s := f.storage()
	if s.callable == nil {
		return nil, fmt.Errorf("%w: function %s", ErrNotCallable, f.h)
	}
	if s.hasBound {
		receiver = s.bound
	}
	return s.callable.Call(ctx, receiver, args)
}

// Trace implements Tracer.
func (f FunctionObject) Trace(visit func(Value)) {
	visit(f.Value())
}

// Construct allocates an instance. The instance delegates to the function's
// own prototype property when that holds an object, and to the function
// itself otherwise. The function body is not run; the interpreter calls it
// with the new instance as receiver.
func (f FunctionObject) Construct(ctx *Context, args []Value) (Object, error) {
	var proto Object = f
	if p, ok := f.storage().props.Lookup(PrototypeName); ok {
		if v := p.StoredValue(); v.IsObject() {
			proto = f.heap.Object(v.Handle())
		}
	}
	return NewObject(ctx.Mutation, proto), nil
}
