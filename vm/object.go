package vm

import "fmt"

// Object is the capability contract every object kind provides to the
// interpreter.
//
// Objects are handles: copying one aliases the same storage, and a mutation
// through any copy is visible through all of them immediately. Two Objects
// name the same allocation exactly when their IDs are equal.
//
// Reads need no permit, with one exception: reading a method property
// allocates a bound function and so needs Context.Mutation. Mutating
// operations take the heap's Mutation, either directly or through
// Context.Mutation.
type Object interface {
	// GetProperty resolves name on this object's own registry. The
	// prototype is not consulted. An absent name yields Undefined. Panics
	// if name is a method and ctx holds no live permit.
	GetProperty(ctx *Context, name QName) (*Deferred, error)

	// SetProperty writes name, creating a dynamic entry when absent.
	SetProperty(ctx *Context, name QName, value Value) (*Deferred, error)

	GetSlot(index uint32) (Value, error)
	SetSlot(mc *Mutation, index uint32, value Value) error

	// HasProperty tests own storage only.
	HasProperty(name QName) bool

	// Proto returns the delegation target, or nil.
	Proto() Object

	// Construct creates a new object using this one as its class.
	Construct(ctx *Context, args []Value) (Object, error)

	InstallMethod(mc *Mutation, name QName, fn Callable)
	InstallGetter(mc *Mutation, name QName, fn Callable) error
	InstallSetter(mc *Mutation, name QName, fn Callable) error
	InstallDynamicProperty(mc *Mutation, name QName, value Value) error

	ID() ObjectID
	Handle() Handle
	Kind() ObjectKind
	Value() Value
	Heap() *Heap

	// Registry exposes the property registry for inspection. Callers must
	// not mutate it.
	Registry() *PropertyRegistry
	NumSlots() int

	sealed()
}

// ---------------------------------------------------------------------------
// ScriptObject: the default, fully dynamic object
// ---------------------------------------------------------------------------

// ScriptObject is the default object kind. It is always extensible: writing
// an unknown name creates it.
type ScriptObject struct {
	heap *Heap
	h    Handle
}

// BareObject allocates an object with no prototype.
//
// This is not the same thing as an object literal, which delegates to the
// language's Object prototype.
func BareObject(mc *Mutation) ScriptObject {
	return allocScript(mc, nil, Slots{})
}

// NewObject allocates an object delegating to proto.
func NewObject(mc *Mutation, proto Object) ScriptObject {
	return allocScript(mc, proto, Slots{})
}

// NewObjectWithSlots allocates an object delegating to proto (which may be
// nil) with a fixed slot layout initialized from slots.
func NewObjectWithSlots(mc *Mutation, proto Object, slots []Value) ScriptObject {
	return allocScript(mc, proto, SlotsOf(slots))
}

func allocScript(mc *Mutation, proto Object, slots Slots) ScriptObject {
	checkProto(mc, proto)
	h := mc.Heap().Allocate(mc, newStorage(ScriptKind, proto, slots))
	return ScriptObject{heap: mc.Heap(), h: h}
}

func checkProto(mc *Mutation, proto Object) {
	if proto != nil && proto.Heap() != mc.Heap() {
		panic(fmt.Sprintf("vm: prototype %s belongs to a different heap", proto.ID()))
	}
}

// checkCallable rejects function objects from another heap; tracing them
// would mark an unrelated record here.
func checkCallable(mc *Mutation, fn Callable) {
	if f, ok := fn.(FunctionObject); ok && f.heap != mc.Heap() {
		panic(fmt.Sprintf("vm: function %s belongs to a different heap", f.ID()))
	}
}

func (o ScriptObject) storage() *Storage {
	return o.heap.storage(o.h)
}

// GetProperty implements Object.
func (o ScriptObject) GetProperty(ctx *Context, name QName) (*Deferred, error) {
	p, ok := o.storage().props.Lookup(name)
	if !ok {
		return Immediate(Undefined), nil
	}
	return p.get(ctx, name, o)
}

// SetProperty implements Object.
func (o ScriptObject) SetProperty(ctx *Context, name QName, value Value) (*Deferred, error) {
	ctx.Mutation.check(o.heap)
	s := o.storage()
	if p, ok := s.props.Lookup(name); ok {
		return p.set(ctx, name, o, value)
	}
	s.props.InstallDynamic(name, value)
	return Immediate(Undefined), nil
}

// GetSlot implements Object.
func (o ScriptObject) GetSlot(index uint32) (Value, error) {
	s := o.storage()
	v, err := s.slots.Get(index)
	if err != nil {
		return Undefined, fmt.Errorf("object %s: %w", o.h, err)
	}
	return v, nil
}

// SetSlot implements Object.
func (o ScriptObject) SetSlot(mc *Mutation, index uint32, value Value) error {
	mc.check(o.heap)
	if err := o.storage().slots.Set(index, value); err != nil {
		return fmt.Errorf("object %s: %w", o.h, err)
	}
	return nil
}

// NumSlots returns the fixed slot count.
func (o ScriptObject) NumSlots() int {
	return o.storage().slots.Len()
}

// HasProperty implements Object.
func (o ScriptObject) HasProperty(name QName) bool {
	return o.storage().props.Has(name)
}

// Proto implements Object.
func (o ScriptObject) Proto() Object {
	s := o.storage()
	if !s.hasProto {
		return nil
	}
	return o.heap.Object(s.proto)
}

// Construct allocates a new object whose prototype is o. It never fails.
func (o ScriptObject) Construct(ctx *Context, args []Value) (Object, error) {
	return NewObject(ctx.Mutation, o), nil
}

// InstallMethod implements Object.
func (o ScriptObject) InstallMethod(mc *Mutation, name QName, fn Callable) {
	mc.check(o.heap)
	checkCallable(mc, fn)
	o.storage().props.InstallMethod(name, fn)
}

// InstallGetter implements Object.
func (o ScriptObject) InstallGetter(mc *Mutation, name QName, fn Callable) error {
	mc.check(o.heap)
	checkCallable(mc, fn)
	return o.storage().props.InstallGetter(name, fn)
}

// InstallSetter implements Object.
func (o ScriptObject) InstallSetter(mc *Mutation, name QName, fn Callable) error {
	mc.check(o.heap)
	checkCallable(mc, fn)
	return o.storage().props.InstallSetter(name, fn)
}

// InstallDynamicProperty implements Object.
func (o ScriptObject) InstallDynamicProperty(mc *Mutation, name QName, value Value) error {
	mc.check(o.heap)
	o.storage().props.InstallDynamic(name, value)
	return nil
}

// Registry implements Object.
func (o ScriptObject) Registry() *PropertyRegistry {
	return o.storage().props
}

// ID implements Object.
func (o ScriptObject) ID() ObjectID { return o.h.ID() }

// Handle implements Object.
func (o ScriptObject) Handle() Handle { return o.h }

// Kind implements Object.
func (o ScriptObject) Kind() ObjectKind { return o.storage().kind }

// Value implements Object.
func (o ScriptObject) Value() Value { return FromHandle(o.h) }

// Heap implements Object.
func (o ScriptObject) Heap() *Heap { return o.heap }

func (ScriptObject) sealed() {}

// SameObject reports whether a and b alias one allocation.
func SameObject(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Heap() == b.Heap() && a.ID() == b.ID()
}
