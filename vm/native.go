package vm

// ---------------------------------------------------------------------------
// NativeObject: script-visible wrapper around a Go value
// ---------------------------------------------------------------------------

// NativeClass describes a family of native objects. New validates the
// constructor arguments and builds the wrapped Go value; its error is
// returned from Construct unchanged.
type NativeClass struct {
	Name      string
	SlotCount int
	New       func(ctx *Context, args []Value) (any, error)
}

// NativeObject wraps a Go value. Properties, slots and the prototype link
// behave exactly as for ScriptObject. If the wrapped value implements
// Tracer, the heap values it reports stay alive.
type NativeObject struct {
	ScriptObject
}

// NewNativeObject allocates a native object of class cls wrapping value.
func NewNativeObject(mc *Mutation, cls *NativeClass, proto Object, value any) NativeObject {
	if cls == nil {
		panic("vm: native object without a class")
	}
	checkProto(mc, proto)
	s := newStorage(NativeKind, proto, NewSlots(cls.SlotCount))
	s.native = value
	s.nativeClass = cls
	h := mc.Heap().Allocate(mc, s)
	return NativeObject{ScriptObject{heap: mc.Heap(), h: h}}
}

// Class returns the native class.
func (n NativeObject) Class() *NativeClass {
	return n.storage().nativeClass
}

// GoValue returns the wrapped Go value.
func (n NativeObject) GoValue() any {
	return n.storage().native
}

// SetGoValue replaces the wrapped Go value.
func (n NativeObject) SetGoValue(mc *Mutation, value any) {
	mc.check(n.heap)
	n.storage().native = value
}

// Construct runs the class constructor and wraps its result in a new native
// object delegating to n.
func (n NativeObject) Construct(ctx *Context, args []Value) (Object, error) {
	cls := n.Class()
	var value any
	if cls.New != nil {
		v, err := cls.New(ctx, args)
		if err != nil {
			return nil, err
		}
		value = v
	}
	return NewNativeObject(ctx.Mutation, cls, n, value), nil
}
