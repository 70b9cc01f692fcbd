package vm

// ObjectKind enumerates the closed set of object kinds sharing the Object
// contract.
type ObjectKind uint8

const (
	ScriptKind ObjectKind = iota
	FunctionKind
	NativeKind
)

func (k ObjectKind) String() string {
	switch k {
	case ScriptKind:
		return "script"
	case FunctionKind:
		return "function"
	case NativeKind:
		return "native"
	default:
		return "?"
	}
}

// Storage is the record a Handle addresses: the registry, the slots and the
// prototype link, plus the fields the function and native kinds need.
//
// The prototype link is a handle, not an owner. Whether the prototype stays
// alive is decided only by the collector's reachability pass.
type Storage struct {
	kind     ObjectKind
	props    *PropertyRegistry
	slots    Slots
	proto    Handle
	hasProto bool

	// FunctionKind
	callable Callable
	bound    Value
	hasBound bool

	// NativeKind
	native      any
	nativeClass *NativeClass
}

func newStorage(kind ObjectKind, proto Object, slots Slots) *Storage {
	s := &Storage{
		kind:  kind,
		props: NewPropertyRegistry(),
		slots: slots,
		bound: Undefined,
	}
	if proto != nil {
		s.proto = proto.Handle()
		s.hasProto = true
	}
	return s
}

// trace reports every heap value this record references.
func (s *Storage) trace(visit func(Value)) {
	if s.hasProto {
		visit(FromHandle(s.proto))
	}
	s.slots.ForEach(func(_ int, v Value) { visit(v) })
	s.props.trace(visit)
	if s.callable != nil {
		traceCallable(s.callable, visit)
	}
	if s.hasBound {
		visit(s.bound)
	}
	if t, ok := s.native.(Tracer); ok {
		t.Trace(visit)
	}
}
