package vm

import "fmt"

// ---------------------------------------------------------------------------
// Property: one named entry in an object's registry
// ---------------------------------------------------------------------------

// PropertyKind identifies the variant a Property holds.
type PropertyKind uint8

const (
	// KindDynamic is a plain stored value.
	KindDynamic PropertyKind = iota
	// KindMethod is a callable installed by a method declaration.
	KindMethod
	// KindVirtual is a getter/setter pair, either half possibly absent.
	KindVirtual
)

func (k PropertyKind) String() string {
	switch k {
	case KindDynamic:
		return "dynamic"
	case KindMethod:
		return "method"
	case KindVirtual:
		return "virtual"
	default:
		return "?"
	}
}

// AccessorState is the install state of a virtual property.
//
//	Absent     --getter--> GetterOnly --setter--> Full
//	Absent     --setter--> SetterOnly --getter--> Full
//	Full       --either--> Full
//
// No transition removes a half that is already installed.
type AccessorState uint8

const (
	AccessorAbsent AccessorState = iota
	AccessorGetterOnly
	AccessorSetterOnly
	AccessorFull
)

func (s AccessorState) String() string {
	switch s {
	case AccessorAbsent:
		return "absent"
	case AccessorGetterOnly:
		return "getter-only"
	case AccessorSetterOnly:
		return "setter-only"
	case AccessorFull:
		return "full"
	default:
		return "?"
	}
}

// HasGetter reports whether the getter half is installed.
func (s AccessorState) HasGetter() bool {
	return s == AccessorGetterOnly || s == AccessorFull
}

// HasSetter reports whether the setter half is installed.
func (s AccessorState) HasSetter() bool {
	return s == AccessorSetterOnly || s == AccessorFull
}

type accessorHalf uint8

const (
	getterHalf accessorHalf = iota
	setterHalf
)

func (h accessorHalf) String() string {
	if h == getterHalf {
		return "getter"
	}
	return "setter"
}

// next is the transition function of the install state machine.
func (s AccessorState) next(h accessorHalf) AccessorState {
	switch h {
	case getterHalf:
		switch s {
		case AccessorAbsent:
			return AccessorGetterOnly
		case AccessorSetterOnly:
			return AccessorFull
		}
	case setterHalf:
		switch s {
		case AccessorAbsent:
			return AccessorSetterOnly
		case AccessorGetterOnly:
			return AccessorFull
		}
	}
	return s
}

// Property is the tagged variant stored under one name.
type Property struct {
	kind  PropertyKind
	value Value

	method Callable

	state  AccessorState
	getter Callable
	setter Callable
}

func newDynamicProperty(v Value) *Property {
	return &Property{kind: KindDynamic, value: v}
}

func newMethodProperty(fn Callable) *Property {
	return &Property{kind: KindMethod, value: Undefined, method: fn}
}

// newVirtualProperty returns an accessor entry with neither half installed.
func newVirtualProperty() *Property {
	return &Property{kind: KindVirtual, value: Undefined, state: AccessorAbsent}
}

// Kind returns the property variant.
func (p *Property) Kind() PropertyKind {
	return p.kind
}

// State returns the accessor install state. Non-virtual properties report
// AccessorAbsent.
func (p *Property) State() AccessorState {
	return p.state
}

// StoredValue returns the value of a dynamic property, or Undefined.
func (p *Property) StoredValue() Value {
	if p.kind != KindDynamic {
		return Undefined
	}
	return p.value
}

// Method returns the installed callable of a method property, or nil.
func (p *Property) Method() Callable {
	return p.method
}

// Getter returns the getter half, or nil.
func (p *Property) Getter() Callable {
	return p.getter
}

// Setter returns the setter half, or nil.
func (p *Property) Setter() Callable {
	return p.setter
}

// install attaches one accessor half, keeping the other.
func (p *Property) install(name QName, h accessorHalf, fn Callable) error {
	if fn == nil {
		panic(fmt.Sprintf("vm: nil %s for %s", h, name))
	}
	if p.kind != KindVirtual {
		return fmt.Errorf("%w: cannot install %s for %s over a %s property", ErrNotVirtual, h, name, p.kind)
	}
	if h == getterHalf {
		p.getter = fn
	} else {
		p.setter = fn
	}
	p.state = p.state.next(h)
	return nil
}

// get resolves the property against receiver.
func (p *Property) get(ctx *Context, name QName, receiver Object) (*Deferred, error) {
	switch p.kind {
	case KindDynamic:
		return Immediate(p.value), nil
	case KindMethod:
		// Reading a method allocates the bound function.
		ctx.Mutation.check(receiver.Heap())
		bound := BindMethod(ctx.Mutation, p.method, receiver.Value())
		return Immediate(bound.Value()), nil
	case KindVirtual:
		if !p.state.HasGetter() {
			return nil, fmt.Errorf("%w: %s has no getter", ErrMissingAccessor, name)
		}
		return p.getter.Call(ctx, receiver.Value(), nil)
	}
	panic("vm: unknown property kind")
}

// set writes value through the property. A method entry is replaced by a
// dynamic value in place.
func (p *Property) set(ctx *Context, name QName, receiver Object, value Value) (*Deferred, error) {
	switch p.kind {
	case KindDynamic:
		p.value = value
		return Immediate(Undefined), nil
	case KindMethod:
		*p = Property{kind: KindDynamic, value: value}
		return Immediate(Undefined), nil
	case KindVirtual:
		if !p.state.HasSetter() {
			return nil, fmt.Errorf("%w: %s has no setter", ErrMissingAccessor, name)
		}
		return p.setter.Call(ctx, receiver.Value(), []Value{value})
	}
	panic("vm: unknown property kind")
}

// trace reports every heap value the property keeps alive.
func (p *Property) trace(visit func(Value)) {
	switch p.kind {
	case KindDynamic:
		visit(p.value)
	case KindMethod:
		traceCallable(p.method, visit)
	case KindVirtual:
		traceCallable(p.getter, visit)
		traceCallable(p.setter, visit)
	}
}

func traceCallable(fn Callable, visit func(Value)) {
	if t, ok := fn.(Tracer); ok {
		t.Trace(visit)
	}
}
