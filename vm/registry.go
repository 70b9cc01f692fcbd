package vm

import "sort"

// PropertyRegistry maps qualified names to properties for one object.
// Keys are unique; installing an existing key replaces its property, except
// for accessor halves, which merge into the existing virtual entry.
type PropertyRegistry struct {
	props map[QName]*Property
}

// NewPropertyRegistry creates an empty registry.
func NewPropertyRegistry() *PropertyRegistry {
	return &PropertyRegistry{props: make(map[QName]*Property)}
}

// Lookup returns the property stored under name.
func (r *PropertyRegistry) Lookup(name QName) (*Property, bool) {
	p, ok := r.props[name]
	return p, ok
}

// Has reports whether name has an entry.
func (r *PropertyRegistry) Has(name QName) bool {
	_, ok := r.props[name]
	return ok
}

// Len returns the number of entries.
func (r *PropertyRegistry) Len() int {
	return len(r.props)
}

// InstallDynamic inserts or replaces name with a stored value.
func (r *PropertyRegistry) InstallDynamic(name QName, v Value) {
	r.props[name] = newDynamicProperty(v)
}

// InstallMethod inserts or replaces name with a method.
func (r *PropertyRegistry) InstallMethod(name QName, fn Callable) {
	r.props[name] = newMethodProperty(fn)
}

// InstallGetter attaches a getter to name. An absent name first gets an
// empty virtual entry; an existing setter is kept.
func (r *PropertyRegistry) InstallGetter(name QName, fn Callable) error {
	return r.virtual(name).install(name, getterHalf, fn)
}

// InstallSetter attaches a setter to name. An absent name first gets an
// empty virtual entry; an existing getter is kept.
func (r *PropertyRegistry) InstallSetter(name QName, fn Callable) error {
	return r.virtual(name).install(name, setterHalf, fn)
}

func (r *PropertyRegistry) virtual(name QName) *Property {
	p, ok := r.props[name]
	if !ok {
		p = newVirtualProperty()
		r.props[name] = p
	}
	return p
}

// Names returns the registered names in a stable order. The order is for
// inspection output only.
func (r *PropertyRegistry) Names() []QName {
	names := make([]QName, 0, len(r.props))
	for n := range r.props {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if a.NS.Kind != b.NS.Kind {
			return a.NS.Kind < b.NS.Kind
		}
		if a.NS.URI != b.NS.URI {
			return a.NS.URI < b.NS.URI
		}
		return a.Local < b.Local
	})
	return names
}

func (r *PropertyRegistry) trace(visit func(Value)) {
	for _, p := range r.props {
		p.trace(visit)
	}
}
