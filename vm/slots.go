package vm

import "fmt"

// Slots holds an object's fixed-index fields.
//
// Slots use a hybrid layout optimized for common cases:
//   - 4 inline cells for objects with ≤4 slots (most objects)
//   - Overflow slice for the rest
//
// The length is fixed when the object is allocated, by whoever computed the
// class layout. Nothing on the access path grows or shrinks it.
type Slots struct {
	n      int
	inline [NumInlineSlots]Value

	// Only allocated when n > NumInlineSlots.
	overflow []Value
}

// NumInlineSlots is the number of slots stored directly in Slots.
const NumInlineSlots = 4

// NewSlots creates n slots initialized to Undefined.
func NewSlots(n int) Slots {
	if n < 0 {
		panic("vm: negative slot count")
	}
	s := Slots{n: n}
	for i := range s.inline {
		s.inline[i] = Undefined
	}
	if n > NumInlineSlots {
		s.overflow = make([]Value, n-NumInlineSlots)
		for i := range s.overflow {
			s.overflow[i] = Undefined
		}
	}
	return s
}

// SlotsOf creates slots holding a copy of values.
func SlotsOf(values []Value) Slots {
	s := NewSlots(len(values))
	for i, v := range values {
		*s.cell(i) = v
	}
	return s
}

// Len returns the slot count.
func (s *Slots) Len() int {
	return s.n
}

// Get returns the value at index.
func (s *Slots) Get(index uint32) (Value, error) {
	if uint64(index) >= uint64(s.n) {
		return Undefined, fmt.Errorf("%w: slot %d of %d", ErrOutOfBounds, index, s.n)
	}
	return *s.cell(int(index)), nil
}

// Set overwrites the value at index.
func (s *Slots) Set(index uint32, v Value) error {
	if uint64(index) >= uint64(s.n) {
		return fmt.Errorf("%w: slot %d of %d", ErrOutOfBounds, index, s.n)
	}
	*s.cell(int(index)) = v
	return nil
}

// ForEach calls fn for each slot in index order.
func (s *Slots) ForEach(fn func(index int, v Value)) {
	for i := 0; i < s.n; i++ {
		fn(i, *s.cell(i))
	}
}

// All returns a copy of the slot values.
func (s *Slots) All() []Value {
	out := make([]Value, s.n)
	s.ForEach(func(i int, v Value) { out[i] = v })
	return out
}

func (s *Slots) cell(i int) *Value {
	if i < NumInlineSlots {
		return &s.inline[i]
	}
	return &s.overflow[i-NumInlineSlots]
}
