package vm

import "fmt"

// Handle addresses one storage record in a Heap arena.
//
// The generation is bumped every time a record is reclaimed, so a handle
// that outlived its allocation no longer matches the record it points at.
// Generations never wrap: a record that runs out of them is retired.
// Handles are comparable; two handles are equal exactly when they name the
// same allocation.
type Handle struct {
	index uint32
	gen   uint16
}

// Index returns the arena index of the record.
func (h Handle) Index() uint32 {
	return h.index
}

// Generation returns the record generation this handle was issued for.
func (h Handle) Generation() uint16 {
	return h.gen
}

// ID returns the opaque identity token for the allocation.
func (h Handle) ID() ObjectID {
	return ObjectID(h.bits())
}

func (h Handle) String() string {
	return fmt.Sprintf("%d.%d", h.index, h.gen)
}

// bits packs the handle into the 48-bit Value payload.
func (h Handle) bits() uint64 {
	return uint64(h.index)<<16 | uint64(h.gen)
}

func handleFromBits(b uint64) Handle {
	return Handle{index: uint32(b >> 16), gen: uint16(b)}
}

// ObjectID is an identity token for an allocation. It is usable as a map
// key for identity-based tables and carries no information about content.
type ObjectID uint64

func (id ObjectID) String() string {
	return handleFromBits(uint64(id)).String()
}
