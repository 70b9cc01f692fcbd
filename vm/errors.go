package vm

import "errors"

// Errors returned by object operations. Returned errors wrap one of these
// with a message naming the object and key involved; test with errors.Is.
//
// Errors raised by accessor or method code are returned unchanged and are
// never wrapped.
var (
	// ErrOutOfBounds reports a slot index at or past the slot count. It
	// signals a layout or verification bug upstream, not a dynamic condition.
	ErrOutOfBounds = errors.New("slot index out of bounds")

	// ErrMissingAccessor reports a read of a setter-only property or a
	// write to a getter-only property.
	ErrMissingAccessor = errors.New("missing accessor")

	// ErrNotVirtual reports an accessor install over a stored value or
	// method.
	ErrNotVirtual = errors.New("not a virtual property")

	// ErrNotCallable reports a call through a function object that has no
	// callable attached.
	ErrNotCallable = errors.New("not callable")

	// ErrMutationInProgress reports a collection attempt while a mutation
	// permit is held.
	ErrMutationInProgress = errors.New("mutation in progress")

	// ErrResolving reports a Resolve call made by the frame the Deferred
	// is already running.
	ErrResolving = errors.New("result is already being resolved")
)
