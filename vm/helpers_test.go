package vm

import "testing"

// testFrame is the frame type the fake interpreter understands.
type testFrame func(ctx *Context) (Value, error)

// fakeInterp runs testFrames and counts how many it ran.
type fakeInterp struct {
	ran int
}

func (fi *fakeInterp) RunFrame(ctx *Context, f Frame) (Value, error) {
	fi.ran++
	return f.(testFrame)(ctx)
}

// call records one callable invocation.
type call struct {
	receiver Value
	args     []Value
}

// recorder is a callable that records its calls and returns a fixed value
// immediately.
type recorder struct {
	calls  []call
	result Value
	err    error
}

func (r *recorder) Call(ctx *Context, receiver Value, args []Value) (*Deferred, error) {
	r.calls = append(r.calls, call{receiver: receiver, args: append([]Value(nil), args...)})
	if r.err != nil {
		return nil, r.err
	}
	return Immediate(r.result), nil
}

// newTestHeap returns a heap, an open mutation and a context using a fake
// interpreter. The mutation is released when the test ends.
func newTestHeap(t *testing.T) (*Heap, *Mutation, *Context) {
	t.Helper()
	heap := NewHeap(HeapOptions{ID: t.Name()})
	mc := heap.Mutate()
	t.Cleanup(mc.Release)
	return heap, mc, NewContext(&fakeInterp{}, mc)
}

// mustGet reads name from obj and resolves the result.
func mustGet(t *testing.T, ctx *Context, obj Object, name QName) Value {
	t.Helper()
	d, err := obj.GetProperty(ctx, name)
	if err != nil {
		t.Fatalf("GetProperty(%s): %v", name, err)
	}
	v, err := d.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve %s: %v", name, err)
	}
	return v
}

// mustSet writes name on obj and resolves the result.
func mustSet(t *testing.T, ctx *Context, obj Object, name QName, v Value) {
	t.Helper()
	d, err := obj.SetProperty(ctx, name, v)
	if err != nil {
		t.Fatalf("SetProperty(%s): %v", name, err)
	}
	if _, err := d.Resolve(ctx); err != nil {
		t.Fatalf("resolve set %s: %v", name, err)
	}
}
