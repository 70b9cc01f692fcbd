package vm

import (
	"errors"
	"testing"
)

type point struct{ x, y int64 }

func pointClass() *NativeClass {
	return &NativeClass{
		Name:      "Point",
		SlotCount: 2,
		New: func(ctx *Context, args []Value) (any, error) {
			if len(args) != 2 || !args[0].IsSmallInt() || !args[1].IsSmallInt() {
				return nil, errors.New("Point: expected two integers")
			}
			return &point{args[0].SmallInt(), args[1].SmallInt()}, nil
		},
	}
}

func TestNativeConstruct(t *testing.T) {
	_, mc, ctx := newTestHeap(t)
	cls := pointClass()
	proto := NewNativeObject(mc, cls, nil, nil)

	inst, err := proto.Construct(ctx, []Value{FromSmallInt(1), FromSmallInt(2)})
	if err != nil {
		t.Fatal(err)
	}
	n, ok := inst.(NativeObject)
	if !ok {
		t.Fatalf("Construct returned %T", inst)
	}
	if p, ok := n.GoValue().(*point); !ok || p.x != 1 || p.y != 2 {
		t.Errorf("GoValue() = %#v", n.GoValue())
	}
	if n.Class() != cls || !SameObject(n.Proto(), proto) {
		t.Error("instance should share the class and delegate to the constructor object")
	}
	if n.NumSlots() != 2 {
		t.Errorf("NumSlots() = %d, want 2", n.NumSlots())
	}
}

func TestNativeConstructErrorUnchanged(t *testing.T) {
	heap, mc, ctx := newTestHeap(t)
	boom := errors.New("boom")
	cls := &NativeClass{Name: "Broken", New: func(*Context, []Value) (any, error) { return nil, boom }}
	proto := NewNativeObject(mc, cls, nil, nil)
	before := heap.Stats().Allocations

	inst, err := proto.Construct(ctx, nil)
	if err != boom {
		t.Errorf("err = %v, want the constructor's own error", err)
	}
	if inst != nil {
		t.Error("failed construction returned an object")
	}
	if heap.Stats().Allocations != before {
		t.Error("failed construction allocated")
	}
}

func TestNativeBehavesLikeObject(t *testing.T) {
	_, mc, ctx := newTestHeap(t)
	n := NewNativeObject(mc, pointClass(), nil, &point{})
	mustSet(t, ctx, n, PublicName("tag"), True)
	if !n.HasProperty(PublicName("tag")) {
		t.Error("dynamic property missing")
	}
	if err := n.SetSlot(mc, 1, FromSmallInt(9)); err != nil {
		t.Fatal(err)
	}
	if v, _ := n.GetSlot(1); v != FromSmallInt(9) {
		t.Errorf("slot 1 = %s", v)
	}
	if _, err := n.GetSlot(2); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("slot 2: %v", err)
	}

	n.SetGoValue(mc, &point{x: 5})
	if p := n.GoValue().(*point); p.x != 5 {
		t.Errorf("SetGoValue did not replace the value")
	}
}

// tracedBox keeps one heap value alive.
type tracedBox struct{ v Value }

func (b *tracedBox) Trace(visit func(Value)) { visit(b.v) }

func TestNativeValueTraced(t *testing.T) {
	heap := NewHeap(HeapOptions{})
	var holder NativeObject
	var held ScriptObject
	withMutation(heap, func(mc *Mutation) {
		held = BareObject(mc)
		holder = NewNativeObject(mc, &NativeClass{Name: "Box"}, nil, &tracedBox{held.Value()})
	})
	heap.AddRoot(holder)

	if _, err := heap.Collect(); err != nil {
		t.Fatal(err)
	}
	if !heap.IsLive(held.Handle()) {
		t.Error("value reported by a traced native was reclaimed")
	}
}
