package main

import (
	"fmt"

	"github.com/chazu/objcore/config"
	"github.com/chazu/objcore/vm"
	"github.com/chazu/objcore/vm/heapdump"
)

// counter is the Go value behind the sample native class.
type counter struct{ n int64 }

var counterClass = &vm.NativeClass{
	Name:      "Counter",
	SlotCount: 1,
	New: func(ctx *vm.Context, args []vm.Value) (any, error) {
		c := &counter{}
		if len(args) > 0 {
			if !args[0].IsSmallInt() {
				return nil, fmt.Errorf("Counter: expected an integer, got %s", args[0].TypeName())
			}
			c.n = args[0].SmallInt()
		}
		return c, nil
	},
}

// buildSample populates heap with a small object graph and returns its root.
// It also leaves one unreachable object behind for the collector.
func buildSample(heap *vm.Heap) (vm.Object, error) {
	mc := heap.Mutate()
	defer mc.Release()
	ctx := vm.NewContext(nil, mc)

	objectProto := vm.BareObject(mc)
	toString := vm.NativeFunc(func(ctx *vm.Context, receiver vm.Value, _ []vm.Value) (vm.Value, error) {
		return ctx.Heap().String(receiver.String()), nil
	})
	objectProto.InstallMethod(mc, vm.PublicName("toString"), vm.NewFunction(mc, toString, nil))

	point := vm.NewFunction(mc, nil, objectProto)
	pointProto := vm.NewObject(mc, objectProto)
	if err := point.InstallDynamicProperty(mc, vm.PrototypeName, pointProto.Value()); err != nil {
		return nil, err
	}
	if err := pointProto.InstallDynamicProperty(mc, vm.PublicName("constructor"), point.Value()); err != nil {
		return nil, err
	}

	inst, err := point.Construct(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := inst.SetProperty(ctx, vm.PublicName("x"), vm.FromSmallInt(3)); err != nil {
		return nil, err
	}
	if _, err := inst.SetProperty(ctx, vm.PublicName("label"), heap.String("origin")); err != nil {
		return nil, err
	}
	length := vm.NativeFunc(func(*vm.Context, vm.Value, []vm.Value) (vm.Value, error) {
		return vm.FromSmallInt(5), nil
	})
	if err := inst.InstallGetter(mc, vm.PublicName("length"), length); err != nil {
		return nil, err
	}

	counters := vm.NewNativeObject(mc, counterClass, objectProto, nil)
	c, err := counters.Construct(ctx, []vm.Value{vm.FromSmallInt(7)})
	if err != nil {
		return nil, err
	}
	if err := c.SetSlot(mc, 0, inst.Value()); err != nil {
		return nil, err
	}

	root := vm.NewObjectWithSlots(mc, objectProto, []vm.Value{inst.Value(), c.Value()})
	vm.BareObject(mc) // garbage
	return root, nil
}

// sampleSnapshot builds the sample heap described by cfg, collects it and
// snapshots what survives.
func sampleSnapshot(cfg *config.Config) (*heapdump.Snapshot, error) {
	heap := vm.NewHeap(cfg.HeapOptions())
	root, err := buildSample(heap)
	if err != nil {
		return nil, err
	}
	heap.AddRoot(root)
	defer heap.RemoveRoot(root)

	if cfg.Collector.Enabled {
		interval, err := cfg.CollectorInterval()
		if err != nil {
			return nil, err
		}
		collector := vm.NewCollector(heap, interval, nil)
		if _, err := collector.CollectNow(); err != nil {
			return nil, err
		}
	}
	return heapdump.Take(heap, nil), nil
}
