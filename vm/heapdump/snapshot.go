// Package heapdump takes diagnostic snapshots of a vm.Heap and writes them as
// CBOR, YAML or SQLite.
//
// A snapshot is a flat description of the object graph: every live object
// with its prototype, slots and own properties. Snapshots are for looking at,
// not for restoring; nothing here loads one back into a heap.
package heapdump

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/objcore/vm"
)

// Snapshot is a point-in-time description of a heap.
type Snapshot struct {
	ID      string         `cbor:"id" yaml:"id"`
	HeapID  string         `cbor:"heap_id" yaml:"heap_id"`
	TakenAt int64          `cbor:"taken_at" yaml:"taken_at"` // unix nanoseconds
	Roots   []uint64       `cbor:"roots" yaml:"roots"`
	Objects []ObjectRecord `cbor:"objects" yaml:"objects"`
}

// ObjectRecord describes one live object. IDs are vm.ObjectID values; zero
// means none.
type ObjectRecord struct {
	ID         uint64           `cbor:"id" yaml:"id"`
	Kind       string           `cbor:"kind" yaml:"kind"`
	Proto      uint64           `cbor:"proto,omitempty" yaml:"proto,omitempty"`
	Class      string           `cbor:"class,omitempty" yaml:"class,omitempty"`
	Slots      []ValueRecord    `cbor:"slots,omitempty" yaml:"slots,omitempty"`
	Properties []PropertyRecord `cbor:"properties,omitempty" yaml:"properties,omitempty"`
}

// PropertyRecord describes one own property.
type PropertyRecord struct {
	NSKind    string       `cbor:"ns_kind" yaml:"ns_kind"`
	Namespace string       `cbor:"ns,omitempty" yaml:"ns,omitempty"`
	Name      string       `cbor:"name" yaml:"name"`
	Kind      string       `cbor:"kind" yaml:"kind"`
	State     string       `cbor:"state,omitempty" yaml:"state,omitempty"`
	Value     *ValueRecord `cbor:"value,omitempty" yaml:"value,omitempty"`
}

// ValueRecord describes a value. Ref is set for objects.
type ValueRecord struct {
	Type string `cbor:"type" yaml:"type"`
	Text string `cbor:"text,omitempty" yaml:"text,omitempty"`
	Ref  uint64 `cbor:"ref,omitempty" yaml:"ref,omitempty"`
}

// Time returns when the snapshot was taken.
func (s *Snapshot) Time() time.Time {
	return time.Unix(0, s.TakenAt)
}

// Take records every live object on heap. The heap's registered roots are
// recorded as roots, together with roots.
//
// Take needs no permit and holds collection off while it walks the heap, so
// it is safe with a background vm.Collector running. Call it from the
// mutator's goroutine, outside any vm.Heap.View.
func Take(heap *vm.Heap, roots []vm.Object) *Snapshot {
	snap := &Snapshot{
		ID:      uuid.NewString(),
		HeapID:  heap.ID(),
		TakenAt: time.Now().UnixNano(),
	}

	rootSet := map[uint64]bool{}
	for _, hd := range heap.Roots() {
		rootSet[uint64(hd.ID())] = true
	}
	for _, obj := range roots {
		rootSet[uint64(obj.ID())] = true
	}
	for id := range rootSet {
		snap.Roots = append(snap.Roots, id)
	}
	sort.Slice(snap.Roots, func(i, j int) bool { return snap.Roots[i] < snap.Roots[j] })

	heap.Each(func(obj vm.Object) bool {
		snap.Objects = append(snap.Objects, recordObject(heap, obj))
		return true
	})
	return snap
}

func recordObject(heap *vm.Heap, obj vm.Object) ObjectRecord {
	rec := ObjectRecord{
		ID:   uint64(obj.ID()),
		Kind: obj.Kind().String(),
	}
	if p := obj.Proto(); p != nil {
		rec.Proto = uint64(p.ID())
	}
	if n, ok := obj.(vm.NativeObject); ok {
		rec.Class = n.Class().Name
	}

	for i := 0; i < obj.NumSlots(); i++ {
		v, err := obj.GetSlot(uint32(i))
		if err != nil {
			break
		}
		rec.Slots = append(rec.Slots, recordValue(heap, v))
	}

	reg := obj.Registry()
	for _, name := range reg.Names() {
		p, _ := reg.Lookup(name)
		pr := PropertyRecord{
			NSKind:    name.NS.Kind.String(),
			Namespace: name.NS.URI,
			Name:      name.Local,
			Kind:      p.Kind().String(),
		}
		switch p.Kind() {
		case vm.KindDynamic:
			v := recordValue(heap, p.StoredValue())
			pr.Value = &v
		case vm.KindMethod:
			if f, ok := p.Method().(vm.FunctionObject); ok {
				v := recordValue(heap, f.Value())
				pr.Value = &v
			}
		case vm.KindVirtual:
			pr.State = p.State().String()
		}
		rec.Properties = append(rec.Properties, pr)
	}
	return rec
}

func recordValue(heap *vm.Heap, v vm.Value) ValueRecord {
	rec := ValueRecord{Type: v.TypeName()}
	switch {
	case v.IsObject():
		rec.Ref = uint64(v.Handle().ID())
	case v.IsString():
		if s, ok := heap.StringOf(v); ok {
			rec.Text = s
		}
	default:
		rec.Text = v.String()
	}
	return rec
}

// Summary counts what a snapshot holds.
type Summary struct {
	SnapshotID string
	HeapID     string
	Objects    int
	ByKind     map[string]int
	Properties int
	Slots      int
	Roots      int
}

// Summary computes the snapshot's summary.
func (s *Snapshot) Summary() *Summary {
	sum := &Summary{
		SnapshotID: s.ID,
		HeapID:     s.HeapID,
		Objects:    len(s.Objects),
		ByKind:     map[string]int{},
		Roots:      len(s.Roots),
	}
	for _, o := range s.Objects {
		sum.ByKind[o.Kind]++
		sum.Properties += len(o.Properties)
		sum.Slots += len(o.Slots)
	}
	return sum
}

// Object returns the record with the given ID.
func (s *Snapshot) Object(id uint64) (*ObjectRecord, bool) {
	for i := range s.Objects {
		if s.Objects[i].ID == id {
			return &s.Objects[i], true
		}
	}
	return nil, false
}
