package vm

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Heap: arena of object storage records
// ---------------------------------------------------------------------------

// HeapOptions configures a Heap.
type HeapOptions struct {
	// ID names the heap in logs and snapshots. A random UUID is used when
	// empty.
	ID string

	// InitialCapacity pre-sizes the record table.
	InitialCapacity int
}

// DefaultInitialCapacity is used when HeapOptions.InitialCapacity is zero.
const DefaultInitialCapacity = 256

type record struct {
	gen     uint16
	storage *Storage // nil while the record is on the free list
}

// Heap owns every object storage record and coordinates mutation with
// collection.
//
// Every mutation needs a Mutation obtained from Mutate; Collect refuses to
// run while one is held, so a trace never observes a record halfway through
// a change. Handles are only guaranteed valid while rooted or while the
// Mutation that produced them is held.
//
// Reads through a handle need no permit while the mutator's goroutine is the
// only one using the heap. Once a Collector runs in the background, a read
// made without a permit must happen inside View (Each and Inspector do this
// themselves), otherwise a sweep can reclaim the record mid-read.
//
// The heap assumes a single active mutator. Mutate is not reentrant: pass the
// Mutation down instead of acquiring a second one. View is not reentrant
// either.
type Heap struct {
	id string

	// mu is the mutation permit. Collect holds it for the whole trace.
	mu      sync.Mutex
	records []*record
	free    []uint32

	// sweepMu excludes permit-less readers from a running Collect.
	sweepMu sync.RWMutex

	strings *StringTable

	rootsMu sync.Mutex
	roots   map[Handle]int

	live        atomic.Int64
	allocs      atomic.Uint64
	collections atomic.Uint64
	lastStats   atomic.Pointer[CollectStats]

	log commonlog.Logger
}

// NewHeap creates an empty heap.
func NewHeap(opts HeapOptions) *Heap {
	capacity := opts.InitialCapacity
	if capacity <= 0 {
		capacity = DefaultInitialCapacity
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	h := &Heap{
		id:      id,
		records: make([]*record, 0, capacity),
		strings: NewStringTable(),
		roots:   make(map[Handle]int),
		log:     commonlog.GetLogger("objcore.heap"),
	}
	h.log.Debugf("heap %s created (capacity %d)", id, capacity)
	return h
}

// ID returns the heap's identifier.
func (h *Heap) ID() string {
	return h.id
}

// ---------------------------------------------------------------------------
// Mutation permit
// ---------------------------------------------------------------------------

// Mutation is the permit every mutating operation requires. Hold it for the
// duration of one interpreter step and release it on every exit path:
//
//	mc := heap.Mutate()
//	defer mc.Release()
type Mutation struct {
	heap     *Heap
	released atomic.Bool
}

// Mutate acquires the mutation permit, waiting for a running collection to
// finish.
func (h *Heap) Mutate() *Mutation {
	h.mu.Lock()
	return &Mutation{heap: h}
}

// Release gives the permit back. Calling it more than once is harmless.
func (m *Mutation) Release() {
	if m.released.CompareAndSwap(false, true) {
		m.heap.mu.Unlock()
	}
}

// Heap returns the heap this permit belongs to.
func (m *Mutation) Heap() *Heap {
	return m.heap
}

// check panics unless m is a live permit for h.
func (m *Mutation) check(h *Heap) {
	if m == nil {
		panic("vm: mutation without a permit")
	}
	if m.released.Load() {
		panic("vm: mutation with a released permit")
	}
	if m.heap != h {
		panic("vm: mutation permit belongs to a different heap")
	}
}

// ---------------------------------------------------------------------------
// Allocation and dereference
// ---------------------------------------------------------------------------

// Allocate stores s in a free record, or a new one, and returns its handle.
func (h *Heap) Allocate(mc *Mutation, s *Storage) Handle {
	mc.check(h)
	h.allocs.Add(1)
	h.live.Add(1)

	if n := len(h.free); n > 0 {
		idx := h.free[n-1]
		h.free = h.free[:n-1]
		r := h.records[idx]
		r.storage = s
		return Handle{index: idx, gen: r.gen}
	}

	idx := uint32(len(h.records))
	h.records = append(h.records, &record{gen: 1, storage: s})
	return Handle{index: idx, gen: 1}
}

// IsLive reports whether hd still names an allocated record.
func (h *Heap) IsLive(hd Handle) bool {
	if int(hd.index) >= len(h.records) {
		return false
	}
	r := h.records[hd.index]
	return r.gen == hd.gen && r.storage != nil
}

// storage dereferences hd.
// Panics if hd is stale; a stale handle means an unrooted handle outlived
// the mutation it was produced under.
func (h *Heap) storage(hd Handle) *Storage {
	if !h.IsLive(hd) {
		panic(fmt.Sprintf("vm: stale object handle %s", hd))
	}
	return h.records[hd.index].storage
}

// Object returns the object a handle names, as its concrete kind.
// Panics if hd is stale.
func (h *Heap) Object(hd Handle) Object {
	base := ScriptObject{heap: h, h: hd}
	switch h.storage(hd).kind {
	case FunctionKind:
		return FunctionObject{base}
	case NativeKind:
		return NativeObject{base}
	default:
		return base
	}
}

// ObjectFromValue returns the object v references, or nil if v is not an
// object.
func (h *Heap) ObjectFromValue(v Value) Object {
	if !v.IsObject() {
		return nil
	}
	return h.Object(v.Handle())
}

// View runs fn while no collection can run. Use it for reads made without
// a permit when a Collector may be running. fn must not call Mutate, View,
// Each, Collect or an Inspector method.
func (h *Heap) View(fn func()) {
	h.sweepMu.RLock()
	defer h.sweepMu.RUnlock()
	fn()
}

// Each calls fn for every live object until fn returns false. Collection is
// held off for the whole walk; fn must not call View, Each or Collect.
func (h *Heap) Each(fn func(Object) bool) {
	h.sweepMu.RLock()
	defer h.sweepMu.RUnlock()

	for i, r := range h.records {
		if r.storage == nil {
			continue
		}
		if !fn(h.Object(Handle{index: uint32(i), gen: r.gen})) {
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Strings
// ---------------------------------------------------------------------------

// String interns s and returns it as a Value.
func (h *Heap) String(s string) Value {
	return FromStringID(h.strings.Intern(s))
}

// StringOf returns the text of a string value.
func (h *Heap) StringOf(v Value) (string, bool) {
	if !v.IsString() {
		return "", false
	}
	return h.strings.Lookup(v.StringID())
}

// ---------------------------------------------------------------------------
// Roots
// ---------------------------------------------------------------------------

// AddRoot keeps obj alive across collections. Roots are counted; each
// AddRoot needs a matching RemoveRoot.
func (h *Heap) AddRoot(obj Object) {
	h.rootsMu.Lock()
	defer h.rootsMu.Unlock()
	h.roots[obj.Handle()]++
}

// RemoveRoot drops one root reference to obj.
func (h *Heap) RemoveRoot(obj Object) {
	h.rootsMu.Lock()
	defer h.rootsMu.Unlock()
	hd := obj.Handle()
	if n := h.roots[hd]; n > 1 {
		h.roots[hd] = n - 1
	} else {
		delete(h.roots, hd)
	}
}

// Roots returns the currently rooted handles.
func (h *Heap) Roots() []Handle {
	h.rootsMu.Lock()
	defer h.rootsMu.Unlock()
	out := make([]Handle, 0, len(h.roots))
	for hd := range h.roots {
		out = append(out, hd)
	}
	return out
}

// ---------------------------------------------------------------------------
// Collection
// ---------------------------------------------------------------------------

// CollectStats holds statistics from a single collection.
type CollectStats struct {
	Marked    int
	Swept     int
	Retired   int // swept records whose index will not be reused
	Live      int
	Duration  time.Duration
	Timestamp time.Time
}

// HeapStats is a point-in-time summary of the heap.
type HeapStats struct {
	ID          string
	Live        int
	Allocations uint64
	Collections uint64
	Last        *CollectStats
}

// Collect marks everything reachable from the registered roots and extra,
// then reclaims the rest. Cycles, including prototype cycles, are reclaimed
// like any other unreachable garbage.
//
// Collect returns ErrMutationInProgress instead of waiting when a Mutation
// is held, so it is safe to call from the mutator at a safe point as well as
// from a background scheduler. It waits for a running View or Each to
// finish.
//
// A record whose generation is exhausted is retired instead of returned to
// the free list.
func (h *Heap) Collect(extra ...Value) (*CollectStats, error) {
	if !h.mu.TryLock() {
		return nil, fmt.Errorf("%w: collection skipped on heap %s", ErrMutationInProgress, h.id)
	}
	defer h.mu.Unlock()
	h.sweepMu.Lock()
	defer h.sweepMu.Unlock()

	start := time.Now()
	marked := make([]bool, len(h.records))
	var stack []uint32

	visit := func(v Value) {
		if !v.IsObject() {
			return
		}
		hd := v.Handle()
		if !h.IsLive(hd) || marked[hd.index] {
			return
		}
		marked[hd.index] = true
		stack = append(stack, hd.index)
	}

	for _, hd := range h.Roots() {
		visit(FromHandle(hd))
	}
	for _, v := range extra {
		visit(v)
	}

	stats := &CollectStats{Timestamp: start}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stats.Marked++
		h.records[idx].storage.trace(visit)
	}

	for i, r := range h.records {
		if r.storage == nil || marked[i] {
			continue
		}
		r.storage = nil
		stats.Swept++
		if r.gen == math.MaxUint16 {
			// Out of generations: retire the index so no stale handle can
			// ever match it again.
			stats.Retired++
			continue
		}
		r.gen++
		h.free = append(h.free, uint32(i))
	}

	h.live.Add(-int64(stats.Swept))
	stats.Live = int(h.live.Load())
	stats.Duration = time.Since(start)

	h.collections.Add(1)
	h.lastStats.Store(stats)
	h.log.Infof("heap %s: marked %d, swept %d, live %d in %s",
		h.id, stats.Marked, stats.Swept, stats.Live, stats.Duration)

	return stats, nil
}

// Stats returns a summary of the heap.
func (h *Heap) Stats() HeapStats {
	return HeapStats{
		ID:          h.id,
		Live:        int(h.live.Load()),
		Allocations: h.allocs.Load(),
		Collections: h.collections.Load(),
		Last:        h.lastStats.Load(),
	}
}
