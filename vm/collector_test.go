package vm

import (
	"errors"
	"testing"
	"time"
)

func TestCollectorCollectNow(t *testing.T) {
	heap := NewHeap(HeapOptions{})
	var kept, dropped ScriptObject
	withMutation(heap, func(mc *Mutation) {
		kept = BareObject(mc)
		dropped = BareObject(mc)
	})

	c := NewCollector(heap, time.Hour, func() []Value { return []Value{kept.Value()} })
	stats, err := c.CollectNow()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Swept != 1 {
		t.Errorf("swept %d, want 1", stats.Swept)
	}
	if !heap.IsLive(kept.Handle()) || heap.IsLive(dropped.Handle()) {
		t.Error("RootFunc values were not used as roots")
	}
	if c.SweepCount() != 1 {
		t.Errorf("SweepCount() = %d", c.SweepCount())
	}
	if c.LastStats() != stats {
		t.Error("LastStats() should return the latest collection")
	}
}

func TestCollectorSkipsDuringMutation(t *testing.T) {
	heap := NewHeap(HeapOptions{})
	c := NewCollector(heap, time.Hour, nil)

	mc := heap.Mutate()
	_, err := c.CollectNow()
	mc.Release()

	if !errors.Is(err, ErrMutationInProgress) {
		t.Errorf("err = %v, want ErrMutationInProgress", err)
	}
	if c.Skipped() != 1 || c.SweepCount() != 0 {
		t.Errorf("Skipped() = %d, SweepCount() = %d", c.Skipped(), c.SweepCount())
	}
}

func TestCollectorDefaults(t *testing.T) {
	c := NewCollector(NewHeap(HeapOptions{}), 0, nil)
	if c.Interval() != DefaultCollectInterval {
		t.Errorf("Interval() = %s", c.Interval())
	}
	if !c.IsEnabled() {
		t.Error("collector should start enabled")
	}
	c.SetEnabled(false)
	if c.IsEnabled() {
		t.Error("SetEnabled(false) had no effect")
	}
}

func TestCollectorStartStop(t *testing.T) {
	heap := NewHeap(HeapOptions{})
	withMutation(heap, func(mc *Mutation) { BareObject(mc) })

	c := NewCollector(heap, 5*time.Millisecond, nil)
	c.Start()
	c.Start() // second start is a no-op

	deadline := time.Now().Add(2 * time.Second)
	for c.SweepCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()
	c.Stop()

	if c.SweepCount() == 0 {
		t.Fatal("background collector never ran")
	}
	if heap.Stats().Live != 0 {
		t.Errorf("Live = %d after background collection", heap.Stats().Live)
	}
}

func TestCollectorStopWithoutStart(t *testing.T) {
	c := NewCollector(NewHeap(HeapOptions{}), time.Hour, nil)
	c.Stop()
}
