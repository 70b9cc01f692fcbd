package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/objcore/config"
	"github.com/chazu/objcore/vm/heapdump"
)

func TestSampleSnapshot(t *testing.T) {
	snap, err := sampleSnapshot(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	sum := snap.Summary()
	// The unreachable object is collected before the snapshot.
	if sum.Objects != 8 {
		t.Errorf("objects = %d, want 8", sum.Objects)
	}
	if sum.ByKind["native"] != 2 || sum.ByKind["function"] != 2 {
		t.Errorf("by kind = %v", sum.ByKind)
	}
	if sum.Roots != 1 {
		t.Errorf("roots = %d", sum.Roots)
	}
}

func TestSampleSnapshotWithoutCollection(t *testing.T) {
	cfg := config.Default()
	cfg.Collector.Enabled = false
	snap, err := sampleSnapshot(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(snap.Objects); n != 9 {
		t.Errorf("objects = %d, want 9", n)
	}
}

func TestWriteSnapshotFormats(t *testing.T) {
	snap, err := sampleSnapshot(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	for _, format := range []string{config.FormatCBOR, config.FormatYAML, config.FormatSQLite} {
		cfg := config.Default()
		cfg.Dump.Format = format
		path := filepath.Join(dir, "snap."+format)
		if err := writeSnapshot(cfg, snap, path); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			t.Errorf("%s: nothing written", format)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "snap.cbor"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := heapdump.UnmarshalSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != snap.ID {
		t.Errorf("decoded ID = %s, want %s", got.ID, snap.ID)
	}
}
