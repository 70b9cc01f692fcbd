// objdump inspects and converts heap snapshots.
//
// With -in it reads a CBOR snapshot; otherwise it builds a small sample heap
// from the objcore.toml found by -config, collects it, and snapshots it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/objcore/config"
	"github.com/chazu/objcore/vm/heapdump"
)

func main() {
	in := flag.String("in", "", "CBOR snapshot to read (default: snapshot a sample heap)")
	out := flag.String("out", "", "Write the snapshot to this file in the configured dump format")
	asYAML := flag.Bool("yaml", false, "Print the snapshot as YAML")
	sqlitePath := flag.String("sqlite", "", "Export the snapshot to this SQLite database")
	configDir := flag.String("config", ".", "Directory to search for objcore.toml")
	verbose := flag.Int("v", -1, "Log verbosity (overrides objcore.toml)")
	flag.Parse()

	cfg, err := config.FindAndLoad(*configDir)
	if err != nil {
		fatalf("Error loading config: %v", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	verbosity := cfg.Log.Verbosity
	if *verbose >= 0 {
		verbosity = *verbose
	}
	commonlog.Configure(verbosity, cfg.LogFile())
	log := commonlog.GetLogger("objcore.objdump")

	var snap *heapdump.Snapshot
	if *in != "" {
		data, err := os.ReadFile(*in)
		if err != nil {
			fatalf("Error reading %s: %v", *in, err)
		}
		if snap, err = heapdump.UnmarshalSnapshot(data); err != nil {
			fatalf("Error decoding %s: %v", *in, err)
		}
		log.Infof("read snapshot %s from %s", snap.ID, *in)
	} else {
		if snap, err = sampleSnapshot(cfg); err != nil {
			fatalf("Error building sample heap: %v", err)
		}
	}

	printSummary(snap.Summary())

	if *asYAML {
		data, err := heapdump.MarshalYAML(snap)
		if err != nil {
			fatalf("Error rendering YAML: %v", err)
		}
		os.Stdout.Write(data)
	}

	if *out != "" {
		if err := writeSnapshot(cfg, snap, *out); err != nil {
			fatalf("Error writing %s: %v", *out, err)
		}
		fmt.Printf("Wrote %s (%s)\n", *out, cfg.Dump.Format)
	}

	if *sqlitePath != "" {
		if err := writeSQLite(snap, *sqlitePath); err != nil {
			fatalf("Error exporting to %s: %v", *sqlitePath, err)
		}
		fmt.Printf("Exported to %s\n", *sqlitePath)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// writeSnapshot writes snap to path in the configured format.
func writeSnapshot(cfg *config.Config, snap *heapdump.Snapshot, path string) error {
	switch cfg.Dump.Format {
	case config.FormatSQLite:
		return writeSQLite(snap, path)
	case config.FormatYAML:
		data, err := heapdump.MarshalYAML(snap)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	default:
		data, err := heapdump.MarshalSnapshot(snap)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	}
}

func writeSQLite(snap *heapdump.Snapshot, path string) error {
	db, err := heapdump.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return heapdump.WriteSQLite(context.Background(), db, snap)
}

// ---------------------------------------------------------------------------
// Summary output
// ---------------------------------------------------------------------------

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func header(s string) string {
	if isTerminal() && os.Getenv("TERM") != "dumb" {
		return "\x1b[1m" + s + "\x1b[0m"
	}
	return s
}

func printSummary(sum *heapdump.Summary) {
	fmt.Println(header("Snapshot " + sum.SnapshotID))
	fmt.Printf("  heap:       %s\n", sum.HeapID)
	fmt.Printf("  objects:    %d\n", sum.Objects)
	fmt.Printf("  roots:      %d\n", sum.Roots)
	fmt.Printf("  properties: %d\n", sum.Properties)
	fmt.Printf("  slots:      %d\n", sum.Slots)

	kinds := make([]string, 0, len(sum.ByKind))
	for k := range sum.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	fmt.Println(header("Objects by kind"))
	for _, k := range kinds {
		fmt.Printf("  %-10s %d\n", k, sum.ByKind[k])
	}
}
