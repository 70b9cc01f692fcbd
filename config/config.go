// Package config handles objcore.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chazu/objcore/vm"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "objcore.toml"

// Config represents an objcore.toml configuration.
type Config struct {
	Heap      Heap      `toml:"heap"`
	Collector Collector `toml:"collector"`
	Log       Log       `toml:"log"`
	Dump      Dump      `toml:"dump"`

	// Dir is the directory containing the objcore.toml file (set at load time).
	Dir string `toml:"-"`
}

// Heap configures the object heap.
type Heap struct {
	InitialCapacity int    `toml:"initial-capacity"`
	ID              string `toml:"id"`
}

// Collector configures background collection.
type Collector struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
}

// Log configures the logging backend.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Dump configures heap snapshot output.
type Dump struct {
	Format string `toml:"format"`
}

// Snapshot output formats.
const (
	FormatCBOR   = "cbor"
	FormatYAML   = "yaml"
	FormatSQLite = "sqlite"
)

// Default returns the configuration used when no objcore.toml exists.
func Default() *Config {
	c := &Config{Collector: Collector{Enabled: true}, Log: Log{Verbosity: 1}}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Heap.InitialCapacity <= 0 {
		c.Heap.InitialCapacity = vm.DefaultInitialCapacity
	}
	if c.Collector.Interval == "" {
		c.Collector.Interval = vm.DefaultCollectInterval.String()
	}
	if c.Dump.Format == "" {
		c.Dump.Format = FormatCBOR
	}
}

// Load parses an objcore.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	// Collection and logging are on unless the file says otherwise.
	c := Config{Collector: Collector{Enabled: true}, Log: Log{Verbosity: 1}}
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find an objcore.toml file, then
// loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) validate() error {
	if _, err := c.CollectorInterval(); err != nil {
		return err
	}
	switch c.Dump.Format {
	case FormatCBOR, FormatYAML, FormatSQLite:
	default:
		return fmt.Errorf("unknown dump format %q", c.Dump.Format)
	}
	return nil
}

// HeapOptions returns the options for vm.NewHeap.
func (c *Config) HeapOptions() vm.HeapOptions {
	return vm.HeapOptions{ID: c.Heap.ID, InitialCapacity: c.Heap.InitialCapacity}
}

// CollectorInterval parses the collection interval.
func (c *Config) CollectorInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Collector.Interval)
	if err != nil {
		return 0, fmt.Errorf("collector interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("collector interval must be positive, got %s", d)
	}
	return d, nil
}

// LogFile returns the configured log path, or nil for stderr.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}
	path := c.Log.File
	if !filepath.IsAbs(path) && c.Dir != "" {
		path = filepath.Join(c.Dir, path)
	}
	return &path
}
