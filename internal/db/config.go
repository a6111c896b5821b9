package db

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"citrine/internal/memtable"
	"citrine/internal/props"
)

// ErrUnknownCollector reports a collector name in the config that has
// no built-in implementation.
var ErrUnknownCollector = errors.New("db: unknown collector")

// ErrUnknownMemtable reports an unrecognized memtable kind.
var ErrUnknownMemtable = errors.New("db: unknown memtable kind")

// Config is the YAML shape of the engine configuration. Zero values
// fall back to DefaultOptions.
type Config struct {
	FlushThreshold     int    `yaml:"flush_threshold"`
	BlockCacheCapacity *int   `yaml:"block_cache_capacity"`
	Memtable           string `yaml:"memtable"`

	// Collectors names the built-in property collectors to run on
	// every flush.
	Collectors []CollectorConfig `yaml:"collectors"`
}

// CollectorConfig selects one built-in collector. Threshold and
// MinEntries only apply to delete-ratio.
type CollectorConfig struct {
	Name       string  `yaml:"name"`
	Threshold  float64 `yaml:"threshold"`
	MinEntries uint64  `yaml:"min_entries"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Options translates the config into functional options for Open.
func (c *Config) Options() ([]Option, error) {
	var opts []Option

	if c.FlushThreshold > 0 {
		opts = append(opts, WithFlushThreshold(c.FlushThreshold))
	}
	if c.BlockCacheCapacity != nil {
		opts = append(opts, WithBlockCacheCapacity(*c.BlockCacheCapacity))
	}

	switch c.Memtable {
	case "", "skip":
		// default
	case "map":
		opts = append(opts, WithMemtable(memtable.NewMapMemtable))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMemtable, c.Memtable)
	}

	for _, cc := range c.Collectors {
		switch cc.Name {
		case "entry-stats":
			opts = append(opts, WithPropertyCollectors(props.EntryStatsFactory))
		case "delete-ratio":
			opts = append(opts, WithPropertyCollectors(props.DeleteRatioFactory(cc.Threshold, cc.MinEntries)))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownCollector, cc.Name)
		}
	}
	return opts, nil
}
