package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/fortress-finder/pkg/fortress"
)

// ErrInvalid is returned for configuration values that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the finder configuration.
type Config struct {
	Seed    int64 `json:"seed" yaml:"seed"`
	CenterX int   `json:"center_x" yaml:"center_x"`
	CenterZ int   `json:"center_z" yaml:"center_z"`
	Radius  int   `json:"radius" yaml:"radius"`
	Workers int   `json:"workers" yaml:"workers"` // 0 = GOMAXPROCS

	// Analyze is a chunk "X,Z"; when set only that chunk is examined.
	Analyze string `json:"analyze,omitempty" yaml:"analyze,omitempty"`
	// SeedsFrom is a go-getter source listing seeds to search in batch.
	SeedsFrom string `json:"seeds_from,omitempty" yaml:"seeds_from,omitempty"`

	Report string `json:"report,omitempty" yaml:"report,omitempty"` // JSON report path
	Export string `json:"export,omitempty" yaml:"export,omitempty"` // JSONL.zst match export path
	Index  string `json:"index,omitempty" yaml:"index,omitempty"`   // SQLite index path

	Verbose bool `json:"verbose" yaml:"verbose"`

	Placement fortress.PlacementConfig `json:"placement" yaml:"placement"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Radius:    5000,
		Placement: fortress.DefaultPlacement(),
	}
}

// Load reads a YAML (.yaml, .yml) or JSON (.json) file on top of the
// defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, filepath.Ext(path))
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["center"] {
		cfg.CenterX = fromFile.CenterX
		cfg.CenterZ = fromFile.CenterZ
	}
	if !explicitFlags["radius"] {
		cfg.Radius = fromFile.Radius
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["analyze"] {
		cfg.Analyze = fromFile.Analyze
	}
	if !explicitFlags["seeds-from"] {
		cfg.SeedsFrom = fromFile.SeedsFrom
	}
	if !explicitFlags["report"] {
		cfg.Report = fromFile.Report
	}
	if !explicitFlags["export"] {
		cfg.Export = fromFile.Export
	}
	if !explicitFlags["index"] {
		cfg.Index = fromFile.Index
	}
	if !explicitFlags["v"] {
		cfg.Verbose = fromFile.Verbose
	}
	// Placement has no flags.
	cfg.Placement = fromFile.Placement
}

// Validate checks the values that would otherwise fail deep inside a search.
func (c *Config) Validate() error {
	if c.Radius < 0 {
		return fmt.Errorf("%w: radius %d is negative", ErrInvalid, c.Radius)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalid, c.Workers)
	}
	if c.Analyze != "" && c.SeedsFrom != "" {
		return fmt.Errorf("%w: analyze and seeds_from are mutually exclusive", ErrInvalid)
	}
	if c.Analyze != "" {
		if _, err := c.AnalyzeChunk(); err != nil {
			return err
		}
	}
	if err := c.Placement.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// AnalyzeChunk parses the Analyze field.
func (c *Config) AnalyzeChunk() (fortress.ChunkPos, error) {
	x, z, err := ParsePair(c.Analyze)
	if err != nil {
		return fortress.ChunkPos{}, fmt.Errorf("analyze chunk: %w", err)
	}
	return fortress.ChunkPos{X: x, Z: z}, nil
}

// ParsePair parses "X,Z" into two integers.
func ParsePair(s string) (x, z int, err error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q is not of the form X,Z", ErrInvalid, s)
	}
	if x, err = strconv.Atoi(strings.TrimSpace(a)); err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %w", ErrInvalid, s, err)
	}
	if z, err = strconv.Atoi(strings.TrimSpace(b)); err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %w", ErrInvalid, s, err)
	}
	return x, z, nil
}
