// Package config handles loading and validation of the locations config.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benjoevidal/photosort/internal/geo"

	"gopkg.in/yaml.v3"
)

// Uncategorized behavior values for photos that match no configured region.
const (
	BehaviorFolder       = "folder"
	BehaviorLeaveInPlace = "leave_in_place"
)

// DefaultMatchRadiusKM is used for point regions that do not set their own.
const DefaultMatchRadiusKM = 0.5

// Bounds is a rectangular bounding box (inclusive on all edges).
type Bounds struct {
	MinLat float64 `yaml:"min_lat" json:"min_lat"`
	MaxLat float64 `yaml:"max_lat" json:"max_lat"`
	MinLon float64 `yaml:"min_lon" json:"min_lon"`
	MaxLon float64 `yaml:"max_lon" json:"max_lon"`
}

// Centroid returns the center of the box, used for nearest-region tie-breaks.
func (b Bounds) Centroid() geo.Point {
	return geo.Point{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// Contains reports whether p falls inside the box.
func (b Bounds) Contains(p geo.Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Region is a user-declared named area: either a center point with a match
// radius or a bounding box. Exactly one shape must be set; "point" is a
// legacy alias for "center".
type Region struct {
	Name     string     `yaml:"name" json:"name"`
	Center   *geo.Point `yaml:"center,omitempty" json:"center,omitempty"`
	Point    *geo.Point `yaml:"point,omitempty" json:"point,omitempty"`
	Bounds   *Bounds    `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	RadiusKM float64    `yaml:"radius_km,omitempty" json:"radius_km,omitempty"`
}

// Config is the runtime configuration for the sorter. Read-only after Load.
type Config struct {
	Locations             []Region `yaml:"locations" json:"locations"`
	BaseOutput            string   `yaml:"base_output,omitempty" json:"base_output,omitempty"`
	UncategorizedBehavior string   `yaml:"uncategorized_behavior,omitempty" json:"uncategorized_behavior,omitempty"`
	UncategorizedName     string   `yaml:"uncategorized_folder_name,omitempty" json:"uncategorized_folder_name,omitempty"`
	MatchRadiusKM         float64  `yaml:"match_radius_km,omitempty" json:"match_radius_km,omitempty"`
}

// Default returns the configuration used when no config file is given:
// no regions, so the sorter runs in auto (clustering) mode.
func Default() *Config {
	return &Config{
		UncategorizedBehavior: BehaviorFolder,
		UncategorizedName:     "Uncategorized",
		MatchRadiusKM:         DefaultMatchRadiusKM,
	}
}

// Load reads and parses a JSON or YAML configuration file, selected by file
// extension, and validates it. Validation failures are fatal: a malformed
// region must surface before any photo is processed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q, use .json or .yaml", filepath.Ext(path))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.UncategorizedBehavior == "" {
		c.UncategorizedBehavior = BehaviorFolder
	}
	if c.UncategorizedBehavior != BehaviorFolder && c.UncategorizedBehavior != BehaviorLeaveInPlace {
		return fmt.Errorf("uncategorized_behavior must be %q or %q, got %q",
			BehaviorFolder, BehaviorLeaveInPlace, c.UncategorizedBehavior)
	}
	if c.UncategorizedName == "" {
		c.UncategorizedName = "Uncategorized"
	}
	if c.MatchRadiusKM <= 0 {
		c.MatchRadiusKM = DefaultMatchRadiusKM
	}

	for i := range c.Locations {
		if err := c.Locations[i].validate(); err != nil {
			return fmt.Errorf("location %d: %w", i, err)
		}
	}
	return nil
}

func (r *Region) validate() error {
	if r.Name == "" {
		return fmt.Errorf("missing name")
	}

	// Fold the legacy "point" alias into center.
	if r.Point != nil {
		if r.Center != nil {
			return fmt.Errorf("%q: center and point are mutually exclusive", r.Name)
		}
		r.Center = r.Point
		r.Point = nil
	}

	switch {
	case r.Center != nil && r.Bounds != nil:
		return fmt.Errorf("%q: center and bounds are mutually exclusive", r.Name)
	case r.Center != nil:
		if !r.Center.Valid() {
			return fmt.Errorf("%q: center out of range: %+v", r.Name, *r.Center)
		}
		if r.RadiusKM < 0 {
			return fmt.Errorf("%q: radius_km must be positive, got %g", r.Name, r.RadiusKM)
		}
	case r.Bounds != nil:
		b := r.Bounds
		if b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon {
			return fmt.Errorf("%q: bounds must satisfy min_lat < max_lat and min_lon < max_lon", r.Name)
		}
		min := geo.Point{Lat: b.MinLat, Lon: b.MinLon}
		max := geo.Point{Lat: b.MaxLat, Lon: b.MaxLon}
		if !min.Valid() || !max.Valid() {
			return fmt.Errorf("%q: bounds out of range: %+v", r.Name, *b)
		}
	default:
		return fmt.Errorf("%q: must define one of center, point or bounds", r.Name)
	}
	return nil
}
