// CLAUDE:SUMMARY YAML schema for the sector, street-range and keyword tables, with built-in defaults and load-time validation.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hazyhaar/socialconnect-core/pkg/sector"
	"github.com/hazyhaar/socialconnect-core/pkg/tagger"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRange is returned when a street range is inverted or overlaps another.
var ErrInvalidRange = errors.New("invalid street range")

// Catalog is the full set of classification tables.
type Catalog struct {
	Version        string                    `yaml:"version" json:"version"`
	Sectors        []sector.Mapping          `yaml:"sectors" json:"sectors"`
	StreetRanges   map[string][]sector.Range `yaml:"street_ranges" json:"street_ranges"`
	DirectMappings map[string]string         `yaml:"direct_mappings" json:"direct_mappings,omitempty"`
	Problematiques []tagger.Category         `yaml:"problematiques" json:"problematiques"`
	Actions        []tagger.Category         `yaml:"actions" json:"actions"`
}

// Default returns the built-in tables.
func Default() *Catalog {
	return &Catalog{
		Version:        "builtin",
		Sectors:        sector.DefaultMappings(),
		StreetRanges:   sector.DefaultStreetRanges(),
		DirectMappings: sector.DefaultDirectMappings(),
		Problematiques: tagger.DefaultProblematiques(),
		Actions:        tagger.DefaultActions(),
	}
}

// Load reads a catalog YAML file. Sections absent from the file keep their
// built-in value.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var file Catalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	c := Default()
	c.Version = path
	if file.Version != "" {
		c.Version = file.Version
	}
	if file.Sectors != nil {
		c.Sectors = file.Sectors
	}
	if file.StreetRanges != nil {
		c.StreetRanges = file.StreetRanges
	}
	if file.DirectMappings != nil {
		c.DirectMappings = file.DirectMappings
	}
	if file.Problematiques != nil {
		c.Problematiques = file.Problematiques
	}
	if file.Actions != nil {
		c.Actions = file.Actions
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Validate checks names and street ranges: every range needs min <= max and
// ranges of one street must not overlap.
func (c *Catalog) Validate() error {
	for i, m := range c.Sectors {
		if m.Sector == "" {
			return fmt.Errorf("sectors[%d]: missing sector name", i)
		}
	}
	for street, ranges := range c.StreetRanges {
		if street == "" {
			return fmt.Errorf("street_ranges: empty street name")
		}
		sorted := make([]sector.Range, len(ranges))
		copy(sorted, ranges)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })
		for i, r := range sorted {
			if r.Sector == "" {
				return fmt.Errorf("street %q: range %d-%d: missing sector", street, r.Min, r.Max)
			}
			if r.Min > r.Max {
				return fmt.Errorf("%w: street %q: %d-%d is inverted", ErrInvalidRange, street, r.Min, r.Max)
			}
			if i > 0 && r.Min <= sorted[i-1].Max {
				return fmt.Errorf("%w: street %q: %d-%d overlaps %d-%d",
					ErrInvalidRange, street, r.Min, r.Max, sorted[i-1].Min, sorted[i-1].Max)
			}
		}
	}
	for i, cat := range c.Problematiques {
		if cat.Type == "" {
			return fmt.Errorf("problematiques[%d]: missing type", i)
		}
	}
	for i, cat := range c.Actions {
		if cat.Type == "" {
			return fmt.Errorf("actions[%d]: missing type", i)
		}
	}
	return nil
}

// WriteYAML writes the catalog in the format accepted by Load.
func (c *Catalog) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}
