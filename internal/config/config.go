// Package config handles loading of the pipeline configuration file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rendis/geofilter/internal/model"
)

// Config represents the root configuration file structure.
type Config struct {
	Ledger    string     `yaml:"ledger,omitempty"`
	InPlace   bool       `yaml:"in_place,omitempty"`
	Pipelines []Pipeline `yaml:"pipelines"`
}

// Pipeline pairs a boundary document with a feature document.
type Pipeline struct {
	Name      string `yaml:"name"`
	Boundary  string `yaml:"boundary"`
	Features  string `yaml:"features"`
	Backup    string `yaml:"backup,omitempty"`
	Predicate string `yaml:"predicate"`
}

// Default mirrors the data layout of the map project: building footprints are
// kept when they touch the boundary, landmarks when they fall inside it.
func Default() *Config {
	return &Config{
		Pipelines: []Pipeline{
			{
				Name:      "buildings",
				Boundary:  "data/CR.geojson",
				Features:  "data/buildings.geojson",
				Predicate: "intersects",
			},
			{
				Name:      "landmarks",
				Boundary:  "data/CR.geojson",
				Features:  "data/leaf_landmarks.geojson",
				Predicate: "contains-point",
			},
		},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks that every pipeline is complete and names are unique.
func (c *Config) Validate() error {
	if len(c.Pipelines) == 0 {
		return errors.New("no pipelines configured")
	}

	seen := make(map[string]bool, len(c.Pipelines))
	for i, p := range c.Pipelines {
		if p.Name == "" {
			return fmt.Errorf("pipeline %d: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("pipeline %q: duplicate name", p.Name)
		}
		seen[p.Name] = true

		if p.Boundary == "" {
			return fmt.Errorf("pipeline %q: boundary is required", p.Name)
		}
		if p.Features == "" {
			return fmt.Errorf("pipeline %q: features is required", p.Name)
		}
		if _, err := model.ParsePredicate(p.Predicate); err != nil {
			return fmt.Errorf("pipeline %q: %w", p.Name, err)
		}
	}
	return nil
}

// Specs converts the configured pipelines, optionally limited to the given
// names. Unknown names are an error.
func (c *Config) Specs(names ...string) ([]model.PipelineSpec, error) {
	byName := make(map[string]Pipeline, len(c.Pipelines))
	for _, p := range c.Pipelines {
		byName[p.Name] = p
	}

	selected := c.Pipelines
	if len(names) > 0 {
		selected = make([]Pipeline, 0, len(names))
		seen := make(map[string]bool)
		for _, n := range names {
			if seen[n] {
				continue
			}
			seen[n] = true
			p, ok := byName[n]
			if !ok {
				return nil, fmt.Errorf("pipeline %q not found in configuration", n)
			}
			selected = append(selected, p)
		}
	}

	specs := make([]model.PipelineSpec, 0, len(selected))
	for _, p := range selected {
		kind, err := model.ParsePredicate(p.Predicate)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", p.Name, err)
		}
		specs = append(specs, model.PipelineSpec{
			Name:      p.Name,
			Boundary:  p.Boundary,
			Features:  p.Features,
			Backup:    p.Backup,
			Predicate: kind,
		})
	}
	return specs, nil
}
