// Package catalog holds the fixed lookup tables the SOW wizard offers:
// labor category to subcategories, material category to detail properties,
// and the default tag catalogue.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/tags"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type tagEntry struct {
	Label    string `yaml:"label"`
	Category string `yaml:"category"`
	Color    string `yaml:"color"`
}

type Catalog struct {
	Labor        map[string][]string `yaml:"labor" json:"labor"`
	Materials    map[string][]string `yaml:"materials" json:"materials"`
	RoomTagColor string              `yaml:"room_tag_color" json:"roomTagColor"`
	Tags         map[string]tagEntry `yaml:"tags" json:"-"`
}

// Default returns the embedded catalogue.
func Default() (*Catalog, error) {
	return Parse(defaultsYAML)
}

// Load reads the embedded catalogue and, when path is set, overlays the file
// at path on top of it. Categories in the file replace whole entries.
func Load(path string) (*Catalog, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, err
	}
	for k, v := range override.Labor {
		c.Labor[k] = v
	}
	for k, v := range override.Materials {
		c.Materials[k] = v
	}
	for k, v := range override.Tags {
		c.Tags[k] = v
	}
	if override.RoomTagColor != "" {
		c.RoomTagColor = override.RoomTagColor
	}
	return c, nil
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if c.Labor == nil {
		c.Labor = map[string][]string{}
	}
	if c.Materials == nil {
		c.Materials = map[string][]string{}
	}
	if c.Tags == nil {
		c.Tags = map[string]tagEntry{}
	}
	return &c, nil
}

func (c *Catalog) LaborCategories() []string {
	return sortedKeys(c.Labor)
}

func (c *Catalog) MaterialCategories() []string {
	return sortedKeys(c.Materials)
}

// ValidLaborSubcategory reports whether subcategory is offered for category.
// The check is advisory; the SOW container stores whatever it is given.
func (c *Catalog) ValidLaborSubcategory(category, subcategory string) bool {
	subs, ok := c.Labor[category]
	return ok && slices.Contains(subs, subcategory)
}

// MaterialProperties returns the detail keys offered for a material category.
func (c *Catalog) MaterialProperties(category string) []string {
	return c.Materials[category]
}

// UnknownDetails lists detail keys that are not offered for category.
func (c *Catalog) UnknownDetails(category string, details map[string]string) []string {
	allowed := c.Materials[category]
	var unknown []string
	for k := range details {
		if !slices.Contains(allowed, k) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// DefaultTags returns the default tag catalogue.
func (c *Catalog) DefaultTags() tags.Catalogue {
	out := make(tags.Catalogue, len(c.Tags))
	for id, t := range c.Tags {
		out[id] = domain.TagMetadata{ID: id, Label: t.Label, Category: t.Category, Color: t.Color}
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
