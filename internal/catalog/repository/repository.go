// Package repository loads the reference catalog of trade categories and communes.
package repository

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Commune is an administrative district clients and professionals pick from.
type Commune struct {
	Name string `yaml:"name"`
	City string `yaml:"city"`
}

// Catalog is the immutable reference data.
type Catalog struct {
	CategoryList []string  `yaml:"categories"`
	CommuneList  []Commune `yaml:"communes"`

	categoryIndex map[string]string
	communeIndex  map[string]Commune
}

// Repository exposes catalog lookups.
type Repository interface {
	Categories() []string
	Communes() []Commune
	// Category returns the canonical spelling of name, matched case-insensitively.
	Category(name string) (string, bool)
	// Commune returns the commune matching name case-insensitively.
	Commune(name string) (Commune, bool)
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.CategoryList) == 0 {
		return nil, fmt.Errorf("parse catalog: no categories")
	}
	if len(c.CommuneList) == 0 {
		return nil, fmt.Errorf("parse catalog: no communes")
	}

	c.categoryIndex = make(map[string]string, len(c.CategoryList))
	for _, name := range c.CategoryList {
		key := normalize(name)
		if _, dup := c.categoryIndex[key]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate category %q", name)
		}
		c.categoryIndex[key] = name
	}

	c.communeIndex = make(map[string]Commune, len(c.CommuneList))
	for _, commune := range c.CommuneList {
		key := normalize(commune.Name)
		if _, dup := c.communeIndex[key]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate commune %q", commune.Name)
		}
		c.communeIndex[key] = commune
	}
	return &c, nil
}

// Compile-time check that Catalog implements Repository.
var _ Repository = (*Catalog)(nil)

func (c *Catalog) Categories() []string {
	out := make([]string, len(c.CategoryList))
	copy(out, c.CategoryList)
	return out
}

func (c *Catalog) Communes() []Commune {
	out := make([]Commune, len(c.CommuneList))
	copy(out, c.CommuneList)
	return out
}

func (c *Catalog) Category(name string) (string, bool) {
	canonical, ok := c.categoryIndex[normalize(name)]
	return canonical, ok
}

func (c *Catalog) Commune(name string) (Commune, bool) {
	commune, ok := c.communeIndex[normalize(name)]
	return commune, ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
