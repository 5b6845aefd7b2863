package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed resources.yaml
var resourcesYAML []byte

// Rarity classifies how scarce a resource is
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Resource describes one entry of the game's resource enum
type Resource struct {
	ID       int    `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Display  string `yaml:"display" json:"display"`
	Rarity   Rarity `yaml:"rarity" json:"rarity"`
	Excluded bool   `yaml:"excluded" json:"excluded,omitempty"`
	Troop    bool   `yaml:"troop" json:"troop,omitempty"`
}

// Band is a troop tier and the materials needed to produce it
type Band struct {
	Name      string   `yaml:"name" json:"name"`
	Materials []string `yaml:"materials" json:"materials"`
}

type document struct {
	Resources []Resource `yaml:"resources"`
	Bands     []Band     `yaml:"bands"`
}

// Catalog indexes resources by id and by name
type Catalog struct {
	resources []Resource
	bands     []Band
	byID      map[int]Resource
	byKey     map[string]Resource
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Load(resourcesYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded resources invalid: %v", err))
	}
	return c
})

// Default returns the catalog compiled into the binary
func Default() *Catalog {
	return defaultCatalog()
}

// Load parses a YAML resource catalog
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		resources: make([]Resource, 0, len(doc.Resources)),
		byID:      make(map[int]Resource, len(doc.Resources)),
		byKey:     make(map[string]Resource, len(doc.Resources)*2),
	}

	for _, r := range doc.Resources {
		if r.Name == "" {
			return nil, fmt.Errorf("resource %d has no name", r.ID)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate resource id %d", r.ID)
		}
		if r.Rarity == "" {
			r.Rarity = RarityCommon
		}
		if r.Display == "" {
			r.Display = r.Name
		}
		c.resources = append(c.resources, r)
		c.byID[r.ID] = r
		c.byKey[key(r.Name)] = r
		c.byKey[key(r.Display)] = r
	}

	for _, b := range doc.Bands {
		for _, m := range b.Materials {
			if _, ok := c.byKey[key(m)]; !ok {
				return nil, fmt.Errorf("band %s references unknown resource %q", b.Name, m)
			}
		}
		c.bands = append(c.bands, b)
	}

	return c, nil
}

// Resources returns every resource in id order
func (c *Catalog) Resources() []Resource {
	out := make([]Resource, len(c.resources))
	copy(out, c.resources)
	return out
}

// Bands returns the troop bands in canonical order
func (c *Catalog) Bands() []Band {
	out := make([]Band, len(c.bands))
	copy(out, c.bands)
	return out
}

// ByID looks up a resource by enum id
func (c *Catalog) ByID(id int) (Resource, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// ByName looks up a resource by name, ignoring case and spacing
func (c *Catalog) ByName(name string) (Resource, bool) {
	r, ok := c.byKey[key(name)]
	return r, ok
}

// AvailableTroops returns the bands whose materials all appear in names.
func (c *Catalog) AvailableTroops(names []string) []string {
	have := make(map[string]bool, len(names))
	for _, n := range names {
		if r, ok := c.ByName(n); ok {
			have[r.Name] = true
		}
	}

	troops := make([]string, 0)
	for _, b := range c.bands {
		complete := len(b.Materials) > 0
		for _, m := range b.Materials {
			r, _ := c.ByName(m)
			if !have[r.Name] {
				complete = false
				break
			}
		}
		if complete {
			troops = append(troops, b.Name)
		}
	}
	return troops
}

func key(name string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(name)))
}
