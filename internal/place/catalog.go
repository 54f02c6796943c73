// Package place resolves free text to canonical hotel places and
// destination areas.
package place

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Entry is one catalog place: a canonical label plus known aliases.
type Entry struct {
	Label   string   `json:"label"`
	Aliases []string `json:"aliases,omitempty"`
}

// Catalog holds known places with alias lookup.
type Catalog struct {
	entries []Entry
	byAlias map[string]string // normalized alias -> canonical label
}

// NewCatalog builds a catalog from entries.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{
		entries: entries,
		byAlias: make(map[string]string),
	}
	for _, e := range entries {
		c.byAlias[Normalize(e.Label)] = e.Label
		for _, a := range e.Aliases {
			c.byAlias[Normalize(a)] = e.Label
		}
	}
	return c
}

// LoadCatalog reads a catalog from a JSON file of entries.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	return NewCatalog(entries), nil
}

// DefaultCatalog returns the built-in hotel catalog used when no catalog
// file is configured.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Entry{
		{Label: "Lobby", Aliases: []string{"recepción", "recepcion", "front desk"}},
		{Label: "Alberca", Aliases: []string{"piscina", "pool", "área de alberca"}},
		{Label: "Gimnasio", Aliases: []string{"gym", "fitness"}},
		{Label: "Restaurante", Aliases: []string{"restaurant", "comedor"}},
		{Label: "Bar", Aliases: []string{"lobby bar"}},
		{Label: "Spa", Aliases: []string{"sauna", "vapor"}},
		{Label: "Cocina", Aliases: []string{"kitchen", "cocina principal"}},
		{Label: "Lavandería", Aliases: []string{"lavanderia", "laundry"}},
		{Label: "Estacionamiento", Aliases: []string{"parking", "valet"}},
		{Label: "Salón de eventos", Aliases: []string{"salon de eventos", "ballroom", "salón"}},
		{Label: "Terraza", Aliases: []string{"rooftop", "azotea"}},
		{Label: "Elevadores", Aliases: []string{"elevador", "ascensor", "elevator"}},
		{Label: "Pasillo", Aliases: []string{"corredor", "hallway"}},
		{Label: "Jardín", Aliases: []string{"jardin", "garden", "áreas verdes"}},
		{Label: "Oficinas administrativas", Aliases: []string{"oficinas", "admin", "back office"}},
	})
}

// Lookup returns the canonical label for an exact or alias match.
func (c *Catalog) Lookup(text string) (string, bool) {
	label, ok := c.byAlias[Normalize(text)]
	return label, ok
}

// Labels returns all canonical labels, sorted.
func (c *Catalog) Labels() []string {
	labels := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		labels = append(labels, e.Label)
	}
	sort.Strings(labels)
	return labels
}

// Normalize lowers, trims and strips accents for alias comparison.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 'á':
			b.WriteRune('a')
		case 'é':
			b.WriteRune('e')
		case 'í':
			b.WriteRune('i')
		case 'ó':
			b.WriteRune('o')
		case 'ú', 'ü':
			b.WriteRune('u')
		case 'ñ':
			b.WriteRune('n')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
