package catalog

import (
	"fmt"
	"os"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Families []Family `yaml:"families"`
}

// LoadFile merges site families from a YAML file into the catalog. A file
// family with the name of an existing one replaces it; new families are
// inserted ahead of the built-ins so they win host matching. A family named
// "default" replaces the fallback. Invalid selectors fail the whole load so
// a bad file never half-applies.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse catalog file: %w", err)
	}

	for _, fam := range f.Families {
		if err := validateFamily(fam); err != nil {
			return fmt.Errorf("family %q: %w", fam.Name, err)
		}
	}

	for _, fam := range f.Families {
		c.merge(fam)
	}
	return nil
}

func (c *Catalog) merge(fam Family) {
	if fam.Name == c.fallback.Name {
		c.fallback = fam
		return
	}
	for i, existing := range c.families {
		if existing.Name == fam.Name {
			c.families[i] = fam
			return
		}
	}
	c.families = append([]Family{fam}, c.families...)
}

func validateFamily(fam Family) error {
	if fam.Name == "" {
		return fmt.Errorf("missing name")
	}
	for field, chain := range fam.Fields {
		for _, d := range chain {
			switch d.Kind {
			case KindDOM:
				if _, err := cascadia.ParseGroup(d.Query); err != nil {
					return fmt.Errorf("field %q: invalid selector %q: %w", field, d.Query, err)
				}
			case KindMeta:
				if d.Query == "" {
					return fmt.Errorf("field %q: empty meta property", field)
				}
			default:
				return fmt.Errorf("field %q: unknown descriptor kind %q", field, d.Kind)
			}
		}
	}
	return nil
}
