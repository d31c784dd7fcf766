// Package prompts holds the system prompts for each pipeline stage. Each
// prompt is composed from tunable instructions and a fixed output spec;
// instructions may be overridden per stage from configuration.
package prompts

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Catalog resolves the system prompt for a stage.
type Catalog struct {
	overrides map[Stage]string
}

// NewCatalog creates a Catalog. Keys of overrides must be stage names;
// blank values are ignored.
func NewCatalog(overrides map[string]string) (*Catalog, error) {
	c := &Catalog{overrides: make(map[Stage]string, len(overrides))}
	for name, text := range overrides {
		stage, err := ParseStage(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, name)
		}
		if text = strings.TrimSpace(text); text != "" {
			c.overrides[stage] = text
		}
	}
	return c, nil
}

// Instructions returns the override for stage when one is set, otherwise
// the default instructions.
func (c *Catalog) Instructions(stage Stage) (string, error) {
	if text, ok := c.overrides[stage]; ok {
		return text, nil
	}
	return Instructions(stage)
}

// Compose returns the instructions followed by the output spec.
func (c *Catalog) Compose(stage Stage) (string, error) {
	instructions, err := c.Instructions(stage)
	if err != nil {
		return "", err
	}
	spec, err := Spec(stage)
	if err != nil {
		return "", err
	}
	return instructions + "\n\n" + spec, nil
}

// Overridden returns the stages with configured overrides.
func (c *Catalog) Overridden() []Stage {
	return slices.Sorted(maps.Keys(c.overrides))
}
