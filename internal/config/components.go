package config

import (
	"os"
	"sort"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/component"
)

// Registry builds a frozen component registry from the template
// components of c. Templates are read relative to the config file.
func (c *Config) Registry() (*component.Registry, error) {
	tags := make([]string, 0, len(c.Components))
	for tag := range c.Components {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	reg := component.NewRegistry()
	for _, tag := range tags {
		comp := c.Components[tag]
		markup, err := os.ReadFile(c.resolve(comp.Template))
		if err != nil {
			return nil, errors.New("E021").WithDetailf("<%s>: read %s", tag, comp.Template).Wrap(err)
		}
		desc, err := component.Template(tag, string(markup))
		if err != nil {
			return nil, err
		}
		if comp.Scoped {
			desc.Flags |= component.Scoped
		}
		if err := reg.Register(desc); err != nil {
			return nil, err
		}
	}
	reg.Freeze()
	return reg, nil
}
