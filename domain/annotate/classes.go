package annotate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/soocke/boxlabel-go/domain/geometry"
)

// ArmClass selects the class given to the next new box, registering it when unknown.
// An empty name disarms.
func (c *Controller) ArmClass(name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		c.session.ArmedClass = ""
		return -1
	}
	idx := c.registry.GetOrCreate(name)
	c.session.ArmedClass = name
	if c.logger != nil {
		c.logger.Debug("class armed", "class", name, "index", idx)
	}
	return idx
}

// AddClass prompts for a new class name, registers and arms it.
func (c *Controller) AddClass() (string, bool) {
	p := c.collab.Prompter
	if p == nil {
		return "", false
	}
	name, ok := p.AskString("Input", "Enter new class name:")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", false
	}
	c.ArmClass(name)
	return name, true
}

// SeedClasses runs the startup prompt loop: a class name, then its index, until the name
// is left blank or cancelled. A cancelled index skips that name. It returns how many
// classes were registered.
func (c *Controller) SeedClasses() int {
	p := c.collab.Prompter
	if p == nil {
		return 0
	}
	n := 0
	for {
		name, ok := p.AskString("Class Input", "Enter class name (or leave blank to finish):")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return n
		}
		idx, ok := p.AskInteger("Class Index", fmt.Sprintf("Enter index for class '%s':", name))
		if !ok {
			continue
		}
		if err := c.registry.Register(name, idx); err != nil {
			if c.logger != nil {
				c.logger.Warn("class not registered", "name", name, "index", idx, "error", err)
			}
			continue
		}
		n++
	}
}

// ReassignClass gives b the class name, creating the class when it is new, and persists.
func (c *Controller) ReassignClass(b *geometry.Box, name string) error {
	if c.locked {
		return ErrLabelsLocked
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("class name is empty")
	}
	if !c.set.Contains(b) {
		return nil
	}
	b.Class = c.registry.GetOrCreate(name)
	if c.logger != nil {
		c.logger.Debug("box class changed", "class", name, "index", b.Class)
	}
	return c.persist()
}

func sortClassCounts(cs []ClassCount) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Index < cs[j].Index })
}
