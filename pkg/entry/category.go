package entry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/knobs/pkg/descriptor"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

// Category is a named group of entries kept in insertion order.
type Category struct {
	name    string
	ids     []string
	entries map[string]*Builder
	built   []Widget
}

// NewCategory returns an empty category.
func NewCategory(name string) *Category {
	return &Category{name: name, entries: make(map[string]*Builder)}
}

// Name returns the display name.
func (c *Category) Name() string {
	return c.name
}

// Entry returns the entry registered under id.
func (c *Category) Entry(id string) (*Builder, bool) {
	b, ok := c.entries[id]
	return b, ok
}

// GetOrCreateEntry returns the entry registered under id, creating it when
// absent. The first registration of an id wins; later calls ignore typ and
// value. An empty label uses id as the display name.
func (c *Category) GetOrCreateEntry(reg *descriptor.Registry, id string, typ types.Type, value any, label string) (*Builder, error) {
	if b, ok := c.entries[id]; ok {
		return b, nil
	}
	if label == "" {
		label = id
	}
	b, err := Create(reg, label, typ, value)
	if err != nil {
		return nil, err
	}
	c.Add(id, b)
	return b, nil
}

// Add registers b under id unless id is taken. Add reports whether b was
// stored.
func (c *Category) Add(id string, b *Builder) bool {
	if _, ok := c.entries[id]; ok {
		return false
	}
	c.entries[id] = b
	c.ids = append(c.ids, id)
	return true
}

// AddDescription adds one description entry per non-empty line of text.
func (c *Category) AddDescription(text, color string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		c.Add(line, NewDescription(line, color))
	}
}

// IDs returns the entry ids in insertion order.
func (c *Category) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Entries returns the entries in insertion order.
func (c *Category) Entries() []*Builder {
	out := make([]*Builder, len(c.ids))
	for i, id := range c.ids {
		out[i] = c.entries[id]
	}
	return out
}

// Len returns the number of entries.
func (c *Category) Len() int {
	return len(c.ids)
}

// Build renders every entry through r and keeps the widgets. Entries that
// fail to render are skipped; their errors are joined.
func (c *Category) Build(r RenderStrategy) error {
	c.built = c.built[:0]
	var errs []error
	for _, id := range c.ids {
		w, err := r.Render(c.entries[id].View(id))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: %w", c.name, id, err))
			continue
		}
		c.built = append(c.built, w)
	}
	return errors.Join(errs...)
}

// Built returns the widgets of the last Build.
func (c *Category) Built() []Widget {
	return append([]Widget(nil), c.built...)
}

// Refresh refreshes every built widget.
func (c *Category) Refresh() {
	for _, w := range c.built {
		w.Refresh()
	}
}
