// Package surface assembles a configuration surface: the ordered categories
// and entries bound to a persisted store, with localized labels and
// store-level save and load.
//
// Assembly is best effort. A key whose type is unsupported or whose value
// does not match its type becomes an error pseudo-entry; the rest of the
// surface is assembled normally.
package surface

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/knobs/pkg/descriptor"
	"github.com/mesh-intelligence/knobs/pkg/entry"
)

// Surface defaults.
const (
	DefaultTitle      = "config"
	DefaultWidth      = 480
	DefaultHeight     = 640
	DefaultWidthRatio = 0.4
)

// Options configures Assemble. Zero values take the defaults above; a nil
// Registry uses descriptor.Default().
type Options struct {
	Title            string
	Width            int
	Height           int
	WidthRatio       float64
	Registry         *descriptor.Registry
	Logger           zerolog.Logger
	DescriptionColor string
}

// DefaultOptions returns the default assembly options with logging disabled.
func DefaultOptions() Options {
	return Options{
		Title:      DefaultTitle,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		WidthRatio: DefaultWidthRatio,
		Logger:     zerolog.Nop(),
	}
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.WidthRatio <= 0 {
		o.WidthRatio = DefaultWidthRatio
	}
	if o.Registry == nil {
		o.Registry = descriptor.Default()
	}
	return o
}

// Surface owns the categories of one configuration surface.
type Surface struct {
	title      string
	filePath   string
	width      int
	height     int
	categories map[string]*entry.Category
	order      []string
	descColor  string
	onSave     func() error
	onLoad     func() error
}

// New returns an empty surface.
func New(title string) *Surface {
	return &Surface{
		title:      title,
		width:      DefaultWidth,
		height:     DefaultHeight,
		categories: make(map[string]*entry.Category),
	}
}

// SetTitle sets the window title.
func (s *Surface) SetTitle(title string) *Surface {
	s.title = title
	return s
}

// SetFilePath sets the location of the persisted file.
func (s *Surface) SetFilePath(path string) *Surface {
	s.filePath = path
	return s
}

// SetSize sets the window size.
func (s *Surface) SetSize(width, height int) *Surface {
	s.width, s.height = width, height
	return s
}

// SetOnSave sets the hook run after every entry has been saved.
func (s *Surface) SetOnSave(fn func() error) *Surface {
	s.onSave = fn
	return s
}

// SetOnLoad sets the hook run before every entry is loaded.
func (s *Surface) SetOnLoad(fn func() error) *Surface {
	s.onLoad = fn
	return s
}

// Title returns the surface title.
func (s *Surface) Title() string { return s.title }

// FilePath returns the location of the persisted store, or "".
func (s *Surface) FilePath() string { return s.filePath }

// Size returns the width and height of the surface.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// GetOrCreateCategory returns the category registered under id, creating it
// when absent. An empty name uses id; a non-empty desc is added as
// description entries when the category is created.
func (s *Surface) GetOrCreateCategory(id, name, desc string) *entry.Category {
	if c, ok := s.categories[id]; ok {
		return c
	}
	if name == "" {
		name = id
	}
	c := entry.NewCategory(name)
	if desc != "" {
		c.AddDescription(desc, s.descColor)
	}
	s.categories[id] = c
	s.order = append(s.order, id)
	return c
}

// Category returns the category registered under id.
func (s *Surface) Category(id string) (*entry.Category, bool) {
	c, ok := s.categories[id]
	return c, ok
}

// CategoryIDs returns the category ids in creation order.
func (s *Surface) CategoryIDs() []string {
	return append([]string(nil), s.order...)
}

// Categories returns the categories in creation order.
func (s *Surface) Categories() []*entry.Category {
	out := make([]*entry.Category, len(s.order))
	for i, id := range s.order {
		out[i] = s.categories[id]
	}
	return out
}

// Entry returns the entry bound to (section, key).
func (s *Surface) Entry(section, key string) (*entry.Builder, bool) {
	c, ok := s.categories[section]
	if !ok {
		return nil, false
	}
	return c.Entry(key)
}

// Save saves every entry, then runs the save hook.
func (s *Surface) Save() error {
	var errs []error
	s.each(func(id string, b *entry.Builder) {
		if err := b.Save(); err != nil {
			errs = append(errs, fmt.Errorf("saving %s: %w", id, err))
		}
	})
	if s.onSave != nil {
		if err := s.onSave(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load runs the load hook, then loads every entry.
func (s *Surface) Load() error {
	if s.onLoad != nil {
		if err := s.onLoad(); err != nil {
			return err
		}
	}
	var errs []error
	s.each(func(id string, b *entry.Builder) {
		if err := b.Load(); err != nil {
			errs = append(errs, fmt.Errorf("loading %s: %w", id, err))
		}
	})
	s.Refresh()
	return errors.Join(errs...)
}

// Saved reports whether every entry matches its persisted value.
func (s *Surface) Saved() bool {
	saved := true
	s.each(func(_ string, b *entry.Builder) {
		if b.Dirty() {
			saved = false
		}
	})
	return saved
}

// Build renders every category through r.
func (s *Surface) Build(r entry.RenderStrategy) error {
	var errs []error
	for _, c := range s.Categories() {
		if err := c.Build(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Refresh refreshes every built widget.
func (s *Surface) Refresh() {
	for _, c := range s.Categories() {
		c.Refresh()
	}
}

func (s *Surface) each(fn func(id string, b *entry.Builder)) {
	for _, sid := range s.order {
		c := s.categories[sid]
		for _, id := range c.IDs() {
			b, _ := c.Entry(id)
			fn(sid+"."+id, b)
		}
	}
}
