// Package lang loads YAML language catalogs that supply display labels and
// descriptions for configuration sections and keys.
//
// A catalog file <dir>/<lang>.yaml maps ids to a text and an optional
// description:
//
//	TestSection1:
//	  text: First section
//	TestInt:
//	  text: Test integer
//	  desc: An integer with no constraint.
//
// Ids missing from the selected language fall back to EN.yaml, then to the
// id itself.
package lang

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/knobs/pkg/types"
)

// DefaultLang is the fallback language.
const DefaultLang = "EN"

// Text is the catalog record for one id.
type Text struct {
	Text string `yaml:"text"`
	Desc string `yaml:"desc,omitempty"`
}

var _ types.Localizer = (*Catalog)(nil)

// Catalog is a loaded language catalog.
type Catalog struct {
	lang     string
	path     string
	entries  map[string]Text
	fallback map[string]Text
}

// New returns an empty catalog for lang that saves to dir.
func New(dir, lang string) *Catalog {
	lang = normalize(lang)
	return &Catalog{
		lang:     lang,
		path:     filepath.Join(dir, lang+".yaml"),
		entries:  make(map[string]Text),
		fallback: make(map[string]Text),
	}
}

// Load reads <dir>/<lang>.yaml and, for other languages, EN.yaml as the
// fallback. Missing files yield empty catalogs; malformed files are errors.
func Load(dir, lang string) (*Catalog, error) {
	c := New(dir, lang)

	entries, err := readFile(c.path)
	if err != nil {
		return nil, err
	}
	c.entries = entries

	if c.lang != DefaultLang {
		fallback, err := readFile(filepath.Join(dir, DefaultLang+".yaml"))
		if err != nil {
			return nil, err
		}
		c.fallback = fallback
	}
	return c, nil
}

func normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLang
	}
	return strings.ToUpper(lang)
}

func readFile(path string) (map[string]Text, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]Text), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	entries := make(map[string]Text)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

// Lang returns the catalog language.
func (c *Catalog) Lang() string { return c.lang }

// Path returns the file the catalog loads from and saves to.
func (c *Catalog) Path() string { return c.path }

// Len returns the number of ids in the selected language.
func (c *Catalog) Len() int { return len(c.entries) }

func (c *Catalog) lookup(id string) (Text, bool) {
	if t, ok := c.entries[id]; ok {
		return t, true
	}
	t, ok := c.fallback[id]
	return t, ok
}

// Label returns the display text for id, or id when none is defined.
func (c *Catalog) Label(id string) string {
	if t, ok := c.lookup(id); ok && t.Text != "" {
		return t.Text
	}
	return id
}

// Description returns the description for id, or "".
func (c *Catalog) Description(id string) string {
	t, _ := c.lookup(id)
	return t.Desc
}

// Set records the text and description of id in the selected language.
func (c *Catalog) Set(id, text, desc string) {
	c.entries[id] = Text{Text: text, Desc: desc}
}

// Has reports whether id is defined in the selected language.
func (c *Catalog) Has(id string) bool {
	_, ok := c.entries[id]
	return ok
}

// Save writes the selected language to Path.
func (c *Catalog) Save() error {
	data, err := yaml.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating catalog dir: %w", err)
	}
	return os.WriteFile(c.path, data, 0o644)
}
