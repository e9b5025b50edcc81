package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/knobs/pkg/entry"
	"github.com/mesh-intelligence/knobs/pkg/surface"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

// entryJSON is the --json form of one entry.
type entryJSON struct {
	Section string   `json:"section"`
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"`
	Kind    string   `json:"kind"`
	Value   string   `json:"value"`
	Default *string  `json:"default,omitempty"`
	Options []string `json:"options,omitempty"`
	Tooltip string   `json:"tooltip,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func newEntryJSON(section, key string, b *entry.Builder) entryJSON {
	v := b.View(key)
	out := entryJSON{
		Section: section,
		Key:     key,
		Name:    v.Name,
		Kind:    v.Kind.String(),
		Value:   v.Value,
		Options: v.Options,
		Tooltip: v.Tooltip,
	}
	if !v.Static {
		out.Type = b.Descriptor().Type().Name
	}
	if v.HasDefault {
		out.Default = &v.Default
	}
	if v.Err != nil {
		out.Error = v.Err.Error()
	}
	return out
}

// surfaceJSON lists the non-description entries of s, limited to section
// when it is not empty.
func surfaceJSON(s *surface.Surface, section string) []entryJSON {
	out := []entryJSON{}
	for _, sid := range s.CategoryIDs() {
		if section != "" && sid != section {
			continue
		}
		c, _ := s.Category(sid)
		for _, id := range c.IDs() {
			b, _ := c.Entry(id)
			if b.Kind() == types.EntryDescription {
				continue
			}
			out = append(out, newEntryJSON(sid, id, b))
		}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// lookupEntry returns the bound entry for (section, key). Unknown keys and
// keys that could not be bound are user errors.
func lookupEntry(s *surface.Surface, section, key string) (*entry.Builder, error) {
	b, ok := s.Entry(section, key)
	if !ok || b.Kind() == types.EntryDescription {
		return nil, userError(fmt.Errorf("%s.%s: %w", section, key, types.ErrKeyNotFound))
	}
	if err := b.Err(); err != nil {
		return nil, userError(fmt.Errorf("%s.%s: %w", section, key, err))
	}
	return b, nil
}
