// Package render draws configuration surfaces as styled terminal lines.
package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/knobs/pkg/entry"
	"github.com/mesh-intelligence/knobs/pkg/surface"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

// Layout limits.
const (
	// CellWidth is the number of width units one terminal column stands for.
	CellWidth = 8

	minLabelColumns = 12
	sliderColumns   = 20
	maxInline       = 8
)

// Styles holds the lipgloss styles a Terminal draws with.
type Styles struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Name     lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Marker   lipgloss.Style
}

// DefaultStyles returns the dark palette styles.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80")),
		Section:  lipgloss.NewStyle().Bold(true).Underline(true),
		Name:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")),
		Value:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0a0a0b")).Background(lipgloss.Color("#4ade80")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#909090")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(entry.ErrorColor)),
		Marker:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
	}
}

var _ entry.RenderStrategy = (*Terminal)(nil)

// Terminal renders entries as Lines.
type Terminal struct {
	styles Styles
}

// NewTerminal returns a Terminal drawing with styles.
func NewTerminal(styles Styles) *Terminal {
	return &Terminal{styles: styles}
}

// Render builds the Line for one entry.
func (t *Terminal) Render(v entry.View) (entry.Widget, error) {
	if v.Kind == types.EntryUnset {
		return nil, fmt.Errorf("entry %q has no render kind", v.ID)
	}
	return &Line{terminal: t, view: v, value: v.Value}, nil
}

// Line is the rendered form of one entry.
type Line struct {
	terminal *Terminal
	view     entry.View
	value    string
	err      error
}

// Refresh re-reads the entry's current value.
func (l *Line) Refresh() {
	if l.view.Current != nil {
		l.value = l.view.Current()
	}
}

// Edit writes raw into the entry. A rejected edit leaves the displayed value
// unchanged and is kept as Err.
func (l *Line) Edit(raw string) error {
	if l.view.Static || l.view.Set == nil {
		return entry.ErrReadOnly
	}
	if err := l.view.Set(raw); err != nil {
		l.err = err
		return err
	}
	l.err = nil
	l.Refresh()
	return nil
}

// Reset restores the entry's default value.
func (l *Line) Reset() error {
	if l.view.Static || l.view.Reset == nil {
		return entry.ErrReadOnly
	}
	if err := l.view.Reset(); err != nil {
		l.err = err
		return err
	}
	l.err = nil
	l.Refresh()
	return nil
}

// ID returns the entry id.
func (l *Line) ID() string { return l.view.ID }

// Value returns the displayed value.
func (l *Line) Value() string { return l.value }

// Err returns the error of the last rejected edit, or the binding error of
// an error entry.
func (l *Line) Err() error {
	if l.err != nil {
		return l.err
	}
	return l.view.Err
}

// Modified reports whether the displayed value differs from the default.
func (l *Line) Modified() bool {
	return !l.view.Static && l.view.HasDefault && l.value != l.view.Default
}

func (l *Line) String() string {
	s := l.terminal.styles
	v := l.view

	switch v.Kind {
	case types.EntryDescription:
		style := s.Muted
		if v.NameColor != "" {
			style = style.Foreground(lipgloss.Color(v.NameColor))
		}
		return style.Render(v.Value)
	case types.EntryError:
		return s.Error.Render(v.Value) + "  " + s.Muted.Render(v.Tooltip)
	}

	name := s.Name.Width(labelColumns(v.Width))
	if v.NameColor != "" {
		name = name.Foreground(lipgloss.Color(v.NameColor))
	}
	marker := " "
	if l.Modified() {
		marker = s.Marker.Render("*")
	}

	line := marker + " " + name.Render(v.Name) + " " + l.control()
	if l.err != nil {
		line += "  " + s.Error.Render(l.err.Error())
	}
	return line
}

func (l *Line) control() string {
	s := l.terminal.styles
	switch l.view.Kind {
	case types.EntryCycling:
		return s.Value.Render("‹ " + l.value + " ›")
	case types.EntryDropdown:
		return l.dropdown()
	case types.EntrySlider:
		return l.slider()
	case types.EntryKeymap:
		return s.Value.Render("<" + l.value + ">")
	default:
		return s.Value.Render("[" + l.value + "]")
	}
}

func (l *Line) dropdown() string {
	s := l.terminal.styles
	options := l.view.Options
	if len(options) == 0 || len(options) > maxInline {
		return s.Value.Render(l.value+" ▾") + " " + s.Muted.Render(fmt.Sprintf("(%d options)", len(options)))
	}
	parts := make([]string, len(options))
	for i, o := range options {
		if o == l.value {
			parts[i] = s.Selected.Render(o)
		} else {
			parts[i] = s.Muted.Render(o)
		}
	}
	return strings.Join(parts, " ")
}

func (l *Line) slider() string {
	s := l.terminal.styles
	options := l.view.Options
	pos := 0
	if i := slices.Index(options, l.value); i > 0 && len(options) > 1 {
		pos = i * (sliderColumns - 1) / (len(options) - 1)
	}
	bar := strings.Repeat("━", pos) + "●" + strings.Repeat("─", sliderColumns-1-pos)
	return s.Muted.Render(bar) + " " + s.Value.Render(l.value)
}

func labelColumns(width int) int {
	return max(width/CellWidth, minLabelColumns)
}

// RenderSurface builds every entry of s through t and writes the surface,
// one category per block, to w. The built widgets stay attached to s so a
// later Surface.Refresh updates them.
func RenderSurface(w io.Writer, s *surface.Surface, t *Terminal) error {
	buildErr := s.Build(t)

	var b strings.Builder
	b.WriteString(t.styles.Title.Render(s.Title()))
	if path := s.FilePath(); path != "" {
		b.WriteString("  " + t.styles.Muted.Render(path))
	}
	b.WriteString("\n")
	for _, c := range s.Categories() {
		b.WriteString("\n")
		t.writeCategory(&b, c)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	return buildErr
}

// RenderCategory builds the entries of one category through t and writes
// them to w.
func RenderCategory(w io.Writer, c *entry.Category, t *Terminal) error {
	buildErr := c.Build(t)

	var b strings.Builder
	t.writeCategory(&b, c)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	return buildErr
}

func (t *Terminal) writeCategory(b *strings.Builder, c *entry.Category) {
	b.WriteString(t.styles.Section.Render(c.Name()) + "\n")
	for _, widget := range c.Built() {
		if line, ok := widget.(fmt.Stringer); ok {
			b.WriteString(line.String() + "\n")
		}
	}
}

// Lines returns the Lines built for a category, keyed by entry id.
func Lines(c *entry.Category) map[string]*Line {
	out := make(map[string]*Line)
	for _, widget := range c.Built() {
		if line, ok := widget.(*Line); ok {
			out[line.ID()] = line
		}
	}
	return out
}
