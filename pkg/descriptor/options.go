package descriptor

import (
	"slices"

	"github.com/mesh-intelligence/knobs/pkg/constraint"
)

// Options returns the option set offered for an entry constrained by c.
//
// A range constraint expands through the type's range expansion when it has
// one; otherwise the listed values of a list constraint are used. When the
// constraint yields nothing, the type's default options apply (nil meaning
// free-form entry).
//
// Values in mustInclude that are instances of the type and not already
// offered are added. When anything is added and the type is ordered, the
// combined set is stably sorted with the added values placed first among
// equals. Values of other types are ignored.
func (d *Descriptor) Options(c *constraint.Constraint, mustInclude ...any) []string {
	values := d.expand(c)
	if values == nil {
		return d.DefaultOptions()
	}

	options := d.formatAll(values)
	var added []any
	for _, v := range mustInclude {
		if !d.Accepts(v) {
			continue
		}
		s := d.Format(v)
		if slices.Contains(options, s) || slices.ContainsFunc(added, func(a any) bool { return d.Format(a) == s }) {
			continue
		}
		added = append(added, v)
	}
	if len(added) == 0 {
		return options
	}

	merged := append(added, values...)
	if d.Ordered() {
		slices.SortStableFunc(merged, func(a, b any) int {
			c, _ := d.Compare(a, b)
			return c
		})
	}
	return d.formatAll(merged)
}

func (d *Descriptor) expand(c *constraint.Constraint) []any {
	if c.IsRange() && d.SupportsRange() {
		lo, hi, _ := c.Bound()
		if d.Accepts(lo) && d.Accepts(hi) {
			if values := d.cfg.RangeOptions(lo, hi); values != nil {
				return values
			}
		}
	}
	if c.IsList() {
		return d.cfg.ListOptions(c.ListedValues())
	}
	return nil
}
