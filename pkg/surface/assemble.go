package surface

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/knobs/pkg/entry"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

// Assemble builds a surface from every key of store. Categories follow the
// store's sections; labels and descriptions come from loc (ids unchanged when
// nil). Entries save into the store and load from it. The returned error is
// non-nil only when the store cannot enumerate its keys.
func Assemble(store types.Store, loc types.Localizer, opts Options) (*Surface, error) {
	opts = opts.withDefaults()
	if loc == nil {
		loc = types.NopLocalizer{}
	}
	log := opts.Logger.With().Str("component", "surface").Logger()

	keys, err := store.Keys()
	if err != nil {
		return nil, fmt.Errorf("enumerating keys: %w", err)
	}

	s := New(opts.Title).
		SetFilePath(store.Path()).
		SetSize(opts.Width, opts.Height).
		SetOnSave(store.Save).
		SetOnLoad(store.Reload)
	s.descColor = opts.DescriptionColor

	width := int(float64(opts.Width) * opts.WidthRatio)
	bound, failed := 0, 0
	for _, k := range keys {
		c := s.GetOrCreateCategory(k.Section, loc.Label(k.Section), loc.Description(k.Section))
		label := loc.Label(k.Key)
		if err := bind(c, store, loc, opts, k, label, width); err != nil {
			if errors.Is(err, types.ErrKeyNotFound) {
				log.Debug().Str("key", k.String()).Msg("key vanished during assembly")
				continue
			}
			failed++
			log.Warn().Err(err).
				Str("key", k.String()).
				Str("kind", types.ErrorKind(err)).
				Msg("substituting error entry")
			c.Add(k.Key, entry.NewError(label, err))
			continue
		}
		bound++
	}
	log.Debug().Int("bound", bound).Int("failed", failed).Msg("surface assembled")
	return s, nil
}

func bind(c *entry.Category, store types.Store, loc types.Localizer, opts Options, k types.Key, label string, width int) error {
	def, err := store.Definition(k.Section, k.Key)
	if err != nil {
		return err
	}
	value, err := store.Get(k.Section, k.Key)
	if err != nil {
		return err
	}
	b, err := c.GetOrCreateEntry(opts.Registry, k.Key, def.Type, value, label)
	if err != nil {
		return err
	}

	tooltip := loc.Description(k.Key)
	if tooltip == "" {
		tooltip = def.Description
	}
	section, key := k.Section, k.Key
	b.SetTooltip(tooltip).
		SetWidth(width).
		SetDefault(def.Default).
		SetConstraint(def.Constraint).
		SetOnSave(func(v any) error { return store.Set(section, key, v) }).
		SetOnLoad(func() (any, error) { return store.Get(section, key) })
	return nil
}
