package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/knobs/internal/lang"
	"github.com/mesh-intelligence/knobs/internal/logging"
	"github.com/mesh-intelligence/knobs/internal/paths"
	"github.com/mesh-intelligence/knobs/pkg/descriptor"
	"github.com/mesh-intelligence/knobs/pkg/sqlite"
	"github.com/mesh-intelligence/knobs/pkg/surface"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

// surfaceTitle is the title of the assembled surface.
const surfaceTitle = "knobs"

// GUIProperties keys that size the surface itself.
const (
	guiSection    = "GUIProperties"
	guiWidth      = "Width"
	guiHeight     = "Height"
	guiWidthRatio = "WidthRatio"
)

// app is an attached store with the registry and catalog it is shown with.
type app struct {
	log      zerolog.Logger
	dataDir  string
	langDir  string
	registry *descriptor.Registry
	store    sqlite.Backend
	catalog  *lang.Catalog
	options  surface.Options
}

// open attaches the store and loads the language catalog. The caller must
// call close.
func (s *session) open(ctx context.Context) (*app, error) {
	base := *logging.FromContext(ctx)
	log := logging.WithComponent(base, "cli")

	dataDir, err := paths.ResolveDataDir(s.flags.dataDir, s.v.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	langDir, err := paths.ResolveLangDir(s.flags.langDir, s.v.GetString(cfgKeyLangDir), s.configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve lang dir: %w", err))
	}

	language := s.flags.lang
	if language == "" {
		language = s.v.GetString(cfgKeyLang)
	}
	catalog, err := lang.Load(langDir, language)
	if err != nil {
		return nil, sysError(fmt.Errorf("load catalog: %w", err))
	}

	reg := descriptor.NewRegistry()
	store := sqlite.NewBackend(sqlite.WithRegistry(reg), sqlite.WithLogger(base))
	if err := store.Attach(storeConfig(s.v, dataDir)); err != nil {
		return nil, sysError(fmt.Errorf("attach store: %w", err))
	}

	opts := surfaceOptions(s.v)
	opts.Title = surfaceTitle
	opts.Registry = reg
	opts.Logger = base
	log.Debug().Str("data_dir", dataDir).Str("lang", catalog.Lang()).Msg("store attached")

	return &app{
		log:      log,
		dataDir:  dataDir,
		langDir:  langDir,
		registry: reg,
		store:    store,
		catalog:  catalog,
		options:  opts,
	}, nil
}

func (a *app) close() {
	if err := a.store.Detach(); err != nil {
		a.log.Warn().Err(err).Msg("detach store")
	}
}

// assemble builds the surface of every stored key. Stored GUIProperties
// override the configured size, and the width ratio is shown as a slider.
func (a *app) assemble() (*surface.Surface, error) {
	opts := a.options
	if w, ok := a.guiValue(guiWidth).(int); ok && w > 0 {
		opts.Width = w
	}
	if h, ok := a.guiValue(guiHeight).(int); ok && h > 0 {
		opts.Height = h
	}
	if r, ok := a.guiValue(guiWidthRatio).(float32); ok && r > 0 {
		opts.WidthRatio = float64(r)
	}

	s, err := surface.Assemble(a.store, a.catalog, opts)
	if err != nil {
		return nil, sysError(err)
	}
	if e, ok := s.Entry(guiSection, guiWidthRatio); ok && e.Err() == nil {
		e.SetKind(types.EntrySlider)
	}
	return s, nil
}

func (a *app) guiValue(key string) any {
	v, err := a.store.Get(guiSection, key)
	if err != nil {
		return nil
	}
	return v
}
