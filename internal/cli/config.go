package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/knobs/internal/lang"
	"github.com/mesh-intelligence/knobs/internal/logging"
	"github.com/mesh-intelligence/knobs/pkg/surface"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "KNOBS"

	cfgKeyBackend    = "backend"
	cfgKeyDataDir    = "data_dir"
	cfgKeySync       = "sync"
	cfgKeyLang       = "lang"
	cfgKeyLangDir    = "lang_dir"
	cfgKeyWidth      = "width"
	cfgKeyHeight     = "height"
	cfgKeyWidthRatio = "width_ratio"
	cfgKeyLogLevel   = "log.level"
	cfgKeyLogFormat  = "log.format"
)

// configFile holds the structure written to config.yaml on first run.
type configFile struct {
	Backend    string        `yaml:"backend"`
	DataDir    string        `yaml:"data_dir,omitempty"`
	Sync       string        `yaml:"sync"`
	Lang       string        `yaml:"lang"`
	LangDir    string        `yaml:"lang_dir,omitempty"`
	Width      int           `yaml:"width"`
	Height     int           `yaml:"height"`
	WidthRatio float64       `yaml:"width_ratio"`
	Log        logConfigFile `yaml:"log"`
}

type logConfigFile struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaultConfigFile() configFile {
	return configFile{
		Backend:    types.BackendSQLite,
		Sync:       types.SyncOnSave,
		Lang:       lang.DefaultLang,
		Width:      surface.DefaultWidth,
		Height:     surface.DefaultHeight,
		WidthRatio: surface.DefaultWidthRatio,
		Log: logConfigFile{
			Level:  zerolog.WarnLevel.String(),
			Format: logging.FormatConsole,
		},
	}
}

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// KNOBS_* environment variables override file values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt)); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultConfigFile()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeySync, def.Sync)
	v.SetDefault(cfgKeyLang, def.Lang)
	v.SetDefault(cfgKeyWidth, def.Width)
	v.SetDefault(cfgKeyHeight, def.Height)
	v.SetDefault(cfgKeyWidthRatio, def.WidthRatio)
	v.SetDefault(cfgKeyLogLevel, def.Log.Level)
	v.SetDefault(cfgKeyLogFormat, def.Log.Format)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte("# knobs configuration\n"), data...), 0o644)
}

// storeConfig returns the store configuration for dataDir.
func storeConfig(v *viper.Viper, dataDir string) types.Config {
	return types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		Sync:    v.GetString(cfgKeySync),
	}
}

// surfaceOptions returns the assembly options from config.
func surfaceOptions(v *viper.Viper) surface.Options {
	opts := surface.DefaultOptions()
	opts.Width = v.GetInt(cfgKeyWidth)
	opts.Height = v.GetInt(cfgKeyHeight)
	opts.WidthRatio = v.GetFloat64(cfgKeyWidthRatio)
	return opts
}

// newLogger builds the logger from the log.* keys, writing to out.
func newLogger(v *viper.Viper, out io.Writer) zerolog.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(v.GetString(cfgKeyLogLevel), cfg.Level)
	if format := v.GetString(cfgKeyLogFormat); format != "" {
		cfg.Format = format
	}
	cfg.Out = out
	return logging.New(cfg)
}
