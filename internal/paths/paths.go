// Package paths resolves configuration, data and language directory
// locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative and config-relative directory names.
const (
	DefaultConfigDirName = ".knobs"
	DefaultDataDirName   = ".knobs-data"
	DefaultLangDirName   = "lang"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "KNOBS_CONFIG_DIR"
	EnvDataDir   = "KNOBS_DATA_DIR"
	EnvLangDir   = "KNOBS_LANG_DIR"
)

// appName names the per-user platform directories.
const appName = "knobs"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/knobs (fallback ~/.config/knobs)
// macOS:   ~/Library/Application Support/knobs
// Windows: %APPDATA%/knobs
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/knobs (fallback ~/.local/share/knobs)
// macOS:   ~/Library/Application Support/knobs
// Windows: %APPDATA%/knobs
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", appName), nil
	default:
		// macOS and Windows: same as config dir.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > KNOBS_CONFIG_DIR env > DefaultConfigDir().
//
// If flag is non-empty it wins. Otherwise the KNOBS_CONFIG_DIR environment
// variable is checked. If neither is set, the platform default is returned.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > KNOBS_DATA_DIR env > DefaultDataDir().
//
// With no override the data lives next to the working directory in
// .knobs-data, so each project carries its own configuration.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveLangDir returns the directory holding language catalogs following
// the precedence chain: flag > configYAMLValue > KNOBS_LANG_DIR env >
// configDir/lang.
func ResolveLangDir(flag, configYAMLValue, configDir string) (string, error) {
	for _, dir := range []string{flag, configYAMLValue, os.Getenv(EnvLangDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	return filepath.Join(configDir, DefaultLangDirName), nil
}
