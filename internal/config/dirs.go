// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// ConfigDirEnv names the environment variable that relocates the user
// configuration directory, e.g. for CI machines without a home directory.
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

var (
	dirMu       sync.RWMutex
	dirOverride string
)

// SetConfigDir pins the user configuration directory to dir and returns a
// function restoring the previous value. It exists for tests and
// benchmarks, where os.UserHomeDir does not follow $HOME on every platform.
func SetConfigDir(dir string) (restore func()) {
	dirMu.Lock()
	prev := dirOverride
	dirOverride = dir
	dirMu.Unlock()
	return func() {
		dirMu.Lock()
		dirOverride = prev
		dirMu.Unlock()
	}
}

// ConfigDir returns the directory holding the user config.cue. The lookup
// order is SetConfigDir, $JVDX_CONFIG_DIR, then the platform location:
// %APPDATA%\jvdx on Windows, ~/Library/Application Support/jvdx on macOS
// and $XDG_CONFIG_HOME/jvdx (default ~/.config/jvdx) elsewhere.
//
//nolint:revive // config.Dir reads poorly at call sites
func ConfigDir() (string, error) {
	dirMu.RLock()
	override := dirOverride
	dirMu.RUnlock()
	if override != "" {
		return override, nil
	}
	if env := os.Getenv(ConfigDirEnv); env != "" {
		return env, nil
	}

	base, err := platformConfigBase()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

func platformConfigBase() (string, error) {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData, nil
		}
		return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming"), nil
	}
	if runtime.GOOS != "darwin" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support"), nil
	}
	return filepath.Join(home, ".config"), nil
}

// UserConfigPath returns the path of config.cue inside ConfigDir.
func UserConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}
