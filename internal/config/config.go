// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jvdx/jvdx/internal/issue"
	"github.com/jvdx/jvdx/pkg/cueutil"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "jvdx"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// ProjectFileName is the project-local config file, read from the
	// package directory.
	ProjectFileName = "jvdx.toml"
	// EnvPrefix prefixes environment overrides, e.g. JVDX_BUILD_TARGET.
	EnvPrefix = "JVDX"
)

//go:embed config_schema.cue
var configSchema string

// newViper returns a viper instance carrying the defaults and the JVDX_*
// environment bindings.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("build.format", defaults.Build.Format)
	v.SetDefault("build.modern", defaults.Build.Modern)
	v.SetDefault("build.target", defaults.Build.Target)
	v.SetDefault("build.sourcemap", defaults.Build.Sourcemap)
	v.SetDefault("build.pkg_main", defaults.Build.PkgMain)
	v.SetDefault("build.css", defaults.Build.CSS)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.clear_screen", defaults.Watch.ClearScreen)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// build.compress has no default, so AutomaticEnv alone would not surface
	// it in Unmarshal. JVDX_MODERN is the short form of JVDX_BUILD_MODERN.
	_ = v.BindEnv("build.compress")
	_ = v.BindEnv("build.modern", EnvPrefix+"_BUILD_MODERN", EnvPrefix+"_MODERN")

	return v
}

// loadWithOptions performs option-driven config loading without mutating
// package-level cache state. It returns the loaded config and the files that
// contributed to it, in load order.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, []string, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	v := newViper()
	var sources []string

	// --config replaces the user config file.
	if opts.ConfigFilePath != "" {
		path := string(opts.ConfigFilePath)
		if !fileExists(path) {
			return nil, nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'jvdx config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		if err := loadFileIntoViper(v, path); err != nil {
			return nil, nil, loadError(path, err)
		}
		sources = append(sources, path)
	} else {
		cfgDir, err := configDirWithOverride(string(opts.ConfigDirPath))
		if err != nil {
			return nil, nil, err
		}

		cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(cuePath) {
			if err := loadCUEIntoViper(v, cuePath); err != nil {
				return nil, nil, loadError(cuePath, err)
			}
			sources = append(sources, cuePath)
		}
	}

	if opts.ProjectDir != "" {
		projectPath := opts.ProjectDir.Join(ProjectFileName).String()
		if fileExists(projectPath) {
			if err := loadTOMLIntoViper(v, projectPath); err != nil {
				return nil, nil, loadError(projectPath, err)
			}
			sources = append(sources, projectPath)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithResource(strings.Join(sources, ", ")).
			WithSuggestion("Check JVDX_* environment variables for typos").
			WithSuggestion("Use 'jvdx config show' to see the effective configuration").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, sources, nil
}

func loadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithIssue(issue.ConfigLoadFailedId).
		WithSuggestion("Check that the file contains valid " + strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")) + " syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("See 'jvdx config --help' for configuration options").
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadFileIntoViper dispatches on the file extension.
func loadFileIntoViper(v *viper.Viper, path string) error {
	if filepath.Ext(path) == ".toml" {
		return loadTOMLIntoViper(v, path)
	}
	return loadCUEIntoViper(v, path)
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Config decodes to map[string]any (not a struct) so that only the keys the
// file sets override the defaults. Validation is non-concrete because every
// field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecodeString[map[string]any](configSchema, data, "#Config",
		cueutil.WithConcrete(false),
		cueutil.WithFilename(path),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// loadTOMLIntoViper parses a TOML file and validates it against the same
// #Config schema as CUE files before merging it into Viper.
func loadTOMLIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	var configMap map[string]any
	if err := toml.Unmarshal(data, &configMap); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("%s:%d:%d: %s", path, row, col, derr.Error())
		}
		return fmt.Errorf("%s: %w", path, err)
	}

	// Round-trip through the CUE schema so TOML and CUE files reject the same
	// unknown keys and values.
	if _, err := cueutil.ParseAndDecodeString[map[string]any](configSchema, []byte(tomlToCUE(configMap)), "#Config",
		cueutil.WithConcrete(false),
		cueutil.WithFilename(path),
	); err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CreateDefaultConfig writes the default config.cue unless one exists, and
// returns its path.
func CreateDefaultConfig() (string, error) {
	if _, err := EnsureConfigDir(); err != nil {
		return "", err
	}
	cfgPath, err := UserConfigPath()
	if err != nil {
		return "", err
	}
	if fileExists(cfgPath) {
		return cfgPath, nil
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// Save overwrites config.cue with cfg.
func Save(cfg *Config) error {
	if _, err := EnsureConfigDir(); err != nil {
		return err
	}
	cfgPath, err := UserConfigPath()
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// jvdx configuration file\n")
	sb.WriteString("// Project settings can also live in jvdx.toml next to package.json.\n\n")

	sb.WriteString("build: {\n")
	if cfg.Build.Format != "" {
		fmt.Fprintf(&sb, "\tformat: %q\n", cfg.Build.Format)
	}
	fmt.Fprintf(&sb, "\tmodern: %v\n", cfg.Build.Modern)
	fmt.Fprintf(&sb, "\ttarget: %q\n", cfg.Build.Target)
	fmt.Fprintf(&sb, "\tsourcemap: %q\n", cfg.Build.Sourcemap)
	if cfg.Build.Compress != nil {
		fmt.Fprintf(&sb, "\tcompress: %v\n", *cfg.Build.Compress)
	}
	fmt.Fprintf(&sb, "\tpkg_main: %v\n", cfg.Build.PkgMain)
	fmt.Fprintf(&sb, "\tcss: %q\n", cfg.Build.CSS)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce)
	fmt.Fprintf(&sb, "\tclear_screen: %v\n", cfg.Watch.ClearScreen)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

// GenerateTOML generates a jvdx.toml representation of the configuration.
func GenerateTOML(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(data), nil
}

// tomlToCUE renders a decoded TOML document as CUE. Strings, booleans,
// numbers and tables have a JSON spelling that CUE accepts verbatim.
func tomlToCUE(m map[string]any) string {
	var sb strings.Builder
	writeCUEValue(&sb, m)
	return sb.String()
}

func writeCUEValue(sb *strings.Builder, val any) {
	switch x := val.(type) {
	case map[string]any:
		sb.WriteString("{")
		first := true
		for _, k := range slices.Sorted(maps.Keys(x)) {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			fmt.Fprintf(sb, "%q: ", k)
			writeCUEValue(sb, x[k])
		}
		sb.WriteString("}")
	case []any:
		sb.WriteString("[")
		for i, el := range x {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeCUEValue(sb, el)
		}
		sb.WriteString("]")
	case string:
		fmt.Fprintf(sb, "%q", x)
	default:
		fmt.Fprintf(sb, "%v", x)
	}
}
