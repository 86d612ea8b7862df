// SPDX-License-Identifier: MPL-2.0

package plugin

import "maps"

const (
	// ReplaceExpressions substitutes --define constants.
	ReplaceExpressions = "babel-plugin-transform-replace-expressions"
	// DefaultPreset is injected when the package has no compiler configuration file.
	DefaultPreset = "@jvdx/babel-preset"
	// presetEnvKey holds the preset-env options inside DefaultPreset.
	presetEnvKey = "preset-env"
)

type (
	// Custom carries the per-target values the defaults are derived from.
	Custom struct {
		// Defines are the --define replacements, already turned into expressions.
		Defines map[string]string
		// Modern targets runtimes with native ES module support.
		Modern bool
		// Targets are the preset-env targets for non-modern builds (e.g. node).
		Targets map[string]any
		// TypeScript, JSX and Compress are forwarded to the compiler caller.
		TypeScript bool
		JSX        string
		Compress   bool
	}

	// Config is the assembled plugin configuration of one target.
	Config struct {
		Presets []Item
		Plugins []Item
		// Source is the compiler configuration file in use, if any.
		Source string
		// Custom is kept for the compiler adapter.
		Custom Custom
	}
)

// DefaultPlugins returns the plugins injected for custom: the replace
// expressions plugin, only when defines are present.
func DefaultPlugins(custom Custom) []Item {
	if len(custom.Defines) == 0 {
		return nil
	}
	replace := make(map[string]any, len(custom.Defines))
	for k, v := range custom.Defines {
		replace[k] = v
	}
	return []Item{{
		Kind:    KindPlugin,
		Name:    ReplaceExpressions,
		Options: Options{"replace": replace},
	}}
}

// DefaultPresets returns the default preset list for custom.
func DefaultPresets(custom Custom) []Item {
	var targets any
	switch {
	case custom.Modern:
		targets = map[string]any{"esmodules": true}
	case len(custom.Targets) > 0:
		targets = maps.Clone(custom.Targets)
	}
	return []Item{{
		Kind:    KindPreset,
		Name:    DefaultPreset,
		Options: Options{presetEnvKey: map[string]any{"targets": targets}},
	}}
}

// Defaults assembles the configuration of one target. With a filesystem
// configuration file its presets are used as-is and its plugins are merged
// over the default plugins; otherwise the default preset is injected.
func Defaults(custom Custom, fileConfig *FileConfig) Config {
	cfg := Config{Custom: custom}
	var userPlugins []Item
	if fileConfig != nil {
		cfg.Source = fileConfig.Path
		cfg.Presets = Merge(fileConfig.Presets)
		userPlugins = fileConfig.Plugins
	} else {
		cfg.Presets = DefaultPresets(custom)
	}
	cfg.Plugins = Merge(DefaultPlugins(custom), userPlugins)
	return cfg
}

// Replacements returns the merged "replace" option of the replace
// expressions plugin, or nil when the plugin is not configured.
func (c Config) Replacements() map[string]string {
	item, ok := Find(c.Plugins, ReplaceExpressions)
	if !ok {
		return nil
	}
	raw, ok := item.Options["replace"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// PresetTargets returns the preset-env targets of the default preset.
func (c Config) PresetTargets() map[string]any {
	item, ok := Find(c.Presets, DefaultPreset)
	if !ok {
		return nil
	}
	env, _ := item.Options[presetEnvKey].(map[string]any)
	targets, _ := env["targets"].(map[string]any)
	return targets
}
