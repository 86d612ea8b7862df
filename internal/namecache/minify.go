// SPDX-License-Identifier: MPL-2.0

package namecache

import (
	"fmt"
	"maps"
	"regexp"
)

type (
	// Minify is the normalized minifier configuration.
	Minify struct {
		// Mangle is non-nil when "mangle" was a boolean, which switches
		// identifier mangling on or off wholesale.
		Mangle *bool
		// Properties configures property mangling; nil disables it.
		Properties *Properties
		// Compress is the raw "compress" option.
		Compress any
		// Options is the merged option object the configuration came from.
		Options map[string]any
	}

	// Properties configures property name mangling.
	Properties struct {
		// Regex selects the property names to mangle. A nil Regex mangles nothing.
		Regex *regexp.Regexp
		// Reserved names are never mangled.
		Reserved []string
	}
)

// NormalizeMinify normalizes the relaxed minify option format. A boolean
// "mangle" is taken as-is. Otherwise property mangling options are read from
// "mangle.properties", a top-level "properties" key (which overrides, and may
// be false), or the legacy top-level "regex"/"reserved" keys. The regex is
// compiled and reserved is always a list.
func NormalizeMinify(options map[string]any) (Minify, error) {
	out := Minify{Options: maps.Clone(options), Compress: options["compress"]}

	if b, ok := options["mangle"].(bool); ok {
		out.Mangle = &b
		return out, nil
	}

	mangle, _ := options["mangle"].(map[string]any)
	props, enabled := propertiesOf(mangle["properties"])

	if top, ok := options["properties"]; ok && top != nil {
		topProps, topEnabled := propertiesOf(top)
		if !topEnabled {
			props, enabled = nil, false
		} else {
			if props == nil {
				props = map[string]any{}
			}
			props = mergeShallow(props, topProps)
			enabled = true
		}
	}

	regex, hasRegex := truthy(options["regex"])
	reserved, hasReserved := truthy(options["reserved"])
	if hasRegex || hasReserved {
		if !enabled || props == nil {
			props, enabled = map[string]any{}, true
		}
		if _, ok := truthy(props["regex"]); !ok && hasRegex {
			props["regex"] = regex
		}
		if _, ok := truthy(props["reserved"]); !ok && hasReserved {
			props["reserved"] = reserved
		}
	}

	if !enabled {
		return out, nil
	}

	p := &Properties{Reserved: toStringList(props["reserved"])}
	if raw, ok := truthy(props["regex"]); ok {
		src := fmt.Sprint(raw)
		re, err := regexp.Compile(src)
		if err != nil {
			return Minify{}, fmt.Errorf("invalid mangle.properties.regex %q: %w", src, err)
		}
		p.Regex = re
	}
	out.Properties = p
	return out, nil
}

// MergeOptions returns base with overlay applied key by key; overlay wins.
func MergeOptions(base, overlay map[string]any) map[string]any {
	return mergeShallow(base, overlay)
}

// propertiesOf returns the properties option as a map and whether property
// mangling is switched on by it.
func propertiesOf(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return maps.Clone(t), true
	case bool:
		if t {
			return map[string]any{}, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func mergeShallow(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	maps.Copy(out, base)
	maps.Copy(out, overlay)
	return out
}

// truthy mirrors JavaScript truthiness for decoded JSON values.
func truthy(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case bool:
		return t, t
	case string:
		return t, t != ""
	case float64:
		return t, t != 0
	default:
		return t, true
	}
}

func toStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case string:
		return []string{t}
	case []string:
		return append([]string{}, t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}
