// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"maps"
	"slices"

	"dario.cat/mergo"
)

// Kind distinguishes plugins from presets.
type Kind string

const (
	// KindPlugin is a compiler plugin.
	KindPlugin Kind = "plugin"
	// KindPreset is a compiler preset.
	KindPreset Kind = "preset"
)

// Options is the arbitrary option mapping of an item.
type Options map[string]any

// Item is one plugin or preset registration.
type Item struct {
	Kind Kind
	// Name is the declared module name, empty for plugins referenced by path.
	Name string
	// File is the resolved file path of the plugin module, if known.
	File    string
	Options Options
}

// Identity returns the key items are de-duplicated by.
func (i Item) Identity() string {
	if i.Name != "" {
		return i.Name
	}
	return i.File
}

// Clone returns a deep copy of i.
func (i Item) Clone() Item {
	i.Options = cloneOptions(i.Options)
	return i
}

// Merge folds the given lists into a new list. Items keep the position of
// their first appearance; a later item with the same identity is merged into
// it, its options deep-merged on top (later values win at the leaves, lists
// are replaced). The inputs are never modified.
func Merge(lists ...[]Item) []Item {
	var merged []Item
	for _, list := range lists {
		for _, item := range list {
			idx := slices.IndexFunc(merged, func(m Item) bool { return m.Identity() == item.Identity() })
			if idx < 0 {
				merged = append(merged, item.Clone())
				continue
			}
			existing := merged[idx]
			merged[idx] = Item{
				Kind:    existing.Kind,
				Name:    existing.Name,
				File:    firstNonEmpty(existing.File, item.File),
				Options: mergeOptions(existing.Options, item.Options),
			}
		}
	}
	return merged
}

// Find returns the item with the given identity.
func Find(items []Item, identity string) (Item, bool) {
	idx := slices.IndexFunc(items, func(i Item) bool { return i.Identity() == identity })
	if idx < 0 {
		return Item{}, false
	}
	return items[idx], true
}

// mergeOptions returns base deep-merged with override. Both arguments are
// cloned first because mergo merges nested maps in place.
func mergeOptions(base, override Options) Options {
	dst := cloneOptions(base)
	if dst == nil {
		dst = Options{}
	}
	src := cloneOptions(override)
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		// Shapes mergo cannot reconcile (a map replacing a scalar) fall
		// back to a shallow overwrite.
		maps.Copy(dst, src)
	}
	return dst
}

func cloneOptions(o Options) Options {
	if o == nil {
		return nil
	}
	return Options(cloneValue(map[string]any(o)).(map[string]any))
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case Options:
		return cloneValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
