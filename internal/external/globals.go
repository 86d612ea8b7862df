// SPDX-License-Identifier: MPL-2.0

package external

import (
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// Lookup returns the global name bound to id, matching id itself first and
// then its package root for subpath imports ("lodash/debounce" -> "lodash").
func (g Globals) Lookup(id string) (string, bool) {
	if name, ok := g[id]; ok {
		return name, true
	}
	root := id
	if strings.HasPrefix(root, "@") {
		if parts := strings.SplitN(root, "/", 3); len(parts) >= 2 {
			root = parts[0] + "/" + parts[1]
		}
	} else if i := strings.IndexByte(root, '/'); i > 0 {
		root = root[:i]
	}
	name, ok := g[root]
	return name, ok
}

// IDs returns the module ids in sorted order.
func (g Globals) IDs() []string {
	ids := maps.Keys(g)
	slices.Sort(ids)
	return ids
}

// String renders the table as "id=Global,..." sorted by id.
func (g Globals) String() string {
	ids := g.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id + "=" + g[id]
	}
	return strings.Join(parts, ",")
}
