// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"

	"github.com/jvdx/jvdx/pkg/jsonobj"
)

// ExportsKind discriminates the variants of an ExportsNode.
type ExportsKind int

const (
	// ExportsAbsent is an unset, null or unusable "exports" value.
	ExportsAbsent ExportsKind = iota
	// ExportsPath is a plain path string.
	ExportsPath
	// ExportsMapping is an object of subpaths or conditions.
	ExportsMapping
)

// ExportsNode is one node of the "exports" field: either a path or a
// mapping from subpath/condition keys to child nodes.
type ExportsNode struct {
	Kind     ExportsKind
	Path     string
	Keys     []string
	Children map[string]ExportsNode
}

// PathNode returns a path leaf.
func PathNode(p string) ExportsNode {
	if p == "" {
		return ExportsNode{}
	}
	return ExportsNode{Kind: ExportsPath, Path: p}
}

// MappingNode returns a mapping node with the given keys, in order.
func MappingNode(keys []string, children map[string]ExportsNode) ExportsNode {
	return ExportsNode{Kind: ExportsMapping, Keys: keys, Children: children}
}

// IsZero reports whether the node is absent.
func (n ExportsNode) IsZero() bool {
	return n.Kind == ExportsAbsent
}

// Child returns the child under key, or an absent node.
func (n ExportsNode) Child(key string) ExportsNode {
	if n.Kind != ExportsMapping {
		return ExportsNode{}
	}
	return n.Children[key]
}

// Walk descends the tree looking for the module entry point: the "."
// subpath first, then the "import" and "module" conditions, and "default"
// only when includeDefault is set. It returns "" when no path is found.
func (n ExportsNode) Walk(includeDefault bool) string {
	switch n.Kind {
	case ExportsPath:
		return n.Path
	case ExportsMapping:
		next := firstPresent(n, ".", "import", "module")
		if next.IsZero() && includeDefault {
			next = n.Child("default")
		}
		return next.Walk(includeDefault)
	default:
		return ""
	}
}

func firstPresent(n ExportsNode, keys ...string) ExportsNode {
	for _, key := range keys {
		if child := n.Child(key); !child.IsZero() {
			return child
		}
	}
	return ExportsNode{}
}

func parseExports(data json.RawMessage) ExportsNode {
	if len(data) == 0 {
		return ExportsNode{}
	}
	var s string
	if json.Unmarshal(data, &s) == nil {
		return PathNode(s)
	}
	obj, err := jsonobj.Parse(data)
	if err != nil {
		return ExportsNode{}
	}
	keys := obj.Keys()
	children := make(map[string]ExportsNode, len(keys))
	for _, key := range keys {
		v, _ := obj.Raw(key)
		children[key] = parseExports(v)
	}
	return MappingNode(keys, children)
}
