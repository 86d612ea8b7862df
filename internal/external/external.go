// SPDX-License-Identifier: MPL-2.0

// Package external decides which imports stay out of a bundle and which
// global variable each external is bound to in UMD builds.
package external

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/jvdx/jvdx/internal/mapping"
	"github.com/jvdx/jvdx/pkg/jsname"
)

const (
	// None is the --external and --globals value that disables the feature.
	None = "none"
	// TargetNode is the runtime target that externalizes Node builtins.
	TargetNode = "node"
	// nodeProtocol matches "node:" prefixed imports.
	nodeProtocol = "node:.*"
)

type (
	// Pattern is one external identifier: a literal module name, or a
	// regular expression supplied on the command line.
	Pattern struct {
		Value   string
		IsRegex bool
	}

	// Spec is the ordered list of external patterns.
	Spec []Pattern

	// Globals maps an external module id to its global variable name.
	Globals map[string]string

	// Request holds everything Classify needs for one build target.
	Request struct {
		// Entry is the entry being built; every other entry is external to it.
		Entry string
		// Entries is the full entry list of the build.
		Entries []string
		// Target is the runtime target ("node" or "web").
		Target string
		// Dependencies and PeerDependencies come from the manifest.
		Dependencies     []string
		PeerDependencies []string
		// External is the raw --external value: "", "none" or a comma list.
		External string
		// Globals is the raw --globals value: "", "none" or "id=Global,...".
		Globals string
		// Aliases are import specifiers rewritten by --alias; never external.
		Aliases []string
	}

	// Result is the classification of one build target.
	Result struct {
		Spec      Spec
		Predicate *regexp.Regexp
		Globals   Globals
		aliases   []string
		multi     bool
	}
)

// Literal returns a literal pattern.
func Literal(name string) Pattern { return Pattern{Value: name} }

// Regex returns a regular expression pattern.
func Regex(expr string) Pattern { return Pattern{Value: expr, IsRegex: true} }

// Source returns the pattern as regular expression source.
func (p Pattern) Source() string {
	if p.IsRegex {
		return p.Value
	}
	return jsname.EscapeRegexp(p.Value)
}

// Classify builds the external list, its matching predicate and the UMD
// globals table. It fails only for an invalid --external expression or a
// malformed --globals mapping.
func Classify(req Request) (*Result, error) {
	spec := make(Spec, 0, len(alwaysExternal)+len(req.Entries))
	for _, name := range alwaysExternal {
		spec = append(spec, Literal(name))
	}
	for _, e := range req.Entries {
		if e != req.Entry {
			spec = append(spec, Literal(e))
		}
	}

	if req.Target == TargetNode {
		spec = append(spec, Regex(nodeProtocol))
		for _, name := range nodeBuiltins {
			spec = append(spec, Literal(name))
		}
	}

	switch ext := strings.TrimSpace(req.External); ext {
	case None:
	case "":
		spec = appendLiterals(spec, req.PeerDependencies)
		spec = appendLiterals(spec, req.Dependencies)
	default:
		spec = appendLiterals(spec, req.PeerDependencies)
		for item := range strings.SplitSeq(ext, ",") {
			if item = strings.TrimSpace(item); item != "" {
				spec = append(spec, Regex(item))
			}
		}
	}

	predicate, err := spec.Compile()
	if err != nil {
		return nil, err
	}

	globals, err := deriveGlobals(spec, req.Globals)
	if err != nil {
		return nil, err
	}

	return &Result{
		Spec:      spec,
		Predicate: predicate,
		Globals:   globals,
		aliases:   slices.Clone(req.Aliases),
		multi:     len(req.Entries) > 1,
	}, nil
}

// Compile joins the patterns into one anchored alternation that also
// matches subpaths: ^(a|b)($|/).
func (s Spec) Compile() (*regexp.Regexp, error) {
	sources := make([]string, len(s))
	for i, p := range s {
		if p.IsRegex {
			if _, err := regexp.Compile(p.Value); err != nil {
				return nil, fmt.Errorf("invalid --external expression %q: %w", p.Value, err)
			}
		}
		sources[i] = p.Source()
	}
	return regexp.Compile("^(" + strings.Join(sources, "|") + ")($|/)")
}

// IsExternal reports whether the import id is left out of the bundle.
// Aliased ids are always bundled, "." refers to the package itself in
// multi-entry builds, and an empty spec bundles everything.
func (r *Result) IsExternal(id string) bool {
	if r.multi && id == "." {
		return true
	}
	if slices.Contains(r.aliases, id) {
		return false
	}
	if len(r.Spec) == 0 {
		return false
	}
	return r.Predicate.MatchString(id)
}

func appendLiterals(spec Spec, names []string) Spec {
	for _, name := range names {
		spec = append(spec, Literal(name))
	}
	return spec
}

func deriveGlobals(spec Spec, override string) (Globals, error) {
	globals := Globals{}
	for _, p := range spec {
		if jsname.IsBareIdentifier(p.Value) {
			globals[p.Value] = jsname.CamelCase(p.Value)
		}
	}

	if override == "" || override == None {
		return globals, nil
	}
	explicit, err := mapping.Parse(override, nil)
	if err != nil {
		return nil, fmt.Errorf("parse --globals: %w", err)
	}
	for id, name := range explicit {
		globals[id] = name
	}
	return globals, nil
}
