// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/evanw/esbuild/pkg/api"

	"github.com/jvdx/jvdx/internal/build"
)

const (
	// defaultNodeVersion is used when neither the manifest nor the preset
	// names a node version.
	defaultNodeVersion = "14"
	// maxNodeMajor bounds the search for the lowest version of a range.
	maxNodeMajor = 40
	maxNodeMinor = 30
)

var versionLiteral = regexp.MustCompile(`\d+(?:\.\d+){0,2}`)

// jsTarget returns the language level of a browser build. Modern bundles
// target runtimes with native module support.
func jsTarget(t *build.Target) api.Target {
	if t.Modern() {
		return api.ES2017
	}
	return api.ES2015
}

// engines returns the runtime constraints of a node build.
func engines(t *build.Target) []api.Engine {
	if t.Platform != build.TargetNode {
		return nil
	}
	return []api.Engine{{Name: api.EngineNode, Version: nodeVersion(t)}}
}

// nodeVersion returns the lowest node version accepted by the manifest
// engines.node range. Without a usable range the preset target is used.
func nodeVersion(t *build.Target) string {
	if v, ok := minVersion(t.NodeEngines); ok {
		return v
	}
	if v, ok := t.Plugins.PresetTargets()["node"]; ok {
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return defaultNodeVersion
}

// minVersion returns the lowest version satisfying the range. The versions
// named in the range are tried before a scan over major.minor releases.
func minVersion(rangeExpr string) (string, bool) {
	rangeExpr = strings.TrimSpace(rangeExpr)
	if rangeExpr == "" || rangeExpr == "*" {
		return "", false
	}
	c, err := semver.NewConstraint(rangeExpr)
	if err != nil {
		return "", false
	}

	var best *semver.Version
	for _, lit := range versionLiteral.FindAllString(rangeExpr, -1) {
		v, err := semver.NewVersion(lit)
		if err != nil || !c.Check(v) {
			continue
		}
		if best == nil || v.LessThan(best) {
			best = v
		}
	}
	for major := uint64(0); major <= maxNodeMajor; major++ {
		for minor := uint64(0); minor <= maxNodeMinor; minor++ {
			v := semver.New(major, minor, 0, "", "")
			if best != nil && !v.LessThan(best) {
				break
			}
			if c.Check(v) {
				best = v
				break
			}
		}
	}
	if best == nil {
		return "", false
	}
	return best.String(), true
}
