// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"encoding/json"
	"strings"

	"github.com/jvdx/jvdx/internal/build"
	"github.com/jvdx/jvdx/internal/external"
)

// umdFooter closes the factory opened by umdBanner.
const umdFooter = "});"

// umdBanner opens a universal module wrapper around a CommonJS body.
// Under a CommonJS loader the factory's exports become module.exports;
// otherwise they are assigned to the global name, external imports are
// read from the globals table and a lone default export is unwrapped.
func umdBanner(t *build.Target) string {
	var globals external.Globals
	if t.External != nil {
		globals = t.External.Globals
	}
	if globals == nil {
		globals = external.Globals{}
	}
	table, _ := json.Marshal(globals)
	name, _ := json.Marshal(t.Name)
	extend := "false"
	if t.ExtendGlobal {
		extend = "true"
	}

	var b strings.Builder
	b.WriteString("(function (g, f) {\n")
	b.WriteString("  var m = { exports: {} };\n")
	b.WriteString("  var G = " + string(table) + ";\n")
	b.WriteString("  var r = typeof require === \"function\" ? require : function (id) {\n")
	b.WriteString("    var n = G[id] || G[id.split(\"/\").slice(0, id.charAt(0) === \"@\" ? 2 : 1).join(\"/\")];\n")
	b.WriteString("    return n ? g[n] : undefined;\n")
	b.WriteString("  };\n")
	b.WriteString("  f(m, m.exports, r);\n")
	b.WriteString("  var e = m.exports;\n")
	b.WriteString("  if (e && e.__esModule && Object.keys(e).length === 1 && \"default\" in e) e = e.default;\n")
	b.WriteString("  if (typeof module === \"object\" && typeof exports === \"object\") { module.exports = e; return; }\n")
	b.WriteString("  var p = " + string(name) + ".split(\".\"), o = g;\n")
	b.WriteString("  for (var i = 0; i < p.length - 1; i++) o = o[p[i]] = o[p[i]] || {};\n")
	b.WriteString("  var k = p[p.length - 1];\n")
	b.WriteString("  o[k] = " + extend + " ? Object.assign(o[k] || {}, e) : e;\n")
	b.WriteString("})(typeof globalThis !== \"undefined\" ? globalThis : this || self, function (module, exports, require) {")
	return b.String()
}
