// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/jvdx/jvdx/internal/build"
	"github.com/jvdx/jvdx/internal/cssmodules"
	"github.com/jvdx/jvdx/internal/format"
)

const useStrict = `"use strict";`

var formats = map[format.Format]api.Format{
	format.ES:     api.FormatESModule,
	format.Modern: api.FormatESModule,
	format.CJS:    api.FormatCommonJS,
	format.UMD:    api.FormatCommonJS,
}

var sourcemaps = map[build.Sourcemap]api.SourceMap{
	build.SourcemapExternal: api.SourceMapLinked,
	build.SourcemapInline:   api.SourceMapInline,
	build.SourcemapNone:     api.SourceMapNone,
}

// BuildOptions translates t into esbuild options. Output is kept in memory;
// the caller writes it.
func BuildOptions(t *build.Target, cache *build.Cache) api.BuildOptions {
	opts := api.BuildOptions{
		EntryPoints:   []string{t.Entry},
		Outfile:       t.Output.Path,
		AbsWorkingDir: t.Cwd,
		Bundle:        true,
		Write:         false,
		LogLevel:      api.LogLevelSilent,
		Format:        formats[t.Format],
		Sourcemap:     sourcemaps[t.Sourcemap],
		Define:        t.Plugins.Replacements(),
		JSX:           api.JSXTransform,
		JSXFactory:    t.JSX,
		Loader:        loaders(t),
		Plugins:       []api.Plugin{resolvePlugin(t, cache)},
	}

	if t.Platform == build.TargetNode {
		opts.Platform = api.PlatformNode
		opts.Engines = engines(t)
	} else {
		opts.Platform = api.PlatformBrowser
		opts.Target = jsTarget(t)
	}

	if t.TSConfig != "" {
		opts.Tsconfig = t.TSConfig
		if !filepath.IsAbs(opts.Tsconfig) {
			opts.Tsconfig = filepath.Join(t.Cwd, opts.Tsconfig)
		}
	}

	if banner := bannerOf(t); banner != "" {
		opts.Banner = map[string]string{"js": banner}
	}
	if t.Format == format.UMD {
		opts.Footer = map[string]string{"js": umdFooter}
	}

	if t.Banner != "" {
		opts.Plugins = append(opts.Plugins, shebangPlugin(t))
	}
	if t.CSSInline {
		opts.Plugins = append(opts.Plugins, inlineCSSPlugin(t))
	}

	applyMinify(&opts, t)
	return opts
}

// bannerOf joins the shebang, the strict mode directive and the UMD
// wrapper, in that order.
func bannerOf(t *build.Target) string {
	var parts []string
	if t.Banner != "" {
		parts = append(parts, t.Banner)
	}
	if t.Strict && !t.Format.IsModule() {
		parts = append(parts, useStrict)
	}
	if t.Format == format.UMD {
		parts = append(parts, umdBanner(t))
	}
	return strings.Join(parts, "\n")
}

// loaders maps file extensions onto esbuild loaders. Plain .js may carry
// JSX. Stylesheets follow the CSS modules setting.
func loaders(t *build.Target) map[string]api.Loader {
	l := map[string]api.Loader{".js": api.LoaderJSX}
	if t.CSSInline {
		return l
	}
	switch t.CSSModules.Mode {
	case cssmodules.ModeAll, cssmodules.ModeCustom:
		l[".css"] = api.LoaderLocalCSS
	case cssmodules.ModeOff:
		l[".css"] = api.LoaderGlobalCSS
		l[".module.css"] = api.LoaderGlobalCSS
	}
	return l
}

// applyMinify enables minification for compressed builds and wires the
// name cache into property mangling.
func applyMinify(opts *api.BuildOptions, t *build.Target) {
	if !t.Compress {
		return
	}
	opts.MinifyWhitespace = true
	opts.MinifySyntax = true
	opts.MinifyIdentifiers = true

	if t.NameCache == nil {
		return
	}
	minify := t.NameCache.Minify
	if minify.Mangle != nil && !*minify.Mangle {
		opts.MinifyIdentifiers = false
	}
	props := minify.Properties
	if props == nil || props.Regex == nil {
		return
	}
	opts.MangleProps = props.Regex.String()
	if len(props.Reserved) > 0 {
		quoted := make([]string, len(props.Reserved))
		for i, r := range props.Reserved {
			quoted[i] = regexp.QuoteMeta(r)
		}
		opts.ReserveProps = "^(" + strings.Join(quoted, "|") + ")$"
	}
	if t.NameCache.Loaded() {
		opts.MangleCache = t.NameCache.Mangled()
	}
}
