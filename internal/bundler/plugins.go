// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/jvdx/jvdx/internal/build"
	"github.com/jvdx/jvdx/internal/mapping"
)

// skipResolve marks nested resolutions issued by the resolve plugin so the
// plugin does not see them twice.
type skipResolve struct{}

// resolvePlugin decides external imports, applies --alias and memoizes
// resolutions in cache. A nil cache disables memoization.
func resolvePlugin(t *build.Target, cache *build.Cache) api.Plugin {
	return api.Plugin{
		Name: "jvdx:resolve",
		Setup: func(pb api.PluginBuild) {
			pb.OnResolve(api.OnResolveOptions{Filter: ".*"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if args.Kind == api.ResolveEntryPoint || args.PluginData == (skipResolve{}) {
					return api.OnResolveResult{}, nil
				}

				if t.External.IsExternal(args.Path) {
					return externalResult(t, args.Path), nil
				}

				path, dir := args.Path, args.ResolveDir
				if replaced, ok := applyAlias(t.Aliases, path); ok {
					path = replaced
					if isRelative(path) {
						dir = t.Cwd
					}
				}

				key := dir + "\x00" + path
				if resolved, ok := cache.Lookup(key); ok {
					return api.OnResolveResult{Path: resolved}, nil
				}

				res := pb.Resolve(path, api.ResolveOptions{
					Importer:   args.Importer,
					ResolveDir: dir,
					Kind:       args.Kind,
					PluginData: skipResolve{},
				})
				if len(res.Errors) > 0 {
					return api.OnResolveResult{}, errors.New(res.Errors[0].Text)
				}
				if res.External || res.Namespace != "file" {
					return api.OnResolveResult{Path: res.Path, External: res.External, Namespace: res.Namespace}, nil
				}
				// Another entry of the build keeps its import path.
				if t.External.IsExternal(res.Path) {
					return externalResult(t, args.Path), nil
				}
				cache.Store(key, res.Path)
				return api.OnResolveResult{Path: res.Path}, nil
			})
		},
	}
}

func externalResult(t *build.Target, id string) api.OnResolveResult {
	if alias, ok := t.OutputAliases[id]; ok {
		id = alias
	}
	return api.OnResolveResult{Path: id, External: true}
}

// applyAlias rewrites id by the first alias matching it exactly or as a
// path prefix.
func applyAlias(aliases []mapping.Alias, id string) (string, bool) {
	for _, a := range aliases {
		if id == a.Find {
			return a.Replacement, true
		}
		if rest, ok := strings.CutPrefix(id, a.Find+"/"); ok {
			return strings.TrimSuffix(a.Replacement, "/") + "/" + rest, true
		}
	}
	return "", false
}

func isRelative(id string) bool {
	return id == "." || id == ".." || strings.HasPrefix(id, "./") || strings.HasPrefix(id, "../")
}

// shebangPlugin strips the entry's interpreter line so it is emitted once,
// through the banner.
func shebangPlugin(t *build.Target) api.Plugin {
	return api.Plugin{
		Name: "jvdx:shebang",
		Setup: func(pb api.PluginBuild) {
			filter := "^" + regexp.QuoteMeta(t.Entry) + "$"
			pb.OnLoad(api.OnLoadOptions{Filter: filter, Namespace: "file"}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				data, err := os.ReadFile(args.Path)
				if err != nil {
					return api.OnLoadResult{}, err
				}
				code, _ := build.StripShebang(string(data))
				return api.OnLoadResult{
					Contents:   &code,
					ResolveDir: filepath.Dir(args.Path),
					Loader:     scriptLoader(args.Path),
				}, nil
			})
		},
	}
}

func scriptLoader(path string) api.Loader {
	switch filepath.Ext(path) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	default:
		return api.LoaderJSX
	}
}

// inlineCSSPlugin compiles every imported stylesheet on its own and
// replaces it with a module that injects the styles into the document.
// CSS modules keep their class name export.
func inlineCSSPlugin(t *build.Target) api.Plugin {
	return api.Plugin{
		Name: "jvdx:inline-css",
		Setup: func(pb api.PluginBuild) {
			pb.OnLoad(api.OnLoadOptions{Filter: `\.css$`, Namespace: "file"}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				code, err := inlineStylesheet(t, args.Path)
				if err != nil {
					return api.OnLoadResult{}, err
				}
				return api.OnLoadResult{
					Contents:   &code,
					ResolveDir: filepath.Dir(args.Path),
					Loader:     api.LoaderJS,
				}, nil
			})
		},
	}
}

func inlineStylesheet(t *build.Target, path string) (string, error) {
	module := t.CSSModules.AppliesTo(path)
	stub := fmt.Sprintf("import %q;\n", "./"+filepath.Base(path))
	if module {
		stub = fmt.Sprintf("import s from %q;\nexport default s;\n", "./"+filepath.Base(path))
	}

	cssLoader := api.LoaderGlobalCSS
	if module {
		cssLoader = api.LoaderLocalCSS
	}
	ret := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   stub,
			ResolveDir: filepath.Dir(path),
			Sourcefile: filepath.Base(path) + ".js",
			Loader:     api.LoaderJS,
		},
		Bundle:           true,
		Write:            false,
		Outdir:           filepath.Join(t.Cwd, ".jvdx-inline-css"),
		Format:           api.FormatESModule,
		Loader:           map[string]api.Loader{".css": cssLoader},
		MinifyWhitespace: t.Compress,
		LogLevel:         api.LogLevelSilent,
	})
	if len(ret.Errors) > 0 {
		return "", errors.New(ret.Errors[0].Text)
	}

	var js, css string
	for _, f := range ret.OutputFiles {
		switch filepath.Ext(f.Path) {
		case ".js":
			js = string(f.Contents)
		case ".css":
			css = string(f.Contents)
		}
	}
	literal, err := json.Marshal(css)
	if err != nil {
		return "", err
	}
	inject := "if (typeof document !== \"undefined\") {\n" +
		"  var style = document.createElement(\"style\");\n" +
		"  style.textContent = " + string(literal) + ";\n" +
		"  document.head.appendChild(style);\n" +
		"}\n"
	return inject + js, nil
}
