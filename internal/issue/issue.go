// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	NoEntryId Id = iota + 1
	ManifestReadFailedId
	ConfigLoadFailedId
	InvalidOptionId
	CompileFailedId
	ToolNotFoundId
	ToolFailedId
	UnsafeCleanId
	WatchFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	noEntryIssue = &Issue{
		id: NoEntryId,
		mdMsg: `
# No entry module found!

jvdx could not find a module to build.

## Search order:
1. Entries given on the command line (files or glob patterns)
2. The ` + "`source`" + ` field of package.json
3. ` + "`src/index`" + ` and ` + "`index`" + ` with a .ts, .tsx, .js, .jsx, .mjs or .cjs extension
4. The ` + "`module`" + ` field of package.json

## Things you can try:
- Create ` + "`src/index.js`" + `
- Point package.json at your entry:
~~~json
{ "source": "src/main.ts" }
~~~
- Pass the entry explicitly:
~~~
$ jvdx build src/main.ts
~~~`,
		extLinks: []HttpLink{"https://docs.npmjs.com/cli/configuring-npm/package-json"},
	}

	manifestReadFailedIssue = &Issue{
		id: ManifestReadFailedId,
		mdMsg: `
# Could not read package.json!

jvdx reads package.json for the package name, entry and output fields.
Without it the directory name is used as the package name and defaults
apply everywhere else.

## Things you can try:
- Create one:
~~~
$ npm init -y
~~~
- Check the file is valid JSON (no trailing commas, no comments)
- Run with ` + "`--cwd`" + ` pointing at the package directory`,
		extLinks: []HttpLink{"https://docs.npmjs.com/cli/configuring-npm/package-json"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the jvdx configuration.

## Configuration sources (later wins):
- ~/.config/jvdx/config.cue (Linux; ~/Library/Application Support/jvdx on macOS, %APPDATA%\jvdx on Windows)
- ./jvdx.toml in the package directory
- JVDX_* environment variables

## Things you can try:
- Print the effective configuration:
~~~
$ jvdx config show
~~~
- Write a default configuration file:
~~~
$ jvdx config init
~~~

## Example configuration:
~~~cue
build: {
	format:    "modern,es,cjs,umd"
	target:    "web"
	sourcemap: "true"
}
ui: verbose: false
~~~`,
	}

	invalidOptionIssue = &Issue{
		id: InvalidOptionId,
		mdMsg: `
# Invalid build option!

One of the build options has a value jvdx does not understand.

## Accepted values:
- **--format**: a comma list of ` + "`modern`, `es` (or `esm`), `cjs`, `umd`" + `
- **--target**: ` + "`web` or `node`" + `
- **--sourcemap**: ` + "`true`, `false` or `inline`" + `
- **--css**: ` + "`external` or `inline`" + `
- **--define**: ` + "`KEY=value,@EXPR_KEY=expression`" + `
- **--alias**: ` + "`from=to,...`" + `

## Things you can try:
~~~
$ jvdx build --help
~~~`,
	}

	compileFailedIssue = &Issue{
		id: CompileFailedId,
		mdMsg: `
# Build failed!

The bundler reported errors for one of the targets. Nothing after the
failing target was written.

## Common causes:
- A syntax error in a source file
- An import that cannot be resolved (missing dependency or typo)
- A ` + "`--define`" + ` expression that is not a valid identifier or literal

## Things you can try:
- Install missing dependencies:
~~~
$ npm install
~~~
- Mark a package as external instead of bundling it:
~~~
$ jvdx build --external react,react-dom
~~~
- Rebuild with ` + "`--verbose`" + ` to see each target as it compiles`,
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Tool not installed!

This command runs a JavaScript tool that is neither on your PATH nor in
` + "`node_modules/.bin`" + `.

## Things you can try:
- Install it as a dev dependency, for example:
~~~
$ npm install --save-dev eslint prettier jest typescript lint-staged
~~~
- Run jvdx from the package directory so ` + "`node_modules/.bin`" + ` is found`,
	}

	toolFailedIssue = &Issue{
		id: ToolFailedId,
		mdMsg: `
# Tool exited with an error!

The wrapped tool ran and reported a failure. Its own output above explains
what went wrong; jvdx exits with the same status.

## Things you can try:
- Rerun with the tool's own flags, they are passed through unchanged:
~~~
$ jvdx lint --fix
$ jvdx test --watch
~~~`,
	}

	unsafeCleanIssue = &Issue{
		id: UnsafeCleanId,
		mdMsg: `
# Refusing to clean!

` + "`--clean`" + ` removes the output directory before building, and the
output directory contains the package itself.

## Things you can try:
- Build into a subdirectory:
~~~
$ jvdx build --output dist --clean
~~~
- Set ` + "`main`" + ` in package.json to a file below a build directory`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# The file watcher stopped!

The operating system refused to watch more files. Every directory of the
package costs one watch; ` + "`node_modules`" + ` and ` + "`.git`" + ` are skipped.

## Things you can try:
- Raise the inotify limit on Linux:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~
- Raise the open file limit:
~~~
$ ulimit -n 4096
~~~
- Run ` + "`jvdx watch`" + ` from the package directory, not the monorepo root`,
		extLinks: []HttpLink{"https://github.com/fsnotify/fsnotify#faq"},
	}

	issues = map[Id]*Issue{
		noEntryIssue.Id():            noEntryIssue,
		manifestReadFailedIssue.Id(): manifestReadFailedIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		invalidOptionIssue.Id():      invalidOptionIssue,
		compileFailedIssue.Id():      compileFailedIssue,
		toolNotFoundIssue.Id():       toolNotFoundIssue,
		toolFailedIssue.Id():         toolFailedIssue,
		unsafeCleanIssue.Id():        unsafeCleanIssue,
		watchFailedIssue.Id():        watchFailedIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
