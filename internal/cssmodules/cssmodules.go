// SPDX-License-Identifier: MPL-2.0

// Package cssmodules interprets the --css-modules option.
package cssmodules

import "strings"

const (
	// ModeSuffix scopes only files named *.module.css. It is the default.
	ModeSuffix Mode = iota
	// ModeAll scopes every imported stylesheet.
	ModeAll
	// ModeOff disables scoping.
	ModeOff
	// ModeCustom scopes every stylesheet with a caller supplied name pattern.
	ModeCustom
)

const (
	// ScopedNameWatch is the class name pattern used in watch mode.
	ScopedNameWatch = "_[name]__[local]__[hash:base64:5]"
	// ScopedNameBuild is the class name pattern used for one-off builds.
	ScopedNameBuild = "_[hash:base64:5]"

	moduleSuffix = ".module.css"
)

type (
	// Mode selects which stylesheets are treated as CSS modules.
	Mode int

	// Setting is the parsed form of the --css-modules option.
	Setting struct {
		Mode Mode
		// Pattern is the scoped name pattern for ModeCustom.
		Pattern string
	}
)

// Parse reads the option value. The flag arrives as a string from the command
// line, so "true", "false" and "null" are mapped onto their modes; an empty
// value is the default. Any other value is a scoped name pattern.
func Parse(value string) Setting {
	switch strings.TrimSpace(value) {
	case "true":
		return Setting{Mode: ModeAll}
	case "false":
		return Setting{Mode: ModeOff}
	case "null", "":
		return Setting{Mode: ModeSuffix}
	default:
		return Setting{Mode: ModeCustom, Pattern: value}
	}
}

// Enabled reports whether any stylesheet may be scoped.
func (s Setting) Enabled() bool { return s.Mode != ModeOff }

// AppliesTo reports whether the stylesheet at path is compiled as a module.
func (s Setting) AppliesTo(path string) bool {
	switch s.Mode {
	case ModeAll, ModeCustom:
		return strings.HasSuffix(path, ".css")
	case ModeSuffix:
		return strings.HasSuffix(path, moduleSuffix)
	default:
		return false
	}
}

// ScopedName returns the class name pattern, or "" when modules are off.
func (s Setting) ScopedName(watch bool) string {
	switch {
	case s.Mode == ModeOff:
		return ""
	case s.Mode == ModeCustom:
		return s.Pattern
	case watch:
		return ScopedNameWatch
	default:
		return ScopedNameBuild
	}
}

// String renders the setting back into its option form.
func (s Setting) String() string {
	switch s.Mode {
	case ModeAll:
		return "true"
	case ModeOff:
		return "false"
	case ModeCustom:
		return s.Pattern
	default:
		return "null"
	}
}
