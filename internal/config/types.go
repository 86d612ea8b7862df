// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jvdx/jvdx/internal/format"
)

const (
	// TargetWeb builds for browsers.
	TargetWeb BuildTarget = "web"
	// TargetNode builds for Node.js.
	TargetNode BuildTarget = "node"

	// SourcemapExternal writes .map files next to the bundles.
	SourcemapExternal SourcemapMode = "true"
	// SourcemapNone disables source maps.
	SourcemapNone SourcemapMode = "false"
	// SourcemapInline embeds source maps in the bundles.
	SourcemapInline SourcemapMode = "inline"

	// CSSExternal extracts stylesheets into a .css file.
	CSSExternal CSSMode = "external"
	// CSSInline injects stylesheets from the JavaScript bundle.
	CSSInline CSSMode = "inline"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// legacyFormats is the default format list when modern output is disabled.
	legacyFormats = "es,cjs,umd"
)

var (
	// ErrInvalidBuildTarget is returned when a BuildTarget value is not recognized.
	ErrInvalidBuildTarget = errors.New("invalid build target")
	// ErrInvalidSourcemapMode is returned when a SourcemapMode value is not recognized.
	ErrInvalidSourcemapMode = errors.New("invalid sourcemap mode")
	// ErrInvalidCSSMode is returned when a CSSMode value is not recognized.
	ErrInvalidCSSMode = errors.New("invalid css mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidDebounce is the sentinel error wrapped by InvalidDebounceError.
	ErrInvalidDebounce = errors.New("invalid watch debounce")
	// ErrInvalidBuildConfig is the sentinel error wrapped by InvalidBuildConfigError.
	ErrInvalidBuildConfig = errors.New("invalid build config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// BuildTarget is the runtime a package is built for.
	// Defined locally to avoid coupling config to internal/build.
	BuildTarget string

	// InvalidBuildTargetError is returned when a BuildTarget value is not recognized.
	// It wraps ErrInvalidBuildTarget for errors.Is() compatibility.
	InvalidBuildTargetError struct {
		Value BuildTarget
	}

	// SourcemapMode selects source map output.
	SourcemapMode string

	// InvalidSourcemapModeError is returned when a SourcemapMode value is not recognized.
	InvalidSourcemapModeError struct {
		Value SourcemapMode
	}

	// CSSMode selects where stylesheets end up.
	CSSMode string

	// InvalidCSSModeError is returned when a CSSMode value is not recognized.
	InvalidCSSModeError struct {
		Value CSSMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// DebounceDuration is a Go duration string such as "100ms".
	DebounceDuration string

	// InvalidDebounceError is returned when a DebounceDuration does not parse
	// or is negative.
	InvalidDebounceError struct {
		Value DebounceDuration
		Err   error
	}

	// InvalidBuildConfigError collects field-level validation errors of a BuildConfig.
	InvalidBuildConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Build holds defaults for build options not given on the command line.
		Build BuildConfig `json:"build" mapstructure:"build" toml:"build"`
		// Watch configures watch mode.
		Watch WatchConfig `json:"watch" mapstructure:"watch" toml:"watch"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// BuildConfig holds build option defaults.
	BuildConfig struct {
		// Format is the comma separated format list. Empty derives it from Modern.
		Format string `json:"format,omitempty" mapstructure:"format" toml:"format,omitempty"`
		// Modern includes the modern format in the derived format list
		// (JVDX_MODERN).
		Modern bool `json:"modern" mapstructure:"modern" toml:"modern"`
		// Target is the runtime target.
		Target BuildTarget `json:"target" mapstructure:"target" toml:"target"`
		// Sourcemap selects source map output.
		Sourcemap SourcemapMode `json:"sourcemap" mapstructure:"sourcemap" toml:"sourcemap"`
		// Compress forces minification on or off. nil follows the target.
		Compress *bool `json:"compress,omitempty" mapstructure:"compress" toml:"compress,omitempty"`
		// PkgMain derives output names from package.json fields.
		PkgMain bool `json:"pkg_main" mapstructure:"pkg_main" toml:"pkg_main"`
		// CSS selects external or inline stylesheets.
		CSS CSSMode `json:"css" mapstructure:"css" toml:"css"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		// Debounce delays rebuilds until changes settle.
		Debounce DebounceDuration `json:"debounce" mapstructure:"debounce" toml:"debounce"`
		// ClearScreen clears the terminal before every rebuild.
		ClearScreen bool `json:"clear_screen" mapstructure:"clear_screen" toml:"clear_screen"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
	}
)

// Formats returns the configured format list, or the default list derived
// from Modern when none is set.
func (c BuildConfig) Formats() string {
	switch {
	case c.Format != "":
		return c.Format
	case c.Modern:
		return format.DefaultList
	default:
		return legacyFormats
	}
}

// IsValid returns whether the BuildConfig has valid fields.
func (c BuildConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Format != "" {
		if _, err := format.ParseList(c.Format); err != nil {
			errs = append(errs, err)
		}
	}
	if valid, fieldErrs := c.Target.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Sourcemap.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.CSS.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidBuildConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBuildConfigError.
func (e *InvalidBuildConfigError) Error() string {
	return fmt.Sprintf("invalid build config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidBuildConfig for errors.Is() compatibility.
func (e *InvalidBuildConfigError) Unwrap() error { return ErrInvalidBuildConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to Build.IsValid(), Watch.Debounce.IsValid() and
// UI.ColorScheme.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Build.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Watch.Debounce.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinErrors(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// String returns the string representation of the BuildTarget.
func (t BuildTarget) String() string { return string(t) }

// IsValid returns whether the BuildTarget is web or node.
func (t BuildTarget) IsValid() (bool, []error) {
	switch t {
	case TargetWeb, TargetNode:
		return true, nil
	default:
		return false, []error{&InvalidBuildTargetError{Value: t}}
	}
}

// Error implements the error interface for InvalidBuildTargetError.
func (e *InvalidBuildTargetError) Error() string {
	return fmt.Sprintf("invalid build target %q (valid: web, node)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidBuildTargetError) Unwrap() error { return ErrInvalidBuildTarget }

// String returns the string representation of the SourcemapMode.
func (m SourcemapMode) String() string { return string(m) }

// IsValid returns whether the SourcemapMode is one of the defined modes.
func (m SourcemapMode) IsValid() (bool, []error) {
	switch m {
	case SourcemapExternal, SourcemapNone, SourcemapInline:
		return true, nil
	default:
		return false, []error{&InvalidSourcemapModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidSourcemapModeError.
func (e *InvalidSourcemapModeError) Error() string {
	return fmt.Sprintf("invalid sourcemap mode %q (valid: true, false, inline)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidSourcemapModeError) Unwrap() error { return ErrInvalidSourcemapMode }

// String returns the string representation of the CSSMode.
func (m CSSMode) String() string { return string(m) }

// IsValid returns whether the CSSMode is external or inline.
func (m CSSMode) IsValid() (bool, []error) {
	switch m {
	case CSSExternal, CSSInline:
		return true, nil
	default:
		return false, []error{&InvalidCSSModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidCSSModeError.
func (e *InvalidCSSModeError) Error() string {
	return fmt.Sprintf("invalid css mode %q (valid: external, inline)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidCSSModeError) Unwrap() error { return ErrInvalidCSSMode }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Duration parses the debounce value. The zero value is zero.
func (d DebounceDuration) Duration() (time.Duration, error) {
	if d == "" {
		return 0, nil
	}
	return time.ParseDuration(string(d))
}

// IsValid returns whether the DebounceDuration parses to a non-negative duration.
func (d DebounceDuration) IsValid() (bool, []error) {
	v, err := d.Duration()
	if err == nil && v < 0 {
		err = errors.New("must not be negative")
	}
	if err != nil {
		return false, []error{&InvalidDebounceError{Value: d, Err: err}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDebounceError.
func (e *InvalidDebounceError) Error() string {
	return fmt.Sprintf("invalid watch debounce %q: %v", e.Value, e.Err)
}

// Unwrap returns ErrInvalidDebounce for errors.Is() compatibility.
func (e *InvalidDebounceError) Unwrap() error { return ErrInvalidDebounce }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Modern:    true,
			Target:    TargetWeb,
			Sourcemap: SourcemapExternal,
			PkgMain:   true,
			CSS:       CSSExternal,
		},
		Watch: WatchConfig{
			Debounce:    "100ms",
			ClearScreen: false,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
