// SPDX-License-Identifier: MPL-2.0

package jsname

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	scopePattern      = regexp.MustCompile(`(?i)@[a-z\d][\w\-.]+/`)
	leadingScope      = regexp.MustCompile(`^@.*/`)
	bareIdentifier    = regexp.MustCompile(`^[a-z_$][a-z0-9_\-$]*$`)
	invalidES3Ident   = regexp.MustCompile(`(^[^a-zA-Z]+)|[^\w.\-]|([^a-zA-Z0-9]+$)`)
	camelSeparators   = regexp.MustCompile(`[\s_.\-]+`)
	regexpSpecialRune = regexp.MustCompile(`[|\\{}()\[\]^$+*?.]`)
)

// RemoveScope strips every npm scope segment ("@scope/") from s.
//
//	RemoveScope("@scope/my-lib")        == "my-lib"
//	RemoveScope("path/to/@jvdx/core")   == "path/to/core"
func RemoveScope(s string) string {
	return scopePattern.ReplaceAllString(s, "")
}

// IsBareIdentifier reports whether name looks like a library that is usually
// exposed as a browser global (lowercase start, then alphanumerics, "_", "-" or "$").
func IsBareIdentifier(name string) bool {
	return bareIdentifier.MatchString(name)
}

// CamelCase converts hyphen, underscore, dot or space separated text to
// camelCase. The first character is lowercased; characters following a
// separator are uppercased.
func CamelCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := camelSeparators.Split(s, -1)
	var sb strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		if sb.Len() == 0 {
			runes[0] = unicode.ToLower(runes[0])
		} else {
			runes[0] = unicode.ToUpper(runes[0])
		}
		sb.WriteString(string(runes))
	}
	return sb.String()
}

// NormalizePackageName turns a package name into a variable name usable as a
// UMD global: the scope is removed, the name lowercased, characters that are
// not valid in an ES3 identifier dropped, and the result camelCased.
func NormalizePackageName(pkgName string) string {
	normalized := strings.ToLower(leadingScope.ReplaceAllString(pkgName, ""))
	return CamelCase(invalidES3Ident.ReplaceAllString(normalized, ""))
}

// EscapeRegexp escapes regular expression metacharacters in s. Hyphens are
// written as \x2d so the result is valid inside character classes as well.
func EscapeRegexp(s string) string {
	escaped := regexpSpecialRune.ReplaceAllStringFunc(s, func(m string) string { return `\` + m })
	return strings.ReplaceAll(escaped, "-", `\x2d`)
}
