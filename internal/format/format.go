// SPDX-License-Identifier: MPL-2.0

// Package format parses the requested output format list.
package format

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// ES is an ES module bundle.
	ES Format = "es"
	// CJS is a CommonJS bundle.
	CJS Format = "cjs"
	// UMD is a universal module bundle usable as a browser global.
	UMD Format = "umd"
	// Modern is an ES module bundle targeting runtimes with native module support.
	Modern Format = "modern"

	// aliasESM is accepted on input and normalized to ES.
	aliasESM = "esm"

	// DefaultList is the format list used when none is requested.
	DefaultList = "modern,es,cjs,umd"
)

// ErrInvalidFormat is returned when a Format value is not one of the defined formats.
var ErrInvalidFormat = errors.New("invalid format")

type (
	// Format is an output module convention.
	Format string

	// InvalidFormatError is returned when a Format value is not recognized.
	// It wraps ErrInvalidFormat for errors.Is() compatibility.
	InvalidFormatError struct {
		Value Format
	}
)

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format %q (valid: es, cjs, umd, modern)", e.Value)
}

// Unwrap returns ErrInvalidFormat so callers can use errors.Is for programmatic detection.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// All returns every format in canonical order.
func All() []Format {
	return []Format{CJS, ES, Modern, UMD}
}

// Validate returns an error if f is not a known format.
func (f Format) Validate() error {
	switch f {
	case ES, CJS, UMD, Modern:
		return nil
	default:
		return &InvalidFormatError{Value: f}
	}
}

// IsModule reports whether f emits ES module syntax.
func (f Format) IsModule() bool {
	return f == ES || f == Modern
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// ParseList parses a comma separated format list. "esm" is read as "es",
// duplicates are dropped keeping the first occurrence, and "cjs" is moved to
// the front so its compilation seeds caches used by the others. Blank items
// are ignored; an empty list yields DefaultList.
func ParseList(s string) ([]Format, error) {
	if strings.TrimSpace(s) == "" {
		s = DefaultList
	}

	var formats []Format
	for item := range strings.SplitSeq(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if item == aliasESM {
			item = string(ES)
		}
		f := Format(item)
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}

	slices.SortStableFunc(formats, func(a, b Format) int {
		switch {
		case a == b:
			return 0
		case a == CJS:
			return -1
		case b == CJS:
			return 1
		default:
			return 0
		}
	})
	return formats, nil
}

// Join renders formats back to the comma separated form.
func Join(formats []Format) string {
	parts := make([]string, len(formats))
	for i, f := range formats {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}
