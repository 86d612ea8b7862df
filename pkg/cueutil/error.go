// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// FormatError rewrites a CUE error as "<file>: <field path>: <message>",
// e.g. "config.cue: build.format: conflicting values "iife" and "es"".
// Several errors are listed one per line below a "validation failed"
// header. Non-CUE errors are wrapped with the file name.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	var ce cueerrors.Error
	if !errors.As(err, &ce) {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	list := cueerrors.Errors(err)

	lines := make([]string, 0, len(list))
	for _, e := range list {
		lines = append(lines, describe(e))
	}
	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// describe prefixes the message of e with its field path unless CUE
// already did.
func describe(e cueerrors.Error) string {
	path := formatPath(cueerrors.Path(e))
	msg := e.Error()
	if path == "" {
		return msg
	}
	if rest, ok := strings.CutPrefix(msg, path); ok {
		msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return path + ": " + msg
}

// formatPath joins CUE path selectors with dots, rendering list indices in
// brackets: ["build", "entries", "0"] becomes "build.entries[0]".
func formatPath(path []string) string {
	var sb strings.Builder
	for i, sel := range path {
		if _, err := strconv.Atoi(sel); err == nil && i > 0 {
			sb.WriteString("[" + sel + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(sel)
	}
	return sb.String()
}

// CheckFileSize rejects documents larger than maxSize bytes before they
// reach the CUE compiler.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if size := int64(len(data)); size > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, size, maxSize)
	}
	return nil
}
