// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles CUE documents against an embedded schema.
//
// ParseAndDecode compiles the schema, unifies the user document with one of
// its definitions, validates the result and decodes it:
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[map[string]any](
//	    schema, data, "#Config",
//	    cueutil.WithFilename("config.cue"),
//	    cueutil.WithConcrete(false),
//	)
//
// Errors carry the JSON path of the offending field.
package cueutil
