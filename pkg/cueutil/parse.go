// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseResult holds a decoded document and the unified value it came from.
type ParseResult[T any] struct {
	Value   *T
	Unified cue.Value
}

// ParseAndDecode unifies data with the definition at schemaPath (e.g.
// "#Config") of schema, validates the result and decodes it into T.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	def, err := lookupDefinition(ctx, schema, schemaPath)
	if err != nil {
		return nil, err
	}

	doc := ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := doc.Err(); err != nil {
		return nil, FormatError(err, o.filename)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, o.filename)
	}

	res := &ParseResult[T]{Value: new(T), Unified: unified}
	if err := unified.Decode(res.Value); err != nil {
		return nil, FormatError(err, o.filename)
	}
	return res, nil
}

// ParseAndDecodeString is ParseAndDecode with a string schema, the form
// go:embed produces for .cue files.
func ParseAndDecodeString[T any](schema string, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	return ParseAndDecode[T]([]byte(schema), data, schemaPath, opts...)
}

// lookupDefinition compiles schema and returns the value at path. Failures
// here are programming errors in the embedded schema, not user errors.
func lookupDefinition(ctx *cue.Context, schema []byte, path string) (cue.Value, error) {
	root := ctx.CompileBytes(schema, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: compile schema: %w", err)
	}
	def := root.LookupPath(cue.ParsePath(path))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", path, err)
	}
	return def, nil
}
