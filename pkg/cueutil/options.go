// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize caps the documents ParseAndDecode accepts at 5 MiB.
const DefaultMaxFileSize int64 = 5 << 20

// Option tunes a ParseAndDecode call.
type Option func(*parseOptions)

type parseOptions struct {
	maxFileSize int64
	// concrete requires every field to have a final value. Schemas whose
	// fields are all optional are checked with concrete false.
	concrete bool
	filename string
}

func defaultOptions() parseOptions {
	return parseOptions{maxFileSize: DefaultMaxFileSize, concrete: true, filename: "<input>"}
}

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) { o.maxFileSize = size }
}

// WithConcrete toggles concrete validation, on by default.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) { o.concrete = concrete }
}

// WithFilename names the document in error messages. The empty name keeps
// "<input>".
func WithFilename(name string) Option {
	return func(o *parseOptions) {
		if name != "" {
			o.filename = name
		}
	}
}
