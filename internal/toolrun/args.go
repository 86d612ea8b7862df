// SPDX-License-Identifier: MPL-2.0

// Package toolrun runs the external JavaScript tools wrapped by jvdx
// (eslint, prettier, jest, tsc, lint-staged) and cleans build products.
package toolrun

import (
	"slices"
	"strings"
)

type (
	// Flag is one named option. Value is a bool or a string.
	Flag struct {
		Name  string
		Value any
	}

	// FlagSet is an ordered option list.
	FlagSet []Flag

	// Options controls Args.
	Options struct {
		// Filter names flags that are consumed by jvdx and never forwarded.
		Filter []string
		// Defaults replace the arguments when no flag was forwarded.
		Defaults []string
		// Required are appended when not already present.
		Required []string
	}
)

// Set returns fs with name set to value, replacing an earlier value in place.
func (fs FlagSet) Set(name string, value any) FlagSet {
	out := slices.Clone(fs)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Flag{Name: name, Value: value})
}

// Lookup returns the value of name.
func (fs FlagSet) Lookup(name string) (any, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Args serializes fs into command line arguments: false becomes --no-name,
// true becomes --name and a non-empty string becomes --name value. When
// nothing is forwarded Defaults are used. Required arguments missing from
// the result are appended.
func Args(fs FlagSet, opts Options) []string {
	var args []string
	for _, f := range fs {
		if slices.Contains(opts.Filter, f.Name) {
			continue
		}
		switch v := f.Value.(type) {
		case bool:
			if v {
				args = append(args, "--"+f.Name)
			} else {
				args = append(args, "--no-"+f.Name)
			}
		case string:
			if v != "" {
				args = append(args, "--"+f.Name, v)
			}
		}
	}

	if len(args) == 0 {
		args = slices.Clone(opts.Defaults)
	}
	for _, r := range opts.Required {
		if !slices.Contains(args, r) {
			args = append(args, r)
		}
	}
	return args
}

// ParseFlags splits raw command line arguments into flags and positional
// arguments. "--name=value" and "--name value" set a string, a bare
// "--name" sets true and "--no-name" sets false. Everything after "--" is
// positional.
func ParseFlags(raw []string) (FlagSet, []string) {
	var (
		fs         FlagSet
		positional []string
	)
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if arg == "--" {
			positional = append(positional, raw[i+1:]...)
			break
		}
		name, ok := strings.CutPrefix(arg, "--")
		if !ok || name == "" {
			positional = append(positional, arg)
			continue
		}
		if n, v, found := strings.Cut(name, "="); found {
			fs = fs.Set(n, v)
			continue
		}
		if n, neg := strings.CutPrefix(name, "no-"); neg {
			fs = fs.Set(n, false)
			continue
		}
		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			fs = fs.Set(name, raw[i+1])
			i++
			continue
		}
		fs = fs.Set(name, true)
	}
	return fs, positional
}
