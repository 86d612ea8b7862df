// SPDX-License-Identifier: MPL-2.0

// Package mapping parses the "key=value,key=value" arguments accepted by
// --globals, --define and --alias.
package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedPair is the sentinel wrapped by MalformedPairError.
var ErrMalformedPair = errors.New("malformed key=value pair")

var (
	quotedValue  = regexp.MustCompile(`^(['"])(.+)(['"])$`)
	literalValue = regexp.MustCompile(`(?i)^(true|false|\d+)$`)
)

type (
	// Pair is one parsed key=value item.
	Pair struct {
		Key   string
		Value string
	}

	// Alias maps an import specifier onto a replacement module.
	Alias struct {
		Find        string
		Replacement string
	}

	// ValueFunc rewrites a parsed pair. It receives value and key and returns
	// the replacement value and key.
	ValueFunc func(value, key string) (string, string)

	// MalformedPairError is returned for an item without "=" or with an empty key.
	MalformedPairError struct {
		Item string
	}
)

// Error implements the error interface.
func (e *MalformedPairError) Error() string {
	return fmt.Sprintf("malformed key=value pair %q", e.Item)
}

// Unwrap returns ErrMalformedPair so callers can use errors.Is for programmatic detection.
func (e *MalformedPairError) Unwrap() error { return ErrMalformedPair }

// ParsePairs splits s on commas and each item on its first "=". Blank items
// are skipped. When process is non-nil it rewrites every pair.
func ParsePairs(s string, process ValueFunc) ([]Pair, error) {
	var pairs []Pair
	for item := range strings.SplitSeq(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, value, ok := strings.Cut(item, "=")
		if !ok || key == "" {
			return nil, &MalformedPairError{Item: item}
		}
		if process != nil {
			value, key = process(value, key)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs, nil
}

// Parse is ParsePairs collected into a map. Later keys win.
func Parse(s string, process ValueFunc) (map[string]string, error) {
	pairs, err := ParsePairs(s, process)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.Key] = p.Value
	}
	return out, nil
}

// ParseAliases parses "react=preact,lodash=lodash-es".
func ParseAliases(s string) ([]Alias, error) {
	pairs, err := ParsePairs(s, nil)
	if err != nil {
		return nil, err
	}
	aliases := make([]Alias, len(pairs))
	for i, p := range pairs {
		aliases[i] = Alias{Find: p.Key, Replacement: p.Value}
	}
	return aliases, nil
}

// ReplacementExpression turns a --define value into the source expression
// substituted for key:
//
//	A="1"          -> A = "1" (quoted values are strings)
//	@assign=Object.assign -> assign = Object.assign (expressions)
//	A=1, B=true    -> literals
//	A=text         -> A = "text"
//
// It satisfies ValueFunc.
func ReplacementExpression(value, key string) (string, string) {
	if m := quotedValue.FindStringSubmatch(value); m != nil && m[1] == m[3] {
		return quote(m[2]), key
	}
	if strings.HasPrefix(key, "@") {
		return value, key[1:]
	}
	if literalValue.MatchString(value) {
		return value, key
	}
	return quote(value), key
}

func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
