// SPDX-License-Identifier: MPL-2.0

// Package jsonobj provides a JSON object that remembers the order of its keys.
//
// Values are kept as raw JSON so that a decode/encode round trip of an
// unmodified object reproduces the input key order and number formatting.
package jsonobj

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

// ErrNotObject is returned when the decoded JSON value is not an object.
var ErrNotObject = errors.New("JSON value is not an object")

// Object is a JSON object with ordered keys.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// New returns an empty Object.
func New() *Object {
	return &Object{values: make(map[string]json.RawMessage)}
}

// Parse decodes data into an Object.
func Parse(data []byte) (*Object, error) {
	obj := New()
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return obj, nil
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.values[key]
	return ok
}

// Raw returns the raw JSON value stored under key.
func (o *Object) Raw(key string) (json.RawMessage, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Decode unmarshals the value stored under key into dst. It returns false
// when the key is missing or the value does not fit dst.
func (o *Object) Decode(key string, dst any) bool {
	raw, ok := o.Raw(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// String returns the value under key if it is a JSON string.
func (o *Object) String(key string) string {
	var s string
	if o.Decode(key, &s) {
		return s
	}
	return ""
}

// Object returns the value under key if it is a JSON object.
func (o *Object) Object(key string) (*Object, bool) {
	raw, ok := o.Raw(key)
	if !ok {
		return nil, false
	}
	child, err := Parse(raw)
	if err != nil {
		return nil, false
	}
	return child, true
}

// Set stores a raw value. New keys are appended; existing keys keep their position.
func (o *Object) Set(key string, value json.RawMessage) {
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = slices.Clone(value)
}

// Marshal encodes v like json.Marshal but leaves '<', '>' and '&' as is,
// so that keys and values written back to disk match what was read.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// SetValue marshals value and stores it under key.
func (o *Object) SetValue(key string, value any) error {
	raw, err := Marshal(value)
	if err != nil {
		return err
	}
	o.Set(key, raw)
	return nil
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(o.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	t, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	o.keys = nil
	o.values = make(map[string]json.RawMessage)
	for dec.More() {
		t, err = dec.Token()
		if err != nil {
			return err
		}
		key, ok := t.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %T", t)
		}
		var value json.RawMessage
		if err = dec.Decode(&value); err != nil {
			return err
		}
		o.Set(key, value)
	}

	if _, err = dec.Token(); err != nil {
		return err
	}
	if t, err = dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected trailing data after object: %v", t)
	}
	return nil
}
