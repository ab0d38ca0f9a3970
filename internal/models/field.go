package models

import (
	"bytes"
	"encoding/json"
)

// Field is one entry of a sparse patch. The zero value is "absent"; a JSON
// null decodes to present-null and any other value to present-value.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Set returns a present field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

// Null returns a present field that clears the stored value.
func Null[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON writes null for absent and present-null fields; encoding/json
// cannot omit struct values, so absence does not survive a round trip.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Apply merges the field into an optional stored value.
func (f Field[T]) Apply(current *T) *T {
	if !f.Present {
		return current
	}
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}
