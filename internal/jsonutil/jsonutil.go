// Package jsonutil provides shared helpers for decoding service payloads:
// context-wrapped errors, generic single-value and array decoding, and
// null detection for optional fields.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnmarshalWithContext unmarshals JSON data into v and wraps any error
// with the provided context message.
func UnmarshalWithContext(data []byte, v any, context string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", context, err)
	}
	return nil
}

// Unmarshal decodes data into a fresh T.
func Unmarshal[T any](data []byte, context string) (T, error) {
	var v T
	if err := UnmarshalWithContext(data, &v, context); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// UnmarshalArrayAllowEmpty unmarshals JSON data into a slice.
// A JSON null or an empty array both yield an empty, non-nil slice.
func UnmarshalArrayAllowEmpty[T any](data []byte, context string) ([]T, error) {
	var entries []T
	if err := UnmarshalWithContext(data, &entries, context); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []T{}
	}
	return entries, nil
}

// IsNull reports whether raw is empty or the JSON literal null.
func IsNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
