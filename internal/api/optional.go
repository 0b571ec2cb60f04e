package api

import (
	"encoding/json"

	"a3kd/internal/jsonutil"
)

// Optional holds a value that may legitimately be missing, such as the best
// accuracy of an experiment before its first episode. Absent is the zero value,
// so a field missing from a payload decodes to Absent.
type Optional[T any] struct {
	value T
	ok    bool
}

// Present wraps v.
func Present[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// Absent returns an empty Optional.
func Absent[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool {
	return o.ok
}

// IsZero lets encoding/json's omitzero drop absent values.
func (o Optional[T]) IsZero() bool {
	return !o.ok
}

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// MarshalJSON implements json.Marshaler. Absent encodes as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON implements json.Unmarshaler. null decodes to Absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if jsonutil.IsNull(data) {
		*o = Absent[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Present(v)
	return nil
}
