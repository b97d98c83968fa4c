package dto

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNullNotAllowed is returned when a non-nullable field is sent as null
var ErrNullNotAllowed = errors.New("field may not be null")

var nullLiteral = []byte("null")

// Optional is a request field that may be absent. Absent and present are
// distinguished; an explicit null is rejected.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a present Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		return ErrNullNotAllowed
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	o.Set = true
	o.Value = v
	return nil
}

// MarshalJSON implements json.Marshaler
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return nullLiteral, nil
	}
	return json.Marshal(o.Value)
}

// ValidationValue exposes the value to struct validation: a pointer when
// present, nil when absent.
func (o Optional[T]) ValidationValue() interface{} {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

// Nullable is a request field that may be absent, null, or hold a value.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Null returns a present Nullable holding null
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// Value returns a present Nullable holding v
func Value[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true

	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	n.Valid = true
	n.Value = v
	return nil
}

// MarshalJSON implements json.Marshaler
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return nullLiteral, nil
	}
	return json.Marshal(n.Value)
}

// ValidationValue exposes the value to struct validation: a pointer when
// present and not null, nil otherwise.
func (n Nullable[T]) ValidationValue() interface{} {
	if !n.Valid {
		return nil
	}
	return n.Ptr()
}

// Ptr returns nil for null, otherwise a pointer to the value
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
