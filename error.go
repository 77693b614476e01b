// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cstruct

import (
	"errors"
	"fmt"
)

// Sentinel errors for the codec's failure modes. Match with [errors.Is].
var (
	// ErrMissingField reports a non-optional field absent from a pack input
	// with no default to fall back on.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidEnum reports an enum name or integer outside the enum's
	// value set.
	ErrInvalidEnum = errors.New("invalid enum value")

	// ErrValueType reports a pack-time value whose Go type cannot encode
	// into the field's kind.
	ErrValueType = errors.New("value type mismatch")

	// ErrBufferTooSmall reports an unpack input shorter than the schema
	// requires.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrNullArray reports an array slot holding the null address while its
	// paired length field is nonzero.
	ErrNullArray = errors.New("null array pointer with nonzero length")
)

// SchemaError is a compile-time schema defect: an unknown field kind, a
// malformed length-of coupling, a bad enum backing kind, and so on.
type SchemaError struct {
	// Field is the offending field's name, when one is identifiable.
	Field string

	msg string
}

// Error implements [error].
func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "cstruct: schema: " + e.msg
	}
	return fmt.Sprintf("cstruct: schema: field %q: %s", e.Field, e.msg)
}

func schemaErrf(field, format string, args ...any) *SchemaError {
	return &SchemaError{Field: field, msg: fmt.Sprintf(format, args...)}
}

// errField is an error raised while packing or unpacking one field. It
// carries the field name and, for list operations, the item index.
type errField struct {
	field string
	index int // Item index in a list operation, or -1.
	cause error
}

// fieldErr wraps cause with field context. Already-wrapped causes pass
// through so the innermost field wins; a list index is stamped on the way
// out if the inner wrap had none.
func fieldErr(field string, index int, cause error) error {
	var fe *errField
	if errors.As(cause, &fe) {
		if fe.index < 0 {
			fe.index = index
		}
		return cause
	}
	return &errField{field: field, index: index, cause: cause}
}

// Unwrap implements error unwrapping viz [errors.Unwrap].
//
// A user validator's rejection unwraps to the validator's own error
// verbatim.
func (e *errField) Unwrap() error {
	return e.cause
}

// Error implements [error].
func (e *errField) Error() string {
	if e.index >= 0 {
		return fmt.Sprintf("cstruct: field %q (item %d): %v", e.field, e.index, e.cause)
	}
	return fmt.Sprintf("cstruct: field %q: %v", e.field, e.cause)
}
