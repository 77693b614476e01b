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
	"fmt"
	"reflect"
)

// Type is a field type descriptor.
//
// The set of descriptors is closed: a [Kind], a [StringKind], an [*Enum], a
// [*Schema] (inline, or by pointer with [Field].ByPointer), the [Opaque]
// pointer carrier, or a variable array built with [ArrayOf].
type Type interface {
	isType()
}

// StringKind is a string-reference field type. Either variant occupies one
// pointer-sized slot holding the address of a host-owned byte region.
type StringKind int

const (
	// CString points at the UTF-8 bytes of the source string followed by a
	// trailing zero byte. A null source writes the null address.
	CString StringKind = iota

	// CharStar points at raw UTF-8 bytes with no terminator; the byte
	// length lives in a companion field declared with [Field].LengthOf.
	CharStar
)

func (StringKind) isType() {}

// String implements [fmt.Stringer].
func (s StringKind) String() string {
	if s == CString {
		return "cstring"
	}
	return "char*"
}

// Opaque is the type descriptor for an opaque-object pointer: one
// pointer-sized slot whose value comes from the packed value's Pointer
// method (see [Handle]), from a raw uintptr, or null for nil.
var Opaque Type = opaqueType{}

type opaqueType struct{}

func (opaqueType) isType() {}

func (opaqueType) String() string { return "opaque" }

// Handle is the value contract for [Opaque] fields: anything that can
// surface the address of a native object it wraps.
type Handle interface {
	Pointer() uintptr
}

// ArrayOf returns the type descriptor for a variable array of elem: one
// pointer-sized slot addressing count contiguous packed elements, with
// count supplied by a companion integer field declaring
// [Field].LengthOf.
//
// Element types are limited to primitives, enums, inline records, and
// [Opaque]; [Compile] rejects anything else. Arrays of primitives and enums
// decode fully on unpack; for other element types unpack yields the raw
// sub-buffer address.
func ArrayOf(elem Type) Type {
	return arrayType{elem: elem}
}

type arrayType struct {
	elem Type
}

func (arrayType) isType() {}

// String implements [fmt.Stringer].
func (a arrayType) String() string {
	return fmt.Sprintf("[]%v", a.elem)
}

// typeName renders a descriptor for error messages and [Schema.Format].
func typeName(t Type) string {
	switch x := t.(type) {
	case nil:
		return "<nil>"
	case *Schema:
		return "struct"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%T", t)
	}
}

// seqLen returns the element count of a pack-time array value. Accepts nil,
// []any, or any slice/array via reflection.
func seqLen(v any) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case []any:
		return len(x), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len(), true
	}
	return 0, false
}

// seqIndex returns element i of a pack-time array value. The value must
// have already passed seqLen.
func seqIndex(v any, i int) any {
	if x, ok := v.([]any); ok {
		return x[i]
	}
	return reflect.ValueOf(v).Index(i).Interface()
}
