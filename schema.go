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
)

// Object is a dynamic record value: what [Schema.Pack] consumes and
// [Schema.Unpack] produces.
//
// A key missing from the map is an absent field; a key present with a nil
// value is an explicit null. The two are treated identically for optional
// fields, but a zero-valued primitive is a real value and validators always
// see it.
type Object = map[string]any

// Schema is a compiled record layout: field offsets, padding, total size,
// and the pack/unpack machinery for every field.
//
// Schemas are produced once by [Compile] and are immutable; a Schema is
// safe for concurrent use, including as a nested record type in other
// schemas. Recursive schemas cannot be constructed, since a Schema must be
// compiled before it can be referenced.
type Schema struct {
	size  int
	align int

	fields []*fieldRecord
	byName map[string]*fieldRecord

	// arrays indexes variable-array metadata by array field name, for
	// [Schema.Alloc].
	arrays map[string]*arrayMeta

	presence    bool
	mapValue    func(any) any
	reduceValue func(Object) Object
	defaults    Object
}

func (*Schema) isType() {}

// Size returns the record's byte size, after trailing padding to the
// schema's alignment.
func (s *Schema) Size() int {
	return s.size
}

// Align returns the maximum alignment of any included field, at least 1.
func (s *Schema) Align() int {
	return s.align
}

// FieldInfo is one row of [Schema.Describe].
type FieldInfo struct {
	Name     string
	Offset   int
	Size     int
	Align    int
	Optional bool
	Type     Type
	// ByPointer is set for nested records packed behind a pointer slot.
	ByPointer bool
	// LengthOf names the array or char* field this field supplies the
	// length for, if any.
	LengthOf string
}

// Describe returns the compiled layout of every non-virtual field, in
// offset order. It is a pure projection of the schema; conditionally
// excluded fields and synthesized validity tags do not appear.
func (s *Schema) Describe() []FieldInfo {
	out := make([]FieldInfo, 0, len(s.fields))
	for _, f := range s.fields {
		if f.virtual() {
			continue
		}
		out = append(out, FieldInfo{
			Name:      f.name,
			Offset:    f.offset,
			Size:      f.size,
			Align:     f.align,
			Optional:  f.optional,
			Type:      f.typ,
			ByPointer: f.byPointer,
			LengthOf:  f.lengthOf,
		})
	}
	return out
}

// Format implements [fmt.Formatter], printing one line per field in the
// style of a linker map.
func (s *Schema) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, "struct{size=%d, align=%d}", s.size, s.align)
	if verb != 'v' || !f.Flag('+') {
		return
	}
	for _, rec := range s.fields {
		name := rec.name
		if rec.virtual() {
			name = "(" + name + ")"
		}
		star := ""
		if rec.byPointer {
			star = "*"
		}
		fmt.Fprintf(f, "\n  %#02x[%d:%d] %s: %s%s", rec.offset, rec.size, rec.align, name, star, typeName(rec.typ))
	}
}
