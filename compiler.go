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
	"slices"

	"github.com/bufbuild/cstruct/internal/debug"
	"github.com/bufbuild/cstruct/internal/xunsafe"
)

// Compile compiles a field list into a [*Schema], for packing and unpacking
// byte-exact native records.
//
// This is a one-time cost; compile once and reuse, like regexp.Compile. The
// resulting schema is immutable and safe for concurrent use.
func Compile(fields []Field, options ...CompileOption) (*Schema, error) {
	c := &compiler{}
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(c)
		}
	}
	return c.compile(fields)
}

// MustCompile is like [Compile] but panics on error, for use in variable
// initializers.
func MustCompile(fields []Field, options ...CompileOption) *Schema {
	s, err := Compile(fields, options...)
	if err != nil {
		panic(err)
	}
	return s
}

// compiler is context for compiling a field list into a [*Schema].
type compiler struct {
	presence    bool
	mapValue    func(any) any
	reduceValue func(Object) Object
	defaults    Object
}

func (c *compiler) compile(fields []Field) (*Schema, error) {
	s := &Schema{
		align:       1,
		byName:      make(map[string]*fieldRecord, len(fields)),
		arrays:      make(map[string]*arrayMeta),
		presence:    c.presence,
		mapValue:    c.mapValue,
		reduceValue: c.reduceValue,
		defaults:    c.defaults,
	}

	offset := 0
	for i := range fields {
		f := &fields[i]
		if f.Name == "" {
			return nil, schemaErrf("", "field %d has no name", i)
		}
		if f.Condition != nil && !f.Condition() {
			continue
		}
		if _, ok := s.byName[f.Name]; ok {
			return nil, schemaErrf(f.Name, "duplicate field name")
		}

		rec, err := c.resolve(f)
		if err != nil {
			return nil, err
		}

		// Compose the pipeline around the base codec, innermost first.
		if f.UnpackTransform != nil {
			rec.unpack = transformUnpack(f.UnpackTransform, rec.unpack)
		}
		if f.PackTransform != nil {
			rec.pack = transformPack(f.PackTransform, rec.pack)
		}
		_, inline := f.Type.(*Schema)
		inline = inline && !f.ByPointer
		if rec.optional {
			rec.pack = optionalPack(rec.size, inline && f.MapOptionalInline, rec.pack)
		}
		if f.LengthOf != "" {
			rec.pack = lengthOfPack(f.LengthOf, rec.pack)
		}

		offset = xunsafe.RoundUp(offset, rec.align)
		rec.offset = offset
		offset += rec.size
		s.align = max(s.align, rec.align)

		s.fields = append(s.fields, rec)
		s.byName[rec.name] = rec
		c.log(s, "field", "%#04x[%d:%d] %s: %s", rec.offset, rec.size, rec.align, rec.name, typeName(rec.typ))

		// In tag-after-payload mode, an optional scalar or inline record is
		// followed by one validity byte.
		if c.presence && f.Optional && taggable(f) {
			rec.tagged = true
			tag := &fieldRecord{
				name:    f.Name + ".present",
				flagFor: f.Name,
				offset:  offset,
				size:    1,
				align:   1,
			}
			offset++
			s.fields = append(s.fields, tag)
		}
	}

	s.size = xunsafe.RoundUp(offset, s.align)

	if err := c.link(s); err != nil {
		return nil, err
	}

	if debug.Enabled {
		c.log(s, "layout", "size=%d align=%d\n%s", s.size, s.align, debug.Dump(s.Describe()))
	}
	return s, nil
}

// taggable reports whether a field gets a validity byte in tag-after-payload
// mode: optional scalars, enums, and inline records. Pointer-slot fields
// (strings, opaque handles, by-pointer records, arrays) encode absence as
// the null address instead.
func taggable(f *Field) bool {
	switch f.Type.(type) {
	case Kind, *Enum:
		return true
	case *Schema:
		return !f.ByPointer
	default:
		return false
	}
}

// resolve maps a field's type descriptor to its size, alignment, and base
// pack/unpack closures.
func (c *compiler) resolve(f *Field) (*fieldRecord, error) {
	rec := &fieldRecord{
		name:       f.Name,
		typ:        f.Type,
		byPointer:  f.ByPointer,
		optional:   f.Optional || f.Default != nil || f.LengthOf != "",
		fallback:   f.Default,
		lengthOf:   f.LengthOf,
		validators: slices.Clone(f.Validate),
	}

	if _, ok := f.Type.(*Schema); !ok {
		if f.ByPointer {
			return nil, schemaErrf(f.Name, "ByPointer requires a nested record type, got %s", typeName(f.Type))
		}
		if f.MapOptionalInline {
			return nil, schemaErrf(f.Name, "MapOptionalInline requires an inline nested record type, got %s", typeName(f.Type))
		}
	}

	switch t := f.Type.(type) {
	case Kind:
		if !t.valid() {
			return nil, schemaErrf(f.Name, "unknown primitive kind %v", t)
		}
		rec.size, rec.align = t.Size(), t.Align()
		rec.pack, rec.unpack = kindPack(t), kindUnpack(t)

	case StringKind:
		rec.size, rec.align = xunsafe.PtrSize, xunsafe.PtrSize
		rec.pack, rec.unpack = stringPack(t), addrUnpack()

	case *Enum:
		rec.size, rec.align = t.kind.Size(), t.kind.Align()
		rec.pack, rec.unpack = enumPack(t), enumUnpack(t)

	case *Schema:
		if t == nil {
			return nil, schemaErrf(f.Name, "missing field type")
		}
		if f.ByPointer {
			rec.size, rec.align = xunsafe.PtrSize, xunsafe.PtrSize
			rec.pack, rec.unpack = recordPackPtr(t), recordUnpackPtr(t)
		} else {
			if f.MapOptionalInline && !f.Optional {
				return nil, schemaErrf(f.Name, "MapOptionalInline requires Optional")
			}
			rec.size, rec.align = t.size, t.align
			rec.pack, rec.unpack = recordPackInline(t), recordUnpackInline(t)
		}

	case opaqueType:
		rec.size, rec.align = xunsafe.PtrSize, xunsafe.PtrSize
		rec.pack, rec.unpack = opaquePack(), addrUnpack()

	case arrayType:
		meta, err := c.element(f.Name, t.elem)
		if err != nil {
			return nil, err
		}
		rec.arr = meta
		rec.size, rec.align = xunsafe.PtrSize, xunsafe.PtrSize
		rec.pack, rec.unpack = arrayPack(rec), arrayUnpack(rec)

	case nil:
		return nil, schemaErrf(f.Name, "missing field type")

	default:
		return nil, schemaErrf(f.Name, "unknown field kind %T", f.Type)
	}

	return rec, nil
}

// element resolves a variable array's element type.
func (c *compiler) element(field string, elem Type) (*arrayMeta, error) {
	meta := &arrayMeta{elem: elem}
	switch t := elem.(type) {
	case Kind:
		if !t.valid() {
			return nil, schemaErrf(field, "unknown primitive kind %v", t)
		}
		meta.elemSize = t.Size()
		meta.encode, meta.decode = kindPack(t), kindUnpack(t)
	case *Enum:
		meta.elemSize = t.kind.Size()
		meta.encode, meta.decode = enumPack(t), enumUnpack(t)
	case *Schema:
		if t == nil {
			return nil, schemaErrf(field, "missing array element type")
		}
		// Arrays of records pack fully but unpack as a raw address.
		meta.elemSize = t.size
		meta.encode = recordPackInline(t)
	case opaqueType:
		meta.elemSize = xunsafe.PtrSize
		meta.encode = opaquePack()
	default:
		return nil, schemaErrf(field, "unsupported array element type %s", typeName(elem))
	}
	return meta, nil
}

// link resolves length-of back-references: every array field must be named
// by exactly one integer length field, and the array's metadata learns the
// length field's offset and kind.
func (c *compiler) link(s *Schema) error {
	for _, rec := range s.fields {
		if rec.lengthOf == "" {
			continue
		}
		kind, ok := rec.typ.(Kind)
		if !ok || !kind.isInteger() {
			return schemaErrf(rec.name, "length field must be an integer primitive, got %s", typeName(rec.typ))
		}

		target, ok := s.byName[rec.lengthOf]
		if !ok {
			return schemaErrf(rec.name, "length-of references unknown field %q", rec.lengthOf)
		}
		switch t := target.typ.(type) {
		case arrayType:
			if target.arr.lenField != "" {
				return schemaErrf(rec.name, "array %q already has length field %q", target.name, target.arr.lenField)
			}
			target.arr.slotOffset = target.offset
			target.arr.lenField = rec.name
			target.arr.lenOffset = rec.offset
			target.arr.lenKind = kind
			s.arrays[target.name] = target.arr
		case StringKind:
			if t != CharStar {
				return schemaErrf(rec.name, "length-of target %q is a cstring; only char* carries a length", target.name)
			}
		default:
			return schemaErrf(rec.name, "length-of target %q is not an array or char* field", target.name)
		}
	}

	for _, rec := range s.fields {
		if _, ok := rec.typ.(arrayType); ok && rec.arr.lenField == "" {
			return schemaErrf(rec.name, "array field has no matching length field")
		}
	}
	return nil
}

func (c *compiler) log(s *Schema, op, format string, args ...any) {
	debug.Log([]any{"%p", s}, op, format, args...)
}
