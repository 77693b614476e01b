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

// Field describes one field of a record, before compilation.
type Field struct {
	// Name is the field's key on pack inputs and unpack outputs. Names must
	// be unique within a schema.
	Name string

	// Type is the field's type descriptor. See [Type] for the closed set.
	Type Type

	// Optional marks the field as allowed to be absent or null on pack
	// input. Without it, packing fails when the value is absent and no
	// Default exists.
	Optional bool

	// Default is substituted when the value is absent from the pack input.
	// Setting a default implies Optional on input.
	Default any

	// Condition is evaluated exactly once at compile time; when it returns
	// false the field is excluded entirely. It contributes zero bytes and
	// does not appear in [Schema.Describe].
	Condition func() bool

	// LengthOf names a variable-array or [CharStar] field in the same
	// schema whose element count (or UTF-8 byte length) this field
	// supplies. The engine derives the value from the referent, so
	// LengthOf implies Optional on input. The field's type must be an
	// integer primitive.
	LengthOf string

	// ByPointer packs a nested record into a separate sub-buffer and
	// stores its address in a pointer-sized slot, instead of inline. Only
	// meaningful when Type is a [*Schema].
	ByPointer bool

	// MapOptionalInline invokes the nested record's map-value hook even
	// when the input value is absent, so a sentinel packed form can be
	// produced. Only meaningful for inline nested optional records.
	MapOptionalInline bool

	// PackTransform rewrites the value after validation and before
	// encoding.
	PackTransform func(any) any

	// UnpackTransform rewrites the value after decoding.
	UnpackTransform func(any) any

	// Validate runs in declaration order against the pack-time value; the
	// first rejection aborts the pack.
	Validate []Validator
}

// Validator inspects one pack-time value. Returning a non-nil error rejects
// the value and aborts the pack; the error is surfaced to the caller
// verbatim, wrapped with the field name and list index.
type Validator func(v any, field string, ctx *ValidationContext) error

// ValidationContext carries the surroundings of a validated value.
type ValidationContext struct {
	// Hints is the opaque bag passed via [WithValidationHints], threaded
	// unchanged to every validator at every nesting depth.
	Hints any

	// Input is the record object the value was drawn from, after the
	// schema's map-value hook.
	Input Object
}

// packFunc encodes one field value at off within the packer's destination
// view.
type packFunc func(p *packer, off int, v any) error

// unpackFunc decodes one field value from off within the unpacker's source
// view.
type unpackFunc func(u *unpacker, off int) (any, error)

// fieldRecord is a compiled field: resolved layout plus the composed
// pack/unpack pipeline.
type fieldRecord struct {
	name   string
	offset int
	size   int
	align  int

	typ       Type
	byPointer bool
	optional  bool
	fallback  any
	lengthOf  string

	// flagFor names the optional record this 1-byte validity tag follows,
	// for tag-after-payload layouts. Such records are virtual: they are
	// invisible to Describe and synthesized by the compiler.
	flagFor string

	// tagged is set on a record that has a validity tag following it.
	tagged bool

	validators []Validator

	pack   packFunc
	unpack unpackFunc

	// arr is set for variable-array fields once the length back-reference
	// resolves.
	arr *arrayMeta
}

// arrayMeta couples a variable-array field to its length field.
type arrayMeta struct {
	elem     Type
	elemSize int

	slotOffset int

	lenField  string
	lenOffset int
	lenKind   Kind

	// decode packs out one element on unpack; nil when the element type
	// only unpacks as a raw address.
	decode func(u *unpacker, off int) (any, error)

	// encode packs one element into a sub-buffer.
	encode packFunc
}

// virtual reports whether this record is a synthesized validity tag.
func (f *fieldRecord) virtual() bool {
	return f.flagFor != ""
}

// The pipeline stages below compose in a fixed order, innermost first:
// base codec, then transforms, then optional handling (pack side), then
// length-of derivation (pack side). Each stage is a named function so
// errors can be reasoned about per stage.

func transformPack(fn func(any) any, inner packFunc) packFunc {
	return func(p *packer, off int, v any) error {
		return inner(p, off, fn(v))
	}
}

func transformUnpack(fn func(any) any, inner unpackFunc) unpackFunc {
	return func(u *unpacker, off int) (any, error) {
		v, err := inner(u, off)
		if err != nil {
			return nil, err
		}
		return fn(v), nil
	}
}

// optionalPack handles absent and explicitly-null values. Scalars and
// pointer slots encode absence as zero bytes of the field's width. An
// absent inline record skips recursion, unless mapInline passes the absence
// through so the nested map-value hook can produce a sentinel form.
func optionalPack(size int, mapInline bool, inner packFunc) packFunc {
	return func(p *packer, off int, v any) error {
		if v == nil {
			if mapInline {
				return inner(p, off, nil)
			}
			clear(p.dst[off : off+size])
			return nil
		}
		return inner(p, off, v)
	}
}

// lengthOfPack derives the field's value from the referenced array or
// string on the input object, ignoring whatever the input carried for the
// field itself.
func lengthOfPack(target string, inner packFunc) packFunc {
	return func(p *packer, off int, _ any) error {
		var n int
		switch v := p.input[target].(type) {
		case nil:
		case string:
			n = len(v)
		case []byte:
			n = len(v)
		default:
			count, ok := seqLen(v)
			if !ok {
				return fmt.Errorf("%w: cannot take the length of %T", ErrValueType, v)
			}
			n = count
		}
		return inner(p, off, n)
	}
}
