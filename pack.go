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

// packer is the state threaded through every pack closure of one record:
// the destination view, the owning buffer (for sub-buffer allocation), the
// mapped input object, and the caller's validation hints.
type packer struct {
	dst   []byte
	buf   *Buffer
	input Object
	hints any
	index int // Item index in PackList, or -1.
}

// Pack serialises obj into a freshly allocated zero-filled buffer of
// [Schema.Size] bytes laid out exactly as a native compiler would lay out
// the record.
//
// Fields are processed in compilation order; within a field, validators run
// in declaration order and the first rejection aborts the call. On error no
// buffer is returned and any sub-buffers already allocated are released.
func (s *Schema) Pack(obj Object, options ...PackOption) (*Buffer, error) {
	var opts packOptions
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(&opts)
		}
	}

	buf, err := newBuffer(s.size, opts.pinned)
	if err != nil {
		return nil, err
	}
	p := &packer{dst: buf.data, buf: buf, hints: opts.hints, index: -1}
	if err := s.packRecord(p, obj); err != nil {
		_ = buf.Free()
		return nil, err
	}
	return buf, nil
}

// PackInto serialises obj into dst at base, for containers packing arrays
// of records into one region. Sub-buffers allocated for obj's pointer
// fields become part of dst.
//
// The target bytes are assumed zero; PackInto only writes field payloads,
// never padding.
func (s *Schema) PackInto(obj Object, dst *Buffer, base int, options ...PackOption) error {
	var opts packOptions
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(&opts)
		}
	}

	if base < 0 || base+s.size > len(dst.data) {
		return fmt.Errorf("cstruct: %w: packing %d bytes at %d into %d", ErrBufferTooSmall, s.size, base, len(dst.data))
	}
	p := &packer{dst: dst.data[base : base+s.size], buf: dst, hints: opts.hints, index: -1}
	return s.packRecord(p, obj)
}

// PackList serialises a sequence into one contiguous buffer of
// [Schema.Size] × len(objs) bytes, item i at offset i × [Schema.Size].
//
// Items are processed in index order; a failure at any index discards the
// entire buffer, and the failing index is included in the error.
func (s *Schema) PackList(objs []Object, options ...PackOption) (*Buffer, error) {
	var opts packOptions
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(&opts)
		}
	}

	buf, err := newBuffer(s.size*len(objs), opts.pinned)
	if err != nil {
		return nil, err
	}
	for i, obj := range objs {
		p := &packer{
			dst:   buf.data[i*s.size : (i+1)*s.size],
			buf:   buf,
			hints: opts.hints,
			index: i,
		}
		if err := s.packRecord(p, obj); err != nil {
			_ = buf.Free()
			return nil, err
		}
	}
	return buf, nil
}

// packRecord encodes one record into p.dst: map the input, then walk the
// compiled fields in order, pulling each value (or its default), running
// its validators, and invoking its pack pipeline.
func (s *Schema) packRecord(p *packer, in any) error {
	if s.mapValue != nil {
		in = s.mapValue(in)
	}
	obj, err := asObject(in)
	if err != nil {
		return err
	}
	p.input = obj

	ctx := &ValidationContext{Hints: p.hints, Input: obj}
	for _, f := range s.fields {
		if f.virtual() {
			// The validity tag is 1 iff the tagged field's value is neither
			// absent nor null.
			v, ok := obj[f.flagFor]
			if ok && v != nil {
				p.dst[f.offset] = 1
			} else {
				p.dst[f.offset] = 0
			}
			continue
		}

		v, ok := obj[f.name]
		if !ok && f.fallback != nil {
			v, ok = f.fallback, true
		}
		if !ok && !f.optional {
			return fieldErr(f.name, p.index, ErrMissingField)
		}

		for _, validate := range f.validators {
			if err := validate(v, f.name, ctx); err != nil {
				return fieldErr(f.name, p.index, err)
			}
		}

		if err := f.pack(p, f.offset, v); err != nil {
			return fieldErr(f.name, p.index, err)
		}
	}
	return nil
}

// asObject checks that a record-level value is a (possibly nil) [Object].
func asObject(in any) (Object, error) {
	switch x := in.(type) {
	case nil:
		return Object{}, nil
	case Object:
		return x, nil
	default:
		return nil, fmt.Errorf("%w: %T is not an Object", ErrValueType, in)
	}
}
