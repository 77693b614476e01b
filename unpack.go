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

	"github.com/tiendc/go-deepcopy"
)

// unpacker is the state threaded through every unpack closure of one
// record: the source view and the validity tags read in the first pass.
type unpacker struct {
	src   []byte
	flags map[string]bool
}

// Unpack deserialises a buffer produced by [Schema.Pack] (or by a native
// callee filling in the same layout) back into an [Object].
//
// String, opaque, and record-array fields yield the raw address stored in
// their slot; decode them with a reduce-value hook if host values are
// needed. In tag-after-payload mode, an optional field whose validity tag
// reads false yields nil.
func (s *Schema) Unpack(data []byte) (Object, error) {
	if len(data) < s.size {
		return nil, fmt.Errorf("cstruct: %w: got %d bytes, need %d", ErrBufferTooSmall, len(data), s.size)
	}
	return s.unpackRecord(&unpacker{src: data})
}

// UnpackList deserialises count contiguous records.
func (s *Schema) UnpackList(data []byte, count int) ([]Object, error) {
	if count < 0 {
		return nil, fmt.Errorf("cstruct: negative count %d", count)
	}
	if len(data) < s.size*count {
		return nil, fmt.Errorf("cstruct: %w: got %d bytes, need %d for %d records", ErrBufferTooSmall, len(data), s.size*count, count)
	}
	out := make([]Object, count)
	for i := range count {
		obj, err := s.unpackRecord(&unpacker{src: data[i*s.size:]})
		if err != nil {
			var fe *errField
			if errors.As(err, &fe) {
				fe.index = i
				return nil, err
			}
			return nil, fmt.Errorf("cstruct: item %d: %w", i, err)
		}
		out[i] = obj
	}
	return out, nil
}

func (s *Schema) unpackRecord(u *unpacker) (Object, error) {
	out := Object{}
	if s.defaults != nil {
		// Each output gets its own deep copy so callers cannot mutate the
		// schema's shared defaults through an unpacked object.
		if err := deepcopy.Copy(&out, s.defaults); err != nil {
			return nil, fmt.Errorf("cstruct: copying schema defaults: %w", err)
		}
	}

	// First pass: collect validity tags, so a tagged field can be nulled
	// without decoding its payload.
	for _, f := range s.fields {
		if !f.virtual() {
			continue
		}
		if u.flags == nil {
			u.flags = make(map[string]bool)
		}
		u.flags[f.flagFor] = u.src[f.offset] != 0
	}

	for _, f := range s.fields {
		if f.virtual() {
			continue
		}
		if f.tagged && !u.flags[f.name] {
			out[f.name] = nil
			continue
		}
		v, err := f.unpack(u, f.offset)
		if err != nil {
			return nil, fieldErr(f.name, -1, err)
		}
		out[f.name] = v
	}

	if s.reduceValue != nil {
		out = s.reduceValue(out)
	}
	return out, nil
}
