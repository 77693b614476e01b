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

	"github.com/bufbuild/cstruct/internal/xunsafe"
)

// Allocation is the result of [Schema.Alloc]: a pre-populated main buffer
// plus direct views of the array sub-buffers, for callers who write
// elements in place before handing the bundle to a native call.
type Allocation struct {
	// Buffer is the main record. Every array slot already holds its
	// sub-buffer's address (null for a zero count) and every length field
	// already holds its count.
	Buffer *Buffer

	// Arrays maps each variable-array field to its zero-filled sub-buffer,
	// nil for a zero count.
	Arrays map[string][]byte
}

// Alloc allocates a main buffer plus a zero-filled sub-buffer of
// count × element-size bytes for each named array field. Array fields not
// named in lengths get a zero count.
func (s *Schema) Alloc(lengths map[string]int, options ...AllocOption) (*Allocation, error) {
	var opts allocOptions
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(&opts)
		}
	}

	for name, count := range lengths {
		if _, ok := s.arrays[name]; !ok {
			return nil, fmt.Errorf("cstruct: alloc: %q is not an array field", name)
		}
		if count < 0 {
			return nil, fmt.Errorf("cstruct: alloc: negative count %d for %q", count, name)
		}
	}

	buf, err := newBuffer(s.size, opts.pinned)
	if err != nil {
		return nil, err
	}
	arrays := make(map[string][]byte, len(s.arrays))
	for name, m := range s.arrays {
		count := lengths[name]
		var sub []byte
		if count > 0 {
			sub, err = buf.alloc(count * m.elemSize)
			if err != nil {
				_ = buf.Free()
				return nil, err
			}
		}
		writePtr(buf.data[m.slotOffset:], xunsafe.Addr(sub))
		if err := m.lenKind.write(buf.data[m.lenOffset:], count); err != nil {
			_ = buf.Free()
			return nil, fieldErr(m.lenField, -1, err)
		}
		arrays[name] = sub
	}
	return &Allocation{Buffer: buf, Arrays: arrays}, nil
}
