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

// Base codecs for variable arrays: a pointer slot addressing count
// contiguous packed elements, count stored in the companion length field.

// arrayPack allocates the sub-buffer, encodes the elements into it, and
// writes its address into the array's slot. An empty array writes the null
// address; the companion length field derives its own value separately.
func arrayPack(rec *fieldRecord) packFunc {
	return func(p *packer, off int, v any) error {
		m := rec.arr
		n, ok := seqLen(v)
		if !ok {
			return fmt.Errorf("%w: %T is not a sequence", ErrValueType, v)
		}
		slot := p.dst[off : off+xunsafe.PtrSize]
		if n == 0 {
			writePtr(slot, 0)
			return nil
		}

		sub, err := p.buf.alloc(n * m.elemSize)
		if err != nil {
			return err
		}
		sp := &packer{
			dst:   sub,
			buf:   p.buf,
			input: p.input,
			hints: p.hints,
			index: p.index,
		}
		for i := range n {
			if err := m.encode(sp, i*m.elemSize, seqIndex(v, i)); err != nil {
				return err
			}
		}
		writePtr(slot, xunsafe.Addr(sub))
		return nil
	}
}

// arrayUnpack reads the count from the companion length field and the data
// address from the array's own slot, then decodes the elements through a
// view of the pointed-to memory. Element types without a decoder (records,
// opaque handles) yield the raw address.
func arrayUnpack(rec *fieldRecord) unpackFunc {
	return func(u *unpacker, off int) (any, error) {
		m := rec.arr
		n := asCount(m.lenKind.read(u.src[m.lenOffset : m.lenOffset+m.lenKind.Size()]))
		addr := readPtr(u.src[off : off+xunsafe.PtrSize])
		if addr == 0 && n != 0 {
			return nil, fmt.Errorf("cstruct: %w: length %d", ErrNullArray, n)
		}
		if m.decode == nil {
			return addr, nil
		}
		if n == 0 {
			return []any{}, nil
		}

		su := &unpacker{src: xunsafe.Bytes(addr, n*m.elemSize)}
		out := make([]any, n)
		for i := range n {
			v, err := m.decode(su, i*m.elemSize)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}
