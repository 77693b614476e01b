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
	"github.com/bufbuild/cstruct/internal/xunsafe"
)

// Base codecs for nested records, inline and by pointer.

// recordPackInline recurses into the nested schema over a window of the
// parent's buffer. The nested record's map-value hook sees whatever value
// the parent passed down, including nil under MapOptionalInline.
func recordPackInline(ns *Schema) packFunc {
	return func(p *packer, off int, v any) error {
		child := &packer{
			dst:   p.dst[off : off+ns.size],
			buf:   p.buf,
			hints: p.hints,
			index: p.index,
		}
		return ns.packRecord(child, v)
	}
}

func recordUnpackInline(ns *Schema) unpackFunc {
	return func(u *unpacker, off int) (any, error) {
		return ns.unpackRecord(&unpacker{src: u.src[off : off+ns.size]})
	}
}

// recordPackPtr packs the nested record into its own sub-buffer and writes
// the sub-buffer's address into the parent's pointer slot.
func recordPackPtr(ns *Schema) packFunc {
	return func(p *packer, off int, v any) error {
		sub, err := p.buf.alloc(ns.size)
		if err != nil {
			return err
		}
		child := &packer{
			dst:   sub,
			buf:   p.buf,
			hints: p.hints,
			index: p.index,
		}
		if err := ns.packRecord(child, v); err != nil {
			return err
		}
		writePtr(p.dst[off:off+xunsafe.PtrSize], xunsafe.Addr(sub))
		return nil
	}
}

// recordUnpackPtr follows the stored address and unpacks the record it
// points at. A null address yields nil.
func recordUnpackPtr(ns *Schema) unpackFunc {
	return func(u *unpacker, off int) (any, error) {
		addr := readPtr(u.src[off : off+xunsafe.PtrSize])
		if addr == 0 {
			return nil, nil
		}
		src := xunsafe.Bytes(addr, ns.size)
		return ns.unpackRecord(&unpacker{src: src})
	}
}
