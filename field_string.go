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

// stringPack copies the source's UTF-8 bytes into a fresh sub-buffer —
// zero-terminated for [CString], raw for [CharStar] — and writes the
// sub-buffer's address into the field's pointer slot. A null source, or an
// empty [CharStar], writes the null address.
func stringPack(sk StringKind) packFunc {
	return func(p *packer, off int, v any) error {
		slot := p.dst[off : off+xunsafe.PtrSize]

		var data []byte
		switch x := v.(type) {
		case nil:
			writePtr(slot, 0)
			return nil
		case string:
			data = []byte(x)
		case []byte:
			data = x
		default:
			return fmt.Errorf("%w: %T for %v", ErrValueType, v, sk)
		}

		n := len(data)
		if sk == CString {
			n++ // Trailing zero byte.
		}
		if n == 0 {
			writePtr(slot, 0)
			return nil
		}

		sub, err := p.buf.alloc(n)
		if err != nil {
			return err
		}
		copy(sub, data)
		writePtr(slot, xunsafe.Addr(sub))
		return nil
	}
}
