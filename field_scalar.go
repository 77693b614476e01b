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

// Base codecs for primitive, enum, and opaque-pointer fields.

func kindPack(k Kind) packFunc {
	size := k.Size()
	return func(p *packer, off int, v any) error {
		return k.write(p.dst[off:off+size], v)
	}
}

func kindUnpack(k Kind) unpackFunc {
	size := k.Size()
	return func(u *unpacker, off int) (any, error) {
		return k.read(u.src[off : off+size]), nil
	}
}

func enumPack(e *Enum) packFunc {
	size := e.kind.Size()
	return func(p *packer, off int, v any) error {
		i, err := e.encode(v)
		if err != nil {
			return err
		}
		return e.kind.write(p.dst[off:off+size], i)
	}
}

func enumUnpack(e *Enum) unpackFunc {
	size := e.kind.Size()
	return func(u *unpacker, off int) (any, error) {
		return e.From(asInt64(e.kind.read(u.src[off : off+size])))
	}
}

// opaquePack writes the address carried by a [Handle] (or a raw uintptr)
// into a pointer slot. nil writes the null address.
func opaquePack() packFunc {
	return func(p *packer, off int, v any) error {
		var addr uintptr
		switch x := v.(type) {
		case nil:
		case Handle:
			addr = x.Pointer()
		default:
			a, ok := toUintptr(v)
			if !ok {
				return fmt.Errorf("%w: %T does not carry a pointer", ErrValueType, v)
			}
			addr = a
		}
		writePtr(p.dst[off:off+xunsafe.PtrSize], addr)
		return nil
	}
}

// addrUnpack reads a pointer slot as a raw address. Used for strings,
// opaque handles, and any other slot the engine does not interpret.
func addrUnpack() unpackFunc {
	return func(u *unpacker, off int) (any, error) {
		return readPtr(u.src[off : off+xunsafe.PtrSize]), nil
	}
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case uint64:
		return int64(x)
	case int64:
		return x
	default:
		return 0
	}
}
