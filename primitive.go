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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bufbuild/cstruct/internal/xunsafe"
)

// Kind is a primitive field kind.
//
// Every kind has a fixed byte size and a natural alignment equal to that
// size; all multibyte encodings are little-endian regardless of the host
// byte order. [Ptr] is address-width, chosen at build time to match the
// target's pointer size.
type Kind int

const (
	U8 Kind = iota
	U16
	U32
	U64
	I16
	I32
	F32
	F64
	Ptr

	// BoolU8 is a one-byte boolean; any nonzero byte reads as true.
	BoolU8
	// BoolU32 is a four-byte little-endian boolean; any nonzero value reads
	// as true.
	BoolU32
)

func (Kind) isType() {}

// Size returns the kind's byte size.
func (k Kind) Size() int {
	switch k {
	case U8, BoolU8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32, BoolU32:
		return 4
	case U64, F64:
		return 8
	case Ptr:
		return xunsafe.PtrSize
	default:
		return 0
	}
}

// Align returns the kind's natural alignment, which equals its size.
func (k Kind) Align() int {
	return k.Size()
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Ptr:
		return "ptr"
	case BoolU8:
		return "bool_u8"
	case BoolU32:
		return "bool_u32"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) valid() bool {
	return k >= U8 && k <= BoolU32
}

// isInteger reports whether k may back an enum or supply an array length.
func (k Kind) isInteger() bool {
	switch k {
	case U8, U16, U32, U64, I16, I32:
		return true
	default:
		return false
	}
}

// read decodes the value at the front of b.
//
// Unsigned kinds read as uint64, signed kinds as int64 (two's complement),
// floats as float32/float64, booleans as bool, and [Ptr] as an address-width
// uintptr.
func (k Kind) read(b []byte) any {
	switch k {
	case U8:
		return uint64(b[0])
	case U16:
		return uint64(binary.LittleEndian.Uint16(b))
	case U32:
		return uint64(binary.LittleEndian.Uint32(b))
	case U64:
		return binary.LittleEndian.Uint64(b)
	case I16:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case I32:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	case F32:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case F64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	case Ptr:
		if xunsafe.PtrSize == 4 {
			return uintptr(binary.LittleEndian.Uint32(b))
		}
		return uintptr(binary.LittleEndian.Uint64(b))
	case BoolU8:
		return b[0] != 0
	case BoolU32:
		return binary.LittleEndian.Uint32(b) != 0
	default:
		return nil
	}
}

// write encodes v at the front of b. Booleans write as 0 or 1; a nil v
// writes the zero encoding.
func (k Kind) write(b []byte, v any) error {
	if v == nil {
		clear(b[:k.Size()])
		return nil
	}

	switch k {
	case U8, U16, U32, U64:
		u, ok := toUint64(v)
		if !ok {
			return errValueKind(k, v)
		}
		switch k {
		case U8:
			b[0] = byte(u)
		case U16:
			binary.LittleEndian.PutUint16(b, uint16(u))
		case U32:
			binary.LittleEndian.PutUint32(b, uint32(u))
		case U64:
			binary.LittleEndian.PutUint64(b, u)
		}
	case I16, I32:
		i, ok := toInt64(v)
		if !ok {
			return errValueKind(k, v)
		}
		if k == I16 {
			binary.LittleEndian.PutUint16(b, uint16(int16(i)))
		} else {
			binary.LittleEndian.PutUint32(b, uint32(int32(i)))
		}
	case F32:
		f, ok := toFloat64(v)
		if !ok {
			return errValueKind(k, v)
		}
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
	case F64:
		f, ok := toFloat64(v)
		if !ok {
			return errValueKind(k, v)
		}
		binary.LittleEndian.PutUint64(b, math.Float64bits(f))
	case Ptr:
		p, ok := toUintptr(v)
		if !ok {
			return errValueKind(k, v)
		}
		writePtr(b, p)
	case BoolU8, BoolU32:
		t, ok := v.(bool)
		if !ok {
			return errValueKind(k, v)
		}
		var u uint32
		if t {
			u = 1
		}
		if k == BoolU8 {
			b[0] = byte(u)
		} else {
			binary.LittleEndian.PutUint32(b, u)
		}
	default:
		return fmt.Errorf("cstruct: unknown primitive kind %v", k)
	}
	return nil
}

func writePtr(b []byte, p uintptr) {
	if xunsafe.PtrSize == 4 {
		binary.LittleEndian.PutUint32(b, uint32(p))
	} else {
		binary.LittleEndian.PutUint64(b, uint64(p))
	}
}

func readPtr(b []byte) uintptr {
	if xunsafe.PtrSize == 4 {
		return uintptr(binary.LittleEndian.Uint32(b))
	}
	return uintptr(binary.LittleEndian.Uint64(b))
}

func errValueKind(k Kind, v any) error {
	return fmt.Errorf("%w: %T for %v", ErrValueType, v, k)
}

// toUint64 coerces any Go integer value to uint64. Negative values are
// encoded two's complement, matching what a C caller handing -1 to an
// unsigned parameter gets.
func toUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case int:
		return uint64(x), true
	case int8:
		return uint64(x), true
	case int16:
		return uint64(x), true
	case int32:
		return uint64(x), true
	case int64:
		return uint64(x), true
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case uintptr:
		return uint64(x), true
	case float64:
		// Whole-valued floats are accepted so integer fields can come out
		// of sources that only carry doubles.
		if x == math.Trunc(x) {
			return uint64(int64(x)), true
		}
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case float64:
		if x == math.Trunc(x) {
			return int64(x), true
		}
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func toUintptr(v any) (uintptr, bool) {
	switch x := v.(type) {
	case uintptr:
		return x, true
	case uint64:
		return uintptr(x), true
	case uint:
		return uintptr(x), true
	case int:
		return uintptr(x), true
	case int64:
		return uintptr(x), true
	}
	return 0, false
}

// asCount converts a value read by an integer [Kind] to an element count.
func asCount(v any) int {
	switch x := v.(type) {
	case uint64:
		return int(x)
	case int64:
		return int(x)
	default:
		return 0
	}
}
