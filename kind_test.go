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

package cstruct_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/cstruct"
)

var ptrSize = int(unsafe.Sizeof(uintptr(0)))

func TestKindSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind cstruct.Kind
		size int
		name string
	}{
		{cstruct.U8, 1, "u8"},
		{cstruct.U16, 2, "u16"},
		{cstruct.U32, 4, "u32"},
		{cstruct.U64, 8, "u64"},
		{cstruct.I16, 2, "i16"},
		{cstruct.I32, 4, "i32"},
		{cstruct.F32, 4, "f32"},
		{cstruct.F64, 8, "f64"},
		{cstruct.Ptr, ptrSize, "ptr"},
		{cstruct.BoolU8, 1, "bool_u8"},
		{cstruct.BoolU32, 4, "bool_u32"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.kind.Size(), "%v", tt.kind)
		assert.Equal(t, tt.size, tt.kind.Align(), "%v", tt.kind)
		assert.Equal(t, tt.name, tt.kind.String())
	}
}

// single compiles a one-field schema for encoding spot checks.
func single(t *testing.T, kind cstruct.Type) *cstruct.Schema {
	t.Helper()
	s, err := cstruct.Compile([]cstruct.Field{{Name: "v", Type: kind}})
	require.NoError(t, err)
	return s
}

func TestKindRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind cstruct.Kind
		in   any
		want any
	}{
		{cstruct.U8, 42, uint64(42)},
		{cstruct.U8, uint8(255), uint64(255)},
		{cstruct.U16, 0xbeef, uint64(0xbeef)},
		{cstruct.U32, uint32(0xdeadbeef), uint64(0xdeadbeef)},
		{cstruct.U64, uint64(9007199254740991), uint64(9007199254740991)},
		{cstruct.I16, -12345, int64(-12345)},
		{cstruct.I32, -7, int64(-7)},
		{cstruct.I32, int32(1 << 30), int64(1 << 30)},
		{cstruct.F32, float32(98.5), float32(98.5)},
		{cstruct.F64, 3.141592653589793, 3.141592653589793},
		{cstruct.Ptr, uintptr(0x1000), uintptr(0x1000)},
		{cstruct.Ptr, nil, uintptr(0)},
		{cstruct.BoolU8, true, true},
		{cstruct.BoolU8, false, false},
		{cstruct.BoolU32, true, true},
	}
	for _, tt := range tests {
		s := single(t, tt.kind)
		buf, err := s.Pack(cstruct.Object{"v": tt.in})
		require.NoError(t, err, "%v %v", tt.kind, tt.in)

		out, err := s.Unpack(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, tt.want, out["v"], "%v %v", tt.kind, tt.in)
	}
}

func TestKindLittleEndian(t *testing.T) {
	t.Parallel()

	s := single(t, cstruct.U32)
	buf, err := s.Pack(cstruct.Object{"v": uint32(0x01020304)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf.Bytes())

	s = single(t, cstruct.I16)
	buf, err = s.Pack(cstruct.Object{"v": -2})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfe, 0xff}, buf.Bytes())
}

func TestBoolEncoding(t *testing.T) {
	t.Parallel()

	s := single(t, cstruct.BoolU32)
	buf, err := s.Pack(cstruct.Object{"v": true})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0}, buf.Bytes())

	// Any nonzero value reads back as true.
	out, err := s.Unpack([]byte{2, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, true, out["v"])

	out, err = s.Unpack([]byte{0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, false, out["v"])
}

func TestKindValueMismatch(t *testing.T) {
	t.Parallel()

	s := single(t, cstruct.U32)
	_, err := s.Pack(cstruct.Object{"v": "nope"})
	assert.ErrorIs(t, err, cstruct.ErrValueType)
	assert.ErrorContains(t, err, `field "v"`)

	// A fractional float does not silently truncate into an integer field.
	_, err = s.Pack(cstruct.Object{"v": 1.5})
	assert.ErrorIs(t, err, cstruct.ErrValueType)

	s = single(t, cstruct.BoolU8)
	_, err = s.Pack(cstruct.Object{"v": 1})
	assert.ErrorIs(t, err, cstruct.ErrValueType)
}
