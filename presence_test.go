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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/cstruct"
)

func TestPresenceBytes(t *testing.T) {
	t.Parallel()

	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "a", Type: cstruct.U32},
		{Name: "b", Type: cstruct.U32, Optional: true},
	}, cstruct.WithPresenceBytes())

	// The validity byte sits immediately after b's payload and counts
	// toward the size.
	assert.Equal(t, 12, s.Size())
	assert.Equal(t, 4, s.Align())

	buf, err := s.Pack(cstruct.Object{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, byte(1), buf.Bytes()[8])

	out, err := s.Unpack(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), out["b"])

	// Absent and explicitly null both clear the tag and unpack as nil.
	for _, in := range []cstruct.Object{
		{"a": 1},
		{"a": 1, "b": nil},
	} {
		buf, err := s.Pack(in)
		require.NoError(t, err)
		assert.Equal(t, byte(0), buf.Bytes()[8])

		out, err := s.Unpack(buf.Bytes())
		require.NoError(t, err)
		v, ok := out["b"]
		assert.True(t, ok)
		assert.Nil(t, v)
	}

	// A zero value is present: the tag reads 1.
	buf, err = s.Pack(cstruct.Object{"a": 1, "b": 0})
	require.NoError(t, err)
	assert.Equal(t, byte(1), buf.Bytes()[8])
}

func TestPresenceBytesInlineRecord(t *testing.T) {
	t.Parallel()

	inner := cstruct.MustCompile([]cstruct.Field{
		{Name: "v", Type: cstruct.U16},
	})
	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "opt", Type: inner, Optional: true},
		{Name: "tail", Type: cstruct.U16},
	}, cstruct.WithPresenceBytes())

	// opt payload at 0 (2 bytes), tag at 2, tail realigns to 4.
	info := s.Describe()
	require.Len(t, info, 2)
	assert.Equal(t, 0, info[0].Offset)
	assert.Equal(t, 4, info[1].Offset)
	assert.Equal(t, 6, s.Size())

	buf, err := s.Pack(cstruct.Object{"opt": cstruct.Object{"v": 7}, "tail": 9})
	require.NoError(t, err)
	assert.Equal(t, byte(1), buf.Bytes()[2])

	out, err := s.Unpack(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, cstruct.Object{"v": uint64(7)}, out["opt"])
}

func TestPresenceBytesSkipPointerSlots(t *testing.T) {
	t.Parallel()

	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "name", Type: cstruct.CString, Optional: true},
		{Name: "device", Type: cstruct.Opaque, Optional: true},
	}, cstruct.WithPresenceBytes())

	// Pointer slots carry absence as the null address; no tags appear and
	// the layout is two bare slots.
	assert.Equal(t, 2*ptrSize, s.Size())

	buf, err := s.Pack(cstruct.Object{})
	require.NoError(t, err)
	out, err := s.Unpack(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uintptr(0), out["name"])
	assert.Equal(t, uintptr(0), out["device"])
}

func TestPresenceRequiresOptional(t *testing.T) {
	t.Parallel()

	// Non-optional fields never grow tags, even in presence mode.
	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "a", Type: cstruct.U32},
		{Name: "b", Type: cstruct.U32},
	}, cstruct.WithPresenceBytes())
	assert.Equal(t, 8, s.Size())
}
