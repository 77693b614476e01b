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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/cstruct"
)

func TestPackListMatchesPackInto(t *testing.T) {
	t.Parallel()

	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "id", Type: cstruct.U32},
		{Name: "weight", Type: cstruct.F64},
		{Name: "tag", Type: cstruct.U8, Optional: true},
	})

	xs := []cstruct.Object{
		{"id": 1, "weight": 1.5, "tag": 7},
		{"id": 2, "weight": -2.25},
		{"id": 3, "weight": 0.0, "tag": 0},
	}

	packed, err := s.PackList(xs)
	require.NoError(t, err)
	require.Len(t, packed.Bytes(), s.Size()*len(xs))

	manual, err := cstruct.NewBuffer(s.Size() * len(xs))
	require.NoError(t, err)
	for i, x := range xs {
		require.NoError(t, s.PackInto(x, manual, i*s.Size()))
	}
	assert.Equal(t, manual.Bytes(), packed.Bytes())
}

func TestUnpackList(t *testing.T) {
	t.Parallel()

	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "v", Type: cstruct.U16},
	})

	buf, err := s.PackList([]cstruct.Object{{"v": 10}, {"v": 20}, {"v": 30}})
	require.NoError(t, err)

	out, err := s.UnpackList(buf.Bytes(), 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, uint64(10), out[0]["v"])
	assert.Equal(t, uint64(20), out[1]["v"])
	assert.Equal(t, uint64(30), out[2]["v"])

	_, err = s.UnpackList(buf.Bytes(), 4)
	assert.ErrorIs(t, err, cstruct.ErrBufferTooSmall)

	_, err = s.UnpackList(buf.Bytes(), -1)
	assert.Error(t, err)
}

func TestPackListFailureIndex(t *testing.T) {
	t.Parallel()

	errBad := errors.New("bad value")
	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "v", Type: cstruct.U32, Validate: []cstruct.Validator{
			func(v any, _ string, _ *cstruct.ValidationContext) error {
				if v.(int) < 0 {
					return errBad
				}
				return nil
			},
		}},
	})

	_, err := s.PackList([]cstruct.Object{{"v": 1}, {"v": -1}, {"v": 2}})
	assert.ErrorIs(t, err, errBad)
	assert.ErrorContains(t, err, "item 1")
	assert.ErrorContains(t, err, `field "v"`)
}

func TestPackIntoBounds(t *testing.T) {
	t.Parallel()

	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "v", Type: cstruct.U64},
	})

	buf, err := cstruct.NewBuffer(12)
	require.NoError(t, err)

	assert.NoError(t, s.PackInto(cstruct.Object{"v": 1}, buf, 0))
	assert.ErrorIs(t, s.PackInto(cstruct.Object{"v": 1}, buf, 8), cstruct.ErrBufferTooSmall)
	assert.ErrorIs(t, s.PackInto(cstruct.Object{"v": 1}, buf, -1), cstruct.ErrBufferTooSmall)
}

func TestPackListWithSubBuffers(t *testing.T) {
	t.Parallel()

	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "n", Type: cstruct.U32, LengthOf: "data"},
		{Name: "data", Type: cstruct.ArrayOf(cstruct.U8)},
	})

	buf, err := s.PackList([]cstruct.Object{
		{"data": []any{uint8(1), uint8(2)}},
		{"data": []any{}},
		{"data": []any{uint8(3)}},
	})
	require.NoError(t, err)

	// One sub-buffer per non-empty array, all owned by the list buffer.
	assert.Len(t, buf.Subs(), 2)

	out, err := s.UnpackList(buf.Bytes(), 3)
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1), uint64(2)}, out[0]["data"])
	assert.Equal(t, []any{}, out[1]["data"])
	assert.Equal(t, []any{uint64(3)}, out[2]["data"])
}
