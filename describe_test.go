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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/cstruct"
)

func TestDescribe(t *testing.T) {
	t.Parallel()

	inner := cstruct.MustCompile([]cstruct.Field{
		{Name: "v", Type: cstruct.U32},
	})
	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "id", Type: cstruct.U32},
		{Name: "n", Type: cstruct.U32, LengthOf: "items"},
		{Name: "items", Type: cstruct.ArrayOf(cstruct.U16)},
		{Name: "extra", Type: inner, ByPointer: true, Optional: true},
	})

	info := s.Describe()
	require.Len(t, info, 4)

	assert.Equal(t, "id", info[0].Name)
	assert.Equal(t, cstruct.U32, info[0].Type)
	assert.False(t, info[0].Optional)

	// Length-of fields report their referent and are optional on input.
	assert.Equal(t, "items", info[1].LengthOf)
	assert.True(t, info[1].Optional)

	assert.Equal(t, ptrSize, info[2].Size)
	assert.Equal(t, ptrSize, info[2].Align)

	assert.True(t, info[3].ByPointer)
	assert.True(t, info[3].Optional)
}

func TestDescribeOmitsVirtual(t *testing.T) {
	t.Parallel()

	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "a", Type: cstruct.U32, Optional: true},
		{Name: "b", Type: cstruct.U32},
	}, cstruct.WithPresenceBytes())

	// The validity tag occupies bytes but is not a describable field.
	info := s.Describe()
	require.Len(t, info, 2)
	assert.Equal(t, []string{"a", "b"}, []string{info[0].Name, info[1].Name})
	assert.Equal(t, 12, s.Size())
}

func TestSchemaFormat(t *testing.T) {
	t.Parallel()

	s := cstruct.MustCompile([]cstruct.Field{
		{Name: "a", Type: cstruct.U8},
		{Name: "b", Type: cstruct.U32},
	})

	assert.Equal(t, "struct{size=8, align=4}", fmt.Sprintf("%v", s))

	long := fmt.Sprintf("%+v", s)
	assert.Contains(t, long, "a: u8")
	assert.Contains(t, long, "b: u32")
	assert.Contains(t, long, "0x04")
}
