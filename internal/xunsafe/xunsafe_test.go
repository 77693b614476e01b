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

package xunsafe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/cstruct/internal/xunsafe"
)

func TestAddrRoundTrip(t *testing.T) {
	t.Parallel()

	b := []byte{1, 2, 3, 4}
	addr := xunsafe.Addr(b)
	require.NotZero(t, addr)

	view := xunsafe.Bytes(addr, len(b))
	assert.Equal(t, b, view)

	// Writes through the view land in the original buffer.
	view[0] = 9
	assert.Equal(t, byte(9), b[0])
}

func TestAddrEmpty(t *testing.T) {
	t.Parallel()

	assert.Zero(t, xunsafe.Addr(nil))
	assert.Zero(t, xunsafe.Addr([]byte{}))
	assert.Nil(t, xunsafe.Bytes(0, 8))
	assert.Nil(t, xunsafe.Bytes(xunsafe.Addr([]byte{1}), 0))
}

func TestRoundUp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, align, want int
	}{
		{0, 1, 0},
		{0, 8, 0},
		{1, 1, 1},
		{1, 4, 4},
		{4, 4, 4},
		{5, 4, 8},
		{9, 8, 16},
		{24, 8, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, xunsafe.RoundUp(tt.n, tt.align), "RoundUp(%d, %d)", tt.n, tt.align)
		assert.Equal(t, tt.want-tt.n, xunsafe.Padding(tt.n, tt.align), "Padding(%d, %d)", tt.n, tt.align)
	}
}

func TestIsPow2(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 4, 8, 16, 1024} {
		assert.True(t, xunsafe.IsPow2(n), "%d", n)
	}
	for _, n := range []int{0, -1, 3, 6, 12, 1000} {
		assert.False(t, xunsafe.IsPow2(n), "%d", n)
	}
}
