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

// Package xunsafe provides the two memory primitives the codec needs to talk
// to foreign code: turning a buffer into a numeric address, and turning an
// address back into a readable byte view.
//
// Addresses produced here are only stable for as long as the backing buffer
// is kept alive by the caller. The codec never interprets them arithmetically
// beyond writing them into pointer slots.
package xunsafe

import (
	"unsafe"
)

// PtrSize is the width, in bytes, of an address on the target. It is also the
// natural alignment of pointer slots.
const PtrSize = int(unsafe.Sizeof(uintptr(0)))

// Addr returns the address of the first byte of b, or 0 if b is empty.
//
// The caller must keep b alive for as long as the returned address is
// reachable by anything that may dereference it.
func Addr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// Bytes returns an n-byte view of existing memory starting at addr.
//
// Returns nil if addr is 0 or n is not positive. The memory must remain
// valid for the lifetime of the returned slice; writes through the slice are
// visible to whoever owns the memory.
func Bytes(addr uintptr, n int) []byte {
	if addr == 0 || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}
