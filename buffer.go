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
	"github.com/bufbuild/cstruct/internal/arena"
	"github.com/bufbuild/cstruct/internal/xunsafe"
)

// Buffer is a packed record: the main bytes plus every sub-buffer allocated
// on the caller's behalf for arrays, strings, and by-pointer records.
//
// The Buffer owns the sub-buffers the main bytes point into; keep it alive
// for as long as any downstream consumer may follow those pointers. The
// engine itself retains no reference to a Buffer after returning it.
type Buffer struct {
	data  []byte
	arena *arena.Arena

	// Number of arena regions backing the main bytes (0 or 1); everything
	// after them is a sub-buffer.
	nmain int
}

// NewBuffer allocates a zero-filled buffer of n bytes, for callers that
// fill a region themselves with [Schema.PackInto].
func NewBuffer(n int, options ...AllocOption) (*Buffer, error) {
	var opts allocOptions
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(&opts)
		}
	}
	return newBuffer(n, opts.pinned)
}

// newBuffer allocates a zero-filled buffer of n bytes. A pinned buffer and
// its sub-buffers live in page mappings outside the Go heap and must be
// released with [Buffer.Free].
func newBuffer(n int, pinned bool) (*Buffer, error) {
	a := arena.New()
	if pinned {
		a = arena.NewPinned()
	}
	data, err := a.Alloc(n)
	if err != nil {
		return nil, err
	}
	return &Buffer{data: data, arena: a, nmain: len(a.Regions())}, nil
}

// alloc carves out a fresh zero-filled sub-buffer.
func (b *Buffer) alloc(n int) ([]byte, error) {
	return b.arena.Alloc(n)
}

// Bytes returns the main packed bytes.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Addr returns the address of the main packed bytes, for handing to a
// native callee. The address is valid while the Buffer is alive.
func (b *Buffer) Addr() uintptr {
	return xunsafe.Addr(b.data)
}

// Subs returns the sub-buffers allocated while packing, in allocation
// order. Callers normally only need these to keep individual regions alive
// independently of the Buffer, or to write array elements in place after
// [Schema.Alloc].
func (b *Buffer) Subs() [][]byte {
	return b.arena.Regions()[b.nmain:]
}

// Pinned reports whether this buffer lives in page mappings rather than the
// Go heap.
func (b *Buffer) Pinned() bool {
	return b.arena.Pinned()
}

// ReadBytes returns an n-byte view of existing memory starting at addr,
// or nil for a null address. The usual way to materialise strings and
// record arrays from the raw addresses [Schema.Unpack] yields, when the
// pointed-to memory is still alive.
func ReadBytes(addr uintptr, n int) []byte {
	return xunsafe.Bytes(addr, n)
}

// Free releases the buffer's memory. It must be called for pinned buffers
// once no native code can observe them; for ordinary buffers it is optional
// and merely drops references early.
func (b *Buffer) Free() error {
	b.data = nil
	return b.arena.Free()
}
