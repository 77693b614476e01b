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

// Package arena allocates the byte regions a packed struct points into.
//
// Every region handed out by an [Arena] keeps its address for the arena's
// whole lifetime: regions are never grown, moved, or reused. Holding the
// arena (or any struct buffer that holds it) keeps every region alive, so a
// foreign callee reading a pointer slot always finds the bytes it was
// promised.
//
// Two backings are available. The default backing is ordinary Go-heap
// slices. A pinned arena instead serves regions from anonymous page
// mappings, which live outside the Go heap entirely; pinned regions must be
// released with [Arena.Free] once no foreign code can observe them.
package arena

import (
	"fmt"

	"github.com/edsrzf/mmap-go"

	"github.com/bufbuild/cstruct/internal/debug"
)

// Arena owns a set of zero-filled, address-stable byte regions.
//
// A zero Arena is ready to use and heap-backed; use [NewPinned] for a
// page-mapped arena.
type Arena struct {
	regions [][]byte
	maps    []mmap.MMap
	pinned  bool
}

// New returns an empty heap-backed arena.
func New() *Arena {
	return &Arena{}
}

// NewPinned returns an empty arena whose regions are anonymous page
// mappings. The regions are page-aligned and invisible to the garbage
// collector; the caller must call [Arena.Free] when done.
func NewPinned() *Arena {
	return &Arena{pinned: true}
}

// Pinned reports whether this arena serves page-mapped regions.
func (a *Arena) Pinned() bool {
	return a.pinned
}

// Alloc returns a fresh zero-filled region of n bytes.
//
// Returns nil for n == 0: a zero-length array or string has no region and
// its pointer slot stays null.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if n < 0 {
		return nil, fmt.Errorf("arena: negative allocation: %d", n)
	}

	var region []byte
	if a.pinned {
		m, err := mmap.MapRegion(nil, n, mmap.RDWR, mmap.ANON, 0)
		if err != nil {
			return nil, fmt.Errorf("arena: mapping %d bytes: %w", n, err)
		}
		a.maps = append(a.maps, m)
		region = []byte(m)[:n]
	} else {
		region = make([]byte, n)
	}

	a.regions = append(a.regions, region)
	a.log("alloc", "%d bytes, pinned=%v", n, a.pinned)
	return region, nil
}

// Regions returns every region allocated so far, in allocation order.
//
// The returned slice aliases the arena's bookkeeping; callers must not
// mutate it.
func (a *Arena) Regions() [][]byte {
	return a.regions
}

// Free releases the arena's regions.
//
// For a pinned arena this unmaps every region; any outstanding view into
// them becomes invalid. For a heap-backed arena it merely drops the
// references and lets the collector do the rest.
func (a *Arena) Free() error {
	a.regions = nil
	var first error
	for _, m := range a.maps {
		if err := m.Unmap(); err != nil && first == nil {
			first = fmt.Errorf("arena: unmap: %w", err)
		}
	}
	a.maps = nil
	return first
}

func (a *Arena) log(op, format string, args ...any) {
	debug.Log([]any{"%p", a}, op, format, args...)
}
