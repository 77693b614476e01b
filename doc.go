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

// Package cstruct is a declarative binary struct codec: it compiles a
// schema describing a C-ABI record — fields, primitive kinds, enums,
// nested records, variable-length arrays — into a typed codec that
// serialises objects into byte buffers laid out exactly as a native
// compiler would lay out the struct, and back.
//
// It exists for runtimes that talk to native libraries through a raw
// foreign-function interface: those libraries want byte-exact, correctly
// aligned, correctly padded records, and hand-writing pack/unpack code per
// descriptor does not scale to the hundreds of descriptors a graphics API
// brings along.
//
// To use this package, compile a [*Schema] with [Compile]. This is a
// one-time cost, like regexp.Compile; the schema is immutable and safe for
// concurrent use.
//
//	sampler := cstruct.MustCompile([]cstruct.Field{
//		{Name: "magFilter", Type: filterEnum, Default: "nearest"},
//		{Name: "lodMinClamp", Type: cstruct.F32, Default: float32(0)},
//		{Name: "lodMaxClamp", Type: cstruct.F32, Default: float32(32)},
//	})
//
//	buf, err := sampler.Pack(cstruct.Object{"magFilter": "linear"})
//	// buf.Addr() is what the native call receives; keep buf alive until
//	// the callee is done with it.
//
// # Layout rules
//
// Field offsets round the running offset up to the field's natural
// alignment, which equals its size for primitives; the schema's size rounds
// the final offset up to the largest field alignment. All multibyte values
// are little-endian. There are no bitfields, no over-aligned types, and no
// packed attribute, and schemas may not be recursive.
//
// # Out-of-line data
//
// String, by-pointer record, and variable-array fields occupy one
// pointer-sized slot addressing a sub-buffer the codec allocates during
// packing. The returned [*Buffer] owns those sub-buffers; they stay valid
// for as long as the Buffer is reachable (or, with pinned memory, until
// [Buffer.Free]).
//
// Unpacking resolves arrays of primitives and enums fully. String, opaque,
// and record-array slots yield their raw address; decode them in a
// [WithReduceValue] hook when host values are needed:
//
//	cstruct.WithReduceValue(func(out cstruct.Object) cstruct.Object {
//		n := int(out["nameLen"].(uint64))
//		out["name"] = string(cstruct.ReadBytes(out["name"].(uintptr), n))
//		return out
//	})
package cstruct
