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

// CompileOption is a configuration setting for [Compile].
type CompileOption struct{ apply func(*compiler) }

// WithPresenceBytes enables tag-after-payload layout: every optional
// scalar, enum, or inline record is followed by one validity byte, written
// as 1 when the packed value was neither absent nor null. For native ABIs
// that carry optionality in-band rather than through pointer nullability.
func WithPresenceBytes() CompileOption {
	return CompileOption{func(c *compiler) { c.presence = true }}
}

// WithMapValue replaces each pack input with fn's result before any field
// is processed. Nested schemas apply their own map-value hooks during
// recursion.
func WithMapValue(fn func(any) any) CompileOption {
	return CompileOption{func(c *compiler) { c.mapValue = fn }}
}

// WithReduceValue replaces each unpack output with fn's result after every
// field has been read. The usual place to decode string addresses into host
// strings.
func WithReduceValue(fn func(Object) Object) CompileOption {
	return CompileOption{func(c *compiler) { c.reduceValue = fn }}
}

// WithDefault seeds every unpack output with a deep copy of the given
// partial object before any field is read.
func WithDefault(defaults Object) CompileOption {
	return CompileOption{func(c *compiler) { c.defaults = defaults }}
}

type packOptions struct {
	hints  any
	pinned bool
}

// PackOption is a configuration setting for [Schema.Pack],
// [Schema.PackInto], and [Schema.PackList].
type PackOption struct{ apply func(*packOptions) }

// WithValidationHints threads an opaque bag of values to every validator at
// every nesting depth, with object identity preserved, as
// [ValidationContext].Hints.
func WithValidationHints(hints any) PackOption {
	return PackOption{func(o *packOptions) { o.hints = hints }}
}

// WithPinnedMemory backs the packed buffer and its sub-buffers with
// anonymous page mappings instead of the Go heap, so their addresses stay
// valid outside the runtime's control. The caller must release the buffer
// with [Buffer.Free].
func WithPinnedMemory() PackOption {
	return PackOption{func(o *packOptions) { o.pinned = true }}
}

type allocOptions struct {
	pinned bool
}

// AllocOption is a configuration setting for [Schema.Alloc].
type AllocOption struct{ apply func(*allocOptions) }

// WithPinnedBuffers backs the allocation with anonymous page mappings; see
// [WithPinnedMemory].
func WithPinnedBuffers() AllocOption {
	return AllocOption{func(o *allocOptions) { o.pinned = true }}
}
