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
	"fmt"
)

// Enum is a bidirectional mapping between a set of names and integers,
// pinned to an integer primitive backing kind.
//
// An Enum is immutable after construction and safe for concurrent use.
// Value sets may include reserved sentinels (such as force-32 markers) like
// any other member.
type Enum struct {
	kind    Kind
	byName  map[string]int64
	byValue map[int64]string
}

// NewEnum builds an enum backed by kind.
//
// The backing kind must be an integer primitive; boolean and floating
// kinds are rejected. Names and values must each be unique.
func NewEnum(kind Kind, values map[string]int64) (*Enum, error) {
	if !kind.isInteger() {
		return nil, &SchemaError{msg: fmt.Sprintf("enum backing kind must be an integer primitive, got %v", kind)}
	}
	e := &Enum{
		kind:    kind,
		byName:  make(map[string]int64, len(values)),
		byValue: make(map[int64]string, len(values)),
	}
	for name, v := range values {
		if prev, ok := e.byValue[v]; ok {
			return nil, &SchemaError{msg: fmt.Sprintf("enum value %d mapped by both %q and %q", v, prev, name)}
		}
		e.byName[name] = v
		e.byValue[v] = name
	}
	return e, nil
}

// MustEnum is like [NewEnum] but panics on error, for use in variable
// initializers.
func MustEnum(kind Kind, values map[string]int64) *Enum {
	e, err := NewEnum(kind, values)
	if err != nil {
		panic(err)
	}
	return e
}

func (*Enum) isType() {}

// Kind returns the enum's backing primitive kind.
func (e *Enum) Kind() Kind {
	return e.kind
}

// Len returns the number of members.
func (e *Enum) Len() int {
	return len(e.byName)
}

// To resolves a member name to its integer value.
func (e *Enum) To(name string) (int64, error) {
	v, ok := e.byName[name]
	if !ok {
		return 0, fmt.Errorf("cstruct: %w: %q", ErrInvalidEnum, name)
	}
	return v, nil
}

// From resolves an integer value to its member name.
func (e *Enum) From(v int64) (string, error) {
	name, ok := e.byValue[v]
	if !ok {
		return "", fmt.Errorf("cstruct: %w: %d", ErrInvalidEnum, v)
	}
	return name, nil
}

// String implements [fmt.Stringer].
func (e *Enum) String() string {
	return fmt.Sprintf("enum(%v)", e.kind)
}

// encode resolves a pack-time value, which may be a member name or a raw
// integer already in the value set.
func (e *Enum) encode(v any) (int64, error) {
	switch x := v.(type) {
	case string:
		return e.To(x)
	default:
		i, ok := toInt64(v)
		if !ok {
			return 0, fmt.Errorf("%w: %T for %v", ErrValueType, v, e)
		}
		if _, ok := e.byValue[i]; !ok {
			return 0, fmt.Errorf("cstruct: %w: %d", ErrInvalidEnum, i)
		}
		return i, nil
	}
}
