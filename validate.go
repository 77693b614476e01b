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

// Stock validators for common constraints. Catalogues with hundreds of
// schemas tend to share a handful of these rather than write one-off
// closures per field.

// ValidateRange rejects numeric values outside [lo, hi]. Absent and null
// values pass; combine with [ValidateNonNil] to require presence.
func ValidateRange(lo, hi float64) Validator {
	return func(v any, field string, _ *ValidationContext) error {
		if v == nil {
			return nil
		}
		f, ok := toFloat64(v)
		if !ok {
			return fmt.Errorf("%w: %T is not numeric", ErrValueType, v)
		}
		if f < lo || f > hi {
			return fmt.Errorf("value %v out of range [%v, %v]", v, lo, hi)
		}
		return nil
	}
}

// ValidateNonNil rejects absent and explicitly null values. Useful on
// optional fields that may be omitted together but not individually.
func ValidateNonNil() Validator {
	return func(v any, field string, _ *ValidationContext) error {
		if v == nil {
			return fmt.Errorf("value must not be null")
		}
		return nil
	}
}
