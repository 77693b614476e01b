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

package xunsafe

// RoundUp rounds n up to a multiple of align, which must be a power of two.
func RoundUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// Padding returns the number of bytes between n and the next multiple of
// align, which must be a power of two.
func Padding(n, align int) int {
	return RoundUp(n, align) - n
}

// IsPow2 reports whether n is a power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
