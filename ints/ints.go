// Copyright (C) 2023 UNSW Database Group
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package ints implements small integer helpers shared by the set
// representations and kernels: bit addressing into word slices and
// power-of-two arithmetic.
package ints

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// TestBit checks if the k-th bit is set in range "in"
func TestBit[T, K constraints.Integer](in []T, k K) bool {
	return (in[uintptr(k)/(unsafe.Sizeof(in[0])*8)] & (T(1) << (uintptr(k) % (unsafe.Sizeof(in[0]) * 8)))) != 0
}

// SetBit sets the k-th bit in range "in"
func SetBit[T, K constraints.Integer](in []T, k K) {
	in[uintptr(k)/(unsafe.Sizeof(in[0])*8)] |= (T(1) << (uintptr(k) % (unsafe.Sizeof(in[0]) * 8)))
}

// ClearBit clears the k-th bit in range "in"
func ClearBit[T, K constraints.Integer](in []T, k K) {
	in[uintptr(k)/(unsafe.Sizeof(in[0])*8)] &= ^(T(1) << (uintptr(k) % (unsafe.Sizeof(in[0]) * 8)))
}

// AlignDown returns v aligned down to a given alignment.
func AlignDown[T constraints.Integer](v, alignment T) T {
	return (v / alignment) * alignment
}

// AlignUp returns v aligned up to a given alignment.
func AlignUp[T constraints.Integer](v, alignment T) T {
	return ((v + alignment - 1) / alignment) * alignment
}

// NextPow2 returns the smallest power of two >= v (and at least 1).
func NextPow2[T constraints.Integer](v T) T {
	p := T(1)
	for p < v {
		p <<= 1
	}
	return p
}

// IsPow2 reports whether v is a power of two.
func IsPow2[T constraints.Integer](v T) bool {
	return v > 0 && v&(v-1) == 0
}
