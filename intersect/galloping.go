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

package intersect

import "github.com/UNSW-database/simd-set-operations/bsr"

// Search-based kernels: each element of the smaller set is located in
// the larger set, and the larger set's cursor never moves backwards
// because targets arrive in ascending order.

// Galloping looks each element of the smaller set up in the larger
// one by doubling the probe offset until overshoot, then binary
// searching the bracketed range.
func Galloping(a, b []int32, v Visitor) {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	for _, target := range small {
		offset := 1
		for offset < len(large) && large[offset] <= target {
			offset *= 2
		}
		hi := offset
		if hi > len(large)-1 {
			hi = len(large) - 1
		}
		base := binarySearch(large, target, offset/2, hi)
		if base < len(large) && large[base] == target {
			v.Visit(target)
		}
		large = large[base:]
	}
}

// BinarySearchIntersect is Galloping without the exponential phase:
// each target binary-searches the whole remaining suffix.
func BinarySearchIntersect(a, b []int32, v Visitor) {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	for _, target := range small {
		base := binarySearch(large, target, 0, len(large)-1)
		if base < len(large) && large[base] == target {
			v.Visit(target)
		}
		large = large[base:]
	}
}

// GallopingBSR gallops over bases; a base hit emits the state AND
// when nonzero.
func GallopingBSR(a, b *bsr.Set, v BSRVisitor) {
	smallB, smallS := a.Bases, a.States
	largeB, largeS := b.Bases, b.States
	if len(smallB) > len(largeB) {
		smallB, largeB = largeB, smallB
		smallS, largeS = largeS, smallS
	}
	for i, target := range smallB {
		offset := 1
		for offset < len(largeB) && largeB[offset] <= target {
			offset *= 2
		}
		hi := offset
		if hi > len(largeB)-1 {
			hi = len(largeB) - 1
		}
		base := binarySearchU(largeB, target, offset/2, hi)
		if base < len(largeB) && largeB[base] == target {
			if state := smallS[i] & largeS[base]; state != 0 {
				v.VisitBSR(target, state)
			}
		}
		largeB = largeB[base:]
		largeS = largeS[base:]
	}
}

// BaezaYates recursively splits the smaller set at its midpoint,
// locates the pivot in the larger set and recurses into the two
// halves, visiting the pivot between them to keep output ordered.
func BaezaYates(a, b []int32, v Visitor) {
	if len(a) == 0 || len(b) == 0 {
		return
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	mid := len(a) / 2
	target := a[mid]

	part := binarySearch(b, target, 0, len(b)-1)

	BaezaYates(a[:mid], b[:part], v)

	if part >= len(b) {
		return
	}
	if b[part] == target {
		v.Visit(target)
	}
	BaezaYates(a[mid+1:], b[part:], v)
}
