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

// Package intersect implements sorted-set intersection kernels over
// strictly increasing []int32 sequences, from scalar merges through
// wide-vector shuffling, broadcast, byte-filtered and search-based
// kernels, their Base-State Representation twins, and k-set
// compositions.
//
// Every two-set kernel visits exactly the values present in both
// inputs, once each, in increasing order. Inputs must be strictly
// increasing with no duplicates; this is a precondition and is not
// revalidated per call. Kernels that vectorize a leading prefix fall
// back to a scalar merge on the remaining suffix.
package intersect

import "github.com/UNSW-database/simd-set-operations/bsr"

// TwoSetFn is the common shape of a two-set kernel usable with any
// scalar visitor.
type TwoSetFn func(a, b []int32, v Visitor)

// KSetFn intersects k >= 2 sets through a visitor.
type KSetFn func(sets [][]int32, v Visitor)

// BSRFn is the shape of a BSR two-set kernel.
type BSRFn func(a, b *bsr.Set, v BSRVisitor)

// binarySearch returns the index of target within set[lo..hi]
// (inclusive bounds), or the insertion point if absent.
func binarySearch(set []int32, target int32, lo, hi int) int {
	for lo <= hi {
		mid := lo + (hi-lo)/2
		switch v := set[mid]; {
		case v < target:
			lo = mid + 1
		case v > target:
			hi = mid - 1
		default:
			return mid
		}
	}
	return lo
}

// binarySearchU is binarySearch over BSR bases.
func binarySearchU(set []uint32, target uint32, lo, hi int) int {
	for lo <= hi {
		mid := lo + (hi-lo)/2
		switch v := set[mid]; {
		case v < target:
			lo = mid + 1
		case v > target:
			hi = mid - 1
		default:
			return mid
		}
	}
	return lo
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
