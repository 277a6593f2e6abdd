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

import (
	"github.com/UNSW-database/simd-set-operations/bsr"
	"github.com/UNSW-database/simd-set-operations/simd"
)

// Wide galloping works on blocks of 32 vector registers. The gallop
// stage leaps whole blocks by comparing each block's last element,
// a two-level quarter selector narrows to a run of 8 registers, and
// the final membership test OR-reduces 8 splat compares. When the
// larger side drops below one block, the sides swap or the remainder
// falls back to the scalar merge.

// registersPerBlock is the number of vector registers covered by one
// gallop step.
const registersPerBlock = 32

func GallopingSSE(a, b []int32, v Visitor) {
	simdGalloping(a, b, 4, blockAny4, v)
}

func GallopingAVX2(a, b []int32, v Visitor) {
	simdGalloping(a, b, 8, blockAny8, v)
}

func GallopingAVX512(a, b []int32, v Visitor) {
	simdGalloping(a, b, 16, blockAny16, v)
}

func simdGalloping(small, large []int32, lanes int, blockAny func(int32, []int32, int) bool, v Visitor) {
	if len(small) > len(large) {
		small, large = large, small
	}
	bound := lanes * registersPerBlock

	for len(small) > 0 && len(large) >= bound {
		target := small[0]

		block := gallopWide(target, large, bound)

		if large[(block+1)*bound-1] < target {
			// Block below target: everything up to and including it
			// can be discarded.
			large = large[(block+1)*bound:]
			if len(small) >= bound {
				small, large = large, small
				continue
			}
			break
		}

		large = large[block*bound:]

		inner := reduceSearchBound(target, large, bound)
		if blockAny(target, large, inner) {
			v.Visit(target)
		}
		small = small[1:]
	}

	BranchlessMerge(small, large, v)
}

func blockAny4(target int32, large []int32, inner int) bool {
	t := simd.Splat4(target)
	var m uint64
	for k := 0; k < 8; k++ {
		m |= simd.EqMask4(t, simd.Load4(large[4*(inner+k):]))
	}
	return m != 0
}

func blockAny8(target int32, large []int32, inner int) bool {
	t := simd.Splat8(target)
	var m uint64
	for k := 0; k < 8; k++ {
		m |= simd.EqMask8(t, simd.Load8(large[8*(inner+k):]))
	}
	return m != 0
}

func blockAny16(target int32, large []int32, inner int) bool {
	t := simd.Splat16(target)
	var m uint64
	for k := 0; k < 8; k++ {
		m |= simd.EqMask16(t, simd.Load16(large[16*(inner+k):]))
	}
	return m != 0
}

// gallopWide locates the block whose last element first reaches
// target: exponential doubling over block indices, then a binary
// search between the last undershooting probe and the overshoot.
func gallopWide(target int32, large []int32, bound int) int {
	upper := 0
	if large[bound-1] < target {
		offset := 1
		for (offset+1)*bound-1 < len(large) && large[(offset+1)*bound-1] < target {
			offset *= 2
		}
		upper = offset
	}

	lo := upper / 2
	hi := len(large)/bound - 1
	if upper < hi {
		hi = upper
	}
	return binarySearchWide(target, large, lo, hi, bound)
}

// binarySearchWide finds the first block index in [lo, hi] whose last
// element is >= target.
func binarySearchWide(target int32, large []int32, lo, hi, bound int) int {
	for lo < hi {
		mid := lo + (hi-lo)/2
		if large[(mid+1)*bound-1] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// reduceSearchBound halves twice on quarter boundaries, returning the
// register index (within the block) of the 8-register run that may
// hold target.
func reduceSearchBound(target int32, large []int32, bound int) int {
	if large[bound/2-1] >= target {
		if large[bound/4-1] < target {
			return registersPerBlock / 4
		}
		return 0
	}
	if large[bound*3/4-1] < target {
		return registersPerBlock * 3 / 4
	}
	return registersPerBlock / 2
}

// BSR variants gallop in single-register steps over bases; a base hit
// resolves the matching lane and ANDs the states.

func GallopingSSEBSR(a, b *bsr.Set, v BSRVisitor) {
	simdGallopingBSR(a, b, 4, v)
}

func GallopingAVX2BSR(a, b *bsr.Set, v BSRVisitor) {
	simdGallopingBSR(a, b, 8, v)
}

func GallopingAVX512BSR(a, b *bsr.Set, v BSRVisitor) {
	simdGallopingBSR(a, b, 16, v)
}

func simdGallopingBSR(a, b *bsr.Set, lanes int, v BSRVisitor) {
	smallB, smallS := a.Bases, a.States
	largeB, largeS := b.Bases, b.States
	if len(smallB) > len(largeB) {
		smallB, largeB = largeB, smallB
		smallS, largeS = largeS, smallS
	}
	bound := lanes

	for len(smallB) > 0 && len(largeB) >= bound {
		target := smallB[0]

		block := gallopWideU(target, largeB, bound)

		if largeB[(block+1)*bound-1] < target {
			largeB = largeB[(block+1)*bound:]
			largeS = largeS[(block+1)*bound:]
			if len(smallB) >= bound {
				smallB, largeB = largeB, smallB
				smallS, largeS = largeS, smallS
				continue
			}
			break
		}

		largeB = largeB[block*bound:]
		largeS = largeS[block*bound:]

		if lane, ok := baseLane(target, largeB, lanes); ok {
			if state := smallS[0] & largeS[lane]; state != 0 {
				v.VisitBSR(target, state)
			}
		}
		smallB = smallB[1:]
		smallS = smallS[1:]
	}

	mergeBSRBranchless(smallB, smallS, largeB, largeS, v)
}

func baseLane(target uint32, bases []uint32, lanes int) (int, bool) {
	var mask uint64
	switch lanes {
	case 4:
		mask = simd.EqMask4(simd.SplatU4(target), simd.LoadU4(bases))
	case 8:
		mask = simd.EqMask8(simd.SplatU8(target), simd.LoadU8(bases))
	default:
		mask = simd.EqMask16(simd.SplatU16(target), simd.LoadU16(bases))
	}
	if mask == 0 {
		return 0, false
	}
	lane := 0
	for mask&1 == 0 {
		mask >>= 1
		lane++
	}
	return lane, true
}

func gallopWideU(target uint32, large []uint32, bound int) int {
	upper := 0
	if large[bound-1] < target {
		offset := 1
		for (offset+1)*bound-1 < len(large) && large[(offset+1)*bound-1] < target {
			offset *= 2
		}
		upper = offset
	}

	lo := upper / 2
	hi := len(large)/bound - 1
	if upper < hi {
		hi = upper
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		if large[(mid+1)*bound-1] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
