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
	"github.com/UNSW-database/simd-set-operations/ints"
	"github.com/UNSW-database/simd-set-operations/simd"
)

// The shuffling family compares an aligned window of A against every
// lane rotation of an aligned window of B, OR-reduces the per-rotation
// equality masks and hands the window to the visitor. Cursors advance
// by whole windows based on the window maxima; the unaligned suffix
// goes through BranchlessMerge.

func ShufflingSSE(a, b []int32, v Vector4Visitor) {
	const w = 4
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load4(a[ia:])
		vb := simd.Load4(b[ib:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask4(va, vb.RotL(k))
		}
		v.VisitVector4(va, mask)

		amax, bmax := a[ia+w-1], b[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	BranchlessMerge(a[ia:], b[ib:], v)
}

func ShufflingAVX2(a, b []int32, v Vector8Visitor) {
	const w = 8
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load8(a[ia:])
		vb := simd.Load8(b[ib:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask8(va, vb.RotL(k))
		}
		v.VisitVector8(va, mask)

		amax, bmax := a[ia+w-1], b[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	BranchlessMerge(a[ia:], b[ib:], v)
}

func ShufflingAVX512(a, b []int32, v Vector16Visitor) {
	const w = 16
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load16(a[ia:])
		vb := simd.Load16(b[ib:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask16(va, vb.RotL(k))
		}
		v.VisitVector16(va, mask)

		amax, bmax := a[ia+w-1], b[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	BranchlessMerge(a[ia:], b[ib:], v)
}

// Explicit-branch variants: identical results, three-way compare on
// the window maxima instead of arithmetic cursor updates. Kept to
// compare compiler-generated branches against the branchless form.

func ShufflingSSEBranch(a, b []int32, v Vector4Visitor) {
	const w = 4
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load4(a[ia:])
		vb := simd.Load4(b[ib:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask4(va, vb.RotL(k))
		}
		v.VisitVector4(va, mask)

		switch amax, bmax := a[ia+w-1], b[ib+w-1]; {
		case amax == bmax:
			ia += w
			ib += w
		case amax < bmax:
			ia += w
		default:
			ib += w
		}
	}
	BranchlessMerge(a[ia:], b[ib:], v)
}

func ShufflingAVX2Branch(a, b []int32, v Vector8Visitor) {
	const w = 8
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load8(a[ia:])
		vb := simd.Load8(b[ib:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask8(va, vb.RotL(k))
		}
		v.VisitVector8(va, mask)

		switch amax, bmax := a[ia+w-1], b[ib+w-1]; {
		case amax == bmax:
			ia += w
			ib += w
		case amax < bmax:
			ia += w
		default:
			ib += w
		}
	}
	BranchlessMerge(a[ia:], b[ib:], v)
}

func ShufflingAVX512Branch(a, b []int32, v Vector16Visitor) {
	const w = 16
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load16(a[ia:])
		vb := simd.Load16(b[ib:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask16(va, vb.RotL(k))
		}
		v.VisitVector16(va, mask)

		switch amax, bmax := a[ia+w-1], b[ib+w-1]; {
		case amax == bmax:
			ia += w
			ib += w
		case amax < bmax:
			ia += w
		default:
			ib += w
		}
	}
	BranchlessMerge(a[ia:], b[ib:], v)
}

// BSR twins: the rotation compare runs on bases; matching rotations
// contribute the AND of the rotated states. A lane only counts when
// its base matches somewhere and the combined state is nonzero.

func ShufflingSSEBSR(a, b *bsr.Set, v BSRVector4Visitor) {
	const w = 4
	stA := ints.AlignDown(a.Len(), w)
	stB := ints.AlignDown(b.Len(), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		baseA := simd.LoadU4(a.Bases[ia:])
		baseB := simd.LoadU4(b.Bases[ib:])
		stateA := simd.LoadU4(a.States[ia:])
		stateB := simd.LoadU4(b.States[ib:])

		var baseMask uint64
		var state simd.Vec4
		for k := 0; k < w; k++ {
			m := simd.EqMask4(baseA, baseB.RotL(k))
			baseMask |= m
			state = simd.Or4(state, simd.Masked4(simd.And4(stateA, stateB.RotL(k)), m))
		}
		mask := baseMask & simd.NonzeroMask4(state)
		v.VisitBSRVector4(baseA, state, mask)

		amax, bmax := a.Bases[ia+w-1], b.Bases[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	mergeBSRBranchless(a.Bases[ia:], a.States[ia:], b.Bases[ib:], b.States[ib:], v)
}

func ShufflingAVX2BSR(a, b *bsr.Set, v BSRVector8Visitor) {
	const w = 8
	stA := ints.AlignDown(a.Len(), w)
	stB := ints.AlignDown(b.Len(), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		baseA := simd.LoadU8(a.Bases[ia:])
		baseB := simd.LoadU8(b.Bases[ib:])
		stateA := simd.LoadU8(a.States[ia:])
		stateB := simd.LoadU8(b.States[ib:])

		var baseMask uint64
		var state simd.Vec8
		for k := 0; k < w; k++ {
			m := simd.EqMask8(baseA, baseB.RotL(k))
			baseMask |= m
			state = simd.Or8(state, simd.Masked8(simd.And8(stateA, stateB.RotL(k)), m))
		}
		mask := baseMask & simd.NonzeroMask8(state)
		v.VisitBSRVector8(baseA, state, mask)

		amax, bmax := a.Bases[ia+w-1], b.Bases[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	mergeBSRBranchless(a.Bases[ia:], a.States[ia:], b.Bases[ib:], b.States[ib:], v)
}

func ShufflingAVX512BSR(a, b *bsr.Set, v BSRVector16Visitor) {
	const w = 16
	stA := ints.AlignDown(a.Len(), w)
	stB := ints.AlignDown(b.Len(), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		baseA := simd.LoadU16(a.Bases[ia:])
		baseB := simd.LoadU16(b.Bases[ib:])
		stateA := simd.LoadU16(a.States[ia:])
		stateB := simd.LoadU16(b.States[ib:])

		var baseMask uint64
		var state simd.Vec16
		for k := 0; k < w; k++ {
			m := simd.EqMask16(baseA, baseB.RotL(k))
			baseMask |= m
			state = simd.Or16(state, simd.Masked16(simd.And16(stateA, stateB.RotL(k)), m))
		}
		mask := baseMask & simd.NonzeroMask16(state)
		v.VisitBSRVector16(baseA, state, mask)

		amax, bmax := a.Bases[ia+w-1], b.Bases[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	mergeBSRBranchless(a.Bases[ia:], a.States[ia:], b.Bases[ib:], b.States[ib:], v)
}
