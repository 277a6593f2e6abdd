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

// The broadcast family holds a window of A and compares it against a
// splat of each element of B's window, OR-reducing the masks. Result
// and advancement are identical to shuffling; the two differ only in
// how B's window is presented to the comparator.

func BroadcastSSE(a, b []int32, v Vector4Visitor) {
	const w = 4
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load4(a[ia:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask4(va, simd.Splat4(b[ib+k]))
		}
		v.VisitVector4(va, mask)

		amax, bmax := a[ia+w-1], b[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	BranchlessMerge(a[ia:], b[ib:], v)
}

func BroadcastAVX2(a, b []int32, v Vector8Visitor) {
	const w = 8
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load8(a[ia:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask8(va, simd.Splat8(b[ib+k]))
		}
		v.VisitVector8(va, mask)

		amax, bmax := a[ia+w-1], b[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	BranchlessMerge(a[ia:], b[ib:], v)
}

func BroadcastAVX512(a, b []int32, v Vector16Visitor) {
	const w = 16
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load16(a[ia:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask16(va, simd.Splat16(b[ib+k]))
		}
		v.VisitVector16(va, mask)

		amax, bmax := a[ia+w-1], b[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	BranchlessMerge(a[ia:], b[ib:], v)
}

func BroadcastSSEBranch(a, b []int32, v Vector4Visitor) {
	const w = 4
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load4(a[ia:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask4(va, simd.Splat4(b[ib+k]))
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

func BroadcastAVX2Branch(a, b []int32, v Vector8Visitor) {
	const w = 8
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load8(a[ia:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask8(va, simd.Splat8(b[ib+k]))
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

func BroadcastAVX512Branch(a, b []int32, v Vector16Visitor) {
	const w = 16
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load16(a[ia:])

		var mask uint64
		for k := 0; k < w; k++ {
			mask |= simd.EqMask16(va, simd.Splat16(b[ib+k]))
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

func BroadcastSSEBSR(a, b *bsr.Set, v BSRVector4Visitor) {
	const w = 4
	stA := ints.AlignDown(a.Len(), w)
	stB := ints.AlignDown(b.Len(), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		baseA := simd.LoadU4(a.Bases[ia:])
		stateA := simd.LoadU4(a.States[ia:])

		var baseMask uint64
		var state simd.Vec4
		for k := 0; k < w; k++ {
			m := simd.EqMask4(baseA, simd.SplatU4(b.Bases[ib+k]))
			baseMask |= m
			state = simd.Or4(state, simd.Masked4(simd.And4(stateA, simd.SplatU4(b.States[ib+k])), m))
		}
		mask := baseMask & simd.NonzeroMask4(state)
		v.VisitBSRVector4(baseA, state, mask)

		amax, bmax := a.Bases[ia+w-1], b.Bases[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	mergeBSRBranchless(a.Bases[ia:], a.States[ia:], b.Bases[ib:], b.States[ib:], v)
}

func BroadcastAVX2BSR(a, b *bsr.Set, v BSRVector8Visitor) {
	const w = 8
	stA := ints.AlignDown(a.Len(), w)
	stB := ints.AlignDown(b.Len(), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		baseA := simd.LoadU8(a.Bases[ia:])
		stateA := simd.LoadU8(a.States[ia:])

		var baseMask uint64
		var state simd.Vec8
		for k := 0; k < w; k++ {
			m := simd.EqMask8(baseA, simd.SplatU8(b.Bases[ib+k]))
			baseMask |= m
			state = simd.Or8(state, simd.Masked8(simd.And8(stateA, simd.SplatU8(b.States[ib+k])), m))
		}
		mask := baseMask & simd.NonzeroMask8(state)
		v.VisitBSRVector8(baseA, state, mask)

		amax, bmax := a.Bases[ia+w-1], b.Bases[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	mergeBSRBranchless(a.Bases[ia:], a.States[ia:], b.Bases[ib:], b.States[ib:], v)
}

func BroadcastAVX512BSR(a, b *bsr.Set, v BSRVector16Visitor) {
	const w = 16
	stA := ints.AlignDown(a.Len(), w)
	stB := ints.AlignDown(b.Len(), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		baseA := simd.LoadU16(a.Bases[ia:])
		stateA := simd.LoadU16(a.States[ia:])

		var baseMask uint64
		var state simd.Vec16
		for k := 0; k < w; k++ {
			m := simd.EqMask16(baseA, simd.SplatU16(b.Bases[ib+k]))
			baseMask |= m
			state = simd.Or16(state, simd.Masked16(simd.And16(stateA, simd.SplatU16(b.States[ib+k])), m))
		}
		mask := baseMask & simd.NonzeroMask16(state)
		v.VisitBSRVector16(baseA, state, mask)

		amax, bmax := a.Bases[ia+w-1], b.Bases[ib+w-1]
		ia += w * b2i(amax <= bmax)
		ib += w * b2i(bmax <= amax)
	}
	mergeBSRBranchless(a.Bases[ia:], a.States[ia:], b.Bases[ib:], b.States[ib:], v)
}
