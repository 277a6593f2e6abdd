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
	"github.com/UNSW-database/simd-set-operations/ints"
	"github.com/UNSW-database/simd-set-operations/simd"
)

// AVX-512 specialized kernels, contract-equivalent to shuffling.

// VP2IntersectEmulation computes the 16-lane "matches anywhere in the
// other vector" mask with four lane-group rotations of a against
// three quad shuffles of b, chaining zero-masked not-equal compares
// so each predicate feeds the next.
//
// Diez-Canas, G. (2021). Faster-Than-Native Alternatives for x86
// VP2INTERSECT Instructions. arXiv:2112.06342.
func VP2IntersectEmulation(a, b []int32, v Vector16Visitor) {
	const w = 16
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load16(a[ia:])
		vb := simd.Load16(b[ib:])

		v.VisitVector16(va, vp2intersectMask(va, vb))

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

func vp2intersectMask(a, b simd.Vec16) uint64 {
	a1 := a.RotL(4)
	a2 := a.RotL(8)
	a3 := a.RotL(12)

	b1 := simd.ShuffleQuadRotL(b, 1)
	b2 := simd.ShuffleQuadRotL(b, 2)
	b3 := simd.ShuffleQuadRotL(b, 3)

	nm00 := simd.NeMask16(a, b)
	nm01 := simd.NeMask16(a1, b)
	nm02 := simd.NeMask16(a2, b)
	nm03 := simd.NeMask16(a3, b)

	nm10 := simd.MaskedNeMask16(nm00, a, b1)
	nm11 := simd.MaskedNeMask16(nm01, a1, b1)
	nm12 := simd.MaskedNeMask16(nm02, a2, b1)
	nm13 := simd.MaskedNeMask16(nm03, a3, b1)

	nm20 := simd.MaskedNeMask16(nm10, a, b2)
	nm21 := simd.MaskedNeMask16(nm11, a1, b2)
	nm22 := simd.MaskedNeMask16(nm12, a2, b2)
	nm23 := simd.MaskedNeMask16(nm13, a3, b2)

	nm0 := simd.MaskedNeMask16(nm20, a, b3)
	nm1 := simd.MaskedNeMask16(nm21, a1, b3)
	nm2 := simd.MaskedNeMask16(nm22, a2, b3)
	nm3 := simd.MaskedNeMask16(nm23, a3, b3)

	return ^(nm0 & simd.RotMask16(nm1, 4) & simd.RotMask16(nm2, 8) & simd.RotMask16(nm3, -4)) & 0xffff
}

// ConflictIntersect packs an 8-lane window of each input into one
// 16-lane pool; the conflict detection reports lanes equal to an
// earlier lane, which in the upper half are exactly b-lanes matching
// an a-lane.
func ConflictIntersect(a, b []int32, v Vector16Visitor) {
	const w = 8
	stA := ints.AlignDown(len(a), w)
	stB := ints.AlignDown(len(b), w)

	ia, ib := 0, 0
	for ia < stA && ib < stB {
		va := simd.Load8(a[ia:])
		vb := simd.Load8(b[ib:])

		pool := simd.Vec16{
			va[0], va[1], va[2], va[3], va[4], va[5], va[6], va[7],
			vb[0], vb[1], vb[2], vb[3], vb[4], vb[5], vb[6], vb[7],
		}
		v.VisitVector16(pool, conflictMask(pool))

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

// conflictMask models VPCONFLICTD reduced to a nonzero test: bit i is
// set when lane i repeats an earlier lane.
func conflictMask(pool simd.Vec16) uint64 {
	var m uint64
	for i := 1; i < len(pool); i++ {
		for j := 0; j < i; j++ {
			if pool[i] == pool[j] {
				m |= 1 << i
				break
			}
		}
	}
	return m
}
