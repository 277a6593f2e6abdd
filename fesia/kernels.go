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

package fesia

import (
	"github.com/UNSW-database/simd-set-operations/intersect"
	"github.com/UNSW-database/simd-set-operations/simd"
)

// Size-dispatched all-pairs compare kernels for candidate segment
// pairs. A kernel for m x n reads up to two full registers from the
// larger segment even when it holds fewer elements; the overread only
// touches following segments of the same block, whose elements hash
// differently and therefore cannot produce false matches. Segments
// larger than 7 fall back to the branchless merge.

const (
	maxKernelSize  = 7
	kernelOverread = 8
)

func segmentIntersect(a, b []int32, sizeA, sizeB int, v intersect.Vector4Visitor) {
	if sizeA > maxKernelSize || sizeB > maxKernelSize ||
		len(a) < kernelOverread || len(b) < kernelOverread {
		intersect.BranchlessMerge(a[:sizeA], b[:sizeB], v)
		return
	}

	small, ns, large, nl := a, sizeA, b, sizeB
	if sizeA > sizeB {
		small, ns, large, nl = b, sizeB, a, sizeA
	}

	ctrl := ns<<3 | nl
	switch {
	case ctrl >= 0o11 && ctrl <= 0o14:
		kernel1x4(small, large, v)
	case ctrl >= 0o15 && ctrl <= 0o17:
		kernel1x8(small, large, v)
	case ctrl >= 0o22 && ctrl <= 0o24:
		kernelMx4(small, 2, large, v)
	case ctrl >= 0o25 && ctrl <= 0o27:
		kernelMx8(small, 2, large, v)
	case ctrl >= 0o33 && ctrl <= 0o34:
		kernelMx4(small, 3, large, v)
	case ctrl >= 0o35 && ctrl <= 0o37:
		kernelMx8(small, 3, large, v)
	case ctrl == 0o44:
		kernelMx4(small, 4, large, v)
	case ctrl >= 0o45 && ctrl <= 0o47:
		kernelMx8(small, 4, large, v)
	case ctrl >= 0o55 && ctrl <= 0o57:
		kernelMx8(small, 5, large, v)
	case ctrl >= 0o66 && ctrl <= 0o67:
		kernelMx8(small, 6, large, v)
	case ctrl == 0o77:
		kernelMx8(small, 7, large, v)
	default:
		// sizes 0 never reach here; the bitmap AND filters them
		intersect.BranchlessMerge(small[:ns], large[:nl], v)
	}
}

func kernel1x4(a, b []int32, v intersect.Vector4Visitor) {
	va := simd.Splat4(a[0])
	if simd.EqMask4(va, simd.Load4(b)) != 0 {
		v.Visit(a[0])
	}
}

func kernel1x8(a, b []int32, v intersect.Vector4Visitor) {
	va := simd.Splat4(a[0])
	if simd.EqMask4(va, simd.Load4(b)) != 0 || simd.EqMask4(va, simd.Load4(b[4:])) != 0 {
		v.Visit(a[0])
	}
}

// kernelMx4 compares m splats of a against one register of b.
func kernelMx4(a []int32, m int, b []int32, v intersect.Vector4Visitor) {
	vb := simd.Load4(b)
	var mask uint64
	for i := 0; i < m; i++ {
		mask |= simd.EqMask4(simd.Splat4(a[i]), vb)
	}
	v.VisitVector4(vb, mask)
}

// kernelMx8 compares m splats of a against two registers of b.
func kernelMx8(a []int32, m int, b []int32, v intersect.Vector4Visitor) {
	vb0 := simd.Load4(b)
	vb1 := simd.Load4(b[4:])
	var m0, m1 uint64
	for i := 0; i < m; i++ {
		va := simd.Splat4(a[i])
		m0 |= simd.EqMask4(va, vb0)
		m1 |= simd.EqMask4(va, vb1)
	}
	v.VisitVector4(vb0, m0)
	v.VisitVector4(vb1, m1)
}
