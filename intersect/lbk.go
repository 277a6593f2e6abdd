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

// Lane-block-compare kernels: for each element of A, linear-skip over
// fixed-size blocks of B until the block's last element reaches the
// target, then test membership with splat compares against the
// block's registers. Variants differ in register width and registers
// per block; results match scalar galloping.

// lbk runs the shared skip loop. bound is the block size in elements
// and member tests target membership in the block at i_b.
func lbk(a, b []int32, bound int, member func(int32, []int32) bool, v Visitor) {
	stB := ints.AlignDown(len(b), bound)

	ia, ib := 0, 0
	if ib < stB {
	outer:
		for ia < len(a) {
			target := a[ia]
			for b[ib+bound-1] < target {
				ib += bound
				if ib >= stB {
					break outer
				}
			}
			if member(target, b[ib:]) {
				v.Visit(target)
			}
			ia++
		}
	}

	BranchlessMerge(a[ia:], b[ib:], v)
}

func LBKV1x4SSE(a, b []int32, v Visitor) {
	lbk(a, b, 4, func(target int32, blk []int32) bool {
		return simd.EqMask4(simd.Splat4(target), simd.Load4(blk)) != 0
	}, v)
}

func LBKV1x8SSE(a, b []int32, v Visitor) {
	lbk(a, b, 8, func(target int32, blk []int32) bool {
		t := simd.Splat4(target)
		return simd.EqMask4(t, simd.Load4(blk)) != 0 ||
			simd.EqMask4(t, simd.Load4(blk[4:])) != 0
	}, v)
}

func LBKV1x8AVX2(a, b []int32, v Visitor) {
	lbk(a, b, 8, func(target int32, blk []int32) bool {
		return simd.EqMask8(simd.Splat8(target), simd.Load8(blk)) != 0
	}, v)
}

func LBKV1x16AVX2(a, b []int32, v Visitor) {
	lbk(a, b, 16, func(target int32, blk []int32) bool {
		t := simd.Splat8(target)
		return simd.EqMask8(t, simd.Load8(blk)) != 0 ||
			simd.EqMask8(t, simd.Load8(blk[8:])) != 0
	}, v)
}

func LBKV1x16AVX512(a, b []int32, v Visitor) {
	lbk(a, b, 16, func(target int32, blk []int32) bool {
		return simd.EqMask16(simd.Splat16(target), simd.Load16(blk)) != 0
	}, v)
}

func LBKV1x32AVX512(a, b []int32, v Visitor) {
	lbk(a, b, 32, func(target int32, blk []int32) bool {
		t := simd.Splat16(target)
		return simd.EqMask16(t, simd.Load16(blk)) != 0 ||
			simd.EqMask16(t, simd.Load16(blk[16:])) != 0
	}, v)
}

// The v3 shapes skip in blocks of 32 registers and reuse the wide
// galloping quarter selector plus 8-register compare.

func LBKV3SSE(a, b []int32, v Visitor) {
	const bound = 4 * registersPerBlock
	lbk(a, b, bound, func(target int32, blk []int32) bool {
		return blockAny4(target, blk, reduceSearchBound(target, blk, bound))
	}, v)
}

func LBKV3AVX2(a, b []int32, v Visitor) {
	const bound = 8 * registersPerBlock
	lbk(a, b, bound, func(target int32, blk []int32) bool {
		return blockAny8(target, blk, reduceSearchBound(target, blk, bound))
	}, v)
}

func LBKV3AVX512(a, b []int32, v Visitor) {
	const bound = 16 * registersPerBlock
	lbk(a, b, bound, func(target int32, blk []int32) bool {
		return blockAny16(target, blk, reduceSearchBound(target, blk, bound))
	}, v)
}
