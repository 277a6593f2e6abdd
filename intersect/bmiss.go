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

import "github.com/UNSW-database/simd-set-operations/simd"

// BMiss filters block pairs by their low bytes before doing full-word
// compares: an inequality on the least significant byte proves
// inequality of the whole word, and on sorted uniform data most block
// pairs share no low byte at all.

// BMissScalar3 compares 3x3 blocks pairwise and advances whole blocks
// by the block-maximum rule.
func BMissScalar3(a, b []int32, v Visitor) {
	const s = 3
	for len(a) >= s && len(b) >= s {
		for i := 0; i < s; i++ {
			if a[i] == b[0] || a[i] == b[1] || a[i] == b[2] {
				v.Visit(a[i])
			}
		}
		a, b = bmissAdvance(a, b, s)
	}
	BranchlessMerge(a, b, v)
}

// BMissScalar4 is the 4x4 block variant.
func BMissScalar4(a, b []int32, v Visitor) {
	const s = 4
	for len(a) >= s && len(b) >= s {
		for i := 0; i < s; i++ {
			if a[i] == b[0] || a[i] == b[1] || a[i] == b[2] || a[i] == b[3] {
				v.Visit(a[i])
			}
		}
		a, b = bmissAdvance(a, b, s)
	}
	BranchlessMerge(a, b, v)
}

func bmissAdvance(a, b []int32, s int) ([]int32, []int32) {
	amax, bmax := a[s-1], b[s-1]
	if amax == bmax {
		return a[s:], b[s:]
	}
	lt := b2i(amax < bmax)
	return a[s*lt:], b[s*(1-lt):]
}

// bmissPairMask computes the 16-bit all-pairs low-halfword equality
// mask for two 4-word blocks: bit i*4+j covers (a[i], b[j]). It
// models the two swizzled PCMPEQB stages whose AND survives only
// when bytes 0 and 1 both agree.
func bmissPairMask(a, b []int32) uint64 {
	var m uint64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if uint16(a[i]) == uint16(b[j]) {
				m |= 1 << (i*4 + j)
			}
		}
	}
	return m
}

// BMiss is the 4x4 vector form: the byte filter rejects most block
// pairs, survivors get the clustered full-word verification.
func BMiss(a, b []int32, v Visitor) {
	const s = 4
	for len(a) >= s && len(b) >= s {
		if bmissPairMask(a, b) != 0 {
			va := simd.Load4(a)
			vb := simd.Load4(b)
			// word check clustered by a-lane pairs
			for i := 0; i < s; i++ {
				if simd.EqMask4(simd.Splat4(va[i]), vb) != 0 {
					v.Visit(va[i])
				}
			}
		}

		switch amax, bmax := a[s-1], b[s-1]; {
		case amax == bmax:
			a = a[s:]
			b = b[s:]
		case amax < bmax:
			a = a[s:]
		default:
			b = b[s:]
		}
	}
	BranchlessMerge(a, b, v)
}

// BMissSTTNI widens the filter to 8x8 blocks: the candidate bitmask
// comes from one all-pairs equal-any comparison over the low
// halfwords (PCMPESTRM), and each surviving a-lane is verified with a
// splat compare against both halves of b's block.
func BMissSTTNI(a, b []int32, v Visitor) {
	const s = 8
	for len(a) >= s && len(b) >= s {
		r := equalAnyLow16(a[:s], b[:s])

		for r != 0 {
			p := 0
			for r&(1<<p) == 0 {
				p++
			}
			r &^= 1 << p

			value := a[p]
			wc := simd.Splat4(value)
			if simd.EqMask4(wc, simd.Load4(b)) != 0 || simd.EqMask4(wc, simd.Load4(b[4:])) != 0 {
				v.Visit(value)
			}
		}

		switch amax, bmax := a[s-1], b[s-1]; {
		case amax == bmax:
			a = a[s:]
			b = b[s:]
		case amax < bmax:
			a = a[s:]
		default:
			b = b[s:]
		}
	}
	BranchlessMerge(a, b, v)
}

// equalAnyLow16 returns the bitmask over a's lanes whose low 16 bits
// occur among the low 16 bits of b's lanes.
func equalAnyLow16(a, b []int32) uint64 {
	var m uint64
	for i := range a {
		al := uint16(a[i])
		for j := range b {
			if al == uint16(b[j]) {
				m |= 1 << i
				break
			}
		}
	}
	return m
}
