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

// QFilter compares the low bytes of two 4-word blocks in all 16
// pairings and uses the resulting mask as an index into a precomputed
// verdict table: no match anywhere (skip verification entirely),
// exactly one candidate per lane (one shuffle + one compare), or
// multiple candidates (fall back to the four rotation compares).

const (
	msMultiMatch = -1
	msNoMatch    = -2
)

// byteCheckMaskDict maps a 16-bit low-byte pairing mask to msNoMatch,
// msMultiMatch, or a packed 4x2-bit shuffle order. 64K entries,
// process-wide, built once at load time.
var byteCheckMaskDict [1 << 16]int16

func init() {
	for mask := range byteCheckMaskDict {
		byteCheckMaskDict[mask] = byteCheckVerdict(mask)
	}
}

func byteCheckVerdict(mask int) int16 {
	// Each nibble of mask holds the comparison of one a-lane's low
	// byte against all four b-lane low bytes.
	var offsets [4]int16
	multi, all := false, true
	for i := range offsets {
		offsets[i] = cmpToOffset(mask >> (4 * i) & 0xf)
		multi = multi || offsets[i] == msMultiMatch
		all = all && offsets[i] == msNoMatch
	}
	if multi {
		return msMultiMatch
	}
	if all {
		return msNoMatch
	}
	var order int16
	for i, off := range offsets {
		if off == msNoMatch {
			// unmatched lane keeps its own position; the word
			// compare rejects it
			off = int16(i)
		}
		order |= off << (2 * i)
	}
	return order
}

func cmpToOffset(c int) int16 {
	switch c {
	case 0:
		return msNoMatch
	case 1, 2, 4, 8:
		off := int16(0)
		for c != 1 {
			c >>= 1
			off++
		}
		return off
	}
	return msMultiMatch
}

// shuffleWords permutes the words of v by a packed 4x2-bit order.
func shuffleWords(v simd.Vec4, order int16) simd.Vec4 {
	var r simd.Vec4
	for i := range r {
		r[i] = v[(order>>(2*i))&3]
	}
	return r
}

// lowBytePairMask is the all-pairs low-byte comparison producing the
// dictionary index: bit i*4+j covers (a[i], b[j]).
func lowBytePairMask(a, b simd.Vec4) int {
	m := 0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if uint8(a[i]) == uint8(b[j]) {
				m |= 1 << (i*4 + j)
			}
		}
	}
	return m
}

func QFilter(a, b []int32, v Vector4Visitor) {
	const s = 4
	for len(a) >= s && len(b) >= s {
		va := simd.Load4(a)
		vb := simd.Load4(b)

		order := byteCheckMaskDict[lowBytePairMask(va, vb)]
		if order != msNoMatch {
			var mask uint64
			if order > 0 {
				mask = simd.EqMask4(va, shuffleWords(vb, order))
			} else {
				for k := 0; k < s; k++ {
					mask |= simd.EqMask4(va, vb.RotL(k))
				}
			}
			v.VisitVector4(va, mask)
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

// QFilterV1 narrows a multi-match verdict by folding in the remaining
// byte positions one at a time before the word compare. After all
// four byte positions the verdict is single or no match, since b
// holds no duplicate words.
func QFilterV1(a, b []int32, v Vector4Visitor) {
	const s = 4
	for len(a) >= s && len(b) >= s {
		va := simd.Load4(a)
		vb := simd.Load4(b)

		bc := lowBytePairMask(va, vb)
		order := byteCheckMaskDict[bc]
		for byteIndex := 1; byteIndex < 4 && order == msMultiMatch; byteIndex++ {
			bc &= bytePairMaskAt(va, vb, byteIndex)
			order = byteCheckMaskDict[bc]
		}
		if order != msNoMatch {
			mask := simd.EqMask4(va, shuffleWords(vb, order))
			v.VisitVector4(va, mask)
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

func bytePairMaskAt(a, b simd.Vec4, byteIndex int) int {
	shift := uint(8 * byteIndex)
	m := 0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if uint8(a[i]>>shift) == uint8(b[j]>>shift) {
				m |= 1 << (i*4 + j)
			}
		}
	}
	return m
}

// QFilterBSR applies the byte filter to bases; matched pairs carry
// their state AND, lanes with an empty AND are dropped from the mask.
func QFilterBSR(a, b *bsr.Set, v BSRVector4Visitor) {
	const s = 4
	ia, ib := 0, 0
	stA := a.Len() / s * s
	stB := b.Len() / s * s

	for ia < stA && ib < stB {
		baseA := simd.LoadU4(a.Bases[ia:])
		baseB := simd.LoadU4(b.Bases[ib:])

		order := byteCheckMaskDict[lowBytePairMask(baseA, baseB)]
		if order != msNoMatch {
			stateA := simd.LoadU4(a.States[ia:])
			stateB := simd.LoadU4(b.States[ib:])

			var mask uint64
			var state simd.Vec4
			if order > 0 {
				m := simd.EqMask4(baseA, shuffleWords(baseB, order))
				state = simd.And4(stateA, shuffleWords(stateB, order))
				mask = m & simd.NonzeroMask4(state)
			} else {
				for k := 0; k < s; k++ {
					m := simd.EqMask4(baseA, baseB.RotL(k))
					state = simd.Or4(state, simd.Masked4(simd.And4(stateA, stateB.RotL(k)), m))
				}
				mask = simd.NonzeroMask4(state)
			}
			v.VisitBSRVector4(baseA, state, mask)
		}

		switch amax, bmax := a.Bases[ia+s-1], b.Bases[ib+s-1]; {
		case amax == bmax:
			ia += s
			ib += s
		case amax < bmax:
			ia += s
		default:
			ib += s
		}
	}
	mergeBSRBranchless(a.Bases[ia:], a.States[ia:], b.Bases[ib:], b.States[ib:], v)
}
