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

// NaiveMerge is the reference kernel: two cursors, three-way compare,
// advance the smaller side, visit on equality. Every other kernel in
// this package is tested for equivalence against it.
func NaiveMerge(a, b []int32, v Visitor) {
	ia, ib := 0, 0
	for ia < len(a) && ib < len(b) {
		va, vb := a[ia], b[ib]
		switch {
		case va < vb:
			ia++
		case vb < va:
			ib++
		default:
			v.Visit(va)
			ia++
			ib++
		}
	}
}

// BranchlessMerge computes the same result as NaiveMerge but advances
// cursors with boolean-to-integer arithmetic on the unequal path,
// which predicts better when both streams advance at similar rates.
func BranchlessMerge(a, b []int32, v Visitor) {
	ia, ib := 0, 0
	for ia < len(a) && ib < len(b) {
		va, vb := a[ia], b[ib]
		if va == vb {
			v.Visit(va)
			ia++
			ib++
		} else {
			ia += b2i(va < vb)
			ib += b2i(vb < va)
		}
	}
}

// NaiveMergeBSR merges two BSR sets entry-wise: equal bases AND their
// states and emit when the result is nonzero.
func NaiveMergeBSR(a, b *bsr.Set, v BSRVisitor) {
	mergeBSR(a.Bases, a.States, b.Bases, b.States, v)
}

// BranchlessMergeBSR is the tail merge shared by the vector BSR
// kernels. The cursor update matches BranchlessMerge.
func BranchlessMergeBSR(a, b *bsr.Set, v BSRVisitor) {
	mergeBSRBranchless(a.Bases, a.States, b.Bases, b.States, v)
}

func mergeBSR(ab, as, bb, bs []uint32, v BSRVisitor) {
	ia, ib := 0, 0
	for ia < len(ab) && ib < len(bb) {
		switch {
		case ab[ia] < bb[ib]:
			ia++
		case bb[ib] < ab[ia]:
			ib++
		default:
			if state := as[ia] & bs[ib]; state != 0 {
				v.VisitBSR(ab[ia], state)
			}
			ia++
			ib++
		}
	}
}

func mergeBSRBranchless(ab, as, bb, bs []uint32, v BSRVisitor) {
	ia, ib := 0, 0
	for ia < len(ab) && ib < len(bb) {
		ba, bbase := ab[ia], bb[ib]
		if ba == bbase {
			if state := as[ia] & bs[ib]; state != 0 {
				v.VisitBSR(ba, state)
			}
			ia++
			ib++
		} else {
			ia += b2i(ba < bbase)
			ib += b2i(bbase < ba)
		}
	}
}
