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

package simd

// Compaction moves the lanes selected by a bitmask to the front of the
// vector, preserving lane order. The 4- and 8-lane forms are table
// driven (PSHUFB / VPERMD with a precomputed dictionary); the 16-lane
// form models VPCOMPRESSD directly. Tables are process-wide, read-only
// and built once at load time.

var (
	packTable4 [16][4]uint8
	packTable8 [256][8]uint8
)

func init() {
	for m := range packTable4 {
		n := 0
		for lane := 0; lane < 4; lane++ {
			if m&(1<<lane) != 0 {
				packTable4[m][n] = uint8(lane)
				n++
			}
		}
	}
	for m := range packTable8 {
		n := 0
		for lane := 0; lane < 8; lane++ {
			if m&(1<<lane) != 0 {
				packTable8[m][n] = uint8(lane)
				n++
			}
		}
	}
}

// Pack4 compacts the masked lanes of v to the front and returns the
// number of packed lanes. Unpacked tail lanes are unspecified.
func Pack4(v Vec4, mask uint64) (Vec4, int) {
	perm := &packTable4[mask&0xf]
	var r Vec4
	for i := range r {
		r[i] = v[perm[i]]
	}
	return r, PopCount(mask & 0xf)
}

func Pack8(v Vec8, mask uint64) (Vec8, int) {
	perm := &packTable8[mask&0xff]
	var r Vec8
	for i := range r {
		r[i] = v[perm[i]]
	}
	return r, PopCount(mask & 0xff)
}

// Pack16 compacts via VPCOMPRESSD semantics: lane j of the result is
// the j-th masked lane of v.
func Pack16(v Vec16, mask uint64) (Vec16, int) {
	var r Vec16
	n := 0
	for i := range v {
		if mask&(1<<i) != 0 {
			r[n] = v[i]
			n++
		}
	}
	return r, n
}

// CompressStore4 writes all four lanes of the packed form of v to
// out and returns the packed count. out must have room for a full
// vector regardless of the count; callers reserve a tail for this.
func CompressStore4(out []int32, v Vec4, mask uint64) int {
	p, n := Pack4(v, mask)
	copy(out[:4], p[:])
	return n
}

func CompressStore8(out []int32, v Vec8, mask uint64) int {
	p, n := Pack8(v, mask)
	copy(out[:8], p[:])
	return n
}

func CompressStore16(out []int32, v Vec16, mask uint64) int {
	p, n := Pack16(v, mask)
	copy(out[:16], p[:])
	return n
}
