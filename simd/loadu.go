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

// Unsigned loads reinterpret uint32 data as vector lanes. Lane
// compares on equal bit patterns behave identically, so the BSR
// kernels share the signed vector type.

func LoadU4(s []uint32) Vec4 {
	return Vec4{int32(s[0]), int32(s[1]), int32(s[2]), int32(s[3])}
}

func LoadU8(s []uint32) Vec8 {
	return Vec8{
		int32(s[0]), int32(s[1]), int32(s[2]), int32(s[3]),
		int32(s[4]), int32(s[5]), int32(s[6]), int32(s[7]),
	}
}

func LoadU16(s []uint32) Vec16 {
	return Vec16{
		int32(s[0]), int32(s[1]), int32(s[2]), int32(s[3]),
		int32(s[4]), int32(s[5]), int32(s[6]), int32(s[7]),
		int32(s[8]), int32(s[9]), int32(s[10]), int32(s[11]),
		int32(s[12]), int32(s[13]), int32(s[14]), int32(s[15]),
	}
}

func SplatU4(x uint32) Vec4 {
	return Splat4(int32(x))
}

func SplatU8(x uint32) Vec8 {
	return Splat8(int32(x))
}

func SplatU16(x uint32) Vec16 {
	return Splat16(int32(x))
}
