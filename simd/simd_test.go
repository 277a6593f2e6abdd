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

import (
	"testing"

	"golang.org/x/exp/slices"
)

func TestRotL(t *testing.T) {
	v := Vec4{10, 20, 30, 40}
	if got := v.RotL(1); got != (Vec4{20, 30, 40, 10}) {
		t.Fatalf("RotL(1) = %v", got)
	}
	if got := v.RotL(0); got != v {
		t.Fatalf("RotL(0) = %v", got)
	}
	if got := v.RotL(4); got != v {
		t.Fatalf("RotL(4) = %v", got)
	}
}

func TestEqMask(t *testing.T) {
	a := Vec4{1, 2, 3, 4}
	b := Vec4{1, 9, 3, 8}
	if m := EqMask4(a, b); m != 0b0101 {
		t.Fatalf("EqMask4 = %#b", m)
	}
	if m := NeMask16(Splat16(7), Splat16(7)); m != 0 {
		t.Fatalf("NeMask16 equal vectors = %#x", m)
	}
	if m := NeMask16(Splat16(7), Splat16(8)); m != 0xffff {
		t.Fatalf("NeMask16 distinct vectors = %#x", m)
	}
}

func TestPack(t *testing.T) {
	v := Vec4{10, 20, 30, 40}
	p, n := Pack4(v, 0b1010)
	if n != 2 || p[0] != 20 || p[1] != 40 {
		t.Fatalf("Pack4 = %v (n=%d)", p, n)
	}

	var v8 Vec8
	for i := range v8 {
		v8[i] = int32(i * 11)
	}
	p8, n8 := Pack8(v8, 0b10010001)
	if n8 != 3 || p8[0] != 0 || p8[1] != 44 || p8[2] != 77 {
		t.Fatalf("Pack8 = %v (n=%d)", p8, n8)
	}

	var v16 Vec16
	for i := range v16 {
		v16[i] = int32(i)
	}
	p16, n16 := Pack16(v16, 0b1000000000000011)
	if n16 != 3 || p16[0] != 0 || p16[1] != 1 || p16[2] != 15 {
		t.Fatalf("Pack16 = %v (n=%d)", p16, n16)
	}
}

func TestCompressStore(t *testing.T) {
	out := make([]int32, 8)
	n := CompressStore4(out, Vec4{5, 6, 7, 8}, 0b1001)
	if n != 2 || !slices.Equal(out[:2], []int32{5, 8}) {
		t.Fatalf("CompressStore4 wrote %v (n=%d)", out, n)
	}
}

func TestShuffleQuadRotL(t *testing.T) {
	var v Vec16
	for i := range v {
		v[i] = int32(i)
	}
	got := ShuffleQuadRotL(v, 1)
	want := Vec16{1, 2, 3, 0, 5, 6, 7, 4, 9, 10, 11, 8, 13, 14, 15, 12}
	if got != want {
		t.Fatalf("ShuffleQuadRotL(1) = %v", got)
	}
}

func TestRotMask16(t *testing.T) {
	if got := RotMask16(0x0001, 4); got != 0x0010 {
		t.Fatalf("left: %#x", got)
	}
	if got := RotMask16(0x0001, -4); got != 0x1000 {
		t.Fatalf("right: %#x", got)
	}
	if got := RotMask16(0x8000, 1); got != 0x0001 {
		t.Fatalf("wrap: %#x", got)
	}
}

func TestWidthLanes(t *testing.T) {
	if Scalar.Lanes() != 1 || SSE.Lanes() != 4 || AVX2.Lanes() != 8 || AVX512.Lanes() != 16 {
		t.Fatal("lane widths")
	}
	if !HasWidth(Scalar) {
		t.Fatal("scalar must always be available")
	}
}
