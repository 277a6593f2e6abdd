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

package gen

import (
	"testing"

	"golang.org/x/exp/slices"
)

func assertStrictlyIncreasing(t *testing.T, set []int32, max int32) {
	t.Helper()
	for i := range set {
		if set[i] < 0 || set[i] >= max {
			t.Fatalf("element %d out of domain [0, %d)", set[i], max)
		}
		if i > 0 && set[i] <= set[i-1] {
			t.Fatalf("not strictly increasing at %d: %d, %d", i, set[i-1], set[i])
		}
	}
}

func countShared(a, b []int32) int {
	inB := make(map[int32]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}
	n := 0
	for _, v := range a {
		if _, ok := inB[v]; ok {
			n++
		}
	}
	return n
}

func TestTwoSet(t *testing.T) {
	info := &Info{
		SetCount:       2,
		Density:        100, // 10%
		Selectivity:    500, // 50%
		MaxLen:         10,  // 1024
		SkewnessFactor: 1,
	}
	rng := Rand(1, "twoset", 0)
	small, large := TwoSet(info, rng)

	if len(large) != 1024 {
		t.Fatalf("large len %d", len(large))
	}
	if len(small) != 512 {
		t.Fatalf("small len %d", len(small))
	}
	maxValue := int32(1024 * 10)
	assertStrictlyIncreasing(t, small, maxValue)
	assertStrictlyIncreasing(t, large, maxValue)

	if shared := countShared(small, large); shared != 256 {
		t.Fatalf("shared %d, want 256", shared)
	}
}

func TestTwoSetHighDensity(t *testing.T) {
	info := &Info{
		SetCount:       2,
		Density:        1000, // saturated domain
		Selectivity:    1000,
		MaxLen:         9,
		SkewnessFactor: 0,
	}
	small, large := TwoSet(info, Rand(3, "dense", 0))
	if len(small) != 512 || len(large) != 512 {
		t.Fatalf("lens %d, %d", len(small), len(large))
	}
	assertStrictlyIncreasing(t, small, 512)
	if countShared(small, large) != 512 {
		t.Fatal("full selectivity expected")
	}
}

func TestKSet(t *testing.T) {
	info := &Info{
		SetCount:       4,
		Density:        50,
		Selectivity:    300,
		MaxLen:         11,
		SkewnessFactor: 1,
	}
	sets := KSet(info, 4, Rand(7, "kset", 2))
	if len(sets) != 4 {
		t.Fatalf("set count %d", len(sets))
	}
	maxValue := int32(float64(2048) / 0.05)
	for i, set := range sets {
		wantLen := 2048 / (i + 1)
		if len(set) != wantLen {
			t.Fatalf("set %d: len %d, want %d", i, len(set), wantLen)
		}
		assertStrictlyIncreasing(t, set, maxValue)
	}

	// every set contains the shared core
	minLen := len(sets[3])
	shared := int(0.3 * float64(minLen))
	all := sets[0]
	for _, set := range sets[1:] {
		keep := all[:0:0]
		for _, v := range all {
			if slices.Contains(set, v) {
				keep = append(keep, v)
			}
		}
		all = keep
	}
	if len(all) < shared {
		t.Fatalf("common elements %d, want at least %d", len(all), shared)
	}
}

func TestRandDeterministic(t *testing.T) {
	info := &Info{SetCount: 2, Density: 100, Selectivity: 200, MaxLen: 8, SkewnessFactor: 0}

	a1, b1 := TwoSet(info, Rand(9, "dataset", 4))
	a2, b2 := TwoSet(info, Rand(9, "dataset", 4))
	if !slices.Equal(a1, a2) || !slices.Equal(b1, b2) {
		t.Fatal("same key must generate identical data")
	}

	a3, _ := TwoSet(info, Rand(9, "dataset", 5))
	if slices.Equal(a1, a3) {
		t.Fatal("different index must generate different data")
	}
}
