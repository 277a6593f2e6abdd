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
	"math/rand"
	"testing"

	"golang.org/x/exp/slices"
)

var mergeCases = []struct {
	name string
	a, b []int32
	want []int32
}{
	{"subset", []int32{1, 2, 3, 4}, []int32{1, 2, 3, 4, 5}, []int32{1, 2, 3, 4}},
	{"disjoint", []int32{0, 4, 5, 8}, []int32{1, 2, 3, 6}, []int32{}},
	{"equal", []int32{1, 4, 5}, []int32{1, 4, 5}, []int32{1, 4, 5}},
	{"sparse", []int32{10, 42}, []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 22, 25, 28, 39, 42, 43, 47, 49}, []int32{10, 42}},
	{"empty-a", []int32{}, []int32{1, 2, 3}, []int32{}},
	{"empty-b", []int32{5}, []int32{}, []int32{}},
	{"both-empty", []int32{}, []int32{}, []int32{}},
	{"negative", []int32{-8, -2, 0, 7}, []int32{-8, -1, 0, 9}, []int32{-8, 0}},
}

func TestNaiveMerge(t *testing.T) {
	for _, tc := range mergeCases {
		t.Run(tc.name, func(t *testing.T) {
			got := runScalar(NaiveMerge, tc.a, tc.b)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			// symmetry
			got = runScalar(NaiveMerge, tc.b, tc.a)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("swapped: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBranchlessMerge(t *testing.T) {
	for _, tc := range mergeCases {
		t.Run(tc.name, func(t *testing.T) {
			got := runScalar(BranchlessMerge, tc.a, tc.b)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		a := randomSorted(rng, rng.Intn(300), 1000)
		if got := runScalar(NaiveMerge, a, a); !slices.Equal(got, a) {
			t.Fatalf("I(A,A) != A: %v vs %v", got, a)
		}
		if got := runScalar(NaiveMerge, a, nil); len(got) != 0 {
			t.Fatalf("I(A,[]) != []: %v", got)
		}
	}
}

// runScalar collects a kernel's output into a fresh slice.
func runScalar(fn func(a, b []int32, v Visitor), a, b []int32) []int32 {
	out := NewAppender(len(a))
	fn(a, b, out)
	return out.Items
}

// randomSorted returns n distinct sorted values in [0, max).
func randomSorted(rng *rand.Rand, n int, max int32) []int32 {
	if int32(n) > max {
		n = int(max)
	}
	seen := make(map[int32]struct{}, n)
	out := make([]int32, 0, n)
	for len(out) < n {
		v := rng.Int31n(max)
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}
