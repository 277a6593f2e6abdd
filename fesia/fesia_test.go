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
	"errors"
	"math/rand"
	"testing"

	"github.com/UNSW-database/simd-set-operations/intersect"
	"golang.org/x/exp/slices"
)

var allShapes = map[string]Shape{
	"8_sse":     Shape8SSE,
	"16_sse":    Shape16SSE,
	"32_sse":    Shape32SSE,
	"8_avx2":    Shape8AVX2,
	"16_avx2":   Shape16AVX2,
	"32_avx2":   Shape32AVX2,
	"8_avx512":  Shape8AVX512,
	"16_avx512": Shape16AVX512,
	"32_avx512": Shape32AVX512,
}

func randomSorted(rng *rand.Rand, n int, max int32) []int32 {
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

func expected(a, b []int32) []int32 {
	out := intersect.NewAppender(len(a))
	intersect.NaiveMerge(a, b, out)
	return out.Items
}

func TestNewSetRejectsBadScale(t *testing.T) {
	for _, scale := range []float64{0, -1, -0.01} {
		if _, err := NewSet([]int32{1, 2, 3}, Shape8SSE, scale); !errors.Is(err, ErrHashScale) {
			t.Fatalf("scale %v: got %v, want ErrHashScale", scale, err)
		}
	}
	if _, err := NewSet([]int32{1}, Shape{SegmentBits: 12, Lanes: 4}, 1); err == nil {
		t.Fatal("expected error for unsupported segment width")
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(0xf51a))
	for name, shape := range allShapes {
		for _, scale := range []float64{1, 2, 4} {
			set := randomSorted(rng, 500, 10000)
			s, err := NewSet(set, shape, scale)
			if err != nil {
				t.Fatal(err)
			}
			if got := s.ToSorted(); !slices.Equal(got, set) {
				t.Fatalf("%s scale %v: data does not round trip", name, scale)
			}
			for _, x := range set {
				if !s.Contains(x) {
					t.Fatalf("%s: bitmap/segment miss for %d", name, x)
				}
			}
			if s.SegmentCount()*shape.SegmentBits != s.hashBits {
				t.Fatalf("%s: inconsistent segment count", name)
			}
		}
	}
}

func runSorted(fn func(a, b *Set, v intersect.Vector4Visitor), a, b *Set, capacity int) []int32 {
	out := intersect.NewAppender(capacity)
	fn(a, b, out)
	slices.Sort(out.Items)
	return out.Items
}

func TestIntersectMatchesMerge(t *testing.T) {
	rng := rand.New(rand.NewSource(0xfe51))

	type pair struct{ a, b []int32 }
	var pairs []pair
	for _, shape := range []struct {
		lenA, lenB int
		max        int32
	}{
		{10, 10, 100},
		{100, 120, 500},
		{500, 4000, 10000}, // different segment counts
		{1000, 1000, 3000},
	} {
		pairs = append(pairs, pair{
			randomSorted(rng, shape.lenA, shape.max),
			randomSorted(rng, shape.lenB, shape.max),
		})
	}

	for name, shape := range allShapes {
		for _, scale := range []float64{1, 2} {
			for i, p := range pairs {
				want := expected(p.a, p.b)

				sa, err := NewSet(p.a, shape, scale)
				if err != nil {
					t.Fatal(err)
				}
				sb, err := NewSet(p.b, shape, scale)
				if err != nil {
					t.Fatal(err)
				}

				if got := runSorted(Intersect, sa, sb, len(p.a)); !slices.Equal(got, want) {
					t.Fatalf("%s scale %v pair %d: got %d elements, want %d",
						name, scale, i, len(got), len(want))
				}
				if got := runSorted(Intersect, sb, sa, len(p.a)); !slices.Equal(got, want) {
					t.Fatalf("%s scale %v pair %d (swapped): wrong result", name, scale, i)
				}
				if got := runSorted(IntersectShuffling, sa, sb, len(p.a)); !slices.Equal(got, want) {
					t.Fatalf("%s scale %v pair %d (shuffling): wrong result", name, scale, i)
				}

				count := &intersect.Counter{}
				Intersect(sa, sb, count)
				if count.Count() != int64(len(want)) {
					t.Fatalf("%s pair %d: counter saw %d, want %d", name, i, count.Count(), len(want))
				}
			}
		}
	}
}

func TestHashIntersectSkewed(t *testing.T) {
	rng := rand.New(rand.NewSource(0x5ca1e))

	small := []int32{12, 21, 52, 95}
	large := randomSorted(rng, 5000, 100000)
	for _, v := range []int32{12, 52, 95} {
		if !slices.Contains(large, v) {
			large = append(large, v)
		}
	}
	slices.Sort(large)
	want := expected(small, large)

	sa, err := NewSet(small, Shape8SSE, 2)
	if err != nil {
		t.Fatal(err)
	}
	sb, err := NewSet(large, Shape8SSE, 2)
	if err != nil {
		t.Fatal(err)
	}

	out := intersect.NewAppender(len(small))
	HashIntersect(sa, sb, out)
	slices.Sort(out.Items)
	if !slices.Equal(out.Items, want) {
		t.Fatalf("got %v, want %v", out.Items, want)
	}
}

func TestKSet(t *testing.T) {
	rng := rand.New(rand.NewSource(0x135))

	sets := [][]int32{
		randomSorted(rng, 200, 1000),
		randomSorted(rng, 400, 1000),
		randomSorted(rng, 800, 1000),
	}
	want := expected(expected(sets[0], sets[1]), sets[2])

	encoded := make([]*Set, len(sets))
	for i, set := range sets {
		s, err := NewSet(set, Shape16SSE, 2)
		if err != nil {
			t.Fatal(err)
		}
		encoded[i] = s
	}

	out := intersect.NewAppender(200)
	if err := KSet(encoded, out); err != nil {
		t.Fatal(err)
	}
	slices.Sort(out.Items)
	if !slices.Equal(out.Items, want) {
		t.Fatalf("got %d elements, want %d", len(out.Items), len(want))
	}

	if err := KSet(encoded[:1], out); err == nil {
		t.Fatal("expected error for single-set k-set")
	}
}
