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
	"fmt"
	"math/rand"
	"testing"

	"golang.org/x/exp/slices"
)

// every two-set kernel, normalized to the scalar visitor shape
var twoSetUnderTest = map[string]func(a, b []int32, v Visitor){
	"naive_merge":      NaiveMerge,
	"branchless_merge": BranchlessMerge,
	"bmiss_scalar_3x":  BMissScalar3,
	"bmiss_scalar_4x":  BMissScalar4,
	"bmiss":            BMiss,
	"bmiss_sttni":      BMissSTTNI,
	"galloping":        Galloping,
	"binary_search":    BinarySearchIntersect,
	"baezayates":       BaezaYates,
	"galloping_sse":    GallopingSSE,
	"galloping_avx2":   GallopingAVX2,
	"galloping_avx512": GallopingAVX512,
	"lbk_v1x4_sse":     LBKV1x4SSE,
	"lbk_v1x8_sse":     LBKV1x8SSE,
	"lbk_v1x8_avx2":    LBKV1x8AVX2,
	"lbk_v1x16_avx2":   LBKV1x16AVX2,
	"lbk_v1x16_avx512": LBKV1x16AVX512,
	"lbk_v1x32_avx512": LBKV1x32AVX512,
	"lbk_v3_sse":       LBKV3SSE,
	"lbk_v3_avx2":      LBKV3AVX2,
	"lbk_v3_avx512":    LBKV3AVX512,

	"shuffling_sse":       adapt4(ShufflingSSE),
	"shuffling_sse_br":    adapt4(ShufflingSSEBranch),
	"broadcast_sse":       adapt4(BroadcastSSE),
	"broadcast_sse_br":    adapt4(BroadcastSSEBranch),
	"qfilter":             adapt4(QFilter),
	"qfilter_v1":          adapt4(QFilterV1),
	"shuffling_avx2":      adapt8(ShufflingAVX2),
	"shuffling_avx2_br":   adapt8(ShufflingAVX2Branch),
	"broadcast_avx2":      adapt8(BroadcastAVX2),
	"broadcast_avx2_br":   adapt8(BroadcastAVX2Branch),
	"shuffling_avx512":    adapt16(ShufflingAVX512),
	"shuffling_avx512_br": adapt16(ShufflingAVX512Branch),
	"broadcast_avx512":    adapt16(BroadcastAVX512),
	"broadcast_avx512_br": adapt16(BroadcastAVX512Branch),

	"vp2intersect_emulation": adapt16(VP2IntersectEmulation),
	"conflict_intersect":     adapt16(ConflictIntersect),
}

func adapt4(fn func(a, b []int32, v Vector4Visitor)) func(a, b []int32, v Visitor) {
	return func(a, b []int32, v Visitor) { fn(a, b, v.(Vector4Visitor)) }
}

func adapt8(fn func(a, b []int32, v Vector8Visitor)) func(a, b []int32, v Visitor) {
	return func(a, b []int32, v Visitor) { fn(a, b, v.(Vector8Visitor)) }
}

func adapt16(fn func(a, b []int32, v Vector16Visitor)) func(a, b []int32, v Visitor) {
	return func(a, b []int32, v Visitor) { fn(a, b, v.(Vector16Visitor)) }
}

func TestKernelsMatchNaiveMerge(t *testing.T) {
	rng := rand.New(rand.NewSource(0x5e70))

	type pair struct{ a, b []int32 }
	var pairs []pair

	// dense and sparse random pairs across size regimes
	for _, shape := range []struct {
		lenA, lenB int
		max        int32
	}{
		{0, 0, 10},
		{1, 1, 10},
		{3, 200, 400},
		{16, 16, 40},
		{100, 100, 150},
		{128, 4096, 8192},
		{500, 500, 100000},
		{1000, 3000, 5000},
		{33, 2048, 3000},
	} {
		for trial := 0; trial < 3; trial++ {
			pairs = append(pairs, pair{
				randomSorted(rng, shape.lenA, shape.max),
				randomSorted(rng, shape.lenB, shape.max),
			})
		}
	}
	for _, tc := range mergeCases {
		pairs = append(pairs, pair{tc.a, tc.b})
	}

	for name, kernel := range twoSetUnderTest {
		t.Run(name, func(t *testing.T) {
			for i, p := range pairs {
				want := runScalar(NaiveMerge, p.a, p.b)
				got := runScalar(kernel, p.a, p.b)
				if !slices.Equal(got, want) {
					t.Fatalf("pair %d (|a|=%d |b|=%d): got %d elements, want %d\ngot  %v\nwant %v",
						i, len(p.a), len(p.b), len(got), len(want), trunc(got), trunc(want))
				}
			}
		})
	}
}

func TestKernelsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(0xca5e))
	a := randomSorted(rng, 300, 2000)
	b := randomSorted(rng, 1200, 2000)
	want := runScalar(NaiveMerge, a, b)

	for name, kernel := range twoSetUnderTest {
		t.Run(name, func(t *testing.T) {
			if got := runScalar(kernel, b, a); !slices.Equal(got, want) {
				t.Fatalf("K(B,A) != K(A,B): got %v want %v", trunc(got), trunc(want))
			}
		})
	}
}

// TestGallopingBlockBoundary exercises the block-level exponential
// search: the probe must land in a block far past the first.
func TestGallopingBlockBoundary(t *testing.T) {
	a := []int32{4097}
	b := make([]int32, 12346)
	for i := range b {
		b[i] = int32(i)
	}
	want := []int32{4097}

	for _, name := range []string{"galloping", "galloping_sse", "galloping_avx2", "galloping_avx512", "lbk_v3_sse", "lbk_v3_avx2", "lbk_v3_avx512"} {
		t.Run(name, func(t *testing.T) {
			if got := runScalar(twoSetUnderTest[name], a, b); !slices.Equal(got, want) {
				t.Fatalf("got %v, want %v", got, want)
			}
		})
	}
}

func TestCountingVisitors(t *testing.T) {
	rng := rand.New(rand.NewSource(0xbeef))
	a := randomSorted(rng, 700, 4000)
	b := randomSorted(rng, 900, 4000)
	want := int64(len(runScalar(NaiveMerge, a, b)))

	for name, kernel := range twoSetUnderTest {
		t.Run(name, func(t *testing.T) {
			count := &Counter{}
			kernel(a, b, count)
			if count.Count() != want {
				t.Fatalf("counter saw %d, want %d", count.Count(), want)
			}
		})
	}
}

func TestWriterVisitors(t *testing.T) {
	rng := rand.New(rand.NewSource(0xfeed))
	a := randomSorted(rng, 500, 3000)
	b := randomSorted(rng, 800, 3000)
	want := runScalar(NaiveMerge, a, b)

	for name, kernel := range twoSetUnderTest {
		t.Run(name, func(t *testing.T) {
			lut := NewLookupWriter(minInt(len(a), len(b)))
			kernel(a, b, lut)
			if !slices.Equal(lut.Items(), want) {
				t.Fatalf("lookup writer: got %v want %v", trunc(lut.Items()), trunc(want))
			}

			comp := NewCompressWriter(minInt(len(a), len(b)))
			kernel(a, b, comp)
			if !slices.Equal(comp.Items(), want) {
				t.Fatalf("compress writer: got %v want %v", trunc(comp.Items()), trunc(want))
			}

			buf := make([]int32, minInt(len(a), len(b))+WriterSlack)
			sw := NewSliceWriter(buf)
			kernel(a, b, sw)
			if !slices.Equal(buf[:sw.Pos()], want) {
				t.Fatalf("slice writer: got %v want %v", trunc(buf[:sw.Pos()]), trunc(want))
			}
		})
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func trunc(s []int32) string {
	if len(s) > 24 {
		return fmt.Sprintf("%v... (%d total)", s[:24], len(s))
	}
	return fmt.Sprintf("%v", s)
}
