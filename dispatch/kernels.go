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

package dispatch

import (
	"github.com/UNSW-database/simd-set-operations/bsr"
	"github.com/UNSW-database/simd-set-operations/intersect"
	"github.com/UNSW-database/simd-set-operations/simd"
	"golang.org/x/exp/slices"
)

// twoSetKernel tags a kernel body with the width it requires. fn and
// brFn hold one of the recognized function shapes; a nil brFn means
// the family has no separate branch form. Families whose body already
// advances with a three-way branch alias _br to the same function.
type twoSetKernel struct {
	width simd.Width
	fn    any
	brFn  any
}

var twoSetKernels map[string]twoSetKernel

var kSetKernels = map[string]func([][]int32, intersect.Visitor){
	"adaptive":              intersect.Adaptive,
	"small_adaptive":        intersect.SmallAdaptive,
	"small_adaptive_sorted": intersect.SmallAdaptiveSorted,
	"baezayates_k":          intersect.BaezaYatesK,
}

type bsrKernel struct {
	width simd.Width
	fn    any
	brFn  any
}

var bsrKernels map[string]bsrKernel

func init() {
	twoSetKernels = map[string]twoSetKernel{
		"naive_merge":      {simd.Scalar, intersect.NaiveMerge, nil},
		"branchless_merge": {simd.Scalar, intersect.BranchlessMerge, nil},
		"bmiss_scalar_3x":  {simd.Scalar, intersect.BMissScalar3, nil},
		"bmiss_scalar_4x":  {simd.Scalar, intersect.BMissScalar4, nil},
		"galloping":        {simd.Scalar, intersect.Galloping, nil},
		"binary_search":    {simd.Scalar, intersect.BinarySearchIntersect, nil},
		"baezayates":       {simd.Scalar, intersect.BaezaYates, nil},

		"shuffling_sse":    {simd.SSE, intersect.ShufflingSSE, intersect.ShufflingSSEBranch},
		"broadcast_sse":    {simd.SSE, intersect.BroadcastSSE, intersect.BroadcastSSEBranch},
		"bmiss":            {simd.SSE, intersect.BMiss, intersect.BMiss},
		"bmiss_sttni":      {simd.SSE, intersect.BMissSTTNI, intersect.BMissSTTNI},
		"qfilter":          {simd.SSE, intersect.QFilter, intersect.QFilter},
		"qfilter_v1":       {simd.SSE, intersect.QFilterV1, intersect.QFilterV1},
		"galloping_sse":    {simd.SSE, intersect.GallopingSSE, nil},
		"lbk_v1x4_sse":     {simd.SSE, intersect.LBKV1x4SSE, nil},
		"lbk_v1x8_sse":     {simd.SSE, intersect.LBKV1x8SSE, nil},
		"lbk_v3_sse":       {simd.SSE, intersect.LBKV3SSE, nil},

		"shuffling_avx2":  {simd.AVX2, intersect.ShufflingAVX2, intersect.ShufflingAVX2Branch},
		"broadcast_avx2":  {simd.AVX2, intersect.BroadcastAVX2, intersect.BroadcastAVX2Branch},
		"galloping_avx2":  {simd.AVX2, intersect.GallopingAVX2, nil},
		"lbk_v1x8_avx2":   {simd.AVX2, intersect.LBKV1x8AVX2, nil},
		"lbk_v1x16_avx2":  {simd.AVX2, intersect.LBKV1x16AVX2, nil},
		"lbk_v3_avx2":     {simd.AVX2, intersect.LBKV3AVX2, nil},

		"shuffling_avx512":       {simd.AVX512, intersect.ShufflingAVX512, intersect.ShufflingAVX512Branch},
		"broadcast_avx512":       {simd.AVX512, intersect.BroadcastAVX512, intersect.BroadcastAVX512Branch},
		"vp2intersect_emulation": {simd.AVX512, intersect.VP2IntersectEmulation, intersect.VP2IntersectEmulation},
		"conflict_intersect":     {simd.AVX512, intersect.ConflictIntersect, intersect.ConflictIntersect},
		"galloping_avx512":       {simd.AVX512, intersect.GallopingAVX512, nil},
		"lbk_v1x16_avx512":       {simd.AVX512, intersect.LBKV1x16AVX512, nil},
		"lbk_v1x32_avx512":       {simd.AVX512, intersect.LBKV1x32AVX512, nil},
		"lbk_v3_avx512":          {simd.AVX512, intersect.LBKV3AVX512, nil},
	}

	bsrKernels = map[string]bsrKernel{
		"branchless_merge": {simd.Scalar, intersect.BranchlessMergeBSR, nil},
		"galloping":        {simd.Scalar, intersect.GallopingBSR, nil},

		"shuffling_sse": {simd.SSE, intersect.ShufflingSSEBSR, intersect.ShufflingSSEBSR},
		"broadcast_sse": {simd.SSE, intersect.BroadcastSSEBSR, intersect.BroadcastSSEBSR},
		"qfilter":       {simd.SSE, intersect.QFilterBSR, intersect.QFilterBSR},
		"galloping_sse": {simd.SSE, intersect.GallopingSSEBSR, nil},

		"shuffling_avx2": {simd.AVX2, intersect.ShufflingAVX2BSR, intersect.ShufflingAVX2BSR},
		"broadcast_avx2": {simd.AVX2, intersect.BroadcastAVX2BSR, intersect.BroadcastAVX2BSR},
		"galloping_avx2": {simd.AVX2, intersect.GallopingAVX2BSR, nil},

		"shuffling_avx512": {simd.AVX512, intersect.ShufflingAVX512BSR, intersect.ShufflingAVX512BSR},
		"broadcast_avx512": {simd.AVX512, intersect.BroadcastAVX512BSR, intersect.BroadcastAVX512BSR},
		"galloping_avx512": {simd.AVX512, intersect.GallopingAVX512BSR, nil},
	}
}

// callTwoSet invokes one of the recognized kernel shapes on a sink.
func callTwoSet(fn any, a, b []int32, s sink) {
	switch f := fn.(type) {
	case func([]int32, []int32, intersect.Visitor):
		f(a, b, s)
	case func([]int32, []int32, intersect.Vector4Visitor):
		f(a, b, s)
	case func([]int32, []int32, intersect.Vector8Visitor):
		f(a, b, s)
	case func([]int32, []int32, intersect.Vector16Visitor):
		f(a, b, s)
	}
}

func twoSetRunner(fn any, kind visitorKind) func(a, b []int32) int64 {
	return func(a, b []int32) int64 {
		s := newSink(kind, minLen(a, b))
		callTwoSet(fn, a, b, s)
		return sinkCount(s)
	}
}

func sinkItems(s sink) []int32 {
	switch s := s.(type) {
	case *intersect.LookupWriter:
		return s.Items()
	case *intersect.CompressWriter:
		return s.Items()
	case *intersect.Appender:
		return s.Items
	}
	return nil
}

// svsRunner folds the two-set kernel across k sets, smallest first.
func svsRunner(fn any, kind visitorKind) func(sets [][]int32) int64 {
	return func(sets [][]int32) int64 {
		ordered := make([][]int32, len(sets))
		copy(ordered, sets)
		slices.SortFunc(ordered, func(a, b []int32) bool {
			return len(a) < len(b)
		})

		s := newSink(kind, len(ordered[0]))
		callTwoSet(fn, ordered[0], ordered[1], s)
		acc := sinkItems(s)

		for _, set := range ordered[2:] {
			s = newSink(kind, len(acc))
			callTwoSet(fn, acc, set, s)
			acc = sinkItems(s)
		}
		return int64(len(acc))
	}
}

// bsrSink unifies the BSR-capable writers.
type bsrSink interface {
	intersect.BSRVector4Visitor
	intersect.BSRVector8Visitor
	intersect.BSRVector16Visitor
}

func newBSRSink(kind visitorKind, capacity int) bsrSink {
	if kind == visitCount {
		return &intersect.Counter{}
	}
	return intersect.NewBSRAppender(capacity)
}

func bsrSinkCount(s bsrSink) int64 {
	switch s := s.(type) {
	case *intersect.Counter:
		return s.Count()
	case *intersect.BSRAppender:
		return int64(s.Set.Cardinality())
	}
	return 0
}

// bsrRunner re-encodes the inputs and counts decoded elements so BSR
// results compare directly against the plain kernels. Elements must
// be non-negative for the unsigned reinterpretation to preserve
// order.
func bsrRunner(fn any, kind visitorKind) func(a, b []int32) int64 {
	return func(a, b []int32) int64 {
		sa := bsr.FromSorted(toUnsigned(a))
		sb := bsr.FromSorted(toUnsigned(b))
		s := newBSRSink(kind, minLen(a, b))
		switch f := fn.(type) {
		case func(*bsr.Set, *bsr.Set, intersect.BSRVisitor):
			f(sa, sb, s)
		case func(*bsr.Set, *bsr.Set, intersect.BSRVector4Visitor):
			f(sa, sb, s)
		case func(*bsr.Set, *bsr.Set, intersect.BSRVector8Visitor):
			f(sa, sb, s)
		case func(*bsr.Set, *bsr.Set, intersect.BSRVector16Visitor):
			f(sa, sb, s)
		}
		return bsrSinkCount(s)
	}
}

func toUnsigned(s []int32) []uint32 {
	u := make([]uint32, len(s))
	for i, v := range s {
		u[i] = uint32(v)
	}
	return u
}

func kSetRunner(fn func([][]int32, intersect.Visitor), kind visitorKind) func(sets [][]int32) int64 {
	return func(sets [][]int32) int64 {
		capacity := len(sets[0])
		for _, s := range sets[1:] {
			if len(s) < capacity {
				capacity = len(s)
			}
		}
		s := newSink(kind, capacity)
		fn(sets, s)
		return sinkCount(s)
	}
}
