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
	"fmt"
	"strconv"
	"strings"

	"github.com/UNSW-database/simd-set-operations/fesia"
	"github.com/UNSW-database/simd-set-operations/simd"
)

// FESIA identifiers: fesia<segbits>_<width>_<scale> for the
// similar-size method and fesia_hash<segbits>_<scale> for the skewed
// hash-probe method. The scale is a positive decimal.

var fesiaShapes = map[string]struct {
	shape fesia.Shape
	width simd.Width
}{
	"8_sse":     {fesia.Shape8SSE, simd.SSE},
	"16_sse":    {fesia.Shape16SSE, simd.SSE},
	"32_sse":    {fesia.Shape32SSE, simd.SSE},
	"8_avx2":    {fesia.Shape8AVX2, simd.AVX2},
	"16_avx2":   {fesia.Shape16AVX2, simd.AVX2},
	"32_avx2":   {fesia.Shape32AVX2, simd.AVX2},
	"8_avx512":  {fesia.Shape8AVX512, simd.AVX512},
	"16_avx512": {fesia.Shape16AVX512, simd.AVX512},
	"32_avx512": {fesia.Shape32AVX512, simd.AVX512},
}

var fesiaHashShapes = map[string]fesia.Shape{
	"8":  fesia.Shape8SSE,
	"16": fesia.Shape16SSE,
	"32": fesia.Shape32SSE,
}

func resolveFesia(name string, d descriptor) (*Algorithm, error) {
	base := d.base
	if !strings.HasPrefix(base, "fesia") || d.branch || d.bsrTwin {
		return nil, ErrUnknown
	}

	cut := strings.LastIndexByte(base, '_')
	if cut < 0 {
		return nil, ErrUnknown
	}
	scale, err := strconv.ParseFloat(base[cut+1:], 64)
	if err != nil || scale <= 0 {
		return nil, ErrUnknown
	}
	prefix := base[:cut]

	if rest, ok := cutPrefix(prefix, "fesia_hash"); ok {
		shape, ok := fesiaHashShapes[rest]
		if !ok {
			return nil, ErrUnknown
		}
		return &Algorithm{
			Name:   name,
			TwoSet: fesiaHashRunner(shape, scale, d.visitor),
		}, nil
	}

	rest, ok := cutPrefix(prefix, "fesia")
	if !ok {
		return nil, ErrUnknown
	}
	sw, ok := fesiaShapes[rest]
	if !ok || !simd.HasWidth(sw.width) {
		return nil, ErrUnknown
	}
	return &Algorithm{
		Name:   name,
		TwoSet: fesiaRunner(sw.shape, scale, d.visitor),
		KSet:   fesiaKSetRunner(sw.shape, scale, d.visitor),
	}, nil
}

func cutPrefix(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

func fesiaRunner(shape fesia.Shape, scale float64, kind visitorKind) func(a, b []int32) int64 {
	return func(a, b []int32) int64 {
		sa := mustFesia(a, shape, scale)
		sb := mustFesia(b, shape, scale)
		s := newSink(kind, minLen(a, b))
		fesia.Intersect(sa, sb, s)
		return sinkCount(s)
	}
}

func fesiaHashRunner(shape fesia.Shape, scale float64, kind visitorKind) func(a, b []int32) int64 {
	return func(a, b []int32) int64 {
		sa := mustFesia(a, shape, scale)
		sb := mustFesia(b, shape, scale)
		s := newSink(kind, minLen(a, b))
		fesia.HashIntersect(sa, sb, s)
		return sinkCount(s)
	}
}

func fesiaKSetRunner(shape fesia.Shape, scale float64, kind visitorKind) func(sets [][]int32) int64 {
	return func(sets [][]int32) int64 {
		encoded := make([]*fesia.Set, len(sets))
		capacity := len(sets[0])
		for i, set := range sets {
			encoded[i] = mustFesia(set, shape, scale)
			if len(set) < capacity {
				capacity = len(set)
			}
		}
		s := newSink(kind, capacity)
		if err := fesia.KSet(encoded, s); err != nil {
			panic(fmt.Sprintf("fesia k-set: %v", err))
		}
		return sinkCount(s)
	}
}

// mustFesia cannot fail here: the scale was validated during name
// resolution.
func mustFesia(set []int32, shape fesia.Shape, scale float64) *fesia.Set {
	s, err := fesia.NewSet(set, shape, scale)
	if err != nil {
		panic(err)
	}
	return s
}
