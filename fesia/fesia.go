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

// Package fesia implements the FESIA hash-partitioned set
// representation: a bitmap index over hashed element positions plus a
// data array reordered by hash segment. Intersecting two sets walks
// the bitmaps a vector of segments at a time; only segment pairs
// whose bitmap words AND to nonzero are verified, through small
// size-dispatched compare kernels.
//
// Zhang, J., Lu, Y., Spampinato, D. G., & Franchetti, F. (2020).
// FESIA: A fast and SIMD-efficient set intersection approach on
// modern CPUs. ICDE 2020.
package fesia

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/UNSW-database/simd-set-operations/heap"
	"github.com/UNSW-database/simd-set-operations/intersect"
	"github.com/UNSW-database/simd-set-operations/ints"
	"golang.org/x/exp/slices"
)

// minHashBits keeps tiny sets from degenerating into a near-empty
// bitmap; power-of-two sizing lets the hash reduce by masking
// without skew.
const minHashBits = 16 * 32

// ErrHashScale is returned for non-positive hash scales.
var ErrHashScale = errors.New("fesia: hash scale must be positive")

// Shape fixes the segment word width and the number of segment words
// compared per step. The nine supported shapes pair 8-, 16- and
// 32-bit segments with 128-, 256- and 512-bit vector steps.
type Shape struct {
	SegmentBits int // 8, 16 or 32
	Lanes       int // segment words per bitmap step
}

var (
	Shape8SSE     = Shape{8, 16}
	Shape16SSE    = Shape{16, 8}
	Shape32SSE    = Shape{32, 4}
	Shape8AVX2    = Shape{8, 32}
	Shape16AVX2   = Shape{16, 16}
	Shape32AVX2   = Shape{32, 8}
	Shape8AVX512  = Shape{8, 64}
	Shape16AVX512 = Shape{16, 32}
	Shape32AVX512 = Shape{32, 16}
)

// Set is a FESIA-encoded set. Within a segment, data preserves the
// ascending order of the source set.
type Set struct {
	bitmap  []byte
	sizes   []int32
	offsets []int32
	data    []int32

	shape    Shape
	scale    float64
	hashBits int // total bit positions, power of two
}

// NewSet encodes a strictly increasing sequence. The hash space is
// the smallest power of two >= len(sorted)*scale bit positions, with
// a floor of 512 to avoid degenerate bitmaps.
func NewSet(sorted []int32, shape Shape, scale float64) (*Set, error) {
	if scale <= 0 {
		return nil, ErrHashScale
	}
	switch shape.SegmentBits {
	case 8, 16, 32:
	default:
		return nil, fmt.Errorf("fesia: unsupported segment width %d", shape.SegmentBits)
	}

	hashBits := ints.NextPow2(int(float64(len(sorted)) * scale))
	if hashBits < minHashBits {
		hashBits = minHashBits
	}
	segments := hashBits / shape.SegmentBits

	s := &Set{
		bitmap:   make([]byte, hashBits/8),
		sizes:    make([]int32, segments),
		offsets:  make([]int32, segments),
		data:     make([]int32, len(sorted)),
		shape:    shape,
		scale:    scale,
		hashBits: hashBits,
	}

	for _, item := range sorted {
		h := maskedHash(item, hashBits)
		s.sizes[h/int32(shape.SegmentBits)]++
		ints.SetBit(s.bitmap, h)
	}

	sum := int32(0)
	for i, n := range s.sizes {
		s.offsets[i] = sum
		sum += n
	}

	fill := make([]int32, segments)
	copy(fill, s.offsets)
	for _, item := range sorted {
		seg := maskedHash(item, hashBits) / int32(shape.SegmentBits)
		s.data[fill[seg]] = item
		fill[seg]++
	}
	return s, nil
}

// SegmentCount returns the number of hash segments.
func (s *Set) SegmentCount() int {
	return len(s.offsets)
}

// Cardinality returns the number of encoded elements.
func (s *Set) Cardinality() int {
	return len(s.data)
}

// Shape returns the segment geometry the set was built with.
func (s *Set) Shape() Shape {
	return s.shape
}

// ToSorted recovers the encoded set in ascending order.
func (s *Set) ToSorted() []int32 {
	out := make([]int32, len(s.data))
	copy(out, s.data)
	slices.Sort(out)
	return out
}

// Contains probes the bitmap and on a hit scans the matching segment.
func (s *Set) Contains(x int32) bool {
	h := maskedHash(x, s.hashBits)
	if !ints.TestBit(s.bitmap, h) {
		return false
	}
	seg := h / int32(s.shape.SegmentBits)
	off := s.offsets[seg]
	for _, v := range s.data[off : off+s.sizes[seg]] {
		if v == x {
			return true
		}
	}
	return false
}

// MixHash is the bijective 32-bit mixer used to place elements.
// https://gist.github.com/badboy/6267743
func MixHash(key int32) int32 {
	key = ^key + (key << 15)
	key ^= key >> 12
	key += key << 2
	key ^= key >> 4
	key *= 2057
	key ^= key >> 16
	return key
}

func maskedHash(item int32, hashBits int) int32 {
	return MixHash(item) & int32(hashBits-1)
}

// word reads segment word i of the bitmap.
func (s *Set) word(i int) uint32 {
	switch s.shape.SegmentBits {
	case 8:
		return uint32(s.bitmap[i])
	case 16:
		return uint32(binary.LittleEndian.Uint16(s.bitmap[2*i:]))
	default:
		return binary.LittleEndian.Uint32(s.bitmap[4*i:])
	}
}

// Intersect computes the similar-size intersection of two sets built
// with the same shape and scale. The larger set's segment count must
// be a multiple of the smaller's, which holds whenever both were
// built with identical parameters. Output order follows hash
// placement, not element order.
func Intersect(a, b *Set, v intersect.Vector4Visitor) {
	if a.SegmentCount() > b.SegmentCount() {
		a, b = b, a
	}
	blocks := b.SegmentCount() / a.SegmentCount()
	for block := 0; block < blocks; block++ {
		intersectBlock(a, b, block*a.SegmentCount(), v, segmentIntersect)
	}
}

// IntersectShuffling verifies candidate segment pairs with the
// shuffling kernel instead of the size-dispatched compares.
func IntersectShuffling(a, b *Set, v intersect.Vector4Visitor) {
	if a.SegmentCount() > b.SegmentCount() {
		a, b = b, a
	}
	blocks := b.SegmentCount() / a.SegmentCount()
	for block := 0; block < blocks; block++ {
		intersectBlock(a, b, block*a.SegmentCount(), v, shufflingSegment)
	}
}

type segmentFn func(a, b []int32, sizeA, sizeB int, v intersect.Vector4Visitor)

func intersectBlock(small, large *Set, baseSegment int, v intersect.Vector4Visitor, seg segmentFn) {
	lanes := small.shape.Lanes

	// keep kernel overreads inside this block of the large set
	lastSeg := baseSegment + small.SegmentCount() - 1
	largeMax := large.offsets[lastSeg] + large.sizes[lastSeg]

	words := small.hashBits / small.shape.SegmentBits
	for smallOffset := 0; smallOffset < words; smallOffset += lanes {
		largeOffset := baseSegment + smallOffset

		var mask uint64
		for lane := 0; lane < lanes; lane++ {
			if small.word(smallOffset+lane)&large.word(largeOffset+lane) != 0 {
				mask |= 1 << lane
			}
		}

		for mask != 0 {
			lane := bits.TrailingZeros64(mask)
			mask &= mask - 1

			offA := small.offsets[smallOffset+lane]
			offB := large.offsets[largeOffset+lane]
			sizeA := int(small.sizes[smallOffset+lane])
			sizeB := int(large.sizes[largeOffset+lane])

			seg(small.data[offA:], large.data[offB:largeMax], sizeA, sizeB, v)
		}
	}
}

func shufflingSegment(a, b []int32, sizeA, sizeB int, v intersect.Vector4Visitor) {
	intersect.ShufflingSSE(a[:sizeA], b[:sizeB], v)
}

// HashIntersect is the skewed form: every element of the smaller set
// probes the larger set's bitmap directly and verifies hits with a
// short segment scan.
func HashIntersect(a, b *Set, v intersect.Visitor) {
	if a.Cardinality() > b.Cardinality() {
		a, b = b, a
	}
	for _, x := range a.data {
		if b.Contains(x) {
			v.Visit(x)
		}
	}
}

// KSet intersects k >= 2 sets pairwise, always taking the two
// smallest remaining sets and reinserting their intersection,
// re-encoded with the first set's parameters. The final result is
// replayed into v in hash-placement order.
func KSet(sets []*Set, v intersect.Visitor) error {
	if len(sets) < 2 {
		return errors.New("fesia: k-set intersection needs at least 2 sets")
	}
	shape, scale := sets[0].shape, sets[0].scale

	pending := make([]*Set, len(sets))
	copy(pending, sets)
	less := func(x, y *Set) bool {
		return x.Cardinality() < y.Cardinality()
	}
	heap.Order(pending, less)

	for len(pending) > 1 {
		first := heap.PopSlice(&pending, less)
		second := heap.PopSlice(&pending, less)

		out := intersect.NewAppender(first.Cardinality())
		Intersect(first, second, out)
		slices.Sort(out.Items)

		next, err := NewSet(out.Items, shape, scale)
		if err != nil {
			return err
		}
		heap.PushSlice(&pending, next, less)
	}

	for _, x := range pending[0].data {
		v.Visit(x)
	}
	return nil
}
