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
)

func benchPair(b *testing.B, n int) ([]int32, []int32) {
	b.Helper()
	rng := rand.New(rand.NewSource(int64(n)))
	return randomSorted(rng, n, int32(n*8)), randomSorted(rng, n, int32(n*8))
}

func benchKernel(b *testing.B, kernel func(x, y []int32, v Visitor)) {
	x, y := benchPair(b, 1<<14)
	count := &Counter{}
	b.SetBytes(int64(4 * (len(x) + len(y))))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count.Clear()
		kernel(x, y, count)
	}
}

func BenchmarkNaiveMerge(b *testing.B)      { benchKernel(b, NaiveMerge) }
func BenchmarkBranchlessMerge(b *testing.B) { benchKernel(b, BranchlessMerge) }
func BenchmarkBMiss(b *testing.B)           { benchKernel(b, BMiss) }
func BenchmarkBMissSTTNI(b *testing.B)      { benchKernel(b, BMissSTTNI) }
func BenchmarkGalloping(b *testing.B)       { benchKernel(b, Galloping) }

func BenchmarkShufflingSSE(b *testing.B)    { benchKernel(b, adapt4(ShufflingSSE)) }
func BenchmarkShufflingAVX512(b *testing.B) { benchKernel(b, adapt16(ShufflingAVX512)) }
func BenchmarkQFilter(b *testing.B)         { benchKernel(b, adapt4(QFilter)) }

func BenchmarkGallopingSSESkewed(b *testing.B) {
	rng := rand.New(rand.NewSource(99))
	small := randomSorted(rng, 1<<8, 1<<22)
	large := randomSorted(rng, 1<<18, 1<<22)
	count := &Counter{}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count.Clear()
		GallopingSSE(small, large, count)
	}
}
