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

import "golang.org/x/exp/slices"

// SvS reduces k-set intersection to repeated two-set intersection:
// intersect the two smallest sets, then fold each remaining set into
// the running result. out and buf must each hold at least the size of
// the smallest set (plus WriterSlack when twoset feeds a vector
// visitor through the writers); the alternation is chosen so the
// final result lands in out. Returns the result size.
//
// sets must be ordered by ascending cardinality.
func SvS(twoset TwoSetFn, sets [][]int32, out, buf []int32) int {
	outs := [2][]int32{out, buf}
	// odd set count: start in buf so the last swap ends in out
	if len(sets)%2 == 1 {
		outs[0], outs[1] = outs[1], outs[0]
	}

	w := NewSliceWriter(outs[0])
	twoset(sets[0], sets[1], w)
	count := w.Pos()

	for _, set := range sets[2:] {
		w := NewSliceWriter(outs[1])
		twoset(outs[0][:count], set, w)
		count = w.Pos()
		outs[0], outs[1] = outs[1], outs[0]
	}
	return count
}

// SvSVisit runs SvS with internal buffers and replays the final
// result into v.
func SvSVisit(twoset TwoSetFn, sets [][]int32, v Visitor) {
	ordered := sortedByLen(sets)
	n := len(ordered[0]) + WriterSlack
	out := make([]int32, n)
	buf := make([]int32, n)
	count := SvS(twoset, ordered, out, buf)
	for _, x := range out[:count] {
		v.Visit(x)
	}
}

// BaezaYatesK folds the recursive partition intersection across k
// sets, smallest first.
func BaezaYatesK(sets [][]int32, v Visitor) {
	ordered := sortedByLen(sets)

	acc := NewAppender(len(ordered[0]))
	BaezaYates(ordered[0], ordered[1], acc)

	for _, set := range ordered[2:] {
		next := NewAppender(len(acc.Items))
		BaezaYates(acc.Items, set, next)
		acc = next
	}
	for _, x := range acc.Items {
		v.Visit(x)
	}
}

func sortedByLen(sets [][]int32) [][]int32 {
	ordered := make([][]int32, len(sets))
	copy(ordered, sets)
	slices.SortFunc(ordered, func(a, b []int32) bool {
		return len(a) < len(b)
	})
	return ordered
}
