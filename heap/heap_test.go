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

package heap

import (
	"math/rand"
	"testing"

	"golang.org/x/exp/slices"
)

func TestHeap(t *testing.T) {
	x := make([]int, 0, 1000)
	less := func(x, y int) bool {
		return x < y
	}
	for len(x) < cap(x) {
		PushSlice(&x, rand.Int(), less)
	}
	sorted := make([]int, 0, len(x))
	for len(x) > 0 {
		sorted = append(sorted, PopSlice(&x, less))
	}
	if !slices.IsSorted(sorted) {
		t.Fatal("not sorted")
	}
}

func TestOrder(t *testing.T) {
	x := []int{9, 3, 7, 1, 8, 2, 6}
	less := func(x, y int) bool {
		return x < y
	}
	Order(x, less)
	sorted := make([]int, 0, len(x))
	for len(x) > 0 {
		sorted = append(sorted, PopSlice(&x, less))
	}
	if !slices.IsSorted(sorted) {
		t.Fatal("not sorted after Order")
	}
}
