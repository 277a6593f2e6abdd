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

// package heap implements generic
// heap functions.
package heap

// PopSlice removes the "smallest" element from x
// based on the provided comparison function
// and updates x appropriately to preserve the
// heap invariant.
func PopSlice[T any](x *[]T, less func(x, y T) bool) T {
	ret := (*x)[0]
	(*x)[0], *x = (*x)[len(*x)-1], (*x)[:len(*x)-1]
	if len(*x) > 0 {
		siftDown((*x), 0, less)
	}
	return ret
}

// PushSlice adds item to x while preserving
// the min-heap invariant determined by the
// provided comparison function.
func PushSlice[T any](x *[]T, item T, less func(x, y T) bool) {
	*x = append(*x, item)
	siftUp(*x, len(*x)-1, less)
}

// Order turns x into a min-heap under less.
func Order[T any](x []T, less func(x, y T) bool) {
	for i := len(x)/2 - 1; i >= 0; i-- {
		siftDown(x, i, less)
	}
}

func siftUp[T any](x []T, index int, less func(x, y T) bool) {
	for index > 0 {
		parent := (index - 1) / 2
		if !less(x[index], x[parent]) {
			break
		}
		x[index], x[parent] = x[parent], x[index]
		index = parent
	}
}

func siftDown[T any](x []T, index int, less func(x, y T) bool) {
	for {
		smallest := index
		if l := 2*index + 1; l < len(x) && less(x[l], x[smallest]) {
			smallest = l
		}
		if r := 2*index + 2; r < len(x) && less(x[r], x[smallest]) {
			smallest = r
		}
		if smallest == index {
			return
		}
		x[index], x[smallest] = x[smallest], x[index]
		index = smallest
	}
}
