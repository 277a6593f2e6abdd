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

// Adaptive k-set intersection rotates an eliminator value across the
// sets: each set gallops its cursor toward the eliminator, a full
// round of confirmations emits it, and the first miss promotes the
// missing set's value to the new eliminator. Terminates as soon as
// any set is exhausted.
func Adaptive(sets [][]int32, v Visitor) {
	for _, set := range sets {
		if len(set) == 0 {
			return
		}
	}

	positions := make([]int, len(sets))

	elimSet := 0
	elim := sets[0][0]
	curr := 1
	gallop := 1

	for {
		set := sets[curr]
		pos := positions[curr]

		if pos+gallop > len(set)-1 {
			gallop = len(set) - 1 - pos
		}

		if set[pos+gallop] >= elim {
			found := binarySearch(set, elim, pos, pos+gallop)
			positions[curr] = found

			if set[found] == elim {
				positions[curr]++
				curr = (curr + 1) % len(sets)

				if curr == elimSet {
					// confirmed by every set
					v.Visit(elim)

					if positions[elimSet] == len(sets[elimSet])-1 {
						return
					}
					positions[elimSet]++
					elim = sets[elimSet][positions[elimSet]]
					curr = (curr + 1) % len(sets)
				}
			} else {
				elim = set[found]
				positions[elimSet]++
				elimSet = curr
				curr = (curr + 1) % len(sets)
			}

			// gallop 0 keeps the last element comparable
			switch next, n := positions[curr]+1, len(sets[curr]); {
			case next < n:
				gallop = 1
			case next == n:
				gallop = 0
			default:
				return
			}
			continue
		} else if set[len(set)-1] < elim {
			return
		}

		if pos+gallop*2 < len(set) {
			gallop *= 2
		} else {
			gallop = len(set) - pos - 1
		}
	}
}

// SmallAdaptive probes every other set for each element of the first
// set, galloping from each set's saved cursor.
func SmallAdaptive(sets [][]int32, v Visitor) {
	positions := make([]int, len(sets))

outer:
	for _, element := range sets[0] {
		for i, set := range sets {
			if i == 0 {
				continue
			}
			base := positions[i]

			offset := 1
			for base+offset < len(set) && set[base+offset] <= element {
				offset *= 2
			}
			hi := base + offset
			if hi > len(set)-1 {
				hi = len(set) - 1
			}

			found := binarySearch(set, element, base, hi)
			positions[i] = found

			if found >= len(set) || set[found] != element {
				continue outer
			}
		}
		v.Visit(element)
	}
}

// SmallAdaptiveSorted re-sorts the remaining suffixes every round so
// the smallest remaining set drives the probes.
func SmallAdaptiveSorted(given [][]int32, v Visitor) {
	sets := make([][]int32, len(given))
	copy(sets, given)

outer:
	for {
		slices.SortFunc(sets, func(a, b []int32) bool {
			return len(a) < len(b)
		})

		primary := sets[0]
		if len(primary) == 0 {
			return
		}
		element := primary[0]

		for i := 1; i < len(sets); i++ {
			set := sets[i]

			offset := 1
			for offset < len(set) && set[offset] <= element {
				offset *= 2
			}
			hi := offset
			if hi > len(set)-1 {
				hi = len(set) - 1
			}

			found := binarySearch(set, element, 0, hi)
			if found >= len(set) {
				return
			}
			sets[i] = set[found:]

			if set[found] != element {
				sets[0] = primary[1:]
				continue outer
			}
		}
		v.Visit(element)
		sets[0] = primary[1:]
	}
}
