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

// Package gen synthesizes benchmark datasets: pairs or groups of
// sorted integer sets with controlled density (elements per domain),
// selectivity (intersection size relative to the smallest set), size
// and skew. Percentage parameters are expressed in thousandths.
package gen

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/dchest/siphash"
	"golang.org/x/exp/slices"
)

// Percent is the fixed-point denominator of density and selectivity:
// a value p means p/Percent.
const Percent = 1000

// minSetLength is the size below which generated sets stop being
// meaningful benchmark inputs; generation proceeds but warns.
const minSetLength = 100

// Info holds the intersection parameters of one generated group.
type Info struct {
	SetCount    uint32 `json:"set_count"`
	Density     uint32 `json:"density"`
	Selectivity uint32 `json:"selectivity"`
	// MaxLen is the log2 of the largest set's length.
	MaxLen         uint32 `json:"max_len"`
	SkewnessFactor uint32 `json:"skewness_factor"`
}

// Rand derives a deterministic random stream for one dataset
// instance. Streams are keyed on (seed, dataset, index) so adding
// instances or datasets never perturbs previously generated data.
func Rand(seed uint64, dataset string, index int) *rand.Rand {
	h := siphash.Hash(seed, uint64(index), []byte(dataset))
	return rand.New(rand.NewSource(int64(h)))
}

// TwoSet generates a (small, large) pair. The large set has 1<<MaxLen
// elements, the small one is reduced by the skew factor, and the
// intersection holds Selectivity/Percent of the small set.
func TwoSet(info *Info, rng *rand.Rand) ([]int32, []int32) {
	largeLen := 1 << info.MaxLen
	smallLen := largeLen / skew(1, info.SkewnessFactor)
	if smallLen < minSetLength {
		warnSetLen(smallLen)
	}

	density := float64(info.Density) / Percent
	selectivity := float64(info.Selectivity) / Percent

	maxValue := int32(float64(largeLen) / density)

	sharedCount := int(selectivity * float64(smallLen))
	genCount := smallLen + largeLen - sharedCount

	if genCount > int(maxValue) {
		// domain too small for the requested overlap; shared values
		// grow to make the counts fit
		sharedCount = smallLen + largeLen - int(maxValue)
		genCount = int(maxValue)
		warnSelectivity(sharedCount, smallLen, selectivity, density)
	}

	// first sharedCount values are common; the rest split between the
	// exclusive parts of each set
	values := shuffledSet(rng, genCount, maxValue)
	shared := values[:sharedCount]

	small := make([]int32, 0, smallLen)
	small = append(small, shared...)
	small = append(small, values[sharedCount:smallLen]...)

	large := make([]int32, 0, largeLen)
	large = append(large, shared...)
	large = append(large, values[smallLen:genCount]...)

	slices.Sort(small)
	slices.Sort(large)
	return small, large
}

// KSet generates count sets sharing Selectivity/Percent of the
// smallest set's elements. Set i is shrunk by (i+1)^SkewnessFactor.
func KSet(info *Info, count int, rng *rand.Rand) [][]int32 {
	maxLen := 1 << info.MaxLen
	density := float64(info.Density) / Percent
	selectivity := float64(info.Selectivity) / Percent

	maxValue := int32(float64(maxLen) / density)

	minLen := maxLen / skew(count-1, info.SkewnessFactor)
	if minLen < minSetLength {
		warnSetLen(minLen)
	}

	sharedCount := int(selectivity * float64(minLen))
	shared := shuffledSet(rng, sharedCount, maxValue)

	sets := make([][]int32, 0, count)
	for i := 0; i < count; i++ {
		setLen := maxLen / skew(i, info.SkewnessFactor)
		sets = append(sets, sortedSetContaining(rng, shared, setLen, maxValue))
	}
	return sets
}

// shuffledSet returns result ints drawn uniformly without repetition
// from [0, maxValue).
func shuffledSet(rng *rand.Rand, resultLen int, maxValue int32) []int32 {
	if resultLen*2 < int(maxValue) {
		// low density: rejection sample
		seen := make(map[int32]struct{}, resultLen)
		items := make([]int32, 0, resultLen)
		for len(items) < resultLen {
			v := rng.Int31n(maxValue)
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				items = append(items, v)
			}
		}
		return items
	}
	// high density: shuffle the whole domain
	everything := make([]int32, maxValue)
	for i := range everything {
		everything[i] = int32(i)
	}
	rng.Shuffle(len(everything), func(i, j int) {
		everything[i], everything[j] = everything[j], everything[i]
	})
	return everything[:resultLen]
}

// sortedSetContaining returns a sorted resultLen-element set holding
// every element of include.
func sortedSetContaining(rng *rand.Rand, include []int32, resultLen int, maxValue int32) []int32 {
	included := make(map[int32]struct{}, len(include))
	for _, v := range include {
		included[v] = struct{}{}
	}

	rest := resultLen - len(include)
	result := make([]int32, 0, resultLen)
	result = append(result, include...)

	if resultLen*2 < int(maxValue) {
		seen := make(map[int32]struct{}, rest)
		for n := 0; n < rest; {
			v := rng.Int31n(maxValue)
			if _, dup := included[v]; dup {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			result = append(result, v)
			n++
		}
	} else {
		notIncluded := make([]int32, 0, int(maxValue)-len(include))
		for v := int32(0); v < maxValue; v++ {
			if _, dup := included[v]; !dup {
				notIncluded = append(notIncluded, v)
			}
		}
		rng.Shuffle(len(notIncluded), func(i, j int) {
			notIncluded[i], notIncluded[j] = notIncluded[j], notIncluded[i]
		})
		result = append(result, notIncluded[:rest]...)
	}

	slices.Sort(result)
	return result
}

// skew computes the size divisor of the k-th set, (k+1)^factor.
func skew(setIndex int, factor uint32) int {
	s := 1
	for i := uint32(0); i < factor; i++ {
		s *= setIndex + 1
	}
	return s
}

func warnSetLen(n int) {
	fmt.Fprintf(os.Stderr, "warning: generated set length %d below %d\n", n, minSetLength)
}

func warnSelectivity(shared, smallLen int, selectivity, density float64) {
	fmt.Fprintf(os.Stderr,
		"warning: selectivity %.3f unreachable at density %.3f; shared count forced to %d of %d\n",
		selectivity, density, shared, smallLen)
}
