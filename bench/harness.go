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

package bench

import (
	"fmt"
	"time"

	"github.com/UNSW-database/simd-set-operations/dispatch"
)

// Harness times one algorithm over one loaded dataset. Runs are
// wall-clock; the warmup loop runs the same closure until the warmup
// budget is spent so code and data are hot before the first sample.
type Harness struct {
	Warmup time.Duration
	Runs   int
}

// Run times alg on sets. All runs must agree on the result
// cardinality; a disagreement means a broken kernel and fails the
// run.
func (h *Harness) Run(alg *dispatch.Algorithm, sets [][]int32) ([]time.Duration, int64, error) {
	count, err := alg.Run(sets)
	if err != nil {
		return nil, 0, err
	}

	deadline := time.Now().Add(h.Warmup)
	for time.Now().Before(deadline) {
		if _, err := alg.Run(sets); err != nil {
			return nil, 0, err
		}
	}

	samples := make([]time.Duration, h.Runs)
	for i := range samples {
		start := time.Now()
		got, err := alg.Run(sets)
		samples[i] = time.Since(start)
		if err != nil {
			return nil, 0, err
		}
		if got != count {
			return nil, 0, fmt.Errorf("bench: %s: cardinality changed between runs: %d != %d",
				alg.Name, got, count)
		}
	}
	return samples, count, nil
}
