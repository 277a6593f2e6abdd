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
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
)

// Results collects every timed sample of one benchmark invocation.
// RunID distinguishes result files produced by repeated invocations
// of the same experiment.
type Results struct {
	RunID       string                     `json:"run_id"`
	StartedAt   time.Time                  `json:"started_at"`
	Experiments []Entry                    `json:"experiments"`
	Datasets    map[string]*DatasetResults `json:"datasets"`
	Algorithms  map[string][]string        `json:"algorithm_sets"`
}

// DatasetResults maps algorithm name to one run record per x-value.
type DatasetResults struct {
	Info      DatasetInfo            `json:"info"`
	Algorithm map[string][]ResultRun `json:"algorithm"`
}

// ResultRun is one (x, samples) point.
type ResultRun struct {
	X     uint32          `json:"x"`
	Times []time.Duration `json:"times"`
	Count int64           `json:"count"`
}

// NewResults stamps a fresh result set.
func NewResults(e *Experiment) *Results {
	return &Results{
		RunID:       uuid.NewString(),
		StartedAt:   time.Now().UTC(),
		Experiments: e.Experiment,
		Datasets:    make(map[string]*DatasetResults),
		Algorithms:  e.AlgorithmSets,
	}
}

// Record appends one run to the named dataset and algorithm.
func (r *Results) Record(dataset *DatasetInfo, algorithm string, run ResultRun) {
	d := r.Datasets[dataset.Name]
	if d == nil {
		d = &DatasetResults{
			Info:      *dataset,
			Algorithm: make(map[string][]ResultRun),
		}
		r.Datasets[dataset.Name] = d
	}
	d.Algorithm[algorithm] = append(d.Algorithm[algorithm], run)
}

// Save writes the results as indented JSON.
func (r *Results) Save(path string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}
