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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/UNSW-database/simd-set-operations/dispatch"
)

const sampleExperiment = `
experiment:
  - name: scaling_2set
    title: two-set scaling
    dataset: uniform_2set
    algorithm_set: scalar
dataset:
  - name: uniform_2set
    vary: selectivity
    to: 1000
    step: 250
    gen_count: 2
    set_count: 2
    density: 100
    selectivity: 0
    max_len: 12
    skewness_factor: 1
algorithm_sets:
  scalar:
    - naive_merge_count
    - branchless_merge_count
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	if err := os.WriteFile(path, []byte(sampleExperiment), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	e, err := Load(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Experiment) != 1 || len(e.Dataset) != 1 {
		t.Fatalf("unexpected shape: %+v", e)
	}
	d := &e.Dataset[0]
	if d.Vary != VarySelectivity || d.MaxLen != 12 || d.Density != 100 {
		t.Fatalf("dataset fields not flattened: %+v", d)
	}
	if got := d.Points(); len(got) != 4 || got[0] != 250 || got[3] != 1000 {
		t.Fatalf("points %v", got)
	}
	if at := d.At(500); at.Selectivity != 500 || at.Density != 100 {
		t.Fatalf("At(500) = %+v", at)
	}
}

func TestLoadRejectsDanglingReferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	for _, broken := range []string{
		strings.Replace(sampleExperiment, "dataset: uniform_2set", "dataset: missing", 1),
		strings.Replace(sampleExperiment, "algorithm_set: scalar", "algorithm_set: missing", 1),
		strings.Replace(sampleExperiment, "step: 250", "step: 0", 1),
		strings.Replace(sampleExperiment, "gen_count: 2", "gen_count: 0", 1),
	} {
		if err := os.WriteFile(path, []byte(broken), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Fatal("expected validation error")
		}
	}
}

func TestHarnessRun(t *testing.T) {
	alg, err := dispatch.Resolve("naive_merge_count")
	if err != nil {
		t.Fatal(err)
	}
	h := &Harness{Warmup: time.Millisecond, Runs: 3}
	times, count, err := h.Run(alg, [][]int32{{1, 2, 3, 9}, {2, 9, 11}})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("count %d", count)
	}
	if len(times) != 3 {
		t.Fatalf("samples %d", len(times))
	}
}

func TestResults(t *testing.T) {
	e, err := Load(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	r := NewResults(e)
	if r.RunID == "" {
		t.Fatal("missing run id")
	}
	r.Record(&e.Dataset[0], "naive_merge_count", ResultRun{X: 250, Times: []time.Duration{time.Microsecond}, Count: 17})
	r.Record(&e.Dataset[0], "naive_merge_count", ResultRun{X: 500, Times: []time.Duration{2 * time.Microsecond}, Count: 30})

	path := filepath.Join(t.TempDir(), "results.json")
	if err := r.Save(path); err != nil {
		t.Fatal(err)
	}
	runs := r.Datasets["uniform_2set"].Algorithm["naive_merge_count"]
	if len(runs) != 2 || runs[1].X != 500 {
		t.Fatalf("recorded runs %+v", runs)
	}
}
