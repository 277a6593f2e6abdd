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

// Package bench holds the experiment schema, the wall-clock timing
// harness and the result records of the benchmark driver.
package bench

import (
	"fmt"
	"os"

	"github.com/UNSW-database/simd-set-operations/gen"
	"sigs.k8s.io/yaml"
)

// Parameter names the swept dataset dimension.
type Parameter string

const (
	VaryDensity     Parameter = "density"
	VarySelectivity Parameter = "selectivity"
	VarySize        Parameter = "size"
	VarySkew        Parameter = "skew"
	VarySetCount    Parameter = "set_count"
)

// Experiment is the top-level experiment file.
type Experiment struct {
	Experiment    []Entry             `json:"experiment"`
	Dataset       []DatasetInfo       `json:"dataset"`
	AlgorithmSets map[string][]string `json:"algorithm_sets"`
}

// Entry pairs one dataset with one algorithm set.
type Entry struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Dataset      string `json:"dataset"`
	AlgorithmSet string `json:"algorithm_set"`
}

// DatasetInfo describes a parameter sweep: Vary runs from Step to To
// in steps of Step, and GenCount instances are generated per point.
type DatasetInfo struct {
	Name     string    `json:"name"`
	Vary     Parameter `json:"vary"`
	To       uint32    `json:"to"`
	Step     uint32    `json:"step"`
	GenCount int       `json:"gen_count"`

	// intersection parameters flatten into the dataset mapping
	gen.Info
}

// Load parses an experiment file.
func Load(path string) (*Experiment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e Experiment
	if err := yaml.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("bench: %s: %w", path, err)
	}
	if err := e.validate(); err != nil {
		return nil, fmt.Errorf("bench: %s: %w", path, err)
	}
	return &e, nil
}

func (e *Experiment) validate() error {
	datasets := make(map[string]*DatasetInfo, len(e.Dataset))
	for i := range e.Dataset {
		d := &e.Dataset[i]
		if d.Step == 0 || d.To < d.Step {
			return fmt.Errorf("dataset %q: bad sweep [%d, %d]", d.Name, d.Step, d.To)
		}
		if d.GenCount <= 0 {
			return fmt.Errorf("dataset %q: gen_count must be positive", d.Name)
		}
		datasets[d.Name] = d
	}
	for _, entry := range e.Experiment {
		if _, ok := datasets[entry.Dataset]; !ok {
			return fmt.Errorf("experiment %q: unknown dataset %q", entry.Name, entry.Dataset)
		}
		if _, ok := e.AlgorithmSets[entry.AlgorithmSet]; !ok {
			return fmt.Errorf("experiment %q: unknown algorithm set %q", entry.Name, entry.AlgorithmSet)
		}
	}
	return nil
}

// Points enumerates the swept x-values of a dataset.
func (d *DatasetInfo) Points() []uint32 {
	var xs []uint32
	for x := d.Step; x <= d.To; x += d.Step {
		xs = append(xs, x)
	}
	return xs
}

// At returns the generator parameters with the swept dimension set
// to x.
func (d *DatasetInfo) At(x uint32) gen.Info {
	info := d.Info
	switch d.Vary {
	case VaryDensity:
		info.Density = x
	case VarySelectivity:
		info.Selectivity = x
	case VarySize:
		info.MaxLen = x
	case VarySkew:
		info.SkewnessFactor = x
	case VarySetCount:
		info.SetCount = x
	}
	return info
}
