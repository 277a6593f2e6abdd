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

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/UNSW-database/simd-set-operations/bench"
	"github.com/UNSW-database/simd-set-operations/datafile"
	"github.com/UNSW-database/simd-set-operations/dispatch"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var (
		experiment string
		dataDir    string
		out        string
		warmup     time.Duration
		runs       int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "time the algorithms of an experiment over generated datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := bench.Load(experiment)
			if err != nil {
				return err
			}

			// resolve everything up front so a typo fails fast
			algs := make(map[string]*dispatch.Algorithm)
			for _, names := range e.AlgorithmSets {
				for _, name := range names {
					if _, done := algs[name]; done {
						continue
					}
					alg, err := dispatch.Resolve(name)
					if err != nil {
						return err
					}
					algs[name] = alg
				}
			}

			datasets := make(map[string]*bench.DatasetInfo)
			for i := range e.Dataset {
				datasets[e.Dataset[i].Name] = &e.Dataset[i]
			}

			harness := &bench.Harness{Warmup: warmup, Runs: runs}
			results := bench.NewResults(e)

			for _, entry := range e.Experiment {
				d := datasets[entry.Dataset]
				fmt.Fprintf(cmd.OutOrStdout(), "experiment %s (%s)\n", entry.Name, entry.Title)

				for _, name := range e.AlgorithmSets[entry.AlgorithmSet] {
					alg := algs[name]
					for _, x := range d.Points() {
						for index := 0; index < d.GenCount; index++ {
							sets, err := loadInstance(dataDir, d.Name, x, index)
							if err != nil {
								return err
							}
							times, count, err := harness.Run(alg, sets)
							if err != nil {
								fmt.Fprintf(os.Stderr, "  %s skipped: %v\n", name, err)
								continue
							}
							results.Record(d, name, bench.ResultRun{
								X: x, Times: times, Count: count,
							})
						}
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %s done\n", name)
				}
			}
			return results.Save(out)
		},
	}
	cmd.Flags().StringVarP(&experiment, "experiment", "e", "experiment.yaml", "experiment file")
	cmd.Flags().StringVarP(&dataDir, "datasets", "d", "datasets", "dataset directory")
	cmd.Flags().StringVarP(&out, "out", "o", "results.json", "result file")
	cmd.Flags().DurationVar(&warmup, "warmup", 100*time.Millisecond, "per-algorithm warmup budget")
	cmd.Flags().IntVar(&runs, "runs", 10, "timed runs per instance")
	return cmd
}

// loadInstance tries the raw and compressed spellings of one
// generated instance.
func loadInstance(dir, name string, x uint32, index int) ([][]int32, error) {
	var firstErr error
	for _, ext := range []string{".data", ".data.zst", ".data.s2"} {
		sets, err := datafile.ReadFile(datasetPath(dir, name, x, index, ext))
		if err == nil {
			return sets, nil
		}
		if firstErr == nil && !os.IsNotExist(err) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("dataset instance %s_%d_%d not found in %s", name, x, index, dir)
}
