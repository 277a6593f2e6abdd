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
	"path/filepath"

	"github.com/UNSW-database/simd-set-operations/bench"
	"github.com/UNSW-database/simd-set-operations/datafile"
	"github.com/UNSW-database/simd-set-operations/gen"
	"github.com/spf13/cobra"
)

// datasetPath names one generated instance. The x value and instance
// index are embedded so runs can stream instances without an index
// file.
func datasetPath(dir, name string, x uint32, index int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d_%d%s", name, x, index, ext))
}

func generateCmd() *cobra.Command {
	var (
		experiment string
		outDir     string
		seed       uint64
		compress   string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "generate the datasets of an experiment file",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := bench.Load(experiment)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			ext := ".data"
			switch compress {
			case "":
			case "zstd":
				ext = ".data.zst"
			case "s2":
				ext = ".data.s2"
			default:
				return fmt.Errorf("unknown compression %q", compress)
			}

			for i := range e.Dataset {
				d := &e.Dataset[i]
				fmt.Fprintf(cmd.OutOrStdout(), "generating %s\n", d.Name)
				for _, x := range d.Points() {
					info := d.At(x)
					for index := 0; index < d.GenCount; index++ {
						rng := gen.Rand(seed, fmt.Sprintf("%s_%d", d.Name, x), index)

						var sets [][]int32
						if info.SetCount <= 2 {
							small, large := gen.TwoSet(&info, rng)
							sets = [][]int32{small, large}
						} else {
							sets = gen.KSet(&info, int(info.SetCount), rng)
						}

						path := datasetPath(outDir, d.Name, x, index, ext)
						if err := datafile.WriteFile(path, sets); err != nil {
							return err
						}
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&experiment, "experiment", "e", "experiment.yaml", "experiment file")
	cmd.Flags().StringVarP(&outDir, "out", "o", "datasets", "output directory")
	cmd.Flags().Uint64Var(&seed, "seed", 0x5e70b5, "generator seed")
	cmd.Flags().StringVar(&compress, "compress", "", "dataset compression (zstd, s2)")
	return cmd
}
