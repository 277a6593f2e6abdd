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

	"github.com/UNSW-database/simd-set-operations/datafile"
	"github.com/UNSW-database/simd-set-operations/intersect"
	"github.com/spf13/cobra"
)

func describeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <datafile>...",
		Short: "print the shape of dataset files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				sets, err := datafile.ReadFile(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d sets\n", path, len(sets))
				for i, set := range sets {
					if len(set) == 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "  set %3d: empty\n", i)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  set %3d: %8d elements in [%d, %d]\n",
						i, len(set), set[0], set[len(set)-1])
				}
				if len(sets) == 2 {
					count := &intersect.Counter{}
					intersect.NaiveMerge(sets[0], sets[1], count)
					fmt.Fprintf(cmd.OutOrStdout(), "  intersection: %d elements\n", count.Count())
				}
			}
			return nil
		},
	}
	return cmd
}

func datatestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datatest <datafile>...",
		Short: "verify dataset invariants (sorted, duplicate-free)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				sets, err := datafile.ReadFile(path)
				if err != nil {
					return err
				}
				for i, set := range sets {
					for j := 1; j < len(set); j++ {
						if set[j] <= set[j-1] {
							return fmt.Errorf("%s: set %d not strictly increasing at %d (%d, %d)",
								path, i, j, set[j-1], set[j])
						}
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			return nil
		},
	}
	return cmd
}
