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

// setbench drives the sorted-set intersection benchmarks: dataset
// generation, timed runs and dataset inspection.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func main() {
	root := &cobra.Command{
		Use:           "setbench",
		Short:         "sorted-set intersection benchmark driver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		generateCmd(),
		runCmd(),
		describeCmd(),
		datatestCmd(),
	)
	if err := root.Execute(); err != nil {
		exitf("setbench: %v\n", err)
	}
}
