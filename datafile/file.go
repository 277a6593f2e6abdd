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

package datafile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/UNSW-database/simd-set-operations/compr"
)

// File-level helpers. Large generated datasets compress well (the
// element arrays are dense ascending runs), so files with a .zst or
// .s2 extension hold a compressed datafile image; anything else is
// the raw format.

func codecFor(path string) string {
	switch filepath.Ext(path) {
	case ".zst":
		return "zstd"
	case ".s2":
		return "s2"
	}
	return ""
}

// ReadFile loads a dataset, decompressing according to the file
// extension.
func ReadFile(path string) ([][]int32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if name := codecFor(path); name != "" {
		dec := compr.Decompression(name)
		raw, err = dec.Decompress(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("datafile: %s: %w", dec.Name(), err)
		}
	}
	return ReadFrom(bytes.NewReader(raw))
}

// WriteFile stores a dataset, compressing according to the file
// extension.
func WriteFile(path string, sets [][]int32) error {
	var buf bytes.Buffer
	if err := WriteTo(&buf, sets); err != nil {
		return err
	}
	out := buf.Bytes()
	if name := codecFor(path); name != "" {
		out = compr.Compression(name).Compress(out, nil)
	}
	return os.WriteFile(path, out, 0644)
}
