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

package simd

import (
	"os"

	"golang.org/x/sys/cpu"
)

// Width names a vector register class. Kernels of a given width are
// only registered by the resolver when the host carries the matching
// instruction set, so benchmark results stay honest about what the
// machine can execute natively. The kernel bodies themselves run
// anywhere.
type Width int

const (
	Scalar Width = iota
	SSE          // 128-bit, 4 lanes
	AVX2         // 256-bit, 8 lanes
	AVX512       // 512-bit, 16 lanes
)

func (w Width) String() string {
	switch w {
	case SSE:
		return "sse"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	}
	return "scalar"
}

// Lanes returns the number of 32-bit lanes of w.
func (w Width) Lanes() int {
	switch w {
	case SSE:
		return 4
	case AVX2:
		return 8
	case AVX512:
		return 16
	}
	return 1
}

// portable forces the scalar-only surface, mirroring how a portable
// interpreter build disables native wide paths.
var portable = os.Getenv("SETOPS_PORTABLE") != ""

// HasWidth reports whether kernels of width w are available on this
// host. Scalar is always available.
func HasWidth(w Width) bool {
	if w == Scalar {
		return true
	}
	if portable {
		return false
	}
	switch w {
	case SSE:
		return cpu.X86.HasSSE42
	case AVX2:
		return cpu.X86.HasAVX2
	case AVX512:
		return cpu.X86.HasAVX512F && cpu.X86.HasAVX512CD
	}
	return false
}

// MaxWidth returns the widest available register class.
func MaxWidth() Width {
	for _, w := range []Width{AVX512, AVX2, SSE} {
		if HasWidth(w) {
			return w
		}
	}
	return Scalar
}
