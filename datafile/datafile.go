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

// Package datafile reads and writes pre-generated benchmark set
// vectors in a simple binary format built for fast loading:
//
//	header
//	- 24-bit magic: E9, AA, 05
//	- 8-bit flags: LSB set if the file was written little-endian
//	- u32 set count in [2, 256]
//	data
//	- array of u32 set lengths
//	- the sets; each element a signed 32-bit integer, ascending
//
// Sets are written in host byte order; readers reject files whose
// recorded endianness differs from the host rather than byte-swap.
package datafile

import (
	"errors"
	"fmt"
	"io"
	"unsafe"
)

var magic = [3]byte{0xe9, 0xaa, 0x05}

const (
	littleEndianBit = 1

	// MinSetCount and MaxSetCount bound the number of sets per file.
	MinSetCount = 2
	MaxSetCount = 256
)

var (
	ErrBadMagic      = errors.New("datafile: bad magic")
	ErrBadEndianness = errors.New("datafile: endianness mismatch")
)

// SetCountError reports a set count outside [MinSetCount, MaxSetCount].
type SetCountError uint32

func (e SetCountError) Error() string {
	return fmt.Sprintf("datafile: bad set count %d", uint32(e))
}

var hostLittle = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// ReadFrom parses a datafile image from r.
func ReadFrom(r io.Reader) ([][]int32, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("datafile: header: %w", err)
	}
	if header[0] != magic[0] || header[1] != magic[1] || header[2] != magic[2] {
		return nil, ErrBadMagic
	}
	if (header[3]&littleEndianBit != 0) != hostLittle {
		return nil, ErrBadEndianness
	}

	count := *(*uint32)(unsafe.Pointer(&header[4]))
	if count < MinSetCount || count > MaxSetCount {
		return nil, SetCountError(count)
	}

	lengths := make([]uint32, count)
	if _, err := io.ReadFull(r, asBytes(lengths)); err != nil {
		return nil, fmt.Errorf("datafile: lengths: %w", err)
	}

	sets := make([][]int32, count)
	for i, n := range lengths {
		sets[i] = make([]int32, n)
		if n == 0 {
			continue
		}
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&sets[i][0])), 4*int(n))
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("datafile: set %d: %w", i, err)
		}
	}
	return sets, nil
}

// WriteTo writes sets as a datafile image.
func WriteTo(w io.Writer, sets [][]int32) error {
	count := uint32(len(sets))
	if count < MinSetCount || count > MaxSetCount {
		return SetCountError(count)
	}

	var header [8]byte
	copy(header[:3], magic[:])
	if hostLittle {
		header[3] = littleEndianBit
	}
	*(*uint32)(unsafe.Pointer(&header[4])) = count
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("datafile: header: %w", err)
	}

	lengths := make([]uint32, count)
	for i, set := range sets {
		lengths[i] = uint32(len(set))
	}
	if _, err := w.Write(asBytes(lengths)); err != nil {
		return fmt.Errorf("datafile: lengths: %w", err)
	}

	for i, set := range sets {
		if len(set) == 0 {
			continue
		}
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&set[0])), 4*len(set))
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("datafile: set %d: %w", i, err)
		}
	}
	return nil
}

func asBytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), 4*len(v))
}
