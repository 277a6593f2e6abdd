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
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func roundTrip(t *testing.T, sets [][]int32) {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteTo(&buf, sets); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrom(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(sets) {
		t.Fatalf("got %d sets, want %d", len(got), len(sets))
	}
	for i := range sets {
		if len(sets[i]) == 0 && len(got[i]) == 0 {
			continue
		}
		if !reflect.DeepEqual(got[i], sets[i]) {
			t.Fatalf("set %d differs", i)
		}
	}
}

func TestRoundTripPair(t *testing.T) {
	roundTrip(t, [][]int32{
		{0, 4, 10, 20, 21, 26, 99},
		{0, 5, 6},
	})
}

func TestRoundTripKSet(t *testing.T) {
	sets := make([][]int32, 12)
	for i := range sets {
		sets[i] = make([]int32, 3*i)
		for j := range sets[i] {
			sets[i][j] = int32(j * (i + 1))
		}
	}
	roundTrip(t, sets)
}

func TestRoundTripEmptySets(t *testing.T) {
	roundTrip(t, [][]int32{{}, {}, {}, {}, {}})
}

func TestRoundTripLargeSets(t *testing.T) {
	mk := func(n int) []int32 {
		s := make([]int32, n)
		for i := range s {
			s[i] = int32(i)
		}
		return s
	}
	roundTrip(t, [][]int32{mk(1<<16 - 2), mk(1<<17 + 5), mk(1 << 14 / 3)})
}

func TestBadSetCount(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTo(&buf, [][]int32{{1}})
	var sc SetCountError
	if !errors.As(err, &sc) || uint32(sc) != 1 {
		t.Fatalf("got %v, want SetCountError(1)", err)
	}
}

func TestBadMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, [][]int32{{1}, {2}}); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	raw[0] ^= 0xff
	if _, err := ReadFrom(bytes.NewReader(raw)); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("got %v, want ErrBadMagic", err)
	}
}

func TestBadEndianness(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, [][]int32{{1}, {2}}); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	raw[3] ^= 1
	if _, err := ReadFrom(bytes.NewReader(raw)); !errors.Is(err, ErrBadEndianness) {
		t.Fatalf("got %v, want ErrBadEndianness", err)
	}
}

func TestTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, [][]int32{{1, 2, 3}, {2, 3}}); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	for _, n := range []int{0, 3, 8, len(raw) - 1} {
		if _, err := ReadFrom(bytes.NewReader(raw[:n])); err == nil {
			t.Fatalf("no error for %d-byte prefix", n)
		}
	}
}

func TestCompressedFiles(t *testing.T) {
	sets := [][]int32{
		{1, 2, 3, 500, 100000},
		{2, 500, 777},
	}
	dir := t.TempDir()
	for _, name := range []string{"plain.data", "packed.data.zst", "packed.data.s2"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, sets); err != nil {
			t.Fatal(err)
		}
		got, err := ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, sets) {
			t.Fatalf("%s: round trip failed", name)
		}
	}
}
