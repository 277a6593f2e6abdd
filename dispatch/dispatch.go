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

// Package dispatch resolves textual algorithm identifiers to runnable
// intersection closures. Identifiers compose as
// <family>[_<width>][_bsr][_br][_<visitor>], for example
// "shuffling_avx2_count" or "qfilter_bsr_lut"; FESIA names carry a
// trailing hash scale, as in "fesia8_sse_2" or "fesia_hash16_4".
// Kernels whose vector width the host cannot execute are absent and
// resolve as unknown.
package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/UNSW-database/simd-set-operations/intersect"
	"github.com/UNSW-database/simd-set-operations/simd"
)

var (
	// ErrUnknown is returned for identifiers that do not resolve on
	// this host.
	ErrUnknown = errors.New("unknown algorithm")
	// ErrKSetUnsupported is returned when more than two sets are
	// passed to an algorithm with no k-set form.
	ErrKSetUnsupported = errors.New("k-set intersection not supported")
)

// Algorithm is a resolved, runnable intersection. TwoSet and KSet
// return the result cardinality; either may be nil.
type Algorithm struct {
	Name   string
	TwoSet func(a, b []int32) int64
	KSet   func(sets [][]int32) int64
}

// Run dispatches on the number of sets.
func (alg *Algorithm) Run(sets [][]int32) (int64, error) {
	if len(sets) == 2 && alg.TwoSet != nil {
		return alg.TwoSet(sets[0], sets[1]), nil
	}
	if alg.KSet != nil {
		return alg.KSet(sets), nil
	}
	if len(sets) != 2 {
		return 0, fmt.Errorf("%s: %w", alg.Name, ErrKSetUnsupported)
	}
	return 0, fmt.Errorf("%s: two-set intersection not supported", alg.Name)
}

// visitorKind selects the output sink.
type visitorKind int

const (
	visitAppend visitorKind = iota // growable writer (default)
	visitCount                     // counter only
	visitLookup                    // lookup-shuffle writer
	visitCompress                  // compress-store writer
)

// descriptor is the parsed form of an identifier.
type descriptor struct {
	base    string // family plus width, minus all suffixes
	branch  bool
	bsrTwin bool
	visitor visitorKind
}

func parse(name string) descriptor {
	d := descriptor{base: name}
	for _, s := range []struct {
		suffix string
		apply  func(*descriptor)
	}{
		// outermost first: visitor, then branch style, then twin
		{"_count", func(d *descriptor) { d.visitor = visitCount }},
		{"_lut", func(d *descriptor) { d.visitor = visitLookup }},
		{"_comp", func(d *descriptor) { d.visitor = visitCompress }},
		{"_br", func(d *descriptor) { d.branch = true }},
		{"_bsr", func(d *descriptor) { d.bsrTwin = true }},
	} {
		if strings.HasSuffix(d.base, s.suffix) {
			d.base = d.base[:len(d.base)-len(s.suffix)]
			s.apply(&d)
		}
	}
	return d
}

// Resolve maps an identifier to an Algorithm, or ErrUnknown.
func Resolve(name string) (*Algorithm, error) {
	d := parse(name)

	if alg, err := resolveFesia(name, d); !errors.Is(err, ErrUnknown) {
		return alg, err
	}

	if d.bsrTwin {
		k, ok := bsrKernels[d.base]
		fn := pickFn(k.fn, k.brFn, d.branch)
		if !ok || fn == nil || !simd.HasWidth(k.width) {
			return nil, fmt.Errorf("%s: %w", name, ErrUnknown)
		}
		return &Algorithm{
			Name:   name,
			TwoSet: bsrRunner(fn, d.visitor),
		}, nil
	}

	if k, ok := twoSetKernels[d.base]; ok {
		fn := pickFn(k.fn, k.brFn, d.branch)
		if fn == nil || !simd.HasWidth(k.width) {
			return nil, fmt.Errorf("%s: %w", name, ErrUnknown)
		}
		alg := &Algorithm{
			Name:   name,
			TwoSet: twoSetRunner(fn, d.visitor),
		}
		// counting sinks have no buffer to fold through
		if d.visitor != visitCount {
			alg.KSet = svsRunner(fn, d.visitor)
		}
		return alg, nil
	}

	if k, ok := kSetKernels[d.base]; ok && !d.branch {
		return &Algorithm{
			Name: name,
			KSet: kSetRunner(k, d.visitor),
		}, nil
	}

	return nil, fmt.Errorf("%s: %w", name, ErrUnknown)
}

// pickFn selects the branch or branchless body; a branch request on a
// family without one yields nil.
func pickFn(fn, brFn any, branch bool) any {
	if !branch {
		return fn
	}
	return brFn
}

// Names returns every identifier base registered on this host,
// without visitor suffixes. Useful for drivers listing what they can
// time. FESIA identifiers, which carry a hash scale, are not listed.
func Names() []string {
	var names []string
	for name, k := range twoSetKernels {
		if simd.HasWidth(k.width) {
			names = append(names, name)
		}
	}
	for name, k := range bsrKernels {
		if simd.HasWidth(k.width) {
			names = append(names, name+"_bsr")
		}
	}
	for name := range kSetKernels {
		names = append(names, name)
	}
	return names
}

// sink unifies the concrete visitors: every writer in the intersect
// package accepts scalar and all vector widths.
type sink interface {
	intersect.Vector4Visitor
	intersect.Vector8Visitor
	intersect.Vector16Visitor
}

func newSink(kind visitorKind, capacity int) sink {
	switch kind {
	case visitCount:
		return &intersect.Counter{}
	case visitLookup:
		return intersect.NewLookupWriter(capacity)
	case visitCompress:
		return intersect.NewCompressWriter(capacity)
	}
	return intersect.NewAppender(capacity)
}

func sinkCount(s sink) int64 {
	switch s := s.(type) {
	case *intersect.Counter:
		return s.Count()
	case *intersect.LookupWriter:
		return int64(len(s.Items()))
	case *intersect.CompressWriter:
		return int64(len(s.Items()))
	case *intersect.Appender:
		return int64(len(s.Items))
	}
	return 0
}

func minLen(a, b []int32) int {
	if len(a) < len(b) {
		return len(a)
	}
	return len(b)
}
