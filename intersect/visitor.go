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

package intersect

import (
	"math/bits"

	"github.com/UNSW-database/simd-set-operations/bsr"
	"github.com/UNSW-database/simd-set-operations/simd"
)

// Visitor receives intersection results one element at a time.
// Kernels call it in strictly increasing element order.
type Visitor interface {
	Visit(x int32)
}

// Vector visitors additionally accept whole lane vectors paired with
// a bitmask of matching lanes. Only masked lanes count toward the
// result; masked lanes arrive in ascending lane order. Kernels ask
// for the narrowest capability they use, so a sink only implements
// the widths it supports.
type Vector4Visitor interface {
	Visitor
	VisitVector4(v simd.Vec4, mask uint64)
}

type Vector8Visitor interface {
	Visitor
	VisitVector8(v simd.Vec8, mask uint64)
}

type Vector16Visitor interface {
	Visitor
	VisitVector16(v simd.Vec16, mask uint64)
}

// BSRVisitor receives (base, state) entries. Emitted states are
// always nonzero.
type BSRVisitor interface {
	VisitBSR(base, state uint32)
}

type BSRVector4Visitor interface {
	BSRVisitor
	VisitBSRVector4(base, state simd.Vec4, mask uint64)
}

type BSRVector8Visitor interface {
	BSRVisitor
	VisitBSRVector8(base, state simd.Vec8, mask uint64)
}

type BSRVector16Visitor interface {
	BSRVisitor
	VisitBSRVector16(base, state simd.Vec16, mask uint64)
}

// Counter counts results without storing them. For BSR visits the
// count is the cardinality of the emitted states, so a Counter over a
// BSR kernel agrees with a Counter over the plain kernel.
type Counter struct {
	n int64
}

func (c *Counter) Count() int64 { return c.n }
func (c *Counter) Clear()       { c.n = 0 }

func (c *Counter) Visit(int32) { c.n++ }

func (c *Counter) VisitVector4(_ simd.Vec4, mask uint64) {
	c.n += int64(simd.PopCount(mask & 0xf))
}

func (c *Counter) VisitVector8(_ simd.Vec8, mask uint64) {
	c.n += int64(simd.PopCount(mask & 0xff))
}

func (c *Counter) VisitVector16(_ simd.Vec16, mask uint64) {
	c.n += int64(simd.PopCount(mask & 0xffff))
}

func (c *Counter) VisitBSR(_, state uint32) {
	c.n += int64(bits.OnesCount32(state))
}

func (c *Counter) VisitBSRVector4(_, state simd.Vec4, mask uint64) {
	masked := simd.Masked4(state, mask)
	for i := range masked {
		c.n += int64(bits.OnesCount32(uint32(masked[i])))
	}
}

func (c *Counter) VisitBSRVector8(_, state simd.Vec8, mask uint64) {
	masked := simd.Masked8(state, mask)
	for i := range masked {
		c.n += int64(bits.OnesCount32(uint32(masked[i])))
	}
}

func (c *Counter) VisitBSRVector16(_, state simd.Vec16, mask uint64) {
	masked := simd.Masked16(state, mask)
	for i := range masked {
		c.n += int64(bits.OnesCount32(uint32(masked[i])))
	}
}

// Appender accumulates results into a growable slice.
type Appender struct {
	Items []int32
}

// NewAppender returns an appender sized for an expected cardinality.
func NewAppender(capacity int) *Appender {
	return &Appender{Items: make([]int32, 0, capacity)}
}

func (a *Appender) Clear() { a.Items = a.Items[:0] }

func (a *Appender) Visit(x int32) {
	a.Items = append(a.Items, x)
}

func (a *Appender) VisitVector4(v simd.Vec4, mask uint64) {
	p, n := simd.Pack4(v, mask)
	a.Items = append(a.Items, p[:n]...)
}

func (a *Appender) VisitVector8(v simd.Vec8, mask uint64) {
	p, n := simd.Pack8(v, mask)
	a.Items = append(a.Items, p[:n]...)
}

func (a *Appender) VisitVector16(v simd.Vec16, mask uint64) {
	p, n := simd.Pack16(v, mask)
	a.Items = append(a.Items, p[:n]...)
}

// SliceWriter writes results into a fixed caller-provided buffer.
// Capacity is the caller's responsibility.
type SliceWriter struct {
	data []int32
	pos  int
}

func NewSliceWriter(dst []int32) *SliceWriter {
	return &SliceWriter{data: dst}
}

// Pos returns the number of elements written so far.
func (w *SliceWriter) Pos() int { return w.pos }

func (w *SliceWriter) Clear() { w.pos = 0 }

func (w *SliceWriter) Visit(x int32) {
	w.data[w.pos] = x
	w.pos++
}

func (w *SliceWriter) VisitVector4(v simd.Vec4, mask uint64) {
	p, n := simd.Pack4(v, mask)
	copy(w.data[w.pos:], p[:n])
	w.pos += n
}

func (w *SliceWriter) VisitVector8(v simd.Vec8, mask uint64) {
	p, n := simd.Pack8(v, mask)
	copy(w.data[w.pos:], p[:n])
	w.pos += n
}

func (w *SliceWriter) VisitVector16(v simd.Vec16, mask uint64) {
	p, n := simd.Pack16(v, mask)
	copy(w.data[w.pos:], p[:n])
	w.pos += n
}

// WriterSlack is the reserved tail required past the logical end of a
// LookupWriter or CompressWriter buffer: vector visits store a full
// register and advance the cursor by the popcount, so up to a full
// 16-lane vector lands beyond the last logical element.
const WriterSlack = 16

// LookupWriter stores results through the shuffle-dictionary path:
// matched lanes are compacted to the front with a precomputed
// permutation and the whole vector is stored unconditionally.
type LookupWriter struct {
	buf []int32
	n   int
}

// NewLookupWriter allocates a writer for up to capacity results. The
// backing buffer includes the WriterSlack tail.
func NewLookupWriter(capacity int) *LookupWriter {
	return &LookupWriter{buf: make([]int32, capacity+WriterSlack)}
}

func (w *LookupWriter) Items() []int32 { return w.buf[:w.n] }
func (w *LookupWriter) Clear()         { w.n = 0 }

func (w *LookupWriter) Visit(x int32) {
	w.buf[w.n] = x
	w.n++
}

func (w *LookupWriter) VisitVector4(v simd.Vec4, mask uint64) {
	w.n += simd.CompressStore4(w.buf[w.n:], v, mask)
}

func (w *LookupWriter) VisitVector8(v simd.Vec8, mask uint64) {
	w.n += simd.CompressStore8(w.buf[w.n:], v, mask)
}

func (w *LookupWriter) VisitVector16(v simd.Vec16, mask uint64) {
	// no 16-lane shuffle dictionary; two 8-lane steps
	w.n += simd.CompressStore8(w.buf[w.n:], simd.Vec8{v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7]}, mask&0xff)
	w.n += simd.CompressStore8(w.buf[w.n:], simd.Vec8{v[8], v[9], v[10], v[11], v[12], v[13], v[14], v[15]}, (mask>>8)&0xff)
}

// CompressWriter stores results through compress-store semantics:
// masked lanes pack contiguously, the store always covers a full
// vector. Requires the same reserved tail as LookupWriter.
type CompressWriter struct {
	buf []int32
	n   int
}

func NewCompressWriter(capacity int) *CompressWriter {
	return &CompressWriter{buf: make([]int32, capacity+WriterSlack)}
}

func (w *CompressWriter) Items() []int32 { return w.buf[:w.n] }
func (w *CompressWriter) Clear()         { w.n = 0 }

func (w *CompressWriter) Visit(x int32) {
	w.buf[w.n] = x
	w.n++
}

func (w *CompressWriter) VisitVector4(v simd.Vec4, mask uint64) {
	w.n += simd.CompressStore4(w.buf[w.n:], v, mask)
}

func (w *CompressWriter) VisitVector8(v simd.Vec8, mask uint64) {
	w.n += simd.CompressStore8(w.buf[w.n:], v, mask)
}

func (w *CompressWriter) VisitVector16(v simd.Vec16, mask uint64) {
	w.n += simd.CompressStore16(w.buf[w.n:], v, mask)
}

// BSRAppender accumulates BSR results into a bsr.Set.
type BSRAppender struct {
	Set bsr.Set
}

func NewBSRAppender(capacity int) *BSRAppender {
	a := &BSRAppender{}
	a.Set.Bases = make([]uint32, 0, capacity+WriterSlack)
	a.Set.States = make([]uint32, 0, capacity+WriterSlack)
	return a
}

func (a *BSRAppender) Clear() { a.Set.Clear() }

func (a *BSRAppender) VisitBSR(base, state uint32) {
	a.Set.Append(base, state)
}

func (a *BSRAppender) VisitBSRVector4(base, state simd.Vec4, mask uint64) {
	pb, n := simd.Pack4(base, mask)
	ps, _ := simd.Pack4(state, mask)
	for i := 0; i < n; i++ {
		a.Set.Append(uint32(pb[i]), uint32(ps[i]))
	}
}

func (a *BSRAppender) VisitBSRVector8(base, state simd.Vec8, mask uint64) {
	pb, n := simd.Pack8(base, mask)
	ps, _ := simd.Pack8(state, mask)
	for i := 0; i < n; i++ {
		a.Set.Append(uint32(pb[i]), uint32(ps[i]))
	}
}

func (a *BSRAppender) VisitBSRVector16(base, state simd.Vec16, mask uint64) {
	pb, n := simd.Pack16(base, mask)
	ps, _ := simd.Pack16(state, mask)
	for i := 0; i < n; i++ {
		a.Set.Append(uint32(pb[i]), uint32(ps[i]))
	}
}
