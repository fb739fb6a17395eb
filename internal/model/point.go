package model

import (
	"strconv"

	"golang.org/x/tools/container/intsets"
)

// Point is a program point. Index ranges over 0..len(Statements); the last
// value is the block's terminator point.
type Point struct {
	Block BlockID
	Index int
}

// PointSet is a set of dense point indices (see Program.PointIndex).
// The zero value is an empty set. A PointSet must not be copied after use.
type PointSet struct {
	bits intsets.Sparse
}

// Add inserts i and reports whether the set grew.
func (s *PointSet) Add(i int) bool { return s.bits.Insert(i) }

// Has reports whether i is in the set.
func (s *PointSet) Has(i int) bool { return s.bits.Has(i) }

// Remove deletes i and reports whether it was present.
func (s *PointSet) Remove(i int) bool { return s.bits.Remove(i) }

// Len returns the number of points.
func (s *PointSet) Len() int { return s.bits.Len() }

// UnionWith adds every point of o and reports whether the set grew.
func (s *PointSet) UnionWith(o *PointSet) bool { return s.bits.UnionWith(&o.bits) }

// Copy makes s equal to o.
func (s *PointSet) Copy(o *PointSet) { s.bits.Copy(&o.bits) }

// Equals reports whether both sets hold the same points.
func (s *PointSet) Equals(o *PointSet) bool { return s.bits.Equals(&o.bits) }

// Indices returns the points in increasing order.
func (s *PointSet) Indices() []int { return s.bits.AppendTo(nil) }

// FormatPoint renders pt as BLOCK/index.
func (p *Program) FormatPoint(pt Point) string {
	return p.blocks[pt.Block].Name + "/" + strconv.Itoa(pt.Index)
}

// FormatPointSet renders a point set as {A/0, A/1}.
func (p *Program) FormatPointSet(s *PointSet) string {
	buf := []byte{'{'}
	for i, idx := range s.Indices() {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, p.FormatPoint(p.points[idx])...)
	}
	return string(append(buf, '}'))
}
