// Package loans computes which loans are in scope at each program point.
//
// # Scope Rules
//
// A loan enters scope right after the borrow that creates it and leaves
// scope at the first point where either
//
//   - its region does not contain the point (nothing can use the reference
//     any more), or
//   - a prefix of the borrowed path is overwritten (the path now leads to
//     different storage).
//
// Forward dataflow, per point P:
//
//	in(P)  = ∪ out(pred) for pred in predecessors(P)
//	         minus loans whose region lacks P        <- recorded as InScope(P)
//	out(P) = in(P) + loan created at P
//	         minus loans killed by P's overwrite
//
// Loans in scope at P are exactly the ones the statement at P may violate.
package loans

import (
	"github.com/pkg/errors"
	"golang.org/x/tools/container/intsets"

	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/tracer"
)

// Regions answers region membership; *infer.Solution implements it.
type Regions interface {
	Contains(r *model.Region, pt model.Point) bool
}

// InScope holds the in-scope loans of every point, indexed by point index.
type InScope struct {
	prog   *model.Program
	in     []intsets.Sparse
	passes int
}

// Compute runs the loans-in-scope dataflow.
func Compute(prog *model.Program, regions Regions) (*InScope, error) {
	s := &InScope{prog: prog, in: make([]intsets.Sparse, prog.NumPoints())}
	exits := make([]intsets.Sparse, len(prog.Blocks()))
	order := prog.CFG().ReversePostOrder()
	loans := prog.Loans()

	// Exit sets only grow; each changing pass adds a loan to one of them.
	limit := len(loans)*len(exits) + 2

	var buf intsets.Sparse
	for changed := true; changed; {
		s.passes++
		if s.passes > limit {
			return nil, errors.Wrapf(model.ErrNonTermination, "loans in scope: %d passes", s.passes)
		}
		changed = false
		for _, id := range order {
			blk := prog.Block(model.BlockID(id))
			buf.Clear()
			for _, pred := range blk.Preds {
				buf.UnionWith(&exits[pred])
			}

			for i := 0; i <= len(blk.Statements); i++ {
				pt := model.Point{Block: blk.ID, Index: i}
				s.killOutOfRegion(&buf, pt, regions)
				s.in[prog.PointIndex(pt)].Copy(&buf)
				if i == len(blk.Statements) {
					break
				}
				stmt := blk.Statements[i].Stmt
				if b, ok := stmt.(*model.Borrow); ok {
					buf.Insert(int(b.Loan.ID))
				}
				if dest, ok := model.Overwrites(stmt); ok {
					killOverwritten(&buf, dest, loans)
				}
			}

			if exits[id].UnionWith(&buf) {
				changed = true
			}
		}
	}
	return s, nil
}

func (s *InScope) killOutOfRegion(buf *intsets.Sparse, pt model.Point, regions Regions) {
	loans := s.prog.Loans()
	for _, id := range buf.AppendTo(nil) {
		if !regions.Contains(loans[id].Region, pt) {
			buf.Remove(id)
		}
	}
}

func killOverwritten(buf *intsets.Sparse, dest model.Place, loans []*model.Loan) {
	for _, id := range buf.AppendTo(nil) {
		if tracer.Kills(dest, loans[id].Place) {
			buf.Remove(id)
		}
	}
}

// At returns the loans in scope on entry to pt, in creation order.
func (s *InScope) At(pt model.Point) []*model.Loan {
	loans := s.prog.Loans()
	ids := s.in[s.prog.PointIndex(pt)].AppendTo(nil)
	out := make([]*model.Loan, len(ids))
	for i, id := range ids {
		out[i] = loans[id]
	}
	return out
}

// Has reports whether loan l is in scope on entry to pt.
func (s *InScope) Has(l *model.Loan, pt model.Point) bool {
	return s.in[s.prog.PointIndex(pt)].Has(int(l.ID))
}

// Passes returns the number of passes the dataflow took.
func (s *InScope) Passes() int { return s.passes }
