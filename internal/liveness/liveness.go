// Package liveness computes which variables may still be read at each
// program point.
//
// # Two Kinds of Liveness
//
//	use-live   the current value may be read later. Every region in the
//	           variable's type must contain the point.
//	drop-live  the value is only dropped later. Only the regions its
//	           destructor may touch (typeutil.DropRegions) must contain it.
//
// # Dataflow
//
// Backward, per point:
//
//	LiveAfter(p)  = ∪ LiveBefore(s) for s in successors(p)
//	LiveBefore(p) = uses(p) ∪ (LiveAfter(p) − defs(p))
//
// Sets start empty and passes over all blocks repeat until a pass changes
// nothing. Blocks are visited in post-order, so an acyclic graph settles in
// one pass plus the confirming one; every loop adds passes.
package liveness

import (
	"github.com/pkg/errors"
	"golang.org/x/tools/container/intsets"

	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/typeutil"
)

// Result holds LiveBefore for every point, indexed by point index.
type Result struct {
	prog   *model.Program
	use    []intsets.Sparse
	drop   []intsets.Sparse
	passes int
}

// =============================================================================
// Fixpoint
// =============================================================================

// Compute runs the liveness fixpoint over prog.
func Compute(prog *model.Program) (*Result, error) {
	n := prog.NumPoints()
	r := &Result{
		prog: prog,
		use:  make([]intsets.Sparse, n),
		drop: make([]intsets.Sparse, n),
	}

	// Every changing pass adds at least one bit to some set.
	limit := 2*n*len(prog.Vars()) + 2
	order := prog.CFG().PostOrder()

	var use, drop intsets.Sparse
	for changed := true; changed; {
		r.passes++
		if r.passes > limit {
			return nil, errors.Wrapf(model.ErrNonTermination, "liveness: %d passes", r.passes)
		}
		changed = false
		for _, id := range order {
			blk := prog.Block(model.BlockID(id))

			use.Clear()
			drop.Clear()
			for _, succ := range blk.Succs {
				entry := prog.EntryIndex(succ)
				use.UnionWith(&r.use[entry])
				drop.UnionWith(&r.drop[entry])
			}

			idx := prog.EntryIndex(blk.ID) + len(blk.Statements)
			if r.store(idx, &use, &drop) {
				changed = true
			}
			for i := len(blk.Statements) - 1; i >= 0; i-- {
				idx--
				transfer(blk.Statements[i].Stmt, &use, &drop)
				if r.store(idx, &use, &drop) {
					changed = true
				}
			}
		}
	}
	return r, nil
}

// store merges the buffers into the sets of point idx. Computed sets only
// grow from pass to pass, so the union is the new value.
func (r *Result) store(idx int, use, drop *intsets.Sparse) bool {
	a := r.use[idx].UnionWith(use)
	b := r.drop[idx].UnionWith(drop)
	return a || b
}

// transfer turns LiveAfter into LiveBefore for one statement.
func transfer(s model.Stmt, use, drop *intsets.Sparse) {
	defs, uses := DefUse(s)
	for _, v := range defs {
		use.Remove(int(v))
		drop.Remove(int(v))
	}
	for _, v := range uses {
		use.Insert(int(v))
	}
	if d, ok := s.(*model.Drop); ok {
		drop.Insert(int(d.Place.Var.ID))
	}
}

// =============================================================================
// Queries
// =============================================================================

// Passes returns the number of passes the fixpoint took.
func (r *Result) Passes() int { return r.passes }

// IsLive reports whether v is use-live on entry to pt.
func (r *Result) IsLive(v model.VarID, pt model.Point) bool {
	return r.use[r.prog.PointIndex(pt)].Has(int(v))
}

// IsDropLive reports whether v is drop-live on entry to pt.
func (r *Result) IsDropLive(v model.VarID, pt model.Point) bool {
	return r.drop[r.prog.PointIndex(pt)].Has(int(v))
}

// LiveVars returns the use-live variables at the point with index idx.
func (r *Result) LiveVars(idx int) []model.VarID {
	return toVars(&r.use[idx])
}

// DropLiveVars returns the drop-live variables at the point with index idx.
func (r *Result) DropLiveVars(idx int) []model.VarID {
	return toVars(&r.drop[idx])
}

func toVars(s *intsets.Sparse) []model.VarID {
	ids := s.AppendTo(nil)
	out := make([]model.VarID, len(ids))
	for i, id := range ids {
		out[i] = model.VarID(id)
	}
	return out
}

// LiveOnEntry reports whether v is use-live on entry to block b.
func (r *Result) LiveOnEntry(v model.VarID, b model.BlockID) bool {
	return r.use[r.prog.EntryIndex(b)].Has(int(v))
}

// RegionLiveOnEntry reports whether region rg must contain the entry of
// block b because a live variable mentions it.
func (r *Result) RegionLiveOnEntry(rg *model.Region, b model.BlockID) bool {
	if rg.Universal {
		return true
	}
	entry := r.prog.EntryIndex(b)
	vars := r.prog.Vars()
	for _, v := range r.LiveVars(entry) {
		if typeutil.Mentions(vars[v].Type, rg) {
			return true
		}
	}
	for _, v := range r.DropLiveVars(entry) {
		for _, d := range typeutil.DropRegions(vars[v].Type) {
			if d == rg {
				return true
			}
		}
	}
	return false
}
