package infer

import (
	"fmt"

	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/tracer"
)

// Constraint is an outlives requirement: from Point on, Sup must contain
// every point of Sub reachable without leaving Sub.
type Constraint struct {
	Sup   *model.Region
	Sub   *model.Region
	Point model.Point
	// Origin is the statement that generated the constraint.
	Origin *model.Statement
}

// Format renders the constraint as `'a: 'b @ B/1`.
func (c Constraint) Format(prog *model.Program) string {
	return fmt.Sprintf("%s: %s @ %s", c.Sup.Name, c.Sub.Name, prog.FormatPoint(c.Point))
}

// =============================================================================
// Generation
// =============================================================================

// Generate returns the outlives constraints of prog in statement order.
//
//	┌───────────────────────────┬──────────────────────────────────────────┐
//	│  Statement at P           │  Constraints                             │
//	├───────────────────────────┼──────────────────────────────────────────┤
//	│  p = &'x q                │  &'x typeof(q) <: typeof(p)   @ succ(P)  │
//	│                           │  'r: 'x for each reference &'r on the    │
//	│                           │  supporting prefixes of q     @ succ(P)  │
//	│  a = b, a = move b        │  typeof(b) <: typeof(a)       @ succ(P)  │
//	│  'a: 'b                   │  'a: 'b                       @ P        │
//	└───────────────────────────┴──────────────────────────────────────────┘
//
// Subtyping is decomposed structurally: &'a T <: &'b U gives 'a: 'b, the
// referent of &mut is invariant, and shape slots follow their declared
// variance.
func Generate(prog *model.Program) []Constraint {
	g := &generator{seen: make(map[constraintKey]bool)}
	for _, blk := range prog.Blocks() {
		for _, st := range blk.Statements {
			g.origin = st
			g.point = model.Point{Block: blk.ID, Index: st.Point.Index + 1}

			switch s := st.Stmt.(type) {
			case *model.Borrow:
				ref := &model.Ref{Region: s.Region, Mut: s.Mut, Elem: s.Src.Type()}
				g.relate(model.Covariant, ref, s.Dest.Type())
				for _, rb := range tracer.Supporting(s.Src) {
					g.add(rb.Ref.Region, s.Region)
				}
			case *model.Assign:
				g.relate(model.Covariant, s.Src.Type(), s.Dest.Type())
			case *model.Outlives:
				g.point = st.Point
				g.add(s.Sup, s.Sub)
			case *model.Init, *model.Use, *model.Drop, *model.StorageDead, *model.Noop:
			default:
				panic("infer: unknown statement")
			}
		}
	}
	return g.out
}

type constraintKey struct {
	sup, sub model.RegionID
	point    model.Point
}

type generator struct {
	out    []Constraint
	seen   map[constraintKey]bool
	origin *model.Statement
	point  model.Point
}

func (g *generator) add(sup, sub *model.Region) {
	if sup == sub {
		return
	}
	key := constraintKey{sup: sup.ID, sub: sub.ID, point: g.point}
	if g.seen[key] {
		return
	}
	g.seen[key] = true
	g.out = append(g.out, Constraint{Sup: sup, Sub: sub, Point: g.point, Origin: g.origin})
}

// relate records that a relates to b under variance v; covariant means
// a <: b.
func (g *generator) relate(v model.Variance, a, b model.Type) {
	switch a := a.(type) {
	case *model.Scalar, *model.Param:
	case *model.Ref:
		b := b.(*model.Ref)
		g.relateRegions(v, a.Region, b.Region)
		elem := model.Covariant
		if a.Mut {
			elem = model.Invariant
		}
		g.relate(v.Xform(elem), a.Elem, b.Elem)
	case *model.Struct:
		b := b.(*model.Struct)
		for i, param := range a.Shape.Params {
			vi := v.Xform(param.Variance)
			if a.Args[i].Region != nil {
				g.relateRegions(vi, a.Args[i].Region, b.Args[i].Region)
			} else {
				g.relate(vi, a.Args[i].Type, b.Args[i].Type)
			}
		}
	default:
		panic("infer: unknown type")
	}
}

// relateRegions records the constraints for a region pair: a subtype's
// region outlives the supertype's.
func (g *generator) relateRegions(v model.Variance, a, b *model.Region) {
	switch v {
	case model.Covariant:
		g.add(a, b)
	case model.Contravariant:
		g.add(b, a)
	default:
		g.add(a, b)
		g.add(b, a)
	}
}
