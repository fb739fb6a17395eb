// Package typeutil provides region queries over program types.
//
// Liveness turns "variable v is live" into "every region in v's type is
// live"; drop-liveness only keeps alive the regions a destructor may touch.
package typeutil

import (
	"github.com/nikomatsakis/borrowck/internal/model"
)

// =============================================================================
// Region Collection
// =============================================================================

// Regions returns every region t mentions, in order of first appearance.
func Regions(t model.Type) []*model.Region {
	var c collector
	c.walk(t)
	return c.regions
}

// DropRegions returns the regions that dropping a value of type t may
// access.
//
// References and scalars have no destructor. A struct's destructor may
// touch every slot except those marked may_dangle; a dangling type slot
// still contributes the regions its own drop touches:
//
//	Vec<&'a T>               -> 'a
//	Vec<#[may_dangle] &'a T> -> (nothing)
//	Box<Vec<&'a T>>          -> 'a
func DropRegions(t model.Type) []*model.Region {
	var c collector
	c.walkDrop(t)
	return c.regions
}

// Mentions reports whether t mentions r.
func Mentions(t model.Type, r *model.Region) bool {
	for _, m := range Regions(t) {
		if m == r {
			return true
		}
	}
	return false
}

type collector struct {
	regions []*model.Region
	seen    map[*model.Region]bool
}

func (c *collector) add(r *model.Region) {
	if c.seen == nil {
		c.seen = make(map[*model.Region]bool)
	}
	if !c.seen[r] {
		c.seen[r] = true
		c.regions = append(c.regions, r)
	}
}

func (c *collector) walk(t model.Type) {
	switch t := t.(type) {
	case *model.Scalar, *model.Param:
	case *model.Ref:
		c.add(t.Region)
		c.walk(t.Elem)
	case *model.Struct:
		for _, a := range t.Args {
			if a.Region != nil {
				c.add(a.Region)
			} else {
				c.walk(a.Type)
			}
		}
	default:
		panic("typeutil: unknown type")
	}
}

func (c *collector) walkDrop(t model.Type) {
	st, ok := t.(*model.Struct)
	if !ok {
		return
	}
	for i, a := range st.Args {
		dangle := st.Shape.Params[i].MayDangle
		switch {
		case a.Region != nil && !dangle:
			c.add(a.Region)
		case a.Region != nil:
		case !dangle:
			c.walk(a.Type)
		default:
			c.walkDrop(a.Type)
		}
	}
}
