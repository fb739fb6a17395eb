// Package tracer walks place paths back toward their root variable.
//
// # Overview
//
// Three questions about places are answered by walking prefixes:
//
//	┌─────────────────────────────────────────────────────────────────────────┐
//	│  Question                        │  Used by                             │
//	├─────────────────────────────────────────────────────────────────────────┤
//	│  Which references does a borrow  │  region inference (reborrow          │
//	│  of P go through?                │  constraints)                        │
//	│  Does overwriting P end a loan?  │  loans in scope                      │
//	│  Does an access to P conflict    │  conflict checker                    │
//	│  with a loan of Q?               │                                      │
//	└─────────────────────────────────────────────────────────────────────────┘
//
// # Supporting Prefixes
//
// Borrowing `*(*list).next` borrows through the reference `list`. The new
// loan may only live as long as the reference it was reached through, so
// inference needs the references dereferenced along the path:
//
//	list: &'l mut List
//	p = &'x mut (*list).value   // supporting: list (&'l mut) -> 'l: 'x
//
// Walking stops after the first shared reference: data behind `&'r T` is
// valid for 'r no matter how the reference itself was reached.
package tracer

import (
	"github.com/nikomatsakis/borrowck/internal/model"
)

// =============================================================================
// Prefix Walks
// =============================================================================

// Reborrow is a reference dereferenced on a place path.
type Reborrow struct {
	// Base is the place holding the reference.
	Base model.Place
	Ref  *model.Ref
}

// Supporting returns the references dereferenced by the supporting prefixes
// of p, innermost first.
//
//	*(*a).b  with a: &'a mut S, (*a).b: &'b mut T
//	  -> [(*a).b (&'b mut), a (&'a mut)]
//	*(*a).b  with a: &'a mut S, (*a).b: &'b T
//	  -> [(*a).b (&'b)]              walk stops at the shared reference
func Supporting(p model.Place) []Reborrow {
	var out []Reborrow
	for n := len(p.Proj) - 1; n >= 0; n-- {
		ref, ok := p.DerefsRef(n)
		if !ok {
			// Fields and box dereferences keep walking toward the root.
			continue
		}
		out = append(out, Reborrow{Base: p.Prefix(n), Ref: ref})
		if !ref.Mut {
			break
		}
	}
	return out
}

// =============================================================================
// Access Relations
// =============================================================================

// Kills reports whether overwriting place w ends a loan of q. It does when
// w is a prefix of q: the loaned path no longer leads to the same storage.
func Kills(w, q model.Place) bool {
	return w.IsPrefixOf(q)
}

// WriteConflict reports whether overwriting, moving, dropping, freeing or
// exclusively borrowing w conflicts with a loan of q. Every overlapping
// loan conflicts, including one reached through a reference held in w:
//
//	p = &'a *r;  r = ...          // conflicts while 'a holds the write
//	p = &'a *r;  StorageDead(r)   // conflicts while 'a holds the free
func WriteConflict(w, q model.Place) bool {
	return model.Overlap(w, q)
}

// ReadConflict reports whether reading r conflicts with a loan of q.
// Only exclusive loans forbid reads.
func ReadConflict(r model.Place, q *model.Loan) bool {
	return q.Mut && model.Overlap(r, q.Place)
}
