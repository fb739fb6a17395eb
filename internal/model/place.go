package model

// ProjKind is the kind of one place projection.
type ProjKind uint8

const (
	ProjField ProjKind = iota
	ProjDeref
)

// Projection is one step of a place path.
type Projection struct {
	Kind  ProjKind
	Field string // set for ProjField
}

// DerefProj is the dereference projection.
var DerefProj = Projection{Kind: ProjDeref}

// FieldProj returns the projection of field name.
func FieldProj(name string) Projection { return Projection{Kind: ProjField, Field: name} }

// Place is a variable plus a projection path. Places are built by the
// program builder and carry the resolved type of every prefix.
type Place struct {
	Var  *Var
	Proj []Projection

	types []Type // types[i] is the type of the prefix with i projections
}

// Type returns the type of the whole place.
func (p Place) Type() Type { return p.types[len(p.types)-1] }

// TypeAt returns the type of the prefix with n projections.
func (p Place) TypeAt(n int) Type { return p.types[n] }

// Prefix returns the prefix with n projections.
func (p Place) Prefix(n int) Place {
	return Place{Var: p.Var, Proj: p.Proj[:n:n], types: p.types[: n+1 : n+1]}
}

// IsRoot reports whether the place is a bare variable.
func (p Place) IsRoot() bool { return len(p.Proj) == 0 }

// HasDeref reports whether the path dereferences anything.
func (p Place) HasDeref() bool {
	for _, pr := range p.Proj {
		if pr.Kind == ProjDeref {
			return true
		}
	}
	return false
}

// DerefsRef reports whether projection n is a dereference of a reference,
// returning the reference type.
func (p Place) DerefsRef(n int) (*Ref, bool) {
	if p.Proj[n].Kind != ProjDeref {
		return nil, false
	}
	ref, ok := p.types[n].(*Ref)
	return ref, ok
}

// String renders the place the way it is written: `(*list).next`.
func (p Place) String() string {
	s := p.Var.Name
	derefLast := false
	for _, pr := range p.Proj {
		switch pr.Kind {
		case ProjDeref:
			s = "*" + s
			derefLast = true
		case ProjField:
			if derefLast {
				s = "(" + s + ")"
			}
			s += "." + pr.Field
			derefLast = false
		}
	}
	return s
}

// Equal reports whether both places denote the same path.
func (p Place) Equal(q Place) bool {
	return p.Var == q.Var && len(p.Proj) == len(q.Proj) && projPrefix(p.Proj, q.Proj)
}

// IsPrefixOf reports whether p is a prefix of q (p == q included).
func (p Place) IsPrefixOf(q Place) bool {
	return p.Var == q.Var && len(p.Proj) <= len(q.Proj) && projPrefix(p.Proj, q.Proj)
}

func projPrefix(short, long []Projection) bool {
	for i := range short {
		if short[i] != long[i] {
			return false
		}
	}
	return true
}

func prefixRelated(a, b []Projection) bool {
	if len(a) <= len(b) {
		return projPrefix(a, b)
	}
	return projPrefix(b, a)
}

// Overlap reports whether two places may denote overlapping storage.
//
// Places with the same root overlap when one path is a prefix of the other.
// Places also overlap when both dereference a reference of the same region
// and the paths after those dereferences are prefix related:
//
//	(*p).f   with p: &'a T
//	(*q).f.g with q: &'a T   -> overlap through 'a
//
// Overlap is symmetric and reflexive.
func Overlap(a, b Place) bool {
	if a.Var == b.Var && prefixRelated(a.Proj, b.Proj) {
		return true
	}
	for i := range a.Proj {
		ra, ok := a.DerefsRef(i)
		if !ok {
			continue
		}
		for j := range b.Proj {
			rb, ok := b.DerefsRef(j)
			if !ok || ra.Region != rb.Region {
				continue
			}
			if prefixRelated(a.Proj[i+1:], b.Proj[j+1:]) {
				return true
			}
		}
	}
	return false
}
