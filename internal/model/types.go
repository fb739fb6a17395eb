package model

import (
	"strings"
)

// =============================================================================
// Regions
// =============================================================================

// RegionID indexes Program.Regions.
type RegionID int

// Region is a lifetime region variable. Its value, computed by inference, is
// a set of program points.
//
// Shape declarations use placeholder regions for their region parameters;
// those never appear in the types of variables or places.
type Region struct {
	ID        RegionID
	Name      string
	Universal bool
	// Anonymous marks the '_ sentinel. It is universal and every assertion
	// about it holds.
	Anonymous bool

	slot int // region parameter index + 1 for shape placeholders
}

func (r *Region) String() string { return r.Name }

// IsParam reports whether r is a shape's region parameter placeholder.
func (r *Region) IsParam() bool { return r.slot > 0 }

const (
	// AnonymousRegion names the sentinel region whose value is every point.
	AnonymousRegion = "'_"
	// StaticRegion is implicitly universal.
	StaticRegion = "'static"
)

// =============================================================================
// Variance
// =============================================================================

// Variance describes how a shape parameter relates two instantiations.
type Variance uint8

const (
	Covariant Variance = iota
	Contravariant
	Invariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "co"
	case Contravariant:
		return "contra"
	case Invariant:
		return "in"
	default:
		return "unknown"
	}
}

// Invert swaps co- and contravariance.
func (v Variance) Invert() Variance {
	switch v {
	case Covariant:
		return Contravariant
	case Contravariant:
		return Covariant
	default:
		return v
	}
}

// Xform composes v with the variance of the position it is applied in.
func (v Variance) Xform(context Variance) Variance {
	switch context {
	case Covariant:
		return v
	case Contravariant:
		return v.Invert()
	default:
		return Invariant
	}
}

// =============================================================================
// Types
// =============================================================================

// Type is one of *Scalar, *Ref, *Struct or *Param.
type Type interface {
	String() string
	isType()
}

// Scalar is an opaque value type such as () or usize.
type Scalar struct {
	Name string
}

// Ref is a reference type &'r T or &'r mut T.
type Ref struct {
	Region *Region
	Mut    bool
	Elem   Type
}

// Struct is an instantiation of a shape.
type Struct struct {
	Shape *Shape
	Args  []Arg
}

// Param is a type parameter placeholder inside a shape declaration.
type Param struct {
	Index int
	Name  string
}

// Arg fills one shape parameter slot. Exactly one of Type and Region is set.
type Arg struct {
	Type   Type
	Region *Region
}

func (*Scalar) isType() {}
func (*Ref) isType()    {}
func (*Struct) isType() {}
func (*Param) isType()  {}

func (s *Scalar) String() string { return s.Name }

func (r *Ref) String() string {
	if r.Mut {
		return "&" + r.Region.Name + " mut " + r.Elem.String()
	}
	return "&" + r.Region.Name + " " + r.Elem.String()
}

func (s *Struct) String() string {
	if len(s.Args) == 0 {
		return s.Shape.Name
	}
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return s.Shape.Name + "<" + strings.Join(parts, ", ") + ">"
}

func (p *Param) String() string { return p.Name }

func (a Arg) String() string {
	if a.Region != nil {
		return a.Region.Name
	}
	return a.Type.String()
}

// Unit is the () scalar.
var Unit = &Scalar{Name: "()"}

// builtinScalars are the scalar names accepted without a declaration.
var builtinScalars = map[string]bool{
	"()": true, "bool": true, "char": true, "str": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "usize": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "isize": true,
	"f32": true, "f64": true,
}

// =============================================================================
// Shapes
// =============================================================================

// ParamKind tells whether a shape slot takes a type or a region.
type ParamKind uint8

const (
	TypeParam ParamKind = iota
	RegionParam
)

// ShapeParam is one generic slot of a shape.
type ShapeParam struct {
	Name      string
	Kind      ParamKind
	Variance  Variance
	MayDangle bool

	region *Region // placeholder for region slots
}

// Field is a named field with its generic type.
type Field struct {
	Name string
	Type Type
}

// Shape is a struct declaration. A Box shape is pointer-like: dereferencing
// it yields its first type argument.
type Shape struct {
	Name   string
	Params []ShapeParam
	Fields []Field
	Box    bool

	fieldIndex map[string]int
}

// Field returns the index of the named field.
func (s *Shape) Field(name string) (int, bool) {
	i, ok := s.fieldIndex[name]
	return i, ok
}

// =============================================================================
// Type operations
// =============================================================================

// Deref returns the type obtained by dereferencing t. viaRef is true for
// references and false for box shapes.
func Deref(t Type) (elem Type, viaRef bool, ok bool) {
	switch t := t.(type) {
	case *Ref:
		return t.Elem, true, true
	case *Struct:
		if t.Shape.Box && len(t.Args) > 0 && t.Args[0].Type != nil {
			return t.Args[0].Type, false, true
		}
	}
	return nil, false, false
}

// Subst replaces the placeholders of a shape field type by args.
func Subst(t Type, args []Arg) Type {
	switch t := t.(type) {
	case *Scalar:
		return t
	case *Param:
		return args[t.Index].Type
	case *Ref:
		return &Ref{Region: substRegion(t.Region, args), Mut: t.Mut, Elem: Subst(t.Elem, args)}
	case *Struct:
		out := make([]Arg, len(t.Args))
		for i, a := range t.Args {
			if a.Region != nil {
				out[i] = Arg{Region: substRegion(a.Region, args)}
			} else {
				out[i] = Arg{Type: Subst(a.Type, args)}
			}
		}
		return &Struct{Shape: t.Shape, Args: out}
	default:
		panic("model: unknown type")
	}
}

func substRegion(r *Region, args []Arg) *Region {
	if r.slot > 0 {
		return args[r.slot-1].Region
	}
	return r
}

// SameShape reports whether a and b are equal once regions are erased.
func SameShape(a, b Type) bool {
	switch a := a.(type) {
	case *Scalar:
		b, ok := b.(*Scalar)
		return ok && a.Name == b.Name
	case *Param:
		b, ok := b.(*Param)
		return ok && a.Index == b.Index
	case *Ref:
		b, ok := b.(*Ref)
		return ok && a.Mut == b.Mut && SameShape(a.Elem, b.Elem)
	case *Struct:
		b, ok := b.(*Struct)
		if !ok || a.Shape != b.Shape || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if (a.Args[i].Region == nil) != (b.Args[i].Region == nil) {
				return false
			}
			if a.Args[i].Type != nil && !SameShape(a.Args[i].Type, b.Args[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
