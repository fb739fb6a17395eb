package model

// Source is the syntactic form of a program as produced by a parser. Names
// are not resolved yet; Build resolves them into a Program.
type Source struct {
	Name       string
	Structs    []StructDecl
	Regions    []RegionDecl
	Vars       []VarDecl
	Blocks     []BlockDecl
	Assertions []AssertionDecl
}

// StructDecl declares a shape.
type StructDecl struct {
	Name   string
	Box    bool
	Params []ParamDecl
	Fields []FieldDecl
	Line   int
}

// ParamDecl declares a shape slot; region slots are named with a leading
// quote ('a).
type ParamDecl struct {
	Name      string
	Variance  Variance
	MayDangle bool
}

// FieldDecl declares a shape field.
type FieldDecl struct {
	Name string
	Type TypeExpr
}

// RegionDecl declares a region up front.
type RegionDecl struct {
	Name      string
	Universal bool
}

// VarDecl declares a local variable.
type VarDecl struct {
	Name string
	Type TypeExpr
	Line int
}

// BlockDecl declares a basic block and its successors.
type BlockDecl struct {
	Name       string
	Statements []StmtDecl
	Goto       []string
	Line       int
}

// TypeExprKind discriminates TypeExpr.
type TypeExprKind uint8

const (
	TypeExprNamed TypeExprKind = iota
	TypeExprUnit
	TypeExprRef
	TypeExprRegion // only valid as a struct argument
)

// TypeExpr is an unresolved type.
type TypeExpr struct {
	Kind   TypeExprKind
	Name   string     // TypeExprNamed
	Region string     // TypeExprRef, TypeExprRegion
	Mut    bool       // TypeExprRef
	Elem   *TypeExpr  // TypeExprRef
	Args   []TypeExpr // TypeExprNamed
}

// PlaceExpr is an unresolved place. Field projections through references
// and boxes may omit the dereference.
type PlaceExpr struct {
	Var  string
	Proj []Projection
}

// StmtDecl is an unresolved statement. Which fields are meaningful depends
// on Kind.
type StmtDecl struct {
	Kind   StmtKind
	Dest   PlaceExpr   // assign, borrow, init
	Src    PlaceExpr   // assign, borrow, drop
	Args   []PlaceExpr // init, use
	Region string      // borrow
	Mut    bool        // borrow
	Move   bool        // assign
	Sup    string      // outlives
	Sub    string      // outlives
	Var    string      // storage-dead

	Text    string
	Line    int
	Expect  string
	Expects bool
}

// AssertKind enumerates assertion forms.
type AssertKind uint8

const (
	AssertRegionIn AssertKind = iota
	AssertRegionNotIn
	AssertRegionEq
	AssertVarLive
	AssertVarNotLive
	AssertRegionLive
	AssertRegionNotLive
)

// PointExpr is an unresolved point BLOCK/index.
type PointExpr struct {
	Block string
	Index int
}

// AssertionDecl is an unresolved assertion.
type AssertionDecl struct {
	Kind   AssertKind
	Region string
	Var    string
	Block  string      // liveness assertions
	Point  PointExpr   // membership assertions
	Points []PointExpr // AssertRegionEq
	Text   string
	Line   int
}
