package model

// StmtKind enumerates the statement variants.
type StmtKind uint8

const (
	KindNoop StmtKind = iota
	KindAssign
	KindBorrow
	KindInit
	KindUse
	KindDrop
	KindStorageDead
	KindOutlives
)

func (k StmtKind) String() string {
	switch k {
	case KindNoop:
		return "noop"
	case KindAssign:
		return "assign"
	case KindBorrow:
		return "borrow"
	case KindInit:
		return "init"
	case KindUse:
		return "use"
	case KindDrop:
		return "drop"
	case KindStorageDead:
		return "storage-dead"
	case KindOutlives:
		return "outlives"
	default:
		return "unknown"
	}
}

// Stmt is the closed set of statement variants: *Assign, *Borrow, *Init,
// *Use, *Drop, *StorageDead, *Outlives and *Noop. Switches over it end in a
// panicking default so that a new variant fails loudly everywhere it is not
// handled yet.
type Stmt interface {
	Kind() StmtKind
	isStmt()
}

// Assign copies or moves Src into Dest.
type Assign struct {
	Dest Place
	Src  Place
	Move bool
}

// Borrow creates Loan: Dest = &'Region [mut] Src.
type Borrow struct {
	Dest   Place
	Region *Region
	Mut    bool
	Src    Place
	Loan   *Loan
}

// Init stores a fresh value built from Args into Dest.
type Init struct {
	Dest Place
	Args []Place
}

// Use reads every place.
type Use struct {
	Places []Place
}

// Drop runs the destructor of Place, which deallocates it.
type Drop struct {
	Place Place
}

// StorageDead frees the storage of Var.
type StorageDead struct {
	Var *Var
}

// Outlives requires Sup to contain Sub from the statement's point on.
type Outlives struct {
	Sup *Region
	Sub *Region
}

// Noop does nothing.
type Noop struct{}

func (*Assign) Kind() StmtKind      { return KindAssign }
func (*Borrow) Kind() StmtKind      { return KindBorrow }
func (*Init) Kind() StmtKind        { return KindInit }
func (*Use) Kind() StmtKind         { return KindUse }
func (*Drop) Kind() StmtKind        { return KindDrop }
func (*StorageDead) Kind() StmtKind { return KindStorageDead }
func (*Outlives) Kind() StmtKind    { return KindOutlives }
func (*Noop) Kind() StmtKind        { return KindNoop }

func (*Assign) isStmt()      {}
func (*Borrow) isStmt()      {}
func (*Init) isStmt()        {}
func (*Use) isStmt()         {}
func (*Drop) isStmt()        {}
func (*StorageDead) isStmt() {}
func (*Outlives) isStmt()    {}
func (*Noop) isStmt()        {}

// Place returns the whole variable as a place.
func (s *StorageDead) Place() Place {
	return Place{Var: s.Var, types: []Type{s.Var.Type}}
}

// Overwrites returns the place a statement stores a new value into.
func Overwrites(s Stmt) (Place, bool) {
	switch s := s.(type) {
	case *Assign:
		return s.Dest, true
	case *Borrow:
		return s.Dest, true
	case *Init:
		return s.Dest, true
	case *Use, *Drop, *StorageDead, *Outlives, *Noop:
		return Place{}, false
	default:
		panic("model: unknown statement")
	}
}

// Statement is a statement at a program point.
type Statement struct {
	Point Point
	Stmt  Stmt
	Text  string
	Line  int

	// Expect is the fragment of the diagnostic expected at this statement;
	// it is only meaningful when Expects is set.
	Expect  string
	Expects bool
}
