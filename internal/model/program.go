package model

import (
	"github.com/nikomatsakis/borrowck/internal/cfg"
)

// BlockID indexes Program.Blocks.
type BlockID int

// VarID indexes Program.Vars.
type VarID int

// LoanID indexes Program.Loans; it is also the loan creation order.
type LoanID int

// Block is a basic block.
type Block struct {
	ID         BlockID
	Name       string
	Statements []*Statement
	Succs      []BlockID
	Preds      []BlockID
}

// Var is a local variable.
type Var struct {
	ID   VarID
	Name string
	Type Type
}

// Loan is the result of one borrow statement.
type Loan struct {
	ID     LoanID
	Point  Point
	Place  Place
	Mut    bool
	Region *Region
}

// Assertion is a resolved membership or liveness assertion.
type Assertion struct {
	Kind   AssertKind
	Region *Region
	Var    *Var
	Block  *Block
	Point  Point
	Points []Point
	Text   string
	Line   int
}

// Program is one immutable, fully resolved function body.
type Program struct {
	Name string

	shapes     []*Shape
	vars       []*Var
	regions    []*Region
	blocks     []*Block
	loans      []*Loan
	assertions []*Assertion

	varByName    map[string]*Var
	regionByName map[string]*Region
	blockByName  map[string]*Block

	offsets []int   // first point index of each block
	points  []Point // point of each index
	succs   [][]int // point index successors
	preds   [][]int // point index predecessors

	graph *cfg.Analyzer
}

// Blocks returns the blocks in declaration order.
func (p *Program) Blocks() []*Block { return p.blocks }

// Block returns the block with the given id.
func (p *Program) Block(id BlockID) *Block { return p.blocks[id] }

// BlockByName looks a block up by name.
func (p *Program) BlockByName(name string) (*Block, bool) {
	b, ok := p.blockByName[name]
	return b, ok
}

// Start returns the start block.
func (p *Program) Start() *Block { return p.blocks[0] }

// Shapes returns the declared shapes.
func (p *Program) Shapes() []*Shape { return p.shapes }

// Vars returns the variables in declaration order.
func (p *Program) Vars() []*Var { return p.vars }

// Var looks a variable up by name.
func (p *Program) Var(name string) (*Var, bool) {
	v, ok := p.varByName[name]
	return v, ok
}

// Regions returns every region, declared or implicit, in order of first
// mention.
func (p *Program) Regions() []*Region { return p.regions }

// Region looks a region up by name.
func (p *Program) Region(name string) (*Region, bool) {
	r, ok := p.regionByName[name]
	return r, ok
}

// Loans returns the loans in creation order.
func (p *Program) Loans() []*Loan { return p.loans }

// Assertions returns the membership and liveness assertions.
func (p *Program) Assertions() []*Assertion { return p.assertions }

// CFG returns the block graph analyzer.
func (p *Program) CFG() *cfg.Analyzer { return p.graph }

// NumPoints returns the number of program points.
func (p *Program) NumPoints() int { return len(p.points) }

// PointIndex returns the dense index of pt.
func (p *Program) PointIndex(pt Point) int { return p.offsets[pt.Block] + pt.Index }

// PointAt is the inverse of PointIndex.
func (p *Program) PointAt(i int) Point { return p.points[i] }

// EntryIndex returns the index of the first point of b.
func (p *Program) EntryIndex(b BlockID) int { return p.offsets[b] }

// Statement returns the statement at pt, or nil at a terminator point.
func (p *Program) Statement(pt Point) *Statement {
	b := p.blocks[pt.Block]
	if pt.Index < len(b.Statements) {
		return b.Statements[pt.Index]
	}
	return nil
}

// SuccessorIndices returns the successors of the point with index i.
func (p *Program) SuccessorIndices(i int) []int { return p.succs[i] }

// PredecessorIndices returns the predecessors of the point with index i.
func (p *Program) PredecessorIndices(i int) []int { return p.preds[i] }

// Successors returns the successor points of pt.
func (p *Program) Successors(pt Point) []Point {
	return p.toPoints(p.succs[p.PointIndex(pt)])
}

// Predecessors returns the predecessor points of pt.
func (p *Program) Predecessors(pt Point) []Point {
	return p.toPoints(p.preds[p.PointIndex(pt)])
}

func (p *Program) toPoints(idx []int) []Point {
	out := make([]Point, len(idx))
	for i, n := range idx {
		out[i] = p.points[n]
	}
	return out
}

// blockGraph adapts a block list to cfg.Graph.
type blockGraph []*Block

func (g blockGraph) NumNodes() int { return len(g) }
func (g blockGraph) Start() int    { return 0 }

func (g blockGraph) Successors(n int) []int {
	succs := make([]int, len(g[n].Succs))
	for i, s := range g[n].Succs {
		succs[i] = int(s)
	}
	return succs
}
