// Package conflict detects statements that act on borrowed places.
//
// # Checking Model
//
// The checker is a single pass over all statements. For each statement it
// asks the loans-in-scope result which loans are live at that point and
// compares them with the statement's accesses:
//
//	┌──────────────────────────┐
//	│  statement at P          │
//	└───────────┬──────────────┘
//	            │ Accesses(stmt)   read / write, in effect order
//	            ▼
//	┌──────────────────────────┐
//	│  loans in scope at P     │  creation order
//	└───────────┬──────────────┘
//	            │ first (access, loan) pair that conflicts
//	            ▼
//	┌──────────────────────────┐
//	│  one Diagnostic for P    │
//	└──────────────────────────┘
//
// One diagnostic per statement keeps reports stable: the same statement is
// never reported twice for different loans.
package conflict

import (
	"sort"

	"github.com/nikomatsakis/borrowck/internal/model"
)

// Scope answers which loans are in scope; *loans.InScope implements it.
type Scope interface {
	At(pt model.Point) []*model.Loan
}

// Recorder receives every access/loan comparison. Only debug.Collector
// implements it.
type Recorder interface {
	RecordAccess(st *model.Statement, a Access, l *model.Loan, conflict bool)
}

// Checker checks one program.
type Checker struct {
	prog     *model.Program
	scope    Scope
	recorder Recorder
}

// New creates a new Checker.
func New(prog *model.Program, scope Scope) *Checker {
	return &Checker{prog: prog, scope: scope}
}

// WithRecorder attaches r to the checker and returns it.
func (c *Checker) WithRecorder(r Recorder) *Checker {
	c.recorder = r
	return c
}

// Check returns the conflicts of the program ordered by point.
func (c *Checker) Check() []Diagnostic {
	var out []Diagnostic
	for _, blk := range c.prog.Blocks() {
		for _, st := range blk.Statements {
			if d, ok := c.checkStatement(st); ok {
				out = append(out, d)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return c.prog.PointIndex(out[i].Point) < c.prog.PointIndex(out[j].Point)
	})
	return out
}

func (c *Checker) checkStatement(st *model.Statement) (Diagnostic, bool) {
	accesses := Accesses(st.Stmt)
	if len(accesses) == 0 {
		return Diagnostic{}, false
	}
	inScope := c.scope.At(st.Point)
	for _, a := range accesses {
		for _, l := range inScope {
			hit := a.conflicts(l)
			if c.recorder != nil {
				c.recorder.RecordAccess(st, a, l, hit)
			}
			if hit {
				return Diagnostic{
					Point:     st.Point,
					Statement: st,
					Place:     a.Place,
					Loan:      l,
					Kind:      a.Kind,
					Message:   message(c.prog, a.Kind, a.Place, l),
				}, true
			}
		}
	}
	return Diagnostic{}, false
}
