package infer

import (
	"github.com/nikomatsakis/borrowck/internal/liveness"
	"github.com/nikomatsakis/borrowck/internal/model"
)

// Export unexported types and functions for testing.

// Stepper runs the solver one worklist pop at a time.
type Stepper struct{ s *solver }

// NewStepper exports newSolver for external tests.
func NewStepper(prog *model.Program, live *liveness.Result) *Stepper {
	return &Stepper{s: newSolver(prog, live)}
}

func (st *Stepper) Done() bool          { return st.s.done() }
func (st *Stepper) Step() error         { return st.s.step() }
func (st *Stepper) Solution() *Solution { return st.s.sol }

// RemovePoint deletes pt from the value of r.
func (sol *Solution) RemovePoint(r *model.Region, pt model.Point) {
	sol.values[r.ID].Remove(sol.prog.PointIndex(pt))
}

// AddPoint adds pt to the value of r.
func (sol *Solution) AddPoint(r *model.Region, pt model.Point) {
	sol.values[r.ID].Add(sol.prog.PointIndex(pt))
}
