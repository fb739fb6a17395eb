// Package infer computes the value of every region: the set of program
// points at which the region must be valid.
//
// # Constraint Families
//
//	┌────────────────────────────────────────────────────────────────────────┐
//	│  Liveness   v live at P, v: T, 'r in T        =>  P in 'r              │
//	│             v drop-live at P, 'r in drop(T)   =>  P in 'r              │
//	│  Outlives   'a: 'b @ P                        =>  every point of 'b    │
//	│                                                   reachable from P     │
//	│                                                   inside 'b is in 'a   │
//	│  Universal  'static, '_ and declared universal regions hold all points │
//	└────────────────────────────────────────────────────────────────────────┘
//
// # Solving
//
// Liveness seeds the values once. Outlives constraints are then solved by a
// worklist over regions: popping 'b re-runs every constraint whose Sub is
// 'b; a constraint whose Sup grew queues Sup in turn.
//
//	'a: 'b @ P
//
//	  P ──▶ P+1 ──▶ P+2 ──▶ ...      walk successors from P while the point
//	  ●      ●      ○                is in 'b, adding each one to 'a
//	  └──────┘
//	  copied into 'a
//
// Values only grow and are bounded by the point count, so the worklist
// drains. The result is the least solution: every point is forced by a
// seed or by a chain of constraints.
package infer

import (
	"github.com/pkg/errors"
	"golang.org/x/tools/container/intsets"

	"github.com/nikomatsakis/borrowck/internal/liveness"
	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/typeutil"
)

// Solution holds the value of every region, indexed by region id.
type Solution struct {
	prog        *model.Program
	live        *liveness.Result
	values      []model.PointSet
	constraints []Constraint
	rounds      int
}

// =============================================================================
// Solver
// =============================================================================

// Solve seeds the regions of prog from live and solves the outlives
// constraints.
func Solve(prog *model.Program, live *liveness.Result) (*Solution, error) {
	s := newSolver(prog, live)
	for !s.done() {
		if err := s.step(); err != nil {
			return nil, err
		}
	}
	return s.sol, nil
}

type solver struct {
	sol     *Solution
	bySub   [][]int // constraint indices per Sub region id
	queue   []model.RegionID
	queued  []bool
	maxPops int
}

func newSolver(prog *model.Program, live *liveness.Result) *solver {
	regions := prog.Regions()
	sol := &Solution{
		prog:        prog,
		live:        live,
		values:      make([]model.PointSet, len(regions)),
		constraints: Generate(prog),
	}
	sol.seed()

	s := &solver{
		sol:    sol,
		bySub:  make([][]int, len(regions)),
		queued: make([]bool, len(regions)),
		// Each region is queued once up front and once per growth.
		maxPops: len(regions) * (prog.NumPoints() + 2),
	}
	for i, c := range sol.constraints {
		s.bySub[c.Sub.ID] = append(s.bySub[c.Sub.ID], i)
	}
	for _, r := range regions {
		s.push(r.ID)
	}
	return s
}

func (s *solver) push(r model.RegionID) {
	if !s.queued[r] {
		s.queued[r] = true
		s.queue = append(s.queue, r)
	}
}

func (s *solver) done() bool { return len(s.queue) == 0 }

// step pops one region and re-runs the constraints it is the Sub of.
func (s *solver) step() error {
	r := s.queue[0]
	s.queue = s.queue[1:]
	s.queued[r] = false

	s.sol.rounds++
	if s.sol.rounds > s.maxPops {
		return errors.Wrapf(model.ErrNonTermination, "region inference: %d rounds", s.sol.rounds)
	}
	for _, ci := range s.bySub[r] {
		c := s.sol.constraints[ci]
		if s.sol.propagate(c) {
			s.push(c.Sup.ID)
		}
	}
	return nil
}

// seed applies the universal and liveness constraints.
func (sol *Solution) seed() {
	prog := sol.prog
	n := prog.NumPoints()
	for _, r := range prog.Regions() {
		if r.Universal {
			for i := 0; i < n; i++ {
				sol.values[r.ID].Add(i)
			}
		}
	}

	useRegions, dropRegions := varRegions(prog)
	for i := 0; i < n; i++ {
		for _, v := range sol.live.LiveVars(i) {
			for _, r := range useRegions[v] {
				sol.values[r.ID].Add(i)
			}
		}
		for _, v := range sol.live.DropLiveVars(i) {
			for _, r := range dropRegions[v] {
				sol.values[r.ID].Add(i)
			}
		}
	}
}

func varRegions(prog *model.Program) (use, drop [][]*model.Region) {
	vars := prog.Vars()
	use = make([][]*model.Region, len(vars))
	drop = make([][]*model.Region, len(vars))
	for i, v := range vars {
		use[i] = typeutil.Regions(v.Type)
		drop[i] = typeutil.DropRegions(v.Type)
	}
	return use, drop
}

// propagate copies into Sup the points of Sub reachable from the constraint
// point without leaving Sub. It reports whether Sup grew.
func (sol *Solution) propagate(c Constraint) bool {
	sub := &sol.values[c.Sub.ID]
	sup := &sol.values[c.Sup.ID]

	var visited intsets.Sparse
	stack := []int{sol.prog.PointIndex(c.Point)}
	changed := false
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !sub.Has(p) || !visited.Insert(p) {
			continue
		}
		if sup.Add(p) {
			changed = true
		}
		stack = append(stack, sol.prog.SuccessorIndices(p)...)
	}
	return changed
}

// =============================================================================
// Queries
// =============================================================================

// Contains reports whether the value of r contains pt. The anonymous region
// contains every point.
func (sol *Solution) Contains(r *model.Region, pt model.Point) bool {
	return sol.values[r.ID].Has(sol.prog.PointIndex(pt))
}

// Set returns the value of r. The caller must not modify it.
func (sol *Solution) Set(r *model.Region) *model.PointSet {
	return &sol.values[r.ID]
}

// Points returns the value of r in point order.
func (sol *Solution) Points(r *model.Region) []model.Point {
	idx := sol.values[r.ID].Indices()
	out := make([]model.Point, len(idx))
	for i, n := range idx {
		out[i] = sol.prog.PointAt(n)
	}
	return out
}

// Format renders the value of r as {A/0, A/1}.
func (sol *Solution) Format(r *model.Region) string {
	return sol.prog.FormatPointSet(&sol.values[r.ID])
}

// Constraints returns the outlives constraints that were solved.
func (sol *Solution) Constraints() []Constraint { return sol.constraints }

// Rounds returns the number of worklist pops.
func (sol *Solution) Rounds() int { return sol.rounds }

// =============================================================================
// Verification
// =============================================================================

// Verify lists every constraint the current values violate, one line per
// violation. A solution returned by Solve verifies clean.
func (sol *Solution) Verify() []string {
	prog := sol.prog
	var out []string

	for _, r := range prog.Regions() {
		if r.Universal && sol.values[r.ID].Len() != prog.NumPoints() {
			out = append(out, "universal region "+r.Name+" is missing points")
		}
	}

	useRegions, dropRegions := varRegions(prog)
	vars := prog.Vars()
	for i := 0; i < prog.NumPoints(); i++ {
		pt := prog.FormatPoint(prog.PointAt(i))
		for _, v := range sol.live.LiveVars(i) {
			for _, r := range useRegions[v] {
				if !sol.values[r.ID].Has(i) {
					out = append(out, vars[v].Name+" is live at "+pt+" but "+r.Name+" does not contain it")
				}
			}
		}
		for _, v := range sol.live.DropLiveVars(i) {
			for _, r := range dropRegions[v] {
				if !sol.values[r.ID].Has(i) {
					out = append(out, vars[v].Name+" is drop-live at "+pt+" but "+r.Name+" does not contain it")
				}
			}
		}
	}

	for _, c := range sol.constraints {
		if missing, ok := sol.unsatisfied(c); ok {
			out = append(out, c.Format(prog)+": "+c.Sup.Name+" lacks "+prog.FormatPoint(missing))
		}
	}
	return out
}

// unsatisfied returns a point propagate would still add for c.
func (sol *Solution) unsatisfied(c Constraint) (model.Point, bool) {
	sub := &sol.values[c.Sub.ID]
	sup := &sol.values[c.Sup.ID]

	var visited intsets.Sparse
	stack := []int{sol.prog.PointIndex(c.Point)}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !sub.Has(p) || !visited.Insert(p) {
			continue
		}
		if !sup.Has(p) {
			return sol.prog.PointAt(p), true
		}
		stack = append(stack, sol.prog.SuccessorIndices(p)...)
	}
	return model.Point{}, false
}
