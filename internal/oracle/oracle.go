// Package oracle compares analysis results with what a scenario expects.
//
// # Checks
//
//	┌──────────────────┬──────────────────────────────────────────────────┐
//	│ //! fragment     │ a diagnostic at the statement contains fragment  │
//	│ (no directive)   │ no diagnostic at the statement                   │
//	│ 'r in B/i        │ point B/i is in the value of 'r                  │
//	│ 'r not in B/i    │ point B/i is not in the value of 'r              │
//	│ 'r == {...}      │ the value of 'r is exactly the listed points     │
//	│ x [not] live at  │ x is (not) use-live on entry to the block        │
//	│ 'r [not] live at │ a live variable does (not) mention 'r on entry   │
//	└──────────────────┴──────────────────────────────────────────────────┘
//
// Any assertion about the anonymous region '_ holds.
package oracle

import (
	"fmt"
	"strings"

	"github.com/nikomatsakis/borrowck/internal/conflict"
	"github.com/nikomatsakis/borrowck/internal/model"
)

// Regions is the region inference result the oracle reads.
type Regions interface {
	Contains(r *model.Region, pt model.Point) bool
	Set(r *model.Region) *model.PointSet
}

// Liveness is the liveness result the oracle reads.
type Liveness interface {
	LiveOnEntry(v model.VarID, b model.BlockID) bool
	RegionLiveOnEntry(r *model.Region, b model.BlockID) bool
}

// Evaluate checks the diagnostics and assertions of prog.
func Evaluate(name string, prog *model.Program, diags []conflict.Diagnostic, regions Regions, live Liveness) *Report {
	e := &evaluator{prog: prog, regions: regions, live: live}
	e.reconcile(diags)
	for _, a := range prog.Assertions() {
		e.assertion(a)
	}

	r := &Report{Name: name, Verdict: OK, Mismatches: e.mismatches, Diagnostics: diags}
	if len(e.mismatches) > 0 {
		r.Verdict = Fail
	}
	return r
}

type evaluator struct {
	prog       *model.Program
	regions    Regions
	live       Liveness
	mismatches []Mismatch
}

func (e *evaluator) fail(line int, subject, want, got string) {
	e.mismatches = append(e.mismatches, Mismatch{Line: line, Subject: subject, Want: want, Got: got})
}

// =============================================================================
// Diagnostics
// =============================================================================

func (e *evaluator) reconcile(diags []conflict.Diagnostic) {
	byPoint := make(map[int]conflict.Diagnostic, len(diags))
	for _, d := range diags {
		byPoint[e.prog.PointIndex(d.Point)] = d
	}

	for _, blk := range e.prog.Blocks() {
		for _, st := range blk.Statements {
			d, found := byPoint[e.prog.PointIndex(st.Point)]
			switch {
			case st.Expects && !found:
				e.fail(st.Line, st.Text, fmt.Sprintf("error containing %q", st.Expect), "no error")
			case st.Expects && !strings.Contains(d.Message, st.Expect):
				e.fail(st.Line, st.Text, fmt.Sprintf("error containing %q", st.Expect), fmt.Sprintf("%q", d.Message))
			case !st.Expects && found:
				e.fail(st.Line, st.Text, "no error", fmt.Sprintf("%q", d.Message))
			}
		}
	}
}

// =============================================================================
// Assertions
// =============================================================================

func (e *evaluator) assertion(a *model.Assertion) {
	if a.Region != nil && a.Region.Anonymous {
		return
	}
	prog := e.prog

	switch a.Kind {
	case model.AssertRegionIn:
		if !e.regions.Contains(a.Region, a.Point) {
			e.fail(a.Line, a.Text, a.Region.Name+" to contain "+prog.FormatPoint(a.Point),
				prog.FormatPointSet(e.regions.Set(a.Region)))
		}
	case model.AssertRegionNotIn:
		if e.regions.Contains(a.Region, a.Point) {
			e.fail(a.Line, a.Text, a.Region.Name+" not to contain "+prog.FormatPoint(a.Point),
				prog.FormatPointSet(e.regions.Set(a.Region)))
		}
	case model.AssertRegionEq:
		var want model.PointSet
		for _, pt := range a.Points {
			want.Add(prog.PointIndex(pt))
		}
		if got := e.regions.Set(a.Region); !got.Equals(&want) {
			e.fail(a.Line, a.Text, prog.FormatPointSet(&want), prog.FormatPointSet(got))
		}
	case model.AssertVarLive:
		if !e.live.LiveOnEntry(a.Var.ID, a.Block.ID) {
			e.fail(a.Line, a.Text, a.Var.Name+" live on entry to "+a.Block.Name, "not live")
		}
	case model.AssertVarNotLive:
		if e.live.LiveOnEntry(a.Var.ID, a.Block.ID) {
			e.fail(a.Line, a.Text, a.Var.Name+" not live on entry to "+a.Block.Name, "live")
		}
	case model.AssertRegionLive:
		if !e.live.RegionLiveOnEntry(a.Region, a.Block.ID) {
			e.fail(a.Line, a.Text, a.Region.Name+" live on entry to "+a.Block.Name, "not live")
		}
	case model.AssertRegionNotLive:
		if e.live.RegionLiveOnEntry(a.Region, a.Block.ID) {
			e.fail(a.Line, a.Text, a.Region.Name+" not live on entry to "+a.Block.Name, "live")
		}
	default:
		panic(fmt.Sprintf("oracle: unknown assertion kind %d", a.Kind))
	}
}
