package debug_test

import (
	"strings"
	"testing"

	"github.com/nikomatsakis/borrowck/internal/conflict"
	"github.com/nikomatsakis/borrowck/internal/debug"
	"github.com/nikomatsakis/borrowck/internal/infer"
	"github.com/nikomatsakis/borrowck/internal/liveness"
	"github.com/nikomatsakis/borrowck/internal/loans"
	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/scenario"
)

const walkDoc = `
structs:
  - name: List
    params: [T]
    fields: ["value: T", "successor: Box<List<T>>"]
  - name: Box
    box: true
    params: [T]
vars:
  - "root: List<()>"
  - "list: &'list mut List<()>"
blocks:
  - name: START
    do: ["list = &'r0 mut root"]
    goto: [LOOP]
  - name: LOOP
    do: ["use(list)"]
    goto: [BODY, EXIT]
  - name: BODY
    do: ["list = &'r1 mut *(*list).successor"]
    goto: [LOOP]
  - name: EXIT
`

const storageDoc = `
vars: ["x: i32", "p: &'p i32"]
blocks:
  - name: A
    do: ["p = &'a x", "StorageDead(x)", "use(p)"]
`

type analysis struct {
	prog  *model.Program
	sol   *infer.Solution
	scope *loans.InScope
}

func analyze(t *testing.T, doc string) analysis {
	t.Helper()
	prog, err := scenario.Program([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	live, err := liveness.Compute(prog)
	if err != nil {
		t.Fatal(err)
	}
	sol, err := infer.Solve(prog, live)
	if err != nil {
		t.Fatal(err)
	}
	scope, err := loans.Compute(prog, sol)
	if err != nil {
		t.Fatal(err)
	}
	return analysis{prog: prog, sol: sol, scope: scope}
}

func TestTracker(t *testing.T) {
	a := analyze(t, storageDoc)
	tracker := debug.NewTracker(conflict.New(a.prog, a.scope), debug.NewCollector(a.prog))

	violations := tracker.Check()
	if len(violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(violations))
	}
	v := violations[0]
	if v.Info == nil || len(v.Info.Comparisons) != 1 || v.Info.Conflicts() != 1 {
		t.Fatalf("info = %+v", v.Info)
	}

	// The use at A/2 is compared with the loan but does not conflict.
	c := tracker.Collector()
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	blk := a.prog.Start().ID
	if info := c.InfoAt(model.Point{Block: blk, Index: 2}); info == nil || info.Conflicts() != 0 {
		t.Errorf("InfoAt(A/2) = %+v", info)
	}
	if info := c.InfoAt(model.Point{Block: blk, Index: 0}); info != nil {
		t.Errorf("InfoAt(A/0) = %+v, want nil", info)
	}
}

func TestFormatViolation(t *testing.T) {
	a := analyze(t, storageDoc)
	tracker := debug.NewTracker(conflict.New(a.prog, a.scope), debug.NewCollector(a.prog))
	violations := tracker.Check()
	if len(violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(violations))
	}

	got := debug.FormatViolation(a.prog, violations[0])
	for _, want := range []string{
		"A/1: storage of `x` freed while still borrowed (loan of `x` created at A/0)\n",
		"    StorageDead(x)  (line 5)\n",
		"    └─ shared loan L0 of `x` at A/0, region 'a\n",
		"  Comparisons:\n",
		"    1. write storage-dead `x`\n",
		"       ├─ loan: L0 `x`\n",
		"       └─ conflict\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatViolation() missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatRegions(t *testing.T) {
	a := analyze(t, walkDoc)

	want := `'list = {START/1, LOOP/0, LOOP/1, BODY/0, BODY/1}
'r0   = {START/1, LOOP/0, LOOP/1, BODY/0, BODY/1}
'r1   = {LOOP/0, LOOP/1, BODY/0, BODY/1}

Constraints:
  'r0: 'list @ START/1
  'r1: 'list @ BODY/1
  'list: 'r1 @ BODY/1
`
	if got := debug.FormatRegions(a.prog, a.sol); got != want {
		t.Errorf("FormatRegions() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatRegionsUniversal(t *testing.T) {
	a := analyze(t, `
regions: [{name: "'u", universal: true}]
blocks: [{name: A}]
`)
	if got, want := debug.FormatRegions(a.prog, a.sol), "'u = {A/0}  (universal)\n"; got != want {
		t.Errorf("FormatRegions() = %q, want %q", got, want)
	}
}

func TestFormatProgram(t *testing.T) {
	a := analyze(t, walkDoc)

	want := `  START:
    START/0  list = &'r0 mut root
    START/1  goto LOOP
↺ LOOP:
    LOOP/0   use(list)
    LOOP/1   goto BODY, EXIT
│ BODY:
    BODY/0   list = &'r1 mut *(*list).successor
    BODY/1   goto LOOP
  EXIT:
    EXIT/0   return
`
	if got := debug.FormatProgram(a.prog); got != want {
		t.Errorf("FormatProgram() =\n%s\nwant\n%s", got, want)
	}
}
