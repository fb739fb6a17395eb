package liveness_test

import (
	"strings"
	"testing"

	"github.com/nikomatsakis/borrowck/internal/liveness"
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

func build(t *testing.T, doc string) *model.Program {
	t.Helper()
	prog, err := scenario.Program([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func compute(t *testing.T, prog *model.Program) *liveness.Result {
	t.Helper()
	live, err := liveness.Compute(prog)
	if err != nil {
		t.Fatal(err)
	}
	return live
}

func varID(t *testing.T, prog *model.Program, name string) model.VarID {
	t.Helper()
	v, ok := prog.Var(name)
	if !ok {
		t.Fatalf("no variable %s", name)
	}
	return v.ID
}

func blockID(t *testing.T, prog *model.Program, name string) model.BlockID {
	t.Helper()
	b, ok := prog.BlockByName(name)
	if !ok {
		t.Fatalf("no block %s", name)
	}
	return b.ID
}

func varNames(prog *model.Program, ids []model.VarID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = prog.Vars()[id].Name
	}
	return strings.Join(names, " ")
}

// =============================================================================
// Def/Use
// =============================================================================

func TestDefUse(t *testing.T) {
	prog := build(t, `
structs:
  - name: Pair
    fields: ["first: i32", "second: i32"]
vars: ["x: i32", "y: i32", "q: Pair", "p: &'p mut Pair"]
blocks:
  - name: A
    do:
      - "x = y"
      - "q.first = x"
      - "(*p).first = x"
      - "use(x, y)"
      - "drop(q)"
      - "StorageDead(y)"
      - "'a: 'b"
      - "noop"
      - "p = &'b mut q"
      - "q = init(x, y)"
`)

	tests := []struct {
		defs, uses string
	}{
		{"x", "y"},
		{"", "x"},
		{"", "p x"},
		{"", "x y"},
		{"", ""},
		{"", ""},
		{"", ""},
		{"", ""},
		{"p", "q"},
		{"q", "x y"},
	}
	stmts := prog.Start().Statements
	if len(stmts) != len(tests) {
		t.Fatalf("got %d statements, want %d", len(stmts), len(tests))
	}
	for i, tt := range tests {
		t.Run(stmts[i].Text, func(t *testing.T) {
			defs, uses := liveness.DefUse(stmts[i].Stmt)
			if got := varNames(prog, defs); got != tt.defs {
				t.Errorf("defs = %q, want %q", got, tt.defs)
			}
			if got := varNames(prog, uses); got != tt.uses {
				t.Errorf("uses = %q, want %q", got, tt.uses)
			}
		})
	}
}

// =============================================================================
// Fixpoint
// =============================================================================

func TestWalkLiveness(t *testing.T) {
	prog := build(t, walkDoc)
	live := compute(t, prog)

	root := varID(t, prog, "root")
	list := varID(t, prog, "list")

	tests := []struct {
		v     model.VarID
		block string
		want  bool
	}{
		{root, "START", true},
		{list, "START", false},
		{list, "LOOP", true},
		{root, "LOOP", false},
		{list, "BODY", true},
		{list, "EXIT", false},
	}
	for _, tt := range tests {
		if got := live.LiveOnEntry(tt.v, blockID(t, prog, tt.block)); got != tt.want {
			t.Errorf("LiveOnEntry(%s, %s) = %v, want %v", prog.Vars()[tt.v].Name, tt.block, got, tt.want)
		}
	}

	// list is overwritten by the statement at START/0, so it is only live
	// after it.
	start := prog.Start().ID
	if live.IsLive(list, model.Point{Block: start, Index: 0}) {
		t.Error("list should not be live at START/0")
	}
	if !live.IsLive(list, model.Point{Block: start, Index: 1}) {
		t.Error("list should be live at START/1")
	}
}

func TestRegionLiveOnEntry(t *testing.T) {
	prog := build(t, walkDoc)
	live := compute(t, prog)

	lr, _ := prog.Region("'list")
	r0, _ := prog.Region("'r0")

	if !live.RegionLiveOnEntry(lr, blockID(t, prog, "BODY")) {
		t.Error("'list should be live at BODY")
	}
	if live.RegionLiveOnEntry(lr, blockID(t, prog, "EXIT")) {
		t.Error("'list should not be live at EXIT")
	}
	if live.RegionLiveOnEntry(r0, blockID(t, prog, "LOOP")) {
		t.Error("'r0 is mentioned by no variable type")
	}
}

func TestPasses(t *testing.T) {
	acyclic := build(t, `
vars: ["x: i32"]
blocks:
  - name: A
    do: ["x = ()", "use(x)"]
`)
	if got := compute(t, acyclic).Passes(); got != 2 {
		t.Errorf("acyclic Passes() = %d, want 2", got)
	}

	if got := compute(t, build(t, walkDoc)).Passes(); got <= 2 {
		t.Errorf("loop Passes() = %d, want more than 2", got)
	}
}

func TestDropLiveness(t *testing.T) {
	prog := build(t, `
structs:
  - name: Guard
    params: [T]
    fields: ["elem: T"]
  - name: Vec
    params: [{name: T, may_dangle: true}]
    fields: ["elem: T"]
vars: ["g: Guard<&'a i32>", "v: Vec<&'b i32>"]
blocks:
  - name: A
    do: ["noop", "drop(g)", "drop(v)"]
`)
	live := compute(t, prog)
	g := varID(t, prog, "g")
	v := varID(t, prog, "v")
	a := prog.Start()

	at0 := model.Point{Block: a.ID, Index: 0}
	if live.IsLive(g, at0) {
		t.Error("g is only dropped, it should not be use-live")
	}
	if !live.IsDropLive(g, at0) || !live.IsDropLive(v, at0) {
		t.Error("g and v should be drop-live at A/0")
	}
	if live.IsDropLive(g, model.Point{Block: a.ID, Index: 2}) {
		t.Error("g should not be drop-live after its drop")
	}
	if got := varNames(prog, live.DropLiveVars(0)); got != "g v" {
		t.Errorf("DropLiveVars(0) = %q, want %q", got, "g v")
	}

	ra, _ := prog.Region("'a")
	rb, _ := prog.Region("'b")
	if !live.RegionLiveOnEntry(ra, a.ID) {
		t.Error("dropping a Guard may touch 'a")
	}
	if live.RegionLiveOnEntry(rb, a.ID) {
		t.Error("a may_dangle Vec does not keep 'b alive")
	}
}
