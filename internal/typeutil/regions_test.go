package typeutil_test

import (
	"strings"
	"testing"

	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/scenario"
	"github.com/nikomatsakis/borrowck/internal/typeutil"
)

const doc = `
structs:
  - name: Vec
    params: [{name: T, may_dangle: true}]
    fields: ["elem: T"]
  - name: Guard
    params: [T]
    fields: ["elem: T"]
  - name: Box
    box: true
    params: [T]
  - name: Cell
    params: ["'a", {name: "'b", may_dangle: true}, T]
vars:
  - "r: &'a mut &'b i32"
  - "v: Vec<&'a i32>"
  - "g: Guard<&'a i32>"
  - "bv: Box<Vec<&'a i32>>"
  - "vg: Vec<Guard<&'a i32>>"
  - "c: Cell<'a, 'b, &'c i32>"
  - "n: i32"
blocks: [{name: A}]
`

func varType(t *testing.T, prog *model.Program, name string) model.Type {
	t.Helper()
	v, ok := prog.Var(name)
	if !ok {
		t.Fatalf("no variable %s", name)
	}
	return v.Type
}

func names(rs []*model.Region) string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return strings.Join(out, " ")
}

func TestRegions(t *testing.T) {
	prog, err := scenario.Program([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		v        string
		regions  string
		dropRegs string
	}{
		{"r", "'a 'b", ""},
		{"v", "'a", ""},
		{"g", "'a", "'a"},
		{"bv", "'a", "'a"},
		{"vg", "'a", "'a"},
		{"c", "'a 'b 'c", "'a 'c"},
		{"n", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.v, func(t *testing.T) {
			typ := varType(t, prog, tt.v)
			if got := names(typeutil.Regions(typ)); got != tt.regions {
				t.Errorf("Regions(%s) = %q, want %q", typ, got, tt.regions)
			}
			if got := names(typeutil.DropRegions(typ)); got != tt.dropRegs {
				t.Errorf("DropRegions(%s) = %q, want %q", typ, got, tt.dropRegs)
			}
		})
	}
}

func TestMentions(t *testing.T) {
	prog, err := scenario.Program([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := prog.Region("'a")
	c, _ := prog.Region("'c")

	if !typeutil.Mentions(varType(t, prog, "r"), a) {
		t.Error("&'a mut &'b i32 should mention 'a")
	}
	if typeutil.Mentions(varType(t, prog, "r"), c) {
		t.Error("&'a mut &'b i32 should not mention 'c")
	}
}
