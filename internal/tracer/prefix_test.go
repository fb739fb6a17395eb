package tracer_test

import (
	"strings"
	"testing"

	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/scenario"
	"github.com/nikomatsakis/borrowck/internal/tracer"
)

const doc = `
structs:
  - name: Holder
    params: ["'x", "'y"]
    fields: ["m: &'x mut i32", "s: &'y i32"]
  - name: Box
    box: true
    params: [T]
vars:
  - "a: &'a mut Holder<'b, 'c>"
  - "h: &'h Holder<'b, 'c>"
  - "r: &'r mut i32"
  - "bx: Box<i32>"
blocks: [{name: A}]
`

func fixture(t *testing.T) func(string) model.Place {
	t.Helper()
	prog, err := scenario.Program([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return func(src string) model.Place {
		t.Helper()
		e, err := scenario.ParsePlace(src)
		if err != nil {
			t.Fatal(err)
		}
		p, err := prog.ResolvePlace(e)
		if err != nil {
			t.Fatal(err)
		}
		return p
	}
}

func TestSupporting(t *testing.T) {
	place := fixture(t)

	tests := []struct {
		place string
		want  string
	}{
		{"*(*a).m", "(*a).m 'b, a 'a"},
		{"*(*a).s", "(*a).s 'c"},
		{"(*a).m", "a 'a"},
		{"*(*h).m", "(*h).m 'b, h 'h"},
		{"*bx", ""},
		{"a", ""},
	}
	for _, tt := range tests {
		t.Run(tt.place, func(t *testing.T) {
			var got []string
			for _, rb := range tracer.Supporting(place(tt.place)) {
				got = append(got, rb.Base.String()+" "+rb.Ref.Region.Name)
			}
			if s := strings.Join(got, ", "); s != tt.want {
				t.Errorf("Supporting(%s) = %q, want %q", tt.place, s, tt.want)
			}
		})
	}
}

func TestKills(t *testing.T) {
	place := fixture(t)

	if !tracer.Kills(place("a"), place("(*a).m")) {
		t.Error("overwriting a should kill a loan of (*a).m")
	}
	if tracer.Kills(place("(*a).m"), place("a")) {
		t.Error("overwriting (*a).m should not kill a loan of a")
	}
	if tracer.Kills(place("r"), place("a")) {
		t.Error("unrelated variables should not kill each other's loans")
	}
}

func TestWriteConflict(t *testing.T) {
	place := fixture(t)

	tests := []struct {
		write, loan string
		want        bool
	}{
		{"r", "*r", true},
		{"bx", "*bx", true},
		{"*r", "*r", true},
		{"a", "(*a).m", true},
		{"a", "*(*a).m", true},
		{"a", "a", true},
		{"(*a).m", "*a", true},
		{"(*a).m", "(*a).s", false},
		{"r", "bx", false},
	}
	for _, tt := range tests {
		if got := tracer.WriteConflict(place(tt.write), place(tt.loan)); got != tt.want {
			t.Errorf("WriteConflict(%s, %s) = %v, want %v", tt.write, tt.loan, got, tt.want)
		}
	}
}

func TestReadConflict(t *testing.T) {
	place := fixture(t)

	shared := &model.Loan{Place: place("*r")}
	mutable := &model.Loan{Place: place("*r"), Mut: true}

	if tracer.ReadConflict(place("r"), shared) {
		t.Error("reading under a shared loan should not conflict")
	}
	if !tracer.ReadConflict(place("r"), mutable) {
		t.Error("reading under a mutable loan should conflict")
	}
	if tracer.ReadConflict(place("bx"), mutable) {
		t.Error("reading an unrelated place should not conflict")
	}
}
