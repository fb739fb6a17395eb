package oracle_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/nikomatsakis/borrowck/internal/conflict"
	"github.com/nikomatsakis/borrowck/internal/infer"
	"github.com/nikomatsakis/borrowck/internal/liveness"
	"github.com/nikomatsakis/borrowck/internal/loans"
	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/oracle"
	"github.com/nikomatsakis/borrowck/internal/scenario"
)

func evaluate(t *testing.T, doc string) *oracle.Report {
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
	diags := conflict.New(prog, scope).Check()
	return oracle.Evaluate("case", prog, diags, sol, live)
}

func TestEvaluatePasses(t *testing.T) {
	r := evaluate(t, `
vars: ["x: i32", "p: &'p i32"]
blocks:
  - name: A
    do:
      - "p = &'a x"
      - "x = () //! borrowed"
      - "use(p)"
assert:
  - "'a == {A/1, A/2}"
  - "'a in A/1"
  - "'a not in A/0"
  - "x live at A"
  - "p not live at A"
  - "'_ in A/0"
`)
	if !r.Passed() {
		t.Fatalf("report = %s, mismatches %v", r, r.Mismatches)
	}
	if len(r.Diagnostics) != 1 {
		t.Errorf("got %d diagnostics, want 1", len(r.Diagnostics))
	}
	if got := r.String(); got != "case: OK" {
		t.Errorf("String() = %q", got)
	}
}

func TestEvaluateMismatches(t *testing.T) {
	r := evaluate(t, `
vars: ["x: i32", "p: &'p i32"]
blocks:
  - name: A
    do:
      - "p = &'a x //! nothing here"
      - "x = () //! moved"
      - "use(p)"
assert:
  - "'a in A/0"
  - "'a == {A/1, A/2}"
  - "'_ not in A/0"
  - "p live at A"
  - "'p live at A"
`)
	if r.Verdict != oracle.Fail {
		t.Fatalf("Verdict = %s, want FAIL", r.Verdict)
	}

	msg := "cannot assign to `x` because it is borrowed (loan of `x` created at A/0)"
	want := []oracle.Mismatch{
		{Subject: "p = &'a x", Want: `error containing "nothing here"`, Got: "no error"},
		{Subject: "x = ()", Want: `error containing "moved"`, Got: `"` + msg + `"`},
		{Subject: "'a in A/0", Want: "'a to contain A/0", Got: "{A/1, A/2}"},
		{Subject: "p live at A", Want: "p live on entry to A", Got: "not live"},
		{Subject: "'p live at A", Want: "'p live on entry to A", Got: "not live"},
	}
	if len(r.Mismatches) != len(want) {
		t.Fatalf("got %d mismatches, want %d: %v", len(r.Mismatches), len(want), r.Mismatches)
	}
	for i, m := range r.Mismatches {
		if m.Line == 0 {
			t.Errorf("mismatch %d has no line", i)
		}
		m.Line = 0
		if m != want[i] {
			t.Errorf("mismatch %d = %+v, want %+v", i, m, want[i])
		}
	}
	if got := r.String(); got != "case: FAIL (5 mismatches)" {
		t.Errorf("String() = %q", got)
	}
}

func TestEvaluateUnexpectedDiagnostic(t *testing.T) {
	r := evaluate(t, `
vars: ["x: i32", "p: &'p mut i32"]
blocks:
  - name: A
    do: ["p = &'a mut x", "use(x)", "use(p)"]
`)
	if len(r.Mismatches) != 1 {
		t.Fatalf("mismatches = %v, want one", r.Mismatches)
	}
	m := r.Mismatches[0]
	if m.Want != "no error" || !strings.Contains(m.Got, "mutably borrowed") {
		t.Errorf("mismatch = %+v", m)
	}
	if got := r.String(); got != "case: FAIL (1 mismatch)" {
		t.Errorf("String() = %q", got)
	}
}

func TestMismatchString(t *testing.T) {
	m := oracle.Mismatch{Line: 7, Subject: "use(p)", Want: "no error", Got: `"boom"`}
	if got, want := m.String(), "line 7: `use(p)`: want no error, got \"boom\""; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	m.Line = 0
	if got, want := m.String(), "`use(p)`: want no error, got \"boom\""; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want oracle.ErrorClass
	}{
		{"nil", nil, oracle.NoError},
		{"malformed", errors.Wrap(model.ErrMalformedProgram, "line 3"), oracle.Malformed},
		{"canceled", errors.WithMessage(context.Canceled, "scenario"), oracle.Canceled},
		{"deadline", context.DeadlineExceeded, oracle.Canceled},
		{"non-termination", errors.Wrap(model.ErrNonTermination, "liveness"), oracle.Internal},
		{"other", errors.New("boom"), oracle.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := oracle.Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrored(t *testing.T) {
	r := oracle.Errored("bad", errors.Wrap(model.ErrMalformedProgram, "line 2"))
	if r.Verdict != oracle.Error || r.Class != oracle.Malformed || r.Passed() {
		t.Errorf("report = %+v", r)
	}
	if got := r.String(); !strings.HasPrefix(got, "bad: ERROR (malformed: line 2") {
		t.Errorf("String() = %q", got)
	}
}

func TestAggregator(t *testing.T) {
	var agg oracle.Aggregator
	agg.Add(&oracle.Report{Name: "a", Verdict: oracle.OK})
	agg.Add(&oracle.Report{Name: "b", Verdict: oracle.Fail})
	agg.Add(oracle.Errored("c", model.ErrMalformedProgram))
	agg.Add(oracle.Errored("d", errors.New("boom")))
	agg.Add(oracle.Errored("e", context.Canceled))

	s := agg.Summary()
	if s.Total() != 5 || s.OK != 1 || s.Fail != 1 || s.Errors() != 3 {
		t.Errorf("summary = %+v", s)
	}
	if s.Malformed != 1 || s.Internal != 1 || s.Canceled != 1 {
		t.Errorf("error classes = %d/%d/%d", s.Malformed, s.Internal, s.Canceled)
	}
	if s.Passed() {
		t.Error("Passed() = true, want false")
	}
	want := "5 scenarios: 1 ok, 1 failed, 3 errors (1 malformed, 1 internal, 1 canceled)"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	for i, r := range s.Reports {
		if r.Name != string(rune('a'+i)) {
			t.Errorf("report %d = %s, out of order", i, r.Name)
		}
	}
}

func TestEmptySummaryPasses(t *testing.T) {
	var agg oracle.Aggregator
	if !agg.Summary().Passed() {
		t.Error("an empty batch should pass")
	}
}
