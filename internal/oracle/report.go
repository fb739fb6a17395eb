package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/nikomatsakis/borrowck/internal/conflict"
	"github.com/nikomatsakis/borrowck/internal/model"
)

// Verdict is the outcome of one scenario.
type Verdict uint8

const (
	// OK means every expectation and assertion held.
	OK Verdict = iota
	// Fail means the analysis ran and disagreed with the scenario.
	Fail
	// Error means the analysis could not run.
	Error
)

func (v Verdict) String() string {
	switch v {
	case OK:
		return "OK"
	case Fail:
		return "FAIL"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("Verdict(%d)", v)
	}
}

// ErrorClass tells apart the reasons a scenario could not run.
type ErrorClass uint8

const (
	NoError ErrorClass = iota
	Malformed
	Internal
	Canceled
)

func (c ErrorClass) String() string {
	return [...]string{"none", "malformed", "internal", "canceled"}[c]
}

// Classify maps an analysis error to its class.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return NoError
	case errors.Is(err, model.ErrMalformedProgram):
		return Malformed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Canceled
	default:
		return Internal
	}
}

// Mismatch is one disagreement between a scenario and the analysis.
type Mismatch struct {
	Line int
	// Subject is the statement or assertion text.
	Subject string
	Want    string
	Got     string
}

func (m Mismatch) String() string {
	var b strings.Builder
	if m.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", m.Line)
	}
	fmt.Fprintf(&b, "`%s`: want %s, got %s", m.Subject, m.Want, m.Got)
	return b.String()
}

// Report is the outcome of one scenario.
type Report struct {
	Name        string
	Verdict     Verdict
	Mismatches  []Mismatch
	Diagnostics []conflict.Diagnostic
	// Err is set when Verdict is Error.
	Err   error
	Class ErrorClass
}

// Errored builds the report of a scenario that could not be analyzed.
func Errored(name string, err error) *Report {
	return &Report{Name: name, Verdict: Error, Err: err, Class: Classify(err)}
}

// Passed reports whether the verdict is OK.
func (r *Report) Passed() bool { return r.Verdict == OK }

// String renders the one-line form "name: VERDICT".
func (r *Report) String() string {
	switch r.Verdict {
	case Fail:
		n := len(r.Mismatches)
		suffix := "es"
		if n == 1 {
			suffix = ""
		}
		return fmt.Sprintf("%s: %s (%d mismatch%s)", r.Name, r.Verdict, n, suffix)
	case Error:
		return fmt.Sprintf("%s: %s (%s: %v)", r.Name, r.Verdict, r.Class, r.Err)
	default:
		return r.Name + ": " + r.Verdict.String()
	}
}
