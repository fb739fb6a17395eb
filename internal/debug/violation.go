package debug

import (
	"github.com/nikomatsakis/borrowck/internal/conflict"
)

// Violation is a diagnostic together with the comparisons that led to it.
type Violation struct {
	conflict.Diagnostic
	Info *Info
}

// Tracker runs a conflict check with a Collector attached.
type Tracker struct {
	checker   *conflict.Checker
	collector *Collector
}

// NewTracker attaches a new Collector to checker.
func NewTracker(checker *conflict.Checker, collector *Collector) *Tracker {
	checker.WithRecorder(collector)
	return &Tracker{checker: checker, collector: collector}
}

// Check runs the checker and enriches each diagnostic with debug info.
func (t *Tracker) Check() []Violation {
	diags := t.checker.Check()
	out := make([]Violation, 0, len(diags))
	for _, d := range diags {
		out = append(out, Violation{Diagnostic: d, Info: t.collector.InfoAt(d.Point)})
	}
	return out
}

// Collector returns the collector the tracker records into.
func (t *Tracker) Collector() *Collector { return t.collector }
