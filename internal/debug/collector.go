package debug

import (
	"github.com/nikomatsakis/borrowck/internal/conflict"
	"github.com/nikomatsakis/borrowck/internal/model"
)

var _ conflict.Recorder = (*Collector)(nil)

// Collector encapsulates debug information collection.
// This keeps debug logic isolated from the conflict checker.
type Collector struct {
	prog    *model.Program
	byPoint map[int]*Info
}

// NewCollector creates a new Collector for prog.
func NewCollector(prog *model.Program) *Collector {
	return &Collector{
		prog:    prog,
		byPoint: make(map[int]*Info),
	}
}

// RecordAccess implements conflict.Recorder.
func (c *Collector) RecordAccess(st *model.Statement, a conflict.Access, l *model.Loan, hit bool) {
	idx := c.prog.PointIndex(st.Point)
	info, ok := c.byPoint[idx]
	if !ok {
		info = &Info{Statement: st}
		c.byPoint[idx] = info
	}
	info.Comparisons = append(info.Comparisons, Comparison{Access: a, Loan: l, Conflict: hit})
}

// InfoAt returns what was recorded for the statement at pt, or nil.
func (c *Collector) InfoAt(pt model.Point) *Info {
	return c.byPoint[c.prog.PointIndex(pt)]
}

// Len returns the number of statements with at least one comparison.
func (c *Collector) Len() int { return len(c.byPoint) }
