package debug

import (
	"github.com/nikomatsakis/borrowck/internal/conflict"
	"github.com/nikomatsakis/borrowck/internal/model"
)

// Info contains collected debug information for one statement.
type Info struct {
	Statement   *model.Statement
	Comparisons []Comparison
}

// Comparison is one access checked against one loan in scope.
type Comparison struct {
	Access   conflict.Access
	Loan     *model.Loan
	Conflict bool
}

// Conflicts returns how many comparisons conflicted. The checker stops at
// the first, so this is zero or one.
func (i *Info) Conflicts() int {
	n := 0
	for _, c := range i.Comparisons {
		if c.Conflict {
			n++
		}
	}
	return n
}
