package debug

import (
	"fmt"
	"strings"

	"github.com/nikomatsakis/borrowck/internal/conflict"
	"github.com/nikomatsakis/borrowck/internal/infer"
	"github.com/nikomatsakis/borrowck/internal/model"
)

// FormatDiagnostic renders a diagnostic with its statement and loan.
func FormatDiagnostic(prog *model.Program, d conflict.Diagnostic) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s: %s\n", prog.FormatPoint(d.Point), d.Message)
	if d.Statement != nil {
		fmt.Fprintf(&buf, "    %s", d.Statement.Text)
		if d.Statement.Line > 0 {
			fmt.Fprintf(&buf, "  (line %d)", d.Statement.Line)
		}
		buf.WriteString("\n")
	}
	if d.Loan != nil {
		kind := "shared"
		if d.Loan.Mut {
			kind = "mutable"
		}
		fmt.Fprintf(&buf, "    └─ %s loan L%d of `%s` at %s, region %s\n",
			kind, d.Loan.ID, d.Loan.Place, prog.FormatPoint(d.Loan.Point), d.Loan.Region.Name)
	}
	return buf.String()
}

// FormatViolation renders a violation and every comparison made at its
// statement.
func FormatViolation(prog *model.Program, v Violation) string {
	var buf strings.Builder
	buf.WriteString(FormatDiagnostic(prog, v.Diagnostic))
	if v.Info == nil || len(v.Info.Comparisons) == 0 {
		return buf.String()
	}

	fmt.Fprintf(&buf, "\n  Comparisons:\n")
	for i, c := range v.Info.Comparisons {
		verdict := "ok"
		if c.Conflict {
			verdict = "conflict"
		}
		fmt.Fprintf(&buf, "    %d. %s %s `%s`\n", i+1, c.Access.Mode, c.Access.Kind, c.Access.Place)
		fmt.Fprintf(&buf, "       ├─ loan: L%d `%s`\n", c.Loan.ID, c.Loan.Place)
		fmt.Fprintf(&buf, "       └─ %s\n", verdict)
	}
	return buf.String()
}

// FormatRegions renders the value of every region followed by the
// constraints that were solved.
func FormatRegions(prog *model.Program, sol *infer.Solution) string {
	var buf strings.Builder
	width := 0
	for _, r := range prog.Regions() {
		if len(r.Name) > width {
			width = len(r.Name)
		}
	}
	for _, r := range prog.Regions() {
		mark := ""
		if r.Universal {
			mark = "  (universal)"
		}
		fmt.Fprintf(&buf, "%-*s = %s%s\n", width, r.Name, sol.Format(r), mark)
	}
	if cs := sol.Constraints(); len(cs) > 0 {
		buf.WriteString("\nConstraints:\n")
		for _, c := range cs {
			fmt.Fprintf(&buf, "  %s\n", c.Format(prog))
		}
	}
	return buf.String()
}

// FormatProgram renders the blocks of prog with point labels. Loop headers
// are marked with ↺ and blocks inside a loop with │.
func FormatProgram(prog *model.Program) string {
	loops := prog.CFG().DetectLoops()

	var buf strings.Builder
	for _, blk := range prog.Blocks() {
		id := int(blk.ID)
		marker := " "
		switch {
		case loops.IsHeader(id):
			marker = "↺"
		case loops.IsInLoop(id):
			marker = "│"
		}
		fmt.Fprintf(&buf, "%s %s:\n", marker, blk.Name)
		for _, st := range blk.Statements {
			fmt.Fprintf(&buf, "    %-8s %s\n", prog.FormatPoint(st.Point), st.Text)
		}
		var succs []string
		for _, s := range blk.Succs {
			succs = append(succs, prog.Block(s).Name)
		}
		term := model.Point{Block: blk.ID, Index: len(blk.Statements)}
		if len(succs) == 0 {
			fmt.Fprintf(&buf, "    %-8s return\n", prog.FormatPoint(term))
		} else {
			fmt.Fprintf(&buf, "    %-8s goto %s\n", prog.FormatPoint(term), strings.Join(succs, ", "))
		}
	}
	return buf.String()
}
