// Package report prints scenario outcomes to the console.
package report

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/nikomatsakis/borrowck/internal/oracle"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	FailColorFG    = pterm.FgYellow
	FailStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
)

// SetColor turns terminal colors on or off for every printer.
func SetColor(on bool) {
	if on {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
}

// Printer writes reports to w.
type Printer struct {
	w io.Writer
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Report prints the verdict line of r followed by its mismatches.
func (p *Printer) Report(r *oracle.Report) {
	switch r.Verdict {
	case oracle.OK:
		fmt.Fprintf(p.w, "%s %s\n", SuccessStyleBG.Sprint(" OK "), r.Name)
	case oracle.Fail:
		fmt.Fprintf(p.w, "%s %s\n", FailStyleBG.Sprint("FAIL"), r.Name)
		for _, m := range r.Mismatches {
			fmt.Fprintln(p.w, "     "+FailColorFG.Sprint(m.String()))
		}
	case oracle.Error:
		fmt.Fprintf(p.w, "%s %s\n", ErrorStyleBG.Sprint("ERR "), r.Name)
		fmt.Fprintln(p.w, "     "+ErrorColorFG.Sprint(r.Class.String()+": "+r.Err.Error()))
	}
}

// Summary prints every report and the closing tally.
func (p *Printer) Summary(s oracle.Summary) {
	for _, r := range s.Reports {
		p.Report(r)
	}
	fmt.Fprintln(p.w)

	line := fmt.Sprintf("All done! (%d ok, %d failed, %d errors)", s.OK, s.Fail, s.Errors())
	switch {
	case s.Errors() > 0:
		fmt.Fprintln(p.w, ErrorColorFG.Sprint(line))
	case s.Fail > 0:
		fmt.Fprintln(p.w, FailColorFG.Sprint(line))
	default:
		fmt.Fprintln(p.w, SuccessColorFG.Sprint(line))
	}
	if s.Errors() > 0 {
		fmt.Fprintf(p.w, "  %d malformed, %d internal, %d canceled\n", s.Malformed, s.Internal, s.Canceled)
	}
}

// Error prints a driver error with a tag, the way usage and config errors
// are shown.
func (p *Printer) Error(tag string, err error) {
	fmt.Fprintln(p.w, ErrorStyleBG.Sprint(tag)+" "+ErrorColorFG.Sprint(err.Error()))
}

// Section prints a heading for a dump.
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.w, SuccessStyleBG.Sprint(" "+title+" "))
}
