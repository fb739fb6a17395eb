package oracle

import "fmt"

// Aggregator collects reports in input order. It is owned by one goroutine;
// the batch driver fills a slot per scenario and adds them in order.
type Aggregator struct {
	reports []*Report
}

// Add appends r.
func (a *Aggregator) Add(r *Report) {
	a.reports = append(a.reports, r)
}

// Summary tallies the reports added so far.
func (a *Aggregator) Summary() Summary {
	s := Summary{Reports: append([]*Report(nil), a.reports...)}
	for _, r := range a.reports {
		switch r.Verdict {
		case OK:
			s.OK++
		case Fail:
			s.Fail++
		case Error:
			switch r.Class {
			case Malformed:
				s.Malformed++
			case Canceled:
				s.Canceled++
			default:
				s.Internal++
			}
		}
	}
	return s
}

// Summary is the outcome of a batch.
type Summary struct {
	Reports   []*Report
	OK        int
	Fail      int
	Malformed int
	Internal  int
	Canceled  int
}

// Total returns the number of scenarios.
func (s Summary) Total() int { return len(s.Reports) }

// Errors returns the number of scenarios with an Error verdict.
func (s Summary) Errors() int { return s.Malformed + s.Internal + s.Canceled }

// Passed reports whether every scenario is OK.
func (s Summary) Passed() bool { return s.OK == s.Total() }

func (s Summary) String() string {
	return fmt.Sprintf("%d scenarios: %d ok, %d failed, %d errors (%d malformed, %d internal, %d canceled)",
		s.Total(), s.OK, s.Fail, s.Errors(), s.Malformed, s.Internal, s.Canceled)
}
