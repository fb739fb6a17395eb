package conflict

import (
	"fmt"

	"github.com/nikomatsakis/borrowck/internal/model"
)

// Kind classifies a borrow conflict by the action that caused it.
type Kind uint8

const (
	KindOverwrite Kind = iota
	KindStorageDead
	KindMove
	KindDrop
	KindMutBorrow
	KindSharedBorrow
	KindRead
)

func (k Kind) String() string {
	switch k {
	case KindOverwrite:
		return "overwrite"
	case KindStorageDead:
		return "storage-dead"
	case KindMove:
		return "move"
	case KindDrop:
		return "drop"
	case KindMutBorrow:
		return "mut-borrow"
	case KindSharedBorrow:
		return "shared-borrow"
	case KindRead:
		return "read"
	default:
		return "unknown"
	}
}

// Diagnostic is a borrow conflict: the statement at Point acts on Place
// while Loan is in scope.
type Diagnostic struct {
	Point     model.Point
	Statement *model.Statement
	Place     model.Place
	Loan      *model.Loan
	Kind      Kind
	Message   string
}

// Format renders the diagnostic with its location.
func (d Diagnostic) Format(prog *model.Program) string {
	return prog.FormatPoint(d.Point) + ": " + d.Message
}

func message(prog *model.Program, kind Kind, place model.Place, loan *model.Loan) string {
	var head string
	switch kind {
	case KindOverwrite:
		head = fmt.Sprintf("cannot assign to `%s` because it is borrowed", place)
	case KindStorageDead:
		head = fmt.Sprintf("storage of `%s` freed while still borrowed", place)
	case KindMove:
		head = fmt.Sprintf("cannot move out of `%s` because it is borrowed", place)
	case KindDrop:
		head = fmt.Sprintf("cannot drop `%s` because it is borrowed", place)
	case KindMutBorrow:
		head = fmt.Sprintf("cannot borrow `%s` as mutable because it is also borrowed", place)
	case KindSharedBorrow:
		head = fmt.Sprintf("cannot borrow `%s` as shared because it is mutably borrowed", place)
	case KindRead:
		head = fmt.Sprintf("cannot use `%s` because it is mutably borrowed", place)
	}
	return fmt.Sprintf("%s (loan of `%s` created at %s)", head, loan.Place, prog.FormatPoint(loan.Point))
}
