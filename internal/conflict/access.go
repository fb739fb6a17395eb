package conflict

import (
	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/tracer"
)

// Mode says whether an access only reads a place or destroys its value.
type Mode uint8

const (
	// Read only forbids exclusive loans.
	Read Mode = iota
	// Write overwrites, moves, drops, frees or exclusively borrows the
	// place. It conflicts with every overlapping loan, including loans
	// reached through a reference stored in the place.
	Write
)

func (m Mode) String() string {
	switch m {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}

// Access is one action a statement performs on a place.
type Access struct {
	Place model.Place
	Mode  Mode
	Kind  Kind
}

// conflicts reports whether a conflicts with loan l.
func (a Access) conflicts(l *model.Loan) bool {
	if a.Mode == Read {
		return tracer.ReadConflict(a.Place, l)
	}
	return tracer.WriteConflict(a.Place, l.Place)
}

// Accesses returns what a statement does to places, in the order the
// actions take effect: everything read is read before the destination is
// written.
//
//	┌───────────────────┬───────────────────────────────────────────────┐
//	│  a = b            │  read b, write a                              │
//	│  a = move b       │  write b (move), write a                      │
//	│  a = &'r b        │  read b (shared borrow), write a              │
//	│  a = &'r mut b    │  write b (mutable borrow), write a            │
//	│  a = init(b, c)   │  read b, read c, write a                      │
//	│  use(a, b)        │  read a, read b                               │
//	│  drop(a)          │  write a                                      │
//	│  StorageDead(x)   │  write x                                      │
//	└───────────────────┴───────────────────────────────────────────────┘
func Accesses(s model.Stmt) []Access {
	switch s := s.(type) {
	case *model.Assign:
		src := Access{Place: s.Src, Mode: Read, Kind: KindRead}
		if s.Move {
			src = Access{Place: s.Src, Mode: Write, Kind: KindMove}
		}
		return []Access{src, {Place: s.Dest, Mode: Write, Kind: KindOverwrite}}

	case *model.Borrow:
		src := Access{Place: s.Src, Mode: Read, Kind: KindSharedBorrow}
		if s.Mut {
			src = Access{Place: s.Src, Mode: Write, Kind: KindMutBorrow}
		}
		return []Access{src, {Place: s.Dest, Mode: Write, Kind: KindOverwrite}}

	case *model.Init:
		out := make([]Access, 0, len(s.Args)+1)
		for _, a := range s.Args {
			out = append(out, Access{Place: a, Mode: Read, Kind: KindRead})
		}
		return append(out, Access{Place: s.Dest, Mode: Write, Kind: KindOverwrite})

	case *model.Use:
		out := make([]Access, 0, len(s.Places))
		for _, p := range s.Places {
			out = append(out, Access{Place: p, Mode: Read, Kind: KindRead})
		}
		return out

	case *model.Drop:
		return []Access{{Place: s.Place, Mode: Write, Kind: KindDrop}}

	case *model.StorageDead:
		return []Access{{Place: s.Place(), Mode: Write, Kind: KindStorageDead}}

	case *model.Outlives, *model.Noop:
		return nil

	default:
		panic("conflict: unknown statement")
	}
}
