package liveness

import (
	"github.com/nikomatsakis/borrowck/internal/model"
)

// DefUse returns the variables a statement fully overwrites and the
// variables it reads.
//
//	┌─────────────────────────────┬──────────────────────┬────────────────────────┐
//	│  Statement                  │  defs                │  uses                  │
//	├─────────────────────────────┼──────────────────────┼────────────────────────┤
//	│  x = ... (bare variable)    │  x                   │  sources               │
//	│  x.f = ...                  │  -                   │  sources               │
//	│  (*x).f = ...               │  -                   │  x, sources            │
//	│  use(a, b)                  │  -                   │  a, b                  │
//	│  drop(x), StorageDead(x)    │  -                   │  -                     │
//	│  'a: 'b, noop               │  -                   │  -                     │
//	└─────────────────────────────┴──────────────────────┴────────────────────────┘
//
// A write through a field keeps the rest of the variable alive; a write
// through a dereference reads the pointer it goes through.
func DefUse(s model.Stmt) (defs, uses []model.VarID) {
	switch s := s.(type) {
	case *model.Assign:
		return writeDefs(s.Dest), append(writeUses(s.Dest), s.Src.Var.ID)
	case *model.Borrow:
		return writeDefs(s.Dest), append(writeUses(s.Dest), s.Src.Var.ID)
	case *model.Init:
		uses = writeUses(s.Dest)
		for _, a := range s.Args {
			uses = append(uses, a.Var.ID)
		}
		return writeDefs(s.Dest), uses
	case *model.Use:
		for _, p := range s.Places {
			uses = append(uses, p.Var.ID)
		}
		return nil, uses
	case *model.Drop, *model.StorageDead, *model.Outlives, *model.Noop:
		return nil, nil
	default:
		panic("liveness: unknown statement")
	}
}

func writeDefs(dest model.Place) []model.VarID {
	if dest.IsRoot() {
		return []model.VarID{dest.Var.ID}
	}
	return nil
}

func writeUses(dest model.Place) []model.VarID {
	if dest.HasDeref() {
		return []model.VarID{dest.Var.ID}
	}
	return nil
}
