package model

import (
	"github.com/pkg/errors"

	"github.com/nikomatsakis/borrowck/internal/cfg"
)

// =============================================================================
// Entry Point
// =============================================================================

// Build resolves src into a Program.
//
// Resolution happens in dependency order:
//  1. Declared regions, so that universal flags are known before use
//  2. Shapes (names first, so fields may refer to any shape)
//  3. Variables
//  4. Blocks and edges; the graph must be rooted at the first block
//  5. Statements, creating loans in point order
//  6. Assertions, which may only name regions that exist by then
//
// Every failure wraps ErrMalformedProgram.
func Build(src *Source) (*Program, error) {
	b := &builder{
		prog: &Program{
			Name:         src.Name,
			varByName:    make(map[string]*Var),
			regionByName: make(map[string]*Region),
			blockByName:  make(map[string]*Block),
		},
		shapeByName: make(map[string]*Shape),
		instances:   make(map[string][]Type),
	}
	steps := []func(*Source) error{
		b.declareRegions,
		b.declareShapes,
		b.declareVars,
		b.declareBlocks,
		b.resolveStatements,
		b.resolveAssertions,
	}
	for _, step := range steps {
		if err := step(src); err != nil {
			if src.Name != "" {
				return nil, errors.WithMessage(err, src.Name)
			}
			return nil, err
		}
	}
	return b.prog, nil
}

type builder struct {
	prog        *Program
	shapeByName map[string]*Shape
	instances   map[string][]Type // concrete field types per instantiation
}

// =============================================================================
// Regions
// =============================================================================

func (b *builder) declareRegions(src *Source) error {
	for _, d := range src.Regions {
		if !isRegionName(d.Name) {
			return malformedf("invalid region name %q", d.Name)
		}
		if _, dup := b.prog.regionByName[d.Name]; dup {
			return malformedf("region %s declared twice", d.Name)
		}
		r := b.region(d.Name)
		r.Universal = r.Universal || d.Universal
	}
	return nil
}

// region returns the named region, creating it on first mention.
func (b *builder) region(name string) *Region {
	if r, ok := b.prog.regionByName[name]; ok {
		return r
	}
	r := &Region{
		ID:        RegionID(len(b.prog.regions)),
		Name:      name,
		Universal: name == StaticRegion || name == AnonymousRegion,
		Anonymous: name == AnonymousRegion,
	}
	b.prog.regions = append(b.prog.regions, r)
	b.prog.regionByName[name] = r
	return r
}

func isRegionName(name string) bool {
	return len(name) > 1 && name[0] == '\''
}

// =============================================================================
// Shapes
// =============================================================================

func (b *builder) declareShapes(src *Source) error {
	for _, d := range src.Structs {
		if _, dup := b.shapeByName[d.Name]; dup {
			return malformedf("struct %s declared twice", d.Name)
		}
		if builtinScalars[d.Name] {
			return malformedf("struct %s shadows a scalar type", d.Name)
		}
		s := &Shape{Name: d.Name, Box: d.Box, fieldIndex: make(map[string]int)}
		seen := make(map[string]bool)
		for i, pd := range d.Params {
			if seen[pd.Name] {
				return malformedf("struct %s: parameter %s declared twice", d.Name, pd.Name)
			}
			seen[pd.Name] = true
			p := ShapeParam{Name: pd.Name, Variance: pd.Variance, MayDangle: pd.MayDangle}
			if isRegionName(pd.Name) {
				p.Kind = RegionParam
				p.region = &Region{ID: -1, Name: pd.Name, slot: i + 1}
			}
			s.Params = append(s.Params, p)
		}
		if s.Box && (len(s.Params) == 0 || s.Params[0].Kind != TypeParam) {
			return malformedf("box struct %s must take a type as its first parameter", d.Name)
		}
		b.shapeByName[d.Name] = s
		b.prog.shapes = append(b.prog.shapes, s)
	}

	// Field types may mention any shape, including the one being declared.
	for i, d := range src.Structs {
		s := b.prog.shapes[i]
		for _, fd := range d.Fields {
			if _, dup := s.fieldIndex[fd.Name]; dup {
				return malformedf("struct %s: field %s declared twice", d.Name, fd.Name)
			}
			t, err := b.resolveType(fd.Type, s)
			if err != nil {
				return errors.WithMessagef(err, "struct %s, field %s", d.Name, fd.Name)
			}
			s.fieldIndex[fd.Name] = len(s.Fields)
			s.Fields = append(s.Fields, Field{Name: fd.Name, Type: t})
		}
	}
	return nil
}

// resolveType resolves e. Inside a shape declaration scope is that shape,
// whose parameters are then in scope.
func (b *builder) resolveType(e TypeExpr, scope *Shape) (Type, error) {
	switch e.Kind {
	case TypeExprUnit:
		return Unit, nil
	case TypeExprRegion:
		return nil, malformedf("expected a type, found region %s", e.Region)
	case TypeExprRef:
		r, err := b.regionRef(e.Region, scope)
		if err != nil {
			return nil, err
		}
		elem, err := b.resolveType(*e.Elem, scope)
		if err != nil {
			return nil, err
		}
		return &Ref{Region: r, Mut: e.Mut, Elem: elem}, nil
	case TypeExprNamed:
		return b.resolveNamed(e, scope)
	default:
		return nil, malformedf("unknown type expression")
	}
}

func (b *builder) resolveNamed(e TypeExpr, scope *Shape) (Type, error) {
	if scope != nil {
		for i, p := range scope.Params {
			if p.Kind == TypeParam && p.Name == e.Name {
				if len(e.Args) > 0 {
					return nil, malformedf("type parameter %s takes no arguments", e.Name)
				}
				return &Param{Index: i, Name: p.Name}, nil
			}
		}
	}
	if builtinScalars[e.Name] {
		if len(e.Args) > 0 {
			return nil, malformedf("scalar %s takes no arguments", e.Name)
		}
		if e.Name == "()" {
			return Unit, nil
		}
		return &Scalar{Name: e.Name}, nil
	}
	shape, ok := b.shapeByName[e.Name]
	if !ok {
		return nil, malformedf("undeclared struct %s", e.Name)
	}
	if len(e.Args) != len(shape.Params) {
		return nil, malformedf("struct %s takes %d parameters, found %d", e.Name, len(shape.Params), len(e.Args))
	}
	args := make([]Arg, len(e.Args))
	for i, ae := range e.Args {
		param := shape.Params[i]
		switch {
		case param.Kind == RegionParam && ae.Kind == TypeExprRegion:
			r, err := b.regionRef(ae.Region, scope)
			if err != nil {
				return nil, err
			}
			args[i] = Arg{Region: r}
		case param.Kind == RegionParam:
			return nil, malformedf("struct %s: parameter %s expects a region", e.Name, param.Name)
		case ae.Kind == TypeExprRegion:
			return nil, malformedf("struct %s: parameter %s expects a type", e.Name, param.Name)
		default:
			t, err := b.resolveType(ae, scope)
			if err != nil {
				return nil, err
			}
			args[i] = Arg{Type: t}
		}
	}
	return &Struct{Shape: shape, Args: args}, nil
}

func (b *builder) regionRef(name string, scope *Shape) (*Region, error) {
	if !isRegionName(name) {
		return nil, malformedf("invalid region name %q", name)
	}
	if scope == nil {
		return b.region(name), nil
	}
	for _, p := range scope.Params {
		if p.Kind == RegionParam && p.Name == name {
			return p.region, nil
		}
	}
	if name == StaticRegion || name == AnonymousRegion {
		return b.region(name), nil
	}
	return nil, malformedf("region %s is not a parameter of %s", name, scope.Name)
}

// fieldType returns the concrete type of field i of st. Field types are
// substituted once per instantiation.
func (b *builder) fieldType(st *Struct, i int) Type {
	key := st.String()
	types, ok := b.instances[key]
	if !ok {
		types = make([]Type, len(st.Shape.Fields))
		for j, f := range st.Shape.Fields {
			types[j] = Subst(f.Type, st.Args)
		}
		b.instances[key] = types
	}
	return types[i]
}

// =============================================================================
// Variables
// =============================================================================

func (b *builder) declareVars(src *Source) error {
	for _, d := range src.Vars {
		if _, dup := b.prog.varByName[d.Name]; dup {
			return malformedf("line %d: variable %s declared twice", d.Line, d.Name)
		}
		t, err := b.resolveType(d.Type, nil)
		if err != nil {
			return errors.WithMessagef(err, "line %d: variable %s", d.Line, d.Name)
		}
		v := &Var{ID: VarID(len(b.prog.vars)), Name: d.Name, Type: t}
		b.prog.vars = append(b.prog.vars, v)
		b.prog.varByName[d.Name] = v
	}
	return nil
}

// =============================================================================
// Blocks
// =============================================================================

func (b *builder) declareBlocks(src *Source) error {
	if len(src.Blocks) == 0 {
		return malformedf("program has no blocks")
	}
	p := b.prog
	for i, d := range src.Blocks {
		if _, dup := p.blockByName[d.Name]; dup {
			return malformedf("line %d: block %s declared twice", d.Line, d.Name)
		}
		blk := &Block{ID: BlockID(i), Name: d.Name}
		p.blocks = append(p.blocks, blk)
		p.blockByName[d.Name] = blk
	}
	for i, d := range src.Blocks {
		blk := p.blocks[i]
		for _, name := range d.Goto {
			succ, ok := p.blockByName[name]
			if !ok {
				return malformedf("line %d: block %s jumps to undeclared block %s", d.Line, d.Name, name)
			}
			if succ.ID == 0 {
				return malformedf("line %d: block %s jumps to the start block %s", d.Line, d.Name, succ.Name)
			}
			for _, s := range blk.Succs {
				if s == succ.ID {
					return malformedf("line %d: block %s jumps to %s twice", d.Line, d.Name, name)
				}
			}
			blk.Succs = append(blk.Succs, succ.ID)
			succ.Preds = append(succ.Preds, blk.ID)
		}
	}

	p.graph = cfg.New(blockGraph(p.blocks))
	for i, ok := range p.graph.Reachable() {
		if !ok {
			return malformedf("block %s is unreachable", p.blocks[i].Name)
		}
	}
	return nil
}

// =============================================================================
// Statements
// =============================================================================

func (b *builder) resolveStatements(src *Source) error {
	p := b.prog

	// Number points first: point index successors need every block offset.
	for i, d := range src.Blocks {
		p.offsets = append(p.offsets, len(p.points))
		for j := 0; j <= len(d.Statements); j++ {
			p.points = append(p.points, Point{Block: BlockID(i), Index: j})
		}
	}
	p.succs = make([][]int, len(p.points))
	p.preds = make([][]int, len(p.points))
	for idx, pt := range p.points {
		blk := p.blocks[pt.Block]
		if pt.Index < len(src.Blocks[pt.Block].Statements) {
			p.succs[idx] = []int{idx + 1}
		} else {
			for _, s := range blk.Succs {
				p.succs[idx] = append(p.succs[idx], p.offsets[s])
			}
		}
		for _, s := range p.succs[idx] {
			p.preds[s] = append(p.preds[s], idx)
		}
	}

	for i, d := range src.Blocks {
		blk := p.blocks[i]
		for j, sd := range d.Statements {
			pt := Point{Block: blk.ID, Index: j}
			s, err := b.resolveStmt(sd, pt)
			if err != nil {
				return errors.WithMessagef(err, "line %d: %s/%d `%s`", sd.Line, blk.Name, j, sd.Text)
			}
			blk.Statements = append(blk.Statements, &Statement{
				Point:   pt,
				Stmt:    s,
				Text:    sd.Text,
				Line:    sd.Line,
				Expect:  sd.Expect,
				Expects: sd.Expects,
			})
		}
	}
	return nil
}

func (b *builder) resolveStmt(d StmtDecl, pt Point) (Stmt, error) {
	switch d.Kind {
	case KindNoop:
		return &Noop{}, nil

	case KindAssign:
		dest, src, err := b.resolvePair(d.Dest, d.Src)
		if err != nil {
			return nil, err
		}
		if !SameShape(src.Type(), dest.Type()) {
			return nil, malformedf("cannot assign %s to `%s` of type %s", src.Type(), dest, dest.Type())
		}
		return &Assign{Dest: dest, Src: src, Move: d.Move}, nil

	case KindBorrow:
		if !isRegionName(d.Region) {
			return nil, malformedf("invalid region name %q", d.Region)
		}
		dest, src, err := b.resolvePair(d.Dest, d.Src)
		if err != nil {
			return nil, err
		}
		ref, ok := dest.Type().(*Ref)
		if !ok || ref.Mut != d.Mut || !SameShape(ref.Elem, src.Type()) {
			return nil, malformedf("cannot store a borrow of `%s` in `%s` of type %s", src, dest, dest.Type())
		}
		region := b.region(d.Region)
		loan := &Loan{
			ID:     LoanID(len(b.prog.loans)),
			Point:  pt,
			Place:  src,
			Mut:    d.Mut,
			Region: region,
		}
		b.prog.loans = append(b.prog.loans, loan)
		return &Borrow{Dest: dest, Region: region, Mut: d.Mut, Src: src, Loan: loan}, nil

	case KindInit:
		dest, err := b.resolvePlace(d.Dest)
		if err != nil {
			return nil, err
		}
		args, err := b.resolvePlaces(d.Args)
		if err != nil {
			return nil, err
		}
		return &Init{Dest: dest, Args: args}, nil

	case KindUse:
		places, err := b.resolvePlaces(d.Args)
		if err != nil {
			return nil, err
		}
		return &Use{Places: places}, nil

	case KindDrop:
		place, err := b.resolvePlace(d.Src)
		if err != nil {
			return nil, err
		}
		return &Drop{Place: place}, nil

	case KindStorageDead:
		v, ok := b.prog.varByName[d.Var]
		if !ok {
			return nil, malformedf("undeclared variable %s", d.Var)
		}
		return &StorageDead{Var: v}, nil

	case KindOutlives:
		if !isRegionName(d.Sup) || !isRegionName(d.Sub) {
			return nil, malformedf("invalid outlives constraint %s: %s", d.Sup, d.Sub)
		}
		return &Outlives{Sup: b.region(d.Sup), Sub: b.region(d.Sub)}, nil

	default:
		return nil, malformedf("unknown statement kind %s", d.Kind)
	}
}

func (b *builder) resolvePair(dest, src PlaceExpr) (Place, Place, error) {
	d, err := b.resolvePlace(dest)
	if err != nil {
		return Place{}, Place{}, err
	}
	s, err := b.resolvePlace(src)
	if err != nil {
		return Place{}, Place{}, err
	}
	return d, s, nil
}

func (b *builder) resolvePlaces(exprs []PlaceExpr) ([]Place, error) {
	places := make([]Place, 0, len(exprs))
	for _, e := range exprs {
		p, err := b.resolvePlace(e)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, nil
}

// resolvePlace resolves e, inserting the dereferences that field access
// through references and boxes leaves implicit.
func (b *builder) resolvePlace(e PlaceExpr) (Place, error) {
	v, ok := b.prog.varByName[e.Var]
	if !ok {
		return Place{}, malformedf("undeclared variable %s", e.Var)
	}
	place := Place{Var: v, types: []Type{v.Type}}
	cur := v.Type
	for _, pr := range e.Proj {
		switch pr.Kind {
		case ProjDeref:
			elem, _, ok := Deref(cur)
			if !ok {
				return Place{}, malformedf("cannot dereference `%s` of type %s", place, cur)
			}
			place.Proj = append(place.Proj, DerefProj)
			place.types = append(place.types, elem)
			cur = elem

		case ProjField:
			for {
				if st, ok := cur.(*Struct); ok {
					if i, ok := st.Shape.Field(pr.Field); ok {
						cur = b.fieldType(st, i)
						break
					}
				}
				elem, _, ok := Deref(cur)
				if !ok {
					return Place{}, malformedf("type %s has no field %s", cur, pr.Field)
				}
				place.Proj = append(place.Proj, DerefProj)
				place.types = append(place.types, elem)
				cur = elem
			}
			place.Proj = append(place.Proj, FieldProj(pr.Field))
			place.types = append(place.types, cur)
		}
	}
	return place, nil
}

// ResolvePlace resolves a place expression against the program's variables.
func (p *Program) ResolvePlace(e PlaceExpr) (Place, error) {
	b := &builder{prog: p, instances: make(map[string][]Type)}
	return b.resolvePlace(e)
}

// =============================================================================
// Assertions
// =============================================================================

func (b *builder) resolveAssertions(src *Source) error {
	for _, d := range src.Assertions {
		a, err := b.resolveAssertion(d)
		if err != nil {
			return errors.WithMessagef(err, "line %d: assertion `%s`", d.Line, d.Text)
		}
		b.prog.assertions = append(b.prog.assertions, a)
	}
	return nil
}

func (b *builder) resolveAssertion(d AssertionDecl) (*Assertion, error) {
	a := &Assertion{Kind: d.Kind, Text: d.Text, Line: d.Line}
	switch d.Kind {
	case AssertRegionIn, AssertRegionNotIn, AssertRegionEq, AssertRegionLive, AssertRegionNotLive:
		r, ok := b.prog.regionByName[d.Region]
		if !ok && (d.Region == StaticRegion || d.Region == AnonymousRegion) {
			r, ok = b.region(d.Region), true
		}
		if !ok {
			return nil, malformedf("undeclared region %s", d.Region)
		}
		a.Region = r
	case AssertVarLive, AssertVarNotLive:
		v, ok := b.prog.varByName[d.Var]
		if !ok {
			return nil, malformedf("undeclared variable %s", d.Var)
		}
		a.Var = v
	}

	var err error
	switch d.Kind {
	case AssertRegionIn, AssertRegionNotIn:
		a.Point, err = b.point(d.Point)
	case AssertRegionEq:
		for _, pe := range d.Points {
			pt, perr := b.point(pe)
			if perr != nil {
				return nil, perr
			}
			a.Points = append(a.Points, pt)
		}
	default:
		blk, ok := b.prog.blockByName[d.Block]
		if !ok {
			return nil, malformedf("undeclared block %s", d.Block)
		}
		a.Block = blk
	}
	return a, err
}

func (b *builder) point(e PointExpr) (Point, error) {
	blk, ok := b.prog.blockByName[e.Block]
	if !ok {
		return Point{}, malformedf("undeclared block %s", e.Block)
	}
	if e.Index < 0 || e.Index > len(blk.Statements) {
		return Point{}, malformedf("point %s/%d out of range (block has %d points)",
			e.Block, e.Index, len(blk.Statements)+1)
	}
	return Point{Block: blk.ID, Index: e.Index}, nil
}

// String renders the assertion kind as it is written.
func (k AssertKind) String() string {
	return [...]string{"in", "not in", "==", "live", "not live", "live", "not live"}[k]
}
