package scenario

import (
	"strconv"

	"github.com/nikomatsakis/borrowck/internal/directive"
	"github.com/nikomatsakis/borrowck/internal/model"
)

// =============================================================================
// Parser
// =============================================================================

// parser is a recursive-descent parser over the tokens of one line.
type parser struct {
	src  string
	toks []token
	pos  int
}

func newParser(src string) (*parser, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return token{kind: tokEOF}
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) isKeyword(s string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == s
}

func (p *parser) errorf(format string, args ...any) error {
	return syntaxf("%q: "+format, append([]any{p.src}, args...)...)
}

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.errorf("expected `%s`, found %s", s, p.peek())
	}
	p.next()
	return nil
}

func (p *parser) expectKeyword(s string) error {
	if !p.isKeyword(s) {
		return p.errorf("expected `%s`, found %s", s, p.peek())
	}
	p.next()
	return nil
}

func (p *parser) expectIdent() (string, error) {
	t := p.next()
	if t.kind != tokIdent {
		return "", p.errorf("expected a name, found %s", t)
	}
	return t.text, nil
}

func (p *parser) expectRegion() (string, error) {
	t := p.next()
	if t.kind != tokRegion {
		return "", p.errorf("expected a region, found %s", t)
	}
	return t.text, nil
}

func (p *parser) expectEOF() error {
	if t := p.peek(); t.kind != tokEOF {
		return p.errorf("unexpected %s", t)
	}
	return nil
}

// =============================================================================
// Places
// =============================================================================

// place := "*" place | postfix
// postfix := (ident | "(" place ")") ("." ident)*
func (p *parser) place() (model.PlaceExpr, error) {
	if p.isPunct("*") {
		p.next()
		inner, err := p.place()
		if err != nil {
			return model.PlaceExpr{}, err
		}
		inner.Proj = append(inner.Proj, model.DerefProj)
		return inner, nil
	}

	var base model.PlaceExpr
	if p.isPunct("(") {
		p.next()
		inner, err := p.place()
		if err != nil {
			return model.PlaceExpr{}, err
		}
		if err := p.expectPunct(")"); err != nil {
			return model.PlaceExpr{}, err
		}
		base = inner
	} else {
		name, err := p.expectIdent()
		if err != nil {
			return model.PlaceExpr{}, err
		}
		base = model.PlaceExpr{Var: name}
	}

	for p.isPunct(".") {
		p.next()
		field, err := p.expectIdent()
		if err != nil {
			return model.PlaceExpr{}, err
		}
		base.Proj = append(base.Proj, model.FieldProj(field))
	}
	return base, nil
}

func (p *parser) placeList(close string) ([]model.PlaceExpr, error) {
	var places []model.PlaceExpr
	for !p.isPunct(close) {
		if len(places) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		pl, err := p.place()
		if err != nil {
			return nil, err
		}
		places = append(places, pl)
	}
	p.next()
	return places, nil
}

// =============================================================================
// Types
// =============================================================================

// typ := "&" region ["mut"] typ | "(" ")" | ident ["<" arg ("," arg)* ">"]
// arg := region | typ
func (p *parser) typ() (model.TypeExpr, error) {
	switch {
	case p.isPunct("&"):
		p.next()
		region, err := p.expectRegion()
		if err != nil {
			return model.TypeExpr{}, err
		}
		mut := false
		if p.isKeyword("mut") {
			p.next()
			mut = true
		}
		elem, err := p.typ()
		if err != nil {
			return model.TypeExpr{}, err
		}
		return model.TypeExpr{Kind: model.TypeExprRef, Region: region, Mut: mut, Elem: &elem}, nil

	case p.isPunct("("):
		p.next()
		if err := p.expectPunct(")"); err != nil {
			return model.TypeExpr{}, err
		}
		return model.TypeExpr{Kind: model.TypeExprUnit}, nil
	}

	name, err := p.expectIdent()
	if err != nil {
		return model.TypeExpr{}, err
	}
	t := model.TypeExpr{Kind: model.TypeExprNamed, Name: name}
	if !p.isPunct("<") {
		return t, nil
	}
	p.next()
	for {
		if p.peek().kind == tokRegion {
			t.Args = append(t.Args, model.TypeExpr{Kind: model.TypeExprRegion, Region: p.next().text})
		} else {
			arg, err := p.typ()
			if err != nil {
				return model.TypeExpr{}, err
			}
			t.Args = append(t.Args, arg)
		}
		if p.isPunct(">") {
			p.next()
			return t, nil
		}
		if err := p.expectPunct(","); err != nil {
			return model.TypeExpr{}, err
		}
	}
}

// ParseType parses a type such as `&'a mut List<()>`.
func ParseType(src string) (model.TypeExpr, error) {
	p, err := newParser(src)
	if err != nil {
		return model.TypeExpr{}, err
	}
	t, err := p.typ()
	if err != nil {
		return model.TypeExpr{}, err
	}
	return t, p.expectEOF()
}

// ParsePlace parses a place such as `*(*list).successor`.
func ParsePlace(src string) (model.PlaceExpr, error) {
	p, err := newParser(src)
	if err != nil {
		return model.PlaceExpr{}, err
	}
	pl, err := p.place()
	if err != nil {
		return model.PlaceExpr{}, err
	}
	return pl, p.expectEOF()
}

// =============================================================================
// Statements
// =============================================================================

// ParseStatement parses one statement line, including a trailing
// expectation directive.
//
//	noop
//	use(P, ...)            drop(P)            StorageDead(x)
//	'a: 'b
//	P = &'r Q              P = &'r mut Q
//	P = Q                  P = move Q
//	P = ()                 P = init(Q, ...)
func ParseStatement(line string) (model.StmtDecl, error) {
	code, comment := directive.Split(line)
	d := model.StmtDecl{Text: code}
	d.Expect, d.Expects = directive.Expectation(comment)
	if code == "" {
		return d, syntaxf("%q: empty statement", line)
	}

	p, err := newParser(code)
	if err != nil {
		return d, err
	}
	if err := p.statement(&d); err != nil {
		return d, err
	}
	return d, p.expectEOF()
}

func (p *parser) statement(d *model.StmtDecl) error {
	head := p.peek()
	if head.kind == tokRegion {
		d.Kind = model.KindOutlives
		d.Sup = p.next().text
		if err := p.expectPunct(":"); err != nil {
			return err
		}
		sub, err := p.expectRegion()
		d.Sub = sub
		return err
	}

	if head.kind == tokIdent {
		call := p.peekAt(1).kind == tokPunct && p.peekAt(1).text == "("
		switch {
		case head.text == "noop" && p.peekAt(1).kind == tokEOF:
			p.next()
			d.Kind = model.KindNoop
			return nil
		case head.text == "use" && call:
			p.next()
			p.next()
			d.Kind = model.KindUse
			args, err := p.placeList(")")
			d.Args = args
			return err
		case head.text == "drop" && call:
			p.next()
			p.next()
			d.Kind = model.KindDrop
			src, err := p.place()
			if err != nil {
				return err
			}
			d.Src = src
			return p.expectPunct(")")
		case (head.text == "StorageDead" || head.text == "storage_dead") && call:
			p.next()
			p.next()
			d.Kind = model.KindStorageDead
			name, err := p.expectIdent()
			if err != nil {
				return err
			}
			d.Var = name
			return p.expectPunct(")")
		}
	}

	dest, err := p.place()
	if err != nil {
		return err
	}
	d.Dest = dest
	if err := p.expectPunct("="); err != nil {
		return err
	}
	return p.rvalue(d)
}

func (p *parser) rvalue(d *model.StmtDecl) error {
	switch {
	case p.isPunct("&"):
		p.next()
		d.Kind = model.KindBorrow
		region, err := p.expectRegion()
		if err != nil {
			return err
		}
		d.Region = region
		if p.isKeyword("mut") {
			p.next()
			d.Mut = true
		}
		src, err := p.place()
		d.Src = src
		return err

	case p.isPunct("(") && p.peekAt(1).kind == tokPunct && p.peekAt(1).text == ")":
		p.next()
		p.next()
		d.Kind = model.KindInit
		return nil

	case p.isKeyword("init") && p.peekAt(1).text == "(":
		p.next()
		p.next()
		d.Kind = model.KindInit
		args, err := p.placeList(")")
		d.Args = args
		return err

	case p.isKeyword("move") && p.peekAt(1).kind != tokEOF:
		p.next()
		d.Kind = model.KindAssign
		d.Move = true
		src, err := p.place()
		d.Src = src
		return err
	}

	d.Kind = model.KindAssign
	src, err := p.place()
	d.Src = src
	return err
}

// =============================================================================
// Assertions
// =============================================================================

// ParseAssertion parses one assertion line.
//
//	'r in B/1        'r not in B/1       'r == {B/0, B/1}
//	x live at B      x not live at B
//	'r live at B     'r not live at B
func ParseAssertion(line string) (model.AssertionDecl, error) {
	code, _ := directive.Split(line)
	d := model.AssertionDecl{Text: code}
	p, err := newParser(code)
	if err != nil {
		return d, err
	}

	head := p.next()
	isRegion := head.kind == tokRegion
	switch {
	case isRegion:
		d.Region = head.text
	case head.kind == tokIdent:
		d.Var = head.text
	default:
		return d, p.errorf("expected a region or a variable, found %s", head)
	}

	negated := false
	if p.isKeyword("not") {
		p.next()
		negated = true
	}

	switch {
	case isRegion && p.isKeyword("in"):
		p.next()
		d.Kind = model.AssertRegionIn
		if negated {
			d.Kind = model.AssertRegionNotIn
		}
		if d.Point, err = p.point(); err != nil {
			return d, err
		}

	case isRegion && !negated && p.isPunct("="):
		p.next()
		if err := p.expectPunct("="); err != nil {
			return d, err
		}
		if err := p.expectPunct("{"); err != nil {
			return d, err
		}
		d.Kind = model.AssertRegionEq
		for !p.isPunct("}") {
			if len(d.Points) > 0 {
				if err := p.expectPunct(","); err != nil {
					return d, err
				}
			}
			pt, err := p.point()
			if err != nil {
				return d, err
			}
			d.Points = append(d.Points, pt)
		}
		p.next()

	case p.isKeyword("live"):
		p.next()
		if err := p.expectKeyword("at"); err != nil {
			return d, err
		}
		block, err := p.expectIdent()
		if err != nil {
			return d, err
		}
		d.Block = block
		switch {
		case isRegion && negated:
			d.Kind = model.AssertRegionNotLive
		case isRegion:
			d.Kind = model.AssertRegionLive
		case negated:
			d.Kind = model.AssertVarNotLive
		default:
			d.Kind = model.AssertVarLive
		}

	default:
		return d, p.errorf("unexpected %s", p.peek())
	}
	return d, p.expectEOF()
}

// point := ident "/" number
func (p *parser) point() (model.PointExpr, error) {
	block, err := p.expectIdent()
	if err != nil {
		return model.PointExpr{}, err
	}
	if err := p.expectPunct("/"); err != nil {
		return model.PointExpr{}, err
	}
	t := p.next()
	if t.kind != tokNumber {
		return model.PointExpr{}, p.errorf("expected a statement index, found %s", t)
	}
	n, err := strconv.Atoi(t.text)
	if err != nil {
		return model.PointExpr{}, p.errorf("bad statement index %s", t.text)
	}
	return model.PointExpr{Block: block, Index: n}, nil
}
