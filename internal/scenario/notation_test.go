package scenario_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikomatsakis/borrowck/internal/model"
	"github.com/nikomatsakis/borrowck/internal/scenario"
)

func TestParseStatement(t *testing.T) {
	tests := []struct {
		line string
		kind model.StmtKind
		// check inspects kind-specific fields.
		check func(t *testing.T, d model.StmtDecl)
	}{
		{"noop", model.KindNoop, nil},
		{"use(a, (*b).c)", model.KindUse, func(t *testing.T, d model.StmtDecl) {
			require.Len(t, d.Args, 2)
			assert.Equal(t, "a", d.Args[0].Var)
			assert.Equal(t, "b", d.Args[1].Var)
			assert.Equal(t, []model.Projection{model.DerefProj, model.FieldProj("c")}, d.Args[1].Proj)
		}},
		{"use()", model.KindUse, func(t *testing.T, d model.StmtDecl) {
			assert.Empty(t, d.Args)
		}},
		{"drop(v)", model.KindDrop, func(t *testing.T, d model.StmtDecl) {
			assert.Equal(t, "v", d.Src.Var)
		}},
		{"StorageDead(x)", model.KindStorageDead, func(t *testing.T, d model.StmtDecl) {
			assert.Equal(t, "x", d.Var)
		}},
		{"'a: 'b", model.KindOutlives, func(t *testing.T, d model.StmtDecl) {
			assert.Equal(t, "'a", d.Sup)
			assert.Equal(t, "'b", d.Sub)
		}},
		{"p = &'r x", model.KindBorrow, func(t *testing.T, d model.StmtDecl) {
			assert.Equal(t, "'r", d.Region)
			assert.False(t, d.Mut)
		}},
		{"list = &'r1 mut *(*list).successor", model.KindBorrow, func(t *testing.T, d model.StmtDecl) {
			assert.True(t, d.Mut)
			assert.Equal(t, "list", d.Dest.Var)
			assert.Len(t, d.Src.Proj, 3)
		}},
		{"x = y", model.KindAssign, func(t *testing.T, d model.StmtDecl) {
			assert.False(t, d.Move)
			assert.Equal(t, "y", d.Src.Var)
		}},
		{"x = move y", model.KindAssign, func(t *testing.T, d model.StmtDecl) {
			assert.True(t, d.Move)
		}},
		{"move = y", model.KindAssign, func(t *testing.T, d model.StmtDecl) {
			assert.Equal(t, "move", d.Dest.Var)
		}},
		{"x = ()", model.KindInit, func(t *testing.T, d model.StmtDecl) {
			assert.Empty(t, d.Args)
		}},
		{"x = init(a, b)", model.KindInit, func(t *testing.T, d model.StmtDecl) {
			assert.Len(t, d.Args, 2)
		}},
		{"use(p) //! borrowed", model.KindUse, func(t *testing.T, d model.StmtDecl) {
			assert.True(t, d.Expects)
			assert.Equal(t, "borrowed", d.Expect)
			assert.Equal(t, "use(p)", d.Text)
		}},
		{"use(p) // just a note", model.KindUse, func(t *testing.T, d model.StmtDecl) {
			assert.False(t, d.Expects)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			d, err := scenario.ParseStatement(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, d.Kind)
			if tt.check != nil {
				tt.check(t, d)
			}
		})
	}
}

func TestParseStatementErrors(t *testing.T) {
	lines := []string{
		"",
		"// only a comment",
		"x = = y",
		"use(x",
		"p = &x",
		"p = &'r",
		"'a: b",
		"x = y z",
		"x $ y",
		"p = &' x",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			_, err := scenario.ParseStatement(line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrMalformedProgram), "%v", err)
		})
	}
}

func TestParseAssertion(t *testing.T) {
	tests := []struct {
		line string
		want model.AssertionDecl
	}{
		{"'r in B/1", model.AssertionDecl{
			Kind: model.AssertRegionIn, Region: "'r", Point: model.PointExpr{Block: "B", Index: 1},
		}},
		{"'r not in B/0", model.AssertionDecl{
			Kind: model.AssertRegionNotIn, Region: "'r", Point: model.PointExpr{Block: "B"},
		}},
		{"'r == {A/0, B/2}", model.AssertionDecl{
			Kind: model.AssertRegionEq, Region: "'r",
			Points: []model.PointExpr{{Block: "A"}, {Block: "B", Index: 2}},
		}},
		{"'r == {}", model.AssertionDecl{Kind: model.AssertRegionEq, Region: "'r"}},
		{"x live at LOOP", model.AssertionDecl{Kind: model.AssertVarLive, Var: "x", Block: "LOOP"}},
		{"x not live at LOOP", model.AssertionDecl{Kind: model.AssertVarNotLive, Var: "x", Block: "LOOP"}},
		{"'r live at LOOP", model.AssertionDecl{Kind: model.AssertRegionLive, Region: "'r", Block: "LOOP"}},
		{"'r not live at LOOP", model.AssertionDecl{Kind: model.AssertRegionNotLive, Region: "'r", Block: "LOOP"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := scenario.ParseAssertion(tt.line)
			require.NoError(t, err)
			tt.want.Text = tt.line
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAssertionErrors(t *testing.T) {
	lines := []string{
		"'r in B",
		"'r in B/x",
		"x in B/0",
		"'r not == {}",
		"'r == {A/0 B/1}",
		"x live B",
		"/ live at B",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			_, err := scenario.ParseAssertion(line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrMalformedProgram), "%v", err)
		})
	}
}

func TestParseType(t *testing.T) {
	e, err := scenario.ParseType("&'a mut List<'b, Box<()>>")
	require.NoError(t, err)
	assert.Equal(t, model.TypeExprRef, e.Kind)
	assert.True(t, e.Mut)
	require.NotNil(t, e.Elem)
	assert.Equal(t, "List", e.Elem.Name)
	require.Len(t, e.Elem.Args, 2)
	assert.Equal(t, model.TypeExprRegion, e.Elem.Args[0].Kind)
	assert.Equal(t, model.TypeExprUnit, e.Elem.Args[1].Args[0].Kind)

	_, err = scenario.ParseType("List<")
	assert.Error(t, err)
}
