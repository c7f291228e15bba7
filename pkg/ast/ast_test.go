package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swvm/symexec/pkg/ast"
)

func TestReverseBodyRoundtrip(t *testing.T) {
	body := []ast.Node{
		{Kind: ast.KindAssign, Line: 1, Target: "a", Value: ast.IntConst(1)},
		{Kind: ast.KindAssign, Line: 2, Target: "b", Value: ast.IntConst(2)},
		{Kind: ast.KindReturn, Line: 3, Value: ast.Name("a")},
	}

	once := ast.ReverseBody(body)
	require.Len(t, once, len(body))
	assert.Equal(t, body[2], once[0])
	assert.Equal(t, body[0], once[2])

	twice := ast.ReverseBody(once)
	assert.Equal(t, body, twice)
}

func TestReverseBodyDoesNotAliasInput(t *testing.T) {
	body := []ast.Node{
		{Kind: ast.KindPass, Line: 1},
		{Kind: ast.KindBreak, Line: 2},
	}
	reversed := ast.ReverseBody(body)
	reversed[0].Line = 99
	assert.Equal(t, 2, body[1].Line, "ReverseBody must copy, not alias, the input slice")
}

func TestExpressionUnparse(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expression
		want string
	}{
		{"name", ast.Name("x"), "x"},
		{"int", ast.IntConst(42), "42"},
		{"bool", ast.BoolConst(true), "true"},
		{"binop", ast.Bin(ast.OpAdd, ast.Name("a"), ast.IntConst(1)), "(a + 1)"},
		{"not", ast.Not(ast.BoolConst(false)), "not false"},
		{"eq", ast.Cmp(ast.OpEq, ast.Name("a"), ast.IntConst(0)), "a == 0"},
		{"neq", ast.Cmp(ast.OpNeq, ast.Name("a"), ast.IntConst(0)), "a != 0"},
		{"gt", ast.Cmp(ast.OpGt, ast.Name("a"), ast.Name("b")), "a > b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.Unparse())
		})
	}
}

func TestNodeUnparse(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
		want string
	}{
		{"return", ast.Node{Kind: ast.KindReturn, Value: ast.Name("a")}, "return a"},
		{"assert", ast.Node{Kind: ast.KindAssert, Test: ast.Cmp(ast.OpLt, ast.Name("a"), ast.IntConst(5))}, "assert a < 5"},
		{"assign", ast.Node{Kind: ast.KindAssign, Target: "a", Value: ast.IntConst(0)}, "a = 0"},
		{"break", ast.Node{Kind: ast.KindBreak}, "break"},
		{"continue", ast.Node{Kind: ast.KindContinue}, "continue"},
		{"pass", ast.Node{Kind: ast.KindPass}, "pass"},
		{"call", ast.Node{Kind: ast.KindCall, Target: "target"}, "target()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.Unparse())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "While", ast.KindWhile.String())
	assert.Contains(t, ast.Kind(99).String(), "Kind(99)")
}
