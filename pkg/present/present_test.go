package present_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swvm/symexec/pkg/ast"
	"github.com/swvm/symexec/pkg/present"
)

func TestFunctionTextRendersIfWhileElse(t *testing.T) {
	fn := &ast.Function{
		Name:    "f",
		Formals: []string{"a", "b"},
		Body: []ast.Node{
			{
				Kind: ast.KindIf,
				Line: 1,
				Test: ast.Cmp(ast.OpGt, ast.Name("a"), ast.IntConst(0)),
				Body: []ast.Node{
					{Kind: ast.KindAssign, Line: 2, Target: "a", Value: ast.IntConst(1)},
				},
				Else: []ast.Node{
					{Kind: ast.KindReturn, Line: 3, Value: ast.Name("b")},
				},
			},
		},
	}

	text := present.FunctionText(fn)
	assert.Contains(t, text, "def f(a, b):\n")
	assert.Contains(t, text, "if a > 0:\n")
	assert.Contains(t, text, "a = 1\n")
	assert.Contains(t, text, "else:\n")
	assert.Contains(t, text, "return b\n")
}

func TestFunctionTextNestedWhile(t *testing.T) {
	fn := &ast.Function{
		Name:    "g",
		Formals: []string{"x"},
		Body: []ast.Node{
			{
				Kind: ast.KindWhile,
				Line: 1,
				Test: ast.BoolConst(true),
				Body: []ast.Node{
					{Kind: ast.KindBreak, Line: 2},
				},
			},
		},
	}
	text := present.FunctionText(fn)
	assert.Contains(t, text, "while true:\n")
	assert.Contains(t, text, "    break\n")
}
