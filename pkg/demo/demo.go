// Package demo holds the hand-built ast.FunctionSource values cmd/symexec
// and cmd/symexecd both operate on: the four worked examples from
// original_source (example1.py..example4.py) and the two additional
// synthetic scenarios spec.md's §8 names, identified here by the same
// scenario numbering.
package demo

import (
	"fmt"

	"github.com/swvm/symexec/pkg/ast"
)

// Scenario names a demo program and the FunctionSource that builds it.
type Scenario struct {
	Name        string
	Description string
	Source      ast.FunctionSource
}

// All returns every scenario, in the order spec.md's §8 lists them.
func All() []Scenario {
	return []Scenario{
		{"scenario1", "unbounded while under a branch, non_reachable(a)", ast.FunctionSourceFunc(scenario1)},
		{"scenario2", "assert + while + continue, original example2.py", ast.FunctionSourceFunc(scenario2)},
		{"scenario3", "six sequential if/else branches fanning out to 64 paths", ast.FunctionSourceFunc(scenario3)},
		{"scenario4", "nested while accumulator, original example4.py", ast.FunctionSourceFunc(scenario4)},
		{"scenario5", "dead branch under `if False`, early-stop budget", ast.FunctionSourceFunc(scenario5)},
		{"scenario6", "break discards an active While before reaching target", ast.FunctionSourceFunc(scenario6)},
	}
}

// Find looks up a scenario by name.
func Find(name string) (Scenario, error) {
	for _, s := range All() {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("demo: no such scenario %q", name)
}

// scenario1: original_source/example1.py's non_reachable(a).
//
//	if a < 5:
//	    while True:
//	        a = a + 1
//	        if a > 10:
//	            target()
//	            return a
//	else:
//	    return a
func scenario1() (*ast.Function, error) {
	a := ast.Name("a")
	body := []ast.Node{
		{
			Kind: ast.KindIf,
			Line: 1,
			Test: ast.Cmp(ast.OpLt, a, ast.IntConst(5)),
			Body: []ast.Node{
				{
					Kind: ast.KindWhile,
					Line: 2,
					Test: ast.BoolConst(true),
					Body: []ast.Node{
						{Kind: ast.KindAssign, Line: 3, Target: "a", Value: ast.Bin(ast.OpAdd, a, ast.IntConst(1))},
						{
							Kind: ast.KindIf,
							Line: 4,
							Test: ast.Cmp(ast.OpGt, a, ast.IntConst(10)),
							Body: []ast.Node{
								{Kind: ast.KindCall, Line: 5, Target: "target"},
								{Kind: ast.KindReturn, Line: 6, Value: a},
							},
						},
					},
				},
			},
			Else: []ast.Node{
				{Kind: ast.KindReturn, Line: 8, Value: a},
			},
		},
	}
	return &ast.Function{Name: "non_reachable", Formals: []string{"a"}, Body: body}, nil
}

// scenario2: original_source/example2.py's non_reachable(a, b).
//
//	assert a < 5
//	while b > a:
//	    a = a + 1
//	    trace()
//	    if a > 15:
//	        target()
//	        return a
//	    else:
//	        continue
//	        return a
func scenario2() (*ast.Function, error) {
	a := ast.Name("a")
	b := ast.Name("b")
	body := []ast.Node{
		{Kind: ast.KindAssert, Line: 1, Test: ast.Cmp(ast.OpLt, a, ast.IntConst(5))},
		{
			Kind: ast.KindWhile,
			Line: 2,
			Test: ast.Cmp(ast.OpGt, b, a),
			Body: []ast.Node{
				{Kind: ast.KindAssign, Line: 3, Target: "a", Value: ast.Bin(ast.OpAdd, a, ast.IntConst(1))},
				{Kind: ast.KindCall, Line: 4, Target: "trace"},
				{
					Kind: ast.KindIf,
					Line: 5,
					Test: ast.Cmp(ast.OpGt, a, ast.IntConst(15)),
					Body: []ast.Node{
						{Kind: ast.KindCall, Line: 6, Target: "target"},
						{Kind: ast.KindReturn, Line: 7, Value: a},
					},
					Else: []ast.Node{
						{Kind: ast.KindContinue, Line: 9},
						{Kind: ast.KindReturn, Line: 10, Value: a},
					},
				},
			},
		},
	}
	return &ast.Function{Name: "non_reachable", Formals: []string{"a", "b"}, Body: body}, nil
}

// scenario3: original_source/example3.py's many_branches(a..f): six
// sequential independent if/else statements, each assigning z, followed
// by target(). Built with a loop since the six branches are structurally
// identical.
func scenario3() (*ast.Function, error) {
	formals := []string{"a", "b", "c", "d", "e", "f"}
	var body []ast.Node
	line := 1
	for _, name := range formals {
		body = append(body, ast.Node{
			Kind: ast.KindIf,
			Line: line,
			Test: ast.Cmp(ast.OpEq, ast.Name(name), ast.IntConst(1)),
			Body: []ast.Node{
				{Kind: ast.KindAssign, Line: line + 1, Target: "z", Value: ast.IntConst(1)},
			},
			Else: []ast.Node{
				{Kind: ast.KindAssign, Line: line + 1, Target: "z", Value: ast.IntConst(2)},
			},
		})
		line += 2
	}
	body = append(body, ast.Node{Kind: ast.KindCall, Line: line, Target: "target"})
	return &ast.Function{Name: "many_branches", Formals: formals, Body: body}, nil
}

// scenario4: original_source/example4.py's non_reachable(a, b).
//
//	c_ = 0
//	assert a > 3
//	assert b > 0
//	while a != 0:
//	    inner_ = b
//	    while inner_ != 0:
//	        c_ = c_ + 1
//	        inner_ = inner_ - 1
//	    a = a - 1
//	assert c_ > 12
//	target()
//	return c_
func scenario4() (*ast.Function, error) {
	a := ast.Name("a")
	b := ast.Name("b")
	c := ast.Name("c_")
	inner := ast.Name("inner_")
	body := []ast.Node{
		{Kind: ast.KindAssign, Line: 1, Target: "c_", Value: ast.IntConst(0)},
		{Kind: ast.KindAssert, Line: 2, Test: ast.Cmp(ast.OpGt, a, ast.IntConst(3))},
		{Kind: ast.KindAssert, Line: 3, Test: ast.Cmp(ast.OpGt, b, ast.IntConst(0))},
		{
			Kind: ast.KindWhile,
			Line: 4,
			Test: ast.Cmp(ast.OpNeq, a, ast.IntConst(0)),
			Body: []ast.Node{
				{Kind: ast.KindAssign, Line: 5, Target: "inner_", Value: b},
				{
					Kind: ast.KindWhile,
					Line: 6,
					Test: ast.Cmp(ast.OpNeq, inner, ast.IntConst(0)),
					Body: []ast.Node{
						{Kind: ast.KindAssign, Line: 7, Target: "c_", Value: ast.Bin(ast.OpAdd, c, ast.IntConst(1))},
						{Kind: ast.KindAssign, Line: 8, Target: "inner_", Value: ast.Bin(ast.OpSub, inner, ast.IntConst(1))},
					},
				},
				{Kind: ast.KindAssign, Line: 9, Target: "a", Value: ast.Bin(ast.OpSub, a, ast.IntConst(1))},
			},
		},
		{Kind: ast.KindAssert, Line: 10, Test: ast.Cmp(ast.OpGt, c, ast.IntConst(12))},
		{Kind: ast.KindCall, Line: 11, Target: "target"},
		{Kind: ast.KindReturn, Line: 12, Value: c},
	}
	return &ast.Function{Name: "non_reachable", Formals: []string{"a", "b"}, Body: body}, nil
}

// scenario5: spec.md §8 scenario 5.
//
//	i = 0
//	if a < 10:
//	    while True:
//	        a = a + 1
//	else:
//	    target()
//	if False:
//	    target()
//	return a
func scenario5() (*ast.Function, error) {
	a := ast.Name("a")
	body := []ast.Node{
		{Kind: ast.KindAssign, Line: 1, Target: "i", Value: ast.IntConst(0)},
		{
			Kind: ast.KindIf,
			Line: 2,
			Test: ast.Cmp(ast.OpLt, a, ast.IntConst(10)),
			Body: []ast.Node{
				{
					Kind: ast.KindWhile,
					Line: 3,
					Test: ast.BoolConst(true),
					Body: []ast.Node{
						{Kind: ast.KindAssign, Line: 4, Target: "a", Value: ast.Bin(ast.OpAdd, a, ast.IntConst(1))},
					},
				},
			},
			Else: []ast.Node{
				{Kind: ast.KindCall, Line: 6, Target: "target"},
			},
		},
		{
			Kind: ast.KindIf,
			Line: 7,
			Test: ast.BoolConst(false),
			Body: []ast.Node{
				{Kind: ast.KindCall, Line: 8, Target: "target"},
			},
		},
		{Kind: ast.KindReturn, Line: 9, Value: a},
	}
	return &ast.Function{Name: "dead_branch", Formals: []string{"a"}, Body: body}, nil
}

// scenario6: spec.md §8 scenario 6.
//
//	x = 0
//	while True:
//	    x = x + 1
//	    if x > 19:
//	        break
//	target()
func scenario6() (*ast.Function, error) {
	x := ast.Name("x")
	body := []ast.Node{
		{Kind: ast.KindAssign, Line: 1, Target: "x", Value: ast.IntConst(0)},
		{
			Kind: ast.KindWhile,
			Line: 2,
			Test: ast.BoolConst(true),
			Body: []ast.Node{
				{Kind: ast.KindAssign, Line: 3, Target: "x", Value: ast.Bin(ast.OpAdd, x, ast.IntConst(1))},
				{
					Kind: ast.KindIf,
					Line: 4,
					Test: ast.Cmp(ast.OpGt, x, ast.IntConst(19)),
					Body: []ast.Node{
						{Kind: ast.KindBreak, Line: 5},
					},
				},
			},
		},
		{Kind: ast.KindCall, Line: 6, Target: "target"},
	}
	return &ast.Function{Name: "break_then_target", Formals: []string{"x"}, Body: body}, nil
}
