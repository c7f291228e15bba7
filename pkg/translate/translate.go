// Package translate implements the AST-to-Term Translator (§4.2): a pure,
// environment-parameterized mapping from ast.Expression trees to smt
// terms. It reads the environment but never mutates it.
package translate

import (
	"errors"
	"fmt"

	"github.com/swvm/symexec/pkg/ast"
	"github.com/swvm/symexec/pkg/env"
	"github.com/swvm/symexec/pkg/smt"
)

// ErrUnsupportedConstruct is returned for any AST node or operator
// outside the supported subset (§7).
var ErrUnsupportedConstruct = errors.New("translate: unsupported construct")

// Expr translates an arithmetic expression: Name, IntConst, or BinOp
// over {+, -, *, /} recursively. Division lowers to smt.Div (Prolog
// "//") — see pkg/smt's doc comment on Div for the chosen semantics.
func Expr(e ast.Expression, e2 *env.Env) (smt.IntTerm, error) {
	switch e.Kind {
	case ast.ExprName:
		term, err := e2.Current(e.Name)
		if err != nil {
			return nil, err
		}
		return term, nil
	case ast.ExprIntConst:
		return smt.IntConst{Value: e.Int}, nil
	case ast.ExprBinOp:
		left, err := Expr(*e.Left, e2)
		if err != nil {
			return nil, err
		}
		right, err := Expr(*e.Right, e2)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case ast.OpAdd:
			return smt.Add(left, right), nil
		case ast.OpSub:
			return smt.Sub(left, right), nil
		case ast.OpMul:
			return smt.Mul(left, right), nil
		case ast.OpDiv:
			if e.Right.Kind == ast.ExprIntConst && e.Right.Int == 0 {
				return nil, fmt.Errorf("%w: division by literal zero", ErrUnsupportedConstruct)
			}
			return smt.Div(left, right), nil
		default:
			return nil, fmt.Errorf("%w: binary operator %q", ErrUnsupportedConstruct, e.Op)
		}
	default:
		return nil, fmt.Errorf("%w: expression kind %v in arithmetic position", ErrUnsupportedConstruct, e.Kind)
	}
}

// Cond translates a boolean condition: Compare over one of {>, <, =, !=},
// BoolConst, or UnaryOp(Not, ...) recursing. Compound boolean connectives
// are unsupported (§4.2).
func Cond(e ast.Expression, e2 *env.Env) (smt.BoolTerm, error) {
	switch e.Kind {
	case ast.ExprBoolConst:
		return smt.BoolConst{Value: e.Bool}, nil
	case ast.ExprUnaryOp:
		if e.Unary != ast.OpNot {
			return nil, fmt.Errorf("%w: unary operator %q", ErrUnsupportedConstruct, e.Unary)
		}
		inner, err := Cond(*e.Operand, e2)
		if err != nil {
			return nil, err
		}
		return smt.Not{X: inner}, nil
	case ast.ExprCompare:
		left, err := Expr(*e.Left, e2)
		if err != nil {
			return nil, err
		}
		right, err := Expr(*e.Right, e2)
		if err != nil {
			return nil, err
		}
		switch e.Cmp {
		case ast.OpGt:
			return smt.Gt(left, right), nil
		case ast.OpLt:
			return smt.Lt(left, right), nil
		case ast.OpEq:
			return smt.Eq(left, right), nil
		case ast.OpNeq:
			return smt.Neq(left, right), nil
		default:
			return nil, fmt.Errorf("%w: comparison operator %q", ErrUnsupportedConstruct, e.Cmp)
		}
	default:
		return nil, fmt.Errorf("%w: expression kind %v in boolean position", ErrUnsupportedConstruct, e.Kind)
	}
}
