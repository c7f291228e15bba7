// Package state implements the Symbolic State (§4.3): an
// immutable-by-convention bundle of a continuation stack, a path trace,
// a path condition, and a versioned environment.
package state

import (
	"context"

	"github.com/swvm/symexec/pkg/ast"
	"github.com/swvm/symexec/pkg/env"
	"github.com/swvm/symexec/pkg/smt"
)

// SymState is one node in the exploration forest. Every transition
// produces a new SymState; the original is never mutated afterward
// (§3 Ownership).
type SymState struct {
	Stack     []ast.Node
	Trace     []string
	Condition smt.Conjunction
	Env       *env.Env

	// AssertLines records the line numbers of Assert nodes seen so far
	// on this path. It doesn't change today's satisfiability semantics
	// (§9: Assert and branch-entry both just constrain) but gives a
	// future extension that must distinguish "assumed" from "must hold"
	// a place to look without touching Condition's shape.
	AssertLines []int
}

// New builds the initial SymState for fn: one formal per parameter
// assigned once (so its current term is the unadorned variable), an
// empty path condition and trace, and a stack holding fn's body reversed
// so LIFO pop order matches source order.
func New(fn *ast.Function) *SymState {
	e := env.New()
	for _, formal := range fn.Formals {
		e.Assign(formal)
	}
	return &SymState{
		Stack:     ast.ReverseBody(fn.Body),
		Trace:     nil,
		Condition: nil,
		Env:       e,
	}
}

// IsTerminated reports whether the continuation stack is empty (§3/§4.3).
func (s *SymState) IsTerminated() bool {
	return len(s.Stack) == 0
}

// IsFeasible reports whether the path condition is satisfiable, per the
// SMT Bridge. treatUnknownAsFeasible carries the caller's
// Config.OnSolverUnknown policy (§6/§7): Keep passes true, so an
// UNKNOWN solver response keeps the state alive; Prune passes false, so
// UNKNOWN is dropped exactly like UNSAT.
func (s *SymState) IsFeasible(ctx context.Context, bridge smt.Bridge, bound int64, treatUnknownAsFeasible bool) (bool, error) {
	status, err := bridge.Check(ctx, s.Condition, bound)
	if err != nil {
		return false, err
	}
	switch status {
	case smt.UNSAT:
		return false, nil
	case smt.UNKNOWN:
		return treatUnknownAsFeasible, nil
	default:
		return true, nil
	}
}

// Witness returns a satisfying assignment restricted to formals: the
// model is requested for exactly those display names, so SSA versions
// such as "a_1" and other locals never appear in it.
func (s *SymState) Witness(ctx context.Context, bridge smt.Bridge, formals []string, bound int64) (map[string]int64, error) {
	return bridge.Model(ctx, s.Condition, formals, bound)
}
