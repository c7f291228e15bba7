package demo

import (
	"errors"
	"fmt"

	"github.com/swvm/symexec/pkg/ast"
)

// ErrBudgetExceeded is returned when a concrete replay runs past its
// step budget without returning — almost always a sign the witness
// doesn't actually terminate the loop it was meant to drive through.
var ErrBudgetExceeded = errors.New("demo: replay exceeded its step budget")

// ReplayReport is the result of concretely executing a demo function
// with a witness assignment: the same thing original_source's
// example2.py did at its very end by calling `non_reachable(4, 16)`
// with the engine's own suggested inputs, to sanity-check the witness
// against the real semantics.
type ReplayReport struct {
	ReturnValue  int64
	ReturnedAny  bool
	HitTarget    bool
	LoopVisits   int // original's trace()-style counter; never fed back to the engine (§9)
	StepsExecuted int
}

// Replay concretely executes fn with formals bound to witness, up to
// maxSteps statement executions. It is a plain tree-walking interpreter
// over ast.Node/Expression — no symbolic state, no SMT bridge — used
// purely to validate a witness the engine produced, the concrete-replay
// role original_source reserves for Python's own interpreter.
func Replay(fn *ast.Function, witness map[string]int64, maxSteps int) (ReplayReport, error) {
	vars := make(map[string]int64, len(fn.Formals))
	for _, name := range fn.Formals {
		vars[name] = witness[name]
	}
	r := &replayer{vars: vars, maxSteps: maxSteps}
	ret, returned, err := r.execBlock(fn.Body)
	if err != nil {
		return ReplayReport{}, err
	}
	return ReplayReport{
		ReturnValue:   ret,
		ReturnedAny:   returned,
		HitTarget:     r.hitTarget,
		LoopVisits:    r.loopVisits,
		StepsExecuted: r.steps,
	}, nil
}

type replayer struct {
	vars       map[string]int64
	steps      int
	maxSteps   int
	hitTarget  bool
	loopVisits int
}

// breakSignal/continueSignal are sentinel errors execBlock/execNode use
// to unwind out of a while loop's body, mirroring the stepper's own
// pop-until-While discipline but for a concrete, non-symbolic walk.
var breakSignal = errors.New("demo: break")
var continueSignal = errors.New("demo: continue")

// execBlock runs body in order, stopping early on return, break, or
// continue. The bool result reports whether a return statement fired.
func (r *replayer) execBlock(body []ast.Node) (int64, bool, error) {
	for _, n := range body {
		ret, returned, err := r.execNode(n)
		if err != nil {
			return 0, false, err
		}
		if returned {
			return ret, true, nil
		}
	}
	return 0, false, nil
}

func (r *replayer) execNode(n ast.Node) (int64, bool, error) {
	r.steps++
	if r.steps > r.maxSteps {
		return 0, false, ErrBudgetExceeded
	}

	switch n.Kind {
	case ast.KindReturn:
		v, err := r.eval(n.Value)
		return v, true, err
	case ast.KindAssert:
		ok, err := r.evalBool(n.Test)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			return 0, false, fmt.Errorf("demo: assertion failed at line %d", n.Line)
		}
		return 0, false, nil
	case ast.KindAssign:
		v, err := r.eval(n.Value)
		if err != nil {
			return 0, false, err
		}
		r.vars[n.Target] = v
		return 0, false, nil
	case ast.KindIf:
		ok, err := r.evalBool(n.Test)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return r.execBlock(n.Body)
		}
		return r.execBlock(n.Else)
	case ast.KindWhile:
		for {
			ok, err := r.evalBool(n.Test)
			if err != nil {
				return 0, false, err
			}
			if !ok {
				return 0, false, nil
			}
			r.loopVisits++
			ret, returned, err := r.execLoopBody(n.Body)
			if err != nil {
				if errors.Is(err, breakSignal) {
					return 0, false, nil
				}
				if errors.Is(err, continueSignal) {
					continue
				}
				return 0, false, err
			}
			if returned {
				return ret, true, nil
			}
		}
	case ast.KindBreak:
		return 0, false, breakSignal
	case ast.KindContinue:
		return 0, false, continueSignal
	case ast.KindPass:
		return 0, false, nil
	case ast.KindCall:
		if n.Target == "target" {
			r.hitTarget = true
		}
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("demo: unsupported node kind %v during replay", n.Kind)
	}
}

// execLoopBody is execBlock specialized to propagate break/continue
// signals out to the enclosing While instead of treating them as errors.
func (r *replayer) execLoopBody(body []ast.Node) (int64, bool, error) {
	for _, n := range body {
		ret, returned, err := r.execNode(n)
		if err != nil {
			return 0, false, err
		}
		if returned {
			return ret, true, nil
		}
	}
	return 0, false, nil
}

func (r *replayer) eval(e ast.Expression) (int64, error) {
	switch e.Kind {
	case ast.ExprName:
		v, ok := r.vars[e.Name]
		if !ok {
			return 0, fmt.Errorf("demo: undefined read of %q during replay", e.Name)
		}
		return v, nil
	case ast.ExprIntConst:
		return e.Int, nil
	case ast.ExprBinOp:
		l, err := r.eval(*e.Left)
		if err != nil {
			return 0, err
		}
		rv, err := r.eval(*e.Right)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case ast.OpAdd:
			return l + rv, nil
		case ast.OpSub:
			return l - rv, nil
		case ast.OpMul:
			return l * rv, nil
		case ast.OpDiv:
			if rv == 0 {
				return 0, fmt.Errorf("demo: division by zero during replay")
			}
			return floorDiv(l, rv), nil
		default:
			return 0, fmt.Errorf("demo: unsupported operator %q during replay", e.Op)
		}
	default:
		return 0, fmt.Errorf("demo: expression kind %v in arithmetic position during replay", e.Kind)
	}
}

func (r *replayer) evalBool(e ast.Expression) (bool, error) {
	switch e.Kind {
	case ast.ExprBoolConst:
		return e.Bool, nil
	case ast.ExprUnaryOp:
		inner, err := r.evalBool(*e.Operand)
		if err != nil {
			return false, err
		}
		return !inner, nil
	case ast.ExprCompare:
		l, err := r.eval(*e.Left)
		if err != nil {
			return false, err
		}
		rv, err := r.eval(*e.Right)
		if err != nil {
			return false, err
		}
		switch e.Cmp {
		case ast.OpGt:
			return l > rv, nil
		case ast.OpLt:
			return l < rv, nil
		case ast.OpEq:
			return l == rv, nil
		case ast.OpNeq:
			return l != rv, nil
		default:
			return false, fmt.Errorf("demo: unsupported comparator %q during replay", e.Cmp)
		}
	default:
		return false, fmt.Errorf("demo: expression kind %v in boolean position during replay", e.Kind)
	}
}

// floorDiv matches pkg/smt.Div's Prolog "//" semantics (floor, not
// truncate-toward-zero) so a replayed witness agrees with what the
// solver reasoned about.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
