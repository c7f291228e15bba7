package engine

import (
	"fmt"

	"github.com/swvm/symexec/pkg/ast"
	"github.com/swvm/symexec/pkg/env"
	"github.com/swvm/symexec/pkg/smt"
	"github.com/swvm/symexec/pkg/state"
	"github.com/swvm/symexec/pkg/translate"
)

// stepOne pops s's top continuation node and returns its one or two
// successors per §4.4's transition table. Target-reaching successors are
// appended to sch.Reaching immediately, at creation time, so they're
// visible even if the same round later also classifies them as
// terminated (§4.5 step 3).
func (sch *Scheduler) stepOne(s *state.SymState) ([]*state.SymState, error) {
	if len(s.Stack) == 0 {
		return nil, fmt.Errorf("engine: stepOne called on a terminated state")
	}
	node := s.Stack[len(s.Stack)-1]
	rest := make([]ast.Node, len(s.Stack)-1)
	copy(rest, s.Stack[:len(s.Stack)-1])

	switch node.Kind {
	case ast.KindReturn:
		return sch.stepReturn(s, node, rest)
	case ast.KindAssert:
		return sch.stepAssert(s, node, rest)
	case ast.KindAssign:
		return sch.stepAssign(s, node, rest)
	case ast.KindWhile:
		return sch.stepWhile(s, node, rest)
	case ast.KindIf:
		return sch.stepIf(s, node, rest)
	case ast.KindBreak:
		return sch.stepBreak(s, rest)
	case ast.KindContinue:
		return sch.stepContinue(s, node, rest)
	case ast.KindPass:
		return sch.stepPass(s, node, rest)
	case ast.KindCall:
		return sch.stepCall(s, node, rest)
	default:
		return nil, fmt.Errorf("%w: node kind %v", ErrUnsupportedConstruct, node.Kind)
	}
}

func line(n ast.Node) string {
	return fmt.Sprintf("(%d)\t", n.Line)
}

func (sch *Scheduler) stepReturn(s *state.SymState, node ast.Node, rest []ast.Node) ([]*state.SymState, error) {
	newEnv := s.Env.Clone()
	retTerm := newEnv.Assign("fn_ret")
	val, err := translate.Expr(node.Value, s.Env)
	if err != nil {
		return nil, wrapTranslate(err)
	}
	cond := s.Condition.Append(smt.Bind(retTerm.(smt.IntVar), val))
	ns := extend(s, nil, newEnv, cond, line(node)+"Return: "+node.Unparse())
	return []*state.SymState{ns}, nil
}

func (sch *Scheduler) stepAssert(s *state.SymState, node ast.Node, rest []ast.Node) ([]*state.SymState, error) {
	newEnv := s.Env.Clone()
	c, err := translate.Cond(node.Test, s.Env)
	if err != nil {
		return nil, wrapTranslate(err)
	}
	cond := s.Condition.Append(c)
	ns := extend(s, rest, newEnv, cond, line(node)+"Assert: "+node.Test.Unparse())
	ns.AssertLines = append(ns.AssertLines, node.Line)
	return []*state.SymState{ns}, nil
}

func (sch *Scheduler) stepAssign(s *state.SymState, node ast.Node, rest []ast.Node) ([]*state.SymState, error) {
	val, err := translate.Expr(node.Value, s.Env) // pre-assignment env
	if err != nil {
		return nil, wrapTranslate(err)
	}
	newEnv := s.Env.Clone()
	v := newEnv.Assign(node.Target)
	cond := s.Condition.Append(smt.Bind(v.(smt.IntVar), val))
	ns := extend(s, rest, newEnv, cond, line(node)+"Assign: "+node.Unparse())
	return []*state.SymState{ns}, nil
}

func (sch *Scheduler) stepWhile(s *state.SymState, node ast.Node, rest []ast.Node) ([]*state.SymState, error) {
	test, err := translate.Cond(node.Test, s.Env)
	if err != nil {
		return nil, wrapTranslate(err)
	}

	enterStack := pushAll(rest, append([]ast.Node{node}, ast.ReverseBody(node.Body)...)...)
	enterEnv := s.Env.Clone()
	enterCond := s.Condition.Append(test)
	enter := extend(s, enterStack, enterEnv, enterCond, line(node)+"While(Enter): "+node.Test.Unparse())

	exitEnv := s.Env.Clone()
	exitCond := s.Condition.Append(smt.Not{X: test})
	exit := extend(s, rest, exitEnv, exitCond, line(node)+"While(Exit): "+node.Test.Unparse())

	return []*state.SymState{enter, exit}, nil
}

func (sch *Scheduler) stepIf(s *state.SymState, node ast.Node, rest []ast.Node) ([]*state.SymState, error) {
	test, err := translate.Cond(node.Test, s.Env)
	if err != nil {
		return nil, wrapTranslate(err)
	}

	thenStack := pushAll(rest, ast.ReverseBody(node.Body)...)
	thenEnv := s.Env.Clone()
	thenCond := s.Condition.Append(test)
	thenState := extend(s, thenStack, thenEnv, thenCond, line(node)+"If(if): "+node.Test.Unparse())

	elseStack := pushAll(rest, ast.ReverseBody(node.Else)...)
	elseEnv := s.Env.Clone()
	elseCond := s.Condition.Append(smt.Not{X: test})
	elseState := extend(s, elseStack, elseEnv, elseCond, line(node)+"If(else): "+node.Test.Unparse())

	return []*state.SymState{thenState, elseState}, nil
}

func (sch *Scheduler) stepBreak(s *state.SymState, rest []ast.Node) ([]*state.SymState, error) {
	newStack := popUntilWhile(rest, false)
	newEnv := s.Env.Clone()
	ns := extend(s, newStack, newEnv, s.Condition, "Break")
	return []*state.SymState{ns}, nil
}

func (sch *Scheduler) stepContinue(s *state.SymState, node ast.Node, rest []ast.Node) ([]*state.SymState, error) {
	newStack := popUntilWhile(rest, true)
	newEnv := s.Env.Clone()
	ns := extend(s, newStack, newEnv, s.Condition, "Continue")
	return []*state.SymState{ns}, nil
}

func (sch *Scheduler) stepPass(s *state.SymState, node ast.Node, rest []ast.Node) ([]*state.SymState, error) {
	newEnv := s.Env.Clone()
	ns := extend(s, rest, newEnv, s.Condition, "Pass")
	return []*state.SymState{ns}, nil
}

func (sch *Scheduler) stepCall(s *state.SymState, node ast.Node, rest []ast.Node) ([]*state.SymState, error) {
	newEnv := s.Env.Clone()
	if node.Target == sch.cfg.TargetName {
		ns := extend(s, rest, newEnv, s.Condition, fmt.Sprintf("Hit Target: %s()", node.Target))
		sch.Reaching = append(sch.Reaching, ns)
		return []*state.SymState{ns}, nil
	}
	ns := extend(s, rest, newEnv, s.Condition, "Func Call: "+node.Target)
	return []*state.SymState{ns}, nil
}

// extend builds a new SymState from s's trace and assert-line history
// plus the given stack/env/condition and one trace line.
func extend(s *state.SymState, stack []ast.Node, e *env.Env, cond smt.Conjunction, traceLine string) *state.SymState {
	trace := make([]string, len(s.Trace), len(s.Trace)+1)
	copy(trace, s.Trace)
	trace = append(trace, traceLine)
	assertLines := make([]int, len(s.AssertLines))
	copy(assertLines, s.AssertLines)
	return &state.SymState{
		Stack:       stack,
		Trace:       trace,
		Condition:   cond,
		Env:         e,
		AssertLines: assertLines,
	}
}

// pushAll returns a fresh slice holding base followed by extra, never
// aliasing base's backing array — required because If/While build two
// independent stacks from the same rest.
func pushAll(base []ast.Node, extra ...ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

// popUntilWhile pops entries off stack until a While node is popped.
// When keep is true the popped While is pushed back on top (Continue);
// when false it is discarded (Break). Returns a fresh slice.
func popUntilWhile(stack []ast.Node, keep bool) []ast.Node {
	out := make([]ast.Node, len(stack))
	copy(out, stack)
	var whileNode ast.Node
	found := false
	for len(out) > 0 {
		top := out[len(out)-1]
		out = out[:len(out)-1]
		if top.Kind == ast.KindWhile {
			whileNode = top
			found = true
			break
		}
	}
	if keep && found {
		out = append(out, whileNode)
	}
	return out
}

func wrapTranslate(err error) error {
	switch {
	case err == nil:
		return nil
	default:
		return fmt.Errorf("%w", remapTranslateErr(err))
	}
}
