package smt

import (
	"fmt"
	"strconv"
	"strings"
)

// IntTerm is an integer-valued symbolic term. It knows how to render
// itself as Prolog arithmetic source and which free variables it
// mentions; it does not know how to evaluate itself — that's the
// backend's job, not this package's.
type IntTerm interface {
	Render() string
	Vars(set map[string]struct{})
}

// BoolTerm is a boolean-valued symbolic term (a constraint).
type BoolTerm interface {
	Render() string
	Vars(set map[string]struct{})
}

// IntVar is a reference to a versioned variable's current symbolic
// value. Name is the display name from pkg/env's symbol policy: the raw
// formal name at version 0, "name_k" thereafter.
type IntVar struct{ Name string }

func (v IntVar) Render() string { return prologVarName(v.Name) }
func (v IntVar) Vars(set map[string]struct{}) {
	set[v.Name] = struct{}{}
}

// IntConst is an integer literal.
type IntConst struct{ Value int64 }

func (c IntConst) Render() string                 { return strconv.FormatInt(c.Value, 10) }
func (c IntConst) Vars(set map[string]struct{})   {}

// IntBinOp is a binary arithmetic term: Add, Sub, Mul, or Div.
type IntBinOp struct {
	Op          string // "+", "-", "*", "//"
	Left, Right IntTerm
}

func (b IntBinOp) Render() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.Render(), b.Op, b.Right.Render())
}
func (b IntBinOp) Vars(set map[string]struct{}) {
	b.Left.Vars(set)
	b.Right.Vars(set)
}

// Add, Sub, Mul, Div build IntBinOp terms. Div lowers to Prolog's "//",
// which truncates toward negative infinity on the ISO-conformant
// backends this package targets — see SPEC_FULL.md's open question
// decisions (section D) for why that choice was made instead of Go's
// truncate-toward-zero "/".
func Add(l, r IntTerm) IntTerm { return IntBinOp{Op: "+", Left: l, Right: r} }
func Sub(l, r IntTerm) IntTerm { return IntBinOp{Op: "-", Left: l, Right: r} }
func Mul(l, r IntTerm) IntTerm { return IntBinOp{Op: "*", Left: l, Right: r} }
func Div(l, r IntTerm) IntTerm { return IntBinOp{Op: "//", Left: l, Right: r} }

// BoolConst is a boolean literal.
type BoolConst struct{ Value bool }

func (b BoolConst) Render() string {
	if b.Value {
		return "true"
	}
	return "fail"
}
func (b BoolConst) Vars(set map[string]struct{}) {}

// Compare is a BoolTerm comparing two IntTerms with one of
// {">", "<", "=:=", "=\\="} — the Prolog arithmetic-comparison
// equivalents of {>, <, =, !=}.
type Compare struct {
	Op          string
	Left, Right IntTerm
}

func (c Compare) Render() string {
	return fmt.Sprintf("%s %s %s", c.Left.Render(), c.Op, c.Right.Render())
}
func (c Compare) Vars(set map[string]struct{}) {
	c.Left.Vars(set)
	c.Right.Vars(set)
}

func Gt(l, r IntTerm) BoolTerm  { return Compare{Op: ">", Left: l, Right: r} }
func Lt(l, r IntTerm) BoolTerm  { return Compare{Op: "<", Left: l, Right: r} }
func Eq(l, r IntTerm) BoolTerm  { return Compare{Op: "=:=", Left: l, Right: r} }
func Neq(l, r IntTerm) BoolTerm { return Compare{Op: "=\\=", Left: l, Right: r} }

// Binding is a functional assignment constraint: var is computed from
// value via Prolog's is/2, not re-enumerated via between/3 like a free
// variable. The stepper uses this (never Eq) for the constraint an
// Assign or Return statement introduces, so every SSA temporary becomes
// a deterministic function of the free formals instead of an
// independently searched variable. ichiban/prolog runs plain SLD
// generate-and-test with no CLP(FD) propagation, so leaving temporaries
// as `=:=` tests the bridge would otherwise have to enumerate turns a
// chain of k assignments into a ≈(2*bound+1)^k search; is/2 computes
// each one in constant time from terms already bound earlier in the
// same query.
type Binding struct {
	Var   IntVar
	Value IntTerm
}

func (b Binding) Render() string {
	return fmt.Sprintf("%s is %s", b.Var.Render(), b.Value.Render())
}

// Vars reports only Value's free variables. Var itself is bound by this
// goal, not searched for, so it is deliberately left out here —
// Conjunction.BoundVars is how callers recognize it as bound.
func (b Binding) Vars(set map[string]struct{}) {
	b.Value.Vars(set)
}

// Bind builds a Binding constraint.
func Bind(v IntVar, value IntTerm) BoolTerm { return Binding{Var: v, Value: value} }

// Not is logical negation, rendered as Prolog's \+ (negation as failure)
// wrapped around the child goal.
type Not struct{ X BoolTerm }

func (n Not) Render() string { return fmt.Sprintf("\\+ (%s)", n.X.Render()) }
func (n Not) Vars(set map[string]struct{}) {
	n.X.Vars(set)
}

// Conjunction is a path condition: an ordered, conjunctively interpreted
// sequence of BoolTerms. Appending never rewrites earlier entries (see
// §9: SSA renaming keeps the condition append-only).
type Conjunction []BoolTerm

// Render joins every term with Prolog conjunction (","); an empty
// conjunction renders as "true".
func (c Conjunction) Render() string {
	if len(c) == 0 {
		return "true"
	}
	parts := make([]string, len(c))
	for i, t := range c {
		parts[i] = "(" + t.Render() + ")"
	}
	return strings.Join(parts, ", ")
}

// Vars returns the set of free variable display-names mentioned anywhere
// in the conjunction.
func (c Conjunction) Vars() map[string]struct{} {
	set := map[string]struct{}{}
	for _, t := range c {
		t.Vars(set)
	}
	return set
}

// BoundVars returns the display names of every Binding's Var anywhere in
// the conjunction — the variables buildQuery must compute with is/2
// rather than enumerate with between/3.
func (c Conjunction) BoundVars() map[string]struct{} {
	set := map[string]struct{}{}
	for _, t := range c {
		if b, ok := t.(Binding); ok {
			set[b.Var.Name] = struct{}{}
		}
	}
	return set
}

// Append returns a new Conjunction with t appended; the receiver is left
// untouched so siblings sharing a prefix never alias each other's slice
// header past the append point.
func (c Conjunction) Append(t BoolTerm) Conjunction {
	out := make(Conjunction, len(c), len(c)+1)
	copy(out, c)
	return append(out, t)
}

// prologVarName maps a display name ("x", "x_2", ...) to a legal Prolog
// variable ("X", "X_2", ...) by upper-casing its first rune. Display
// names are always non-empty, lower-case-leading identifiers (pkg/env's
// symbol policy), so collisions between two distinct display names
// cannot occur here.
func prologVarName(name string) string {
	if name == "" {
		return "_"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
