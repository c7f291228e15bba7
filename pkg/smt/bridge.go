// Package smt provides the SMT Bridge: a thin adapter exposing
// check(constraints) and model(constraints) over integer theory (§4.1 /
// §6 of the core). It is backed by github.com/ichiban/prolog, the same
// logic-engine dependency rfielding-turducken/pkg/prolog/engine.go
// embeds — there it answers CTL queries over hand-asserted facts; here it
// answers bounded integer satisfiability queries over rendered
// arithmetic goals.
package smt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ichiban/prolog"
)

// Status is the three-valued result of a feasibility check.
type Status int

const (
	SAT Status = iota
	UNSAT
	UNKNOWN
)

func (s Status) String() string {
	switch s {
	case SAT:
		return "SAT"
	case UNSAT:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// ErrSolverTimeout is returned (wrapped) by Model when a query's context
// deadline elapses before the bounded search finds a solution. Check
// does not return it: a deadline there is reported as the UNKNOWN status
// with a nil error. There is no option to turn a Check timeout into an
// error.
var ErrSolverTimeout = errors.New("smt: solver timeout")

// ErrSolverError is returned (wrapped) for any other error the
// interpreter reports — a malformed rendered term, an arithmetic
// evaluation error, and so on.
var ErrSolverError = errors.New("smt: solver error")

// core is the hand-written Prolog preamble loaded once per Bridge. The
// bootstrap interpreter (prolog.New(nil, nil), same call
// rfielding-turducken/pkg/prolog.New makes) ships no list or search
// library, so between/3 — the only search primitive this bridge needs —
// is defined here exactly the way loadCore() in the teacher hand-defines
// member/append/length/forall for the same reason.
const core = `
between(Lo, Hi, Lo) :- Lo =< Hi.
between(Lo, Hi, X) :- Lo < Hi, Lo1 is Lo + 1, between(Lo1, Hi, X).
`

// Bridge is the SMT Bridge boundary interface the core depends on.
type Bridge interface {
	// Check decides satisfiability of conj, bounded to [-bound, bound]
	// for every free variable. UNKNOWN is returned (with a nil error)
	// when ctx's deadline elapses mid-search; any other backend failure
	// is returned as a wrapped ErrSolverError.
	Check(ctx context.Context, conj Conjunction, bound int64) (Status, error)

	// Model returns a satisfying assignment for conj restricted to
	// varNames (display names, e.g. "a", "b"), bounded the same way as
	// Check. It is only meaningful to call when Check has returned SAT
	// for the same conjunction and bound.
	Model(ctx context.Context, conj Conjunction, varNames []string, bound int64) (map[string]int64, error)
}

// PrologBridge is the ichiban/prolog-backed Bridge implementation.
// Scoping policy matches §5: an interpreter instance is reused across
// calls (cheaper than recreating it per query, since the core preamble
// only needs to be loaded once), but every query is a fresh, independent
// check/add/discard round trip — no incremental solving, no shared
// solver state between calls, matching §5's resource policy.
type PrologBridge struct {
	mu          sync.Mutex
	interpreter *prolog.Interpreter
}

// NewPrologBridge constructs a Bridge with the between/3 preamble loaded.
func NewPrologBridge() (*PrologBridge, error) {
	b := &PrologBridge{interpreter: prolog.New(nil, nil)}
	if err := b.interpreter.Exec(core); err != nil {
		return nil, fmt.Errorf("smt: loading core preamble: %w", err)
	}
	return b, nil
}

func (b *PrologBridge) Check(ctx context.Context, conj Conjunction, bound int64) (Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	query := buildQuery(conj, bound, nil)
	sols, err := b.interpreter.QueryContext(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return UNKNOWN, nil
		}
		return UNKNOWN, fmt.Errorf("%w: %v", ErrSolverError, err)
	}
	defer sols.Close()

	found := sols.Next()
	if err := sols.Err(); err != nil {
		if ctx.Err() != nil {
			return UNKNOWN, nil
		}
		return UNKNOWN, fmt.Errorf("%w: %v", ErrSolverError, err)
	}
	if ctx.Err() != nil {
		// The deadline may have elapsed on the very solution that
		// satisfied the query; treat that race as UNKNOWN too, per
		// §7's "conservatively treated as feasible" default.
		return UNKNOWN, nil
	}
	if found {
		return SAT, nil
	}
	return UNSAT, nil
}

func (b *PrologBridge) Model(ctx context.Context, conj Conjunction, varNames []string, bound int64) (map[string]int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	query := buildQuery(conj, bound, varNames)
	sols, err := b.interpreter.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverError, err)
	}
	defer sols.Close()

	if !sols.Next() {
		if err := sols.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSolverError, err)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w", ErrSolverTimeout)
		}
		return nil, fmt.Errorf("smt: model requested on an unsatisfiable conjunction")
	}

	row := map[string]interface{}{}
	if err := sols.Scan(&row); err != nil {
		return nil, fmt.Errorf("%w: scanning solution: %v", ErrSolverError, err)
	}

	model := make(map[string]int64, len(varNames))
	for _, name := range varNames {
		pv := prologVarName(name)
		v, ok := row[pv]
		if !ok {
			continue
		}
		model[name] = termToInt64(v)
	}
	return model, nil
}

// buildQuery renders conj's free variables as bounded between/3 goals
// followed by conj itself. Only the genuinely free variables are
// enumerated this way: any variable that is the target of a Binding
// (an assignment's `V is Expr` constraint) is computed by that goal
// instead, so it is excluded from the between/3 preamble — enumerating
// it too would mean searching the full [-bound, bound] range for a
// value is/2 already determines, turning a chain of k assignments into
// a (2*bound+1)^k search instead of a single pass over the formals.
// When varNames is non-nil, those names are folded into the free-var
// set scanned for on the Model path even if conj never mentions them
// (e.g. a function with no constraints on an unused formal); a
// varName that happens to be Binding-bound is still scannable by name
// afterward without needing its own between/3 goal.
func buildQuery(conj Conjunction, bound int64, varNames []string) string {
	vars := conj.Vars()
	for _, n := range varNames {
		vars[n] = struct{}{}
	}
	boundVars := conj.BoundVars()

	names := make([]string, 0, len(vars))
	for name := range vars {
		if _, isBound := boundVars[name]; isBound {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	goals := make([]string, 0, len(names)+1)
	for _, name := range names {
		goals = append(goals, fmt.Sprintf("between(-%d, %d, %s)", bound, bound, prologVarName(name)))
	}
	goals = append(goals, conj.Render())

	query := ""
	for i, g := range goals {
		if i > 0 {
			query += ", "
		}
		query += g
	}
	return query + "."
}

func termToInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}
