// Package engine implements the Stepper and Scheduler (§4.4/§4.5): the
// work-list driver that advances a forest of symbolic states over an
// ast.Function, partitioning them into frontier, unreachable, terminated,
// and target-reaching pools each round.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swvm/symexec/pkg/ast"
	"github.com/swvm/symexec/pkg/env"
	"github.com/swvm/symexec/pkg/smt"
	"github.com/swvm/symexec/pkg/state"
	"github.com/swvm/symexec/pkg/translate"
)

// remapTranslateErr maps pkg/translate and pkg/env sentinels onto this
// package's own, so callers only ever need to errors.Is against engine's
// taxonomy (§7).
func remapTranslateErr(err error) error {
	switch {
	case errors.Is(err, translate.ErrUnsupportedConstruct):
		return fmt.Errorf("%w: %v", ErrUnsupportedConstruct, err)
	case errors.Is(err, env.ErrUndefinedRead):
		return fmt.Errorf("%w: %v", ErrUndefinedRead, err)
	default:
		return err
	}
}

// Result is returned by every driver method: the four pools as they
// stood when the driver stopped, how many rounds actually ran, and
// whether the budget was exhausted before the stopping condition was
// otherwise met. BudgetExhausted is an explicit indicator, not an error
// (§7).
type Result struct {
	Frontier        []*state.SymState
	Unreachable     []*state.SymState
	Terminated      []*state.SymState
	Reaching        []*state.SymState
	StepsRun        int
	BudgetExhausted bool
}

// Scheduler owns one exploration run over a single ast.Function: its
// four state pools, the SMT Bridge it checks feasibility against, and
// the formal-parameter list used to project witnesses (§4.1/§6).
type Scheduler struct {
	cfg     Config
	bridge  smt.Bridge
	formals []string
	logger  zerolog.Logger
	runID   uuid.UUID

	Frontier    []*state.SymState
	Unreachable []*state.SymState
	Terminated  []*state.SymState
	Reaching    []*state.SymState
}

// New validates fn and builds a Scheduler seeded with fn's initial
// SymState as the sole frontier member. fn, fn.Body, and fn.Formals must
// all be non-nil (a nil Formals means "no AST producer ran," distinct
// from a function that legitimately takes zero parameters, which has a
// non-nil empty slice) — anything else is ErrMalformedInput (§7).
func New(fn *ast.Function, bridge smt.Bridge, cfg Config, logger zerolog.Logger) (*Scheduler, error) {
	if fn == nil || fn.Body == nil || fn.Formals == nil {
		return nil, fmt.Errorf("%w: function, body, and formals must all be present", ErrMalformedInput)
	}
	if bridge == nil {
		return nil, fmt.Errorf("%w: nil SMT bridge", ErrMalformedInput)
	}
	initial := state.New(fn)
	runID := uuid.New()
	sch := &Scheduler{
		cfg:      cfg,
		bridge:   bridge,
		formals:  fn.Formals,
		logger:   logger.With().Str("run_id", runID.String()).Str("fn", fn.Name).Logger(),
		runID:    runID,
		Frontier: []*state.SymState{initial},
	}
	return sch, nil
}

// RunID identifies this Scheduler's exploration run. It is the run_id
// carried by every log line the Scheduler writes and is reported in
// pkg/server's /api/explore response.
func (sch *Scheduler) RunID() uuid.UUID { return sch.runID }

// Formals returns the function's formal parameters, in declared order.
func (sch *Scheduler) Formals() []string {
	out := make([]string, len(sch.formals))
	copy(out, sch.formals)
	return out
}

// Step runs exactly one round (§4.5): every live frontier state is
// feasibility-checked and, if terminated or infeasible, dropped into its
// pool without being stepped; otherwise it is stepped once via stepOne
// and its successors collected. The successors are then re-partitioned
// themselves: infeasible ones go to Unreachable (computed strictly
// before Terminated, matching the original's ordering), empty-stack ones
// among the remainder go to Terminated, and the rest become the new
// Frontier.
func (sch *Scheduler) Step(ctx context.Context) error {
	current := sch.Frontier
	sch.Frontier = nil

	var scratch []*state.SymState
	for _, s := range current {
		feasible, err := s.IsFeasible(ctx, sch.bridge, sch.cfg.SolverBound, sch.cfg.OnSolverUnknown == Keep)
		if err != nil {
			return err
		}
		if !feasible {
			sch.Unreachable = append(sch.Unreachable, s)
			continue
		}
		if s.IsTerminated() {
			sch.Terminated = append(sch.Terminated, s)
			continue
		}
		successors, err := sch.stepOne(s)
		if err != nil {
			return err
		}
		scratch = append(scratch, successors...)
	}

	for _, s := range scratch {
		feasible, err := s.IsFeasible(ctx, sch.bridge, sch.cfg.SolverBound, sch.cfg.OnSolverUnknown == Keep)
		if err != nil {
			return err
		}
		if !feasible {
			sch.Unreachable = append(sch.Unreachable, s)
			continue
		}
		if s.IsTerminated() {
			sch.Terminated = append(sch.Terminated, s)
			continue
		}
		sch.Frontier = append(sch.Frontier, s)
	}

	sch.logger.Debug().
		Int("frontier", len(sch.Frontier)).
		Int("unreachable", len(sch.Unreachable)).
		Int("terminated", len(sch.Terminated)).
		Int("reaching", len(sch.Reaching)).
		Msg("round complete")
	return nil
}

func (sch *Scheduler) result(steps int, budgetExhausted bool) Result {
	return Result{
		Frontier:        sch.Frontier,
		Unreachable:     sch.Unreachable,
		Terminated:      sch.Terminated,
		Reaching:        sch.Reaching,
		StepsRun:        steps,
		BudgetExhausted: budgetExhausted,
	}
}

// Explore runs up to budget rounds, stopping early once the frontier is
// empty. Extra rounds against an already-empty frontier are harmless
// no-ops, matching the original's unconditional round loop.
func (sch *Scheduler) Explore(ctx context.Context, budget int) (Result, error) {
	steps := 0
	for steps < budget {
		if len(sch.Frontier) == 0 {
			return sch.result(steps, false), nil
		}
		if err := sch.Step(ctx); err != nil {
			return Result{}, err
		}
		steps++
	}
	return sch.result(steps, len(sch.Frontier) > 0), nil
}

// FindPathToTarget resets the Reaching pool before the first round — the
// documented fix for the original's `self.reaching_states == []`
// no-op-comparison bug, which never actually cleared a stale pool across
// repeated calls — then runs rounds until either the budget is
// exhausted or Reaching becomes non-empty, returning as soon as it does.
func (sch *Scheduler) FindPathToTarget(ctx context.Context, budget int) (Result, error) {
	sch.Reaching = nil
	steps := 0
	for steps < budget {
		if len(sch.Reaching) > 0 {
			return sch.result(steps, false), nil
		}
		if len(sch.Frontier) == 0 {
			return sch.result(steps, false), nil
		}
		if err := sch.Step(ctx); err != nil {
			return Result{}, err
		}
		steps++
		if len(sch.Reaching) > 0 {
			return sch.result(steps, false), nil
		}
	}
	return sch.result(steps, len(sch.Reaching) == 0), nil
}

// ExploreFrom resets all four pools and reseeds the frontier with
// initial before delegating to Explore. Supplemented feature (§C):
// lets a caller resume exploration from an arbitrary, previously
// recorded SymState rather than always restarting at a function's
// formals.
func (sch *Scheduler) ExploreFrom(ctx context.Context, initial *state.SymState, budget int) (Result, error) {
	sch.reseed(initial)
	return sch.Explore(ctx, budget)
}

// FindPathToTargetFrom is ExploreFrom's analogue for FindPathToTarget.
func (sch *Scheduler) FindPathToTargetFrom(ctx context.Context, initial *state.SymState, budget int) (Result, error) {
	sch.reseed(initial)
	return sch.FindPathToTarget(ctx, budget)
}

func (sch *Scheduler) reseed(initial *state.SymState) {
	sch.Frontier = []*state.SymState{initial}
	sch.Unreachable = nil
	sch.Terminated = nil
	sch.Reaching = nil
}
